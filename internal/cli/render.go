package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/pkg/pipeline"
)

// renderCommand creates the render command for writing a wall to files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Render the wall for a folder to SVG, PNG or JSON",
		Long: `Render the wall for a folder to SVG, PNG or JSON.

Tiles are drawn as coloured placeholders at their exact positions; hidden
images (see --filter) are drawn faded. Several formats can be requested at
once with a comma-separated --format list.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.resolve(cmd, cfg, rootArg(args))
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			runner := c.newRunner(cmd.Context(), cfg, noCache)
			defer runner.Close()
			return c.runRender(cmd.Context(), runner, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.opts.Refresh, "refresh", false, "ignore cached layouts and artifacts")
	flags.register(cmd)
	flags.registerRender(cmd)

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering "+opts.Root+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	base := basePath(output, opts.Root)
	written := make([]string, 0, len(result.Artifacts))
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(output, base, format, len(opts.Formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(result.Stats.ItemCount, result.Stats.BinCount, result.CacheInfo.RenderHit)
	if !result.Layout.Empty() {
		b := result.Stats.Balance
		printBalance(b.Longest, b.Shortest, b.Fill)
	}
	return nil
}

// basePath derives the base output path. With no output the files land in
// the scanned folder as photowall.<format>. A known format extension on
// output is stripped.
func basePath(output, root string) string {
	if output == "" {
		return filepath.Join(root, appName)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one format. A single format with an explicit
// output path is written exactly there.
func outputPath(output, base, format string, formats int) string {
	if formats == 1 && output != "" && filepath.Ext(output) == "."+format {
		return output
	}
	return base + "." + format
}
