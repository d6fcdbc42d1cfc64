package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/pkg/pipeline"
)

// layoutCommand creates the layout command for computing a wall.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [dir]",
		Short: "Compute the wall for a folder and write it as JSON",
		Long: `Compute the wall for a folder and write it as JSON.

The layout is computed for a fixed viewport (--width, --height). Zoom steps
(--zoom) and the fuzzy filter (--filter) are applied exactly as the
interactive viewer would apply them. Settings not given on the command line
come from the config file.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.resolve(cmd, cfg, rootArg(args))
			runner := c.newRunner(cmd.Context(), cfg, noCache)
			defer runner.Close()
			return c.runLayout(cmd.Context(), runner, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <dir>/photowall.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout scans the folder, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Scanning "+opts.Root+"...")
	spinner.Start()

	items, err := runner.Scan(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return fmt.Errorf("scan %s: %w", opts.Root, err)
	}

	spinner.SetMessage(fmt.Sprintf("Laying out %d images...", len(items)))
	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = filepath.Join(opts.Root, appName+".layout.json")
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	stats := layout.Stats()
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(items), layout.BinCount, cacheHit)
	if !layout.Empty() {
		printBalance(stats.Longest, stats.Shortest, stats.Fill)
	}
	printNewline()
	printNextStep("Render", appName+" render "+opts.Root)

	return nil
}
