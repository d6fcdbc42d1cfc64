package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/pipeline"
)

// scanCommand creates the scan command for listing a folder's images.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List the images in a folder with their aspect ratios",
		Long: `List the images in a folder with their aspect ratios.

Every image is probed for its dimensions and EXIF orientation. Probe results
are cached by path, size and modification time, so repeated scans of a large
folder only read new or changed files.`,
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
			return c.runScan(cmd.Context(), runner, opts, output, asJSON)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the item list as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the item list as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&flags.opts.MaxDepth, "max-depth", 0, "maximum directory depth (0 = unlimited)")
	cmd.Flags().StringVar(&flags.opts.Filter, "filter", "", "fuzzy file name filter; non-matching images are marked hidden")

	return cmd
}

// runScan scans the folder and prints or writes the items.
func (c *CLI) runScan(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string, asJSON bool) error {
	sw := startStopwatch(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Scanning "+opts.Root+"...")
	spinner.Start()

	items, err := runner.Scan(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return fmt.Errorf("scan %s: %w", opts.Root, err)
	}
	spinner.Stop()
	sw.done("scan complete", "root", opts.Root, "images", len(items))

	items = pipeline.ApplyFilter(items, opts.Filter)

	if output != "" {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Scan complete")
		printFile(output)
		printStats(len(items), 0, false)
		return nil
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		printWarning("No images found in %s", opts.Root)
		return nil
	}
	fmt.Fprintln(out, itemTable(items))
	printStats(len(items), 0, false)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Root)
	return nil
}

// itemTable renders items as a bordered table. Hidden items are dimmed.
func itemTable(items []gallery.Item) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)

	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			it.Name,
			strconv.FormatFloat(it.AspectRatio, 'f', 3, 64),
			shape(it.AspectRatio),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("#", "File", "Aspect", "Shape").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(items) || !items[row].Visible {
				return lipgloss.NewStyle().Foreground(colorMuted)
			}
			if col == 2 {
				return StyleNumber
			}
			return StyleValue
		})
	return t.Render()
}

// shape names the orientation of an aspect ratio.
func shape(aspect float64) string {
	switch {
	case aspect > 1.05:
		return "landscape"
	case aspect < 0.95:
		return "portrait"
	default:
		return "square"
	}
}
