package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/internal/tui"
	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/observability"
	"github.com/matzehuels/photowall/pkg/pipeline"
)

// viewCommand creates the view command for browsing a folder in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags   layoutFlags
		watch   bool
		noCache bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "view [dir]",
		Short: "Browse a folder as a photo wall in the terminal",
		Long: `Browse a folder as a photo wall in the terminal.

Every image is drawn as a box sized like its thumbnail. The wall refits
whenever the terminal is resized, and with --watch images added to or
removed from the folder appear and disappear as you look.

Keys: +/- zoom, o switch rows and columns, c convergent scrolling,
j/k scroll, h/l select, / filter, enter select, y copy path, ? help, q quit.`,
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
			return c.runView(cmd.Context(), runner, opts, watch, logFile)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "follow images added to or removed from the folder")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the viewer runs")
	flags.registerSettings(cmd)
	flags.registerFilter(cmd)

	return cmd
}

// runView scans the folder and hands the items to the terminal host.
func (c *CLI) runView(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, watch bool, logFile string) error {
	root, gcfg, items, err := c.loadWall(ctx, runner, &opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogFile(logFile, c.Logger.GetLevel())
	if err != nil {
		return err
	}
	defer closeLog()
	opts.Logger = logger
	if c.verbose() {
		observability.Install(observability.NewLogHooks(logger))
	}

	return tui.Run(ctx, tui.Options{
		Root:    root,
		Config:  gcfg,
		Items:   items,
		Filter:  opts.Filter,
		Catalog: runner.Catalog(opts),
		Watch:   watch,
		Logger:  logger,
	})
}

// loadWall resolves the root, validates the layout settings and scans the
// folder behind a spinner. It is shared by the interactive hosts.
func (c *CLI) loadWall(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options) (string, gallery.Config, []gallery.Item, error) {
	root, err := pipeline.ResolveRoot(opts.Root)
	if err != nil {
		return "", gallery.Config{}, nil, err
	}
	opts.Root = root
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
		return "", gallery.Config{}, nil, err
	}
	gcfg, err := opts.GalleryConfig()
	if err != nil {
		return "", gallery.Config{}, nil, err
	}

	spinner := newSpinnerWithContext(ctx, "Scanning "+root+"...")
	spinner.Start()
	items, err := runner.Scan(ctx, *opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return "", gallery.Config{}, nil, fmt.Errorf("scan %s: %w", root, err)
	}
	spinner.Stop()
	if len(items) == 0 {
		printWarning("No images found in %s", root)
	}
	return root, gcfg, items, nil
}
