package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/pkg/buildinfo"
	"github.com/matzehuels/photowall/pkg/cache"
	"github.com/matzehuels/photowall/pkg/config"
	"github.com/matzehuels/photowall/pkg/observability"
	"github.com/matzehuels/photowall/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "photowall"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default configuration file location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is on.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= LogDebug
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Photowall lays out image folders as balanced justified walls",
		Long: `Photowall scans a folder of images and arranges the thumbnails into
balanced columns or rows that fill the window, like a photo wall.

Browse interactively with 'view', serve layouts over HTTP with 'serve', or
render a wall to SVG, PNG or JSON with 'render'.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.verbose() {
				observability.Install(observability.NewLogHooks(c.Logger))
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// configPath returns the active configuration file path.
func (c *CLI) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return config.DefaultPath()
}

// loadConfig reads the active configuration file. A missing file yields the
// defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.LoadFrom(c.configPath())
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) *pipeline.Runner {
	backend, keyer := c.newCache(ctx, cfg, noCache)
	return pipeline.NewRunner(backend, keyer, c.Logger)
}

// newCache opens the configured cache backend. Redis is preferred when a URL
// is configured; an unreachable Redis or an unusable cache directory degrade
// to the next option instead of failing the command. Keys on a shared Redis
// are prefixed with the application name.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, cache.Keyer) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return cache.Observed(rc), cache.Prefixed(nil, appName+":")
		}
		c.Logger.Warn("redis cache unavailable, falling back to file cache", "err", err)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Observed(fc), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/photowall/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the flags shared by every command that lays out a wall.
// Values left untouched on the command line come from the config file.
type layoutFlags struct {
	opts    pipeline.Options
	formats string
}

// register binds the layout flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.opts.Width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	fs.Float64Var(&f.opts.Height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	fs.Float64Var(&f.opts.Scroll, "scroll", 0, "scroll position in [0,1] used with --convergent")
	fs.IntVarP(&f.opts.Zoom, "zoom", "z", 0, "zoom steps: positive zooms in, negative zooms out")
	f.registerSettings(cmd)
	f.registerFilter(cmd)
}

// registerSettings binds the flags that override the config file's layout
// settings. Interactive hosts take their viewport from the window instead.
func (f *layoutFlags) registerSettings(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Orientation, "orientation", def.Layout.Orientation, "bin orientation: horizontal (columns) or vertical (rows)")
	fs.IntVarP(&f.opts.TargetLength, "target", "t", def.Layout.TargetLength, "target thumbnail size in pixels")
	fs.IntVar(&f.opts.MinTargetLength, "min-target", def.Layout.MinTargetLength, "smallest target reachable by zooming out")
	fs.Float64Var(&f.opts.Spacing, "spacing", def.Layout.Spacing, "gap between thumbnails in pixels")
	fs.BoolVar(&f.opts.Convergent, "convergent", def.Layout.ConvergentScrolling, "offset short bins so all bins end together")
	fs.IntVar(&f.opts.MaxDepth, "max-depth", def.Scan.MaxDepth, "maximum directory depth (0 = unlimited)")
	_ = cmd.RegisterFlagCompletionFunc("orientation", completeOrientation)
}

// registerFilter binds the fuzzy filter flag.
func (f *layoutFlags) registerFilter(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.opts.Filter, "filter", "", "fuzzy file name filter; non-matching images are hidden")
}

// registerRender binds the render flags to cmd.
func (f *layoutFlags) registerRender(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	fs.StringVar(&f.opts.Background, "background", pipeline.DefaultBackground, "background colour as #rrggbb")
	fs.BoolVar(&f.opts.Labels, "labels", false, "draw file names inside the tiles")
	fs.Float64Var(&f.opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// resolve fills every flag the user did not set from cfg and returns the
// finished options.
func (f *layoutFlags) resolve(cmd *cobra.Command, cfg config.Config, root string) pipeline.Options {
	opts := f.opts
	changed := cmd.Flags().Changed

	if !changed("orientation") {
		opts.Orientation = cfg.Layout.Orientation
	}
	if !changed("target") {
		opts.TargetLength = cfg.Layout.TargetLength
	}
	if !changed("min-target") {
		opts.MinTargetLength = cfg.Layout.MinTargetLength
	}
	if !changed("spacing") {
		opts.Spacing = cfg.Layout.Spacing
	}
	if !changed("convergent") {
		opts.Convergent = cfg.Layout.ConvergentScrolling
	}
	if !changed("max-depth") {
		opts.MaxDepth = cfg.Scan.MaxDepth
	}
	opts.SpacingSet = true
	opts.Workers = cfg.Scan.Workers
	if ttl, err := cfg.Cache.Lifetime(); err == nil {
		opts.ProbeTTL = ttl
	}
	if cmd.Flags().Lookup("format") != nil {
		opts.Formats = parseFormats(f.formats)
	}
	opts.Root = root
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

// rootArg returns the directory argument, defaulting to the working directory.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
