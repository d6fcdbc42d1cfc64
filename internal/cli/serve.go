package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photowall/internal/server"
	"github.com/matzehuels/photowall/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP host.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   layoutFlags
		addr    string
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve layouts of a folder over HTTP",
		Long: `Serve layouts of a folder over HTTP.

Clients ask for a layout of their own viewport size:

  GET  /api/layout?width=1280&height=720&scroll=0.5&filter=beach
  GET  /api/render?format=svg&width=1280&height=720
  GET  /api/config, PUT /api/config
  POST /api/zoom/in?width=1280, POST /api/zoom/out?width=1280

Zoom and configuration changes are shared by all clients. With --watch the
served collection follows the folder.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			opts := flags.resolve(cmd, cfg, rootArg(args))
			runner := c.newRunner(cmd.Context(), cfg, noCache)
			defer runner.Close()
			return c.runServe(cmd.Context(), runner, opts, addr, watch)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "follow images added to or removed from the folder")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.registerSettings(cmd)

	return cmd
}

// runServe scans the folder and serves it until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, addr string, watch bool) error {
	root, gcfg, items, err := c.loadWall(ctx, runner, &opts)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Root:    root,
		Config:  gcfg,
		Items:   items,
		Runner:  runner,
		Catalog: runner.Catalog(opts),
		Watch:   watch,
		Logger:  c.Logger,
	})

	printSuccess("Serving %d images", len(items))
	printKeyValue("URL", "http://"+addr)
	printKeyValue("Layout", "http://"+addr+"/api/layout?width=1280&height=720")
	printNewline()

	err = srv.Run(ctx, addr)
	if errors.Is(err, context.Canceled) {
		c.Logger.Info("server stopped")
		return err
	}
	if err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
