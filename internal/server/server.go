// Package server is the HTTP host for a photo wall.
//
// The server keeps one [gallery.Engine] behind a [gallery.Loop]: the
// shared settings and the item collection live there, and the file watcher
// as well as the configuration and zoom endpoints post their updates to
// it. Every layout request copies the engine's settings and items through
// the loop and builds its own snapshot for the viewport it names, so
// clients of different sizes never disturb each other.
//
// # Endpoints
//
//	GET  /healthz             liveness and version
//	GET  /api/items           the item collection
//	GET  /api/layout          layout snapshot for ?width=&height=&scroll=&filter=
//	GET  /api/render          the same snapshot rendered as ?format=svg|png|json
//	GET  /api/config          current layout settings
//	PUT  /api/config          update layout settings (partial JSON)
//	POST /api/zoom/{dir}      zoom "in" or "out" for ?width=&height=
//	POST /api/activate/{id}   record the selected item
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/photowall/pkg/catalog"
	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/pipeline"
	"github.com/matzehuels/photowall/pkg/watcher"
)

// Timeouts for the HTTP server.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	requestTimeout    = 30 * time.Second
)

// Options configures a Server.
type Options struct {
	// Root is the scanned directory; it is watched when Watch is set.
	Root string

	// Config is the initial layout configuration.
	Config gallery.Config

	// Items is the initial collection.
	Items []gallery.Item

	// Runner renders /api/render responses. Nil renders without a cache.
	Runner *pipeline.Runner

	// Catalog probes files reported by the watcher. Nil uses an uncached
	// catalog.
	Catalog *catalog.Catalog

	Watch  bool
	Logger *log.Logger
}

// Server serves layout snapshots over HTTP.
type Server struct {
	root    string
	loop    *gallery.Loop
	runner  *pipeline.Runner
	catalog *catalog.Catalog
	watch   bool
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. The engine loop only starts with Run or Start.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New(catalog.WithLogger(logger))
	}
	engine := gallery.New(opts.Config,
		gallery.WithItems(opts.Items...),
		gallery.WithLogger(logger),
	)
	s := &Server{
		root:    opts.Root,
		loop:    gallery.NewLoop(engine, 64),
		runner:  runner,
		catalog: cat,
		watch:   opts.Watch,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(observe)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleItems)
		r.Get("/layout", s.handleLayout)
		r.Get("/render", s.handleRender)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
		r.Post("/zoom/{dir}", s.handleZoom)
		r.Post("/activate/{id}", s.handleActivate)
	})
	return r
}

// Start runs the engine loop and, if enabled, the watcher in the
// background until ctx is cancelled. Tests use it with Handler; Run calls
// it itself.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("engine loop stopped", "err", err)
		}
	}()
	if !s.watch {
		return nil
	}
	w, err := watcher.New(s.root, watcher.WithLogger(s.logger))
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("watcher stopped", "err", err)
		}
	}()
	go func() {
		for b := range w.Events() {
			s.apply(ctx, b)
		}
	}()
	s.logger.Info("watching for changes", "root", w.Root())
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := s.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// apply probes the files of a watcher batch and posts the item changes to
// the engine loop.
func (s *Server) apply(ctx context.Context, b watcher.Batch) {
	var entries []catalog.Entry
	for _, p := range append(append([]string(nil), b.Added...), b.Changed...) {
		if !catalog.IsImage(p) || b.Gone(p) {
			continue
		}
		e, err := catalog.Stat(s.root, p)
		if err != nil {
			s.logger.Debug("skipping watched file", "path", p, "err", err)
			continue
		}
		entries = append(entries, e)
	}
	probed, err := s.catalog.Items(ctx, entries)
	if err != nil {
		s.logger.Warn("probing watched files failed", "err", err)
		return
	}

	s.loop.Post(func(e *gallery.Engine) {
		items := e.Items()
		index := make(map[string]int, len(items))
		kept := items[:0]
		for _, it := range items {
			if b.Gone(it.Path) {
				continue
			}
			index[it.ID] = len(kept)
			kept = append(kept, it)
		}
		for _, it := range probed {
			if i, ok := index[it.ID]; ok {
				kept[i] = it
				continue
			}
			index[it.ID] = len(kept)
			kept = append(kept, it)
		}
		e.SetItems(kept)
		s.logger.Info("catalog updated",
			"added", len(b.Added), "changed", len(b.Changed), "removed", len(b.Removed),
			"items", len(kept))
	})
}
