package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/photowall/pkg/buildinfo"
	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/pipeline"
	"github.com/matzehuels/photowall/pkg/sink"
)

// =============================================================================
// Response Types
// =============================================================================

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Items   int    `json:"items"`
}

type contentSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type layoutResponse struct {
	Layout  gallery.Layout `json:"layout"`
	Stats   gallery.Stats  `json:"stats"`
	Content contentSize    `json:"content"`
	Cached  bool           `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// configPatch is the body of PUT /api/config. Absent fields keep their
// current value.
type configPatch struct {
	TargetLength        *int     `json:"target_length"`
	MinTargetLength     *int     `json:"min_target_length"`
	Spacing             *float64 `json:"spacing"`
	Orientation         *string  `json:"orientation"`
	ConvergentScrolling *bool    `json:"convergent_scrolling"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var n int
	if err := s.loop.Call(r.Context(), func(e *gallery.Engine) { n = len(e.Items()) }); err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version, Items: n})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	var items []gallery.Item
	if err := s.loop.Call(r.Context(), func(e *gallery.Engine) { items = e.Items() }); err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable"))
		return
	}
	if items == nil {
		items = []gallery.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	items, opts, err := s.layoutRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), items, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cw, ch := l.ContentSize()
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:  l,
		Stats:   l.Stats(),
		Content: contentSize{Width: cw, Height: ch},
		Cached:  hit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	items, opts, err := s.layoutRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	format, err := sink.ParseFormat(defaultString(q.Get("format"), pipeline.FormatSVG))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{string(format)}
	opts.Background = q.Get("background")
	opts.Labels = q.Get("labels") == "true"
	if opts.Scale, err = queryFloat(q, "scale", pipeline.DefaultScale); err != nil {
		s.writeError(w, err)
		return
	}

	l, err := s.runner.Layout(r.Context(), items, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), l, pipeline.ApplyFilter(items, opts.Filter), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[string(format)])
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.config(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var patch configPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "invalid config body"))
		return
	}
	var orient *gallery.Orientation
	if patch.Orientation != nil {
		o, err := gallery.ParseOrientation(*patch.Orientation)
		if err != nil {
			s.writeError(w, err)
			return
		}
		orient = &o
	}

	var cfg gallery.Config
	err := s.loop.Call(r.Context(), func(e *gallery.Engine) {
		next := e.Config()
		if patch.TargetLength != nil {
			next.TargetLength = *patch.TargetLength
		}
		if patch.MinTargetLength != nil {
			next.MinTargetLength = *patch.MinTargetLength
		}
		if patch.Spacing != nil {
			next.Spacing = *patch.Spacing
		}
		if orient != nil {
			next.Orientation = *orient
		}
		if patch.ConvergentScrolling != nil {
			next.ConvergentScrolling = *patch.ConvergentScrolling
		}
		e.SetConfig(next)
		cfg = e.Config()
	})
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable"))
		return
	}
	s.logger.Info("config updated", "target", cfg.TargetLength, "orientation", cfg.Orientation)
	writeJSON(w, http.StatusOK, cfg)
}

// handleZoom steps the shared target length. Zoom steps depend on the
// viewport, so the client names the one it displays.
func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	dir := chi.URLParam(r, "dir")
	if dir != "in" && dir != "out" {
		s.writeError(w, perrors.New(perrors.ErrCodeInvalidInput, "zoom direction must be in or out, got %q", dir))
		return
	}
	vp, err := viewport(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var cfg gallery.Config
	err = s.loop.Call(r.Context(), func(e *gallery.Engine) {
		e.SetViewport(vp)
		if dir == "in" {
			e.ZoomIn()
		} else {
			e.ZoomOut()
		}
		cfg = e.Config()
	})
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		ok bool
		it gallery.Item
	)
	err := s.loop.Call(r.Context(), func(e *gallery.Engine) {
		if ok = e.Activate(id); ok {
			it, _ = e.Item(id)
		}
	})
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable"))
		return
	}
	if !ok {
		s.writeError(w, perrors.New(perrors.ErrCodeItemNotFound, "no item with id %q", id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// =============================================================================
// Helpers
// =============================================================================

// config reads the shared layout settings.
func (s *Server) config(r *http.Request) (gallery.Config, error) {
	var cfg gallery.Config
	if err := s.loop.Call(r.Context(), func(e *gallery.Engine) { cfg = e.Config() }); err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable")
	}
	return cfg, nil
}

// layoutRequest copies the items and settings from the engine and merges
// them with the request's viewport, scroll, filter and orientation.
func (s *Server) layoutRequest(r *http.Request) ([]gallery.Item, pipeline.Options, error) {
	var (
		cfg   gallery.Config
		items []gallery.Item
	)
	err := s.loop.Call(r.Context(), func(e *gallery.Engine) {
		cfg, items = e.Config(), e.Items()
	})
	if err != nil {
		return nil, pipeline.Options{}, perrors.Wrap(perrors.ErrCodeInternal, err, "engine unavailable")
	}

	vp, err := viewport(r)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	q := r.URL.Query()
	scroll, err := queryFloat(q, "scroll", 0)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	zoom, err := queryInt(q, "zoom", 0)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Width:           vp.Width,
		Height:          vp.Height,
		Orientation:     defaultString(q.Get("orientation"), cfg.Orientation.String()),
		TargetLength:    cfg.TargetLength,
		MinTargetLength: cfg.MinTargetLength,
		Spacing:         cfg.Spacing,
		SpacingSet:      true,
		Convergent:      cfg.ConvergentScrolling,
		Scroll:          scroll,
		Zoom:            zoom,
		Filter:          q.Get("filter"),
		Refresh:         q.Get("refresh") == "true",
		Logger:          s.logger,
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, pipeline.Options{}, err
	}
	return items, opts, nil
}

// viewport reads ?width= and ?height=, defaulting to the pipeline defaults.
func viewport(r *http.Request) (gallery.Viewport, error) {
	q := r.URL.Query()
	width, err := queryFloat(q, "width", pipeline.DefaultWidth)
	if err != nil {
		return gallery.Viewport{}, err
	}
	height, err := queryFloat(q, "height", pipeline.DefaultHeight)
	if err != nil {
		return gallery.Viewport{}, err
	}
	if err := perrors.ValidateViewport(width, height); err != nil {
		return gallery.Viewport{}, err
	}
	return gallery.Viewport{Width: width, Height: height}, nil
}

func queryFloat(q map[string][]string, name string, def float64) (float64, error) {
	v := first(q[name])
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

func queryInt(q map[string][]string, name string, def int) (int, error) {
	v := first(q[name])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := perrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: perrors.UserMessage(err),
		Code:  string(perrors.GetCode(err)),
	})
}
