package gallery

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/observability"
)

// =============================================================================
// Options
// =============================================================================

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithItems seeds the engine with an initial item collection.
func WithItems(items ...Item) Option {
	return func(e *Engine) { e.items = append([]Item(nil), items...) }
}

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) Option {
	return func(e *Engine) { e.viewport = v.normalized() }
}

// WithScroll sets the initial scroll position.
func WithScroll(s ScrollPosition) Option {
	return func(e *Engine) { e.scroll = s.normalized() }
}

// WithOnLayout registers the callback that receives every layout snapshot.
// The callback runs synchronously on the goroutine that called the mutator
// and must not mutate the engine.
func WithOnLayout(fn func(Layout)) Option {
	return func(e *Engine) { e.onLayout = fn }
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks overrides the globally registered layout hooks.
func WithHooks(h observability.LayoutHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// =============================================================================
// Engine
// =============================================================================

// Engine owns the layout state of one gallery and recomputes it on every
// mutation.
//
// An Engine is not safe for concurrent use. It must be driven from a single
// goroutine; hosts without such a goroutine can use a [Loop].
type Engine struct {
	cfg      Config
	items    []Item
	viewport Viewport
	scroll   ScrollPosition
	layout   Layout

	onLayout func(Layout)
	logger   *log.Logger
	hooks    observability.LayoutHooks

	activated    string
	hasActivated bool

	recomputing bool
}

// New creates an engine and runs the first recompute before returning, so
// the OnLayout callback fires once during construction.
//
// New panics if cfg.Orientation is not Horizontal or Vertical.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg.Floored(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hooks == nil {
		e.hooks = observability.Layout()
	}
	e.recompute()
	return e
}

// =============================================================================
// Readers
// =============================================================================

// Config returns the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// Layout returns a deep copy of the latest snapshot.
func (e *Engine) Layout() Layout { return e.layout.Clone() }

// Items returns a copy of the item collection in insertion order.
func (e *Engine) Items() []Item { return append([]Item(nil), e.items...) }

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport { return e.viewport }

// Scroll returns the last scroll position reported by the host.
func (e *Engine) Scroll() ScrollPosition { return e.scroll }

// Item looks up an item by id.
func (e *Engine) Item(id string) (Item, bool) {
	if i := e.indexOf(id); i >= 0 {
		return e.items[i], true
	}
	return Item{}, false
}

// Activated returns the id recorded by the last successful Activate.
func (e *Engine) Activated() (string, bool) { return e.activated, e.hasActivated }

// Activate records id as the selected item. It reports false for unknown
// ids and never triggers a recompute.
func (e *Engine) Activate(id string) bool {
	if e.indexOf(id) < 0 {
		return false
	}
	e.activated, e.hasActivated = id, true
	e.logger.Debug("item activated", "id", id)
	return true
}

// =============================================================================
// Mutators
// =============================================================================

// SetViewport records a new viewport size.
func (e *Engine) SetViewport(v Viewport) {
	e.mutate(func() { e.viewport = v.normalized() })
}

// SetScroll records a new scroll position. The layout is only recomputed
// while convergent scrolling is enabled.
func (e *Engine) SetScroll(s ScrollPosition) {
	e.guard()
	e.scroll = s.normalized()
	if e.cfg.ConvergentScrolling {
		e.recompute()
	}
}

// SetConfig replaces the whole configuration. A target length below the
// minimum is raised to it. Like New, it panics on an invalid orientation,
// before any state changes.
func (e *Engine) SetConfig(cfg Config) {
	cfg = cfg.Floored()
	e.mutate(func() {
		if cfg.Orientation != e.cfg.Orientation {
			e.scroll = ScrollPosition{}
		}
		e.cfg = cfg
	})
}

// SetItems replaces the item collection.
func (e *Engine) SetItems(items []Item) {
	e.mutate(func() { e.items = append([]Item(nil), items...) })
}

// AddItems appends items to the end of the collection.
func (e *Engine) AddItems(items ...Item) {
	e.mutate(func() { e.items = append(e.items, items...) })
}

// RemoveItems drops every item whose id is listed and returns how many
// were removed.
func (e *Engine) RemoveItems(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var removed int
	e.mutate(func() {
		kept := e.items[:0]
		for _, it := range e.items {
			if _, ok := drop[it.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		clear(e.items[len(kept):])
		e.items = kept
		if _, ok := drop[e.activated]; ok && e.hasActivated {
			e.activated, e.hasActivated = "", false
		}
	})
	return removed
}

// SetVisible flips the visibility of one item. It reports false, without
// recomputing, when the id is unknown.
func (e *Engine) SetVisible(id string, visible bool) bool {
	e.guard()
	i := e.indexOf(id)
	if i < 0 {
		return false
	}
	e.mutate(func() { e.items[i].Visible = visible })
	return true
}

// SetVisibility sets every item's visibility from pred in one recompute.
func (e *Engine) SetVisibility(pred func(Item) bool) {
	e.mutate(func() {
		for i := range e.items {
			e.items[i].Visible = pred(e.items[i])
		}
	})
}

// SetOrientation switches the main axis and resets the scroll position.
// It panics on values outside the closed set.
func (e *Engine) SetOrientation(o Orientation) {
	o.mustBeValid()
	e.mutate(func() {
		if o != e.cfg.Orientation {
			e.scroll = ScrollPosition{}
		}
		e.cfg.Orientation = o
	})
}

// SetSpacing sets the gap between bins and between items in a bin.
func (e *Engine) SetSpacing(spacing float64) {
	e.mutate(func() {
		e.cfg.Spacing = spacing
		e.cfg = e.cfg.Normalized()
	})
}

// SetTargetLength sets the preferred main-axis size. Negative values are
// taken by absolute value.
func (e *Engine) SetTargetLength(n int) {
	e.mutate(func() {
		e.cfg.TargetLength = n
		e.cfg = e.cfg.Normalized()
	})
}

// SetMinTargetLength sets the zoom-out floor, raising the target length
// when it falls below.
func (e *Engine) SetMinTargetLength(n int) {
	e.mutate(func() { e.cfg = e.cfg.withMinTargetLength(n) })
}

// SetConvergentScrolling enables or disables scroll compensation margins.
func (e *Engine) SetConvergentScrolling(enabled bool) {
	e.mutate(func() { e.cfg.ConvergentScrolling = enabled })
}

// ZoomIn makes thumbnails larger by about one bin.
func (e *Engine) ZoomIn() {
	e.mutate(func() {
		from := e.cfg.TargetLength
		e.cfg = ZoomIn(e.cfg, e.cfg.Orientation.mainExtent(e.viewport), len(e.items))
		e.hooks.OnZoom("in", from, e.cfg.TargetLength)
	})
}

// ZoomOut makes thumbnails smaller by about one bin.
func (e *Engine) ZoomOut() {
	e.mutate(func() {
		from := e.cfg.TargetLength
		e.cfg = ZoomOut(e.cfg, e.cfg.Orientation.mainExtent(e.viewport), len(e.items))
		e.hooks.OnZoom("out", from, e.cfg.TargetLength)
	})
}

// =============================================================================
// Recompute
// =============================================================================

func (e *Engine) mutate(fn func()) {
	e.guard()
	fn()
	e.recompute()
}

// guard panics when a mutator runs from inside the OnLayout callback.
func (e *Engine) guard() {
	if e.recomputing {
		panic(perrors.New(perrors.ErrCodeInternal, "gallery: engine mutated from inside its layout callback"))
	}
}

func (e *Engine) recompute() {
	e.recomputing = true
	defer func() { e.recomputing = false }()

	start := time.Now()
	e.layout = Build(e.cfg, e.items, e.viewport, e.scroll)
	elapsed := time.Since(start)

	e.hooks.OnRecompute(e.layout.BinCount, len(e.items), elapsed)
	e.logger.Debug("layout recomputed",
		"orientation", e.cfg.Orientation,
		"bins", e.layout.BinCount,
		"items", len(e.items),
		"extent", e.layout.ItemExtent,
		"took", elapsed)

	if e.onLayout != nil {
		e.onLayout(e.layout.Clone())
	}
}

func (e *Engine) indexOf(id string) int {
	for i, it := range e.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
