package pipeline

import (
	"github.com/matzehuels/photowall/pkg/catalog"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// =============================================================================
// Layout Generation
// =============================================================================

// BuildLayout computes the wall for a fixed viewport. It applies the fuzzy
// filter and the zoom steps from opts before handing off to gallery.Build,
// so the result matches what an Engine would show after the same commands.
func BuildLayout(items []gallery.Item, opts Options) (gallery.Layout, error) {
	cfg, err := opts.GalleryConfig()
	if err != nil {
		return gallery.Layout{}, err
	}

	items = ApplyFilter(items, opts.Filter)
	vp := opts.Viewport()
	cfg = Zoom(cfg, mainExtent(cfg.Orientation, vp), len(items), opts.Zoom)

	return gallery.Build(cfg, items, vp, opts.ScrollPosition(cfg.Orientation)), nil
}

// Zoom applies steps zoom commands to cfg: positive steps zoom in, negative
// steps zoom out.
func Zoom(cfg gallery.Config, extent float64, itemCount, steps int) gallery.Config {
	for ; steps > 0; steps-- {
		cfg = gallery.ZoomIn(cfg, extent, itemCount)
	}
	for ; steps < 0; steps++ {
		cfg = gallery.ZoomOut(cfg, extent, itemCount)
	}
	return cfg
}

// ApplyFilter returns a copy of items with Visible set from a fuzzy match
// on item names. An empty pattern leaves items untouched.
func ApplyFilter(items []gallery.Item, pattern string) []gallery.Item {
	if pattern == "" {
		return items
	}
	keep := catalog.Visibility(items, pattern)
	out := make([]gallery.Item, len(items))
	for i, it := range items {
		it.Visible = keep(it)
		out[i] = it
	}
	return out
}

// =============================================================================
// Helpers
// =============================================================================

// mainExtent is the viewport size across the bins.
func mainExtent(o gallery.Orientation, vp gallery.Viewport) float64 {
	if o == gallery.Vertical {
		return vp.Height
	}
	return vp.Width
}
