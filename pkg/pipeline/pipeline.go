// Package pipeline provides the batch scan → layout → render pipeline for
// photowall.
//
// The interactive hosts drive a long-lived [gallery.Engine]. Everything that
// produces a file instead (the scan, layout and render commands, and the HTTP
// host's render endpoint) goes through this package so that defaults,
// validation and caching behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scan: Walk a directory and probe every image for its aspect ratio
//  2. Layout: Partition the items into bins for a fixed viewport
//  3. Render: Generate output in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Root:    "~/Pictures/holiday",
//	    Width:   1600,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Scan only
//	items, err := runner.Scan(ctx, opts)
//
//	// Layout existing items
//	layout, err := runner.Layout(ctx, items, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, layout, items, opts)
package pipeline

import (
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photowall/pkg/cache"
	"github.com/matzehuels/photowall/pkg/catalog"
	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 800.0

	// DefaultBackground is the canvas colour for SVG and PNG output.
	DefaultBackground = "#ffffff"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatSVG  = string(sink.FormatSVG)
	FormatPNG  = string(sink.FormatPNG)
	FormatJSON = string(sink.FormatJSON)
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scan options
	Root     string `json:"root,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
	Workers  int    `json:"workers,omitempty"`
	Filter   string `json:"filter,omitempty"` // fuzzy pattern; non-matching items are hidden

	// Layout options
	Width           float64 `json:"width,omitempty"`
	Height          float64 `json:"height,omitempty"`
	Orientation     string  `json:"orientation,omitempty"`
	// Zero lengths mean unset and take the gallery defaults. A target below
	// the minimum is raised to it.
	TargetLength    int     `json:"target_length,omitempty"`
	MinTargetLength int     `json:"min_target_length,omitempty"`
	Spacing         float64 `json:"spacing,omitempty"`
	Convergent      bool    `json:"convergent,omitempty"`
	Scroll          float64 `json:"scroll,omitempty"` // scroll-axis fraction in [0,1]
	Zoom            int     `json:"zoom,omitempty"`   // >0 zooms in, <0 zooms out, one bin per step

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	Labels     bool     `json:"labels,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger   `json:"-"`
	ProbeTTL time.Duration `json:"-"` // lifetime of cached probes; 0 uses cache.TTLProbe

	// SpacingSet marks Spacing as explicit so that zero spacing survives
	// SetLayoutDefaults.
	SpacingSet bool `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items are the scanned items in catalog order.
	Items []gallery.Item

	// ItemsHash is the content hash of the item set.
	ItemsHash string

	// Layout is the computed wall.
	Layout gallery.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	BinCount   int
	Balance    gallery.Stats
	ScanTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage. Scans are never
// cached as a whole; individual probes are.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOrientation checks that an orientation name parses.
func ValidateOrientation(s string) error {
	_, err := gallery.ParseOrientation(s)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForScan checks required fields for scanning.
func (o *Options) ValidateForScan() error {
	if strings.TrimSpace(o.Root) == "" {
		return perrors.New(perrors.ErrCodeInvalidPath, "root directory is required")
	}
	if o.MaxDepth < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "max_depth must not be negative")
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Orientation == "" {
		o.Orientation = gallery.Horizontal.String()
	}
	// Zero is the unset sentinel; other out-of-range lengths are clamped by
	// GalleryConfig.
	if o.TargetLength == 0 {
		o.TargetLength = gallery.DefaultTargetLength
	}
	if o.MinTargetLength == 0 {
		o.MinTargetLength = gallery.DefaultMinTargetLength
	}
	if o.Spacing == 0 && !o.SpacingSet {
		o.Spacing = gallery.DefaultSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return perrors.New(perrors.ErrCodeInvalidViewport,
			"viewport must not be negative (got %gx%g)", o.Width, o.Height)
	}
	if o.Scroll < 0 || o.Scroll > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "scroll must be within [0,1] (got %g)", o.Scroll)
	}
	return ValidateOrientation(o.Orientation)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "scale must be positive (got %g)", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ScanOptions returns the catalog walk bounds.
func (o *Options) ScanOptions() catalog.ScanOptions {
	return catalog.ScanOptions{MaxDepth: o.MaxDepth, Workers: o.Workers}
}

// GalleryConfig converts the layout options into a normalized engine config.
// Zoom steps are applied by the layout stage, which knows the item count.
func (o *Options) GalleryConfig() (gallery.Config, error) {
	orient, err := gallery.ParseOrientation(o.Orientation)
	if err != nil {
		return gallery.Config{}, err
	}
	cfg := gallery.Config{
		TargetLength:        o.TargetLength,
		MinTargetLength:     o.MinTargetLength,
		Spacing:             o.Spacing,
		Orientation:         orient,
		ConvergentScrolling: o.Convergent,
	}.Floored()
	return cfg, nil
}

// Viewport returns the configured viewport.
func (o *Options) Viewport() gallery.Viewport {
	return gallery.Viewport{Width: o.Width, Height: o.Height}
}

// ScrollPosition places Scroll on the scroll axis of the given orientation.
func (o *Options) ScrollPosition(orient gallery.Orientation) gallery.ScrollPosition {
	if orient == gallery.Vertical {
		return gallery.ScrollPosition{H: o.Scroll}
	}
	return gallery.ScrollPosition{V: o.Scroll}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Orientation:  strings.ToLower(o.Orientation),
		TargetLength: o.TargetLength,
		Spacing:      o.Spacing,
		Width:        o.Width,
		Height:       o.Height,
		Convergent:   o.Convergent,
		Scroll:       o.Scroll,
		MinTarget:    o.MinTargetLength,
		Zoom:         o.Zoom,
		Filter:       o.Filter,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Background: o.Background,
		Labels:     o.Labels,
		Scale:      o.Scale,
	}
}

// SinkOptions returns the render options for the given items.
func (o *Options) SinkOptions(items []gallery.Item) []sink.Option {
	opts := []sink.Option{
		sink.WithItems(items),
		sink.WithBackground(o.Background),
		sink.WithScale(o.Scale),
	}
	if o.Labels {
		opts = append(opts, sink.WithLabels())
	}
	return opts
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
