// Package pkg provides the libraries behind photowall, the adaptive photo
// wall layout engine.
//
// # Overview
//
// Photowall arranges a folder of images into balanced columns or rows that
// fill a viewport, like thumbnails pinned to a wall. The pkg directory is
// organized into four areas:
//
//  1. [gallery] - The layout engine (partitioning, sizing, zoom, convergent scrolling)
//  2. [catalog] and [watcher] - Finding images, probing their aspect ratios, following changes
//  3. [cache], [config], [errors], [observability] - Infrastructure
//  4. [pipeline] and [sink] - Orchestration (scan → layout → render) and output formats
//
// # Architecture
//
// The typical data flow through photowall:
//
//	Image folder
//	     ↓
//	[catalog] package (walk, probe dimensions and EXIF orientation)
//	     ↓
//	[gallery] package (bins, extents, margins for a viewport)
//	     ↓
//	[sink] package (SVG, PNG or JSON)
//
// Interactive hosts skip the sink: they keep a [gallery.Engine] alive and
// draw each layout snapshot themselves.
//
// # Quick Start
//
// Lay out a folder and render it:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/photowall/pkg/catalog"
//	    "github.com/matzehuels/photowall/pkg/gallery"
//	    "github.com/matzehuels/photowall/pkg/sink"
//	)
//
//	items, _ := catalog.New().Load(context.Background(), "holiday")
//	l := gallery.Build(gallery.DefaultConfig(), items,
//	    gallery.Viewport{Width: 1600, Height: 900}, gallery.ScrollPosition{})
//	svg, _ := sink.Render(l, sink.FormatSVG, sink.WithItems(items))
//	os.WriteFile("holiday.svg", svg, 0o644)
//
// Or drive an engine that recomputes on every change:
//
//	e := gallery.New(gallery.DefaultConfig(),
//	    gallery.WithItems(items...),
//	    gallery.WithOnLayout(func(l gallery.Layout) { redraw(l) }),
//	)
//	e.SetViewport(gallery.Viewport{Width: 1600, Height: 900})
//	e.ZoomIn()
//
// # Caching
//
// Probing dimensions means opening every file, so [catalog] caches probe
// results keyed by path, size and modification time. [cache] provides
// file, Redis and null backends behind one interface; the [pipeline]
// runner also caches layouts and rendered artifacts there.
//
// # Errors
//
// Library packages return coded errors from [errors], so that hosts can map
// them to exit codes or HTTP statuses with [errors.HTTPStatus].
package pkg
