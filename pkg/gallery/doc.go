// Package gallery lays out a collection of images as a wall of evenly
// filled columns or rows that adapts to the size of its viewport.
//
// # Overview
//
// Items are distributed round-robin into bins. With [Horizontal]
// orientation the bins are columns and the wall scrolls vertically; with
// [Vertical] they are rows and the wall scrolls horizontally. Every item in
// a layout shares one main-axis extent, and its cross-axis extent follows
// from its aspect ratio, so bins end up with different lengths.
//
// The package is split into pure building blocks and one stateful owner:
//
//   - [ComputeBinCount] and [Partition] decide how many bins there are and
//     which item goes where.
//   - [ComputeItemExtent] sizes items to fill the viewport.
//   - [ZoomIn] and [ZoomOut] step the target length by about one bin.
//   - [ConvergeMargins] offsets long bins while scrolling.
//   - [Build] combines all of the above into a [Layout] snapshot.
//   - [Engine] owns the state and rebuilds on every mutation.
//
// # Basic Usage
//
//	e := gallery.New(gallery.DefaultConfig(),
//	    gallery.WithItems(items...),
//	    gallery.WithViewport(gallery.Viewport{Width: 900, Height: 600}),
//	    gallery.WithOnLayout(func(l gallery.Layout) { draw(l) }),
//	)
//	e.ZoomIn()
//	e.SetViewport(gallery.Viewport{Width: 1200, Height: 800})
//
// # Visibility
//
// When no item is visible the layout is empty. As soon as one item is
// visible, every item is placed, hidden ones included, and hosts decide how
// to draw hidden placements. This keeps bin assignment stable while a
// filter is being typed.
//
// # Convergent Scrolling
//
// With [Config.ConvergentScrolling] enabled, bins longer than the viewport
// receive a leading margin proportional to the scroll fraction, so that the
// trailing edges of all bins line up when the scroll reaches the end.
// Scroll updates are ignored while the feature is off.
//
// # Concurrency
//
// An [Engine] has no locks and must be driven from one goroutine. Every
// mutator recomputes synchronously and hands a deep copy of the result to
// the OnLayout callback before returning. Mutating the engine from inside
// that callback panics. Hosts that receive events on several goroutines
// can queue them through a [Loop].
package gallery
