// Package sink renders a gallery layout snapshot into an output format.
//
// # Overview
//
// A "sink" maps a [gallery.Layout] onto concrete output. The layout only
// carries ids and geometry, so every sink draws each placement as a
// coloured tile; pass the item list with [WithItems] to add captions and
// hover titles. Hidden placements are drawn dimmed.
//
//   - SVG: [RenderSVG], one group per tile with a title for hover
//   - PNG: [RenderPNG], rasterized tiles, optionally scaled
//   - JSON: [RenderJSON], absolute rectangles plus bin metadata
//
// [Render] dispatches on a [Format] parsed from user input:
//
//	f, err := sink.ParseFormat("svg")
//	data, err := sink.Render(layout, f, sink.WithItems(items), sink.WithLabels())
//
// All sinks inset the wall by the layout's spacing on every side.
package sink
