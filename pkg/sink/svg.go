package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/photowall/pkg/gallery"
)

// RenderSVG renders the layout as a standalone SVG document. Coordinates
// are rounded to whole pixels.
func RenderSVG(l gallery.Layout, opts ...Option) []byte {
	o := newOptions(opts...)
	w, h := l.ContentSize()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(w), px(h))
	canvas.Rect(0, 0, px(w), px(h), fmt.Sprintf(`fill="%s"`, hexColor(parseHex(o.background))))

	for _, r := range l.Rects() {
		attrs := []string{
			fmt.Sprintf(`id="item-%s"`, r.ID),
			fmt.Sprintf(`fill="%s"`, hexColor(tileColor(r.ID))),
		}
		if !r.Visible {
			attrs = append(attrs, fmt.Sprintf(`opacity="%.2f"`, hiddenOpacity))
		}
		canvas.Group(`class="item"`)
		canvas.Title(o.name(r.ID))
		canvas.Rect(px(r.X), px(r.Y), px(r.W), px(r.H), attrs...)
		if o.labels {
			canvas.Text(px(r.X+4), px(r.Y+r.H-6), o.name(r.ID), "font-family:sans-serif;font-size:11px;fill:#1f2328")
		}
		canvas.Gend()
	}
	canvas.End()
	return buf.Bytes()
}

func px(f float64) int { return int(math.Round(f)) }
