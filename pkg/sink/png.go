package sink

import (
	"bytes"
	"math"

	"git.sr.ht/~sbinet/gg"

	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// maxPNGSide bounds the raster size to keep memory use predictable.
const maxPNGSide = 16384

// RenderPNG rasterizes the layout. WithScale multiplies the output size.
func RenderPNG(l gallery.Layout, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	w, h := l.ContentSize()
	pw, ph := int(math.Ceil(w*o.scale)), int(math.Ceil(h*o.scale))
	if pw < 1 || ph < 1 || pw > maxPNGSide || ph > maxPNGSide {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "png size %dx%d out of range", pw, ph)
	}

	dc := gg.NewContext(pw, ph)
	dc.Scale(o.scale, o.scale)

	bg := parseHex(o.background)
	dc.SetRGB255(int(bg[0]), int(bg[1]), int(bg[2]))
	dc.Clear()

	for _, r := range l.Rects() {
		c := tileColor(r.ID)
		alpha := 1.0
		if !r.Visible {
			alpha = hiddenOpacity
		}
		dc.SetRGBA(float64(c[0])/255, float64(c[1])/255, float64(c[2])/255, alpha)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()

		if o.labels {
			dc.SetRGB(0.12, 0.14, 0.16)
			dc.DrawString(o.name(r.ID), r.X+4, r.Y+r.H-6)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
