package sink

import (
	"encoding/json"

	"github.com/matzehuels/photowall/pkg/gallery"
)

type jsonOutput struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Orientation  string        `json:"orientation"`
	TargetLength int           `json:"target_length"`
	Spacing      float64       `json:"spacing"`
	ItemExtent   float64       `json:"item_extent"`
	Bins         []jsonBin     `json:"bins"`
	Items        []jsonItem    `json:"items"`
	Stats        gallery.Stats `json:"stats"`
}

type jsonBin struct {
	Index  int      `json:"index"`
	Extent float64  `json:"extent"`
	Margin float64  `json:"margin"`
	Items  []string `json:"items"`
}

type jsonItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Bin     int     `json:"bin"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
}

// RenderJSON exports the layout with absolute rectangles for external tools.
func RenderJSON(l gallery.Layout, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	w, h := l.ContentSize()

	out := jsonOutput{
		Width:        w,
		Height:       h,
		Orientation:  l.Orientation.String(),
		TargetLength: l.TargetLength,
		Spacing:      l.Spacing,
		ItemExtent:   l.ItemExtent,
		Bins:         make([]jsonBin, len(l.Bins)),
		Stats:        l.Stats(),
	}
	for i, b := range l.Bins {
		out.Bins[i] = jsonBin{Index: b.Index, Extent: b.Extent, Margin: b.Margin, Items: b.IDs()}
	}
	rects := l.Rects()
	out.Items = make([]jsonItem, len(rects))
	for i, r := range rects {
		out.Items[i] = jsonItem{
			ID:      r.ID,
			Name:    o.names[r.ID],
			Bin:     r.Bin,
			X:       r.X,
			Y:       r.Y,
			Width:   r.W,
			Height:  r.H,
			Visible: r.Visible,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
