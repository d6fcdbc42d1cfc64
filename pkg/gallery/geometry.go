package gallery

// Rect is an absolutely positioned placement, ready for a sink to draw.
// Coordinates include a padding of Spacing around the whole wall.
type Rect struct {
	ID      string
	Bin     int
	X, Y    float64
	W, H    float64
	Visible bool
}

// ContentSize returns the full scrollable size of the wall, padding included.
func (l Layout) ContentSize() (width, height float64) {
	if l.Empty() {
		return 2 * l.Spacing, 2 * l.Spacing
	}
	across := float64(l.BinCount)*l.ItemExtent + float64(l.BinCount+1)*l.Spacing
	along := l.ContentExtent + 2*l.Spacing
	if l.Orientation == Vertical {
		return along, across
	}
	return across, along
}

// Rects flattens the layout into absolutely positioned rectangles, bin by
// bin in order.
func (l Layout) Rects() []Rect {
	rects := make([]Rect, 0, l.ItemCount())
	for _, b := range l.Bins {
		lane := l.Spacing + float64(b.Index)*(l.ItemExtent+l.Spacing)
		for _, p := range b.Items {
			pos := l.Spacing + b.Margin + p.Offset
			r := Rect{ID: p.ID, Bin: b.Index, Visible: p.Visible}
			switch l.Orientation {
			case Vertical:
				r.X, r.Y, r.W, r.H = pos, lane, p.CrossExtent, p.Extent
			default:
				r.X, r.Y, r.W, r.H = lane, pos, p.Extent, p.CrossExtent
			}
			rects = append(rects, r)
		}
	}
	return rects
}
