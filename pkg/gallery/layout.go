package gallery

// Placement is one item positioned inside a bin.
type Placement struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`

	// Extent is the size along the main axis (width for Horizontal, height
	// for Vertical). Every placement in a layout shares the same extent.
	Extent float64 `json:"extent"`

	// CrossExtent is the aspect-preserving size along the scroll axis.
	CrossExtent float64 `json:"cross_extent"`

	// Offset is the distance from the bin's leading edge, margin excluded.
	Offset float64 `json:"offset"`
}

// Bin is one column (Horizontal) or row (Vertical) of the wall.
type Bin struct {
	Index int         `json:"index"`
	Items []Placement `json:"items"`

	// Extent is the bin's length along the scroll axis, spacing included.
	Extent float64 `json:"extent"`

	// Margin is the leading scroll-axis offset set by convergent scrolling.
	Margin float64 `json:"margin"`
}

// IDs returns the item ids of the bin in order.
func (b Bin) IDs() []string {
	ids := make([]string, len(b.Items))
	for i, p := range b.Items {
		ids[i] = p.ID
	}
	return ids
}

// Layout is an immutable snapshot of the wall produced by one recompute.
type Layout struct {
	Orientation  Orientation    `json:"orientation"`
	Viewport     Viewport       `json:"viewport"`
	Scroll       ScrollPosition `json:"scroll"`
	TargetLength int            `json:"target_length"`
	Spacing      float64        `json:"spacing"`
	BinCount     int            `json:"bin_count"`
	ItemExtent   float64        `json:"item_extent"`

	// ContentExtent is the scroll-axis length of the longest bin including
	// its margin.
	ContentExtent float64 `json:"content_extent"`

	Bins []Bin `json:"bins"`
}

// Empty reports whether the layout holds no bins, which happens when no
// item is visible.
func (l Layout) Empty() bool { return len(l.Bins) == 0 }

// ItemCount returns the number of placements across all bins.
func (l Layout) ItemCount() int {
	n := 0
	for _, b := range l.Bins {
		n += len(b.Items)
	}
	return n
}

// Find locates an item by id and returns its bin and position in the bin.
func (l Layout) Find(id string) (bin, pos int, ok bool) {
	for b, bn := range l.Bins {
		for i, p := range bn.Items {
			if p.ID == id {
				return b, i, true
			}
		}
	}
	return 0, 0, false
}

// Clone returns a deep copy so callers never share slices with the engine.
func (l Layout) Clone() Layout {
	if l.Bins == nil {
		return l
	}
	bins := make([]Bin, len(l.Bins))
	for i, b := range l.Bins {
		b.Items = append([]Placement(nil), b.Items...)
		bins[i] = b
	}
	l.Bins = bins
	return l
}

// Build computes a layout from scratch. It is a pure function of its inputs
// and is what the Engine runs on every recompute.
//
// When no item is visible the layout is empty. Otherwise every item, hidden
// or not, is placed: visibility gates the rebuild, not the bin contents.
// Build panics if cfg.Orientation is outside the closed set.
func Build(cfg Config, items []Item, vp Viewport, scroll ScrollPosition) Layout {
	cfg.Orientation.mustBeValid()
	vp = vp.normalized()
	scroll = scroll.normalized()

	l := Layout{
		Orientation:  cfg.Orientation,
		Viewport:     vp,
		Scroll:       scroll,
		TargetLength: atLeastOne(cfg.TargetLength),
		Spacing:      normalizeSpacing(cfg.Spacing),
	}
	if !anyVisible(items) {
		return l
	}

	n := len(items)
	mainExtent := cfg.Orientation.mainExtent(vp)
	l.BinCount = ComputeBinCount(mainExtent, l.TargetLength, n)
	l.ItemExtent = ComputeItemExtent(mainExtent, l.BinCount, l.Spacing, l.TargetLength, n)

	groups := Partition(items, l.BinCount)
	l.Bins = make([]Bin, len(groups))
	lengths := make([]float64, len(groups))
	for b, group := range groups {
		bin := Bin{Index: b, Items: make([]Placement, len(group))}
		var offset float64
		for i, it := range group {
			if i > 0 {
				offset += l.Spacing
			}
			cross := cfg.Orientation.crossExtent(l.ItemExtent, it.aspect())
			bin.Items[i] = Placement{
				ID:          it.ID,
				Visible:     it.Visible,
				Extent:      l.ItemExtent,
				CrossExtent: cross,
				Offset:      offset,
			}
			offset += cross
		}
		bin.Extent = offset
		lengths[b] = offset
		l.Bins[b] = bin
	}

	if cfg.ConvergentScrolling {
		margins := ConvergeMargins(lengths,
			cfg.Orientation.scrollExtent(vp),
			cfg.Orientation.scrollFraction(scroll))
		for b := range l.Bins {
			l.Bins[b].Margin = margins[b]
		}
	}

	for _, b := range l.Bins {
		l.ContentExtent = max(l.ContentExtent, b.Extent+b.Margin)
	}
	return l
}
