package gallery

import (
	"math"
	"slices"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildTenItemsThreeColumns(t *testing.T) {
	l := Build(DefaultConfig(), makeItems(10, 1), Viewport{Width: 650, Height: 400}, ScrollPosition{})

	if l.BinCount != 3 || len(l.Bins) != 3 {
		t.Fatalf("BinCount = %d (%d bins), want 3", l.BinCount, len(l.Bins))
	}
	if got := l.Bins[0].IDs(); !slices.Equal(got, []string{"i0", "i3", "i6", "i9"}) {
		t.Errorf("bin 0 = %v", got)
	}
	if !approx(l.ItemExtent, 640.0/3) {
		t.Errorf("ItemExtent = %v, want %v", l.ItemExtent, 640.0/3)
	}
	wantLen := 4*(640.0/3) + 3*5
	if !approx(l.Bins[0].Extent, wantLen) {
		t.Errorf("bin 0 extent = %v, want %v", l.Bins[0].Extent, wantLen)
	}
	if !approx(l.ContentExtent, wantLen) {
		t.Errorf("ContentExtent = %v, want %v", l.ContentExtent, wantLen)
	}
	if p := l.Bins[0].Items[1]; !approx(p.Offset, 640.0/3+5) {
		t.Errorf("second placement offset = %v", p.Offset)
	}
}

func TestBuildNarrowViewportKeepsTarget(t *testing.T) {
	l := Build(DefaultConfig(), makeItems(2, 1), Viewport{Width: 150, Height: 400}, ScrollPosition{})
	if len(l.Bins) != 1 {
		t.Fatalf("got %d bins, want 1", len(l.Bins))
	}
	if got := l.Bins[0].IDs(); !slices.Equal(got, []string{"i0", "i1"}) {
		t.Errorf("bin = %v", got)
	}
	if l.ItemExtent != 200 {
		t.Errorf("ItemExtent = %v, want target length 200", l.ItemExtent)
	}
}

func TestBuildNoMarginsWithoutConvergentScrolling(t *testing.T) {
	items := makeItems(7, 1)
	items[0].AspectRatio = 0.25 // tall image makes bin 0 much longer
	cfg := DefaultConfig()

	for _, v := range []float64{0, 0.3, 1} {
		l := Build(cfg, items, Viewport{Width: 650, Height: 200}, ScrollPosition{V: v})
		for _, b := range l.Bins {
			if b.Margin != 0 {
				t.Errorf("scroll %v: bin %d margin = %v, want 0", v, b.Index, b.Margin)
			}
		}
	}
}

func TestBuildConvergent(t *testing.T) {
	items := makeItems(6, 1)
	items[0].AspectRatio = 0.5
	cfg := DefaultConfig()
	cfg.ConvergentScrolling = true
	vp := Viewport{Width: 650, Height: 200}

	top := Build(cfg, items, vp, ScrollPosition{V: 0})
	bottom := Build(cfg, items, vp, ScrollPosition{V: 1})

	for _, b := range top.Bins {
		if b.Margin != 0 {
			t.Errorf("at top bin %d margin = %v, want 0", b.Index, b.Margin)
		}
	}
	// Bin 0 is the longest; the others catch up by the full gap.
	longest := bottom.Bins[0].Extent
	for _, b := range bottom.Bins[1:] {
		if !approx(b.Extent+b.Margin, longest) {
			t.Errorf("bin %d ends at %v, want %v", b.Index, b.Extent+b.Margin, longest)
		}
	}
	if !approx(bottom.ContentExtent, longest) {
		t.Errorf("ContentExtent = %v, want %v", bottom.ContentExtent, longest)
	}
}

func TestBuildVisibilityGate(t *testing.T) {
	items := makeItems(4, 1)
	for i := range items {
		items[i].Visible = false
	}
	vp := Viewport{Width: 650, Height: 400}

	if l := Build(DefaultConfig(), items, vp, ScrollPosition{}); !l.Empty() {
		t.Fatalf("expected empty layout, got %d bins", len(l.Bins))
	}

	items[2].Visible = true
	l := Build(DefaultConfig(), items, vp, ScrollPosition{})
	if l.ItemCount() != 4 {
		t.Errorf("ItemCount = %d, want all 4 items placed", l.ItemCount())
	}
	b, pos, ok := l.Find("i2")
	if !ok || !l.Bins[b].Items[pos].Visible {
		t.Errorf("i2 should be placed and visible")
	}
	b, pos, _ = l.Find("i0")
	if l.Bins[b].Items[pos].Visible {
		t.Errorf("i0 should be placed hidden")
	}
}

func TestBuildVertical(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orientation = Vertical
	items := makeItems(4, 2)

	l := Build(cfg, items, Viewport{Width: 300, Height: 650}, ScrollPosition{})
	if l.BinCount != 3 {
		t.Fatalf("BinCount = %d, want 3 rows across 650px height", l.BinCount)
	}
	p := l.Bins[0].Items[0]
	if !approx(p.CrossExtent, 2*p.Extent) {
		t.Errorf("CrossExtent = %v, want width = height * aspect = %v", p.CrossExtent, 2*p.Extent)
	}
}

func TestBuildInvalidAspect(t *testing.T) {
	items := []Item{
		{ID: "zero", Visible: true},
		{ID: "neg", Visible: true, AspectRatio: -2},
		{ID: "nan", Visible: true, AspectRatio: math.NaN()},
	}
	l := Build(DefaultConfig(), items, Viewport{Width: 200, Height: 200}, ScrollPosition{})
	for _, p := range l.Bins[0].Items {
		if p.CrossExtent != p.Extent {
			t.Errorf("%s: CrossExtent = %v, want square %v", p.ID, p.CrossExtent, p.Extent)
		}
	}
}

func TestLayoutClone(t *testing.T) {
	l := Build(DefaultConfig(), makeItems(5, 1), Viewport{Width: 650, Height: 400}, ScrollPosition{})
	c := l.Clone()
	c.Bins[0].Items[0].ID = "changed"
	c.Bins[1].Margin = 99
	if l.Bins[0].Items[0].ID != "i0" || l.Bins[1].Margin != 0 {
		t.Error("Clone shares memory with the original")
	}
}

func TestRects(t *testing.T) {
	x := 640.0 / 3
	tests := []struct {
		name   string
		orient Orientation
		vp     Viewport
		id     string
		want   Rect
	}{
		{"HorizontalFirst", Horizontal, Viewport{Width: 650, Height: 400}, "i0", Rect{X: 5, Y: 5, W: x, H: x}},
		{"HorizontalNextBin", Horizontal, Viewport{Width: 650, Height: 400}, "i1", Rect{X: 5 + x + 5, Y: 5, W: x, H: x}},
		{"HorizontalSecondRow", Horizontal, Viewport{Width: 650, Height: 400}, "i3", Rect{X: 5, Y: 5 + x + 5, W: x, H: x}},
		{"VerticalNextBin", Vertical, Viewport{Width: 400, Height: 650}, "i1", Rect{X: 5, Y: 5 + x + 5, W: x, H: x}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Orientation = tt.orient
			l := Build(cfg, makeItems(10, 1), tt.vp, ScrollPosition{})
			for _, r := range l.Rects() {
				if r.ID != tt.id {
					continue
				}
				if !approx(r.X, tt.want.X) || !approx(r.Y, tt.want.Y) || !approx(r.W, tt.want.W) || !approx(r.H, tt.want.H) {
					t.Errorf("rect = %+v, want %+v", r, tt.want)
				}
				return
			}
			t.Errorf("no rect for %s", tt.id)
		})
	}
}

func TestContentSize(t *testing.T) {
	l := Build(DefaultConfig(), makeItems(10, 1), Viewport{Width: 650, Height: 400}, ScrollPosition{})
	w, h := l.ContentSize()
	if !approx(w, 660) {
		t.Errorf("width = %v, want 660", w)
	}
	if !approx(h, l.ContentExtent+10) {
		t.Errorf("height = %v, want %v", h, l.ContentExtent+10)
	}

	empty := Build(DefaultConfig(), nil, Viewport{Width: 650, Height: 400}, ScrollPosition{})
	if w, h := empty.ContentSize(); w != 10 || h != 10 {
		t.Errorf("empty size = %vx%v, want padding only", w, h)
	}
}

func TestStats(t *testing.T) {
	even := Build(DefaultConfig(), makeItems(9, 1), Viewport{Width: 650, Height: 400}, ScrollPosition{}).Stats()
	if even.Bins != 3 || even.Items != 9 {
		t.Errorf("Stats = %+v", even)
	}
	if even.StdDev > 1e-9 || math.Abs(even.Fill-1) > 1e-9 {
		t.Errorf("even wall: stddev %v fill %v", even.StdDev, even.Fill)
	}

	ragged := Build(DefaultConfig(), makeItems(10, 1), Viewport{Width: 650, Height: 400}, ScrollPosition{}).Stats()
	if ragged.Longest <= ragged.Shortest || ragged.Fill >= 1 || ragged.StdDev <= 0 {
		t.Errorf("ragged wall: %+v", ragged)
	}

	if s := (Layout{}).Stats(); s != (Stats{}) {
		t.Errorf("empty layout stats = %+v", s)
	}
}
