package gallery

import (
	"fmt"
	"math"
	"slices"
	"testing"
)

func makeItems(n int, aspect float64) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("i%d", i), Visible: true, AspectRatio: aspect}
	}
	return items
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestComputeBinCount(t *testing.T) {
	tests := []struct {
		name   string
		extent float64
		target int
		items  int
		want   int
	}{
		{"NoItems", 1000, 200, 0, 1},
		{"NegativeItems", 1000, 200, -3, 1},
		{"TenItemsAt650", 650, 200, 10, 3},
		{"ViewportBelowTarget", 150, 200, 2, 1},
		{"HalfRoundsUp", 900, 200, 10, 5},
		{"ClampedToItems", 1000, 100, 4, 4},
		{"NarrowViewport", 50, 200, 10, 1},
		{"ZeroViewport", 0, 200, 10, 1},
		{"ZeroTarget", 10, 0, 100, 10},
		{"NegativeTarget", 10, -5, 100, 10},
		{"NaNViewport", math.NaN(), 200, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeBinCount(tt.extent, tt.target, tt.items); got != tt.want {
				t.Errorf("ComputeBinCount(%v, %d, %d) = %d, want %d", tt.extent, tt.target, tt.items, got, tt.want)
			}
		})
	}
}

func TestComputeBinCountAtLeastOne(t *testing.T) {
	for n := 0; n < 30; n++ {
		for _, extent := range []float64{0, 1, 99, 100, 101, 640, 1920} {
			if got := ComputeBinCount(extent, 100, n); got < 1 {
				t.Fatalf("ComputeBinCount(%v, 100, %d) = %d, want >= 1", extent, n, got)
			}
		}
	}
}

func TestPartitionRoundRobinTenIntoThree(t *testing.T) {
	bins := Partition(makeItems(10, 1), 3)

	want := [][]string{
		{"i0", "i3", "i6", "i9"},
		{"i1", "i4", "i7"},
		{"i2", "i5", "i8"},
	}
	if len(bins) != len(want) {
		t.Fatalf("got %d bins, want %d", len(bins), len(want))
	}
	for b := range want {
		if got := ids(bins[b]); !slices.Equal(got, want[b]) {
			t.Errorf("bin %d = %v, want %v", b, got, want[b])
		}
	}
}

func TestPartitionBalanced(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for binCount := 1; binCount <= 8; binCount++ {
			items := makeItems(n, 1)
			bins := Partition(items, binCount)

			var all []string
			shortest, longest := n, 0
			for _, b := range bins {
				all = append(all, ids(b)...)
				shortest = min(shortest, len(b))
				longest = max(longest, len(b))
			}
			slices.Sort(all)
			want := ids(items)
			slices.Sort(want)
			if !slices.Equal(all, want) {
				t.Fatalf("n=%d bins=%d: union %v, want %v", n, binCount, all, want)
			}
			if n > 0 && longest-shortest > 1 {
				t.Fatalf("n=%d bins=%d: lengths differ by %d", n, binCount, longest-shortest)
			}
		}
	}
}

func TestPartitionInvalidBinCount(t *testing.T) {
	bins := Partition(makeItems(3, 1), 0)
	if len(bins) != 1 || len(bins[0]) != 3 {
		t.Errorf("Partition(_, 0) = %v, want a single bin of 3", bins)
	}
}

func TestComputeItemExtent(t *testing.T) {
	tests := []struct {
		name    string
		extent  float64
		bins    int
		spacing float64
		target  int
		items   int
		want    float64
	}{
		{"ThreeBinsSplitViewport", 650, 3, 5, 200, 10, 640.0 / 3},
		{"GapsExceedViewport", 1000, 5, 300, 200, 10, 200},
		{"FewItemsKeepTarget", 1000, 2, 5, 200, 2, 200},
		{"NarrowViewportKeepsTarget", 150, 1, 5, 200, 2, 200},
		{"SingleBinFills", 250, 1, 5, 200, 10, 250},
		{"NoSpacing", 1000, 5, 0, 200, 10, 200},
		{"Stretch", 1100, 5, 10, 200, 10, 212},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeItemExtent(tt.extent, tt.bins, tt.spacing, tt.target, tt.items)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeItemExtent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeItemExtentPositive(t *testing.T) {
	for _, spacing := range []float64{0, 5, 250, 300, 1000, 1e6} {
		for _, extent := range []float64{0, 1, 150, 199, 200, 650, 1000, 4000} {
			for items := 0; items < 20; items++ {
				bins := ComputeBinCount(extent, 200, items)
				got := ComputeItemExtent(extent, bins, spacing, 200, items)
				if got <= 0 || math.IsInf(got, 0) || math.IsNaN(got) {
					t.Fatalf("spacing=%v extent=%v items=%d: got %v", spacing, extent, items, got)
				}
			}
		}
	}
}

func TestBuildWideSpacingKeepsPositiveRects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Spacing = 300
	l := Build(cfg, makeItems(10, 1), Viewport{Width: 1000, Height: 600}, ScrollPosition{})

	if l.BinCount != 5 {
		t.Fatalf("BinCount = %d, want 5", l.BinCount)
	}
	if l.ItemExtent != 200 {
		t.Errorf("ItemExtent = %v, want target length 200", l.ItemExtent)
	}
	for _, r := range l.Rects() {
		if r.W <= 0 || r.H <= 0 {
			t.Fatalf("item %s has rect %+v", r.ID, r)
		}
	}
}
