package gallery

import (
	"math"
	"slices"
	"testing"
)

func TestZoomInDropsOneBin(t *testing.T) {
	cfg := Config{TargetLength: 200, MinTargetLength: 150, Spacing: 5}
	got := ZoomIn(cfg, 900, 10)
	if got.TargetLength != 220 {
		t.Errorf("TargetLength = %d, want 220", got.TargetLength)
	}
	if got.MinTargetLength != 150 || got.Spacing != 5 {
		t.Errorf("ZoomIn changed unrelated fields: %+v", got)
	}
}

func TestZoom(t *testing.T) {
	tests := []struct {
		name   string
		zoom   func(Config, float64, int) Config
		target int
		min    int
		extent float64
		items  int
		want   int
	}{
		{"InClampedToViewport", ZoomIn, 200, 150, 150, 2, 150},
		{"InSingleItem", ZoomIn, 200, 150, 900, 1, 900},
		{"InZeroViewport", ZoomIn, 200, 150, 0, 10, 1},
		{"OutFrom220", ZoomOut, 220, 150, 900, 10, 170},
		{"OutStopsAtMin", ZoomOut, 160, 150, 900, 10, 150},
		{"OutNarrowViewport", ZoomOut, 200, 150, 100, 10, 150},
		{"OutFromWide", ZoomOut, 200, 100, 1000, 10, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{TargetLength: tt.target, MinTargetLength: tt.min}
			if got := tt.zoom(cfg, tt.extent, tt.items).TargetLength; got != tt.want {
				t.Errorf("TargetLength = %d, want %d", got, tt.want)
			}
		})
	}
}

// Zoom steps round, so a round trip can drift by more than a pixel; this
// checks the bin count deliberately rather than the target length.
func TestZoomRoundTripRestoresBinCount(t *testing.T) {
	tests := []struct {
		name   string
		target int
		min    int
		extent float64
		items  int
	}{
		{"Width900", 200, 150, 900, 10},
		{"Width1000", 200, 150, 1000, 10},
		{"Width1200", 200, 100, 1200, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{TargetLength: tt.target, MinTargetLength: tt.min}
			before := ComputeBinCount(tt.extent, cfg.TargetLength, tt.items)

			in := ZoomIn(cfg, tt.extent, tt.items)
			during := ComputeBinCount(tt.extent, in.TargetLength, tt.items)
			if during != before-1 {
				t.Errorf("after ZoomIn: %d bins, want %d", during, before-1)
			}

			out := ZoomOut(in, tt.extent, tt.items)
			after := ComputeBinCount(tt.extent, out.TargetLength, tt.items)
			if after != before {
				t.Errorf("after round trip: %d bins (target %d), want %d", after, out.TargetLength, before)
			}
		})
	}
}

func TestZoomOutNeverBelowMin(t *testing.T) {
	cfg := Config{TargetLength: 400, MinTargetLength: 120}
	for range 20 {
		cfg = ZoomOut(cfg, 1920, 200)
		if cfg.TargetLength < cfg.MinTargetLength {
			t.Fatalf("TargetLength %d dropped below min %d", cfg.TargetLength, cfg.MinTargetLength)
		}
	}
	if cfg.TargetLength != 120 {
		t.Errorf("repeated ZoomOut settled at %d, want 120", cfg.TargetLength)
	}
}

func TestZoomInNeverExceedsViewport(t *testing.T) {
	cfg := Config{TargetLength: 100, MinTargetLength: 50}
	for range 20 {
		cfg = ZoomIn(cfg, 777.9, 30)
		if cfg.TargetLength > 777 {
			t.Fatalf("TargetLength %d exceeds viewport", cfg.TargetLength)
		}
	}
}

func TestConvergeMargins(t *testing.T) {
	tests := []struct {
		name     string
		extents  []float64
		viewport float64
		fraction float64
		want     []float64
	}{
		{"Empty", nil, 100, 0.5, []float64{}},
		{"HalfScrolled", []float64{100, 300, 250}, 200, 0.5, []float64{0, 0, 25}},
		{"FullyScrolled", []float64{100, 300, 250}, 200, 1, []float64{0, 0, 50}},
		{"Top", []float64{400, 300, 250}, 200, 0, []float64{0, 0, 0}},
		{"FractionClamped", []float64{100, 300, 250}, 200, 7, []float64{0, 0, 50}},
		{"NegativeFraction", []float64{500, 300}, 200, -1, []float64{0, 0}},
		{"AllFit", []float64{100, 150}, 200, 1, []float64{0, 0}},
		{"EqualLengths", []float64{300, 300}, 200, 1, []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvergeMargins(tt.extents, tt.viewport, tt.fraction)
			if !slices.EqualFunc(got, tt.want, func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }) {
				t.Errorf("ConvergeMargins = %v, want %v", got, tt.want)
			}
		})
	}
}

// At 650px a zoom in from 200 lands on 283 (2 bins), and zooming back out
// overshoots to 4 bins instead of the original 3.
func TestZoomRoundTripOvershootsAt650(t *testing.T) {
	cfg := Config{TargetLength: 200, MinTargetLength: 100}
	const extent, items = 650.0, 10

	in := ZoomIn(cfg, extent, items)
	if in.TargetLength != 283 {
		t.Fatalf("ZoomIn target = %d, want 283", in.TargetLength)
	}
	out := ZoomOut(in, extent, items)
	if got := ComputeBinCount(extent, out.TargetLength, items); got != 4 {
		t.Errorf("bins after round trip = %d (target %d), want 4", got, out.TargetLength)
	}
}
