package gallery

import "math"

// Item is one image handed to the engine by the catalog.
//
// The engine treats items as read-only values: it never changes an item's
// identity or aspect ratio, and only flips Visible through the visibility
// mutators. Path and Name are carried for hosts and sinks; the layout never
// reads them.
type Item struct {
	ID          string  `json:"id"`
	Visible     bool    `json:"visible"`
	AspectRatio float64 `json:"aspect_ratio"` // width / height
	Path        string  `json:"path,omitempty"`
	Name        string  `json:"name,omitempty"`
}

// aspect returns a usable aspect ratio, falling back to square for
// unknown, zero, negative or non-finite values.
func (it Item) aspect() float64 {
	a := it.AspectRatio
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return 1
	}
	return a
}

// Viewport is the visible area of the hosting scroll container in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// normalized clamps negative and NaN dimensions to zero.
func (v Viewport) normalized() Viewport {
	return Viewport{Width: nonNegative(v.Width), Height: nonNegative(v.Height)}
}

// ScrollPosition is the normalized scroll offset of the host container.
// V is the vertical fraction and H the horizontal fraction, both in [0,1].
type ScrollPosition struct {
	V float64 `json:"v"`
	H float64 `json:"h"`
}

// normalized clamps both fractions into [0,1] to absorb host jitter.
func (s ScrollPosition) normalized() ScrollPosition {
	return ScrollPosition{V: clampUnit(s.V), H: clampUnit(s.H)}
}

func nonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

func clampUnit(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func anyVisible(items []Item) bool {
	for _, it := range items {
		if it.Visible {
			return true
		}
	}
	return false
}
