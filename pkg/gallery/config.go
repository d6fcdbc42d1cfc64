package gallery

import "math"

// Default layout settings.
const (
	DefaultTargetLength    = 200
	DefaultMinTargetLength = 150
	DefaultSpacing         = 5.0
)

// Config holds the user-adjustable layout settings.
type Config struct {
	// TargetLength is the desired main-axis size of an item in pixels. It is a
	// soft target: items stretch to fill the viewport.
	TargetLength int `json:"target_length"`

	// MinTargetLength bounds zooming out.
	MinTargetLength int `json:"min_target_length"`

	// Spacing is the gap between items and bins, and the content padding.
	Spacing float64 `json:"spacing"`

	Orientation Orientation `json:"orientation"`

	// ConvergentScrolling offsets shorter bins while scrolling so that all
	// bins reach their trailing edge together.
	ConvergentScrolling bool `json:"convergent_scrolling"`
}

// DefaultConfig returns the stock settings: 200px targets, a 150px zoom-out
// floor, 5px spacing and horizontal orientation.
func DefaultConfig() Config {
	return Config{
		TargetLength:    DefaultTargetLength,
		MinTargetLength: DefaultMinTargetLength,
		Spacing:         DefaultSpacing,
		Orientation:     Horizontal,
	}
}

// Normalized returns a copy of c with every numeric field brought into range:
// absolute values for TargetLength and Spacing and both lengths at least 1.
// A target below the minimum is left alone; zooming in may legitimately
// produce one. It panics if the orientation is outside the closed set.
func (c Config) Normalized() Config {
	c.Orientation.mustBeValid()
	c.MinTargetLength = atLeastOne(c.MinTargetLength)
	c.TargetLength = atLeastOne(absInt(c.TargetLength))
	c.Spacing = normalizeSpacing(c.Spacing)
	return c
}

// Floored returns c normalized, with TargetLength raised to MinTargetLength
// when it starts out below. It applies to whole configurations handed in from
// outside; zooming in afterwards may still go below the floor.
func (c Config) Floored() Config {
	c = c.Normalized()
	return c.withMinTargetLength(c.MinTargetLength)
}

// withMinTargetLength sets the zoom-out floor and raises TargetLength to it
// when the current target falls below.
func (c Config) withMinTargetLength(n int) Config {
	c.MinTargetLength = atLeastOne(n)
	if c.TargetLength < c.MinTargetLength {
		c.TargetLength = c.MinTargetLength
	}
	return c
}

func normalizeSpacing(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return math.Abs(s)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
