package gallery

// ConvergeMargins computes the leading scroll-axis margin of every bin so
// that bins of unequal length reach their trailing edge together as the
// scroll fraction approaches one.
//
// extents holds each bin's length along the scroll axis. A bin that fits
// inside the viewport never moves; a longer bin is pushed down (or right) by
// fraction × (longest − its own length).
func ConvergeMargins(extents []float64, viewportExtent, fraction float64) []float64 {
	margins := make([]float64, len(extents))
	if len(extents) == 0 {
		return margins
	}
	fraction = clampUnit(fraction)

	longest := extents[0]
	for _, e := range extents[1:] {
		longest = max(longest, e)
	}

	for i, e := range extents {
		gap := longest - e
		if exceeding := viewportExtent-e < 0; exceeding {
			margins[i] = fraction * gap
		}
	}
	return margins
}
