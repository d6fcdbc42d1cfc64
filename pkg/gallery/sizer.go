package gallery

// ComputeItemExtent returns the main-axis size of every item: the width of
// each thumbnail in a Horizontal layout, its height in a Vertical one.
//
// When the bins would not fill the viewport anyway (few items), or the
// viewport is narrower than a single target, items keep the target length.
// Otherwise the viewport is split evenly between binCount bins with
// binCount-1 gaps of spacing between them. If the gaps alone use up the
// viewport, items fall back to the target length so the extent stays
// positive.
func ComputeItemExtent(viewportExtent float64, binCount int, spacing float64, targetLength, itemCount int) float64 {
	binCount = atLeastOne(binCount)
	target := float64(atLeastOne(targetLength))
	gaps := float64(binCount-1) * spacing

	if viewportExtent-gaps > target*float64(itemCount) || viewportExtent < target {
		return target
	}
	if split := viewportExtent/float64(binCount) - gaps/float64(binCount); split > 0 {
		return split
	}
	return target
}
