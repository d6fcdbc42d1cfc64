package gallery

import "math"

// ComputeBinCount returns how many bins (columns or rows) fit across a
// viewport extent for the given target length.
//
// The count is round(viewportExtent / targetLength), clamped to at least one
// and to at most itemCount so no bin is ever left empty. An empty collection
// still yields one bin. Target lengths below one are treated as one.
func ComputeBinCount(viewportExtent float64, targetLength, itemCount int) int {
	if itemCount <= 0 {
		return 1
	}
	bins := int(math.Round(nonNegative(viewportExtent) / float64(atLeastOne(targetLength))))
	if bins > itemCount {
		return itemCount
	}
	if bins < 1 {
		return 1
	}
	return bins
}

// Partition deals items round-robin into binCount bins: the item at index i
// lands in bin i mod binCount. Bin lengths therefore differ by at most one,
// and each bin keeps the relative order of its items. Consecutive items end
// up in neighbouring bins, which is what balances a wall of mixed sizes.
func Partition(items []Item, binCount int) [][]Item {
	binCount = atLeastOne(binCount)
	bins := make([][]Item, binCount)
	for b := range bins {
		bins[b] = make([]Item, 0, len(items)/binCount+1)
	}
	for i, it := range items {
		bins[i%binCount] = append(bins[i%binCount], it)
	}
	return bins
}
