package gallery

import "math"

// ZoomIn grows the target length so that roughly one bin fewer fits across
// the viewport, making every thumbnail larger. The result never exceeds the
// viewport extent.
func ZoomIn(cfg Config, viewportExtent float64, itemCount int) Config {
	newTarget := zoomStep(cfg.TargetLength, viewportExtent, itemCount, +1)
	cfg.TargetLength = atLeastOne(absInt(min(newTarget, int(math.Floor(nonNegative(viewportExtent))))))
	return cfg
}

// ZoomOut shrinks the target length so that roughly one more bin fits across
// the viewport. The result never drops below MinTargetLength.
func ZoomOut(cfg Config, viewportExtent float64, itemCount int) Config {
	newTarget := zoomStep(cfg.TargetLength, viewportExtent, itemCount, -1)
	cfg.TargetLength = atLeastOne(absInt(max(newTarget, cfg.MinTargetLength)))
	return cfg
}

// zoomStep computes round(target * (extent/target + delta) / bins), the
// target length at which delta extra bins would share the viewport.
func zoomStep(targetLength int, viewportExtent float64, itemCount int, delta float64) int {
	target := float64(atLeastOne(targetLength))
	extent := nonNegative(viewportExtent)
	bins := ComputeBinCount(extent, int(target), itemCount)
	return int(math.Round(target * ((extent / target) + delta) / float64(bins)))
}
