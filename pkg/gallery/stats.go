package gallery

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes how balanced a layout is along the scroll axis.
type Stats struct {
	Bins  int `json:"bins"`
	Items int `json:"items"`

	Longest  float64 `json:"longest"`
	Shortest float64 `json:"shortest"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stddev"`

	// Fill is the share of the bins' bounding box covered by bins, in [0,1].
	// A perfectly even wall has Fill 1.
	Fill float64 `json:"fill"`
}

// Stats computes bin length statistics. Margins are not counted.
func (l Layout) Stats() Stats {
	s := Stats{Bins: len(l.Bins), Items: l.ItemCount()}
	if len(l.Bins) == 0 {
		return s
	}
	lengths := make([]float64, len(l.Bins))
	for i, b := range l.Bins {
		lengths[i] = b.Extent
	}
	s.Longest = floats.Max(lengths)
	s.Shortest = floats.Min(lengths)
	s.Mean = stat.Mean(lengths, nil)
	if len(lengths) > 1 {
		s.StdDev = stat.StdDev(lengths, nil)
	}
	if s.Longest > 0 {
		s.Fill = floats.Sum(lengths) / (s.Longest * float64(len(lengths)))
	}
	return s
}
