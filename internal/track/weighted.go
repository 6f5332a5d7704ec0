package track

import "github.com/trackgen/server/internal/data"

// WeightedIndex maps a draw in [0,1) onto weights by cumulative sum: the
// draw is scaled to the total weight and the first bucket whose running
// sum reaches it wins. Non-positive weights never win. Returns -1 when no
// weight is positive.
func WeightedIndex(weights []float64, draw float64) int {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}
	target := draw * total
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if cum >= target {
			return i
		}
	}
	return last // float rounding
}

// WeightTable is a catalog as parallel ID and weight arrays.
type WeightTable struct {
	IDs     []string
	Weights []float64
}

func NewWeightTable(entries []data.WeightedEntry) WeightTable {
	t := WeightTable{
		IDs:     make([]string, len(entries)),
		Weights: make([]float64, len(entries)),
	}
	for i, e := range entries {
		t.IDs[i] = e.ID
		t.Weights[i] = e.Weight
	}
	return t
}

func (t WeightTable) Len() int { return len(t.IDs) }

// Pick draws one ID by weight.
func (t WeightTable) Pick(r Rand) (string, bool) {
	if len(t.IDs) == 0 {
		return "", false
	}
	i := WeightedIndex(t.Weights, r.Float64())
	if i < 0 {
		return "", false
	}
	return t.IDs[i], true
}
