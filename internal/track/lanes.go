package track

import "math/bits"

// LaneOccupancy records which lanes of one segment are blocked.
// Lane i is bit i; the lane count is fixed at construction (max 64).
type LaneOccupancy struct {
	mask uint64
	n    int
}

func NewLaneOccupancy(n int) LaneOccupancy {
	if n < 0 {
		n = 0
	}
	if n > 64 {
		n = 64
	}
	return LaneOccupancy{n: n}
}

func (o LaneOccupancy) Len() int { return o.n }

func (o LaneOccupancy) Occupied(lane int) bool {
	if lane < 0 || lane >= o.n {
		return false
	}
	return o.mask&(1<<uint(lane)) != 0
}

// Occupy marks lane as blocked. It reports false for an out-of-range or
// already blocked lane.
func (o *LaneOccupancy) Occupy(lane int) bool {
	if lane < 0 || lane >= o.n || o.Occupied(lane) {
		return false
	}
	o.mask |= 1 << uint(lane)
	return true
}

func (o LaneOccupancy) Count() int { return bits.OnesCount64(o.mask) }

func (o LaneOccupancy) Full() bool { return o.Count() == o.n }

func (o *LaneOccupancy) Reset() { o.mask = 0 }

// FreeLanes appends the indices of unblocked lanes to dst.
func (o LaneOccupancy) FreeLanes(dst []int) []int {
	for i := 0; i < o.n; i++ {
		if o.mask&(1<<uint(i)) == 0 {
			dst = append(dst, i)
		}
	}
	return dst
}

// Bools expands the mask, mostly for debug output.
func (o LaneOccupancy) Bools() []bool {
	out := make([]bool, o.n)
	for i := range out {
		out[i] = o.Occupied(i)
	}
	return out
}
