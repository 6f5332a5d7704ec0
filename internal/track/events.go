package track

import "time"

// SegmentGenerated fires after a segment is placed and populated.
type SegmentGenerated struct {
	Segment SegmentStats
	Summary string
	Pointer float64 // insertion pointer after placement
}

// SegmentRecycled fires after a segment left behind returns to the pool.
type SegmentRecycled struct {
	Segment SegmentStats // snapshot taken before the content was cleared
	PlayerX float64
}

type DifficultyChanged struct {
	Old     float64
	New     float64
	Elapsed time.Duration
}

// EventSink receives generator notifications synchronously, inside the tick.
type EventSink interface {
	SegmentGenerated(SegmentGenerated)
	SegmentRecycled(SegmentRecycled)
	DifficultyChanged(DifficultyChanged)
}

type NopSink struct{}

func (NopSink) SegmentGenerated(SegmentGenerated)   {}
func (NopSink) SegmentRecycled(SegmentRecycled)     {}
func (NopSink) DifficultyChanged(DifficultyChanged) {}
