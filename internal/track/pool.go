package track

import "go.uber.org/zap"

// SegmentPool keeps idle segments for reuse. Acquire never fails: an empty
// pool constructs a new segment, so the pool grows without bound under
// sustained demand. Growth past warnAt is logged each time it happens.
type SegmentPool struct {
	idle        []*Segment
	length      float64
	laneCount   int
	constructed int
	warnAt      int
	ents        *Entities
	log         *zap.Logger
}

func NewSegmentPool(length float64, laneCount, prewarm, warnAt int, ents *Entities, log *zap.Logger) *SegmentPool {
	p := &SegmentPool{
		idle:      make([]*Segment, 0, prewarm),
		length:    length,
		laneCount: laneCount,
		warnAt:    warnAt,
		ents:      ents,
		log:       log,
	}
	for i := 0; i < prewarm; i++ {
		s := p.construct()
		s.pooled = true
		p.idle = append(p.idle, s)
	}
	return p
}

func (p *SegmentPool) construct() *Segment {
	p.constructed++
	s := newSegment(p.constructed, p.length, p.laneCount)
	if p.warnAt > 0 && p.constructed > p.warnAt {
		p.log.Warn("segment pool growing past threshold",
			zap.Int("constructed", p.constructed),
			zap.Int("threshold", p.warnAt))
	}
	return s
}

// Acquire hands out an empty segment carrying the given template role.
func (p *SegmentPool) Acquire(d Descriptor) *Segment {
	var s *Segment
	if n := len(p.idle); n > 0 {
		s = p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		s.clear(p.ents)
	} else {
		s = p.construct()
	}
	s.pooled = false
	s.active = true
	s.retarget(d)
	return s
}

// Release deactivates s, drops its content and returns it to the idle
// store. Releasing a segment that is already pooled does nothing.
func (p *SegmentPool) Release(s *Segment) {
	if s == nil || s.pooled {
		return
	}
	s.clear(p.ents)
	s.active = false
	s.pooled = true
	p.idle = append(p.idle, s)
}

// Idle returns the number of segments waiting in the pool.
func (p *SegmentPool) Idle() int { return len(p.idle) }

// Constructed returns how many segments the pool has ever built.
func (p *SegmentPool) Constructed() int { return p.constructed }
