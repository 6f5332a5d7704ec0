package track

import (
	"fmt"
	"strings"
)

type Intent uint8

const (
	IntentNormal Intent = iota
	IntentBonus
	IntentChallenge
	IntentSafe
)

func (i Intent) String() string {
	switch i {
	case IntentNormal:
		return "normal"
	case IntentBonus:
		return "bonus"
	case IntentChallenge:
		return "challenge"
	case IntentSafe:
		return "safe"
	}
	return "unknown"
}

// ParseIntent maps a catalog intent name; empty means normal.
func ParseIntent(s string) (Intent, error) {
	switch s {
	case "", "normal":
		return IntentNormal, nil
	case "bonus":
		return IntentBonus, nil
	case "challenge":
		return IntentChallenge, nil
	case "safe":
		return IntentSafe, nil
	}
	return IntentNormal, fmt.Errorf("unknown intent %q", s)
}

// Descriptor is the template role attached to a segment when it is
// acquired. A pooled segment keeps its identity across reuse; only the
// descriptor and the generated content change.
type Descriptor struct {
	TemplateID string
	TypeName   string
	Intent     Intent
	Anchors    []float64
	Obstacles  WeightTable // empty: use the planner's catalog
}

// Segment is one fixed-length slice of track. It is held either by the
// generator's active queue or by the pool, never both.
type Segment struct {
	id     int
	length float64

	desc       Descriptor
	index      int
	start      float64
	difficulty float64

	lanes   LaneOccupancy
	content []Content
	dropped int

	initialized bool
	active      bool
	pooled      bool
}

func newSegment(id int, length float64, laneCount int) *Segment {
	return &Segment{
		id:      id,
		length:  length,
		lanes:   NewLaneOccupancy(laneCount),
		content: make([]Content, 0, 16),
	}
}

func (s *Segment) ID() int                { return s.id }
func (s *Segment) Length() float64        { return s.length }
func (s *Segment) Start() float64         { return s.start }
func (s *Segment) End() float64           { return s.start + s.length }
func (s *Segment) Index() int             { return s.index }
func (s *Segment) Difficulty() float64    { return s.difficulty }
func (s *Segment) Descriptor() Descriptor { return s.desc }
func (s *Segment) Lanes() LaneOccupancy   { return s.lanes }
func (s *Segment) LaneCount() int         { return s.lanes.Len() }
func (s *Segment) Content() []Content     { return s.content }
func (s *Segment) Initialized() bool      { return s.initialized }
func (s *Segment) Active() bool           { return s.active }
func (s *Segment) DroppedObstacles() int  { return s.dropped }

func (s *Segment) retarget(d Descriptor) {
	s.desc = d
}

func (s *Segment) place(start float64, index int, difficulty float64) {
	s.start = start
	s.index = index
	s.difficulty = difficulty
}

// clear destroys the owned content and frees every lane. Safe to repeat.
func (s *Segment) clear(ents *Entities) {
	if ents != nil {
		for _, c := range s.content {
			ents.Despawn(c.Entity)
		}
	}
	s.content = s.content[:0]
	s.lanes.Reset()
	s.dropped = 0
	s.initialized = false
}

// SegmentStats is a per-segment snapshot for debug overlays.
type SegmentStats struct {
	ID               int
	Index            int
	Template         string
	Type             string
	Intent           Intent
	Start            float64
	End              float64
	Difficulty       float64
	Obstacles        int
	Collectibles     int
	PowerUps         int
	Decorations      int
	OccupiedLanes    int
	LaneCount        int
	DroppedObstacles int
	Active           bool
}

func (s *Segment) Stats() SegmentStats {
	st := SegmentStats{
		ID:               s.id,
		Index:            s.index,
		Template:         s.desc.TemplateID,
		Type:             s.desc.TypeName,
		Intent:           s.desc.Intent,
		Start:            s.start,
		End:              s.End(),
		Difficulty:       s.difficulty,
		OccupiedLanes:    s.lanes.Count(),
		LaneCount:        s.lanes.Len(),
		DroppedObstacles: s.dropped,
		Active:           s.active,
	}
	for _, c := range s.content {
		switch c.Kind {
		case KindObstacle:
			st.Obstacles++
		case KindCollectible:
			st.Collectibles++
		case KindPowerUp:
			st.PowerUps++
		case KindDecoration:
			st.Decorations++
		}
	}
	return st
}

// Summary renders a one-line description, e.g.
// "#12 street_bridge/busy normal @240-260 d=0.42 obs=2 col=3 pu=0 dec=1 lanes=[x.x]".
func (s *Segment) Summary() string {
	st := s.Stats()
	var lanes strings.Builder
	for _, b := range s.lanes.Bools() {
		if b {
			lanes.WriteByte('x')
		} else {
			lanes.WriteByte('.')
		}
	}
	return fmt.Sprintf("#%d %s/%s %s @%.0f-%.0f d=%.2f obs=%d col=%d pu=%d dec=%d lanes=[%s]",
		st.Index, st.Template, st.Type, st.Intent, st.Start, st.End, st.Difficulty,
		st.Obstacles, st.Collectibles, st.PowerUps, st.Decorations, lanes.String())
}
