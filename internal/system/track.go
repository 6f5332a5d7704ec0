package system

import (
	"time"

	"github.com/trackgen/server/internal/core/event"
	coresys "github.com/trackgen/server/internal/core/system"
	"github.com/trackgen/server/internal/track"
	"github.com/trackgen/server/internal/world"
)

// BusSink forwards generator notifications onto the event bus, so other
// systems see them next frame.
type BusSink struct {
	bus *event.Bus
}

func NewBusSink(bus *event.Bus) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) SegmentGenerated(e track.SegmentGenerated)   { event.Emit(s.bus, e) }
func (s *BusSink) SegmentRecycled(e track.SegmentRecycled)     { event.Emit(s.bus, e) }
func (s *BusSink) DifficultyChanged(e track.DifficultyChanged) { event.Emit(s.bus, e) }

// TrackSystem drives the generator from the frame clock. The generator
// throttles itself to its own tick interval. Phase Update.
type TrackSystem struct {
	gen *track.Generator
}

// NewTrackSystem subscribes the generator to runner speed changes.
func NewTrackSystem(gen *track.Generator, bus *event.Bus) *TrackSystem {
	event.Subscribe(bus, func(e world.SpeedChanged) {
		gen.OnSpeedChanged(e.New)
	})
	return &TrackSystem{gen: gen}
}

func (s *TrackSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TrackSystem) Update(dt time.Duration) {
	s.gen.Update(dt)
}
