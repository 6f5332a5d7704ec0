package system

import (
	"time"

	"github.com/trackgen/server/internal/core/event"
	coresys "github.com/trackgen/server/internal/core/system"
	"github.com/trackgen/server/internal/debugfeed"
	"github.com/trackgen/server/internal/track"
	"github.com/trackgen/server/internal/world"
)

// Broadcaster fans a frame out to overlay clients.
type Broadcaster interface {
	Broadcast(typ string, payload any)
}

type pendingFrame struct {
	typ     string
	payload any
}

// FeedSystem turns track events into debug-feed frames and pushes a
// stats frame every statsEvery. Phase PostUpdate.
type FeedSystem struct {
	out        Broadcaster
	gen        *track.Generator
	runner     *world.Runner
	statsEvery time.Duration
	sinceStats time.Duration
	pending    []pendingFrame
}

func NewFeedSystem(out Broadcaster, bus *event.Bus, gen *track.Generator, runner *world.Runner, statsEvery time.Duration) *FeedSystem {
	s := &FeedSystem{
		out:        out,
		gen:        gen,
		runner:     runner,
		statsEvery: statsEvery,
		pending:    make([]pendingFrame, 0, 16),
	}
	event.Subscribe(bus, func(e track.SegmentGenerated) {
		seg := segmentFrame(e.Segment)
		seg.Summary = e.Summary
		seg.Pointer = e.Pointer
		s.queue(debugfeed.FrameSegmentGenerated, seg)
	})
	event.Subscribe(bus, func(e track.SegmentRecycled) {
		seg := segmentFrame(e.Segment)
		seg.PlayerX = e.PlayerX
		s.queue(debugfeed.FrameSegmentRecycled, seg)
	})
	event.Subscribe(bus, func(e track.DifficultyChanged) {
		s.queue(debugfeed.FrameDifficultyChanged, debugfeed.Difficulty{
			Old:       e.Old,
			New:       e.New,
			ElapsedMS: e.Elapsed.Milliseconds(),
		})
	})
	return s
}

func (s *FeedSystem) queue(typ string, payload any) {
	s.pending = append(s.pending, pendingFrame{typ: typ, payload: payload})
}

func (s *FeedSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *FeedSystem) Update(dt time.Duration) {
	for i, f := range s.pending {
		s.out.Broadcast(f.typ, f.payload)
		s.pending[i] = pendingFrame{}
	}
	s.pending = s.pending[:0]

	if s.statsEvery <= 0 {
		return
	}
	s.sinceStats += dt
	if s.sinceStats < s.statsEvery {
		return
	}
	s.sinceStats = 0
	s.out.Broadcast(debugfeed.FrameStats, s.stats())
}

func (s *FeedSystem) stats() debugfeed.Stats {
	st := s.gen.Stats()
	out := debugfeed.Stats{
		State:              st.State.String(),
		Active:             st.Active,
		Pooled:             st.Pooled,
		Constructed:        st.Constructed,
		TotalGenerated:     st.TotalGenerated,
		Difficulty:         st.Difficulty,
		Pointer:            st.Pointer,
		GenerationDistance: st.GenerationDistance,
	}
	if s.runner != nil {
		out.PlayerX, _ = s.runner.PlayerX()
		out.Speed = s.runner.Speed()
	}
	return out
}

func segmentFrame(st track.SegmentStats) debugfeed.Segment {
	return debugfeed.Segment{
		ID:               st.ID,
		Index:            st.Index,
		Template:         st.Template,
		Type:             st.Type,
		Intent:           st.Intent.String(),
		Start:            st.Start,
		End:              st.End,
		Difficulty:       st.Difficulty,
		Obstacles:        st.Obstacles,
		Collectibles:     st.Collectibles,
		PowerUps:         st.PowerUps,
		Decorations:      st.Decorations,
		OccupiedLanes:    st.OccupiedLanes,
		DroppedObstacles: st.DroppedObstacles,
	}
}
