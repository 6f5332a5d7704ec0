package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trackgen/server/internal/core/event"
	coresys "github.com/trackgen/server/internal/core/system"
	"github.com/trackgen/server/internal/persist"
	"github.com/trackgen/server/internal/track"
	"go.uber.org/zap"
)

// BatchWriter stores one telemetry batch atomically.
type BatchWriter interface {
	WriteBatch(ctx context.Context, runID uuid.UUID, b *persist.Batch) error
}

const (
	telemetryWriteTimeout = 5 * time.Second
	// A failing database must not grow the buffer forever; past this many
	// rows the batch is discarded.
	maxPendingRows = 10000
)

// TelemetrySystem buffers segment and difficulty events and writes them
// once per flush interval. Phase Persist.
type TelemetrySystem struct {
	store    BatchWriter
	runID    uuid.UUID
	interval time.Duration
	since    time.Duration
	batch    persist.Batch
	written  int
	dropped  int
	now      func() time.Time
	log      *zap.Logger
}

func NewTelemetrySystem(store BatchWriter, bus *event.Bus, runID uuid.UUID, interval time.Duration, log *zap.Logger) *TelemetrySystem {
	s := &TelemetrySystem{
		store:    store,
		runID:    runID,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
	event.Subscribe(bus, func(e track.SegmentGenerated) {
		s.batch.Segments = append(s.batch.Segments, s.segmentEvent(persist.KindGenerated, e.Segment, nil))
	})
	event.Subscribe(bus, func(e track.SegmentRecycled) {
		x := e.PlayerX
		s.batch.Segments = append(s.batch.Segments, s.segmentEvent(persist.KindRecycled, e.Segment, &x))
	})
	event.Subscribe(bus, func(e track.DifficultyChanged) {
		s.batch.Difficulty = append(s.batch.Difficulty, persist.DifficultyEvent{
			Old:        e.Old,
			New:        e.New,
			Elapsed:    e.Elapsed,
			RecordedAt: s.now(),
		})
	})
	return s
}

func (s *TelemetrySystem) segmentEvent(kind string, st track.SegmentStats, playerX *float64) persist.SegmentEvent {
	return persist.SegmentEvent{
		Kind:             kind,
		SegmentID:        st.ID,
		Index:            st.Index,
		TemplateID:       st.Template,
		TypeName:         st.Type,
		Intent:           st.Intent.String(),
		Start:            st.Start,
		Difficulty:       st.Difficulty,
		Obstacles:        st.Obstacles,
		Collectibles:     st.Collectibles,
		PowerUps:         st.PowerUps,
		Decorations:      st.Decorations,
		DroppedObstacles: st.DroppedObstacles,
		PlayerX:          playerX,
		RecordedAt:       s.now(),
	}
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(dt time.Duration) {
	s.since += dt
	if s.since < s.interval {
		return
	}
	s.since = 0
	ctx, cancel := context.WithTimeout(context.Background(), telemetryWriteTimeout)
	defer cancel()
	s.Flush(ctx)
}

// Flush writes everything buffered. On failure the rows stay buffered for
// the next attempt unless the buffer has outgrown maxPendingRows. Also
// called on shutdown.
func (s *TelemetrySystem) Flush(ctx context.Context) {
	n := s.batch.Len()
	if n == 0 {
		return
	}
	if err := s.store.WriteBatch(ctx, s.runID, &s.batch); err != nil {
		if n > maxPendingRows {
			s.dropped += n
			s.batch.Reset()
			s.log.Error("telemetry buffer discarded", zap.Int("rows", n), zap.Error(err))
			return
		}
		s.log.Error("telemetry flush failed", zap.Int("rows", n), zap.Error(err))
		return
	}
	s.written += n
	s.batch.Reset()
	s.log.Debug("telemetry flushed", zap.Int("rows", n))
}

// Pending is the number of buffered rows.
func (s *TelemetrySystem) Pending() int { return s.batch.Len() }

// Written is the number of rows stored so far.
func (s *TelemetrySystem) Written() int { return s.written }

// Dropped is the number of rows discarded after repeated failures.
func (s *TelemetrySystem) Dropped() int { return s.dropped }
