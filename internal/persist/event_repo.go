package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Segment event kinds.
const (
	KindGenerated = "generated"
	KindRecycled  = "recycled"
)

// SegmentEvent is one telemetry row for a generated or recycled segment.
type SegmentEvent struct {
	Kind             string
	SegmentID        int
	Index            int
	TemplateID       string
	TypeName         string
	Intent           string
	Start            float64
	Difficulty       float64
	Obstacles        int
	Collectibles     int
	PowerUps         int
	Decorations      int
	DroppedObstacles int
	PlayerX          *float64 // recycled only
	RecordedAt       time.Time
}

type DifficultyEvent struct {
	Old        float64
	New        float64
	Elapsed    time.Duration
	RecordedAt time.Time
}

// Batch is everything buffered between two flushes.
type Batch struct {
	Segments   []SegmentEvent
	Difficulty []DifficultyEvent
}

func (b *Batch) Len() int { return len(b.Segments) + len(b.Difficulty) }

func (b *Batch) Reset() {
	b.Segments = b.Segments[:0]
	b.Difficulty = b.Difficulty[:0]
}

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// WriteBatch writes a whole batch in one transaction; either every row
// lands or none does.
func (r *EventRepo) WriteBatch(ctx context.Context, runID uuid.UUID, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("telemetry begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range b.Segments {
		if _, err := tx.Exec(ctx,
			`INSERT INTO segment_events (run_id, kind, segment_id, segment_index, template_id, type_name, intent,
			   start_z, difficulty, obstacles, collectibles, power_ups, decorations, dropped_obstacles, player_x, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			runID, e.Kind, e.SegmentID, e.Index, e.TemplateID, e.TypeName, e.Intent,
			e.Start, e.Difficulty, e.Obstacles, e.Collectibles, e.PowerUps, e.Decorations, e.DroppedObstacles,
			e.PlayerX, e.RecordedAt,
		); err != nil {
			return fmt.Errorf("insert segment event: %w", err)
		}
	}
	for _, e := range b.Difficulty {
		if _, err := tx.Exec(ctx,
			`INSERT INTO difficulty_changes (run_id, old_value, new_value, elapsed_ms, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			runID, e.Old, e.New, e.Elapsed.Milliseconds(), e.RecordedAt,
		); err != nil {
			return fmt.Errorf("insert difficulty change: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("telemetry commit: %w", err)
	}
	return nil
}
