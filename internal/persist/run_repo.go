package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one generator session.
type Run struct {
	ID            uuid.UUID
	StartedAt     time.Time
	CatalogHash   string
	SegmentLength float64
	LaneCount     int
}

// RunSummary is written when a run ends.
type RunSummary struct {
	TotalGenerated  int
	FinalDifficulty float64
	Distance        float64
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts a run row. A zero ID is replaced with a fresh UUID.
func (r *RunRepo) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, catalog_hash, segment_length, lane_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.StartedAt, run.CatalogHash, run.SegmentLength, run.LaneCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stamps the end of a run with its summary.
func (r *RunRepo) Finish(ctx context.Context, id uuid.UUID, sum RunSummary) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE runs SET finished_at = now(), total_generated = $2, final_difficulty = $3, distance = $4
		 WHERE id = $1`,
		id, sum.TotalGenerated, sum.FinalDifficulty, sum.Distance,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: not found", id)
	}
	return nil
}
