package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackgen/server/internal/config"
	"go.uber.org/zap"
)

func TestBatchReset(t *testing.T) {
	var b Batch
	b.Segments = append(b.Segments, SegmentEvent{Kind: KindGenerated})
	b.Difficulty = append(b.Difficulty, DifficultyEvent{New: 0.2})
	assert.Equal(t, 2, b.Len())

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, cap(b.Segments), "backing array reused")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_telemetry.sql", entries[0].Name())
}

func TestNewDBBadDSN(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{DSN: "://nope"}, zap.NewNop())
	assert.ErrorContains(t, err, "parse dsn")
}

// testDB connects to TRACKGEN_TEST_DSN; the round-trip tests are skipped
// without it.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TRACKGEN_TEST_DSN")
	if dsn == "" {
		t.Skip("TRACKGEN_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, RunMigrations(ctx, db.Pool))
	return db
}

func TestRunAndEventsRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	v, err := SchemaVersion(ctx, db.Pool)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, int64(1))

	runs := NewRunRepo(db)
	run := &Run{CatalogHash: "deadbeef", SegmentLength: 20, LaneCount: 3}
	require.NoError(t, runs.Create(ctx, run))
	require.NotEqual(t, uuid.Nil, run.ID)

	px := 42.0
	now := time.Now()
	b := &Batch{
		Segments: []SegmentEvent{
			{Kind: KindGenerated, SegmentID: 1, TemplateID: "street_plain", TypeName: "calm", Intent: "normal", RecordedAt: now},
			{Kind: KindRecycled, SegmentID: 1, TemplateID: "street_plain", TypeName: "calm", Intent: "normal", PlayerX: &px, RecordedAt: now},
		},
		Difficulty: []DifficultyEvent{{Old: 0, New: 0.1, Elapsed: 30 * time.Second, RecordedAt: now}},
	}
	require.NoError(t, NewEventRepo(db).WriteBatch(ctx, run.ID, b))

	var n int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT count(*) FROM segment_events WHERE run_id = $1`, run.ID).Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, runs.Finish(ctx, run.ID, RunSummary{TotalGenerated: 1, FinalDifficulty: 0.1, Distance: 42}))
	assert.Error(t, runs.Finish(ctx, uuid.New(), RunSummary{}))
}
