package track

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackgen/server/internal/core/ecs"
	"github.com/trackgen/server/internal/data"
	"go.uber.org/zap"
)

// scriptedRand replays queued draws, then falls back to a seeded source.
type scriptedRand struct {
	floats   []float64
	ints     []int
	fallback *rand.Rand
}

func newScriptedRand(seed int64) *scriptedRand {
	return &scriptedRand{fallback: rand.New(rand.NewSource(seed))}
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) > 0 {
		f := r.floats[0]
		r.floats = r.floats[1:]
		return f
	}
	return r.fallback.Float64()
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) > 0 {
		i := r.ints[0]
		r.ints = r.ints[1:]
		return i % n
	}
	return r.fallback.Intn(n)
}

type recordingSink struct {
	generated  []SegmentGenerated
	recycled   []SegmentRecycled
	difficulty []DifficultyChanged
}

func (s *recordingSink) SegmentGenerated(e SegmentGenerated)   { s.generated = append(s.generated, e) }
func (s *recordingSink) SegmentRecycled(e SegmentRecycled)     { s.recycled = append(s.recycled, e) }
func (s *recordingSink) DifficultyChanged(e DifficultyChanged) { s.difficulty = append(s.difficulty, e) }

const testCatalogYAML = `
lanes: [-2, 0, 2]
templates:
  - id: plain
    anchors: [5, 15]
  - id: bridge
    anchors: [10]
    obstacles:
      - { id: barrier, weight: 1 }
  - id: plaza
    anchors: [4, 8, 12, 16]
bonus_templates: [plaza]
segment_types:
  - name: calm
    intent: normal
    weight: 0.7
    min_difficulty: 0.0
    max_difficulty: 0.5
    templates: [plain]
  - name: gauntlet
    intent: challenge
    weight: 0.3
    min_difficulty: 0.4
    max_difficulty: 1.0
    templates: [bridge]
tiers:
  easy:    { min_obstacles: 0, max_obstacles: 1 }
  medium:  { min_obstacles: 1, max_obstacles: 2 }
  hard:    { min_obstacles: 1, max_obstacles: 3 }
  extreme: { min_obstacles: 2, max_obstacles: 5 }
obstacles:
  - { id: cone, weight: 0.4 }
  - { id: crate, weight: 0.3 }
  - { id: car, weight: 0.2 }
  - { id: roadblock, weight: 0.1 }
collectibles:
  - { id: coin, weight: 1 }
power_ups:
  - { id: magnet, weight: 1 }
decorations: [lamp, bench]
`

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	cat, err := data.ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)
	return cat
}

func testSettings(cat *data.Catalog) Settings {
	return Settings{
		SegmentLength:         20,
		InitialSegments:       0,
		MaxActiveSegments:     5,
		SafeStartSegments:     0,
		GenerationDistance:    50,
		MinGenerationDistance: 50,
		SpeedLookaheadFactor:  5,
		TickInterval:          500 * time.Millisecond,
		BonusChance:           0.1,
		MinBonusSpacing:       5,
		PoolWarnThreshold:     100,
		Planner: PlannerConfig{
			CollectibleChance: 0.6,
			PowerUpChance:     0.1,
			DecorationChance:  0.5,
			MaxCollectibles:   5,
			CollectibleHeight: 1,
			Tiers:             cat.Tiers,
		},
	}
}

// player is a movable PositionSource.
type player struct {
	x       float64
	present bool
}

func (p *player) PlayerX() (float64, bool) { return p.x, p.present }

type harness struct {
	gen    *Generator
	player *player
	sink   *recordingSink
	rng    *scriptedRand
	ents   *Entities
	world  *ecs.World
}

func newHarness(t *testing.T, cat *data.Catalog, s Settings) *harness {
	t.Helper()
	h := &harness{
		player: &player{present: true},
		sink:   &recordingSink{},
		rng:    newScriptedRand(7),
		world:  ecs.NewWorld(),
	}
	h.ents = NewEntities(h.world)
	g, err := NewGenerator(s, cat, Deps{
		Player:   h.player,
		Clock:    NewDifficultyClock(nil, time.Minute, 1, 0.01),
		Sink:     h.sink,
		Entities: h.ents,
		Rand:     h.rng,
		Log:      zap.NewNop(),
	})
	require.NoError(t, err)
	h.gen = g
	return h
}
