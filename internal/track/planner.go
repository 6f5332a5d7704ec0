package track

import (
	"math"

	"github.com/trackgen/server/internal/data"
)

// Tier buckets difficulty for obstacle-count bounds.
type Tier uint8

const (
	TierEasy Tier = iota
	TierMedium
	TierHard
	TierExtreme
)

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierHard:
		return "hard"
	case TierExtreme:
		return "extreme"
	}
	return "unknown"
}

func TierFor(difficulty float64) Tier {
	switch {
	case difficulty < 0.25:
		return TierEasy
	case difficulty < 0.5:
		return TierMedium
	case difficulty < 0.75:
		return TierHard
	}
	return TierExtreme
}

// PlannerConfig holds the chance thresholds and count limits for content.
type PlannerConfig struct {
	CollectibleChance float64
	PowerUpChance     float64
	DecorationChance  float64
	MaxCollectibles   int
	CollectibleHeight float64
	Tiers             data.TierTable
}

// ObstacleBiaser adjusts the planned obstacle count; scripted tuning hooks
// implement it.
type ObstacleBiaser interface {
	ObstacleBias(difficulty float64, intent string) int
}

// ContentPlanner lays out obstacles, collectibles, power-ups and
// decorations inside one segment.
type ContentPlanner struct {
	cfg          PlannerConfig
	lanes        []float64
	obstacles    WeightTable
	collectibles WeightTable
	powerUps     WeightTable
	decorations  []string
	ents         *Entities
	rng          Rand
	bias         ObstacleBiaser

	free []int // scratch
}

func NewContentPlanner(cfg PlannerConfig, cat *data.Catalog, ents *Entities, rng Rand) *ContentPlanner {
	return &ContentPlanner{
		cfg:          cfg,
		lanes:        cat.Lanes,
		obstacles:    NewWeightTable(cat.Obstacles),
		collectibles: NewWeightTable(cat.Collectibles),
		powerUps:     NewWeightTable(cat.PowerUps),
		decorations:  cat.Decorations,
		ents:         ents,
		rng:          rng,
		free:         make([]int, 0, len(cat.Lanes)),
	}
}

// SetObstacleBias installs a count adjustment applied after the intent
// rules. nil removes it.
func (p *ContentPlanner) SetObstacleBias(b ObstacleBiaser) {
	p.bias = b
}

func (p *ContentPlanner) bounds(t Tier) data.TierBounds {
	switch t {
	case TierMedium:
		return p.cfg.Tiers.Medium
	case TierHard:
		return p.cfg.Tiers.Hard
	case TierExtreme:
		return p.cfg.Tiers.Extreme
	}
	return p.cfg.Tiers.Easy
}

// contentPlan is the per-intent budget worked out before placement.
type contentPlan struct {
	obstacles         int
	collectibleChance float64
	powerUpChance     float64
}

func (p *ContentPlanner) plan(difficulty float64, intent Intent) contentPlan {
	b := p.bounds(TierFor(difficulty))
	switch intent {
	case IntentBonus:
		return contentPlan{
			obstacles:         max(0, b.MinObstacles-1),
			collectibleChance: 1,
			powerUpChance:     p.cfg.PowerUpChance * 3,
		}
	case IntentChallenge:
		return contentPlan{
			obstacles:         int(math.Round(float64(b.MaxObstacles) * (0.8 + 0.4*difficulty))),
			collectibleChance: p.cfg.CollectibleChance * 0.5,
			powerUpChance:     p.cfg.PowerUpChance,
		}
	case IntentSafe:
		return contentPlan{
			obstacles:         0,
			collectibleChance: 1,
			powerUpChance:     p.cfg.PowerUpChance * 2,
		}
	}
	return contentPlan{
		obstacles:         int(math.Round(lerp(float64(b.MinObstacles), float64(b.MaxObstacles), difficulty))),
		collectibleChance: p.cfg.CollectibleChance,
		powerUpChance:     p.cfg.PowerUpChance * (1 + difficulty),
	}
}

// Populate generates the content of s. Any previous content is cleared
// first, so populating twice never stacks layouts.
func (p *ContentPlanner) Populate(s *Segment, difficulty float64, index int, intent Intent) {
	s.clear(p.ents)
	s.place(s.start, index, difficulty)

	pl := p.plan(difficulty, intent)
	if p.bias != nil && intent != IntentSafe {
		pl.obstacles = max(0, pl.obstacles+p.bias.ObstacleBias(difficulty, intent.String()))
	}
	obstacles := p.obstacles
	if s.desc.Obstacles.Len() > 0 {
		obstacles = s.desc.Obstacles
	}
	placed := p.placeObstacles(s, pl.obstacles, obstacles)
	s.dropped = pl.obstacles - placed

	if chance(p.rng, pl.collectibleChance) {
		p.placeCollectibles(s)
	}
	if chance(p.rng, pl.powerUpChance) {
		p.placePowerUp(s)
	}
	p.placeDecorations(s)
	s.initialized = true
}

// placeObstacles puts up to n obstacles into free lanes, one per lane.
// Requests beyond the free lane count are dropped.
func (p *ContentPlanner) placeObstacles(s *Segment, n int, table WeightTable) int {
	placed := 0
	for i := 0; i < n; i++ {
		p.free = s.lanes.FreeLanes(p.free[:0])
		if len(p.free) == 0 {
			break
		}
		lane := p.free[p.rng.Intn(len(p.free))]
		offset := uniform(p.rng, 2, s.length-2)
		id, ok := table.Pick(p.rng)
		if !ok {
			break
		}
		s.lanes.Occupy(lane)
		p.add(s, Content{Kind: KindObstacle, Lane: lane, Offset: offset, TemplateID: id})
		placed++
	}
	return placed
}

// placeCollectibles drops a batch in one lane regardless of obstacles, so
// grabbing them can mean threading past one.
func (p *ContentPlanner) placeCollectibles(s *Segment) {
	n := s.lanes.Len()
	if n == 0 || p.cfg.MaxCollectibles < 1 {
		return
	}
	id, ok := p.collectibles.Pick(p.rng)
	if !ok {
		return
	}
	lane := p.rng.Intn(n)
	count := 1 + p.rng.Intn(p.cfg.MaxCollectibles)
	for i := 0; i < count; i++ {
		p.add(s, Content{
			Kind:       KindCollectible,
			Lane:       lane,
			Offset:     uniform(p.rng, 1, s.length-1),
			Height:     p.cfg.CollectibleHeight,
			TemplateID: id,
		})
	}
}

func (p *ContentPlanner) placePowerUp(s *Segment) {
	n := s.lanes.Len()
	if n == 0 {
		return
	}
	id, ok := p.powerUps.Pick(p.rng)
	if !ok {
		return
	}
	var lane int
	if p.free = s.lanes.FreeLanes(p.free[:0]); len(p.free) > 0 {
		lane = p.free[p.rng.Intn(len(p.free))]
	} else {
		lane = p.rng.Intn(n)
	}
	p.add(s, Content{Kind: KindPowerUp, Lane: lane, Offset: s.length / 2, TemplateID: id})
}

func (p *ContentPlanner) placeDecorations(s *Segment) {
	if len(p.decorations) == 0 {
		return
	}
	for _, anchor := range s.desc.Anchors {
		if !chance(p.rng, p.cfg.DecorationChance) {
			continue
		}
		id := p.decorations[p.rng.Intn(len(p.decorations))]
		p.add(s, Content{Kind: KindDecoration, Lane: NoLane, Offset: anchor, TemplateID: id})
	}
}

func (p *ContentPlanner) add(s *Segment, c Content) {
	if p.ents != nil {
		x := 0.0
		if c.Lane >= 0 && c.Lane < len(p.lanes) {
			x = p.lanes[c.Lane]
		}
		c.Entity = p.ents.Spawn(Placement{
			SegmentID:  s.id,
			Kind:       c.Kind,
			TemplateID: c.TemplateID,
			X:          x,
			Y:          c.Height,
			Z:          s.start + c.Offset,
		})
	}
	s.content = append(s.content, c)
}
