package track

import (
	"fmt"
	"math"
	"time"

	"github.com/trackgen/server/internal/config"
	"github.com/trackgen/server/internal/data"
	"go.uber.org/zap"
)

// State is the generator lifecycle stage.
type State uint8

const (
	StateIdle State = iota
	StateGeneratingInitial
	StateSteady
	StateRegenerating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeneratingInitial:
		return "generating-initial"
	case StateSteady:
		return "steady"
	case StateRegenerating:
		return "regenerating"
	}
	return "unknown"
}

// PositionSource reports the player's distance along the track.
// ok is false while no player exists.
type PositionSource interface {
	PlayerX() (x float64, ok bool)
}

// PositionFunc adapts a function to PositionSource.
type PositionFunc func() (float64, bool)

func (f PositionFunc) PlayerX() (float64, bool) { return f() }

// Settings are the generator's static tuning values.
type Settings struct {
	Origin                float64
	SegmentLength         float64
	InitialSegments       int
	MaxActiveSegments     int
	SafeStartSegments     int
	GenerationDistance    float64
	MinGenerationDistance float64
	SpeedLookaheadFactor  float64
	TickInterval          time.Duration
	BonusChance           float64
	MinBonusSpacing       int
	PoolWarnThreshold     int
	Planner               PlannerConfig
}

// SettingsFromConfig gathers the generator settings from the loaded config.
func SettingsFromConfig(cfg *config.Config, cat *data.Catalog) Settings {
	g := cfg.Generator
	c := cfg.Content
	return Settings{
		SegmentLength:         g.SegmentLength,
		InitialSegments:       g.InitialSegments,
		MaxActiveSegments:     g.MaxActiveSegments,
		SafeStartSegments:     g.SafeStartSegments,
		GenerationDistance:    g.GenerationDistance,
		MinGenerationDistance: g.MinGenerationDistance,
		SpeedLookaheadFactor:  g.SpeedLookaheadFactor,
		TickInterval:          g.TickInterval,
		BonusChance:           g.BonusChance,
		MinBonusSpacing:       g.MinBonusSpacing,
		PoolWarnThreshold:     g.PoolWarnThreshold,
		Planner: PlannerConfig{
			CollectibleChance: c.CollectibleChance,
			PowerUpChance:     c.PowerUpChance,
			DecorationChance:  c.DecorationChance,
			MaxCollectibles:   c.MaxCollectibles,
			CollectibleHeight: c.CollectibleHeight,
			Tiers:             cat.Tiers,
		},
	}
}

// Deps are the collaborators the generator is wired with.
type Deps struct {
	Player   PositionSource // may be nil until a player exists
	Clock    *DifficultyClock
	Sink     EventSink // nil: events are discarded
	Entities *Entities // nil: content gets no ECS entities
	Rand     Rand      // nil: NewRand()
	Log      *zap.Logger
}

type segmentType struct {
	name      string
	intent    Intent
	minD      float64
	maxD      float64
	templates []Descriptor
}

// Stats is the generator-wide snapshot.
type Stats struct {
	State              State
	Active             int
	Pooled             int
	Constructed        int
	TotalGenerated     int
	Difficulty         float64
	Pointer            float64
	GenerationDistance float64
}

// Generator owns the active segment queue, the pool and the insertion
// pointer. All methods must be called from the single loop goroutine.
type Generator struct {
	settings Settings

	types       []segmentType
	typeWeights []float64
	generic     []Descriptor
	bonus       []Descriptor

	pool    *SegmentPool
	planner *ContentPlanner
	clock   *DifficultyClock
	player  PositionSource
	sink    EventSink
	rng     Rand
	log     *zap.Logger

	state              State
	pointer            float64
	generationDistance float64
	generated          int // since the last (re)start
	total              int
	sinceBonus         int
	active             []*Segment

	elapsed time.Duration
	accum   time.Duration
}

// NewGenerator resolves the catalog into descriptors and builds the pool
// and planner. It does not generate anything until Init.
func NewGenerator(s Settings, cat *data.Catalog, deps Deps) (*Generator, error) {
	if s.SegmentLength <= 4 {
		return nil, fmt.Errorf("segment length %.2f too short for obstacle placement", s.SegmentLength)
	}
	if cat.LaneCount() < 1 || cat.LaneCount() > data.MaxLanes {
		return nil, fmt.Errorf("lane count %d out of range", cat.LaneCount())
	}
	if deps.Rand == nil {
		deps.Rand = NewRand()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Sink == nil {
		deps.Sink = NopSink{}
	}
	if deps.Clock == nil {
		deps.Clock = NewDifficultyClock(nil, 0, 1, 0)
	}

	g := &Generator{
		settings:           s,
		clock:              deps.Clock,
		player:             deps.Player,
		sink:               deps.Sink,
		rng:                deps.Rand,
		log:                deps.Log,
		pointer:            s.Origin,
		generationDistance: math.Max(s.GenerationDistance, s.MinGenerationDistance),
		active:             make([]*Segment, 0, s.MaxActiveSegments+1),
	}
	if err := g.resolveCatalog(cat); err != nil {
		return nil, err
	}
	g.planner = NewContentPlanner(s.Planner, cat, deps.Entities, deps.Rand)
	g.pool = NewSegmentPool(s.SegmentLength, cat.LaneCount(), 0, s.PoolWarnThreshold, deps.Entities, deps.Log)
	return g, nil
}

func describe(t *data.TemplateEntry, typeName string, intent Intent) Descriptor {
	return Descriptor{
		TemplateID: t.ID,
		TypeName:   typeName,
		Intent:     intent,
		Anchors:    t.Anchors,
		Obstacles:  NewWeightTable(t.Obstacles),
	}
}

func (g *Generator) resolveCatalog(cat *data.Catalog) error {
	for i := range cat.Templates {
		g.generic = append(g.generic, describe(&cat.Templates[i], "generic", IntentNormal))
	}
	for _, id := range cat.BonusTemplates {
		g.bonus = append(g.bonus, describe(cat.Template(id), "bonus", IntentBonus))
	}
	for _, st := range cat.SegmentTypes {
		intent, err := ParseIntent(st.Intent)
		if err != nil {
			return fmt.Errorf("segment type %s: %w", st.Name, err)
		}
		t := segmentType{name: st.Name, intent: intent, minD: st.MinDifficulty, maxD: st.MaxDifficulty}
		for _, id := range st.Templates {
			t.templates = append(t.templates, describe(cat.Template(id), st.Name, intent))
		}
		g.types = append(g.types, t)
		g.typeWeights = append(g.typeWeights, st.Weight)
	}
	return nil
}

// Init pre-builds the pool and lays down the initial segments.
func (g *Generator) Init() {
	if g.state != StateIdle {
		return
	}
	g.setState(StateGeneratingInitial)
	for i := 0; i < 2*g.settings.MaxActiveSegments; i++ {
		g.pool.Release(g.pool.construct())
	}
	g.generateInitial()
	g.setState(StateSteady)
}

func (g *Generator) generateInitial() {
	for i := 0; i < g.settings.InitialSegments; i++ {
		if !g.generateNext() {
			break
		}
	}
}

func (g *Generator) setState(s State) {
	if g.state == s {
		return
	}
	g.log.Info("track generator state", zap.Stringer("from", g.state), zap.Stringer("to", s))
	g.state = s
}

// OnSpeedChanged rescales the lookahead distance with the game speed.
func (g *Generator) OnSpeedChanged(speed float64) {
	g.generationDistance = math.Max(g.settings.MinGenerationDistance, speed*g.settings.SpeedLookaheadFactor)
}

// Update advances session time and runs Tick once per tick interval,
// however often it is called.
func (g *Generator) Update(dt time.Duration) {
	g.elapsed += dt
	g.accum += dt
	if g.accum < g.settings.TickInterval {
		return
	}
	g.accum = 0
	g.Tick()
}

// Tick refreshes difficulty, then generates at most one segment, then
// recycles segments left behind.
func (g *Generator) Tick() {
	if g.state != StateSteady {
		return
	}
	g.refreshDifficulty()
	if g.shouldGenerate() {
		g.generateNext()
	}
	g.cleanup()
}

func (g *Generator) refreshDifficulty() {
	if old, now, changed := g.clock.Update(g.elapsed); changed {
		g.sink.DifficultyChanged(DifficultyChanged{Old: old, New: now, Elapsed: g.elapsed})
	}
}

func (g *Generator) shouldGenerate() bool {
	if len(g.generic) == 0 && len(g.bonus) == 0 {
		return false
	}
	x, ok := g.playerX()
	if !ok {
		return false
	}
	distanceToEnd := (g.pointer - g.settings.SegmentLength) - x
	return distanceToEnd < g.generationDistance
}

func (g *Generator) playerX() (float64, bool) {
	if g.player == nil {
		return 0, false
	}
	return g.player.PlayerX()
}

// selectTemplate runs the bonus gate, then the weighted type draw.
func (g *Generator) selectTemplate() (Descriptor, bool) {
	safeStart := g.generated < g.settings.SafeStartSegments

	if !safeStart && len(g.bonus) > 0 && g.sinceBonus >= g.settings.MinBonusSpacing &&
		g.rng.Float64() < g.settings.BonusChance {
		g.sinceBonus = 0
		return g.bonus[g.rng.Intn(len(g.bonus))], true
	}

	d, ok := g.selectByType()
	if !ok {
		return Descriptor{}, false
	}
	g.sinceBonus++
	if safeStart {
		d.Intent = IntentSafe
	}
	return d, true
}

func (g *Generator) selectByType() (Descriptor, bool) {
	if len(g.types) == 0 {
		return g.pickGeneric()
	}
	difficulty := g.clock.Value()
	weights := make([]float64, len(g.types))
	eligible := false
	for i, t := range g.types {
		if difficulty >= t.minD && difficulty <= t.maxD {
			weights[i] = g.typeWeights[i]
			eligible = eligible || weights[i] > 0
		}
	}
	chosen := 0
	if eligible {
		chosen = WeightedIndex(weights, g.rng.Float64())
	}
	t := g.types[chosen]
	if len(t.templates) == 0 {
		d, ok := g.pickGeneric()
		d.TypeName = t.name
		d.Intent = t.intent
		return d, ok
	}
	return t.templates[g.rng.Intn(len(t.templates))], true
}

func (g *Generator) pickGeneric() (Descriptor, bool) {
	if len(g.generic) == 0 {
		return Descriptor{}, false
	}
	return g.generic[g.rng.Intn(len(g.generic))], true
}

// generateNext places one segment at the insertion pointer.
func (g *Generator) generateNext() bool {
	d, ok := g.selectTemplate()
	if !ok {
		return false
	}
	difficulty := g.clock.Value()
	seg := g.pool.Acquire(d)
	seg.place(g.pointer, g.total, difficulty)
	g.pointer += g.settings.SegmentLength
	g.planner.Populate(seg, difficulty, g.total, d.Intent)
	g.active = append(g.active, seg)
	g.generated++
	g.total++

	summary := seg.Summary()
	g.log.Debug("segment generated", zap.String("summary", summary))
	g.sink.SegmentGenerated(SegmentGenerated{Segment: seg.Stats(), Summary: summary, Pointer: g.pointer})
	return true
}

// cleanup recycles every leading segment whose far edge is more than one
// segment length behind the player.
func (g *Generator) cleanup() {
	x, ok := g.playerX()
	if !ok {
		return
	}
	limit := x - g.settings.SegmentLength
	for len(g.active) > 0 && g.active[0].End() < limit {
		g.recycleFront(x)
	}
}

func (g *Generator) recycleFront(playerX float64) {
	seg := g.active[0]
	g.active[0] = nil
	g.active = g.active[1:]
	st := seg.Stats()
	g.pool.Release(seg)
	g.log.Debug("segment recycled", zap.Int("index", st.Index), zap.Float64("end", st.End))
	g.sink.SegmentRecycled(SegmentRecycled{Segment: st, PlayerX: playerX})
}

// ForceGenerateSegments appends up to n segments regardless of the
// lookahead and returns how many were placed.
func (g *Generator) ForceGenerateSegments(n int) int {
	placed := 0
	for i := 0; i < n; i++ {
		if !g.generateNext() {
			break
		}
		placed++
	}
	return placed
}

// RegenerateStreet drops every active segment and rebuilds the initial
// track from the player's position in one step.
func (g *Generator) RegenerateStreet() {
	prev := g.state
	g.setState(StateRegenerating)
	released := len(g.active)
	for _, seg := range g.active {
		g.pool.Release(seg)
	}
	clear(g.active)
	g.active = g.active[:0]

	if x, ok := g.playerX(); ok {
		g.pointer = x
	} else {
		g.pointer = g.settings.Origin
	}
	g.generated = 0
	g.sinceBonus = 0
	g.accum = 0
	g.generateInitial()
	g.log.Info("street regenerated",
		zap.Int("released", released),
		zap.Int("generated", len(g.active)),
		zap.Float64("pointer", g.pointer))
	if prev == StateIdle {
		prev = StateSteady
	}
	g.setState(prev)
}

// SetObstacleBias forwards a scripted obstacle-count hook to the planner.
func (g *Generator) SetObstacleBias(b ObstacleBiaser) {
	g.planner.SetObstacleBias(b)
}

// SetDifficulty overrides the clock value; meant for tests and tools.
func (g *Generator) SetDifficulty(v float64) {
	old, now := g.clock.Set(v)
	if old != now {
		g.sink.DifficultyChanged(DifficultyChanged{Old: old, New: now, Elapsed: g.elapsed})
	}
}

func (g *Generator) Stats() Stats {
	return Stats{
		State:              g.state,
		Active:             len(g.active),
		Pooled:             g.pool.Idle(),
		Constructed:        g.pool.Constructed(),
		TotalGenerated:     g.total,
		Difficulty:         g.clock.Value(),
		Pointer:            g.pointer,
		GenerationDistance: g.generationDistance,
	}
}

// Active returns the live queue, oldest first. Callers must not modify it.
func (g *Generator) Active() []*Segment { return g.active }

func (g *Generator) State() State { return g.state }

func (g *Generator) Pointer() float64 { return g.pointer }
