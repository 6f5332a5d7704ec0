package track

import "github.com/trackgen/server/internal/core/ecs"

type ContentKind uint8

const (
	KindObstacle ContentKind = iota
	KindCollectible
	KindPowerUp
	KindDecoration
)

func (k ContentKind) String() string {
	switch k {
	case KindObstacle:
		return "obstacle"
	case KindCollectible:
		return "collectible"
	case KindPowerUp:
		return "power_up"
	case KindDecoration:
		return "decoration"
	}
	return "unknown"
}

// NoLane marks content that is not bound to a lane (decorations).
const NoLane = -1

// Content is one piece of layout owned by a segment. Offset is measured
// from the segment start along the track.
type Content struct {
	Entity     ecs.EntityID
	Kind       ContentKind
	Lane       int
	Offset     float64
	Height     float64
	TemplateID string
}

// Placement is the world-space component stored for every content entity.
type Placement struct {
	SegmentID  int
	Kind       ContentKind
	TemplateID string
	X, Y, Z    float64 // lateral, height, distance along the track
}

// Entities spawns content entities into the ECS world. Despawned entities
// stay resolvable until the world's destroy queue is flushed.
type Entities struct {
	world      *ecs.World
	placements *ecs.Store[Placement]
}

func NewEntities(w *ecs.World) *Entities {
	e := &Entities{
		world:      w,
		placements: ecs.NewStore[Placement](),
	}
	w.Register(e.placements)
	return e
}

func (e *Entities) Spawn(p Placement) ecs.EntityID {
	id := e.world.CreateEntity()
	e.placements.Set(id, &p)
	return id
}

func (e *Entities) Despawn(id ecs.EntityID) {
	e.world.MarkForDestruction(id)
}

func (e *Entities) Get(id ecs.EntityID) (*Placement, bool) {
	return e.placements.Get(id)
}

func (e *Entities) Len() int { return e.placements.Len() }

func (e *Entities) World() *ecs.World { return e.world }
