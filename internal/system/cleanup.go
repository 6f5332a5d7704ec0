package system

import (
	"time"

	"github.com/trackgen/server/internal/core/ecs"
	coresys "github.com/trackgen/server/internal/core/system"
)

// CleanupSystem destroys the content entities despawned during the frame.
// Phase Cleanup.
type CleanupSystem struct {
	world     *ecs.World
	destroyed int
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.destroyed += s.world.FlushDestroyQueue()
}

// Destroyed is the running total of flushed entities.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
