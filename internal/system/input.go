package system

import (
	"time"

	"github.com/trackgen/server/internal/core/event"
	coresys "github.com/trackgen/server/internal/core/system"
	"github.com/trackgen/server/internal/world"
)

// InputSystem advances the simulated runner and publishes speed changes.
// Phase Input.
type InputSystem struct {
	runner *world.Runner
	bus    *event.Bus
}

func NewInputSystem(runner *world.Runner, bus *event.Bus) *InputSystem {
	return &InputSystem{runner: runner, bus: bus}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	if ev, changed := s.runner.Advance(dt); changed {
		event.Emit(s.bus, ev)
	}
}
