package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: advance the runner, publish speed changes
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: track generation (difficulty → generate → recycle)
	PhasePostUpdate              // 3: debug feed fan-out
	PhasePersist                 // 4: telemetry flush
	PhaseCleanup                 // 5: destroy queued content entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is one unit of per-frame work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
