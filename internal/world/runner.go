package world

import (
	"math"
	"time"

	"github.com/trackgen/server/internal/config"
)

// SpeedChanged is emitted on the bus when the runner's speed has moved
// far enough from the last reported value.
type SpeedChanged struct {
	Old float64
	New float64
}

// speedStep is the minimum change worth reporting; lookahead is coarse.
const speedStep = 1.0

// Runner is a simulated player moving along the track at a ramping speed.
// Game loop goroutine only.
type Runner struct {
	x        float64
	speed    float64
	ramp     float64
	maxSpeed float64
	present  bool

	reported float64
	traveled float64
}

func NewRunner(cfg config.LoopConfig) *Runner {
	return &Runner{
		speed:    cfg.RunnerSpeed,
		ramp:     cfg.SpeedRamp,
		maxSpeed: math.Max(cfg.MaxSpeed, cfg.RunnerSpeed),
		reported: cfg.RunnerSpeed,
	}
}

// Spawn places the runner at x. Until Spawn is called the runner reports
// no position.
func (r *Runner) Spawn(x float64) {
	r.x = x
	r.present = true
}

func (r *Runner) Despawn() {
	r.present = false
}

// PlayerX satisfies track.PositionSource.
func (r *Runner) PlayerX() (float64, bool) {
	return r.x, r.present
}

func (r *Runner) Speed() float64    { return r.speed }
func (r *Runner) Traveled() float64 { return r.traveled }

// Advance moves the runner by dt and ramps its speed. It returns the
// speed change to publish, if any.
func (r *Runner) Advance(dt time.Duration) (SpeedChanged, bool) {
	if !r.present || dt <= 0 {
		return SpeedChanged{}, false
	}
	sec := dt.Seconds()
	r.speed = math.Min(r.maxSpeed, r.speed+r.ramp*sec)
	step := r.speed * sec
	r.x += step
	r.traveled += step

	if math.Abs(r.speed-r.reported) < speedStep && !(r.speed == r.maxSpeed && r.reported != r.maxSpeed) {
		return SpeedChanged{}, false
	}
	ev := SpeedChanged{Old: r.reported, New: r.speed}
	r.reported = r.speed
	return ev, true
}

// SetSpeed overrides the current speed, clamped to [0, max]. The next
// Advance reports it.
func (r *Runner) SetSpeed(v float64) {
	r.speed = math.Max(0, math.Min(r.maxSpeed, v))
}
