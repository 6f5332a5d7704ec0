package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackgen/server/internal/config"
)

func TestRunnerAbsentUntilSpawned(t *testing.T) {
	r := NewRunner(config.LoopConfig{RunnerSpeed: 10, MaxSpeed: 20})
	_, ok := r.PlayerX()
	assert.False(t, ok)

	_, changed := r.Advance(time.Second)
	assert.False(t, changed)
	assert.Zero(t, r.Traveled())

	r.Spawn(5)
	x, ok := r.PlayerX()
	assert.True(t, ok)
	assert.Equal(t, 5.0, x)

	r.Despawn()
	_, ok = r.PlayerX()
	assert.False(t, ok)
}

func TestRunnerAdvancesAtSpeed(t *testing.T) {
	r := NewRunner(config.LoopConfig{RunnerSpeed: 10, MaxSpeed: 10})
	r.Spawn(0)
	for i := 0; i < 4; i++ {
		r.Advance(250 * time.Millisecond)
	}
	x, _ := r.PlayerX()
	assert.InDelta(t, 10.0, x, 1e-9)
	assert.InDelta(t, 10.0, r.Traveled(), 1e-9)
}

func TestRunnerReportsSpeedInSteps(t *testing.T) {
	r := NewRunner(config.LoopConfig{RunnerSpeed: 10, SpeedRamp: 0.5, MaxSpeed: 40})
	r.Spawn(0)

	_, changed := r.Advance(time.Second) // 10.5
	assert.False(t, changed)

	ev, changed := r.Advance(time.Second) // 11.0
	assert.True(t, changed)
	assert.InDelta(t, 10.0, ev.Old, 1e-9)
	assert.InDelta(t, 11.0, ev.New, 1e-9)
}

func TestRunnerSpeedCapped(t *testing.T) {
	r := NewRunner(config.LoopConfig{RunnerSpeed: 10, SpeedRamp: 100, MaxSpeed: 12})
	r.Spawn(0)

	ev, changed := r.Advance(time.Second)
	assert.True(t, changed)
	assert.Equal(t, 12.0, ev.New)
	assert.Equal(t, 12.0, r.Speed())

	_, changed = r.Advance(time.Second)
	assert.False(t, changed, "no further change once capped")

	r.SetSpeed(100)
	assert.Equal(t, 12.0, r.Speed())
	r.SetSpeed(-3)
	assert.Equal(t, 0.0, r.Speed())
	ev, changed = r.Advance(10 * time.Millisecond)
	assert.True(t, changed)
	assert.Equal(t, 12.0, ev.Old)
	assert.InDelta(t, 1.0, ev.New, 1e-9)
}
