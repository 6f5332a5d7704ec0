package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyClockLinearFallback(t *testing.T) {
	c := NewDifficultyClock(nil, 100*time.Second, 1, 0.01)
	assert.InDelta(t, 0.25, c.Target(25*time.Second), 1e-9)
	assert.InDelta(t, 1.0, c.Target(500*time.Second), 1e-9, "ratio above 1 clamps")

	old, now, changed := c.Update(50 * time.Second)
	assert.True(t, changed)
	assert.Equal(t, 0.0, old)
	assert.InDelta(t, 0.5, now, 1e-9)
}

func TestDifficultyClockEpsilonSuppressesChurn(t *testing.T) {
	c := NewDifficultyClock(nil, 100*time.Second, 1, 0.05)
	_, _, changed := c.Update(3 * time.Second)
	assert.False(t, changed, "0.03 is below epsilon")
	assert.Equal(t, 0.0, c.Value())

	_, now, changed := c.Update(10 * time.Second)
	assert.True(t, changed)
	assert.InDelta(t, 0.1, now, 1e-9)
}

func TestDifficultyClockNeverDecreases(t *testing.T) {
	dip := CurveFunc(func(t float64) float64 {
		if t > 0.5 {
			return 0.2
		}
		return t
	})
	c := NewDifficultyClock(dip, 10*time.Second, 1, 0.001)
	c.Update(5 * time.Second)
	assert.InDelta(t, 0.5, c.Value(), 1e-9)
	_, _, changed := c.Update(8 * time.Second)
	assert.False(t, changed)
	assert.InDelta(t, 0.5, c.Value(), 1e-9)
}

func TestDifficultyClockScalesByMax(t *testing.T) {
	c := NewDifficultyClock(CurveFunc(func(t float64) float64 { return 2 * t }), 10*time.Second, 0.8, 0)
	assert.InDelta(t, 0.8, c.Target(10*time.Second), 1e-9, "curve output clamps to 1 before scaling")
	assert.InDelta(t, 0.4, c.Target(2500*time.Millisecond), 1e-9)
}

func TestDifficultyClockSetClamps(t *testing.T) {
	c := NewDifficultyClock(nil, time.Second, 1, 0)
	_, now := c.Set(3)
	assert.Equal(t, 1.0, now)
	_, now = c.Set(-1)
	assert.Equal(t, 0.0, now)
}

func TestKeyframes(t *testing.T) {
	k := NewKeyframes([][2]float64{{1, 1}, {0, 0}, {0.5, 0.8}})
	assert.InDelta(t, 0.0, k.Evaluate(-1), 1e-9)
	assert.InDelta(t, 0.4, k.Evaluate(0.25), 1e-9)
	assert.InDelta(t, 0.8, k.Evaluate(0.5), 1e-9)
	assert.InDelta(t, 0.9, k.Evaluate(0.75), 1e-9)
	assert.InDelta(t, 1.0, k.Evaluate(3), 1e-9)

	assert.InDelta(t, 0.3, NewKeyframes(nil).Evaluate(0.3), 1e-9)
}
