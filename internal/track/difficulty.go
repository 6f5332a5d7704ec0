package track

import (
	"math"
	"sort"
	"time"
)

// Curve maps a normalized time ratio in [0,1] to a normalized difficulty.
type Curve interface {
	Evaluate(t float64) float64
}

// CurveFunc adapts a plain function to Curve.
type CurveFunc func(t float64) float64

func (f CurveFunc) Evaluate(t float64) float64 { return f(t) }

// Keyframes is a piecewise-linear curve. Values before the first key and
// after the last one are held flat.
type Keyframes struct {
	keys [][2]float64
}

func NewKeyframes(keys [][2]float64) Keyframes {
	k := make([][2]float64, len(keys))
	copy(k, keys)
	sort.Slice(k, func(i, j int) bool { return k[i][0] < k[j][0] })
	return Keyframes{keys: k}
}

func (k Keyframes) Evaluate(t float64) float64 {
	n := len(k.keys)
	if n == 0 {
		return clamp01(t)
	}
	if t <= k.keys[0][0] {
		return k.keys[0][1]
	}
	if t >= k.keys[n-1][0] {
		return k.keys[n-1][1]
	}
	i := sort.Search(n, func(i int) bool { return k.keys[i][0] >= t })
	a, b := k.keys[i-1], k.keys[i]
	if b[0] == a[0] {
		return b[1]
	}
	return lerp(a[1], b[1], (t-a[0])/(b[0]-a[0]))
}

// DifficultyClock converts elapsed session time into difficulty.
// Without a curve the ratio time/interval is used linearly.
type DifficultyClock struct {
	curve    Curve
	interval time.Duration
	max      float64
	epsilon  float64
	value    float64
}

func NewDifficultyClock(curve Curve, interval time.Duration, maxDifficulty, epsilon float64) *DifficultyClock {
	if maxDifficulty <= 0 {
		maxDifficulty = 1
	}
	return &DifficultyClock{
		curve:    curve,
		interval: interval,
		max:      maxDifficulty,
		epsilon:  epsilon,
	}
}

// Target computes the difficulty for elapsed without changing the clock.
func (c *DifficultyClock) Target(elapsed time.Duration) float64 {
	ratio := 1.0
	if c.interval > 0 {
		ratio = clamp01(float64(elapsed) / float64(c.interval))
	}
	v := ratio
	if c.curve != nil {
		v = clamp01(c.curve.Evaluate(ratio))
	}
	return v * c.max
}

// Update moves the clock to elapsed. The stored value only moves up, and
// only when the step is larger than epsilon; changed reports whether it did.
func (c *DifficultyClock) Update(elapsed time.Duration) (old, now float64, changed bool) {
	old = c.value
	target := c.Target(elapsed)
	if target-c.value <= c.epsilon {
		return old, c.value, false
	}
	c.value = target
	return old, c.value, true
}

// Set overrides the current value, clamped to [0, max].
func (c *DifficultyClock) Set(v float64) (old, now float64) {
	old = c.value
	c.value = math.Max(0, math.Min(v, c.max))
	return old, c.value
}

func (c *DifficultyClock) Value() float64 { return c.value }

func (c *DifficultyClock) Max() float64 { return c.max }

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
