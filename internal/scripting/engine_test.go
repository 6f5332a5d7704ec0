package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvaluateCallsScriptedCurve(t *testing.T) {
	e, err := NewEngineFromSource(`function difficulty_curve(t) return t * t end`, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.HasFunction("difficulty_curve"))
	assert.InDelta(t, 0.25, e.Evaluate(0.5), 1e-9)
	assert.InDelta(t, 1.0, e.Evaluate(1), 1e-9)
}

func TestEvaluateFallsBackToIdentity(t *testing.T) {
	e, err := NewEngineFromSource(`x = 1`, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.False(t, e.HasFunction("difficulty_curve"))
	assert.Equal(t, 0.4, e.Evaluate(0.4))

	bad, err := NewEngineFromSource(`function difficulty_curve(t) error("boom") end`, zap.NewNop())
	require.NoError(t, err)
	defer bad.Close()
	assert.Equal(t, 0.7, bad.Evaluate(0.7))

	str, err := NewEngineFromSource(`function difficulty_curve(t) return "high" end`, zap.NewNop())
	require.NoError(t, err)
	defer str.Close()
	assert.Equal(t, 0.3, str.Evaluate(0.3))
}

func TestObstacleBias(t *testing.T) {
	e, err := NewEngineFromSource(`
function obstacle_bias(d, intent)
  if intent == "challenge" and d > 0.5 then return 2 end
  return 0
end`, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 2, e.ObstacleBias(0.8, "challenge"))
	assert.Equal(t, 0, e.ObstacleBias(0.8, "normal"))

	none, err := NewEngineFromSource(``, zap.NewNop())
	require.NoError(t, err)
	defer none.Close()
	assert.Equal(t, 0, none.ObstacleBias(1, "challenge"))
}

func TestNewEngineFromSourceSyntaxError(t *testing.T) {
	_, err := NewEngineFromSource(`function (`, zap.NewNop())
	assert.ErrorContains(t, err, "load lua source")
}

func TestNewEngineLoadsDifficultyDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "difficulty")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "curve.lua"),
		[]byte("function difficulty_curve(t) return t / 2 end\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644))

	e, err := NewEngine(root, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.InDelta(t, 0.5, e.Evaluate(1), 1e-9)
}

func TestNewEngineReportsBrokenScript(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "core")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("local = 1"), 0o644))

	_, err := NewEngine(root, zap.NewNop())
	assert.ErrorContains(t, err, "load core scripts")
}

func TestShippedCurveScript(t *testing.T) {
	e, err := NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.InDelta(t, 0.0, e.Evaluate(0), 1e-9)
	assert.InDelta(t, 0.5, e.Evaluate(0.5), 1e-9)
	assert.InDelta(t, 1.0, e.Evaluate(1), 1e-9)
	assert.Equal(t, 1, e.ObstacleBias(0.95, "challenge"))
	assert.Equal(t, 0, e.ObstacleBias(0.95, "normal"))
}
