package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"track", PhaseUpdate, &log})
	r.Register(recorder{"dispatch", PhasePreUpdate, &log})
	r.Register(recorder{"track-2", PhaseUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "dispatch", "track", "track-2", "cleanup"}, log)
	assert.Equal(t, 5, r.Len())
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"a", PhaseUpdate, &log})
	r.Register(recorder{"b", PhaseInput, &log})
	r.TickPhase(PhaseInput, time.Millisecond)
	assert.Equal(t, []string{"b"}, log)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "update", PhaseUpdate.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
