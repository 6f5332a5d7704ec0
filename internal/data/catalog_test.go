package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippedCatalog(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "data", "yaml", "catalog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3, c.LaneCount())
	assert.Equal(t, 5, c.Count())
	assert.Equal(t, []string{"street_plaza_bonus"}, c.BonusTemplates)
	require.NotNil(t, c.Template("street_bridge"))
	assert.Len(t, c.Template("street_bridge").Obstacles, 2)
	assert.Nil(t, c.Template("nope"))
	assert.Len(t, c.SegmentTypes, 4)
	assert.Equal(t, 3, c.Tiers.Extreme.MaxObstacles)
	assert.Len(t, c.Fingerprint(), 32)
}

func TestParseCatalogValidation(t *testing.T) {
	src := `
lanes: []
templates:
  - id: a
  - id: a
bonus_templates: [ghost]
segment_types:
  - name: broken
    intent: sideways
    weight: -1
    min_difficulty: 0.9
    max_difficulty: 0.1
    templates: [missing]
tiers:
  easy: { min_obstacles: 3, max_obstacles: 1 }
obstacles:
  - { id: cone, weight: -0.5 }
`
	_, err := ParseCatalog([]byte(src))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"lanes: need 1..64",
		`duplicate id "a"`,
		`unknown template "ghost"`,
		"negative weight",
		"min_difficulty 0.90 > max_difficulty 0.10",
		`unknown intent "sideways"`,
		`unknown template "missing"`,
		"tier easy: bad bounds 3..1",
		"obstacles: cone has negative weight",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestParseCatalogBadYAML(t *testing.T) {
	_, err := ParseCatalog([]byte("lanes: [1, 2"))
	assert.ErrorContains(t, err, "parse catalog")
}

func TestFingerprintTracksBytes(t *testing.T) {
	a, err := ParseCatalog([]byte("lanes: [0]\n"))
	require.NoError(t, err)
	b, err := ParseCatalog([]byte("lanes: [0, 1]\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
