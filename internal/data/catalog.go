package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeightedEntry is one selectable prefab with its relative weight.
type WeightedEntry struct {
	ID     string  `yaml:"id"`
	Weight float64 `yaml:"weight"`
}

// TemplateEntry describes one segment template (a street layout).
// Obstacles, when set, replaces the global obstacle catalog for segments
// built from this template.
type TemplateEntry struct {
	ID        string          `yaml:"id"`
	Anchors   []float64       `yaml:"anchors"` // decoration anchor offsets along the segment
	Obstacles []WeightedEntry `yaml:"obstacles,omitempty"`
}

// SegmentTypeEntry groups templates under one weighted, difficulty-gated type.
type SegmentTypeEntry struct {
	Name          string   `yaml:"name"`
	Intent        string   `yaml:"intent"` // normal, bonus, challenge, safe
	Weight        float64  `yaml:"weight"`
	MinDifficulty float64  `yaml:"min_difficulty"`
	MaxDifficulty float64  `yaml:"max_difficulty"`
	Templates     []string `yaml:"templates"`
}

// TierBounds caps the obstacle count for one difficulty tier.
type TierBounds struct {
	MinObstacles int `yaml:"min_obstacles"`
	MaxObstacles int `yaml:"max_obstacles"`
}

type TierTable struct {
	Easy    TierBounds `yaml:"easy"`
	Medium  TierBounds `yaml:"medium"`
	Hard    TierBounds `yaml:"hard"`
	Extreme TierBounds `yaml:"extreme"`
}

type catalogFile struct {
	Lanes          []float64          `yaml:"lanes"`
	Templates      []TemplateEntry    `yaml:"templates"`
	BonusTemplates []string           `yaml:"bonus_templates"`
	SegmentTypes   []SegmentTypeEntry `yaml:"segment_types"`
	Tiers          TierTable          `yaml:"tiers"`
	Obstacles      []WeightedEntry    `yaml:"obstacles"`
	Collectibles   []WeightedEntry    `yaml:"collectibles"`
	PowerUps       []WeightedEntry    `yaml:"power_ups"`
	Decorations    []string           `yaml:"decorations"`
}

// Catalog is the static content bundle the generator is built from.
type Catalog struct {
	Lanes          []float64
	Templates      []TemplateEntry
	BonusTemplates []string
	SegmentTypes   []SegmentTypeEntry
	Tiers          TierTable
	Obstacles      []WeightedEntry
	Collectibles   []WeightedEntry
	PowerUps       []WeightedEntry
	Decorations    []string

	byID map[string]*TemplateEntry
	raw  []byte
}

// LoadCatalog loads and validates the catalog YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{
		Lanes:          f.Lanes,
		Templates:      f.Templates,
		BonusTemplates: f.BonusTemplates,
		SegmentTypes:   f.SegmentTypes,
		Tiers:          f.Tiers,
		Obstacles:      f.Obstacles,
		Collectibles:   f.Collectibles,
		PowerUps:       f.PowerUps,
		Decorations:    f.Decorations,
		byID:           make(map[string]*TemplateEntry, len(f.Templates)),
		raw:            raw,
	}
	for i := range c.Templates {
		c.byID[c.Templates[i].ID] = &c.Templates[i]
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Template returns the template with the given ID, or nil if none.
func (c *Catalog) Template(id string) *TemplateEntry {
	return c.byID[id]
}

// LaneCount returns the number of configured lanes.
func (c *Catalog) LaneCount() int {
	return len(c.Lanes)
}

// Count returns the number of templates loaded.
func (c *Catalog) Count() int {
	return len(c.Templates)
}
