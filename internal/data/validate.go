package data

import (
	"errors"
	"fmt"
)

// MaxLanes bounds the lane count so occupancy fits a 64-bit mask.
const MaxLanes = 64

var intents = map[string]bool{
	"normal":    true,
	"bonus":     true,
	"challenge": true,
	"safe":      true,
}

// Validate reports every structural problem in the catalog at once.
func (c *Catalog) Validate() error {
	var errs []error
	if n := len(c.Lanes); n < 1 || n > MaxLanes {
		errs = append(errs, fmt.Errorf("lanes: need 1..%d, have %d", MaxLanes, n))
	}
	seen := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		if t.ID == "" {
			errs = append(errs, errors.New("templates: empty id"))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("templates: duplicate id %q", t.ID))
		}
		seen[t.ID] = true
		errs = append(errs, checkWeights("template "+t.ID+" obstacles", t.Obstacles)...)
	}
	for _, id := range c.BonusTemplates {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("bonus_templates: unknown template %q", id))
		}
	}
	for _, st := range c.SegmentTypes {
		if st.Weight < 0 {
			errs = append(errs, fmt.Errorf("segment type %s: negative weight", st.Name))
		}
		if st.MinDifficulty > st.MaxDifficulty {
			errs = append(errs, fmt.Errorf("segment type %s: min_difficulty %.2f > max_difficulty %.2f",
				st.Name, st.MinDifficulty, st.MaxDifficulty))
		}
		if st.Intent != "" && !intents[st.Intent] {
			errs = append(errs, fmt.Errorf("segment type %s: unknown intent %q", st.Name, st.Intent))
		}
		for _, id := range st.Templates {
			if !seen[id] {
				errs = append(errs, fmt.Errorf("segment type %s: unknown template %q", st.Name, id))
			}
		}
	}
	for name, b := range map[string]TierBounds{
		"easy": c.Tiers.Easy, "medium": c.Tiers.Medium, "hard": c.Tiers.Hard, "extreme": c.Tiers.Extreme,
	} {
		if b.MinObstacles < 0 || b.MinObstacles > b.MaxObstacles {
			errs = append(errs, fmt.Errorf("tier %s: bad bounds %d..%d", name, b.MinObstacles, b.MaxObstacles))
		}
	}
	errs = append(errs, checkWeights("obstacles", c.Obstacles)...)
	errs = append(errs, checkWeights("collectibles", c.Collectibles)...)
	errs = append(errs, checkWeights("power_ups", c.PowerUps)...)
	return errors.Join(errs...)
}

func checkWeights(what string, entries []WeightedEntry) []error {
	var errs []error
	for _, e := range entries {
		if e.Weight < 0 {
			errs = append(errs, fmt.Errorf("%s: %s has negative weight", what, e.ID))
		}
	}
	return errs
}
