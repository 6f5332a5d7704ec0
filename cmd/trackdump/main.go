// trackdump generates a stretch of track offline and writes it as YAML, for
// reviewing catalog and tuning changes without running the loop.
//
// Produces one document with the run settings and one entry per segment:
// template, type, intent, difficulty and every placed item.
//
// Usage:
//
//	go run ./cmd/trackdump -n 40 -from 0 -to 1 -o track.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/trackgen/server/internal/config"
	"github.com/trackgen/server/internal/data"
	"github.com/trackgen/server/internal/track"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML structures
// ---------------------------------------------------------------------------

type DumpFile struct {
	Catalog       string        `yaml:"catalog"`
	Fingerprint   string        `yaml:"fingerprint"`
	SegmentLength float64       `yaml:"segment_length"`
	Lanes         int           `yaml:"lanes"`
	Segments      []SegmentDump `yaml:"segments"`
	Totals        Totals        `yaml:"totals"`
}

type SegmentDump struct {
	Index      int        `yaml:"index"`
	Summary    string     `yaml:"summary"`
	Template   string     `yaml:"template"`
	Type       string     `yaml:"type"`
	Intent     string     `yaml:"intent"`
	Start      float64    `yaml:"start"`
	Difficulty float64    `yaml:"difficulty"`
	Dropped    int        `yaml:"dropped_obstacles,omitempty"`
	Items      []ItemDump `yaml:"items,flow"`
}

type ItemDump struct {
	Kind   string  `yaml:"kind"`
	ID     string  `yaml:"id"`
	Lane   int     `yaml:"lane"`
	Offset float64 `yaml:"offset"`
}

type Totals struct {
	Obstacles    int            `yaml:"obstacles"`
	Collectibles int            `yaml:"collectibles"`
	PowerUps     int            `yaml:"power_ups"`
	Decorations  int            `yaml:"decorations"`
	Dropped      int            `yaml:"dropped_obstacles"`
	ByIntent     map[string]int `yaml:"by_intent"`
	ByTemplate   map[string]int `yaml:"by_template"`
}

func main() {
	cfgPath := flag.String("config", "config/trackgen.toml", "config file")
	n := flag.Int("n", 40, "segments to generate")
	from := flag.Float64("from", 0, "difficulty of the first segment")
	to := flag.Float64("to", 1, "difficulty of the last segment")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := run(*cfgPath, *n, *from, *to, w); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, n int, from, to float64, w io.Writer) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cat, err := data.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	dump, err := generate(cfg, cat, n, from, to)
	if err != nil {
		return err
	}
	dump.Catalog = cfg.Catalog.Path

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// generate forces n segments with difficulty stepped linearly from..to.
func generate(cfg *config.Config, cat *data.Catalog, n int, from, to float64) (*DumpFile, error) {
	s := track.SettingsFromConfig(cfg, cat)
	s.InitialSegments = 0
	gen, err := track.NewGenerator(s, cat, track.Deps{Log: zap.NewNop()})
	if err != nil {
		return nil, fmt.Errorf("track generator: %w", err)
	}
	gen.Init()

	dump := &DumpFile{
		Fingerprint:   cat.Fingerprint(),
		SegmentLength: s.SegmentLength,
		Lanes:         cat.LaneCount(),
		Totals: Totals{
			ByIntent:   map[string]int{},
			ByTemplate: map[string]int{},
		},
	}
	for i := 0; i < n; i++ {
		d := from
		if n > 1 {
			d = from + (to-from)*float64(i)/float64(n-1)
		}
		gen.SetDifficulty(d)
		if gen.ForceGenerateSegments(1) == 0 {
			break
		}
		active := gen.Active()
		dump.add(active[len(active)-1])
	}
	return dump, nil
}

func (d *DumpFile) add(seg *track.Segment) {
	st := seg.Stats()
	sd := SegmentDump{
		Index:      st.Index,
		Summary:    seg.Summary(),
		Template:   st.Template,
		Type:       st.Type,
		Intent:     st.Intent.String(),
		Start:      st.Start,
		Difficulty: st.Difficulty,
		Dropped:    st.DroppedObstacles,
	}
	for _, c := range seg.Content() {
		sd.Items = append(sd.Items, ItemDump{Kind: c.Kind.String(), ID: c.TemplateID, Lane: c.Lane, Offset: c.Offset})
	}
	d.Segments = append(d.Segments, sd)

	d.Totals.Obstacles += st.Obstacles
	d.Totals.Collectibles += st.Collectibles
	d.Totals.PowerUps += st.PowerUps
	d.Totals.Decorations += st.Decorations
	d.Totals.Dropped += st.DroppedObstacles
	d.Totals.ByIntent[sd.Intent]++
	d.Totals.ByTemplate[sd.Template]++
}
