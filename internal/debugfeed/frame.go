package debugfeed

import (
	"encoding/json"
	"fmt"
)

// Frame types pushed to overlay clients.
const (
	FrameHello             = "hello"
	FrameSegmentGenerated  = "segment_generated"
	FrameSegmentRecycled   = "segment_recycled"
	FrameDifficultyChanged = "difficulty_changed"
	FrameStats             = "stats"
)

// Frame is the JSON envelope of every message on the feed.
type Frame struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

// Hello is the first frame a client receives.
type Hello struct {
	ClientID string `json:"client_id"`
	RunID    string `json:"run_id"`
	Catalog  string `json:"catalog"`
}

// Segment is the overlay view of one segment.
type Segment struct {
	ID               int     `json:"id"`
	Index            int     `json:"index"`
	Template         string  `json:"template"`
	Type             string  `json:"type"`
	Intent           string  `json:"intent"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Difficulty       float64 `json:"difficulty"`
	Obstacles        int     `json:"obstacles"`
	Collectibles     int     `json:"collectibles"`
	PowerUps         int     `json:"power_ups"`
	Decorations      int     `json:"decorations"`
	OccupiedLanes    int     `json:"occupied_lanes"`
	DroppedObstacles int     `json:"dropped_obstacles"`
	Summary          string  `json:"summary,omitempty"`
	PlayerX          float64 `json:"player_x,omitempty"`
	Pointer          float64 `json:"pointer,omitempty"`
}

type Difficulty struct {
	Old       float64 `json:"old"`
	New       float64 `json:"new"`
	ElapsedMS int64   `json:"elapsed_ms"`
}

// Stats mirrors the generator-wide snapshot.
type Stats struct {
	State              string  `json:"state"`
	Active             int     `json:"active"`
	Pooled             int     `json:"pooled"`
	Constructed        int     `json:"constructed"`
	TotalGenerated     int     `json:"total_generated"`
	Difficulty         float64 `json:"difficulty"`
	Pointer            float64 `json:"pointer"`
	GenerationDistance float64 `json:"generation_distance"`
	PlayerX            float64 `json:"player_x"`
	Speed              float64 `json:"speed"`
}

func encode(typ string, seq uint64, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return json.Marshal(Frame{Type: typ, Seq: seq, Payload: raw})
}
