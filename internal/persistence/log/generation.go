package log

import (
	"path/filepath"
	"time"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// GenerationEntry is one generated world in the generation log.
type GenerationEntry struct {
	Time          string         `json:"time"`
	MapSize       string         `json:"map_size"`
	RequestedSeed int64          `json:"requested_seed"`
	Seed          int64          `json:"seed"`
	Digest        string         `json:"digest"`
	Structures    map[string]int `json:"structures"`
	ForcedAnchors int            `json:"forced_anchors,omitempty"`
	ZombieAreas   int            `json:"zombie_areas"`
	RoadTiles     int            `json:"road_tiles"`
	StartFallback bool           `json:"start_fallback,omitempty"`
	DurationMS    int64          `json:"duration_ms"`
}

func NewGenerationEntry(w *model.WorldMap, took time.Duration) GenerationEntry {
	st := model.Summarize(w)
	return GenerationEntry{
		Time:          time.Now().UTC().Format(time.RFC3339Nano),
		MapSize:       string(w.MapSize.ID),
		RequestedSeed: w.RequestedSeed,
		Seed:          w.Seed,
		Digest:        w.Digest(),
		Structures:    st.ByArchetype,
		ForcedAnchors: st.ForcedAnchors,
		ZombieAreas:   st.ZombieAreas,
		RoadTiles:     st.RoadTiles,
		StartFallback: st.StartIsFallback,
		DurationMS:    took.Milliseconds(),
	}
}

// GenerationLogger writes one JSONL entry per generated world (compressed).
type GenerationLogger struct{ w *JSONLZstdWriter }

func NewGenerationLogger(dataDir string) *GenerationLogger {
	return &GenerationLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "generations"), "generations")}
}

func (l *GenerationLogger) WriteGeneration(v GenerationEntry) error { return l.w.Write(v) }
func (l *GenerationLogger) Close() error                            { return l.w.Close() }
