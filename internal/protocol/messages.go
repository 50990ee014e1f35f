package protocol

import (
	"crashfall.gg/internal/persistence/snapshot"
	"crashfall.gg/internal/sim/world/kernel/model"
)

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	MapSizes        []model.MapSize `json:"map_sizes"`
	Catalogs        CatalogDigests  `json:"catalogs"`
}

type CatalogDigests struct {
	BiomesDigest     string `json:"biomes_digest"`
	StructuresDigest string `json:"structures_digest"`
	TuningDigest     string `json:"tuning_digest,omitempty"`
}

// GENERATE (client -> server). A nil Seed asks the server to pick one.
type GenerateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	MapSize         string `json:"map_size"`
	Seed            *int64 `json:"seed,omitempty"`
	IncludeTiles    bool   `json:"include_tiles,omitempty"`
}

// WORLD (server -> client)
type WorldMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	RequestID       string      `json:"request_id,omitempty"`
	MapSize         string      `json:"map_size"`
	RequestedSeed   int64       `json:"requested_seed"`
	Seed            int64       `json:"seed"`
	Digest          string      `json:"digest"`
	Stats           model.Stats `json:"stats"`

	// Blueprint carries the full world; tiles are omitted unless requested.
	Blueprint snapshot.WorldV1 `json:"blueprint"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// NewWorldMsg builds a WORLD reply. Without tiles the blueprint keeps
// structures, spawns and the player start.
func NewWorldMsg(requestID string, w *model.WorldMap, includeTiles bool) WorldMsg {
	bp := snapshot.FromWorld(w)
	if !includeTiles {
		bp.Tiles = nil
	}
	return WorldMsg{
		Type:            TypeWorld,
		ProtocolVersion: Version,
		RequestID:       requestID,
		MapSize:         string(w.MapSize.ID),
		RequestedSeed:   w.RequestedSeed,
		Seed:            w.Seed,
		Digest:          bp.Header.Digest,
		Stats:           model.Summarize(w),
		Blueprint:       bp,
	}
}

func NewErrorMsg(requestID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		RequestID:       requestID,
		Code:            code,
		Message:         message,
	}
}
