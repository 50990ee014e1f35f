package snapshot

import (
	"fmt"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// WorldV1 mirrors model.WorldMap field for field with tiles flattened in
// row-major order.
type WorldV1 struct {
	Header Header `json:"header"`

	MapSize       model.MapSize `json:"map_size"`
	Seed          int64         `json:"seed"`
	RequestedSeed int64         `json:"requested_seed"`
	TileSize      float64       `json:"tile_size"`
	Cols          int32         `json:"cols"`
	Rows          int32         `json:"rows"`

	Tiles               []TileV1      `json:"tiles"`
	Structures          []StructureV1 `json:"structures"`
	PlayerStart         model.Point   `json:"player_start"`
	PlayerStartFallback bool          `json:"player_start_fallback,omitempty"`
	ZombieSpawnAreas    []SpawnAreaV1 `json:"zombie_spawn_areas"`
}

type TileV1 struct {
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
	Biome    string `json:"biome"`
	Terrain  string `json:"terrain"`
	Rotation uint8  `json:"rotation,omitempty"`
}

type StructureV1 struct {
	ArchetypeID string      `json:"archetype_id"`
	Position    model.Point `json:"position"`
	Biome       string      `json:"biome"`
	Forced      bool        `json:"forced,omitempty"`
}

type SpawnAreaV1 struct {
	Position model.Point `json:"position"`
	Radius   float64     `json:"radius"`
	Biome    string      `json:"biome,omitempty"`
	Density  float64     `json:"density,omitempty"`
}

func FromWorld(w *model.WorldMap) WorldV1 {
	keys := make([]model.TileKey, 0, len(w.Terrain))
	for k := range w.Terrain {
		keys = append(keys, k)
	}
	model.SortKeys(keys)

	out := WorldV1{
		Header: Header{
			Version: Version,
			MapSize: string(w.MapSize.ID),
			Seed:    w.Seed,
			Digest:  w.Digest(),
		},
		MapSize:             w.MapSize,
		Seed:                w.Seed,
		RequestedSeed:       w.RequestedSeed,
		TileSize:            w.Grid.TileSize,
		Cols:                w.Grid.Cols,
		Rows:                w.Grid.Rows,
		Tiles:               make([]TileV1, 0, len(keys)),
		Structures:          make([]StructureV1, 0, len(w.Structures)),
		PlayerStart:         w.PlayerStart,
		PlayerStartFallback: w.PlayerStartFallback,
		ZombieSpawnAreas:    make([]SpawnAreaV1, 0, len(w.ZombieSpawnAreas)),
	}
	for _, k := range keys {
		t := w.Terrain[k]
		out.Tiles = append(out.Tiles, TileV1{
			X:        k.X,
			Y:        k.Y,
			Biome:    string(w.Biomes[k]),
			Terrain:  string(t.Terrain),
			Rotation: uint8(t.Rotation),
		})
	}
	for _, s := range w.Structures {
		out.Structures = append(out.Structures, StructureV1{
			ArchetypeID: s.ArchetypeID,
			Position:    s.Position,
			Biome:       string(s.Biome),
			Forced:      s.Forced,
		})
	}
	for _, z := range w.ZombieSpawnAreas {
		out.ZombieSpawnAreas = append(out.ZombieSpawnAreas, SpawnAreaV1{
			Position: z.Position,
			Radius:   z.Radius,
			Biome:    string(z.Biome),
			Density:  z.Density,
		})
	}
	return out
}

// ToWorld rebuilds the map and checks the result against the header digest.
func ToWorld(s WorldV1) (*model.WorldMap, error) {
	w := &model.WorldMap{
		MapSize:             s.MapSize,
		Seed:                s.Seed,
		RequestedSeed:       s.RequestedSeed,
		Grid:                model.Grid{Cols: s.Cols, Rows: s.Rows, TileSize: s.TileSize},
		Biomes:              make(map[model.TileKey]model.BiomeID, len(s.Tiles)),
		Terrain:             make(map[model.TileKey]model.TerrainTile, len(s.Tiles)),
		Structures:          make([]model.StructurePlacement, 0, len(s.Structures)),
		PlayerStart:         s.PlayerStart,
		PlayerStartFallback: s.PlayerStartFallback,
		ZombieSpawnAreas:    make([]model.SpawnArea, 0, len(s.ZombieSpawnAreas)),
	}
	for _, t := range s.Tiles {
		k := model.TileKey{X: t.X, Y: t.Y}
		if _, dup := w.Terrain[k]; dup {
			return nil, fmt.Errorf("snapshot: duplicate tile %d,%d", t.X, t.Y)
		}
		w.Biomes[k] = model.BiomeID(t.Biome)
		w.Terrain[k] = model.TerrainTile{
			Terrain:  model.TerrainID(t.Terrain),
			Biome:    model.BiomeID(t.Biome),
			Rotation: model.Rotation(t.Rotation),
		}
	}
	for _, st := range s.Structures {
		w.Structures = append(w.Structures, model.StructurePlacement{
			Position:    st.Position,
			ArchetypeID: st.ArchetypeID,
			Biome:       model.BiomeID(st.Biome),
			Forced:      st.Forced,
		})
	}
	for _, z := range s.ZombieSpawnAreas {
		w.ZombieSpawnAreas = append(w.ZombieSpawnAreas, model.SpawnArea{
			Position: z.Position,
			Radius:   z.Radius,
			Biome:    model.BiomeID(z.Biome),
			Density:  z.Density,
		})
	}
	if s.Header.Digest != "" && w.Digest() != s.Header.Digest {
		return nil, fmt.Errorf("snapshot: digest mismatch")
	}
	return w, nil
}
