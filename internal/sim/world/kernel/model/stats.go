package model

// Stats is a compact description of a generated world for logs and indexes.
type Stats struct {
	Tiles           int             `json:"tiles"`
	RoadTiles       int             `json:"road_tiles"`
	BiomeTiles      map[BiomeID]int `json:"biome_tiles"`
	Structures      int             `json:"structures"`
	ByArchetype     map[string]int  `json:"by_archetype"`
	ForcedAnchors   int             `json:"forced_anchors"`
	ZombieAreas     int             `json:"zombie_areas"`
	PlayerStart     Point           `json:"player_start"`
	StartIsFallback bool            `json:"start_is_fallback"`
}

func Summarize(w *WorldMap) Stats {
	st := Stats{
		Tiles:           len(w.Terrain),
		BiomeTiles:      map[BiomeID]int{},
		Structures:      len(w.Structures),
		ByArchetype:     map[string]int{},
		ZombieAreas:     len(w.ZombieSpawnAreas),
		PlayerStart:     w.PlayerStart,
		StartIsFallback: w.PlayerStartFallback,
	}
	for _, b := range w.Biomes {
		st.BiomeTiles[b]++
	}
	for _, t := range w.Terrain {
		if t.Terrain == TerrainRoad {
			st.RoadTiles++
		}
	}
	for _, s := range w.Structures {
		st.ByArchetype[s.ArchetypeID]++
		if s.Forced {
			st.ForcedAnchors++
		}
	}
	return st
}
