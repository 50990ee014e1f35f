package gen

import (
	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

// WeightedPick walks the cumulative weights until the running sum reaches r.
// Rounding that leaves the total below r selects the last entry.
func WeightedPick(list []catalogs.TerrainWeight, r float64) model.TerrainID {
	acc := 0.0
	for _, tw := range list {
		acc += tw.Weight
		if acc >= r {
			return tw.ID
		}
	}
	return list[len(list)-1].ID
}

// SelectTerrain picks one sub-type per biome tile. Per tile the draws are:
// weighted pick, optional uniform override when noise is high, rotation coin.
func SelectTerrain(grid model.Grid, biomeGrid map[model.TileKey]model.BiomeID, src *rng.Source, cats *catalogs.Catalogs, noise Noise, t tuning.Tuning) map[model.TileKey]model.TerrainTile {
	out := make(map[model.TileKey]model.TerrainTile, len(biomeGrid))
	for _, k := range orderedKeys(grid, biomeGrid) {
		b := biomeGrid[k]
		def, ok := cats.Biome(b)
		if !ok || len(def.Terrain) == 0 {
			out[k] = model.TerrainTile{Terrain: model.TerrainID(b), Biome: b}
			continue
		}
		id := WeightedPick(def.Terrain, src.Next())
		if noise.At(float64(k.X)+t.Noise.TerrainOffset, float64(k.Y)+t.Noise.TerrainOffset) > t.Terrain.VarietyThreshold {
			id = def.Terrain[src.Intn(len(def.Terrain))].ID
		}
		rot := model.RotationHorizontal
		if !src.Chance(0.5) {
			rot = model.RotationVertical
		}
		out[k] = model.TerrainTile{Terrain: id, Biome: b, Rotation: rot}
	}
	return out
}

// orderedKeys returns the grid's row-major keys followed by any stray biome
// keys outside it, sorted, so every biome entry gets terrain.
func orderedKeys(grid model.Grid, biomeGrid map[model.TileKey]model.BiomeID) []model.TileKey {
	keys := make([]model.TileKey, 0, len(biomeGrid))
	for _, k := range grid.Keys() {
		if _, ok := biomeGrid[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == len(biomeGrid) {
		return keys
	}
	var extra []model.TileKey
	for k := range biomeGrid {
		if !grid.Contains(k) {
			extra = append(extra, k)
		}
	}
	model.SortKeys(extra)
	return append(keys, extra...)
}
