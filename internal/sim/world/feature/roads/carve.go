// Package roads links the player start to every anchor with road tiles.
package roads

import (
	"math"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// Carve walks player -> anchor1 -> anchor2 ... and rewrites every visited tile
// present in terrain as a road that keeps the tile's biome. A segment whose
// vertical extent exceeds its horizontal one lays vertical roads. It returns
// the number of tiles rewritten (a tile crossed twice counts twice).
func Carve(grid model.Grid, terrain map[model.TileKey]model.TerrainTile, player model.Point, anchors []model.Point) int {
	if len(anchors) == 0 {
		return 0
	}
	carved := 0
	from := player
	for _, to := range anchors {
		carved += carveSegment(grid, terrain, from, to)
		from = to
	}
	return carved
}

func carveSegment(grid model.Grid, terrain map[model.TileKey]model.TerrainTile, from, to model.Point) int {
	rot := model.RotationHorizontal
	if math.Abs(to.Y-from.Y) > math.Abs(to.X-from.X) {
		rot = model.RotationVertical
	}
	n := 0
	it := NewLineIterator(grid.KeyAt(from), grid.KeyAt(to))
	for it.Next() {
		k := it.Key()
		tile, ok := terrain[k]
		if !ok {
			continue
		}
		terrain[k] = model.TerrainTile{Terrain: model.TerrainRoad, Biome: tile.Biome, Rotation: rot}
		n++
	}
	return n
}
