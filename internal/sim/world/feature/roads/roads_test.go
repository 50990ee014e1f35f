package roads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/world/kernel/model"
)

func collect(from, to model.TileKey) []model.TileKey {
	var out []model.TileKey
	it := NewLineIterator(from, to)
	for it.Next() {
		out = append(out, it.Key())
	}
	return out
}

func TestLineIteratorEndpoints(t *testing.T) {
	cases := []struct {
		from, to model.TileKey
		n        int
	}{
		{model.TileKey{X: 0, Y: 0}, model.TileKey{X: 5, Y: 0}, 6},
		{model.TileKey{X: 0, Y: 0}, model.TileKey{X: 0, Y: 3}, 4},
		{model.TileKey{X: 3, Y: 3}, model.TileKey{X: 0, Y: 0}, 4},
		{model.TileKey{X: 2, Y: 9}, model.TileKey{X: 7, Y: 1}, 9},
		{model.TileKey{X: 4, Y: 4}, model.TileKey{X: 4, Y: 4}, 1},
	}
	for _, tc := range cases {
		pts := collect(tc.from, tc.to)
		require.Len(t, pts, tc.n, "%v -> %v", tc.from, tc.to)
		assert.Equal(t, tc.from, pts[0])
		assert.Equal(t, tc.to, pts[len(pts)-1])
	}
}

func TestLineIteratorIsEightConnected(t *testing.T) {
	pts := collect(model.TileKey{X: 1, Y: 20}, model.TileKey{X: 30, Y: 2})
	for i := 1; i < len(pts); i++ {
		dx := abs32(pts[i].X - pts[i-1].X)
		dy := abs32(pts[i].Y - pts[i-1].Y)
		assert.LessOrEqual(t, dx, int32(1))
		assert.LessOrEqual(t, dy, int32(1))
		assert.NotEqual(t, pts[i], pts[i-1])
	}
}

func fill(grid model.Grid) map[model.TileKey]model.TerrainTile {
	out := make(map[model.TileKey]model.TerrainTile, grid.Len())
	for _, k := range grid.Keys() {
		out[k] = model.TerrainTile{Terrain: "grass", Biome: "grassland"}
	}
	return out
}

func TestCarveLinksPlayerToAnchors(t *testing.T) {
	grid := model.NewGrid(model.MapSize{Width: 2048, Height: 1536}, 64)
	terrain := fill(grid)
	player := model.Point{X: 100, Y: 100}
	anchor := model.Point{X: 1500, Y: 300}

	n := Carve(grid, terrain, player, []model.Point{anchor})
	assert.Positive(t, n)

	pts := collect(grid.KeyAt(player), grid.KeyAt(anchor))
	for _, k := range pts {
		tile := terrain[k]
		assert.Equal(t, model.TerrainRoad, tile.Terrain)
		assert.Equal(t, model.BiomeID("grassland"), tile.Biome)
		assert.Equal(t, model.RotationHorizontal, tile.Rotation)
	}
	assert.Len(t, terrain, grid.Len())
}

func TestCarveRotationFollowsDominantAxis(t *testing.T) {
	grid := model.NewGrid(model.MapSize{Width: 1024, Height: 1024}, 64)
	terrain := fill(grid)
	Carve(grid, terrain, model.Point{X: 500, Y: 10}, []model.Point{{X: 520, Y: 900}})
	tile := terrain[grid.KeyAt(model.Point{X: 500, Y: 10})]
	assert.Equal(t, model.TerrainRoad, tile.Terrain)
	assert.Equal(t, model.RotationVertical, tile.Rotation)
}

func TestCarveWithoutAnchorsIsNoop(t *testing.T) {
	grid := model.NewGrid(model.MapSize{Width: 512, Height: 512}, 64)
	terrain := fill(grid)
	assert.Zero(t, Carve(grid, terrain, model.Point{X: 1, Y: 1}, nil))
	for _, tile := range terrain {
		assert.NotEqual(t, model.TerrainRoad, tile.Terrain)
	}
}

func TestCarveSkipsTilesOutsideTerrain(t *testing.T) {
	grid := model.NewGrid(model.MapSize{Width: 512, Height: 512}, 64)
	terrain := map[model.TileKey]model.TerrainTile{
		{X: 0, Y: 0}: {Terrain: "sand", Biome: "desert"},
	}
	n := Carve(grid, terrain, model.Point{X: 10, Y: 10}, []model.Point{{X: 400, Y: 10}})
	assert.Equal(t, 1, n)
	assert.Len(t, terrain, 1)
	assert.Equal(t, model.TerrainRoad, terrain[model.TileKey{X: 0, Y: 0}].Terrain)
}
