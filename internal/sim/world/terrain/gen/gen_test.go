package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

var small = model.MapSize{ID: model.MapSmall, Width: 1024, Height: 768}

func TestSeedCountFloor(t *testing.T) {
	tb := tuning.Defaults().Biomes
	assert.Equal(t, 6, SeedCount(small, tb))
	assert.Equal(t, 12, SeedCount(model.MapSize{Width: 2048, Height: 1536}, tb))
	assert.Equal(t, 48, SeedCount(model.MapSize{Width: 4096, Height: 3072}, tb))
	assert.Equal(t, 6, SeedCount(model.MapSize{Width: 1, Height: 1}, tb))

	tb.SeedArea = 0
	assert.Equal(t, 6, SeedCount(small, tb))
	tb.SeedArea = -1
	tb.MinSeeds = 0
	assert.Equal(t, 1, SeedCount(small, tb))
}

func TestNearestPrefersLowerIndexOnTie(t *testing.T) {
	seeds := []RegionSeed{{X: 0, Y: 0, Biome: "a"}, {X: 10, Y: 0, Biome: "b"}}
	assert.Equal(t, 0, Nearest(seeds, 5, 0))
	assert.Equal(t, 1, Nearest(seeds, 6, 0))
}

func TestAssignBiomesIsVoronoiWithoutBlend(t *testing.T) {
	cats := catalogs.Default()
	tb := tuning.Defaults().Biomes
	grid := model.NewGrid(small, 64)

	// Noise never crosses the threshold: every tile takes its nearest site.
	src := rng.New(3)
	got := AssignBiomes(small, grid, src, cats.BiomeIDs(), ConstNoise(0), tb)
	require.Len(t, got, grid.Len())

	seeds := PlaceRegionSeeds(small, rng.New(3), cats.BiomeIDs(), tb)
	for _, k := range grid.Keys() {
		c := grid.Center(k)
		assert.Equal(t, seeds[Nearest(seeds, c.X, c.Y)].Biome, got[k])
	}
	assert.Equal(t, uint64(3*len(seeds)), src.Draws(), "no blend draws below threshold")
}

func TestAssignBiomesBlendConsumesDraws(t *testing.T) {
	cats := catalogs.Default()
	tb := tuning.Defaults().Biomes
	tb.BlendChance = 1
	grid := model.NewGrid(small, 64)
	src := rng.New(3)
	got := AssignBiomes(small, grid, src, cats.BiomeIDs(), ConstNoise(0.99), tb)
	require.Len(t, got, grid.Len())
	seeds := SeedCount(small, tb)
	assert.Equal(t, uint64(3*seeds+2*grid.Len()), src.Draws())
}

func TestAssignBiomesDeterministic(t *testing.T) {
	cats := catalogs.Default()
	tb := tuning.Defaults().Biomes
	grid := model.NewGrid(small, 64)
	a := AssignBiomes(small, grid, rng.New(11), cats.BiomeIDs(), NewField(11, 0.18), tb)
	b := AssignBiomes(small, grid, rng.New(11), cats.BiomeIDs(), NewField(11, 0.18), tb)
	assert.Equal(t, a, b)
}

func TestWeightedPick(t *testing.T) {
	list := []catalogs.TerrainWeight{{ID: "a", Weight: 0.5}, {ID: "b", Weight: 0.3}, {ID: "c", Weight: 0.2}}
	assert.Equal(t, model.TerrainID("a"), WeightedPick(list, 0.1))
	assert.Equal(t, model.TerrainID("a"), WeightedPick(list, 0.5))
	assert.Equal(t, model.TerrainID("b"), WeightedPick(list, 0.51))
	assert.Equal(t, model.TerrainID("c"), WeightedPick(list, 0.95))

	short := []catalogs.TerrainWeight{{ID: "x", Weight: 0.4}, {ID: "y", Weight: 0.4}}
	assert.Equal(t, model.TerrainID("y"), WeightedPick(short, 0.99))
}

func TestSelectTerrainCoversEveryBiomeTile(t *testing.T) {
	cats := catalogs.Default()
	tune := tuning.Defaults()
	grid := model.NewGrid(small, 64)
	src := rng.New(5)
	noise := NewField(5, tune.Noise.Scale)
	biomes := AssignBiomes(small, grid, src, cats.BiomeIDs(), noise, tune.Biomes)
	terrain := SelectTerrain(grid, biomes, src, cats, noise, tune)

	require.Len(t, terrain, len(biomes))
	for k, b := range biomes {
		tile, ok := terrain[k]
		require.True(t, ok, "missing terrain for %v", k)
		assert.Equal(t, b, tile.Biome)
		def, _ := cats.Biome(b)
		assert.Contains(t, def.TerrainIDs(), tile.Terrain)
		assert.True(t, tile.Rotation == model.RotationHorizontal || tile.Rotation == model.RotationVertical)
	}
}

func TestSelectTerrainDrawOrder(t *testing.T) {
	cats := catalogs.Default()
	tune := tuning.Defaults()
	grid := model.Grid{Cols: 4, Rows: 1, TileSize: 64}
	biomes := map[model.TileKey]model.BiomeID{}
	for _, k := range grid.Keys() {
		biomes[k] = catalogs.Desert
	}

	quiet := rng.New(1)
	SelectTerrain(grid, biomes, quiet, cats, ConstNoise(0), tune)
	assert.Equal(t, uint64(2*4), quiet.Draws(), "pick + rotation per tile")

	loud := rng.New(1)
	SelectTerrain(grid, biomes, loud, cats, ConstNoise(0.99), tune)
	assert.Equal(t, uint64(3*4), loud.Draws(), "pick + override + rotation per tile")
}

func TestFieldRange(t *testing.T) {
	f := NewField(99, 0.18)
	for x := 0; x < 50; x++ {
		for y := 0; y < 50; y++ {
			v := f.At(float64(x), float64(y))
			require.GreaterOrEqual(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	}
	assert.Equal(t, f.At(3, 4), NewField(99, 0.18).At(3, 4))
}
