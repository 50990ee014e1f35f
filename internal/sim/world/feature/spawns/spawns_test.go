package spawns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

var medium = model.MapSize{ID: model.MapMedium, Width: 2048, Height: 1536}

func uniform(size model.MapSize, biome model.BiomeID) (model.Grid, map[model.TileKey]model.BiomeID) {
	grid := model.NewGrid(size, 64)
	out := make(map[model.TileKey]model.BiomeID, grid.Len())
	for _, k := range grid.Keys() {
		out[k] = biome
	}
	return grid, out
}

func TestSelectPlayerStartHonoursBiomeAndClearance(t *testing.T) {
	grid, biomes := uniform(medium, catalogs.Grassland)
	structures := []model.StructurePlacement{
		{Position: model.Point{X: 1024, Y: 768}, ArchetypeID: "crash_site"},
		{Position: model.Point{X: 300, Y: 300}, ArchetypeID: "car_wreck"},
	}
	tune := tuning.Defaults().Spawn
	for seed := int64(0); seed < 50; seed++ {
		p, fallback := SelectPlayerStart(PlayerInput{Size: medium, Grid: grid, Biomes: biomes, Structures: structures}, rng.New(seed), tune)
		require.False(t, fallback, "seed %d", seed)
		for _, s := range structures {
			assert.GreaterOrEqual(t, p.Dist(s.Position), tune.Clearance)
		}
		assert.GreaterOrEqual(t, p.X, tune.Margin)
		assert.LessOrEqual(t, p.X, medium.Width-tune.Margin)
		assert.GreaterOrEqual(t, p.Y, tune.Margin)
		assert.LessOrEqual(t, p.Y, medium.Height-tune.Margin)
	}
}

func TestSelectPlayerStartFallsBackToCentre(t *testing.T) {
	grid, biomes := uniform(medium, catalogs.Desert)
	tune := tuning.Defaults().Spawn
	src := rng.New(1)
	p, fallback := SelectPlayerStart(PlayerInput{Size: medium, Grid: grid, Biomes: biomes}, src, tune)
	assert.True(t, fallback)
	assert.Equal(t, model.Point{X: 1024, Y: 768}, p)
	assert.Equal(t, uint64(2*tune.Attempts), src.Draws())
}

func TestZombieAreasKeepDistanceFromPlayer(t *testing.T) {
	grid, biomes := uniform(medium, catalogs.Urban)
	cats := catalogs.Default()
	tune := tuning.Defaults().Zombies
	player := model.Point{X: 1024, Y: 768}
	for seed := int64(0); seed < 30; seed++ {
		areas := ZombieAreas(ZombieInput{Size: medium, Grid: grid, Biomes: biomes, PlayerStart: player}, rng.New(seed), cats, tune)
		assert.LessOrEqual(t, len(areas), tune.Count)
		for _, a := range areas {
			assert.GreaterOrEqual(t, a.Position.Dist(player), tune.MinPlayerDistance)
			assert.GreaterOrEqual(t, a.Radius, tune.RadiusMin)
			assert.LessOrEqual(t, a.Radius, tune.RadiusMax)
			assert.Equal(t, catalogs.Urban, a.Biome)
			assert.Equal(t, 1.4, a.Density)
			assert.True(t, a.Position.X >= 0 && a.Position.X <= medium.Width)
			assert.True(t, a.Position.Y >= 0 && a.Position.Y <= medium.Height)
		}
	}
}

func TestZombieAreasShortfallIsNotFatal(t *testing.T) {
	grid, biomes := uniform(medium, catalogs.Urban)
	tune := tuning.Defaults().Zombies
	tune.MinPlayerDistance = 1e9
	areas := ZombieAreas(ZombieInput{Size: medium, Grid: grid, Biomes: biomes, PlayerStart: model.Point{X: 1, Y: 1}}, rng.New(3), catalogs.Default(), tune)
	assert.Empty(t, areas)
}
