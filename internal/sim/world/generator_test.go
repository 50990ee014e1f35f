package world

import (
	"bytes"
	"errors"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/feature/roads"
	"crashfall.gg/internal/sim/world/kernel/model"
)

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator()
	a, err := g.Generate(model.MapMedium, 42)
	require.NoError(t, err)
	b, err := g.Generate(model.MapMedium, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a, b)

	c, err := g.Generate(model.MapMedium, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestGenerateSmallHasAnchor(t *testing.T) {
	w, err := NewGenerator().Generate(model.MapSmall, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, w.StructuresOf(catalogs.CrashSiteID))
	assert.Equal(t, int64(1), w.RequestedSeed)
}

func TestGenerateCoversEveryTile(t *testing.T) {
	g := NewGenerator()
	for _, size := range catalogs.MapSizes() {
		w, err := g.Generate(size.ID, 7)
		require.NoError(t, err, size.ID)
		require.Equal(t, w.Grid.Len(), len(w.Biomes))
		require.Equal(t, len(w.Biomes), len(w.Terrain))
		for k, b := range w.Biomes {
			tile, ok := w.Terrain[k]
			require.True(t, ok, "tile %v has no terrain", k)
			assert.Equal(t, b, tile.Biome)
		}
	}
}

func TestGenerateInvariantsAcrossSeeds(t *testing.T) {
	g := NewGenerator()
	cats := g.Catalogs()
	tune := g.Tuning()
	preferred := map[model.BiomeID]bool{}
	for _, b := range tune.Spawn.PreferredBiomes {
		preferred[b] = true
	}

	for seed := int64(0); seed < 20; seed++ {
		w, err := g.Generate(model.MapMedium, seed)
		require.NoError(t, err, "seed %d", seed)

		anchors := 0
		byType := map[string][]model.StructurePlacement{}
		for _, s := range w.Structures {
			require.True(t, w.Contains(s.Position), "structure out of bounds")
			byType[s.ArchetypeID] = append(byType[s.ArchetypeID], s)
			if a, _ := cats.Archetype(s.ArchetypeID); a.IsAnchor {
				anchors++
			}
		}
		assert.Positive(t, anchors, "seed %d", seed)

		for id, list := range byType {
			a, ok := cats.Archetype(id)
			require.True(t, ok)
			for i := range list {
				for j := i + 1; j < len(list); j++ {
					if list[i].Forced || list[j].Forced {
						continue
					}
					assert.GreaterOrEqual(t, list[i].Position.Dist(list[j].Position), a.MinDistance)
				}
			}
		}

		require.True(t, w.Contains(w.PlayerStart))
		if w.PlayerStartFallback {
			assert.Equal(t, w.Center(), w.PlayerStart)
		} else {
			b, _ := w.BiomeAt(w.PlayerStart)
			assert.True(t, preferred[b], "start biome %s", b)
			for _, s := range w.Structures {
				assert.GreaterOrEqual(t, s.Position.Dist(w.PlayerStart), tune.Spawn.Clearance)
			}
		}

		assert.LessOrEqual(t, len(w.ZombieSpawnAreas), tune.Zombies.Count)
		for _, z := range w.ZombieSpawnAreas {
			assert.True(t, w.Contains(z.Position))
			assert.GreaterOrEqual(t, z.Position.Dist(w.PlayerStart), tune.Zombies.MinPlayerDistance)
		}
	}
}

func TestGenerateRoadsConnectStartToAnchors(t *testing.T) {
	g := NewGenerator()
	w, err := g.Generate(model.MapLarge, 11)
	require.NoError(t, err)

	from := w.PlayerStart
	for _, s := range w.Structures {
		if a, _ := g.Catalogs().Archetype(s.ArchetypeID); !a.IsAnchor {
			continue
		}
		it := roads.NewLineIterator(w.Grid.KeyAt(from), w.Grid.KeyAt(s.Position))
		for it.Next() {
			tile, ok := w.Terrain[it.Key()]
			if !ok {
				continue
			}
			assert.Equal(t, model.TerrainRoad, tile.Terrain, "tile %v", it.Key())
		}
		from = s.Position
	}
	assert.Positive(t, model.Summarize(w).RoadTiles)
}

func TestGenerateUnknownMapSize(t *testing.T) {
	w, err := NewGenerator().Generate("gigantic", 1)
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrUnknownMapSize)
}

func TestGenerateCustomMapSizes(t *testing.T) {
	g := NewGenerator(WithMapSizes([]model.MapSize{{ID: "arena", Width: 640, Height: 640}}))
	w, err := g.Generate("arena", 3)
	require.NoError(t, err)
	assert.Equal(t, 100, w.Grid.Len())

	_, err = g.Generate(model.MapSmall, 3)
	assert.ErrorIs(t, err, ErrUnknownMapSize)
}

func TestGenerateIncompleteAfterRetry(t *testing.T) {
	tune := tuning.Defaults()
	tune.Structures.BorderMargin = 4000
	var buf bytes.Buffer
	g := NewGenerator(WithTuning(tune), WithLogger(log.New(&buf, "", 0)))

	w, err := g.Generate(model.MapSmall, 9)
	assert.Nil(t, w)
	require.ErrorIs(t, err, ErrIncompleteGeneration)

	var inc *IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, int64(9), inc.Seed)
	assert.Equal(t, 2, inc.Attempts)
	assert.Equal(t, []string{catalogs.CrashSiteID}, inc.Missing)
	assert.Contains(t, buf.String(), "anchors missing")
}

func TestGenerateForcesRareAnchor(t *testing.T) {
	structs := catalogs.DefaultStructures()
	for i := range structs {
		if structs[i].IsAnchor {
			structs[i].PlacementRarity = 1e-12
		}
	}
	cats, err := catalogs.New(catalogs.DefaultBiomes(), structs)
	require.NoError(t, err)

	w, err := NewGenerator(WithCatalogs(cats)).Generate(model.MapMedium, 5)
	require.NoError(t, err)
	anchors := w.StructuresOf(catalogs.CrashSiteID)
	require.Len(t, anchors, 1)
	assert.True(t, anchors[0].Forced)
	assert.Equal(t, int64(5), w.Seed)
}

func TestGenerateConcurrentCallsAgree(t *testing.T) {
	g := NewGenerator()
	want, err := g.Generate(model.MapSmall, 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	digests := make([]string, 8)
	for i := range digests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := g.Generate(model.MapSmall, 100)
			if err == nil {
				digests[i] = w.Digest()
			}
		}(i)
	}
	wg.Wait()
	for _, d := range digests {
		assert.Equal(t, want.Digest(), d)
	}
}

func TestGenerateRandomUsesFreshSeed(t *testing.T) {
	w, err := NewGenerator().GenerateRandom(model.MapSmall)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, w.RequestedSeed, int64(0))
	assert.NotEmpty(t, w.Terrain)
}

func TestGenerateRejectsInvalidTuning(t *testing.T) {
	tune := tuning.Defaults()
	tune.Biomes.SeedArea = 0
	var buf bytes.Buffer
	g := NewGenerator(WithTuning(tune), WithLogger(log.New(&buf, "", 0)))
	require.ErrorIs(t, g.Err(), ErrInvalidTuning)
	assert.Contains(t, buf.String(), "seed_area")

	w, err := g.Generate(model.MapSmall, 1)
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrInvalidTuning)

	assert.NoError(t, NewGenerator().Err())
}

func TestAnchorPositionsFollowCatalogAnchors(t *testing.T) {
	g := NewGenerator()
	placements := []model.StructurePlacement{
		{Position: model.Point{X: 64, Y: 64}, ArchetypeID: "car_wreck"},
		{Position: model.Point{X: 640, Y: 384}, ArchetypeID: catalogs.CrashSiteID},
		{Position: model.Point{X: 128, Y: 64}, ArchetypeID: "unknown"},
	}
	assert.Equal(t, []model.Point{{X: 640, Y: 384}}, g.anchorPositions(placements))
}
