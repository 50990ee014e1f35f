// Package world turns a map size and a seed into a complete WorldMap.
package world

import (
	"fmt"
	"io"
	"log"
	"time"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/feature/roads"
	"crashfall.gg/internal/sim/world/feature/spawns"
	"crashfall.gg/internal/sim/world/feature/structures"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/mathx"
	"crashfall.gg/internal/sim/world/logic/rng"
	"crashfall.gg/internal/sim/world/terrain/gen"
)

// Generator holds immutable configuration only; concurrent Generate calls are safe.
type Generator struct {
	cats   *catalogs.Catalogs
	tune   tuning.Tuning
	sizes  []model.MapSize
	logger *log.Logger
	err    error
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		cats:  catalogs.Default(),
		tune:  tuning.Defaults(),
		sizes: catalogs.MapSizes(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard, "", 0)
	}
	if err := g.tune.Validate(); err != nil {
		g.err = fmt.Errorf("%w: %v", ErrInvalidTuning, err)
		g.logger.Printf("generator disabled: %v", g.err)
	}
	return g
}

// Err reports a configuration error found at construction. A generator with
// a non-nil Err fails every Generate call with it.
func (g *Generator) Err() error { return g.err }

func (g *Generator) Catalogs() *catalogs.Catalogs { return g.cats }

func (g *Generator) Tuning() tuning.Tuning { return g.tune }

// MapSizes returns a copy of the size table.
func (g *Generator) MapSizes() []model.MapSize {
	return append([]model.MapSize(nil), g.sizes...)
}

// MapSize resolves a size id against the generator's table.
func (g *Generator) MapSize(id model.MapSizeID) (model.MapSize, error) {
	return catalogs.FindMapSize(g.sizes, id)
}

// GenerateRandom draws a seed once and generates with it.
func (g *Generator) GenerateRandom(size model.MapSizeID) (*model.WorldMap, error) {
	return g.Generate(size, rng.NewSeed())
}

// Generate is a pure function of (size, seed) and the generator configuration.
// A world missing an anchor is regenerated from derived seeds; if all attempts
// fail the result is an *IncompleteError.
func (g *Generator) Generate(sizeID model.MapSizeID, seed int64) (*model.WorldMap, error) {
	if g.err != nil {
		return nil, g.err
	}
	size, err := g.MapSize(sizeID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var missing []string
	attempts := g.tune.RegenerateAttempts + 1
	for attempt := 0; attempt < attempts; attempt++ {
		s := mathx.DeriveSeed(seed, attempt)
		w, miss := g.build(size, s)
		if len(miss) > 0 {
			missing = miss
			g.logger.Printf("size=%s seed=%d attempt=%d: anchors missing %v", size.ID, s, attempt, miss)
			continue
		}
		w.RequestedSeed = seed
		st := model.Summarize(w)
		g.logger.Printf("size=%s seed=%d structures=%d zombie_areas=%d roads=%d fallback_start=%v took=%s",
			size.ID, s, st.Structures, st.ZombieAreas, st.RoadTiles, st.StartIsFallback, time.Since(start).Round(time.Microsecond))
		return w, nil
	}
	return nil, &IncompleteError{Seed: seed, Attempts: attempts, Missing: missing}
}

// build runs every stage against one random stream. Stage order fixes the draw
// order and must not change.
func (g *Generator) build(size model.MapSize, seed int64) (*model.WorldMap, []string) {
	src := rng.New(seed)
	noise := gen.NewField(seed, g.tune.Noise.Scale)
	grid := model.NewGrid(size, g.tune.TileSize)

	biomes := gen.AssignBiomes(size, grid, src, g.cats.BiomeIDs(), noise, g.tune.Biomes)
	terrain := gen.SelectTerrain(grid, biomes, src, g.cats, noise, g.tune)

	placed := structures.Place(structures.Input{Size: size, Grid: grid, Biomes: biomes}, src, g.cats.Structures.List, g.tune.Structures)
	if !placed.Complete() {
		return nil, placed.MissingAnchors
	}

	start, fallback := spawns.SelectPlayerStart(spawns.PlayerInput{
		Size:       size,
		Grid:       grid,
		Biomes:     biomes,
		Structures: placed.Placements,
	}, src, g.tune.Spawn)
	if fallback {
		g.logger.Printf("size=%s seed=%d: no player start candidate, using map centre", size.ID, seed)
	}

	zombies := spawns.ZombieAreas(spawns.ZombieInput{
		Size:        size,
		Grid:        grid,
		Biomes:      biomes,
		PlayerStart: start,
	}, src, g.cats, g.tune.Zombies)
	if len(zombies) < g.tune.Zombies.Count {
		g.logger.Printf("size=%s seed=%d: %d of %d zombie areas placed", size.ID, seed, len(zombies), g.tune.Zombies.Count)
	}

	roads.Carve(grid, terrain, start, g.anchorPositions(placed.Placements))

	return &model.WorldMap{
		MapSize:             size,
		Seed:                seed,
		RequestedSeed:       seed,
		Grid:                grid,
		Biomes:              biomes,
		Terrain:             terrain,
		Structures:          placed.Placements,
		PlayerStart:         start,
		PlayerStartFallback: fallback,
		ZombieSpawnAreas:    zombies,
	}, nil
}

func (g *Generator) anchorPositions(placements []model.StructurePlacement) []model.Point {
	anchors := make(map[string]struct{})
	for _, a := range g.cats.Anchors() {
		anchors[a.ID] = struct{}{}
	}
	var out []model.Point
	for _, p := range placements {
		if _, ok := anchors[p.ArchetypeID]; ok {
			out = append(out, p.Position)
		}
	}
	return out
}
