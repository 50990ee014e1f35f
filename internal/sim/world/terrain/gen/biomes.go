package gen

import (
	"math"

	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

// RegionSeed is one Voronoi site.
type RegionSeed struct {
	X, Y  float64
	Biome model.BiomeID
}

// SeedCount is max(MinSeeds, floor(w*h/SeedArea)). A non-positive SeedArea
// yields MinSeeds.
func SeedCount(size model.MapSize, t tuning.Biomes) int {
	if t.SeedArea <= 0 {
		return max(t.MinSeeds, 1)
	}
	n := int(math.Floor(size.Width * size.Height / t.SeedArea))
	if n < t.MinSeeds {
		n = t.MinSeeds
	}
	return n
}

// PlaceRegionSeeds draws x, y and biome for each site, in that order.
func PlaceRegionSeeds(size model.MapSize, src *rng.Source, biomes []model.BiomeID, t tuning.Biomes) []RegionSeed {
	n := SeedCount(size, t)
	out := make([]RegionSeed, 0, n)
	for i := 0; i < n; i++ {
		x := src.Next() * size.Width
		y := src.Next() * size.Height
		b := biomes[src.Intn(len(biomes))]
		out = append(out, RegionSeed{X: x, Y: y, Biome: b})
	}
	return out
}

// Nearest returns the index of the closest site; ties keep the lower index.
func Nearest(seeds []RegionSeed, x, y float64) int {
	best := -1
	bestD := math.Inf(1)
	for i, s := range seeds {
		dx := s.X - x
		dy := s.Y - y
		d := dx*dx + dy*dy
		if d < bestD {
			best = i
			bestD = d
		}
	}
	return best
}

// AssignBiomes partitions the grid by nearest region seed and blends borders
// with noise-gated random reassignment. biomes must not be empty.
func AssignBiomes(size model.MapSize, grid model.Grid, src *rng.Source, biomes []model.BiomeID, noise Noise, t tuning.Biomes) map[model.TileKey]model.BiomeID {
	seeds := PlaceRegionSeeds(size, src, biomes, t)
	out := make(map[model.TileKey]model.BiomeID, grid.Len())
	for _, k := range grid.Keys() {
		c := grid.Center(k)
		b := seeds[Nearest(seeds, c.X, c.Y)].Biome
		if noise.At(float64(k.X), float64(k.Y)) > t.BlendThreshold && src.Chance(t.BlendChance) {
			b = biomes[src.Intn(len(biomes))]
		}
		out[k] = b
	}
	return out
}
