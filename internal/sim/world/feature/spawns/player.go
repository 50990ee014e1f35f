// Package spawns picks the player start and the zombie spawn zones.
package spawns

import (
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

type PlayerInput struct {
	Size       model.MapSize
	Grid       model.Grid
	Biomes     map[model.TileKey]model.BiomeID
	Structures []model.StructurePlacement
}

// SelectPlayerStart samples up to t.Attempts positions and returns the first one
// on a preferred biome with clearance from every structure. When none qualifies
// it returns the exact map centre and fallback=true.
func SelectPlayerStart(in PlayerInput, src *rng.Source, t tuning.Spawn) (start model.Point, fallback bool) {
	preferred := make(map[model.BiomeID]struct{}, len(t.PreferredBiomes))
	for _, b := range t.PreferredBiomes {
		preferred[b] = struct{}{}
	}

	for i := 0; i < t.Attempts; i++ {
		p := model.Point{
			X: src.Range(t.Margin, in.Size.Width-t.Margin),
			Y: src.Range(t.Margin, in.Size.Height-t.Margin),
		}
		b, ok := in.Biomes[in.Grid.KeyAt(p)]
		if !ok {
			continue
		}
		if _, ok := preferred[b]; !ok {
			continue
		}
		if !clearOf(in.Structures, p, t.Clearance) {
			continue
		}
		return p, false
	}
	return model.Point{X: in.Size.Width / 2, Y: in.Size.Height / 2}, true
}

func clearOf(structures []model.StructurePlacement, p model.Point, clearance float64) bool {
	for _, s := range structures {
		if s.Position.Dist(p) < clearance {
			return false
		}
	}
	return true
}
