// Package structures scatters catalog archetypes over the biome grid.
package structures

import (
	"math"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

type Input struct {
	Size   model.MapSize
	Grid   model.Grid
	Biomes map[model.TileKey]model.BiomeID
}

type Result struct {
	Placements []model.StructurePlacement
	// MissingAnchors lists anchor archetypes that ended with no placement.
	MissingAnchors []string
}

func (r Result) Complete() bool {
	return len(r.MissingAnchors) == 0
}

// Place scans tile positions inside the border margin row by row. At each
// position every archetype in catalog order gets an affinity check, one rarity
// draw and a same-archetype distance check. Anchors that never landed are then
// forced near the map centre.
func Place(in Input, src *rng.Source, archetypes []catalogs.ArchetypeDef, t tuning.Structures) Result {
	var res Result
	placed := make(map[string][]model.Point, len(archetypes))

	step := in.Grid.TileSize
	for y := t.BorderMargin; y < in.Size.Height-t.BorderMargin; y += step {
		for x := t.BorderMargin; x < in.Size.Width-t.BorderMargin; x += step {
			pos := model.Point{X: x, Y: y}
			biome, ok := in.Biomes[in.Grid.KeyAt(pos)]
			if !ok {
				continue
			}
			for _, a := range archetypes {
				if !a.Allows(biome) {
					continue
				}
				if src.Next() >= a.PlacementRarity {
					continue
				}
				if tooClose(placed[a.ID], pos, a.MinDistance) {
					continue
				}
				placed[a.ID] = append(placed[a.ID], pos)
				res.Placements = append(res.Placements, model.StructurePlacement{
					Position:    pos,
					ArchetypeID: a.ID,
					Biome:       biome,
				})
			}
		}
	}

	for _, a := range archetypes {
		if !a.IsAnchor || len(placed[a.ID]) > 0 {
			continue
		}
		p, ok := forceAnchor(in, src, a, t)
		if !ok {
			res.MissingAnchors = append(res.MissingAnchors, a.ID)
			continue
		}
		placed[a.ID] = append(placed[a.ID], p.Position)
		res.Placements = append(res.Placements, p)
	}
	return res
}

func tooClose(existing []model.Point, pos model.Point, minDist float64) bool {
	for _, e := range existing {
		if e.Dist(pos) < minDist {
			return true
		}
	}
	return false
}

// forceAnchor samples around the centre, snapped down to tile granularity, and
// takes the first candidate inside the border margin. Distance rules are skipped:
// no other placement of this archetype exists yet.
func forceAnchor(in Input, src *rng.Source, a catalogs.ArchetypeDef, t tuning.Structures) (model.StructurePlacement, bool) {
	cx := in.Size.Width / 2
	cy := in.Size.Height / 2
	radius := t.AnchorRadiusRatio * math.Min(in.Size.Width, in.Size.Height)
	step := in.Grid.TileSize

	for i := 0; i < t.AnchorAttempts; i++ {
		angle := src.Next() * 2 * math.Pi
		d := src.Next() * radius
		x := math.Floor((cx+math.Cos(angle)*d)/step) * step
		y := math.Floor((cy+math.Sin(angle)*d)/step) * step
		if x < t.BorderMargin || y < t.BorderMargin || x >= in.Size.Width-t.BorderMargin || y >= in.Size.Height-t.BorderMargin {
			continue
		}
		pos := model.Point{X: x, Y: y}
		biome, ok := in.Biomes[in.Grid.KeyAt(pos)]
		if !ok {
			continue
		}
		return model.StructurePlacement{Position: pos, ArchetypeID: a.ID, Biome: biome, Forced: true}, true
	}
	return model.StructurePlacement{}, false
}
