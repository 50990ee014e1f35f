package spawns

import (
	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
	"crashfall.gg/internal/sim/world/logic/rng"
)

type ZombieInput struct {
	Size        model.MapSize
	Grid        model.Grid
	Biomes      map[model.TileKey]model.BiomeID
	PlayerStart model.Point
}

// ZombieAreas fills up to t.Count slots. A slot whose attempts all land too
// close to the player is dropped, so callers must treat the count as advisory.
func ZombieAreas(in ZombieInput, src *rng.Source, cats *catalogs.Catalogs, t tuning.Zombies) []model.SpawnArea {
	out := make([]model.SpawnArea, 0, t.Count)
	for slot := 0; slot < t.Count; slot++ {
		for i := 0; i < t.Attempts; i++ {
			p := model.Point{
				X: src.Range(t.Margin, in.Size.Width-t.Margin),
				Y: src.Range(t.Margin, in.Size.Height-t.Margin),
			}
			if p.Dist(in.PlayerStart) < t.MinPlayerDistance {
				continue
			}
			area := model.SpawnArea{
				Position: p,
				Radius:   src.Range(t.RadiusMin, t.RadiusMax),
			}
			if b, ok := in.Biomes[in.Grid.KeyAt(p)]; ok {
				area.Biome = b
				if def, ok := cats.Biome(b); ok {
					area.Density = def.ZombieSpawnRate
				}
			}
			out = append(out, area)
			break
		}
	}
	return out
}
