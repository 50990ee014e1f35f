package catalogs

import "crashfall.gg/internal/sim/world/kernel/model"

const (
	Grassland model.BiomeID = "grassland"
	Desert    model.BiomeID = "desert"
	Urban     model.BiomeID = "urban"
	Wasteland model.BiomeID = "wasteland"
	Forest    model.BiomeID = "forest"
)

// CrashSiteID is the anchor archetype of the reference catalog.
const CrashSiteID = "crash_site"

func DefaultBiomes() []BiomeDef {
	return []BiomeDef{
		{
			ID: Grassland,
			Terrain: []TerrainWeight{
				{ID: "grass", Weight: 0.6},
				{ID: "tall_grass", Weight: 0.25},
				{ID: "dirt", Weight: 0.15},
			},
			StructureSpawnRate: 0.8,
			ZombieSpawnRate:    0.6,
			Color:              "#6aa84f",
		},
		{
			ID: Desert,
			Terrain: []TerrainWeight{
				{ID: "sand", Weight: 0.7},
				{ID: "dune", Weight: 0.2},
				{ID: "rock", Weight: 0.1},
			},
			StructureSpawnRate: 0.4,
			ZombieSpawnRate:    0.4,
			Color:              "#e6c27a",
		},
		{
			ID: Urban,
			Terrain: []TerrainWeight{
				{ID: "asphalt", Weight: 0.5},
				{ID: "concrete", Weight: 0.35},
				{ID: "rubble", Weight: 0.15},
			},
			StructureSpawnRate: 1.5,
			ZombieSpawnRate:    1.4,
			Color:              "#7f7f7f",
		},
		{
			ID: Wasteland,
			Terrain: []TerrainWeight{
				{ID: "cracked_earth", Weight: 0.5},
				{ID: "rubble", Weight: 0.3},
				{ID: "ash", Weight: 0.2},
			},
			StructureSpawnRate: 0.6,
			ZombieSpawnRate:    1.2,
			Color:              "#8b5a2b",
		},
		{
			ID: Forest,
			Terrain: []TerrainWeight{
				{ID: "forest_floor", Weight: 0.55},
				{ID: "moss", Weight: 0.25},
				{ID: "dirt", Weight: 0.2},
			},
			StructureSpawnRate: 0.5,
			ZombieSpawnRate:    0.9,
			Color:              "#274e13",
		},
	}
}

func DefaultStructures() []ArchetypeDef {
	all := []model.BiomeID{Grassland, Desert, Urban, Wasteland, Forest}
	return []ArchetypeDef{
		{
			ID:              CrashSiteID,
			PlacementRarity: 0.002,
			MinDistance:     1200,
			Biomes:          all,
			IsAnchor:        true,
			Footprint:       Footprint{Width: 256, Height: 192},
		},
		{
			ID:              "abandoned_house",
			PlacementRarity: 0.03,
			MinDistance:     256,
			Biomes:          []model.BiomeID{Grassland, Urban, Forest},
			Footprint:       Footprint{Width: 128, Height: 128},
			Destructible:    true,
			Health:          400,
		},
		{
			ID:              "gas_station",
			PlacementRarity: 0.01,
			MinDistance:     768,
			Biomes:          []model.BiomeID{Urban, Desert},
			Footprint:       Footprint{Width: 192, Height: 128},
			Destructible:    true,
			Health:          600,
		},
		{
			ID:              "military_bunker",
			PlacementRarity: 0.006,
			MinDistance:     1024,
			Biomes:          []model.BiomeID{Wasteland, Desert},
			Footprint:       Footprint{Width: 160, Height: 160},
			Destructible:    false,
		},
		{
			ID:              "water_tower",
			PlacementRarity: 0.008,
			MinDistance:     640,
			Biomes:          []model.BiomeID{Grassland, Urban},
			Footprint:       Footprint{Width: 64, Height: 64},
			Destructible:    true,
			Health:          250,
		},
		{
			ID:              "ranger_cabin",
			PlacementRarity: 0.012,
			MinDistance:     512,
			Biomes:          []model.BiomeID{Forest},
			Footprint:       Footprint{Width: 96, Height: 96},
			Destructible:    true,
			Health:          300,
		},
		{
			ID:              "car_wreck",
			PlacementRarity: 0.05,
			MinDistance:     192,
			Biomes:          []model.BiomeID{Urban, Desert, Wasteland, Grassland},
			Footprint:       Footprint{Width: 64, Height: 32},
			Destructible:    true,
			Health:          150,
		},
	}
}

// Default returns the compiled-in reference catalogs.
func Default() *Catalogs {
	c, err := New(DefaultBiomes(), DefaultStructures())
	if err != nil {
		panic("catalogs: invalid defaults: " + err.Error())
	}
	return c
}
