package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// Tuning holds every constant the generator stages read. Changing any value
// changes the layouts produced for a given seed.
type Tuning struct {
	TileSize float64 `yaml:"tile_size" json:"tile_size"`

	Noise Noise `yaml:"noise" json:"noise"`

	Biomes     Biomes     `yaml:"biomes" json:"biomes"`
	Terrain    Terrain    `yaml:"terrain" json:"terrain"`
	Structures Structures `yaml:"structures" json:"structures"`
	Spawn      Spawn      `yaml:"spawn" json:"spawn"`
	Zombies    Zombies    `yaml:"zombies" json:"zombies"`

	// RegenerateAttempts is how many derived seeds are tried after the first
	// world comes back without an anchor.
	RegenerateAttempts int `yaml:"regenerate_attempts" json:"regenerate_attempts"`
}

type Noise struct {
	Scale         float64 `yaml:"scale" json:"scale"`
	TerrainOffset float64 `yaml:"terrain_offset" json:"terrain_offset"`
}

type Biomes struct {
	MinSeeds       int     `yaml:"min_seeds" json:"min_seeds"`
	SeedArea       float64 `yaml:"seed_area" json:"seed_area"`
	BlendThreshold float64 `yaml:"blend_threshold" json:"blend_threshold"`
	BlendChance    float64 `yaml:"blend_chance" json:"blend_chance"`
}

type Terrain struct {
	VarietyThreshold float64 `yaml:"variety_threshold" json:"variety_threshold"`
}

type Structures struct {
	BorderMargin      float64 `yaml:"border_margin" json:"border_margin"`
	AnchorAttempts    int     `yaml:"anchor_attempts" json:"anchor_attempts"`
	AnchorRadiusRatio float64 `yaml:"anchor_radius_ratio" json:"anchor_radius_ratio"`
}

type Spawn struct {
	Attempts        int             `yaml:"attempts" json:"attempts"`
	Margin          float64         `yaml:"margin" json:"margin"`
	Clearance       float64         `yaml:"clearance" json:"clearance"`
	PreferredBiomes []model.BiomeID `yaml:"preferred_biomes" json:"preferred_biomes"`
}

type Zombies struct {
	Count             int     `yaml:"count" json:"count"`
	Attempts          int     `yaml:"attempts" json:"attempts"`
	Margin            float64 `yaml:"margin" json:"margin"`
	MinPlayerDistance float64 `yaml:"min_player_distance" json:"min_player_distance"`
	RadiusMin         float64 `yaml:"radius_min" json:"radius_min"`
	RadiusMax         float64 `yaml:"radius_max" json:"radius_max"`
}

func Defaults() Tuning {
	return Tuning{
		TileSize: 64,
		Noise: Noise{
			Scale:         0.18,
			TerrainOffset: 1000,
		},
		Biomes: Biomes{
			MinSeeds:       6,
			SeedArea:       512 * 512,
			BlendThreshold: 0.72,
			BlendChance:    0.15,
		},
		Terrain: Terrain{
			VarietyThreshold: 0.78,
		},
		Structures: Structures{
			BorderMargin:      128,
			AnchorAttempts:    64,
			AnchorRadiusRatio: 0.25,
		},
		Spawn: Spawn{
			Attempts:        100,
			Margin:          128,
			Clearance:       256,
			PreferredBiomes: []model.BiomeID{"grassland", "forest", "urban"},
		},
		Zombies: Zombies{
			Count:             6,
			Attempts:          50,
			Margin:            64,
			MinPlayerDistance: 512,
			RadiusMin:         96,
			RadiusMax:         192,
		},
		RegenerateAttempts: 1,
	}
}

// Load reads a tuning file on top of Defaults, so a file only needs the keys it changes.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.TileSize <= 0:
		return fmt.Errorf("tile_size must be positive")
	case t.Biomes.MinSeeds < 1:
		return fmt.Errorf("biomes.min_seeds must be at least 1")
	case t.Biomes.SeedArea <= 0:
		return fmt.Errorf("biomes.seed_area must be positive")
	case t.Biomes.BlendChance < 0 || t.Biomes.BlendChance > 1:
		return fmt.Errorf("biomes.blend_chance outside [0,1]")
	case t.Structures.BorderMargin < 0:
		return fmt.Errorf("structures.border_margin must not be negative")
	case t.Structures.AnchorAttempts < 0 || t.Spawn.Attempts < 0 || t.Zombies.Attempts < 0:
		return fmt.Errorf("attempt budgets must not be negative")
	case t.Zombies.Count < 0:
		return fmt.Errorf("zombies.count must not be negative")
	case t.Zombies.RadiusMax < t.Zombies.RadiusMin:
		return fmt.Errorf("zombies.radius_max below radius_min")
	case t.RegenerateAttempts < 0:
		return fmt.Errorf("regenerate_attempts must not be negative")
	}
	return nil
}

// Digest is the sha256 of the canonical JSON form. Worlds generated under
// different digests are not comparable by seed.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
