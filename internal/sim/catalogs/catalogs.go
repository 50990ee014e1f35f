package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// Catalogs holds the static biome and structure tables. Values are read-only
// once built; generation stages receive them as parameters.
type Catalogs struct {
	Biomes     BiomeCatalog
	Structures StructureCatalog
}

type BiomeCatalog struct {
	List   []BiomeDef
	ByID   map[model.BiomeID]BiomeDef
	Digest string
}

type TerrainWeight struct {
	ID     model.TerrainID `json:"id" yaml:"id"`
	Weight float64         `json:"weight" yaml:"weight"`
}

type BiomeDef struct {
	ID                 model.BiomeID   `json:"id" yaml:"id"`
	Terrain            []TerrainWeight `json:"terrain" yaml:"terrain"`
	StructureSpawnRate float64         `json:"structure_spawn_rate" yaml:"structure_spawn_rate"`
	ZombieSpawnRate    float64         `json:"zombie_spawn_rate" yaml:"zombie_spawn_rate"`
	Color              string          `json:"color" yaml:"color"`
}

type StructureCatalog struct {
	List   []ArchetypeDef
	ByID   map[string]ArchetypeDef
	Digest string
}

type Footprint struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type ArchetypeDef struct {
	ID              string          `json:"id" yaml:"id"`
	PlacementRarity float64         `json:"placement_rarity" yaml:"placement_rarity"`
	MinDistance     float64         `json:"min_distance" yaml:"min_distance"`
	Biomes          []model.BiomeID `json:"biomes" yaml:"biomes"`
	IsAnchor        bool            `json:"is_anchor" yaml:"is_anchor"`
	Footprint       Footprint       `json:"footprint" yaml:"footprint"`
	Destructible    bool            `json:"destructible" yaml:"destructible"`
	Health          int             `json:"health" yaml:"health"`
}

func (a ArchetypeDef) Allows(b model.BiomeID) bool {
	for _, id := range a.Biomes {
		if id == b {
			return true
		}
	}
	return false
}

// TerrainIDs lists the biome's sub-types in catalog order.
func (b BiomeDef) TerrainIDs() []model.TerrainID {
	out := make([]model.TerrainID, 0, len(b.Terrain))
	for _, t := range b.Terrain {
		out = append(out, t.ID)
	}
	return out
}

func (c *Catalogs) Biome(id model.BiomeID) (BiomeDef, bool) {
	b, ok := c.Biomes.ByID[id]
	return b, ok
}

func (c *Catalogs) Archetype(id string) (ArchetypeDef, bool) {
	a, ok := c.Structures.ByID[id]
	return a, ok
}

func (c *Catalogs) Anchors() []ArchetypeDef {
	var out []ArchetypeDef
	for _, a := range c.Structures.List {
		if a.IsAnchor {
			out = append(out, a)
		}
	}
	return out
}

// BiomeIDs lists biomes in catalog order, which is the order uniform biome draws index into.
func (c *Catalogs) BiomeIDs() []model.BiomeID {
	out := make([]model.BiomeID, 0, len(c.Biomes.List))
	for _, b := range c.Biomes.List {
		out = append(out, b.ID)
	}
	return out
}

// New indexes and validates the given tables.
func New(biomes []BiomeDef, structures []ArchetypeDef) (*Catalogs, error) {
	c := &Catalogs{}
	c.Biomes.List = append([]BiomeDef(nil), biomes...)
	c.Biomes.ByID = make(map[model.BiomeID]BiomeDef, len(biomes))
	for _, b := range biomes {
		if b.ID == "" {
			return nil, fmt.Errorf("biomes: empty id")
		}
		if _, dup := c.Biomes.ByID[b.ID]; dup {
			return nil, fmt.Errorf("biomes: duplicate id %q", b.ID)
		}
		c.Biomes.ByID[b.ID] = b
	}
	c.Structures.List = append([]ArchetypeDef(nil), structures...)
	c.Structures.ByID = make(map[string]ArchetypeDef, len(structures))
	for _, a := range structures {
		if a.ID == "" {
			return nil, fmt.Errorf("structures: empty id")
		}
		if _, dup := c.Structures.ByID[a.ID]; dup {
			return nil, fmt.Errorf("structures: duplicate id %q", a.ID)
		}
		c.Structures.ByID[a.ID] = a
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Biomes.Digest = digestJSON(c.Biomes.List)
	c.Structures.Digest = digestJSON(c.Structures.List)
	return c, nil
}

func (c *Catalogs) Validate() error {
	if len(c.Biomes.List) == 0 {
		return fmt.Errorf("biomes: empty catalog")
	}
	for _, b := range c.Biomes.List {
		if len(b.Terrain) == 0 {
			return fmt.Errorf("biome %s: no terrain sub-types", b.ID)
		}
		sum := 0.0
		for _, t := range b.Terrain {
			if t.ID == "" || t.Weight < 0 {
				return fmt.Errorf("biome %s: bad terrain entry %+v", b.ID, t)
			}
			sum += t.Weight
		}
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("biome %s: terrain weights sum to %v, want 1", b.ID, sum)
		}
	}
	anchors := 0
	for _, a := range c.Structures.List {
		if a.PlacementRarity <= 0 || a.PlacementRarity > 1 {
			return fmt.Errorf("structure %s: placement_rarity %v outside (0,1]", a.ID, a.PlacementRarity)
		}
		if a.MinDistance < 0 {
			return fmt.Errorf("structure %s: negative min_distance", a.ID)
		}
		if len(a.Biomes) == 0 {
			return fmt.Errorf("structure %s: empty biome affinity", a.ID)
		}
		for _, b := range a.Biomes {
			if _, ok := c.Biomes.ByID[b]; !ok {
				return fmt.Errorf("structure %s: unknown biome %q", a.ID, b)
			}
		}
		if a.IsAnchor {
			anchors++
		}
	}
	if anchors == 0 {
		return fmt.Errorf("structures: no anchor archetype")
	}
	return nil
}

// Load reads biomes.yaml and structures.yaml from dir. A missing file falls back
// to the compiled-in table for that catalog.
func Load(dir string) (*Catalogs, error) {
	biomes := DefaultBiomes()
	structures := DefaultStructures()
	if err := loadYAML(filepath.Join(dir, "biomes.yaml"), &biomes); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "structures.yaml"), &structures); err != nil {
		return nil, err
	}
	return New(biomes, structures)
}

func loadYAML[T any](path string, out *[]T) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var defs []T
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	*out = defs
	return nil
}

func digestJSON(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
