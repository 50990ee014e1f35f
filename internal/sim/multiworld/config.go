package multiworld

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// Config lists the worlds a server pre-generates at startup.
type Config struct {
	BaseSeed int64       `yaml:"base_seed"`
	Worlds   []WorldSpec `yaml:"worlds"`
}

// WorldSpec pins one world. Without an explicit seed the world uses
// base_seed + seed_offset.
type WorldSpec struct {
	ID         string `yaml:"id"`
	MapSize    string `yaml:"map_size"`
	Seed       *int64 `yaml:"seed,omitempty"`
	SeedOffset int64  `yaml:"seed_offset"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = Config{}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		BaseSeed: 1337,
		Worlds: []WorldSpec{
			{ID: "OUTSKIRTS", MapSize: string(model.MapSmall)},
			{ID: "COUNTY", MapSize: string(model.MapMedium), SeedOffset: 1},
			{ID: "BADLANDS", MapSize: string(model.MapLarge), SeedOffset: 2},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	for i := range c.Worlds {
		c.Worlds[i].ID = strings.ToUpper(strings.TrimSpace(c.Worlds[i].ID))
		c.Worlds[i].MapSize = strings.ToLower(strings.TrimSpace(c.Worlds[i].MapSize))
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if len(c.Worlds) == 0 {
		return fmt.Errorf("worlds must not be empty")
	}
	seen := map[string]bool{}
	for _, w := range c.Worlds {
		if w.ID == "" {
			return fmt.Errorf("world id must not be empty")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate world id: %s", w.ID)
		}
		seen[w.ID] = true
		if w.MapSize == "" {
			return fmt.Errorf("world %s map_size must not be empty", w.ID)
		}
	}
	return nil
}

func (c Config) SeedFor(w WorldSpec) int64 {
	if w.Seed != nil {
		return *w.Seed
	}
	return c.BaseSeed + w.SeedOffset
}

func (c Config) WorldSpecByID(id string) (WorldSpec, bool) {
	for _, w := range c.Worlds {
		if w.ID == id {
			return w, true
		}
	}
	return WorldSpec{}, false
}
