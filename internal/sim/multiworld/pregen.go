// Package multiworld pre-generates the worlds listed in worlds.yaml.
package multiworld

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

type Result struct {
	Spec  WorldSpec
	World *model.WorldMap
	Took  time.Duration
}

// GenerateAll generates every configured world with at most limit running at
// once (limit <= 0 means unbounded). Results follow cfg.Worlds order. The
// first failure cancels worlds not yet started.
func GenerateAll(ctx context.Context, gen *world.Generator, cfg Config, limit int) ([]Result, error) {
	out := make([]Result, len(cfg.Worlds))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, spec := range cfg.Worlds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			w, err := gen.Generate(model.MapSizeID(spec.MapSize), cfg.SeedFor(spec))
			if err != nil {
				return fmt.Errorf("world %s: %w", spec.ID, err)
			}
			out[i] = Result{Spec: spec, World: w, Took: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
