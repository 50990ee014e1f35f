package world

import (
	"log"

	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
)

type Option func(*Generator)

func WithCatalogs(c *catalogs.Catalogs) Option {
	return func(g *Generator) {
		if c != nil {
			g.cats = c
		}
	}
}

func WithTuning(t tuning.Tuning) Option {
	return func(g *Generator) { g.tune = t }
}

// WithLogger sets the generation logger. nil discards output.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithMapSizes replaces the size table the generator resolves ids against.
func WithMapSizes(sizes []model.MapSize) Option {
	return func(g *Generator) {
		g.sizes = append([]model.MapSize(nil), sizes...)
	}
}
