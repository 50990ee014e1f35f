package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"crashfall.gg/internal/persistence/indexdb"
	persistlog "crashfall.gg/internal/persistence/log"
	"crashfall.gg/internal/persistence/snapshot"
	"crashfall.gg/internal/sim/multiworld"
	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

// recorder fans generated worlds out to the index and the generation log.
type recorder struct {
	idx    *indexdb.SQLiteIndex
	genLog *persistlog.GenerationLogger
	logger *log.Logger
}

func (r *recorder) RecordGeneration(w *model.WorldMap, took time.Duration) {
	r.record(w, "", took)
}

func (r *recorder) record(w *model.WorldMap, snapshotPath string, took time.Duration) {
	r.idx.RecordWorld(w, snapshotPath)
	if err := r.genLog.WriteGeneration(persistlog.NewGenerationEntry(w, took)); err != nil {
		r.logger.Printf("generation log: %v", err)
	}
}

func snapshotPath(dataDir, worldID string, w *model.WorldMap) string {
	return filepath.Join(dataDir, "worlds", worldID, fmt.Sprintf("%s-%d.snap.zst", w.MapSize.ID, w.RequestedSeed))
}

func pregenerate(ctx context.Context, gen *world.Generator, cfg multiworld.Config, limit int, dataDir string, rec *recorder, logger *log.Logger) error {
	start := time.Now()
	res, err := multiworld.GenerateAll(ctx, gen, cfg, limit)
	if err != nil {
		return err
	}
	for _, r := range res {
		path := snapshotPath(dataDir, r.Spec.ID, r.World)
		if err := snapshot.WriteSnapshot(path, snapshot.FromWorld(r.World)); err != nil {
			return fmt.Errorf("world %s: write snapshot: %w", r.Spec.ID, err)
		}
		rec.record(r.World, path, r.Took)
		logger.Printf("world %s: size=%s seed=%d structures=%d snapshot=%s", r.Spec.ID, r.World.MapSize.ID, r.World.Seed, len(r.World.Structures), path)
	}
	logger.Printf("pre-generated %d worlds in %s", len(res), time.Since(start).Round(time.Millisecond))
	return nil
}
