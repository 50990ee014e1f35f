package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	persistlog "crashfall.gg/internal/persistence/log"
	"crashfall.gg/internal/persistence/snapshot"
	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

func main() {
	var (
		size      = flag.String("size", "medium", "map size id (small|medium|large|huge)")
		seed      = flag.Int64("seed", 0, "seed (any int64); omit to pick a random one")
		inspect   = flag.String("inspect", "", "print a snapshot file instead of generating")
		configDir = flag.String("configs", "", "config directory; empty uses the built-in catalogs")
		out       = flag.String("out", "", "write a snapshot to this path")
		dataDir   = flag.String("data", "", "append the generation to <data>/generations")
		preview   = flag.Bool("preview", true, "print an ASCII preview")
		asJSON    = flag.Bool("json", false, "print stats as JSON instead of text")
		verbose   = flag.Bool("v", false, "log generator retries")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[worldgen] ", log.LstdFlags|log.Lmicroseconds)

	if *inspect != "" {
		w, err := inspectSnapshot(os.Stdout, *inspect)
		if err != nil {
			logger.Fatalf("inspect: %v", err)
		}
		if *preview {
			fmt.Println()
			renderPreview(os.Stdout, w)
		}
		return
	}

	opts := []world.Option{}
	if *verbose {
		opts = append(opts, world.WithLogger(logger))
	}
	if *configDir != "" {
		cats, err := catalogs.Load(*configDir)
		if err != nil {
			logger.Fatalf("load catalogs: %v", err)
		}
		opts = append(opts, world.WithCatalogs(cats))
		tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
		switch {
		case err == nil:
			opts = append(opts, world.WithTuning(tune))
		case !os.IsNotExist(err):
			logger.Fatalf("load tuning: %v", err)
		}
	}
	gen := world.NewGenerator(opts...)
	if err := gen.Err(); err != nil {
		logger.Fatalf("generator: %v", err)
	}

	start := time.Now()
	var (
		w   *model.WorldMap
		err error
	)
	if !flagPassed(flag.CommandLine, "seed") {
		w, err = gen.GenerateRandom(model.MapSizeID(*size))
	} else {
		w, err = gen.Generate(model.MapSizeID(*size), *seed)
	}
	if err != nil {
		logger.Fatalf("generate: %v", err)
	}
	took := time.Since(start)

	if *out != "" {
		if err := snapshot.WriteSnapshot(*out, snapshot.FromWorld(w)); err != nil {
			logger.Fatalf("write snapshot: %v", err)
		}
	}
	if *dataDir != "" {
		gl := persistlog.NewGenerationLogger(*dataDir)
		if err := gl.WriteGeneration(persistlog.NewGenerationEntry(w, took)); err != nil {
			logger.Printf("generation log: %v", err)
		}
		_ = gl.Close()
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			MapSize       string      `json:"map_size"`
			RequestedSeed int64       `json:"requested_seed"`
			Seed          int64       `json:"seed"`
			Digest        string      `json:"digest"`
			TookMS        int64       `json:"took_ms"`
			Stats         model.Stats `json:"stats"`
		}{string(w.MapSize.ID), w.RequestedSeed, w.Seed, w.Digest(), took.Milliseconds(), model.Summarize(w)})
	} else {
		printSummary(os.Stdout, w, took)
	}
	if *preview {
		fmt.Println()
		renderPreview(os.Stdout, w)
	}
}

// flagPassed reports whether name was set on the command line, so that every
// value, including zero and negatives, stays requestable.
func flagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// inspectSnapshot prints the header of a snapshot file, then rebuilds and
// summarizes the world it holds.
func inspectSnapshot(out io.Writer, path string) (*model.WorldMap, error) {
	h, err := snapshot.ReadHeader(path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "snapshot=%s version=%d map=%s seed=%d digest=%s\n", path, h.Version, h.MapSize, h.Seed, h.Digest)
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	w, err := snapshot.ToWorld(snap)
	if err != nil {
		return nil, err
	}
	printSummary(out, w, 0)
	return w, nil
}

func printSummary(out io.Writer, w *model.WorldMap, took time.Duration) {
	st := model.Summarize(w)
	fmt.Fprintf(out, "map=%s %gx%g grid=%dx%d seed=%d", w.MapSize.ID, w.MapSize.Width, w.MapSize.Height, w.Grid.Cols, w.Grid.Rows, w.Seed)
	if w.Seed != w.RequestedSeed {
		fmt.Fprintf(out, " (requested %d)", w.RequestedSeed)
	}
	fmt.Fprintf(out, " took=%s\n", took.Round(time.Microsecond))
	fmt.Fprintf(out, "digest=%s\n", w.Digest())

	fmt.Fprintf(out, "biomes:")
	for _, b := range slices.Sorted(maps.Keys(st.BiomeTiles)) {
		fmt.Fprintf(out, " %s=%d", b, st.BiomeTiles[b])
	}
	fmt.Fprintf(out, "\nstructures=%d forced_anchors=%d:", st.Structures, st.ForcedAnchors)
	for _, a := range slices.Sorted(maps.Keys(st.ByArchetype)) {
		fmt.Fprintf(out, " %s=%d", a, st.ByArchetype[a])
	}
	fallback := ""
	if st.StartIsFallback {
		fallback = " (fallback)"
	}
	fmt.Fprintf(out, "\nplayer_start=(%.0f,%.0f)%s zombie_areas=%d road_tiles=%d\n",
		st.PlayerStart.X, st.PlayerStart.Y, fallback, st.ZombieAreas, st.RoadTiles)
}

// renderPreview draws one character per tile. Biomes use their first letter;
// '#' is road, 'A' an anchor structure, 's' any other structure, '@' the start.
func renderPreview(out io.Writer, w *model.WorldMap) {
	marks := make(map[model.TileKey]byte, len(w.Structures)+1)
	for _, s := range w.Structures {
		c := byte('s')
		if s.Forced || s.ArchetypeID == catalogs.CrashSiteID {
			c = 'A'
		}
		marks[w.Grid.KeyAt(s.Position)] = c
	}
	marks[w.Grid.KeyAt(w.PlayerStart)] = '@'

	var sb strings.Builder
	for y := int32(0); y < w.Grid.Rows; y++ {
		for x := int32(0); x < w.Grid.Cols; x++ {
			k := model.TileKey{X: x, Y: y}
			if c, ok := marks[k]; ok {
				sb.WriteByte(c)
				continue
			}
			t, ok := w.Terrain[k]
			switch {
			case !ok:
				sb.WriteByte(' ')
			case t.Terrain == model.TerrainRoad:
				sb.WriteByte('#')
			case t.Biome == "":
				sb.WriteByte('?')
			default:
				sb.WriteByte(string(t.Biome)[0])
			}
		}
		sb.WriteByte('\n')
	}
	_, _ = io.WriteString(out, sb.String())
}
