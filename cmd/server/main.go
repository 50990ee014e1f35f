package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"crashfall.gg/internal/persistence/indexdb"
	persistlog "crashfall.gg/internal/persistence/log"
	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/multiworld"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/transport/ws"
)

func main() {
	var (
		addr          = flag.String("addr", ":8080", "http listen address")
		configDir     = flag.String("configs", "./configs", "config directory (biomes.yaml, structures.yaml, tuning.yaml)")
		worldsPath    = flag.String("worlds", "./configs/worlds.yaml", "worlds to pre-generate at startup (skipped if missing)")
		dataDir       = flag.String("data", "./data", "runtime data directory")
		tuningPath    = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB     = flag.Bool("disable_db", false, "disable the sqlite world index")
		maxConcurrent = flag.Int64("max_concurrent", 4, "generations allowed in flight")
		pregenLimit   = flag.Int("pregen_limit", 2, "worlds pre-generated concurrently")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	gen := world.NewGenerator(
		world.WithCatalogs(cats),
		world.WithTuning(tune),
		world.WithLogger(log.New(os.Stdout, "[worldgen] ", log.LstdFlags|log.Lmicroseconds)),
	)
	if err := gen.Err(); err != nil {
		logger.Fatalf("generator: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "worlds.sqlite"))
		if err != nil {
			logger.Fatalf("open world index: %v", err)
		}
		defer idx.Close()
		logCatalogChanges(context.Background(), idx, cats, tune, logger)
		if err := idx.UpsertCatalogs(context.Background(), cats, tune); err != nil {
			logger.Printf("world index: upsert catalogs: %v", err)
		}
	}

	genLog := persistlog.NewGenerationLogger(*dataDir)
	defer genLog.Close()
	rec := &recorder{idx: idx, genLog: genLog, logger: logger}

	ctx, cancel := signalContext()
	defer cancel()

	if strings.TrimSpace(*worldsPath) != "" {
		if _, err := os.Stat(*worldsPath); err == nil {
			mcfg, err := multiworld.Load(*worldsPath)
			if err != nil {
				logger.Fatalf("load worlds config: %v", err)
			}
			if err := pregenerate(ctx, gen, mcfg, *pregenLimit, *dataDir, rec, logger); err != nil {
				logger.Fatalf("pre-generate: %v", err)
			}
		}
	}

	api := ws.NewServer(gen, rec, logger, *maxConcurrent, tune.Digest())
	if idx != nil {
		api.SetIndex(idx)
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// logCatalogChanges reports catalogs whose digest differs from the one the
// index last stored. Worlds indexed before a change were built from other tables.
func logCatalogChanges(ctx context.Context, idx *indexdb.SQLiteIndex, cats *catalogs.Catalogs, tune tuning.Tuning, logger *log.Logger) {
	current := map[string]string{
		"biomes":     cats.Biomes.Digest,
		"structures": cats.Structures.Digest,
		"tuning":     tune.Digest(),
	}
	for _, name := range []string{"biomes", "structures", "tuning"} {
		prev, err := idx.CatalogDigest(ctx, name)
		switch {
		case errors.Is(err, indexdb.ErrNotFound):
		case err != nil:
			logger.Printf("world index: catalog %s: %v", name, err)
		case prev != current[name]:
			logger.Printf("world index: %s changed (%.12s -> %.12s); indexed worlds predate it", name, prev, current[name])
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
