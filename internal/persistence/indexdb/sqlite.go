// Package indexdb keeps a queryable SQLite index of generated worlds. The
// index is secondary: snapshots and the generation log remain the record.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"crashfall.gg/internal/persistence/indexdb/migrations"
	"crashfall.gg/internal/sim/catalogs"
	"crashfall.gg/internal/sim/tuning"
	"crashfall.gg/internal/sim/world/kernel/model"
)

var ErrNotFound = errors.New("world not indexed")

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed    atomic.Bool
	dropWorld atomic.Uint64
	lostWorld atomic.Uint64
}

type reqKind int

const (
	reqWorld reqKind = iota + 1
	reqSync
)

type req struct {
	kind  reqKind
	world worldRow
	done  chan struct{}
}

type worldRow struct {
	WorldRow
	Structures []model.StructurePlacement
}

// WorldRow is one indexed world.
type WorldRow struct {
	MapSize       string      `json:"map_size"`
	RequestedSeed int64       `json:"requested_seed"`
	Seed          int64       `json:"seed"`
	Digest        string      `json:"digest"`
	Tiles         int         `json:"tiles"`
	RoadTiles     int         `json:"road_tiles"`
	Structures    int         `json:"structures"`
	ZombieAreas   int         `json:"zombie_areas"`
	PlayerStart   model.Point `json:"player_start"`
	StartFallback bool        `json:"start_fallback"`
	SnapshotPath  string      `json:"snapshot_path,omitempty"`
	Stats         model.Stats `json:"stats"`
	RecordedAt    string      `json:"recorded_at"`
}

type StructureRow struct {
	Seq         int         `json:"seq"`
	ArchetypeID string      `json:"archetype_id"`
	Position    model.Point `json:"position"`
	Biome       string      `json:"biome"`
	Forced      bool        `json:"forced"`
}

type QueueStats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropWorldTotal uint64 `json:"drop_world_total"`
	// LostWorldTotal counts queued worlds discarded by a rolled-back batch.
	LostWorldTotal uint64 `json:"lost_world_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

var migrateMu sync.Mutex

// migrate applies the embedded goose migrations. goose keeps its base FS and
// dialect in package state, hence the lock.
func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() QueueStats {
	if s == nil {
		return QueueStats{}
	}
	return QueueStats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropWorldTotal: s.dropWorld.Load(),
		LostWorldTotal: s.lostWorld.Load(),
	}
}

// RecordWorld queues w for indexing. A full queue drops the record.
func (s *SQLiteIndex) RecordWorld(w *model.WorldMap, snapshotPath string) {
	if s == nil || s.closed.Load() || w == nil {
		return
	}
	st := model.Summarize(w)
	r := worldRow{
		WorldRow: WorldRow{
			MapSize:       string(w.MapSize.ID),
			RequestedSeed: w.RequestedSeed,
			Seed:          w.Seed,
			Digest:        w.Digest(),
			Tiles:         st.Tiles,
			RoadTiles:     st.RoadTiles,
			Structures:    st.Structures,
			ZombieAreas:   st.ZombieAreas,
			PlayerStart:   w.PlayerStart,
			StartFallback: w.PlayerStartFallback,
			SnapshotPath:  snapshotPath,
			Stats:         st,
			RecordedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		},
		Structures: append([]model.StructurePlacement(nil), w.Structures...),
	}
	select {
	case s.ch <- req{kind: reqWorld, world: r}:
	default:
		s.dropWorld.Add(1)
	}
}

// Sync blocks until every record queued before it is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) LookupWorld(ctx context.Context, size model.MapSizeID, requestedSeed int64) (WorldRow, error) {
	row := s.db.QueryRowContext(ctx, selectWorld+` WHERE map_size=? AND requested_seed=?`, string(size), requestedSeed)
	r, err := scanWorld(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}

// ListWorlds returns the most recently recorded worlds first.
func (s *SQLiteIndex) ListWorlds(ctx context.Context, limit int) ([]WorldRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectWorld+` ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorldRow
	for rows.Next() {
		r, err := scanWorld(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) StructuresOf(ctx context.Context, size model.MapSizeID, requestedSeed int64) ([]StructureRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq,archetype_id,x,y,biome,forced FROM structures WHERE map_size=? AND requested_seed=? ORDER BY seq`, string(size), requestedSeed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StructureRow
	for rows.Next() {
		var r StructureRow
		if err := rows.Scan(&r.Seq, &r.ArchetypeID, &r.Position.X, &r.Position.Y, &r.Biome, &r.Forced); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const selectWorld = `SELECT map_size,requested_seed,seed,digest,tiles,road_tiles,structures,zombie_areas,start_x,start_y,start_fallback,snapshot_path,stats_json,recorded_at FROM worlds`

type scanner interface {
	Scan(dest ...any) error
}

func scanWorld(sc scanner) (WorldRow, error) {
	var r WorldRow
	var stats string
	if err := sc.Scan(&r.MapSize, &r.RequestedSeed, &r.Seed, &r.Digest, &r.Tiles, &r.RoadTiles, &r.Structures, &r.ZombieAreas,
		&r.PlayerStart.X, &r.PlayerStart.Y, &r.StartFallback, &r.SnapshotPath, &stats, &r.RecordedAt); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
		return r, fmt.Errorf("stats_json: %w", err)
	}
	return r, nil
}

// UpsertCatalogs stores the catalogs and tuning the generator actually uses.
func (s *SQLiteIndex) UpsertCatalogs(ctx context.Context, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b, _ := json.Marshal(cats.Biomes.List); len(b) > 0 {
		rows = append(rows, kv{name: "biomes", digest: cats.Biomes.Digest, json: b})
	}
	if b, _ := json.Marshal(cats.Structures.List); len(b) > 0 {
		rows = append(rows, kv{name: "structures", digest: cats.Structures.Digest, json: b})
	}
	if b, _ := json.Marshal(catalogs.MapSizes()); len(b) > 0 {
		rows = append(rows, kv{name: "map_sizes", digest: sha256Hex(b), json: b})
	}
	if b, _ := json.Marshal(tune); len(b) > 0 {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.digest == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CatalogDigest returns the stored digest for a catalog name.
func (s *SQLiteIndex) CatalogDigest(ctx context.Context, name string) (string, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name=?`, name).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return d, err
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.kind == reqSync {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		if err := writeWorld(ctx, tx, r.world); err != nil {
			// The failed world and every uncommitted one before it are gone.
			s.lostWorld.Add(uint64(opCount + 1))
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}

func writeWorld(ctx context.Context, tx *sql.Tx, w worldRow) error {
	stats, err := json.Marshal(w.Stats)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM structures WHERE map_size=? AND requested_seed=?`, w.MapSize, w.RequestedSeed); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO worlds(map_size,requested_seed,seed,digest,tiles,road_tiles,structures,zombie_areas,start_x,start_y,start_fallback,snapshot_path,stats_json,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		w.MapSize, w.RequestedSeed, w.Seed, w.Digest, w.Tiles, w.RoadTiles, w.WorldRow.Structures, w.ZombieAreas,
		w.PlayerStart.X, w.PlayerStart.Y, w.StartFallback, w.SnapshotPath, string(stats), w.RecordedAt,
	); err != nil {
		return err
	}
	for i, p := range w.Structures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO structures(map_size,requested_seed,seq,archetype_id,x,y,biome,forced) VALUES(?,?,?,?,?,?,?,?)`,
			w.MapSize, w.RequestedSeed, i, p.ArchetypeID, p.Position.X, p.Position.Y, string(p.Biome), p.Forced,
		); err != nil {
			return err
		}
	}
	return nil
}
