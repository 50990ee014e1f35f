package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

type digestWriter struct {
	h   hash.Hash
	tmp [8]byte
}

func (d *digestWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.tmp[:], v)
	d.h.Write(d.tmp[:])
}

func (d *digestWriter) i64(v int64)   { d.u64(uint64(v)) }
func (d *digestWriter) f64(v float64) { d.u64(math.Float64bits(v)) }

func (d *digestWriter) str(s string) {
	d.u64(uint64(len(s)))
	d.h.Write([]byte(s))
}

func (d *digestWriter) boolean(v bool) {
	if v {
		d.h.Write([]byte{1})
		return
	}
	d.h.Write([]byte{0})
}

// Digest hashes every generated field in a fixed order. Two worlds with equal
// digests are identical tile for tile.
func (w *WorldMap) Digest() string {
	d := &digestWriter{h: sha256.New()}
	d.str(string(w.MapSize.ID))
	d.f64(w.MapSize.Width)
	d.f64(w.MapSize.Height)
	d.i64(w.Seed)
	d.i64(int64(w.Grid.Cols))
	d.i64(int64(w.Grid.Rows))
	d.f64(w.Grid.TileSize)

	for _, k := range sortedKeys(w.Biomes, w.Terrain) {
		d.i64(int64(k.X))
		d.i64(int64(k.Y))
		d.str(string(w.Biomes[k]))
		t := w.Terrain[k]
		d.str(string(t.Terrain))
		d.str(string(t.Biome))
		d.u64(uint64(t.Rotation))
	}

	d.u64(uint64(len(w.Structures)))
	for _, s := range w.Structures {
		d.f64(s.Position.X)
		d.f64(s.Position.Y)
		d.str(s.ArchetypeID)
		d.str(string(s.Biome))
		d.boolean(s.Forced)
	}

	d.f64(w.PlayerStart.X)
	d.f64(w.PlayerStart.Y)
	d.boolean(w.PlayerStartFallback)

	d.u64(uint64(len(w.ZombieSpawnAreas)))
	for _, a := range w.ZombieSpawnAreas {
		d.f64(a.Position.X)
		d.f64(a.Position.Y)
		d.f64(a.Radius)
		d.str(string(a.Biome))
		d.f64(a.Density)
	}
	return hex.EncodeToString(d.h.Sum(nil))
}

func sortedKeys(biomes map[TileKey]BiomeID, terrain map[TileKey]TerrainTile) []TileKey {
	seen := make(map[TileKey]struct{}, len(biomes))
	keys := make([]TileKey, 0, len(biomes))
	for k := range biomes {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range terrain {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	SortKeys(keys)
	return keys
}

// SortKeys orders keys row-major.
func SortKeys(keys []TileKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
}
