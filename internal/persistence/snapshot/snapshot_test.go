package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

func generated(t *testing.T) *model.WorldMap {
	t.Helper()
	w, err := world.NewGenerator().Generate(model.MapSmall, 21)
	require.NoError(t, err)
	return w
}

func TestFromWorldOrdersTiles(t *testing.T) {
	w := generated(t)
	s := FromWorld(w)
	require.Len(t, s.Tiles, w.Grid.Len())
	assert.Equal(t, TileV1{X: 0, Y: 0, Biome: s.Tiles[0].Biome, Terrain: s.Tiles[0].Terrain, Rotation: s.Tiles[0].Rotation}, s.Tiles[0])
	assert.Equal(t, int32(1), s.Tiles[1].X)
	assert.Equal(t, int32(0), s.Tiles[w.Grid.Cols].X)
	assert.Equal(t, int32(1), s.Tiles[w.Grid.Cols].Y)
	assert.Equal(t, w.Digest(), s.Header.Digest)
	assert.Equal(t, "small", s.Header.MapSize)
}

func TestWorldRoundTrip(t *testing.T) {
	w := generated(t)
	back, err := ToWorld(FromWorld(w))
	require.NoError(t, err)
	assert.Equal(t, w.Digest(), back.Digest())
	assert.Equal(t, w.Biomes, back.Biomes)
	assert.Equal(t, w.Terrain, back.Terrain)
	assert.Equal(t, w.Structures, back.Structures)
}

func TestToWorldRejectsTampering(t *testing.T) {
	s := FromWorld(generated(t))
	s.Tiles[3].Terrain = "lava"
	_, err := ToWorld(s)
	assert.ErrorContains(t, err, "digest mismatch")

	s = FromWorld(generated(t))
	s.Tiles = append(s.Tiles, s.Tiles[0])
	_, err = ToWorld(s)
	assert.ErrorContains(t, err, "duplicate tile")
}

func TestWriteReadSnapshot(t *testing.T) {
	w := generated(t)
	path := filepath.Join(t.TempDir(), "worlds", "small-21.snap.zst")
	require.NoError(t, WriteSnapshot(path, FromWorld(w)))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, int64(21), h.Seed)

	s, err := ReadSnapshot(path)
	require.NoError(t, err)
	back, err := ToWorld(s)
	require.NoError(t, err)
	assert.Equal(t, w.Digest(), back.Digest())
	assert.Equal(t, w.PlayerStart, back.PlayerStart)
}

func TestReadSnapshotRejectsUnknownVersion(t *testing.T) {
	s := FromWorld(generated(t))
	s.Header.Version = 9
	path := filepath.Join(t.TempDir(), "v9.snap.zst")
	require.NoError(t, WriteSnapshot(path, s))
	_, err := ReadSnapshot(path)
	assert.ErrorContains(t, err, "unsupported snapshot version")
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, _ = enc.Write([]byte("{\"version\":1}\nnot gob"))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	_, err = ReadSnapshot(path)
	assert.ErrorContains(t, err, "gob decode")
}
