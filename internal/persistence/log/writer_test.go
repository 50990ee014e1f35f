package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	var out []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	require.NoError(t, sc.Err())
	return out
}

func TestJSONLZstdWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "gen")
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	require.NoError(t, w.Write(map[string]int{"n": 1}))
	require.NoError(t, w.Write(map[string]int{"n": 2}))
	now = now.Add(2 * time.Minute)
	require.NoError(t, w.Write(map[string]int{"n": 3}))
	require.NoError(t, w.Close())

	first := readLines(t, w.Path(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, first)
	second := readLines(t, filepath.Join(dir, "gen-2026-03-01-11.jsonl.zst"))
	assert.Equal(t, []string{`{"n":3}`}, second)
}

func TestGenerationLoggerWritesEntry(t *testing.T) {
	w, err := world.NewGenerator().Generate(model.MapSmall, 8)
	require.NoError(t, err)

	dir := t.TempDir()
	l := NewGenerationLogger(dir)
	require.NoError(t, l.WriteGeneration(NewGenerationEntry(w, 12*time.Millisecond)))
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "generations", "generations-*.jsonl.zst"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	lines := readLines(t, matches[0])
	require.Len(t, lines, 1)
	var got GenerationEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "small", got.MapSize)
	assert.Equal(t, int64(8), got.RequestedSeed)
	assert.Equal(t, w.Digest(), got.Digest)
	assert.Equal(t, int64(12), got.DurationMS)
	assert.Positive(t, got.Structures["crash_site"])
}
