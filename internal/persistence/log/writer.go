// Package log persists host-side generation records as compressed JSON lines.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const hourLayout = "2006-01-02-15"

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst under baseDir. Each line is flushed into
// the encoder; the zstd frame is finished on rotation or Close.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu   sync.Mutex
	hour string
	out  *hourFile
}

type hourFile struct {
	f   *os.File
	enc *zstd.Encoder
	buf *bufio.Writer
}

func (h *hourFile) close() error {
	flushErr := h.buf.Flush()
	encErr := h.enc.Close()
	fileErr := h.f.Close()
	for _, err := range []error{flushErr, encErr, fileErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{baseDir: baseDir, prefix: prefix, now: time.Now}
}

func (w *JSONLZstdWriter) Write(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if hour := w.now().UTC().Format(hourLayout); hour != w.hour || w.out == nil {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.out.buf.Write(line); err != nil {
		return err
	}
	return w.out.buf.Flush()
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out == nil {
		return nil
	}
	err := w.out.close()
	w.out = nil
	w.hour = ""
	return err
}

// Path returns the file an entry written at t lands in.
func (w *JSONLZstdWriter) Path(t time.Time) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, t.UTC().Format(hourLayout)))
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if w.out != nil {
		if err := w.out.close(); err != nil {
			return err
		}
		w.out = nil
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.out = &hourFile{f: f, enc: enc, buf: bufio.NewWriterSize(enc, 128*1024)}
	w.hour = hour
	return nil
}
