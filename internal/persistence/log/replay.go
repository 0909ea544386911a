package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"vectorrts.dev/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to a single zstd-compressed file.
// One file per match so a replay is self-contained.
type JSONLZstdWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) (*JSONLZstdWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JSONLZstdWriter{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.New("log: writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReplayHeader is the first line of every replay file. A replay is only
// valid against the exact tuning it was recorded with.
type ReplayHeader struct {
	WorldID      string  `json:"world_id"`
	TickRateHz   int     `json:"tick_rate_hz"`
	MaxStep      float64 `json:"max_step_seconds"`
	TuningDigest string  `json:"tuning_digest"`
	StartedAt    string  `json:"started_at"`
}

// ReplayLogger records one entry per tick, preceded by a header line.
// It satisfies world.TickLogger.
type ReplayLogger struct {
	w    *JSONLZstdWriter
	path string
}

// ReplayPath is where a match's replay lives under the data directory.
func ReplayPath(dataDir, worldID string) string {
	return filepath.Join(dataDir, "replays", worldID+".jsonl.zst")
}

func OpenReplayLogger(dataDir string, hdr ReplayHeader) (*ReplayLogger, error) {
	if hdr.StartedAt == "" {
		hdr.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}
	path := ReplayPath(dataDir, hdr.WorldID)
	w, err := NewJSONLZstdWriter(path)
	if err != nil {
		return nil, err
	}
	if err := w.Write(hdr); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &ReplayLogger{w: w, path: path}, nil
}

func (l *ReplayLogger) WriteTick(e world.TickLogEntry) error { return l.w.Write(e) }
func (l *ReplayLogger) Path() string                         { return l.path }
func (l *ReplayLogger) Close() error                         { return l.w.Close() }

// ReplayReader streams a recorded match back out, header first.
type ReplayReader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
	hdr ReplayHeader
}

func OpenReplayReader(path string) (*ReplayReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	r := &ReplayReader{f: f, dec: dec, sc: sc}
	if !sc.Scan() {
		r.Close()
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("log: %s: empty replay", path)
	}
	if err := json.Unmarshal(sc.Bytes(), &r.hdr); err != nil {
		r.Close()
		return nil, fmt.Errorf("log: %s: bad header: %w", path, err)
	}
	return r, nil
}

func (r *ReplayReader) Header() ReplayHeader { return r.hdr }

// Next returns the following tick entry, or io.EOF at end of file.
func (r *ReplayReader) Next() (world.TickLogEntry, error) {
	var e world.TickLogEntry
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return e, err
		}
		return e, io.EOF
	}
	if err := json.Unmarshal(r.sc.Bytes(), &e); err != nil {
		return e, err
	}
	return e, nil
}

func (r *ReplayReader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
