package log

import (
	"errors"
	"io"
	"testing"

	"vectorrts.dev/internal/protocol"
	"vectorrts.dev/internal/sim/world"
)

func TestReplay_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	l, err := OpenReplayLogger(dir, ReplayHeader{
		WorldID:      "match-1",
		TickRateHz:   30,
		MaxStep:      1.0 / 30.0,
		TuningDigest: "abc123",
	})
	if err != nil {
		t.Fatalf("open logger: %v", err)
	}

	entries := []world.TickLogEntry{
		{
			Tick:   1,
			Joins:  []world.RecordedJoin{{PlayerID: "P000001", Name: "alice", Team: 0}},
			Digest: "d1",
		},
		{
			Tick: 2,
			Commands: []world.RecordedCommand{{
				PlayerID: "P000001",
				Commands: []protocol.CommandReq{{Kind: protocol.CmdMove, UnitIDs: []string{"U000001"}, Point: &[2]float64{100, 200}}},
			}},
			Digest: "d2",
		},
		{Tick: 3, Leaves: []string{"P000001"}, Digest: "d3"},
	}
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write tick %d: %v", e.Tick, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close logger: %v", err)
	}

	r, err := OpenReplayReader(l.Path())
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()

	hdr := r.Header()
	if hdr.WorldID != "match-1" || hdr.TickRateHz != 30 || hdr.TuningDigest != "abc123" {
		t.Fatalf("header mismatch: %+v", hdr)
	}
	if hdr.StartedAt == "" {
		t.Errorf("started_at not stamped")
	}

	for i, want := range entries {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if got.Tick != want.Tick || got.Digest != want.Digest {
			t.Fatalf("entry %d = %+v, want %+v", i, got, want)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF at end, got %v", err)
	}

	// Replayed commands keep their payloads intact.
	r2, err := OpenReplayReader(l.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	_, _ = r2.Next()
	e2, err := r2.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	cmd := e2.Commands[0].Commands[0]
	if cmd.Kind != protocol.CmdMove || cmd.Point == nil || cmd.Point[0] != 100 {
		t.Fatalf("command payload mangled: %+v", cmd)
	}
}

func TestReplay_EmptyFileRejected(t *testing.T) {
	dir := t.TempDir()
	w, err := NewJSONLZstdWriter(ReplayPath(dir, "empty"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := OpenReplayReader(ReplayPath(dir, "empty")); err == nil {
		t.Fatalf("expected error for headerless replay")
	}
}

func TestReplay_WriteAfterCloseFails(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenReplayLogger(dir, ReplayHeader{WorldID: "m"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.WriteTick(world.TickLogEntry{Tick: 1}); err == nil {
		t.Fatalf("write after close must fail")
	}
}
