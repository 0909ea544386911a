package indexdb

import (
	"path/filepath"
	"testing"

	"vectorrts.dev/internal/sim/world"
)

func openTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIndex_MatchLifecycle(t *testing.T) {
	s := openTestIndex(t)

	s.RecordMatchStart(MatchRow{
		WorldID:      "m1",
		TickRateHz:   30,
		TuningDigest: "abc",
		ReplayPath:   "/data/replays/m1.jsonl.zst",
	})
	s.RecordJoin("m1", 1, world.RecordedJoin{PlayerID: "P000001", Name: "alice", Team: 0})
	s.RecordJoin("m1", 4, world.RecordedJoin{PlayerID: "P000002", Name: "bob", Team: 1})
	s.Flush()

	m, err := s.Match("m1")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if m.TickRateHz != 30 || m.TuningDigest != "abc" || m.ReplayPath == "" {
		t.Fatalf("bad match row: %+v", m)
	}
	if m.FinishedAt != "" {
		t.Fatalf("match already finished: %+v", m)
	}
	if m.Winner != world.NoTeam {
		t.Fatalf("unfinished match has winner %d", m.Winner)
	}

	s.RecordResult(world.MatchResult{WorldID: "m1", Tick: 5400, Winner: 1})
	s.Flush()

	m, err = s.Match("m1")
	if err != nil {
		t.Fatalf("match after result: %v", err)
	}
	if m.FinishedAt == "" || m.FinalTick != 5400 || m.Winner != 1 {
		t.Fatalf("result not applied: %+v", m)
	}

	players, err := s.MatchPlayers("m1")
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(players) != 2 || players[0].Name != "alice" || players[1].Team != 1 {
		t.Fatalf("bad player rows: %+v", players)
	}
}

func TestIndex_RecentMatchesOrder(t *testing.T) {
	s := openTestIndex(t)

	s.RecordMatchStart(MatchRow{WorldID: "old", StartedAt: "2026-01-01T00:00:00Z", TickRateHz: 30, TuningDigest: "d", ReplayPath: "p"})
	s.RecordMatchStart(MatchRow{WorldID: "new", StartedAt: "2026-02-01T00:00:00Z", TickRateHz: 30, TuningDigest: "d", ReplayPath: "p"})
	s.Flush()

	got, err := s.RecentMatches(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].WorldID != "new" || got[1].WorldID != "old" {
		t.Fatalf("wrong order: %+v", got)
	}
}

func TestIndex_WriteAfterCloseIsNoop(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic on the closed channel.
	s.RecordMatchStart(MatchRow{WorldID: "late"})
	s.RecordResult(world.MatchResult{WorldID: "late"})
}

func TestIndex_EmptyPathRejected(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
