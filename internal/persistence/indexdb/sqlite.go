package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"vectorrts.dev/internal/sim/world"
)

// SQLiteIndex is a secondary index over match history. Replay files
// remain the source of truth; writes here are async and may be dropped
// under pressure.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqMatchStart reqKind = iota + 1
	reqJoin
	reqResult
)

type req struct {
	kind   reqKind
	match  MatchRow
	join   joinRow
	result world.MatchResult
}

type joinRow struct {
	WorldID  string
	Tick     uint64
	PlayerID string
	Name     string
	Team     int
}

// MatchRow mirrors one row of the matches table.
type MatchRow struct {
	WorldID      string
	StartedAt    string
	TickRateHz   int
	TuningDigest string
	ReplayPath   string
	FinishedAt   string
	FinalTick    uint64
	Winner       int
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
	if err := initSchema(db); err != nil {
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
	// WAL is much faster for append-style workloads.
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

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			world_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			tick_rate_hz INTEGER NOT NULL,
			tuning_digest TEXT NOT NULL,
			replay_path TEXT NOT NULL,
			finished_at TEXT,
			final_tick INTEGER,
			winner INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			world_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			team INTEGER NOT NULL,
			joined_tick INTEGER NOT NULL,
			PRIMARY KEY (world_id, player_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
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

func (s *SQLiteIndex) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind; the replay file has everything.
	}
}

// RecordMatchStart registers a world before its first tick.
func (s *SQLiteIndex) RecordMatchStart(m MatchRow) {
	if m.StartedAt == "" {
		m.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.enqueue(req{kind: reqMatchStart, match: m})
}

// RecordJoin indexes a player joining at the given tick.
func (s *SQLiteIndex) RecordJoin(worldID string, tick uint64, j world.RecordedJoin) {
	s.enqueue(req{kind: reqJoin, join: joinRow{
		WorldID:  worldID,
		Tick:     tick,
		PlayerID: j.PlayerID,
		Name:     j.Name,
		Team:     j.Team,
	}})
}

// RecordResult finalizes a match row. Shaped to plug straight into
// World.SetResultSink.
func (s *SQLiteIndex) RecordResult(r world.MatchResult) {
	s.enqueue(req{kind: reqResult, result: r})
}

func (s *SQLiteIndex) loop() {
	insertMatch, _ := s.db.Prepare(`INSERT OR REPLACE INTO matches(world_id,started_at,tick_rate_hz,tuning_digest,replay_path) VALUES(?,?,?,?,?)`)
	insertPlayer, _ := s.db.Prepare(`INSERT OR REPLACE INTO players(world_id,player_id,name,team,joined_tick) VALUES(?,?,?,?,?)`)
	finishMatch, _ := s.db.Prepare(`UPDATE matches SET finished_at=?, final_tick=?, winner=? WHERE world_id=?`)
	defer func() {
		if insertMatch != nil {
			_ = insertMatch.Close()
		}
		if insertPlayer != nil {
			_ = insertPlayer.Close()
		}
		if finishMatch != nil {
			_ = finishMatch.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqMatchStart:
			if insertMatch == nil {
				continue
			}
			_, _ = insertMatch.Exec(r.match.WorldID, r.match.StartedAt, r.match.TickRateHz, r.match.TuningDigest, r.match.ReplayPath)
		case reqJoin:
			if insertPlayer == nil {
				continue
			}
			_, _ = insertPlayer.Exec(r.join.WorldID, r.join.PlayerID, r.join.Name, r.join.Team, int64(r.join.Tick))
		case reqResult:
			if finishMatch == nil {
				continue
			}
			now := time.Now().UTC().Format(time.RFC3339Nano)
			_, _ = finishMatch.Exec(now, int64(r.result.Tick), r.result.Winner, r.result.WorldID)
		}
	}
}

// Flush blocks until everything queued so far has been written. Test
// and shutdown helper.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	for i := 0; i < 400 && len(s.ch) > 0; i++ {
		time.Sleep(5 * time.Millisecond)
	}
	// The last dequeued request may still be executing.
	time.Sleep(10 * time.Millisecond)
}

// Match returns one indexed match.
func (s *SQLiteIndex) Match(worldID string) (MatchRow, error) {
	var (
		m        MatchRow
		finished sql.NullString
		tick     sql.NullInt64
		winner   sql.NullInt64
	)
	err := s.db.QueryRow(
		`SELECT world_id, started_at, tick_rate_hz, tuning_digest, replay_path, finished_at, final_tick, winner
		 FROM matches WHERE world_id=?`, worldID,
	).Scan(&m.WorldID, &m.StartedAt, &m.TickRateHz, &m.TuningDigest, &m.ReplayPath, &finished, &tick, &winner)
	if err != nil {
		return MatchRow{}, err
	}
	m.FinishedAt = finished.String
	m.FinalTick = uint64(tick.Int64)
	if winner.Valid {
		m.Winner = int(winner.Int64)
	} else {
		m.Winner = world.NoTeam
	}
	return m, nil
}

// RecentMatches lists matches newest first.
func (s *SQLiteIndex) RecentMatches(limit int) ([]MatchRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT world_id, started_at, tick_rate_hz, tuning_digest, replay_path, finished_at, final_tick, winner
		 FROM matches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var (
			m        MatchRow
			finished sql.NullString
			tick     sql.NullInt64
			winner   sql.NullInt64
		)
		if err := rows.Scan(&m.WorldID, &m.StartedAt, &m.TickRateHz, &m.TuningDigest, &m.ReplayPath, &finished, &tick, &winner); err != nil {
			return nil, err
		}
		m.FinishedAt = finished.String
		m.FinalTick = uint64(tick.Int64)
		if winner.Valid {
			m.Winner = int(winner.Int64)
		} else {
			m.Winner = world.NoTeam
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PlayerRow mirrors one row of the players table.
type PlayerRow struct {
	PlayerID   string
	Name       string
	Team       int
	JoinedTick uint64
}

// MatchPlayers lists the players indexed for a match, join order.
func (s *SQLiteIndex) MatchPlayers(worldID string) ([]PlayerRow, error) {
	rows, err := s.db.Query(
		`SELECT player_id, name, team, joined_tick FROM players WHERE world_id=? ORDER BY joined_tick, player_id`, worldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerRow
	for rows.Next() {
		var (
			p    PlayerRow
			tick int64
		)
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Team, &tick); err != nil {
			return nil, err
		}
		p.JoinedTick = uint64(tick)
		out = append(out, p)
	}
	return out, rows.Err()
}
