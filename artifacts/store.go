package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"monopoly/protocol"
)

// schema holds every run artifact: the event log, per-turn snapshots, and the
// per-decision audit trail. All tables are append-only; primary keys turn any
// accidental overwrite into an insert error instead of silent data loss.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	seed        INTEGER NOT NULL,
	players     TEXT NOT NULL,
	max_turns   INTEGER NOT NULL DEFAULT 0,
	started_ms  INTEGER NOT NULL,
	finished_ms INTEGER,
	winner      TEXT,
	turns       INTEGER
);

CREATE TABLE IF NOT EXISTS events (
	run_id     TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	turn_index INTEGER NOT NULL,
	phase      TEXT NOT NULL,
	actor      TEXT NOT NULL,
	type       TEXT NOT NULL,
	payload    TEXT,
	ts_ms      INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS snapshots (
	run_id     TEXT NOT NULL,
	turn_index INTEGER NOT NULL,
	seq        INTEGER NOT NULL,
	state      TEXT NOT NULL,
	PRIMARY KEY (run_id, turn_index)
);

CREATE TABLE IF NOT EXISTS decisions (
	run_id        TEXT NOT NULL,
	ordinal       INTEGER NOT NULL,
	decision_id   TEXT NOT NULL,
	turn_index    INTEGER NOT NULL,
	decision_type TEXT NOT NULL,
	player        TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	resolved      TEXT NOT NULL,
	PRIMARY KEY (run_id, decision_id)
);

CREATE TABLE IF NOT EXISTS attempts (
	run_id      TEXT NOT NULL,
	decision_id TEXT NOT NULL,
	attempt     INTEGER NOT NULL,
	valid       INTEGER NOT NULL,
	timed_out   INTEGER NOT NULL,
	error       TEXT,
	issues      TEXT,
	response    TEXT,
	elapsed_ms  INTEGER NOT NULL,
	PRIMARY KEY (run_id, decision_id, attempt)
);
`

// Store is the SQLite-backed artifact store. One file can hold any number of
// runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the artifact database at the given path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("artifact path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database. Nil-safe so callers can defer it on
// every startup path.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunMeta is the run-level registry row. MaxTurns is stored so a replay can
// reproduce a run that ended on the turn cap.
type RunMeta struct {
	RunID      string
	Seed       uint64
	Players    []string
	MaxTurns   int
	StartedMS  int64
	FinishedMS int64
	Winner     string
	Turns      int
}

func (s *Store) CreateRun(ctx context.Context, meta RunMeta) error {
	players, err := json.Marshal(meta.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, seed, players, max_turns, started_ms) VALUES (?, ?, ?, ?, ?)`,
		meta.RunID, int64(meta.Seed), string(players), meta.MaxTurns, meta.StartedMS)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", meta.RunID, err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, runID, winner string, turns int, finishedMS int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_ms = ?, winner = ?, turns = ? WHERE run_id = ?`,
		finishedMS, winner, turns, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (RunMeta, error) {
	var meta RunMeta
	var seed int64
	var players string
	var finished sql.NullInt64
	var winner sql.NullString
	var turns sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, seed, players, max_turns, started_ms, finished_ms, winner, turns FROM runs WHERE run_id = ?`,
		runID).Scan(&meta.RunID, &seed, &players, &meta.MaxTurns, &meta.StartedMS, &finished, &winner, &turns)
	if err != nil {
		return RunMeta{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	meta.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(players), &meta.Players); err != nil {
		return RunMeta{}, fmt.Errorf("decode players for run %s: %w", runID, err)
	}
	meta.FinishedMS = finished.Int64
	meta.Winner = winner.String
	meta.Turns = int(turns.Int64)
	return meta, nil
}

func (s *Store) AppendEvent(ctx context.Context, runID string, ev protocol.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for seq %d: %w", ev.Seq, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (run_id, seq, turn_index, phase, actor, type, payload, ts_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, int64(ev.Seq), ev.Turn, ev.Phase, ev.Actor, ev.Type, string(payload), ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert event seq %d: %w", ev.Seq, err)
	}
	return nil
}

func (s *Store) AppendSnapshot(ctx context.Context, runID string, snap protocol.Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot turn %d: %w", snap.Turn, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, turn_index, seq, state) VALUES (?, ?, ?, ?)`,
		runID, snap.Turn, int64(snap.Seq), string(state))
	if err != nil {
		return fmt.Errorf("insert snapshot turn %d: %w", snap.Turn, err)
	}
	return nil
}

// AppendDecision stores the decision row and its attempt trail in one
// transaction. Ordinal is the 1-based position of the decision in the run.
func (s *Store) AppendDecision(ctx context.Context, runID string, ordinal int, rec protocol.DecisionRecord) error {
	resolved, err := json.Marshal(rec.Resolved)
	if err != nil {
		return fmt.Errorf("encode resolved action %s: %w", rec.DecisionID, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO decisions (run_id, ordinal, decision_id, turn_index, decision_type, player, outcome, resolved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, ordinal, rec.DecisionID, rec.Turn, rec.Type, rec.Player, string(rec.Outcome), string(resolved))
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", rec.DecisionID, err)
	}
	for _, att := range rec.Attempts {
		issues, err := json.Marshal(att.Issues)
		if err != nil {
			return fmt.Errorf("encode issues for %s attempt %d: %w", rec.DecisionID, att.Attempt, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempts (run_id, decision_id, attempt, valid, timed_out, error, issues, response, elapsed_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.DecisionID, att.Attempt, att.Valid, att.TimedOut, att.Err, string(issues), string(att.Response), att.ElapsedMS)
		if err != nil {
			return fmt.Errorf("insert attempt %d for %s: %w", att.Attempt, rec.DecisionID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision %s: %w", rec.DecisionID, err)
	}
	return nil
}

// ListEvents pages through a run's event log in sequence order.
func (s *Store) ListEvents(ctx context.Context, runID string, afterSeq uint64, limit int) ([]protocol.Event, error) {
	query := `SELECT seq, turn_index, phase, actor, type, payload, ts_ms FROM events
		 WHERE run_id = ? AND seq > ? ORDER BY seq`
	args := []any{runID, int64(afterSeq)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", runID, err)
	}
	defer rows.Close()

	var events []protocol.Event
	for rows.Next() {
		var ev protocol.Event
		var seq int64
		var payload sql.NullString
		if err := rows.Scan(&seq, &ev.Turn, &ev.Phase, &ev.Actor, &ev.Type, &payload, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.SchemaVersion = protocol.SchemaVersion
		ev.Seq = uint64(seq)
		if payload.Valid && payload.String != "null" {
			var decoded any
			if err := json.Unmarshal([]byte(payload.String), &decoded); err != nil {
				return nil, fmt.Errorf("decode payload seq %d: %w", ev.Seq, err)
			}
			ev.Payload = decoded
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events for %s: %w", runID, err)
	}
	return events, nil
}

// LatestSnapshot returns the most recent stored snapshot for a run.
func (s *Store) LatestSnapshot(ctx context.Context, runID string) (protocol.Snapshot, error) {
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM snapshots WHERE run_id = ? ORDER BY seq DESC LIMIT 1`, runID).Scan(&state)
	if err != nil {
		return protocol.Snapshot{}, fmt.Errorf("load snapshot for %s: %w", runID, err)
	}
	var snap protocol.Snapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		return protocol.Snapshot{}, fmt.Errorf("decode snapshot for %s: %w", runID, err)
	}
	return snap, nil
}

// ListActions returns the resolved action of every decision in run order,
// which together with the seed replays the full event log.
func (s *Store) ListActions(ctx context.Context, runID string) ([]protocol.Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resolved FROM decisions WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("list actions for %s: %w", runID, err)
	}
	defer rows.Close()

	var actions []protocol.Action
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		var act protocol.Action
		if err := json.Unmarshal([]byte(raw), &act); err != nil {
			return nil, fmt.Errorf("decode action: %w", err)
		}
		actions = append(actions, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read actions for %s: %w", runID, err)
	}
	return actions, nil
}

// ListDecisions returns a run's decision audit rows in run order, attempts
// included.
func (s *Store) ListDecisions(ctx context.Context, runID string) ([]protocol.DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT decision_id, turn_index, decision_type, player, outcome, resolved
		 FROM decisions WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("list decisions for %s: %w", runID, err)
	}
	defer rows.Close()

	var records []protocol.DecisionRecord
	for rows.Next() {
		rec := protocol.DecisionRecord{SchemaVersion: protocol.SchemaVersion, RunID: runID}
		var outcome, resolved string
		if err := rows.Scan(&rec.DecisionID, &rec.Turn, &rec.Type, &rec.Player, &outcome, &resolved); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.Outcome = protocol.Outcome(outcome)
		if err := json.Unmarshal([]byte(resolved), &rec.Resolved); err != nil {
			return nil, fmt.Errorf("decode resolved action %s: %w", rec.DecisionID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read decisions for %s: %w", runID, err)
	}
	for i := range records {
		attempts, err := s.listAttempts(ctx, runID, records[i].DecisionID)
		if err != nil {
			return nil, err
		}
		records[i].Attempts = attempts
	}
	return records, nil
}

func (s *Store) listAttempts(ctx context.Context, runID, decisionID string) ([]protocol.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt, valid, timed_out, error, issues, response, elapsed_ms
		 FROM attempts WHERE run_id = ? AND decision_id = ? ORDER BY attempt`, runID, decisionID)
	if err != nil {
		return nil, fmt.Errorf("list attempts for %s: %w", decisionID, err)
	}
	defer rows.Close()

	var attempts []protocol.AttemptRecord
	for rows.Next() {
		var att protocol.AttemptRecord
		var issues, response sql.NullString
		var errText sql.NullString
		if err := rows.Scan(&att.Attempt, &att.Valid, &att.TimedOut, &errText, &issues, &response, &att.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		att.Err = errText.String
		if issues.Valid && issues.String != "null" {
			if err := json.Unmarshal([]byte(issues.String), &att.Issues); err != nil {
				return nil, fmt.Errorf("decode issues: %w", err)
			}
		}
		if response.Valid && response.String != "" {
			att.Response = json.RawMessage(response.String)
		}
		attempts = append(attempts, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read attempts for %s: %w", decisionID, err)
	}
	return attempts, nil
}

// VerifySequence checks the stored log for gaps: seq must run 1..n densely.
func (s *Store) VerifySequence(ctx context.Context, runID string) error {
	var count, max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(seq) FROM events WHERE run_id = ?`, runID).Scan(&count, &max)
	if err != nil {
		return fmt.Errorf("inspect log for %s: %w", runID, err)
	}
	if count.Int64 != max.Int64 {
		return fmt.Errorf("event log for %s has gaps: %d rows, max seq %d", runID, count.Int64, max.Int64)
	}
	return nil
}
