package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected %s to exist, got %v", filepath.Base(path), err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read %s: %v", filepath.Base(path), err)
	}
	return rows
}

func TestNewWriter_CreatesTimestampedDir(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "baseline")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	prefix := filepath.Join(root, "baseline")
	if !strings.HasPrefix(w.BaseDir(), prefix) {
		t.Errorf("expected base dir under %s, got %s", prefix, w.BaseDir())
	}
	info, err := os.Stat(w.BaseDir())
	if err != nil || !info.IsDir() {
		t.Errorf("expected base dir to exist, got %v", err)
	}
}

func TestWriter_SeatConfigs(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "baseline")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	configs := []SeatConfig{
		{Seat: 0, Name: "alice", Kind: "greedy"},
		{Seat: 1, Name: "carol", Kind: "http", URL: "http://localhost:9000"},
	}

	if err := w.WriteSeatConfigs(configs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows := readCSV(t, filepath.Join(w.BaseDir(), "seat_configs.csv"))
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	wantHeader := []string{"seat", "name", "kind", "url"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header column %d: expected %q, got %q", i, col, rows[0][i])
		}
	}
	if rows[1][1] != "alice" || rows[1][2] != "greedy" {
		t.Errorf("unexpected seat row: %v", rows[1])
	}
	if rows[2][3] != "http://localhost:9000" {
		t.Errorf("http seat should keep its url, got %v", rows[2])
	}
}

func TestWriter_GameRecords(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "baseline")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	record := GameRecord{
		ID:    1,
		RunID: "baseline-001",
		Seed:  42,
		GameMetric: GameMetric{
			Winner:    "alice",
			Turns:     57,
			Events:    911,
			Decisions: 120,
			Retried:   2,
			Fallbacks: 1,
			StartTime: start,
			EndTime:   start.Add(1500 * time.Millisecond),
			Duration:  1500 * time.Millisecond,
		},
	}

	if err := w.WriteGameRecords([]GameRecord{record}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows := readCSV(t, filepath.Join(w.BaseDir(), "game_records.csv"))
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if len(rows[0]) != 12 {
		t.Errorf("expected 12 columns, got %d: %v", len(rows[0]), rows[0])
	}
	row := rows[1]
	if row[0] != "1" || row[1] != "baseline-001" || row[2] != "42" {
		t.Errorf("identity columns wrong: %v", row[:3])
	}
	if row[3] != "alice" || row[4] != "57" || row[5] != "911" || row[6] != "120" {
		t.Errorf("outcome columns wrong: %v", row[3:7])
	}
	if row[7] != "2" || row[8] != "1" {
		t.Errorf("retry columns wrong: %v", row[7:9])
	}
	if row[9] != "2026-08-01T10:00:00Z" {
		t.Errorf("expected RFC3339 start time, got %q", row[9])
	}
	if row[11] != "1.5s" {
		t.Errorf("expected duration 1.5s, got %q", row[11])
	}
}

func TestWriter_DecisionRecords(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "baseline")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	record := DecisionRecord{
		Game: 1, Ordinal: 4, Turn: 2, Type: "buy_or_auction",
		Player: "bob", Outcome: "accepted", Attempts: 1, ElapsedMS: 12,
	}

	if err := w.WriteDecisionRecords([]DecisionRecord{record}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows := readCSV(t, filepath.Join(w.BaseDir(), "decision_records.csv"))
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	wantHeader := "game,ordinal,turn,type,player,outcome,attempts,elapsed_ms"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Errorf("unexpected header: %q", got)
	}
	want := []string{"1", "4", "2", "buy_or_auction", "bob", "accepted", "1", "12"}
	for i, col := range want {
		if rows[1][i] != col {
			t.Errorf("column %d: expected %q, got %q", i, col, rows[1][i])
		}
	}
}
