package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer lays experiment results out as CSV files in a timestamped folder.
type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	if root == "" {
		root = "experiments"
	}
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// BaseDir is where this writer puts its files.
func (w *Writer) BaseDir() string {
	return w.baseDir
}

func (w *Writer) WriteSeatConfigs(configs []SeatConfig) error {
	path := filepath.Join(w.baseDir, "seat_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seat configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"seat", "name", "kind", "url"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write seat configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.Seat),
			config.Name,
			config.Kind,
			config.URL,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write seat config row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "run_id", "seed", "winner", "turns", "events", "decisions", "retried", "fallbacks", "start_time", "end_time", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.RunID,
			strconv.FormatUint(record.Seed, 10),
			record.Winner,
			strconv.Itoa(record.Turns),
			strconv.FormatUint(record.Events, 10),
			strconv.Itoa(record.Decisions),
			strconv.Itoa(record.Retried),
			strconv.Itoa(record.Fallbacks),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteDecisionRecords(records []DecisionRecord) error {
	path := filepath.Join(w.baseDir, "decision_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create decision records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"game", "ordinal", "turn", "type", "player", "outcome", "attempts", "elapsed_ms"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write decision records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Ordinal),
			strconv.Itoa(record.Turn),
			record.Type,
			record.Player,
			record.Outcome,
			strconv.Itoa(record.Attempts),
			strconv.FormatInt(record.ElapsedMS, 10),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write decision record row: %w", err)
		}
	}

	return nil
}
