// Package experiments runs batches of games and writes their metrics out as
// CSV for offline analysis.
package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/agent"
	"monopoly/engine"
	"monopoly/experiments/metrics"
	"monopoly/game"
)

// Batch describes one experiment: the seats, how many games they play, and
// where the results go.
type Batch struct {
	Name    string
	Seats   []metrics.SeatConfig
	Games   int
	Seed    uint64
	Timeout time.Duration
	OutDir  string
}

// Run plays the batch. Every game gets its own seed derived from the
// experiment seed, so the whole batch reproduces from one number.
func Run(ctx context.Context, b Batch) error {
	count := 0
	gameRecords := []metrics.GameRecord{}
	decisionRecords := []metrics.DecisionRecord{}

	log.Info().Msgf("starting %s experiment...", b.Name)

	for i := 0; i < b.Games; i++ {
		gameSeed := game.DeriveSeed(b.Seed, uint64(i+1))
		runID := fmt.Sprintf("%s-%03d", b.Name, i+1)

		log.Info().Msgf("starting game %d of %d with seed %d...", i+1, b.Games, gameSeed)

		record, decisions, err := runGame(ctx, i+1, runID, gameSeed, b.Seats, b.Timeout)
		if err != nil {
			return fmt.Errorf("game %d of %s: %w", i+1, b.Name, err)
		}
		count++
		gameRecords = append(gameRecords, record)
		decisionRecords = append(decisionRecords, decisions...)

		log.Info().Msgf("completed game %d of %d with winner: %s after %d turns", i+1, b.Games, record.Winner, record.Turns)
	}

	log.Info().Msgf("completed %s experiment: %d games", b.Name, count)

	writer, err := metrics.NewWriter(b.OutDir, b.Name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteSeatConfigs(b.Seats); err != nil {
		return fmt.Errorf("failed to store seat configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteDecisionRecords(decisionRecords); err != nil {
		return fmt.Errorf("failed to write decision records: %w", err)
	}
	log.Info().Msgf("stored results under %s", writer.BaseDir())
	return nil
}

// runGame executes a single game and returns its metrics.
func runGame(ctx context.Context, id int, runID string, seed uint64, seats []metrics.SeatConfig, timeout time.Duration) (metrics.GameRecord, []metrics.DecisionRecord, error) {
	names := make([]string, len(seats))
	agents := make([]agent.Agent, len(seats))
	for i, seat := range seats {
		names[i] = seat.Name
		agents[i] = newAgent(seat, seed)
	}

	collector := metrics.NewCollector(id)
	state := game.New(runID, names, seed)
	eng, err := engine.New(state, agents,
		engine.WithSink(collector),
		engine.WithTimeout(timeout),
		engine.WithLogger(zerolog.Nop()))
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	start := time.Now()
	result, err := eng.Run(ctx)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	end := time.Now()

	record := metrics.GameRecord{
		ID:    id,
		RunID: runID,
		Seed:  seed,
		GameMetric: metrics.GameMetric{
			Winner:    result.Winner,
			Turns:     result.Turns,
			Events:    result.Seq,
			Decisions: result.Decisions,
			Retried:   collector.Retried(),
			Fallbacks: collector.Fallbacks(),
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		},
	}
	return record, collector.Decisions(), nil
}

func newAgent(seat metrics.SeatConfig, seed uint64) agent.Agent {
	switch seat.Kind {
	case "random":
		return agent.NewRandom(seat.Name, game.DeriveSeed(seed, game.StreamAgent+uint64(seat.Seat)))
	case "http":
		return agent.NewHTTP(seat.Name, seat.URL)
	default:
		return agent.NewGreedy(seat.Name)
	}
}
