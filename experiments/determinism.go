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
	"monopoly/protocol"
	"monopoly/replay"
)

// RunDeterminismCheck plays each seed twice with identical seats and fails on
// the first canonical log divergence. A clean pass is the reproducibility
// guarantee the benchmark rests on.
func RunDeterminismCheck(ctx context.Context, games int, seed uint64) error {
	seats := []metrics.SeatConfig{
		{Seat: 0, Name: "alice", Kind: "greedy"},
		{Seat: 1, Name: "bob", Kind: "random"},
	}

	log.Info().Msgf("starting determinism check: %d seeds", games)

	start := time.Now()
	for i := 0; i < games; i++ {
		gameSeed := game.DeriveSeed(seed, uint64(i+1))
		runID := fmt.Sprintf("determinism-%03d", i+1)

		first, err := playOnce(ctx, runID, gameSeed, seats)
		if err != nil {
			return fmt.Errorf("seed %d first pass: %w", gameSeed, err)
		}
		second, err := playOnce(ctx, runID, gameSeed, seats)
		if err != nil {
			return fmt.Errorf("seed %d second pass: %w", gameSeed, err)
		}

		div, err := replay.Compare(first, second)
		if err != nil {
			return fmt.Errorf("seed %d compare: %w", gameSeed, err)
		}
		if div != nil {
			return fmt.Errorf("seed %d diverged at %s", gameSeed, div)
		}
		log.Info().Msgf("seed %d reproduced %d events", gameSeed, len(first))
	}

	log.Info().Msgf("determinism check passed in %s", time.Since(start))
	return nil
}

func playOnce(ctx context.Context, runID string, seed uint64, seats []metrics.SeatConfig) ([]protocol.Event, error) {
	names := make([]string, len(seats))
	agents := make([]agent.Agent, len(seats))
	for i, seat := range seats {
		names[i] = seat.Name
		agents[i] = newAgent(seat, seed)
	}
	state := game.New(runID, names, seed)
	eng, err := engine.New(state, agents, engine.WithLogger(zerolog.Nop()))
	if err != nil {
		return nil, err
	}
	result, err := eng.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Events, nil
}
