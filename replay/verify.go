package replay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"monopoly/agent"
	"monopoly/artifacts"
	"monopoly/engine"
	"monopoly/game"
)

// Report is the outcome of one replay verification.
type Report struct {
	RunID      string
	Events     int
	Matched    bool
	Divergence *Divergence
}

// Verify re-runs a stored game from its seed and resolved action sequence and
// compares the regenerated event log against the recorded one. Decisions were
// recorded in engine order, so a single scripted feed shared by every seat
// hands each decision its original resolution.
func Verify(ctx context.Context, store *artifacts.Store, runID string) (*Report, error) {
	meta, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	actions, err := store.ListActions(ctx, runID)
	if err != nil {
		return nil, err
	}
	recorded, err := store.ListEvents(ctx, runID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(recorded) == 0 {
		return nil, fmt.Errorf("run %s has no recorded events", runID)
	}

	script := agent.NewScripted("replay", actions)
	agents := make([]agent.Agent, len(meta.Players))
	for i := range agents {
		agents[i] = script
	}

	state := game.New(meta.RunID, meta.Players, meta.Seed)
	opts := []engine.Option{engine.WithLogger(zerolog.Nop())}
	if meta.MaxTurns > 0 {
		opts = append(opts, engine.WithMaxTurns(meta.MaxTurns))
	}
	eng, err := engine.New(state, agents, opts...)
	if err != nil {
		return nil, err
	}
	result, err := eng.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay run %s: %w", runID, err)
	}
	if n := script.Remaining(); n > 0 {
		return nil, fmt.Errorf("replay run %s: %d recorded actions left unconsumed", runID, n)
	}

	div, err := Compare(recorded, result.Events)
	if err != nil {
		return nil, err
	}
	return &Report{
		RunID:      runID,
		Events:     len(recorded),
		Matched:    div == nil,
		Divergence: div,
	}, nil
}
