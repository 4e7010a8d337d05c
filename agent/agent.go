package agent

import (
	"context"

	"monopoly/protocol"
)

// Agent answers decision requests. An implementation must be deterministic
// given the request and its own seeded randomness; wall-clock time must never
// influence a choice, or replays diverge.
type Agent interface {
	// Decide picks an action for one request. The context carries the
	// engine's per-attempt deadline; an error or an expired context counts
	// as an invalid response and consumes the attempt.
	Decide(ctx context.Context, req protocol.DecisionRequest) (protocol.Action, error)

	// Name identifies the agent in logs and artifacts.
	Name() string
}
