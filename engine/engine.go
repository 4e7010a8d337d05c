package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/agent"
	"monopoly/game"
	"monopoly/protocol"
)

// DefaultMaxTurns caps a run that never produces a winner.
const DefaultMaxTurns = 500

// Engine drives one run: it advances the state machine, runs the decision
// control loop against the seated agents, and commits every resulting event
// to the log, the sink, and the broadcaster. Strictly single-threaded per
// run.
type Engine struct {
	state     *game.State
	agents    []agent.Agent
	log       *Log
	sink      Sink
	cast      Broadcaster
	logger    zerolog.Logger
	timeout   time.Duration
	maxTurns  int
	decisions int
	lastSnap  int // turn index of the last persisted snapshot
}

type Option func(*Engine)

// WithTimeout bounds each agent request. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxTurns overrides the turn cap.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		e.maxTurns = n
	}
}

// WithSink routes run artifacts to the given sink.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithBroadcaster streams committed events and snapshots to observers.
func WithBroadcaster(b Broadcaster) Option {
	return func(e *Engine) {
		e.cast = b
	}
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New seats one agent per player.
func New(state *game.State, agents []agent.Agent, options ...Option) (*Engine, error) {
	if len(agents) != len(state.Players) {
		return nil, fmt.Errorf("engine: %d agents for %d players", len(agents), len(state.Players))
	}
	if len(agents) < 2 {
		return nil, errors.New("engine: need at least two players")
	}
	e := &Engine{
		state:    state,
		agents:   agents,
		log:      NewLog(),
		sink:     NopSink{},
		cast:     NopBroadcaster{},
		logger:   log.Logger,
		maxTurns: DefaultMaxTurns,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// Result summarizes a finished run.
type Result struct {
	Winner    string
	Turns     int
	Seq       uint64
	Decisions int
	Events    []protocol.Event
}

// Run executes the game loop until the run terminates or the context is
// cancelled. Cancellation never leaves a partial transition: the log and the
// last committed snapshot stay consistent.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.logger.Info().Msgf("run %s: %d players, seed %d", e.state.RunID, len(e.state.Players), e.state.Seed)

	for !e.state.GameOver() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if e.state.Phase == game.PhaseStartTurn && e.state.Turn > e.maxTurns {
			e.state.EndByTurnLimit()
			if err := e.commit(); err != nil {
				return nil, err
			}
			break
		}

		switch e.state.Phase {
		case game.PhaseStartTurn:
			e.state.BeginTurn()
		case game.PhaseResolvingMove:
			e.state.RollAndMove()
		case game.PhaseAwaitingDecision:
			if err := e.decide(ctx); err != nil {
				return nil, err
			}
		case game.PhaseEndTurn:
			if err := e.persistSnapshot(); err != nil {
				return nil, err
			}
			e.state.FinishTurn()
		}
		if err := e.commit(); err != nil {
			return nil, err
		}
	}

	if err := e.persistSnapshot(); err != nil {
		return nil, err
	}
	result := &Result{
		Winner:    e.state.Winner,
		Turns:     e.state.Turn,
		Seq:       e.log.Seq(),
		Decisions: e.decisions,
		Events:    e.log.Events(),
	}
	e.logger.Info().Msgf("run %s: winner %s after %d turns, %d events, %d decisions",
		e.state.RunID, result.Winner, result.Turns, result.Seq, result.Decisions)
	return result, nil
}

// State exposes the authoritative state, for tests and replay verification.
func (e *Engine) State() *game.State {
	return e.state
}

// Events returns the committed log so far.
func (e *Engine) Events() []protocol.Event {
	return e.log.Events()
}

// commit drains events queued by the last transition into the log, persists
// and broadcasts them, audits invariants, and broadcasts the fresh snapshot.
func (e *Engine) commit() error {
	events := e.log.Append(e.state.TakeEvents())
	for _, ev := range events {
		if err := e.sink.WriteEvent(ev); err != nil {
			return fmt.Errorf("persist event seq %d: %w", ev.Seq, err)
		}
		e.cast.BroadcastEvent(ev)
	}
	if err := checkInvariants(e.state, e.log.Seq()); err != nil {
		return err
	}
	if len(events) > 0 {
		e.cast.BroadcastSnapshot(e.snapshot())
	}
	return nil
}

// persistSnapshot writes the canonical per-turn snapshot, once per turn.
func (e *Engine) persistSnapshot() error {
	if e.state.Turn == e.lastSnap {
		return nil
	}
	e.lastSnap = e.state.Turn
	if err := e.sink.WriteSnapshot(e.snapshot()); err != nil {
		return fmt.Errorf("persist snapshot turn %d: %w", e.state.Turn, err)
	}
	return nil
}

func (e *Engine) snapshot() protocol.Snapshot {
	snap := e.state.Snapshot()
	snap.Seq = e.log.Seq()
	return snap
}
