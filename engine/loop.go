package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"monopoly/agent"
	"monopoly/config"
	"monopoly/game"
	"monopoly/protocol"
)

// maxAttempts bounds the request protocol: the first attempt plus the fixed
// retry budget. A failure past the budget resolves by fallback.
const maxAttempts = 1 + config.Retries

// decide runs one full decision: request, validate, apply, with the bounded
// retry and the deterministic fallback. The request and resolution both enter
// the event log; the attempt trail goes to the sink only.
func (e *Engine) decide(ctx context.Context) error {
	pending := *e.state.PendingDecision()
	menu := e.state.LegalActions()
	seated := e.agents[pending.Seat]
	player := e.state.Players[pending.Seat].Name
	turn, phase := e.state.Turn, e.state.Phase.String()

	e.decisions++
	point := protocol.DecisionPoint{
		SchemaVersion: protocol.SchemaVersion,
		DecisionID:    fmt.Sprintf("d-%04d", e.decisions),
		Type:          string(pending.Type),
		Player:        player,
		Turn:          turn,
		Snapshot:      e.snapshot(),
		LegalActions:  menu,
	}

	if err := e.logEngineEvent(turn, phase, game.EventDecisionRequested, game.DecisionRequestedPayload{
		DecisionID: point.DecisionID,
		Type:       point.Type,
		Player:     player,
	}); err != nil {
		return err
	}

	var attempts []protocol.AttemptRecord
	var feedback *protocol.Feedback
	var applied protocol.Action
	outcome := protocol.OutcomeFallback
	resolved := false

	for attempt := 1; attempt <= maxAttempts && !resolved; attempt++ {
		act, rec := e.request(ctx, seated, protocol.DecisionRequest{
			Point:    point,
			Attempt:  attempt,
			Feedback: feedback,
		})
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.Valid {
			switch err := e.state.Apply(act); {
			case err == nil:
				applied = act
				resolved = true
				outcome = protocol.OutcomeAccepted
				if attempt > 1 {
					outcome = protocol.OutcomeRetried
				}
			default:
				var verr *protocol.ValidationError
				if !errors.As(err, &verr) {
					return fmt.Errorf("decision %s: %w", point.DecisionID, err)
				}
				rec.Valid = false
				rec.Issues = verr.Issues
			}
		}
		attempts = append(attempts, rec)
		if !resolved {
			feedback = &protocol.Feedback{Rejected: act, Issues: rec.Issues}
		}
	}

	if !resolved {
		fb := game.Fallback(pending.Type, menu)
		fb.DecisionID = point.DecisionID
		if err := e.state.Apply(fb); err != nil {
			return fmt.Errorf("decision %s: fallback %q rejected: %w", point.DecisionID, fb.Name, err)
		}
		applied = fb
		e.logger.Warn().Msgf("run %s: decision %s resolved by fallback %q for %s",
			e.state.RunID, point.DecisionID, fb.Name, player)
	}

	if err := e.logEngineEvent(turn, phase, game.EventDecisionResolved, game.DecisionResolvedPayload{
		DecisionID: point.DecisionID,
		Action:     applied.Name,
		Args:       applied.Args,
	}); err != nil {
		return err
	}

	record := protocol.DecisionRecord{
		SchemaVersion: protocol.SchemaVersion,
		RunID:         e.state.RunID,
		DecisionID:    point.DecisionID,
		Turn:          point.Turn,
		Type:          point.Type,
		Player:        player,
		Outcome:       outcome,
		Resolved:      applied,
		Attempts:      attempts,
	}
	if err := e.sink.WriteDecision(record); err != nil {
		return fmt.Errorf("persist decision %s: %w", point.DecisionID, err)
	}
	return nil
}

// request performs one round trip to the agent and schema-validates the
// response. A transport error or timeout is recorded exactly like an invalid
// response.
func (e *Engine) request(ctx context.Context, seated agent.Agent, req protocol.DecisionRequest) (protocol.Action, protocol.AttemptRecord) {
	rctx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	act, err := seated.Decide(rctx, req)
	rec := protocol.AttemptRecord{
		Attempt:   req.Attempt,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.TimedOut = errors.Is(err, context.DeadlineExceeded)
		rec.Err = err.Error()
		rec.Issues = []protocol.Issue{{Reason: "no usable response: " + err.Error()}}
		return act, rec
	}
	if raw, mErr := json.Marshal(act); mErr == nil {
		rec.Response = raw
	}
	if verr := protocol.ValidateAction(req.Point, act); verr != nil {
		rec.Issues = verr.Issues
		return act, rec
	}
	rec.Valid = true
	return act, rec
}

// logEngineEvent appends, persists, and broadcasts one engine-authored event,
// stamped with the turn and phase the decision was posted in.
func (e *Engine) logEngineEvent(turn int, phase, eventType string, payload any) error {
	events := e.log.Append([]protocol.Event{{
		SchemaVersion: protocol.SchemaVersion,
		Turn:          turn,
		Phase:         phase,
		Actor:         protocol.ActorEngine,
		Type:          eventType,
		Payload:       payload,
	}})
	for _, ev := range events {
		if err := e.sink.WriteEvent(ev); err != nil {
			return fmt.Errorf("persist event seq %d: %w", ev.Seq, err)
		}
		e.cast.BroadcastEvent(ev)
	}
	return nil
}
