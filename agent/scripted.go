package agent

import (
	"context"
	"fmt"

	"monopoly/protocol"
)

// Scripted replays a fixed action sequence, one entry per decision request.
// The replay verifier builds one per seat from a recorded run; tests use it
// to drive exact scenarios. Running out of script is an error, which the
// engine resolves by fallback.
type Scripted struct {
	name    string
	actions []protocol.Action
	next    int
}

func NewScripted(name string, actions []protocol.Action) *Scripted {
	return &Scripted{name: name, actions: actions}
}

func (a *Scripted) Name() string { return a.name }

// Remaining reports how much of the script is left unplayed.
func (a *Scripted) Remaining() int {
	return len(a.actions) - a.next
}

func (a *Scripted) Decide(_ context.Context, req protocol.DecisionRequest) (protocol.Action, error) {
	if a.next >= len(a.actions) {
		return protocol.Action{}, fmt.Errorf("script for %s exhausted after %d actions", a.name, a.next)
	}
	act := a.actions[a.next]
	a.next++
	act.SchemaVersion = protocol.SchemaVersion
	act.DecisionID = req.Point.DecisionID
	return act, nil
}
