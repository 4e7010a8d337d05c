package agent

import (
	"context"

	"monopoly/protocol"
)

// Greedy is a deterministic menu-driven baseline: it buys and builds whenever
// doing so keeps a cash reserve, bids the floor up to a fraction of list
// price, accepts only trades that are pure profit, and liquidates in menu
// order. It never proposes trades. All choices read the request alone, so
// identical requests get identical answers.
type Greedy struct {
	name    string
	reserve int
}

func NewGreedy(name string) *Greedy {
	return &Greedy{name: name, reserve: 100}
}

func (a *Greedy) Name() string { return a.name }

func (a *Greedy) Decide(_ context.Context, req protocol.DecisionRequest) (protocol.Action, error) {
	menu := req.Point.LegalActions
	snap := req.Point.Snapshot
	me := playerState(snap, req.Point.Player)

	var name string
	args := map[string]any{}

	switch req.Point.Type {
	case "jail":
		switch {
		case hasAction(menu, "use_card"):
			name = "use_card"
		case hasAction(menu, "pay") && me.Cash >= 150:
			name = "pay"
		default:
			name = "roll"
		}
	case "buy_or_auction":
		name = "decline"
		if hasAction(menu, "buy") && me.Cash-snap.Spaces[me.Position].Price >= a.reserve {
			name = "buy"
		}
	case "auction_bid":
		name = "drop_out"
		if bid, ok := findAction(menu, "bid"); ok && snap.Auction != nil {
			floor, _ := fieldMin(bid, "amount")
			price := snap.Spaces[snap.Auction.Space].Price
			if floor <= price*3/4 && me.Cash-floor >= a.reserve/2 {
				name = "bid"
				args["amount"] = floor
			}
		}
	case "post_turn":
		switch {
		case hasAction(menu, "build"):
			name = "build"
			space, _ := planSpace(menu)
			args["plan"] = []any{map[string]any{"space": space, "houses": 1}}
		case hasAction(menu, "build_hotel"):
			name = "build_hotel"
			args["space"] = firstEnumSpace(menu, "build_hotel")
		case hasAction(menu, "unmortgage"):
			name = "unmortgage"
			args["space"] = firstEnumSpace(menu, "unmortgage")
		default:
			name = "end_turn"
		}
	case "liquidation":
		chosen := menu[0]
		name = chosen.Name
		if space, ok := intEnumFirst(chosen, "space"); ok {
			args["space"] = space
		}
	case "trade_respond":
		name = "reject"
		if t := snap.Trade; t != nil &&
			t.Offer.Cash >= t.Request.Cash &&
			len(t.Request.Properties) == 0 && t.Request.JailCards == 0 {
			name = "accept"
		}
	default:
		name = menu[0].Name
	}

	if len(args) == 0 {
		args = nil
	}
	return protocol.Action{
		SchemaVersion: protocol.SchemaVersion,
		DecisionID:    req.Point.DecisionID,
		Name:          name,
		Args:          args,
	}, nil
}

func playerState(snap protocol.Snapshot, name string) protocol.PlayerState {
	for _, p := range snap.Players {
		if p.Name == name {
			return p
		}
	}
	return protocol.PlayerState{}
}

func hasAction(menu []protocol.LegalAction, name string) bool {
	_, ok := findAction(menu, name)
	return ok
}

func findAction(menu []protocol.LegalAction, name string) (protocol.LegalAction, bool) {
	for _, la := range menu {
		if la.Name == name {
			return la, true
		}
	}
	return protocol.LegalAction{}, false
}

func fieldMin(la protocol.LegalAction, field string) (int, bool) {
	for _, f := range la.Args.Fields {
		if f.Name == field && f.Min != nil {
			return *f.Min, true
		}
	}
	return 0, false
}

func intEnumFirst(la protocol.LegalAction, field string) (int, bool) {
	for _, f := range la.Args.Fields {
		if f.Name == field && len(f.IntEnum) > 0 {
			return f.IntEnum[0], true
		}
	}
	return 0, false
}

// planSpace digs the first buildable space out of the build action's plan
// element schema.
func planSpace(menu []protocol.LegalAction) (int, bool) {
	build, ok := findAction(menu, "build")
	if !ok {
		return 0, false
	}
	for _, f := range build.Args.Fields {
		if f.Name != "plan" || f.Elem == nil {
			continue
		}
		for _, sub := range f.Elem.Fields {
			if sub.Name == "space" && len(sub.IntEnum) > 0 {
				return sub.IntEnum[0], true
			}
		}
	}
	return 0, false
}

func firstEnumSpace(menu []protocol.LegalAction, action string) int {
	la, ok := findAction(menu, action)
	if !ok {
		return 0
	}
	space, _ := intEnumFirst(la, "space")
	return space
}
