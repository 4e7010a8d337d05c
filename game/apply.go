package game

import (
	"fmt"
	"sort"

	"monopoly/protocol"
)

func semanticErr(action, field, reason string) *protocol.ValidationError {
	return &protocol.ValidationError{
		Action: action,
		Issues: []protocol.Issue{{Field: field, Reason: reason}},
	}
}

// Apply runs a schema-valid action against a copy of the state and adopts the
// copy only when every mutation succeeds, so a semantically rejected action
// leaves no trace. The dice are shared with the copy; a rejected action never
// reaches them.
func (s *State) Apply(act protocol.Action) error {
	if s.Decision == nil {
		return fmt.Errorf("apply %q: no decision pending", act.Name)
	}
	c := s.Clone()
	if err := c.applyAction(act); err != nil {
		return err
	}
	c.refresh()
	*s = *c
	return nil
}

func (s *State) applyAction(act protocol.Action) error {
	seat := s.Decision.Seat
	switch s.Decision.Type {
	case DecisionJail:
		return s.applyJailAction(seat, act)
	case DecisionBuyOrAuction:
		return s.applyBuyAction(seat, s.Decision.Space, act)
	case DecisionAuctionBid:
		return s.applyAuctionAction(seat, act)
	case DecisionPostTurn:
		return s.applyPostTurnAction(seat, act)
	case DecisionLiquidation:
		return s.applyLiquidationAction(seat, act)
	case DecisionTradeRespond:
		return s.applyTradeAction(seat, act)
	}
	return fmt.Errorf("apply %q: unknown decision type %q", act.Name, s.Decision.Type)
}

func (s *State) applyJailAction(seat int, act protocol.Action) error {
	p := &s.Players[seat]
	switch act.Name {
	case ActionPay:
		if p.Cash < JailFine {
			return semanticErr(act.Name, "", fmt.Sprintf("the fine is %d, %s has %d", JailFine, p.Name, p.Cash))
		}
		s.charge(Debt{Debtor: seat, Creditor: -1, Amount: JailFine, Reason: "jail_fine", Space: -1})
	case ActionUseCard:
		if len(p.JailCards) == 0 {
			return semanticErr(act.Name, "", p.Name+" holds no jail card")
		}
		card := p.JailCards[0]
		p.JailCards = p.JailCards[1:]
		s.deckFor(card.Deck).Return(card)
		s.emit(p.Name, EventJailCardUsed, JailCardUsedPayload{Player: p.Name, Deck: string(card.Deck)})
		p.InJail = false
		p.JailTurns = 0
		s.emit(p.Name, EventJailLeft, JailLeftPayload{Player: p.Name, Via: JailLeftCard})
	case ActionRoll:
		s.JailRollPending = true
	default:
		return semanticErr(act.Name, "action", "not a jail action")
	}
	return nil
}

func (s *State) applyBuyAction(seat, space int, act protocol.Action) error {
	p := &s.Players[seat]
	switch act.Name {
	case ActionBuy:
		price := spaceDefs[space].Price
		if p.Cash < price {
			return semanticErr(act.Name, "", fmt.Sprintf("%s costs %d, %s has %d", spaceDefs[space].Name, price, p.Name, p.Cash))
		}
		p.Cash -= price
		s.Spaces[space].Owner = seat
		s.PendingBuy = -1
		s.emit(p.Name, EventPropertyPurchased, PurchasePayload{Player: p.Name, Space: space, Price: price})
	case ActionDecline:
		s.PendingBuy = -1
		s.emit(p.Name, EventPurchaseDeclined, DeclinePayload{Player: p.Name, Space: space})
		s.startAuction(space, seat)
	default:
		return semanticErr(act.Name, "action", "not a purchase action")
	}
	return nil
}

func (s *State) applyAuctionAction(seat int, act protocol.Action) error {
	a := s.Auction
	p := &s.Players[seat]
	switch act.Name {
	case ActionBid:
		amount := argInt(act.Args, "amount")
		floor := a.HighBid + MinBidIncrement
		if amount < floor {
			return semanticErr(act.Name, "amount", fmt.Sprintf("bid %d is below the floor %d", amount, floor))
		}
		if amount > p.Cash {
			return semanticErr(act.Name, "amount", fmt.Sprintf("bid %d exceeds %s's cash %d", amount, p.Name, p.Cash))
		}
		a.HighBid = amount
		a.HighBidder = seat
		s.emit(p.Name, EventBidPlaced, BidPayload{Player: p.Name, Space: a.Space, Amount: amount})
		s.advanceAuction()
	case ActionDropOut:
		s.emit(p.Name, EventBidPassed, BidPassedPayload{Player: p.Name, Space: a.Space})
		a.Active[a.Cur] = false
		s.advanceAuction()
	default:
		return semanticErr(act.Name, "action", "not an auction action")
	}
	return nil
}

func (s *State) applyPostTurnAction(seat int, act protocol.Action) error {
	switch act.Name {
	case ActionBuild:
		return s.applyBuildPlan(seat, argPlan(act.Args))
	case ActionBuildHotel:
		return s.applyBuildHotel(seat, argInt(act.Args, "space"))
	case ActionSellHouse:
		return s.applySellHouse(seat, argInt(act.Args, "space"))
	case ActionSellHotel:
		return s.applySellHotel(seat, argInt(act.Args, "space"))
	case ActionMortgage:
		return s.applyMortgage(seat, argInt(act.Args, "space"))
	case ActionUnmortgage:
		return s.applyUnmortgage(seat, argInt(act.Args, "space"))
	case ActionProposeTrade:
		return s.applyProposeTrade(seat, act)
	case ActionEndTurn:
		s.Managed = true
		return nil
	}
	return semanticErr(act.Name, "action", "not a management action")
}

func (s *State) applyLiquidationAction(seat int, act protocol.Action) error {
	switch act.Name {
	case ActionMortgage:
		return s.applyMortgage(seat, argInt(act.Args, "space"))
	case ActionSellHouse:
		return s.applySellHouse(seat, argInt(act.Args, "space"))
	case ActionSellHotel:
		return s.applySellHotel(seat, argInt(act.Args, "space"))
	case ActionDeclareBankruptcy:
		s.declareBankruptcy(seat)
		return nil
	}
	return semanticErr(act.Name, "action", "not a liquidation action")
}

func (s *State) applyProposeTrade(seat int, act protocol.Action) error {
	to := argString(act.Args, "to")
	responder := -1
	for _, other := range s.othersFrom(seat) {
		if s.Players[other].Name == to {
			responder = other
			break
		}
	}
	if responder == -1 {
		return semanticErr(act.Name, "to", fmt.Sprintf("%q is not an eligible trade partner", to))
	}
	offer := parseBundle(act.Args, "offer")
	request := parseBundle(act.Args, "request")
	var issues []protocol.Issue
	issues = append(issues, s.checkBundle(seat, offer, "offer")...)
	issues = append(issues, s.checkBundle(responder, request, "request")...)
	if len(issues) > 0 {
		return &protocol.ValidationError{Action: act.Name, Issues: issues}
	}
	s.proposeTrade(seat, responder, offer, request)
	return nil
}

func (s *State) applyTradeAction(seat int, act protocol.Action) error {
	t := s.Trade
	switch act.Name {
	case ActionAccept:
		s.acceptTrade()
		return nil
	case ActionReject:
		s.rejectTrade()
		return nil
	case ActionCounter:
		if t.Exchanges >= s.MaxTradeExchanges {
			return semanticErr(act.Name, "", fmt.Sprintf("the exchange limit of %d is reached", s.MaxTradeExchanges))
		}
		offer := parseBundle(act.Args, "offer")
		request := parseBundle(act.Args, "request")
		var issues []protocol.Issue
		issues = append(issues, s.checkBundle(seat, offer, "offer")...)
		issues = append(issues, s.checkBundle(t.Proposer, request, "request")...)
		if len(issues) > 0 {
			return &protocol.ValidationError{Action: act.Name, Issues: issues}
		}
		s.counterTrade(offer, request)
		return nil
	}
	return semanticErr(act.Name, "action", "not a trade response")
}

// checkBundle verifies one side of an exchange against its owner's actual
// holdings: enough cash, each property theirs and building-free, enough jail
// cards.
func (s *State) checkBundle(owner int, b protocol.TradeBundle, side string) []protocol.Issue {
	var issues []protocol.Issue
	p := s.Players[owner]
	if b.Cash > p.Cash {
		issues = append(issues, protocol.Issue{
			Field:  side + "_cash",
			Reason: fmt.Sprintf("%d exceeds %s's cash %d", b.Cash, p.Name, p.Cash),
		})
	}
	seen := make(map[int]bool, len(b.Properties))
	for i, space := range b.Properties {
		field := fmt.Sprintf("%s_properties[%d]", side, i)
		switch {
		case seen[space]:
			issues = append(issues, protocol.Issue{Field: field, Reason: fmt.Sprintf("space %d listed twice", space)})
		case !spaceDefs[space].Ownable() || s.Spaces[space].Owner != owner:
			issues = append(issues, protocol.Issue{Field: field, Reason: fmt.Sprintf("space %d is not owned by %s", space, p.Name)})
		case spaceDefs[space].Kind == KindProperty && s.groupHasBuildings(spaceDefs[space].Group):
			issues = append(issues, protocol.Issue{Field: field, Reason: fmt.Sprintf("group %s still carries buildings", spaceDefs[space].Group)})
		}
		seen[space] = true
	}
	if b.JailCards > len(p.JailCards) {
		issues = append(issues, protocol.Issue{
			Field:  side + "_jail_cards",
			Reason: fmt.Sprintf("%s holds %d jail cards", p.Name, len(p.JailCards)),
		})
	}
	return issues
}

func parseBundle(args map[string]any, side string) protocol.TradeBundle {
	b := protocol.TradeBundle{
		Cash:       argInt(args, side+"_cash"),
		Properties: argInts(args, side+"_properties"),
		JailCards:  argInt(args, side+"_jail_cards"),
	}
	sort.Ints(b.Properties)
	return b
}

func argPlan(args map[string]any) []BuildStep {
	items, _ := args["plan"].([]any)
	plan := make([]BuildStep, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		plan = append(plan, BuildStep{
			Space:  argInt(obj, "space"),
			Houses: argInt(obj, "houses"),
		})
	}
	return plan
}

// Arg readers run after schema validation; JSON-decoded numbers arrive as
// float64, engine-built fallbacks as int.
func argInt(args map[string]any, name string) int {
	switch n := args[name].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func argInts(args map[string]any, name string) []int {
	items, _ := args[name].([]any)
	if len(items) == 0 {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case int:
			out = append(out, n)
		case int64:
			out = append(out, int(n))
		case float64:
			out = append(out, int(n))
		}
	}
	return out
}

func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}
