package game

import "monopoly/protocol"

// LegalActions enumerates the menu for the pending decision, in a fixed order.
// The generator is the only legality oracle: anything it leaves out is
// illegal, and an action it lists fails only on cross-field constraints the
// schema cannot express (the applier reports those precisely).
func (s *State) LegalActions() []protocol.LegalAction {
	if s.Decision == nil {
		return nil
	}
	seat := s.Decision.Seat
	switch s.Decision.Type {
	case DecisionJail:
		return s.jailMenu(seat)
	case DecisionBuyOrAuction:
		return s.buyMenu(seat, s.Decision.Space)
	case DecisionAuctionBid:
		return s.auctionMenu(seat)
	case DecisionPostTurn:
		return s.postTurnMenu(seat)
	case DecisionLiquidation:
		return s.liquidationMenu(seat)
	case DecisionTradeRespond:
		return s.tradeMenu(seat)
	}
	return nil
}

func (s *State) jailMenu(seat int) []protocol.LegalAction {
	var menu []protocol.LegalAction
	if s.Players[seat].Cash >= JailFine {
		menu = append(menu, protocol.LegalAction{Name: ActionPay})
	}
	if len(s.Players[seat].JailCards) > 0 {
		menu = append(menu, protocol.LegalAction{Name: ActionUseCard})
	}
	return append(menu, protocol.LegalAction{Name: ActionRoll})
}

func (s *State) buyMenu(seat, space int) []protocol.LegalAction {
	var menu []protocol.LegalAction
	if s.Players[seat].Cash >= spaceDefs[space].Price {
		menu = append(menu, protocol.LegalAction{Name: ActionBuy})
	}
	return append(menu, protocol.LegalAction{Name: ActionDecline})
}

func (s *State) auctionMenu(seat int) []protocol.LegalAction {
	var menu []protocol.LegalAction
	floor := s.Auction.HighBid + MinBidIncrement
	if cash := s.Players[seat].Cash; cash >= floor {
		menu = append(menu, protocol.LegalAction{
			Name: ActionBid,
			Args: protocol.ArgSchema{Fields: []protocol.Field{
				protocol.IntRange("amount", floor, cash, true),
			}},
		})
	}
	return append(menu, protocol.LegalAction{Name: ActionDropOut})
}

func (s *State) postTurnMenu(seat int) []protocol.LegalAction {
	var menu []protocol.LegalAction
	if spaces := s.buildableSpaces(seat); len(spaces) > 0 {
		elem := protocol.Field{
			Type: protocol.FieldObject,
			Fields: []protocol.Field{
				{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: spaces},
				protocol.IntRange("houses", 1, HotelHouses, true),
			},
		}
		one, max := 1, len(spaces)
		menu = append(menu, protocol.LegalAction{
			Name: ActionBuild,
			Args: protocol.ArgSchema{Fields: []protocol.Field{
				{Name: "plan", Type: protocol.FieldArray, Required: true, Min: &one, Max: &max, Elem: &elem},
			}},
		})
	}
	menu = appendSpaceChoice(menu, ActionBuildHotel, s.hotelableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionSellHouse, s.houseSellableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionSellHotel, s.hotelSellableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionMortgage, s.mortgageableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionUnmortgage, s.unmortgageableSpaces(seat))
	if partners := s.othersFrom(seat); len(partners) > 0 {
		menu = append(menu, s.proposeTradeAction(seat, partners))
	}
	return append(menu, protocol.LegalAction{Name: ActionEndTurn})
}

func (s *State) liquidationMenu(seat int) []protocol.LegalAction {
	var menu []protocol.LegalAction
	menu = appendSpaceChoice(menu, ActionMortgage, s.mortgageableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionSellHouse, s.houseSellableSpaces(seat))
	menu = appendSpaceChoice(menu, ActionSellHotel, s.hotelSellableSpaces(seat))
	if len(menu) == 0 {
		return []protocol.LegalAction{{Name: ActionDeclareBankruptcy}}
	}
	return menu
}

func (s *State) tradeMenu(seat int) []protocol.LegalAction {
	menu := []protocol.LegalAction{
		{Name: ActionAccept},
		{Name: ActionReject},
	}
	t := s.Trade
	if t.Exchanges < s.MaxTradeExchanges {
		menu = append(menu, protocol.LegalAction{
			Name: ActionCounter,
			Args: protocol.ArgSchema{Fields: s.bundleFields(seat, []int{t.Proposer})},
		})
	}
	return menu
}

func (s *State) proposeTradeAction(seat int, partners []int) protocol.LegalAction {
	names := make([]string, len(partners))
	for i, p := range partners {
		names[i] = s.Players[p].Name
	}
	fields := []protocol.Field{
		{Name: "to", Type: protocol.FieldString, Required: true, Enum: names},
	}
	fields = append(fields, s.bundleFields(seat, partners)...)
	return protocol.LegalAction{Name: ActionProposeTrade, Args: protocol.ArgSchema{Fields: fields}}
}

// bundleFields declares the offer/request halves of a trade. Offer bounds
// follow the proposing seat's holdings; request bounds cover the union of the
// possible partners, with exact per-partner limits enforced on apply.
func (s *State) bundleFields(seat int, partners []int) []protocol.Field {
	var fields []protocol.Field

	fields = append(fields, protocol.IntRange("offer_cash", 0, s.Players[seat].Cash, false))
	if own := s.tradableSpaces(seat); len(own) > 0 {
		fields = append(fields, spaceArray("offer_properties", own))
	}
	if cards := len(s.Players[seat].JailCards); cards > 0 {
		fields = append(fields, protocol.IntRange("offer_jail_cards", 0, cards, false))
	}

	maxCash, maxCards := 0, 0
	var theirs []int
	for _, p := range partners {
		if s.Players[p].Cash > maxCash {
			maxCash = s.Players[p].Cash
		}
		if n := len(s.Players[p].JailCards); n > maxCards {
			maxCards = n
		}
		theirs = append(theirs, s.tradableSpaces(p)...)
	}
	fields = append(fields, protocol.IntRange("request_cash", 0, maxCash, false))
	if len(theirs) > 0 {
		fields = append(fields, spaceArray("request_properties", theirs))
	}
	if maxCards > 0 {
		fields = append(fields, protocol.IntRange("request_jail_cards", 0, maxCards, false))
	}
	return fields
}

func spaceArray(name string, spaces []int) protocol.Field {
	elem := protocol.Field{Type: protocol.FieldInt, IntEnum: spaces}
	max := len(spaces)
	return protocol.Field{Name: name, Type: protocol.FieldArray, Max: &max, Elem: &elem}
}

func appendSpaceChoice(menu []protocol.LegalAction, name string, spaces []int) []protocol.LegalAction {
	if len(spaces) == 0 {
		return menu
	}
	return append(menu, protocol.LegalAction{
		Name: name,
		Args: protocol.ArgSchema{Fields: []protocol.Field{
			{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: spaces},
		}},
	})
}

// fallbackPreference is the predetermined substitute per decision type. When
// the preferred action is not in the menu the first listed action stands in.
var fallbackPreference = map[DecisionType]string{
	DecisionJail:         ActionPay,
	DecisionBuyOrAuction: ActionDecline,
	DecisionAuctionBid:   ActionDropOut,
	DecisionPostTurn:     ActionEndTurn,
	DecisionTradeRespond: ActionReject,
}

// Fallback builds the action applied when an agent's response is still
// invalid after the one permitted retry. Arguments take the smallest value
// the schema admits, so the result always validates.
func Fallback(dtype DecisionType, menu []protocol.LegalAction) protocol.Action {
	chosen := menu[0]
	if name, ok := fallbackPreference[dtype]; ok {
		for _, la := range menu {
			if la.Name == name {
				chosen = la
				break
			}
		}
	}
	return protocol.Action{
		SchemaVersion: protocol.SchemaVersion,
		Name:          chosen.Name,
		Args:          minimalArgs(chosen.Args),
	}
}

func minimalArgs(schema protocol.ArgSchema) map[string]any {
	args := make(map[string]any)
	for _, f := range schema.Fields {
		if f.Required {
			args[f.Name] = minimalValue(f)
		}
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

func minimalValue(f protocol.Field) any {
	switch f.Type {
	case protocol.FieldInt:
		if len(f.IntEnum) > 0 {
			return f.IntEnum[0]
		}
		if f.Min != nil {
			return *f.Min
		}
		return 0
	case protocol.FieldString:
		if len(f.Enum) > 0 {
			return f.Enum[0]
		}
		return ""
	case protocol.FieldBool:
		return false
	case protocol.FieldArray:
		n := 0
		if f.Min != nil {
			n = *f.Min
		}
		items := make([]any, 0, n)
		for i := 0; i < n && f.Elem != nil; i++ {
			items = append(items, minimalValue(*f.Elem))
		}
		return items
	case protocol.FieldObject:
		obj := make(map[string]any)
		for _, sub := range f.Fields {
			if sub.Required {
				obj[sub.Name] = minimalValue(sub)
			}
		}
		return obj
	}
	return nil
}
