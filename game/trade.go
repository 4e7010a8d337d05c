package game

import "monopoly/protocol"

// Trade tracks one outstanding proposal between two players. Counters swap
// the roles, so Proposer is always the side whose offer is on the table and
// Waiting is the side that must respond.
type Trade struct {
	Proposer  int
	Waiting   int
	Offer     protocol.TradeBundle // given up by Proposer
	Request   protocol.TradeBundle // given up by Waiting
	Exchanges int
	History   []protocol.TradeExchange // last two exchanges
}

func (s *State) proposeTrade(proposer, responder int, offer, request protocol.TradeBundle) {
	t := &Trade{Proposer: proposer, Waiting: responder, Offer: offer, Request: request}
	t.pushHistory(s.Players[proposer].Name)
	s.Trade = t
	s.emit(s.Players[proposer].Name, EventTradeProposed, TradeProposedPayload{
		Proposer:  s.Players[proposer].Name,
		Responder: s.Players[responder].Name,
		Offer:     offer,
		Request:   request,
		Exchange:  0,
	})
}

// counterTrade replaces the standing terms with the responder's own. Offer
// and request are expressed from the new proposer's perspective.
func (s *State) counterTrade(offer, request protocol.TradeBundle) {
	t := s.Trade
	t.Proposer, t.Waiting = t.Waiting, t.Proposer
	t.Offer, t.Request = offer, request
	t.Exchanges++
	t.pushHistory(s.Players[t.Proposer].Name)
	s.emit(s.Players[t.Proposer].Name, EventTradeCountered, TradeProposedPayload{
		Proposer:  s.Players[t.Proposer].Name,
		Responder: s.Players[t.Waiting].Name,
		Offer:     offer,
		Request:   request,
		Exchange:  t.Exchanges,
	})
}

// acceptTrade executes the exchange atomically: the acceptance event first,
// then one transfer event per asset class per direction, proposer's side
// first.
func (s *State) acceptTrade() {
	t := s.Trade
	s.emit(s.Players[t.Waiting].Name, EventTradeAccepted, TradeResolvedPayload{
		Player: s.Players[t.Waiting].Name,
	})
	s.Trade = nil
	s.transferBundle(t.Proposer, t.Waiting, t.Offer, "trade")
	s.transferBundle(t.Waiting, t.Proposer, t.Request, "trade")
}

func (s *State) rejectTrade() {
	t := s.Trade
	s.emit(s.Players[t.Waiting].Name, EventTradeRejected, TradeResolvedPayload{
		Player: s.Players[t.Waiting].Name,
	})
	s.Trade = nil
}

// transferBundle moves one side of an agreed exchange. Mortgage status
// travels with each property unchanged.
func (s *State) transferBundle(from, to int, b protocol.TradeBundle, reason string) {
	fromName := s.Players[from].Name
	toName := s.Players[to].Name
	if b.Cash > 0 {
		s.Players[from].Cash -= b.Cash
		s.Players[to].Cash += b.Cash
		s.emit(fromName, EventCashTransferred, CashTransferPayload{
			From:   fromName,
			To:     toName,
			Amount: b.Cash,
			Reason: reason,
		})
	}
	if len(b.Properties) > 0 {
		for _, idx := range b.Properties {
			s.Spaces[idx].Owner = to
		}
		s.emit(fromName, EventPropertiesTransferred, PropertiesTransferredPayload{
			From:   fromName,
			To:     toName,
			Spaces: b.Properties,
			Reason: reason,
		})
	}
	if b.JailCards > 0 {
		hand := s.Players[from].JailCards
		moved := hand[:b.JailCards]
		s.Players[from].JailCards = hand[b.JailCards:]
		s.Players[to].JailCards = append(s.Players[to].JailCards, moved...)
		s.emit(fromName, EventJailCardsTransferred, JailCardsTransferredPayload{
			From:   fromName,
			To:     toName,
			Count:  b.JailCards,
			Reason: reason,
		})
	}
}

func (t *Trade) pushHistory(by string) {
	t.History = append(t.History, protocol.TradeExchange{
		By:      by,
		Offer:   t.Offer,
		Request: t.Request,
	})
	if len(t.History) > 2 {
		t.History = t.History[len(t.History)-2:]
	}
}

func (t *Trade) Clone() *Trade {
	c := *t
	c.Offer = cloneBundle(t.Offer)
	c.Request = cloneBundle(t.Request)
	c.History = make([]protocol.TradeExchange, len(t.History))
	for i, ex := range t.History {
		c.History[i] = protocol.TradeExchange{By: ex.By, Offer: cloneBundle(ex.Offer), Request: cloneBundle(ex.Request)}
	}
	return &c
}

func cloneBundle(b protocol.TradeBundle) protocol.TradeBundle {
	c := b
	c.Properties = make([]int, len(b.Properties))
	copy(c.Properties, b.Properties)
	return c
}

func (t *Trade) snapshot(s *State) *protocol.TradeState {
	return &protocol.TradeState{
		Proposer:     s.Players[t.Proposer].Name,
		Responder:    s.Players[t.Waiting].Name,
		Offer:        cloneBundle(t.Offer),
		Request:      cloneBundle(t.Request),
		Exchanges:    t.Exchanges,
		MaxExchanges: s.MaxTradeExchanges,
		History:      append([]protocol.TradeExchange(nil), t.History...),
	}
}
