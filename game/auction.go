package game

import "monopoly/protocol"

// Auction tracks one property under the hammer. Bidder order is fixed at
// start: seating order beginning with the initiator. The current high bidder
// is never asked to bid against themselves; the auction ends when no eligible
// bidder remains.
type Auction struct {
	Space      int
	Initiator  int
	HighBid    int
	HighBidder int // seat, -1 until the first bid lands
	Order      []int
	Active     []bool
	Cur        int // index into Order of the bidder being asked
}

// startAuction opens bidding on a declined property. Every non-bankrupt
// player participates, the initiator included.
func (s *State) startAuction(space, initiator int) {
	a := &Auction{Space: space, Initiator: initiator, HighBidder: -1}
	a.Order = append(a.Order, initiator)
	a.Order = append(a.Order, s.othersFrom(initiator)...)
	a.Active = make([]bool, len(a.Order))
	for i := range a.Active {
		a.Active[i] = true
	}
	s.Auction = a

	bidders := make([]string, len(a.Order))
	for i, seat := range a.Order {
		bidders[i] = s.Players[seat].Name
	}
	s.emit(s.Players[initiator].Name, EventAuctionStarted, AuctionStartedPayload{
		Space:     space,
		Initiator: s.Players[initiator].Name,
		Bidders:   bidders,
	})
}

// bidder returns the seat currently being asked.
func (a *Auction) bidder() int {
	return a.Order[a.Cur]
}

// nextEligible finds the next active seat after the given index that is not
// the high bidder, or -1 if none remains.
func (a *Auction) nextEligible(from int) int {
	n := len(a.Order)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if a.Active[idx] && a.Order[idx] != a.HighBidder {
			return idx
		}
	}
	return -1
}

func (a *Auction) activeCount() int {
	n := 0
	for _, active := range a.Active {
		if active {
			n++
		}
	}
	return n
}

// advanceAuction moves to the next eligible bidder or closes the auction:
// sold once only the high bidder stands, passed once everyone dropped without
// a bid.
func (s *State) advanceAuction() {
	a := s.Auction
	if a.activeCount() == 0 {
		s.finishAuctionPassed()
		return
	}
	next := a.nextEligible(a.Cur)
	if next == -1 {
		if a.HighBidder >= 0 {
			s.finishAuctionSold()
		} else {
			s.finishAuctionPassed()
		}
		return
	}
	a.Cur = next
}

// finishAuctionSold transfers the property at the standing high bid. Bids
// were validated against cash when placed, so the deduction cannot fail.
func (s *State) finishAuctionSold() {
	a := s.Auction
	winner := a.HighBidder
	s.Players[winner].Cash -= a.HighBid
	s.Spaces[a.Space].Owner = winner
	s.emit(s.Players[winner].Name, EventAuctionWon, AuctionWonPayload{
		Player: s.Players[winner].Name,
		Space:  a.Space,
		Amount: a.HighBid,
	})
	s.Auction = nil
}

// finishAuctionPassed closes an auction nobody bid in; the property stays
// with the bank.
func (s *State) finishAuctionPassed() {
	s.emit(protocol.ActorEngine, EventAuctionPassed, AuctionPassedPayload{Space: s.Auction.Space})
	s.Auction = nil
}

func (a *Auction) Clone() *Auction {
	c := *a
	c.Order = make([]int, len(a.Order))
	copy(c.Order, a.Order)
	c.Active = make([]bool, len(a.Active))
	copy(c.Active, a.Active)
	return &c
}

func (a *Auction) snapshot(s *State) *protocol.AuctionState {
	state := &protocol.AuctionState{
		Space:     a.Space,
		HighBid:   a.HighBid,
		Bidder:    s.Players[a.bidder()].Name,
		Initiator: s.Players[a.Initiator].Name,
	}
	if a.HighBidder >= 0 {
		state.HighBidder = s.Players[a.HighBidder].Name
	}
	for i, seat := range a.Order {
		if a.Active[i] {
			state.Active = append(state.Active, s.Players[seat].Name)
		}
	}
	return state
}
