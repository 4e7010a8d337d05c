package game

import (
	"encoding/json"
	"hash/fnv"

	"golang.org/x/exp/rand"

	"monopoly/protocol"
)

// Phase is the engine-visible position in the turn state machine.
type Phase int

const (
	PhaseStartTurn Phase = iota
	PhaseResolvingMove
	PhaseAwaitingDecision
	PhaseEndTurn
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseStartTurn:
		return "START_TURN"
	case PhaseResolvingMove:
		return "RESOLVING_MOVE"
	case PhaseAwaitingDecision:
		return "AWAITING_DECISION"
	case PhaseEndTurn:
		return "END_TURN"
	case PhaseGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// DecisionType names the choice an agent is being asked to make.
type DecisionType string

const (
	DecisionJail         DecisionType = "jail"
	DecisionBuyOrAuction DecisionType = "buy_or_auction"
	DecisionAuctionBid   DecisionType = "auction_bid"
	DecisionPostTurn     DecisionType = "post_turn"
	DecisionLiquidation  DecisionType = "liquidation"
	DecisionTradeRespond DecisionType = "trade_respond"
)

// Action names, shared between the legal-action generator and the applier.
const (
	ActionPay               = "pay"
	ActionUseCard           = "use_card"
	ActionRoll              = "roll"
	ActionBuy               = "buy"
	ActionDecline           = "decline"
	ActionBid               = "bid"
	ActionDropOut           = "drop_out"
	ActionBuild             = "build"
	ActionBuildHotel        = "build_hotel"
	ActionSellHouse         = "sell_house"
	ActionSellHotel         = "sell_hotel"
	ActionMortgage          = "mortgage"
	ActionUnmortgage        = "unmortgage"
	ActionProposeTrade      = "propose_trade"
	ActionEndTurn           = "end_turn"
	ActionAccept            = "accept"
	ActionReject            = "reject"
	ActionCounter           = "counter"
	ActionDeclareBankruptcy = "declare_bankruptcy"
)

// Player is one seat at the table. Bankrupt players stay in the roster,
// flagged, and drop out of the turn rotation.
type Player struct {
	Name        string
	Cash        int
	Pos         int
	InJail      bool
	JailTurns   int    // failed escape rolls this jail stay
	JailCards   []Card // held get-out-of-jail cards, returned to their deck on use
	Doubles     int    // consecutive doubles this turn
	Bankrupt    bool
	Beneficiary string // who received the assets, set on bankruptcy
}

// SpaceState is the dynamic side of a board position.
type SpaceState struct {
	Owner     int // seat index, -1 for the bank
	Houses    int
	Hotel     bool
	Mortgaged bool
}

// Bank tracks the building inventory. Never negative.
type Bank struct {
	Houses int
	Hotels int
}

// Debt is one outstanding obligation awaiting liquidation. Payment is
// deferred until the debtor's cash covers the amount; the reason and space
// let settlement emit the payment event the original charge would have.
type Debt struct {
	Debtor   int
	Creditor int // seat index, -1 for the bank
	Amount   int
	Reason   string
	Space    int // space the charge came from, -1 if none
}

// Pending identifies the decision the engine is waiting on.
type Pending struct {
	Type  DecisionType
	Seat  int
	Space int // subject space for buy_or_auction, -1 otherwise
}

// State is the single authoritative game aggregate. All mutation goes through
// the turn-step methods and Apply; events describing every change queue up in
// the state and are drained by the engine after each step.
type State struct {
	RunID             string
	Seed              uint64
	MaxTradeExchanges int

	Turn    int
	Phase   Phase
	Current int
	Winner  string

	Players []Player
	Spaces  [BoardSize]SpaceState
	Bank    Bank
	Chance  *Deck
	Chest   *Deck

	Auction  *Auction
	Trade    *Trade
	Debts    []Debt
	Decision *Pending

	// PendingBuy is the unowned space awaiting a buy-or-auction choice, -1
	// when none.
	PendingBuy int

	// Turn-segment bookkeeping.
	LastRoll        [2]int
	Rolled          bool    // this segment's roll has happened
	Managed         bool    // this segment's post-turn management is done
	RolledDoubles   bool    // a re-roll segment is owed
	JailRollPending bool    // player chose to roll for jail doubles
	ResumeRoll      *[2]int // movement owed once a forced jail fine settles

	// One-landing rent multipliers set by advance-nearest cards.
	UtilityRentOverride bool
	RailRentDouble      bool

	dice   Dice
	queued []protocol.Event
}

const startingCash = 1500

type Option func(*State)

// WithDice replaces the seeded dice, letting tests script exact rolls.
func WithDice(d Dice) Option {
	return func(s *State) {
		s.dice = d
	}
}

// WithMaxTradeExchanges bounds counter-offers per negotiation.
func WithMaxTradeExchanges(n int) Option {
	return func(s *State) {
		s.MaxTradeExchanges = n
	}
}

// New builds the initial state for a run. Every random draw derives from the
// seed, so identical seeds give identical decks and dice.
func New(runID string, names []string, seed uint64, options ...Option) *State {
	s := &State{
		RunID:             runID,
		Seed:              seed,
		MaxTradeExchanges: 3,
		Turn:              1,
		Phase:             PhaseStartTurn,
		PendingBuy:        -1,
		Bank:              Bank{Houses: TotalHouses, Hotels: TotalHotels},
		Chance:            NewDeck(DeckChance, rand.New(rand.NewSource(DeriveSeed(seed, StreamChance)))),
		Chest:             NewDeck(DeckChest, rand.New(rand.NewSource(DeriveSeed(seed, StreamChest)))),
		dice:              NewDice(DeriveSeed(seed, StreamDice)),
	}
	for _, name := range names {
		s.Players = append(s.Players, Player{Name: name, Cash: startingCash})
	}
	for i := range s.Spaces {
		s.Spaces[i].Owner = -1
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Clone deep-copies everything the applier may mutate. The dice are shared:
// a committed clone replaces the original, so the stream advances exactly
// once either way.
func (s *State) Clone() *State {
	c := *s

	c.Players = make([]Player, len(s.Players))
	copy(c.Players, s.Players)
	for i := range c.Players {
		if len(s.Players[i].JailCards) > 0 {
			cards := make([]Card, len(s.Players[i].JailCards))
			copy(cards, s.Players[i].JailCards)
			c.Players[i].JailCards = cards
		}
	}

	c.Chance = s.Chance.Clone()
	c.Chest = s.Chest.Clone()

	if s.Auction != nil {
		c.Auction = s.Auction.Clone()
	}
	if s.Trade != nil {
		c.Trade = s.Trade.Clone()
	}
	if len(s.Debts) > 0 {
		c.Debts = make([]Debt, len(s.Debts))
		copy(c.Debts, s.Debts)
	}
	if s.Decision != nil {
		pending := *s.Decision
		c.Decision = &pending
	}
	if s.ResumeRoll != nil {
		roll := *s.ResumeRoll
		c.ResumeRoll = &roll
	}
	if len(s.queued) > 0 {
		c.queued = make([]protocol.Event, len(s.queued))
		copy(c.queued, s.queued)
	}

	return &c
}

// Snapshot renders the full observable state. The engine fills Seq.
func (s *State) Snapshot() protocol.Snapshot {
	snap := protocol.Snapshot{
		SchemaVersion: protocol.SchemaVersion,
		RunID:         s.RunID,
		Turn:          s.Turn,
		Phase:         s.Phase.String(),
		Current:       s.Players[s.Current].Name,
		Bank:          protocol.BankState{Houses: s.Bank.Houses, Hotels: s.Bank.Hotels},
	}

	for _, p := range s.Players {
		snap.Players = append(snap.Players, protocol.PlayerState{
			Name:      p.Name,
			Cash:      p.Cash,
			Position:  p.Pos,
			InJail:    p.InJail,
			JailTurns: p.JailTurns,
			JailCards: len(p.JailCards),
			Doubles:   p.Doubles,
			Bankrupt:  p.Bankrupt,
		})
	}

	for i := range s.Spaces {
		def := spaceDefs[i]
		state := protocol.SpaceState{
			Index: i,
			Name:  def.Name,
			Kind:  string(def.Kind),
			Group: string(def.Group),
			Price: def.Price,
		}
		if def.Ownable() {
			state.Owner = s.ownerName(i)
			state.Houses = s.Spaces[i].Houses
			state.Hotel = s.Spaces[i].Hotel
			state.Mortgaged = s.Spaces[i].Mortgaged
		}
		snap.Spaces = append(snap.Spaces, state)
	}

	if s.Auction != nil {
		snap.Auction = s.Auction.snapshot(s)
	}
	if s.Trade != nil {
		snap.Trade = s.Trade.snapshot(s)
	}
	for _, d := range s.Debts {
		snap.Debts = append(snap.Debts, protocol.DebtState{
			Debtor:   s.Players[d.Debtor].Name,
			Creditor: s.seatName(d.Creditor),
			Amount:   d.Amount,
			Reason:   d.Reason,
		})
	}

	return snap
}

// Hash fingerprints the observable state, ignoring run identity.
func (s *State) Hash() uint64 {
	snap := s.Snapshot()
	snap.RunID = ""
	data, err := json.Marshal(snap)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// GameOver reports whether the run has reached its terminal phase.
func (s *State) GameOver() bool {
	return s.Phase == PhaseGameOver
}

// PendingDecision returns the awaited decision, or nil outside
// AWAITING_DECISION.
func (s *State) PendingDecision() *Pending {
	return s.Decision
}

func (s *State) seatName(seat int) string {
	if seat < 0 {
		return protocol.ActorBank
	}
	return s.Players[seat].Name
}

func (s *State) ownerName(space int) string {
	owner := s.Spaces[space].Owner
	if owner < 0 {
		return ""
	}
	return s.Players[owner].Name
}

// activeCount counts non-bankrupt players.
func (s *State) activeCount() int {
	n := 0
	for i := range s.Players {
		if !s.Players[i].Bankrupt {
			n++
		}
	}
	return n
}

// nextActive returns the next non-bankrupt seat after the given one.
func (s *State) nextActive(seat int) int {
	for i := 1; i <= len(s.Players); i++ {
		candidate := (seat + i) % len(s.Players)
		if !s.Players[candidate].Bankrupt {
			return candidate
		}
	}
	return seat
}

// othersFrom lists the non-bankrupt seats other than the given one, in
// seating order starting to its left. This is the stable iteration order for
// collect-from-everyone effects.
func (s *State) othersFrom(seat int) []int {
	var seats []int
	for i := 1; i < len(s.Players); i++ {
		candidate := (seat + i) % len(s.Players)
		if !s.Players[candidate].Bankrupt {
			seats = append(seats, candidate)
		}
	}
	return seats
}

// ownsGroup reports whether a seat holds every space of a group.
func (s *State) ownsGroup(seat int, g Group) bool {
	indices := GroupSpaces(g)
	if len(indices) == 0 {
		return false
	}
	for _, i := range indices {
		if s.Spaces[i].Owner != seat {
			return false
		}
	}
	return true
}

// countOwned counts spaces of a kind held by a seat.
func (s *State) countOwned(seat int, kind SpaceKind) int {
	n := 0
	for i := range s.Spaces {
		if spaceDefs[i].Kind == kind && s.Spaces[i].Owner == seat {
			n++
		}
	}
	return n
}

// groupHasBuildings reports whether any space in the group carries a house or
// hotel.
func (s *State) groupHasBuildings(g Group) bool {
	for _, i := range GroupSpaces(g) {
		if s.Spaces[i].Houses > 0 || s.Spaces[i].Hotel {
			return true
		}
	}
	return false
}

// netWorth is the turn-limit tiebreak: cash, property at price (half when
// mortgaged), buildings at replacement cost.
func (s *State) netWorth(seat int) int {
	worth := s.Players[seat].Cash
	for i := range s.Spaces {
		if s.Spaces[i].Owner != seat {
			continue
		}
		def := spaceDefs[i]
		if s.Spaces[i].Mortgaged {
			worth += def.Price / 2
		} else {
			worth += def.Price
		}
		worth += s.Spaces[i].Houses * def.HouseCost
		if s.Spaces[i].Hotel {
			worth += (HotelHouses + 1) * def.HouseCost
		}
	}
	return worth
}
