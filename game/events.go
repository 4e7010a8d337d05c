package game

import "monopoly/protocol"

// Event types emitted into the append-only log.
const (
	EventTurnStarted           = "TURN_STARTED"
	EventDiceRolled            = "DICE_ROLLED"
	EventPlayerMoved           = "PLAYER_MOVED"
	EventSalaryPaid            = "SALARY_PAID"
	EventPropertyPurchased     = "PROPERTY_PURCHASED"
	EventPurchaseDeclined      = "PURCHASE_DECLINED"
	EventAuctionStarted        = "AUCTION_STARTED"
	EventBidPlaced             = "BID_PLACED"
	EventBidPassed             = "BID_PASSED"
	EventAuctionWon            = "AUCTION_WON"
	EventAuctionPassed         = "AUCTION_PASSED"
	EventRentPaid              = "RENT_PAID"
	EventTaxPaid               = "TAX_PAID"
	EventCardDrawn             = "CARD_DRAWN"
	EventCashTransferred       = "CASH_TRANSFERRED"
	EventJailEntered           = "JAIL_ENTERED"
	EventJailLeft              = "JAIL_LEFT"
	EventJailFinePaid          = "JAIL_FINE_PAID"
	EventJailCardUsed          = "JAIL_CARD_USED"
	EventHouseBuilt            = "HOUSE_BUILT"
	EventHotelBuilt            = "HOTEL_BUILT"
	EventHouseSold             = "HOUSE_SOLD"
	EventHotelSold             = "HOTEL_SOLD"
	EventMortgaged             = "PROPERTY_MORTGAGED"
	EventUnmortgaged           = "PROPERTY_UNMORTGAGED"
	EventTradeProposed         = "TRADE_PROPOSED"
	EventTradeCountered        = "TRADE_COUNTERED"
	EventTradeAccepted         = "TRADE_ACCEPTED"
	EventTradeRejected         = "TRADE_REJECTED"
	EventPropertiesTransferred = "PROPERTIES_TRANSFERRED"
	EventJailCardsTransferred  = "JAIL_CARDS_TRANSFERRED"
	EventLiquidationStarted    = "LIQUIDATION_STARTED"
	EventDebtSettled           = "DEBT_SETTLED"
	EventBankruptcyDeclared    = "BANKRUPTCY_DECLARED"
	EventDecisionRequested     = "DECISION_REQUESTED"
	EventDecisionResolved      = "DECISION_RESOLVED"
	EventTurnEnded             = "TURN_ENDED"
	EventGameOver              = "GAME_OVER"
)

// Reasons stamped on JAIL_ENTERED events.
const (
	JailReasonThreeDoubles = "three_doubles"
	JailReasonSpace        = "go_to_jail_space"
	JailReasonCard         = "card"
)

// Routes stamped on JAIL_LEFT events.
const (
	JailLeftPaid    = "paid"
	JailLeftCard    = "card"
	JailLeftDoubles = "doubles"
)

// Reasons stamped on GAME_OVER events.
const (
	GameOverLastStanding = "last_player_standing"
	GameOverTurnLimit    = "turn_limit"
)

type TurnPayload struct {
	Player string `json:"player"`
}

type DiceRolledPayload struct {
	Player  string `json:"player"`
	Die1    int    `json:"die1"`
	Die2    int    `json:"die2"`
	Doubles bool   `json:"doubles,omitempty"`
}

type MovedPayload struct {
	Player   string `json:"player"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	PassedGo bool   `json:"passed_go,omitempty"`
}

type SalaryPayload struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

type PurchasePayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Price  int    `json:"price"`
}

type DeclinePayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
}

type AuctionStartedPayload struct {
	Space     int      `json:"space"`
	Initiator string   `json:"initiator"`
	Bidders   []string `json:"bidders"`
}

type BidPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Amount int    `json:"amount"`
}

type BidPassedPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
}

type AuctionWonPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Amount int    `json:"amount"`
}

type AuctionPassedPayload struct {
	Space int `json:"space"`
}

type RentPayload struct {
	Player string `json:"player"`
	Owner  string `json:"owner"`
	Space  int    `json:"space"`
	Amount int    `json:"amount"`
}

type TaxPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Amount int    `json:"amount"`
}

type CardDrawnPayload struct {
	Player string `json:"player"`
	Deck   string `json:"deck"`
	Card   string `json:"card"`
	Text   string `json:"text"`
}

type CashTransferPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type JailEnteredPayload struct {
	Player string `json:"player"`
	Reason string `json:"reason"`
}

type JailLeftPayload struct {
	Player string `json:"player"`
	Via    string `json:"via"`
}

type JailFinePayload struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

type JailCardUsedPayload struct {
	Player string `json:"player"`
	Deck   string `json:"deck"`
}

// HouseBuiltPayload reports one house; Houses is the count on the space after
// placement.
type HouseBuiltPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Houses int    `json:"houses"`
}

type HotelBuiltPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
}

type HouseSoldPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Houses int    `json:"houses"`
	Refund int    `json:"refund"`
}

// HotelSoldPayload reports a hotel sale; Houses is the count left on the
// space, 4 when the bank could break the hotel back into houses, 0 otherwise.
type HotelSoldPayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Houses int    `json:"houses"`
	Refund int    `json:"refund"`
}

type MortgagePayload struct {
	Player string `json:"player"`
	Space  int    `json:"space"`
	Amount int    `json:"amount"`
}

type TradeProposedPayload struct {
	Proposer  string               `json:"proposer"`
	Responder string               `json:"responder"`
	Offer     protocol.TradeBundle `json:"offer"`
	Request   protocol.TradeBundle `json:"request"`
	Exchange  int                  `json:"exchange"`
}

type TradeResolvedPayload struct {
	Player string `json:"player"`
}

type PropertiesTransferredPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Spaces []int  `json:"spaces"`
	Reason string `json:"reason"`
}

type JailCardsTransferredPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

type LiquidationPayload struct {
	Player   string `json:"player"`
	Creditor string `json:"creditor"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"`
}

type DebtSettledPayload struct {
	Player   string `json:"player"`
	Creditor string `json:"creditor"`
	Amount   int    `json:"amount"`
}

type BankruptcyPayload struct {
	Player   string `json:"player"`
	Creditor string `json:"creditor"`
}

type DecisionRequestedPayload struct {
	DecisionID string `json:"decision_id"`
	Type       string `json:"decision_type"`
	Player     string `json:"player"`
}

type DecisionResolvedPayload struct {
	DecisionID string         `json:"decision_id"`
	Action     string         `json:"action"`
	Args       map[string]any `json:"args,omitempty"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
	Turns  int    `json:"turns"`
	Reason string `json:"reason"`
}

// emit queues an event with the state's current turn and phase. The engine
// assigns sequence numbers and timestamps when it drains the queue.
func (s *State) emit(actor, eventType string, payload any) {
	s.queued = append(s.queued, protocol.Event{
		SchemaVersion: protocol.SchemaVersion,
		Turn:          s.Turn,
		Phase:         s.Phase.String(),
		Actor:         actor,
		Type:          eventType,
		Payload:       payload,
	})
}

// TakeEvents drains the queued events accumulated since the last call.
func (s *State) TakeEvents() []protocol.Event {
	events := s.queued
	s.queued = nil
	return events
}
