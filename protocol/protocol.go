package protocol

import "encoding/json"

// SchemaVersion tags every record that crosses the engine boundary. A breaking
// payload change requires bumping this and updating every producer and
// consumer together.
const SchemaVersion = 1

// Actor values for events not attributable to a single player.
const (
	ActorEngine = "engine"
	ActorBank   = "bank"
)

// Snapshot is the full observable game state after a committed transition.
// A renderer can resync from any snapshot at any time.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	RunID         string        `json:"run_id"`
	Seq           uint64        `json:"seq"`
	Turn          int           `json:"turn_index"`
	Phase         string        `json:"phase"`
	Current       string        `json:"current_player"`
	Players       []PlayerState `json:"players"`
	Spaces        []SpaceState  `json:"spaces"`
	Bank          BankState     `json:"bank"`
	Auction       *AuctionState `json:"auction,omitempty"`
	Trade         *TradeState   `json:"trade,omitempty"`
	Debts         []DebtState   `json:"debts,omitempty"`
}

type PlayerState struct {
	Name      string `json:"name"`
	Cash      int    `json:"cash"`
	Position  int    `json:"position"`
	InJail    bool   `json:"in_jail,omitempty"`
	JailTurns int    `json:"jail_turns,omitempty"`
	JailCards int    `json:"jail_cards,omitempty"`
	Doubles   int    `json:"doubles,omitempty"`
	Bankrupt  bool   `json:"bankrupt,omitempty"`
}

type SpaceState struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Group     string `json:"group,omitempty"`
	Price     int    `json:"price,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Houses    int    `json:"houses,omitempty"`
	Hotel     bool   `json:"hotel,omitempty"`
	Mortgaged bool   `json:"mortgaged,omitempty"`
}

type BankState struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

type AuctionState struct {
	Space      int      `json:"space"`
	HighBid    int      `json:"high_bid"`
	HighBidder string   `json:"high_bidder,omitempty"`
	Active     []string `json:"active_bidders"`
	Bidder     string   `json:"current_bidder"`
	Initiator  string   `json:"initiator"`
}

type TradeState struct {
	Proposer     string          `json:"proposer"`
	Responder    string          `json:"responder"`
	Offer        TradeBundle     `json:"offer"`
	Request      TradeBundle     `json:"request"`
	Exchanges    int             `json:"exchanges"`
	MaxExchanges int             `json:"max_exchanges"`
	History      []TradeExchange `json:"history,omitempty"`
}

// TradeBundle is one side of a trade: cash, property indices, jail cards.
type TradeBundle struct {
	Cash       int   `json:"cash"`
	Properties []int `json:"properties,omitempty"`
	JailCards  int   `json:"jail_cards,omitempty"`
}

type TradeExchange struct {
	By      string      `json:"by"`
	Offer   TradeBundle `json:"offer"`
	Request TradeBundle `json:"request"`
}

type DebtState struct {
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason,omitempty"`
}

// Event is one record of the append-only log. Seq is strictly increasing and
// never reused. Timestamp is wall-clock observability only and is the one
// field stripped during replay canonicalization.
type Event struct {
	SchemaVersion int    `json:"schema_version"`
	Seq           uint64 `json:"seq"`
	Turn          int    `json:"turn_index"`
	Phase         string `json:"phase"`
	Actor         string `json:"actor"`
	Type          string `json:"type"`
	Payload       any    `json:"payload,omitempty"`
	Timestamp     int64  `json:"ts_ms,omitempty"`
}

// LegalAction is an action name paired with the declarative schema its args
// must satisfy.
type LegalAction struct {
	Name string    `json:"name"`
	Args ArgSchema `json:"args"`
}

type ArgSchema struct {
	Fields []Field `json:"fields,omitempty"`
}

// FieldType enumerates the argument value kinds the validator understands.
type FieldType string

const (
	FieldInt    FieldType = "int"
	FieldString FieldType = "string"
	FieldBool   FieldType = "bool"
	FieldArray  FieldType = "array"
	FieldObject FieldType = "object"
)

// Field declares one argument: name, type, and the constraints a submitted
// value must satisfy. Min/Max bound ints, Enum and IntEnum restrict values to
// a fixed set, Elem describes array elements, Fields describes object members.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Min      *int      `json:"min,omitempty"`
	Max      *int      `json:"max,omitempty"`
	Enum     []string  `json:"enum,omitempty"`
	IntEnum  []int     `json:"int_enum,omitempty"`
	Elem     *Field    `json:"elem,omitempty"`
	Fields   []Field   `json:"fields,omitempty"`
}

// IntRange is a convenience constructor for a bounded int field.
func IntRange(name string, min, max int, required bool) Field {
	return Field{Name: name, Type: FieldInt, Required: required, Min: &min, Max: &max}
}

// DecisionPoint is the engine's request for an external choice: the acting
// player, a full snapshot, and the exhaustive legal-action menu.
type DecisionPoint struct {
	SchemaVersion int           `json:"schema_version"`
	DecisionID    string        `json:"decision_id"`
	Type          string        `json:"decision_type"`
	Player        string        `json:"player_id"`
	Turn          int           `json:"turn_index"`
	Snapshot      Snapshot      `json:"snapshot"`
	LegalActions  []LegalAction `json:"legal_actions"`
}

// DecisionRequest is what an agent actually receives. On the single permitted
// retry, Feedback carries the first attempt and why it was rejected; the menu
// is unchanged.
type DecisionRequest struct {
	Point    DecisionPoint `json:"decision"`
	Attempt  int           `json:"attempt"`
	Feedback *Feedback     `json:"feedback,omitempty"`
}

type Feedback struct {
	Rejected Action  `json:"rejected"`
	Issues   []Issue `json:"issues"`
}

// Action is an agent's answer to a decision point. DecisionID must match the
// decision it responds to, Name must be a member of that decision's legal set,
// and Args must validate against the matching schema.
type Action struct {
	SchemaVersion int            `json:"schema_version"`
	DecisionID    string         `json:"decision_id"`
	Name          string         `json:"action"`
	Args          map[string]any `json:"args,omitempty"`
}

// Outcome classifies how a decision was resolved.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRetried  Outcome = "accepted_on_retry"
	OutcomeFallback Outcome = "fallback"
)

// AttemptRecord is the audit trail of one request attempt. Not part of the
// replay-critical event stream.
type AttemptRecord struct {
	Attempt   int             `json:"attempt"`
	Response  json.RawMessage `json:"response,omitempty"`
	Valid     bool            `json:"valid"`
	Issues    []Issue         `json:"issues,omitempty"`
	TimedOut  bool            `json:"timed_out,omitempty"`
	Err       string          `json:"error,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// DecisionRecord is the per-decision audit record: every attempt, the final
// outcome, and the action actually applied.
type DecisionRecord struct {
	SchemaVersion int             `json:"schema_version"`
	RunID         string          `json:"run_id"`
	DecisionID    string          `json:"decision_id"`
	Turn          int             `json:"turn_index"`
	Type          string          `json:"decision_type"`
	Player        string          `json:"player_id"`
	Outcome       Outcome         `json:"outcome"`
	Resolved      Action          `json:"resolved"`
	Attempts      []AttemptRecord `json:"attempts"`
}

// Handshake opens every observer stream and identifies the run.
type Handshake struct {
	SchemaVersion int    `json:"schema_version"`
	RunID         string `json:"run_id"`
	Kind          string `json:"kind"`
}
