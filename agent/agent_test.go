package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"monopoly/protocol"
)

func decisionReq(typ, id string, snap protocol.Snapshot, menu ...protocol.LegalAction) protocol.DecisionRequest {
	return protocol.DecisionRequest{
		Point: protocol.DecisionPoint{
			SchemaVersion: protocol.SchemaVersion,
			DecisionID:    id,
			Type:          typ,
			Player:        "alice",
			Turn:          4,
			Snapshot:      snap,
			LegalActions:  menu,
		},
		Attempt: 1,
	}
}

func bare(name string) protocol.LegalAction { return protocol.LegalAction{Name: name} }

func boardWith(cash, position int) protocol.Snapshot {
	snap := protocol.Snapshot{
		SchemaVersion: protocol.SchemaVersion,
		Players: []protocol.PlayerState{
			{Name: "alice", Cash: cash, Position: position},
			{Name: "bob", Cash: 1500},
		},
		Spaces: make([]protocol.SpaceState, 40),
	}
	for i := range snap.Spaces {
		snap.Spaces[i].Index = i
	}
	return snap
}

func TestGreedy(t *testing.T) {
	ctx := context.Background()
	g := NewGreedy("greedy")

	t.Run("stamps the response onto the request's decision", func(t *testing.T) {
		act, err := g.Decide(ctx, decisionReq("jail", "d-0007", boardWith(1500, 10), bare("roll")))

		require.NoError(t, err)
		require.Equal(t, protocol.SchemaVersion, act.SchemaVersion, "Response should carry the protocol version")
		require.Equal(t, "d-0007", act.DecisionID, "Response should answer the request's decision")
		require.Equal(t, "roll", act.Name)
		require.Nil(t, act.Args, "An argless choice should omit args")
	})

	t.Run("prefers a jail card over paying", func(t *testing.T) {
		act, err := g.Decide(ctx, decisionReq("jail", "d-1", boardWith(1500, 10),
			bare("pay"), bare("use_card"), bare("roll")))

		require.NoError(t, err)
		require.Equal(t, "use_card", act.Name, "A held card should be spent before cash")
	})

	t.Run("pays the jail fine only when flush", func(t *testing.T) {
		flush, err := g.Decide(ctx, decisionReq("jail", "d-1", boardWith(150, 10), bare("pay"), bare("roll")))
		require.NoError(t, err)
		require.Equal(t, "pay", flush.Name, "150 cash should cover the fine comfortably")

		broke, err := g.Decide(ctx, decisionReq("jail", "d-1", boardWith(149, 10), bare("pay"), bare("roll")))
		require.NoError(t, err)
		require.Equal(t, "roll", broke.Name, "Below the comfort line it should roll for doubles")
	})

	t.Run("buys when the reserve survives", func(t *testing.T) {
		snap := boardWith(220, 9)
		snap.Spaces[9].Price = 120

		act, err := g.Decide(ctx, decisionReq("buy_or_auction", "d-1", snap, bare("buy"), bare("decline")))
		require.NoError(t, err)
		require.Equal(t, "buy", act.Name, "120 out of 220 leaves the full reserve")

		snap.Players[0].Cash = 219
		act, err = g.Decide(ctx, decisionReq("buy_or_auction", "d-1", snap, bare("buy"), bare("decline")))
		require.NoError(t, err)
		require.Equal(t, "decline", act.Name, "Dipping into the reserve should decline")
	})

	t.Run("bids the floor only on a bargain", func(t *testing.T) {
		snap := boardWith(400, 0)
		snap.Auction = &protocol.AuctionState{Space: 5}
		snap.Spaces[5].Price = 200
		menu := func(floor int) []protocol.LegalAction {
			return []protocol.LegalAction{
				{Name: "bid", Args: protocol.ArgSchema{Fields: []protocol.Field{
					protocol.IntRange("amount", floor, 400, true),
				}}},
				bare("drop_out"),
			}
		}

		act, err := g.Decide(ctx, decisionReq("auction_bid", "d-1", snap, menu(150)...))
		require.NoError(t, err)
		require.Equal(t, "bid", act.Name, "Three quarters of list price is still worth taking")
		require.Equal(t, map[string]any{"amount": 150}, act.Args, "The bid should sit on the floor")

		act, err = g.Decide(ctx, decisionReq("auction_bid", "d-1", snap, menu(151)...))
		require.NoError(t, err)
		require.Equal(t, "drop_out", act.Name, "Past the bargain line it should drop out")

		snap.Players[0].Cash = 199
		act, err = g.Decide(ctx, decisionReq("auction_bid", "d-1", snap, menu(150)...))
		require.NoError(t, err)
		require.Equal(t, "drop_out", act.Name, "A bid that drains the half reserve should drop out")
	})

	t.Run("builds a single house on the first open space", func(t *testing.T) {
		one, three := 1, 3
		build := protocol.LegalAction{Name: "build", Args: protocol.ArgSchema{Fields: []protocol.Field{{
			Name: "plan", Type: protocol.FieldArray, Required: true, Min: &one, Max: &three,
			Elem: &protocol.Field{Type: protocol.FieldObject, Fields: []protocol.Field{
				{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: []int{6, 7, 9}},
				protocol.IntRange("houses", 1, 4, true),
			}},
		}}}}

		act, err := g.Decide(ctx, decisionReq("post_turn", "d-1", boardWith(600, 0), build, bare("end_turn")))

		require.NoError(t, err)
		require.Equal(t, "build", act.Name)
		require.Equal(t, map[string]any{"plan": []any{map[string]any{"space": 6, "houses": 1}}}, act.Args,
			"One house on the first buildable space")
	})

	t.Run("caps a street before lifting mortgages", func(t *testing.T) {
		hotel := protocol.LegalAction{Name: "build_hotel", Args: protocol.ArgSchema{Fields: []protocol.Field{
			{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: []int{9}},
		}}}
		lift := protocol.LegalAction{Name: "unmortgage", Args: protocol.ArgSchema{Fields: []protocol.Field{
			{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: []int{5}},
		}}}

		act, err := g.Decide(ctx, decisionReq("post_turn", "d-1", boardWith(600, 0), hotel, lift, bare("end_turn")))
		require.NoError(t, err)
		require.Equal(t, "build_hotel", act.Name)
		require.Equal(t, map[string]any{"space": 9}, act.Args)

		act, err = g.Decide(ctx, decisionReq("post_turn", "d-1", boardWith(600, 0), lift, bare("end_turn")))
		require.NoError(t, err)
		require.Equal(t, "unmortgage", act.Name, "With nothing to build it should lift the mortgage")
		require.Equal(t, map[string]any{"space": 5}, act.Args)
	})

	t.Run("liquidates in menu order", func(t *testing.T) {
		mortgage := protocol.LegalAction{Name: "mortgage", Args: protocol.ArgSchema{Fields: []protocol.Field{
			{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: []int{9, 19}},
		}}}

		act, err := g.Decide(ctx, decisionReq("liquidation", "d-1", boardWith(10, 0), mortgage, bare("declare_bankruptcy")))
		require.NoError(t, err)
		require.Equal(t, "mortgage", act.Name, "The first menu entry raises cash")
		require.Equal(t, map[string]any{"space": 9}, act.Args)

		act, err = g.Decide(ctx, decisionReq("liquidation", "d-1", boardWith(10, 0), bare("declare_bankruptcy")))
		require.NoError(t, err)
		require.Equal(t, "declare_bankruptcy", act.Name, "An empty estate leaves only bankruptcy")
		require.Nil(t, act.Args)
	})

	t.Run("accepts only pure profit trades", func(t *testing.T) {
		snap := boardWith(1500, 0)
		snap.Trade = &protocol.TradeState{
			Proposer:  "bob",
			Responder: "alice",
			Offer:     protocol.TradeBundle{Cash: 50},
		}
		menu := []protocol.LegalAction{bare("accept"), bare("reject")}

		act, err := g.Decide(ctx, decisionReq("trade_respond", "d-1", snap, menu...))
		require.NoError(t, err)
		require.Equal(t, "accept", act.Name, "Free cash is pure profit")

		snap.Trade.Request = protocol.TradeBundle{Properties: []int{3}}
		act, err = g.Decide(ctx, decisionReq("trade_respond", "d-1", snap, menu...))
		require.NoError(t, err)
		require.Equal(t, "reject", act.Name, "Giving up property is never accepted")

		snap.Trade.Request = protocol.TradeBundle{Cash: 60}
		act, err = g.Decide(ctx, decisionReq("trade_respond", "d-1", snap, menu...))
		require.NoError(t, err)
		require.Equal(t, "reject", act.Name, "A net cash loss is rejected")
	})
}

func TestRandom(t *testing.T) {
	ctx := context.Background()
	menu := []protocol.LegalAction{
		{Name: "bid", Args: protocol.ArgSchema{Fields: []protocol.Field{
			protocol.IntRange("amount", 10, 100, true),
			{Name: "note", Type: protocol.FieldString, Enum: []string{"hi"}},
		}}},
		bare("drop_out"),
	}

	t.Run("same seed gives the same choices", func(t *testing.T) {
		first := NewRandom("r1", 99)
		second := NewRandom("r2", 99)

		for i := 0; i < 20; i++ {
			req := decisionReq("auction_bid", "d-1", protocol.Snapshot{}, menu...)
			a, err := first.Decide(ctx, req)
			require.NoError(t, err)
			b, err := second.Decide(ctx, req)
			require.NoError(t, err)
			require.Equal(t, a, b, "Reseeded agents should replay the same stream")
		}
	})

	t.Run("samples only required fields within bounds", func(t *testing.T) {
		r := NewRandom("r", 7)

		for i := 0; i < 40; i++ {
			act, err := r.Decide(ctx, decisionReq("auction_bid", "d-1", protocol.Snapshot{}, menu...))
			require.NoError(t, err)
			if act.Name == "drop_out" {
				require.Nil(t, act.Args, "An argless pick should omit args")
				continue
			}
			require.Equal(t, "bid", act.Name)
			require.NotContains(t, act.Args, "note", "Optional fields stay unset")
			amount, ok := act.Args["amount"].(int)
			require.True(t, ok, "Sampled ints should stay ints")
			require.GreaterOrEqual(t, amount, 10, "Sample should respect the minimum")
			require.LessOrEqual(t, amount, 100, "Sample should respect the maximum")
		}
	})

	t.Run("draws from int enums", func(t *testing.T) {
		r := NewRandom("r", 13)
		pick := protocol.LegalAction{Name: "mortgage", Args: protocol.ArgSchema{Fields: []protocol.Field{
			{Name: "space", Type: protocol.FieldInt, Required: true, IntEnum: []int{6, 7, 9}},
		}}}

		for i := 0; i < 20; i++ {
			act, err := r.Decide(ctx, decisionReq("liquidation", "d-1", protocol.Snapshot{}, pick))
			require.NoError(t, err)
			require.Contains(t, []int{6, 7, 9}, act.Args["space"], "Sample should come from the enum")
		}
	})

	t.Run("covers the whole menu eventually", func(t *testing.T) {
		r := NewRandom("r", 21)
		seen := map[string]bool{}

		for i := 0; i < 60; i++ {
			act, err := r.Decide(ctx, decisionReq("jail", "d-1", protocol.Snapshot{},
				bare("pay"), bare("use_card"), bare("roll")))
			require.NoError(t, err)
			seen[act.Name] = true
		}

		require.Len(t, seen, 3, "Sixty uniform draws should hit all three options")
	})
}

func TestScripted(t *testing.T) {
	ctx := context.Background()

	t.Run("plays the script in order and restamps ids", func(t *testing.T) {
		script := NewScripted("replay", []protocol.Action{
			{Name: "roll", DecisionID: "stale", SchemaVersion: 99},
			{Name: "buy", Args: map[string]any{"space": 9}},
		})
		require.Equal(t, 2, script.Remaining())

		first, err := script.Decide(ctx, decisionReq("jail", "d-0001", protocol.Snapshot{}, bare("roll")))
		require.NoError(t, err)
		require.Equal(t, "roll", first.Name)
		require.Equal(t, "d-0001", first.DecisionID, "The script entry should answer the live decision")
		require.Equal(t, protocol.SchemaVersion, first.SchemaVersion, "Stale versions should be restamped")

		second, err := script.Decide(ctx, decisionReq("buy_or_auction", "d-0002", protocol.Snapshot{}, bare("buy")))
		require.NoError(t, err)
		require.Equal(t, "buy", second.Name)
		require.Equal(t, "d-0002", second.DecisionID)
		require.Equal(t, map[string]any{"space": 9}, second.Args, "Recorded args should pass through untouched")
		require.Zero(t, script.Remaining(), "Both entries should be consumed")
	})

	t.Run("running out of script is an error", func(t *testing.T) {
		script := NewScripted("replay", []protocol.Action{{Name: "roll"}})
		_, err := script.Decide(ctx, decisionReq("jail", "d-0001", protocol.Snapshot{}, bare("roll")))
		require.NoError(t, err)

		_, err = script.Decide(ctx, decisionReq("jail", "d-0002", protocol.Snapshot{}, bare("roll")))

		require.EqualError(t, err, "script for replay exhausted after 1 actions")
	})
}
