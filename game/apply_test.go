package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"monopoly/protocol"
)

func action(name string, args map[string]any) protocol.Action {
	return protocol.Action{SchemaVersion: protocol.SchemaVersion, Name: name, Args: args}
}

func TestApply(t *testing.T) {
	t.Run("rejecting any action outside a decision window", func(t *testing.T) {
		s := New("run-1", []string{"alice", "bob"}, 42)

		err := s.Apply(action(ActionEndTurn, nil))

		require.Error(t, err, "Apply should refuse when nothing is pending")
		require.Contains(t, err.Error(), "no decision pending", "Error should say what went wrong")
	})

	t.Run("accepting a purchase", func(t *testing.T) {
		s := newGame(t, [][2]int{{3, 4}})
		s.BeginTurn()
		s.RollAndMove()
		s.TakeEvents()

		require.NoError(t, s.Apply(action(ActionBuy, nil)))

		require.Equal(t, 0, s.Spaces[7].Owner, "The deed should change hands")
		require.Equal(t, startingCash-100, s.Players[0].Cash, "The price should be deducted")
		require.Equal(t, -1, s.PendingBuy, "The purchase window should close")
		require.Equal(t, DecisionPostTurn, s.Decision.Type, "The turn should continue with management")

		bought := findEvent(t, s.TakeEvents(), EventPropertyPurchased).Payload.(PurchasePayload)
		require.Equal(t, 7, bought.Space, "Purchase event should name the space")
		require.Equal(t, 100, bought.Price, "Purchase event should carry the price")
	})

	t.Run("keeping the state untouched when the applier rejects", func(t *testing.T) {
		s := newGame(t, [][2]int{{3, 4}})
		s.BeginTurn()
		s.RollAndMove()
		s.TakeEvents()
		s.Players[0].Cash = 50

		err := s.Apply(action(ActionBuy, nil))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr, "Cross-field failures should surface as validation errors")
		require.Equal(t, -1, s.Spaces[7].Owner, "The deed should stay with the bank")
		require.Equal(t, 50, s.Players[0].Cash, "No cash should move")
		require.Equal(t, 7, s.PendingBuy, "The purchase window should stay open")
		require.NotNil(t, s.Decision, "The decision should still be pending")
		require.Empty(t, s.TakeEvents(), "A rejected action should emit nothing")
	})

	t.Run("rejecting an action foreign to the decision", func(t *testing.T) {
		s := newGame(t, [][2]int{{3, 4}})
		s.BeginTurn()
		s.RollAndMove()

		err := s.Apply(action(ActionBid, map[string]any{"amount": 10}))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr, "Foreign actions should be rejected")
		require.Contains(t, verr.Error(), "not a purchase action", "Error should name the mismatch")
	})

	t.Run("declining hands the property to the auction block", func(t *testing.T) {
		s := newGame(t, [][2]int{{3, 4}})
		s.BeginTurn()
		s.RollAndMove()
		s.TakeEvents()

		require.NoError(t, s.Apply(action(ActionDecline, nil)))

		require.Equal(t, -1, s.Spaces[7].Owner, "The deed should stay with the bank")
		require.NotNil(t, s.Auction, "An auction should open")
		require.Equal(t, 7, s.Auction.Space, "The auction should cover the declined space")
		require.Equal(t, DecisionAuctionBid, s.Decision.Type, "Bidding should start at once")

		events := s.TakeEvents()
		findEvent(t, events, EventPurchaseDeclined)
		findEvent(t, events, EventAuctionStarted)
	})
}
