package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// openAuction walks alice onto Vermont Avenue and declines it, putting the
// space under the hammer with all three players.
func openAuction(t *testing.T) *State {
	t.Helper()
	s := New("run-1", []string{"alice", "bob", "carol"}, 42,
		WithDice(&FixedDice{Rolls: [][2]int{{3, 4}}}))
	s.BeginTurn()
	s.RollAndMove()
	require.NoError(t, s.Apply(action(ActionDecline, nil)))
	s.TakeEvents()
	return s
}

func TestAuction(t *testing.T) {
	t.Run("opening with every active player, initiator first", func(t *testing.T) {
		s := New("run-1", []string{"alice", "bob", "carol"}, 42,
			WithDice(&FixedDice{Rolls: [][2]int{{3, 4}}}))
		s.BeginTurn()
		s.RollAndMove()

		require.NoError(t, s.Apply(action(ActionDecline, nil)))

		require.Equal(t, []int{0, 1, 2}, s.Auction.Order, "Bidder order should start with the initiator")
		require.Equal(t, 0, s.Auction.bidder(), "The initiator should be asked first")
		started := findEvent(t, s.TakeEvents(), EventAuctionStarted).Payload.(AuctionStartedPayload)
		require.Equal(t, []string{"alice", "bob", "carol"}, started.Bidders, "Opening event should list the bidders")
		require.Equal(t, "alice", started.Initiator, "Opening event should name the initiator")
	})

	t.Run("selling to the last standing bidder", func(t *testing.T) {
		s := openAuction(t)

		require.NoError(t, s.Apply(action(ActionBid, map[string]any{"amount": 10})))
		require.Equal(t, 1, s.Auction.bidder(), "Bidding should pass to the next seat")

		require.NoError(t, s.Apply(action(ActionDropOut, nil)))
		require.Equal(t, 2, s.Auction.bidder(), "Dropped seats should be skipped")

		require.NoError(t, s.Apply(action(ActionBid, map[string]any{"amount": 25})))
		require.Equal(t, 0, s.Auction.bidder(), "The outbid seat should be asked again")

		require.NoError(t, s.Apply(action(ActionDropOut, nil)))

		require.Nil(t, s.Auction, "The auction should close")
		require.Equal(t, 2, s.Spaces[7].Owner, "The high bidder should take the deed")
		require.Equal(t, startingCash-25, s.Players[2].Cash, "The high bid should be deducted")
		won := findEvent(t, s.TakeEvents(), EventAuctionWon).Payload.(AuctionWonPayload)
		require.Equal(t, "carol", won.Player, "Closing event should name the winner")
		require.Equal(t, 25, won.Amount, "Closing event should carry the price")
		require.Equal(t, DecisionPostTurn, s.Decision.Type, "The initiator's turn should resume")
	})

	t.Run("returning the deed to the bank when everyone passes", func(t *testing.T) {
		s := openAuction(t)

		require.NoError(t, s.Apply(action(ActionDropOut, nil)))
		require.NoError(t, s.Apply(action(ActionDropOut, nil)))
		require.NoError(t, s.Apply(action(ActionDropOut, nil)))

		require.Nil(t, s.Auction, "The auction should close")
		require.Equal(t, -1, s.Spaces[7].Owner, "The deed should stay with the bank")
		passed := findEvent(t, s.TakeEvents(), EventAuctionPassed).Payload.(AuctionPassedPayload)
		require.Equal(t, 7, passed.Space, "Closing event should name the space")
	})

	t.Run("holding the floor against a low bid", func(t *testing.T) {
		s := openAuction(t)
		require.NoError(t, s.Apply(action(ActionBid, map[string]any{"amount": 10})))

		err := s.Apply(action(ActionBid, map[string]any{"amount": 10}))

		require.Error(t, err, "Matching the high bid should be rejected")
		require.Contains(t, err.Error(), "below the floor", "Error should name the floor rule")
		require.Equal(t, 10, s.Auction.HighBid, "The standing bid should be untouched")
		require.Equal(t, 1, s.Auction.bidder(), "The same seat should still be asked")
	})

	t.Run("holding a bidder to their cash", func(t *testing.T) {
		s := openAuction(t)
		s.Players[0].Cash = 5

		err := s.Apply(action(ActionBid, map[string]any{"amount": 6}))

		require.Error(t, err, "Bidding beyond cash should be rejected")
		require.Contains(t, err.Error(), "exceeds", "Error should name the cash limit")
	})
}
