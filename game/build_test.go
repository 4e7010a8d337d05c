package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"monopoly/protocol"
)

// lightBlues seats two players and hands alice the full light-blue group,
// ready to manage. House cost on the group is 50.
func lightBlues(t *testing.T) *State {
	t.Helper()
	s := New("run-1", []string{"alice", "bob"}, 42)
	for _, i := range []int{6, 7, 9} {
		s.Spaces[i].Owner = 0
	}
	managing(s, 0)
	return s
}

func buildPlan(steps ...[2]int) map[string]any {
	items := make([]any, len(steps))
	for i, st := range steps {
		items[i] = map[string]any{"space": st[0], "houses": st[1]}
	}
	return map[string]any{"plan": items}
}

func TestBuildPlan(t *testing.T) {
	t.Run("committing a multi-space plan in space order", func(t *testing.T) {
		s := lightBlues(t)

		require.NoError(t, s.Apply(action(ActionBuild, buildPlan([2]int{6, 2}, [2]int{7, 2}, [2]int{9, 1}))))

		require.Equal(t, 2, s.Spaces[6].Houses, "Each step should land on its space")
		require.Equal(t, 2, s.Spaces[7].Houses, "Each step should land on its space")
		require.Equal(t, 1, s.Spaces[9].Houses, "Each step should land on its space")
		require.Equal(t, startingCash-250, s.Players[0].Cash, "Five houses at 50 should be paid for")
		require.Equal(t, TotalHouses-5, s.Bank.Houses, "The bank should hand out five houses")

		var spaces, counts []int
		for _, ev := range s.TakeEvents() {
			if ev.Type != EventHouseBuilt {
				continue
			}
			p := ev.Payload.(HouseBuiltPayload)
			spaces = append(spaces, p.Space)
			counts = append(counts, p.Houses)
		}
		require.Equal(t, []int{6, 6, 7, 7, 9}, spaces, "One event per house, ascending by space")
		require.Equal(t, []int{1, 2, 1, 2, 1}, counts, "Each event should carry the running count")
	})

	t.Run("rejecting a plan that leaves the group uneven", func(t *testing.T) {
		s := lightBlues(t)

		err := s.Apply(action(ActionBuild, buildPlan([2]int{6, 2})))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "plan", verr.Issues[0].Field, "Arrangement issues belong to the whole plan")
		require.Contains(t, verr.Issues[0].Reason, "unevenly")
		require.Equal(t, 0, s.Spaces[6].Houses, "A rejected plan should build nothing")
	})

	t.Run("rejecting a duplicated space", func(t *testing.T) {
		s := lightBlues(t)

		err := s.Apply(action(ActionBuild, buildPlan([2]int{6, 1}, [2]int{6, 1})))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "plan[1].space", verr.Issues[0].Field, "The repeated entry should be named")
		require.Contains(t, verr.Issues[0].Reason, "appears twice")
	})

	t.Run("rejecting growth past four houses", func(t *testing.T) {
		s := lightBlues(t)
		for _, i := range []int{6, 7, 9} {
			s.Spaces[i].Houses = 3
		}

		err := s.Apply(action(ActionBuild, buildPlan([2]int{6, 2})))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "plan[0].houses", verr.Issues[0].Field)
		require.Contains(t, verr.Issues[0].Reason, "cap")
	})

	t.Run("rejecting a plan the bank cannot supply", func(t *testing.T) {
		s := lightBlues(t)
		s.Bank.Houses = 4

		err := s.Apply(action(ActionBuild, buildPlan([2]int{6, 2}, [2]int{7, 2}, [2]int{9, 1})))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "plan needs 5 houses, bank has 4", verr.Issues[0].Reason)
		require.Equal(t, 4, s.Bank.Houses, "A rejected plan should take nothing from the bank")
	})

	t.Run("rejecting a plan the player cannot pay for", func(t *testing.T) {
		s := lightBlues(t)
		s.Players[0].Cash = 200

		err := s.Apply(action(ActionBuild, buildPlan([2]int{6, 2}, [2]int{7, 2}, [2]int{9, 1})))

		var verr *protocol.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "plan costs 250, alice has 200", verr.Issues[0].Reason)
		require.Equal(t, 200, s.Players[0].Cash, "A rejected plan should charge nothing")
	})
}

func TestHotel(t *testing.T) {
	t.Run("trading four houses for a hotel", func(t *testing.T) {
		s := lightBlues(t)
		for _, i := range []int{6, 7, 9} {
			s.Spaces[i].Houses = HotelHouses
		}
		s.Bank.Houses = TotalHouses - 12

		require.NoError(t, s.Apply(action(ActionBuildHotel, map[string]any{"space": 6})))

		require.True(t, s.Spaces[6].Hotel, "The hotel should stand")
		require.Equal(t, 0, s.Spaces[6].Houses, "The four houses should come down")
		require.Equal(t, startingCash-50, s.Players[0].Cash, "A hotel costs one house increment")
		require.Equal(t, TotalHouses-12+HotelHouses, s.Bank.Houses, "The houses should return to the bank")
		require.Equal(t, TotalHotels-1, s.Bank.Hotels, "The bank should hand out one hotel")
		built := findEvent(t, s.TakeEvents(), EventHotelBuilt).Payload.(HotelBuiltPayload)
		require.Equal(t, 6, built.Space)
	})

	t.Run("requiring exactly four houses first", func(t *testing.T) {
		s := lightBlues(t)
		s.Spaces[6].Houses = 3
		s.Spaces[7].Houses = 4
		s.Spaces[9].Houses = 4

		err := s.Apply(action(ActionBuildHotel, map[string]any{"space": 6}))

		require.Error(t, err)
		require.Contains(t, err.Error(), "a hotel needs 4")
	})

	t.Run("keeping the group even across hotels and houses", func(t *testing.T) {
		s := lightBlues(t)
		s.Spaces[6].Houses = 4
		s.Spaces[7].Houses = 4
		s.Spaces[9].Houses = 3

		err := s.Apply(action(ActionBuildHotel, map[string]any{"space": 6}))

		require.Error(t, err)
		require.Contains(t, err.Error(), "unevenly")
	})

	t.Run("selling a hotel back for four houses", func(t *testing.T) {
		s := lightBlues(t)
		for _, i := range []int{6, 7, 9} {
			s.Spaces[i].Hotel = true
		}
		s.Bank.Hotels = TotalHotels - 3

		require.NoError(t, s.Apply(action(ActionSellHotel, map[string]any{"space": 6})))

		require.False(t, s.Spaces[6].Hotel)
		require.Equal(t, HotelHouses, s.Spaces[6].Houses, "Four houses should replace the hotel")
		require.Equal(t, TotalHouses-HotelHouses, s.Bank.Houses, "The replacement houses come from the bank")
		require.Equal(t, TotalHotels-2, s.Bank.Hotels, "The hotel should return to the bank")
		require.Equal(t, startingCash+25, s.Players[0].Cash, "The refund is half the house cost")
		sold := findEvent(t, s.TakeEvents(), EventHotelSold).Payload.(HotelSoldPayload)
		require.Equal(t, HotelHouses, sold.Houses)
		require.Equal(t, 25, sold.Refund)
	})

	t.Run("demolishing outright when the bank is short of houses", func(t *testing.T) {
		s := lightBlues(t)
		for _, i := range []int{6, 7, 9} {
			s.Spaces[i].Hotel = true
		}
		s.Bank.Hotels = TotalHotels - 3
		s.Bank.Houses = 2

		require.NoError(t, s.Apply(action(ActionSellHotel, map[string]any{"space": 6})))

		require.False(t, s.Spaces[6].Hotel)
		require.Equal(t, 0, s.Spaces[6].Houses, "No replacement houses were available")
		require.Equal(t, 2, s.Bank.Houses, "The starved bank should stay untouched")
		require.Equal(t, startingCash+125, s.Players[0].Cash, "The refund covers all five building increments at half cost")
		sold := findEvent(t, s.TakeEvents(), EventHotelSold).Payload.(HotelSoldPayload)
		require.Equal(t, 0, sold.Houses)
		require.Equal(t, 125, sold.Refund)
	})
}

func TestSellHouse(t *testing.T) {
	s := lightBlues(t)
	s.Spaces[6].Houses = 2
	s.Spaces[7].Houses = 1
	s.Spaces[9].Houses = 1

	err := s.Apply(action(ActionSellHouse, map[string]any{"space": 7}))
	require.Error(t, err, "Selling from the low space should break evenness")
	require.Contains(t, err.Error(), "unevenly")
	require.Equal(t, 1, s.Spaces[7].Houses, "A rejected sale should change nothing")

	require.NoError(t, s.Apply(action(ActionSellHouse, map[string]any{"space": 6})))
	require.Equal(t, 1, s.Spaces[6].Houses, "The tall space should shrink")
	require.Equal(t, TotalHouses+1, s.Bank.Houses, "The house should return to the bank")
	require.Equal(t, startingCash+25, s.Players[0].Cash, "The refund is half the house cost")
	sold := findEvent(t, s.TakeEvents(), EventHouseSold).Payload.(HouseSoldPayload)
	require.Equal(t, 6, sold.Space)
	require.Equal(t, 1, sold.Houses)
	require.Equal(t, 25, sold.Refund)
}

func TestMortgaging(t *testing.T) {
	t.Run("refusing to mortgage under buildings", func(t *testing.T) {
		s := lightBlues(t)
		for _, i := range []int{6, 7, 9} {
			s.Spaces[i].Houses = 1
		}

		err := s.Apply(action(ActionMortgage, map[string]any{"space": 6}))

		require.Error(t, err)
		require.Contains(t, err.Error(), "still carries buildings")
		require.False(t, s.Spaces[6].Mortgaged)
	})

	t.Run("mortgaging a railroad at half price", func(t *testing.T) {
		s := New("run-1", []string{"alice", "bob"}, 42)
		s.Spaces[5].Owner = 0
		managing(s, 0)

		require.NoError(t, s.Apply(action(ActionMortgage, map[string]any{"space": 5})))

		require.True(t, s.Spaces[5].Mortgaged)
		require.Equal(t, startingCash+100, s.Players[0].Cash, "Half the 200 price should be advanced")
		paid := findEvent(t, s.TakeEvents(), EventMortgaged).Payload.(MortgagePayload)
		require.Equal(t, 100, paid.Amount)
	})

	t.Run("lifting a mortgage at a ten percent premium", func(t *testing.T) {
		s := New("run-1", []string{"alice", "bob"}, 42)
		s.Spaces[5].Owner = 0
		s.Spaces[5].Mortgaged = true
		managing(s, 0)

		require.NoError(t, s.Apply(action(ActionUnmortgage, map[string]any{"space": 5})))

		require.False(t, s.Spaces[5].Mortgaged)
		require.Equal(t, startingCash-110, s.Players[0].Cash, "The lift costs the mortgage value plus ten percent, rounded up")
		lifted := findEvent(t, s.TakeEvents(), EventUnmortgaged).Payload.(MortgagePayload)
		require.Equal(t, 110, lifted.Amount)
	})

	t.Run("refusing a lift the player cannot pay", func(t *testing.T) {
		s := New("run-1", []string{"alice", "bob"}, 42)
		s.Spaces[5].Owner = 0
		s.Spaces[5].Mortgaged = true
		s.Players[0].Cash = 100
		managing(s, 0)

		err := s.Apply(action(ActionUnmortgage, map[string]any{"space": 5}))

		require.Error(t, err)
		require.Contains(t, err.Error(), "lifting the mortgage costs 110")
		require.True(t, s.Spaces[5].Mortgaged)
	})
}
