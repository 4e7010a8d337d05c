package game

import (
	"fmt"
	"sort"

	"monopoly/protocol"
)

// BuildStep is one entry of a build plan: add N houses to a space.
type BuildStep struct {
	Space  int
	Houses int
}

// arrangementLegal checks the even-building rule for one street group:
// house counts across non-hotel spaces spread at most one, exactly equal once
// any space in the group carries a hotel.
func arrangementLegal(houses []int, hotels int) bool {
	if len(houses) == 0 {
		return true
	}
	lo, hi := houses[0], houses[0]
	for _, h := range houses[1:] {
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	if hotels > 0 {
		return hi == lo
	}
	return hi-lo <= 1
}

// legalAfter reports whether a group's arrangement stays legal after one
// space's buildings are replaced by the given counts.
func (s *State) legalAfter(space, houses int, hotel bool) bool {
	var counts []int
	hotels := 0
	for _, i := range GroupSpaces(spaceDefs[space].Group) {
		h, hot := s.Spaces[i].Houses, s.Spaces[i].Hotel
		if i == space {
			h, hot = houses, hotel
		}
		if hot {
			hotels++
		} else {
			counts = append(counts, h)
		}
	}
	return arrangementLegal(counts, hotels)
}

func (s *State) groupUnmortgaged(g Group) bool {
	for _, i := range GroupSpaces(g) {
		if s.Spaces[i].Mortgaged {
			return false
		}
	}
	return true
}

// buildEligible holds the checks shared by house and hotel construction: a
// street the seat fully owns with no mortgage anywhere in the group.
func (s *State) buildEligible(seat, space int) bool {
	def := spaceDefs[space]
	return def.Kind == KindProperty &&
		s.Spaces[space].Owner == seat &&
		s.ownsGroup(seat, def.Group) &&
		s.groupUnmortgaged(def.Group)
}

// buildableSpaces lists spaces where the seat could legally place at least
// one house right now, in board order.
func (s *State) buildableSpaces(seat int) []int {
	if s.Bank.Houses == 0 {
		return nil
	}
	var spaces []int
	for i := range s.Spaces {
		if !s.buildEligible(seat, i) || s.Spaces[i].Hotel {
			continue
		}
		if s.Spaces[i].Houses >= HotelHouses {
			continue
		}
		if s.Players[seat].Cash < spaceDefs[i].HouseCost {
			continue
		}
		if s.legalAfter(i, s.Spaces[i].Houses+1, false) {
			spaces = append(spaces, i)
		}
	}
	return spaces
}

func (s *State) hotelableSpaces(seat int) []int {
	if s.Bank.Hotels == 0 {
		return nil
	}
	var spaces []int
	for i := range s.Spaces {
		if !s.buildEligible(seat, i) || s.Spaces[i].Hotel {
			continue
		}
		if s.Spaces[i].Houses != HotelHouses {
			continue
		}
		if s.Players[seat].Cash < spaceDefs[i].HouseCost {
			continue
		}
		if s.legalAfter(i, 0, true) {
			spaces = append(spaces, i)
		}
	}
	return spaces
}

func (s *State) houseSellableSpaces(seat int) []int {
	var spaces []int
	for i := range s.Spaces {
		if s.Spaces[i].Owner != seat || s.Spaces[i].Houses == 0 {
			continue
		}
		if s.legalAfter(i, s.Spaces[i].Houses-1, false) {
			spaces = append(spaces, i)
		}
	}
	return spaces
}

// hotelSellableSpaces lists hotels the seat may sell. When the bank cannot
// supply four replacement houses the hotel space is cleared outright, which
// is only offered if the group stays even afterwards.
func (s *State) hotelSellableSpaces(seat int) []int {
	var spaces []int
	for i := range s.Spaces {
		if s.Spaces[i].Owner != seat || !s.Spaces[i].Hotel {
			continue
		}
		after := HotelHouses
		if s.Bank.Houses < HotelHouses {
			after = 0
		}
		if s.legalAfter(i, after, false) {
			spaces = append(spaces, i)
		}
	}
	return spaces
}

// mortgageableSpaces lists unmortgaged holdings whose street group carries no
// buildings. Railroads and utilities only need to be unmortgaged.
func (s *State) mortgageableSpaces(seat int) []int {
	var spaces []int
	for i := range s.Spaces {
		def := spaceDefs[i]
		if !def.Ownable() || s.Spaces[i].Owner != seat || s.Spaces[i].Mortgaged {
			continue
		}
		if def.Kind == KindProperty && s.groupHasBuildings(def.Group) {
			continue
		}
		spaces = append(spaces, i)
	}
	return spaces
}

func (s *State) unmortgageableSpaces(seat int) []int {
	var spaces []int
	for i := range s.Spaces {
		def := spaceDefs[i]
		if !def.Ownable() || s.Spaces[i].Owner != seat || !s.Spaces[i].Mortgaged {
			continue
		}
		if s.Players[seat].Cash < def.UnmortgageCost() {
			continue
		}
		spaces = append(spaces, i)
	}
	return spaces
}

// tradableSpaces lists holdings the seat may offer in a trade: any railroad
// or utility, and streets whose group carries no buildings. Mortgaged
// properties travel as-is.
func (s *State) tradableSpaces(seat int) []int {
	var spaces []int
	for i := range s.Spaces {
		def := spaceDefs[i]
		if !def.Ownable() || s.Spaces[i].Owner != seat {
			continue
		}
		if def.Kind == KindProperty && s.groupHasBuildings(def.Group) {
			continue
		}
		spaces = append(spaces, i)
	}
	return spaces
}

// applyBuildPlan validates a whole plan against the final arrangement and
// commits it atomically. Events are emitted one per house in space-index
// order.
func (s *State) applyBuildPlan(seat int, plan []BuildStep) error {
	var issues []protocol.Issue
	adds := make(map[int]int, len(plan))
	for i, step := range plan {
		field := fmt.Sprintf("plan[%d]", i)
		if _, dup := adds[step.Space]; dup {
			issues = append(issues, protocol.Issue{Field: field + ".space", Reason: fmt.Sprintf("space %d appears twice", step.Space)})
			continue
		}
		if !s.buildEligible(seat, step.Space) {
			issues = append(issues, protocol.Issue{Field: field + ".space", Reason: fmt.Sprintf("space %d is not buildable for %s", step.Space, s.Players[seat].Name)})
			continue
		}
		if s.Spaces[step.Space].Hotel {
			issues = append(issues, protocol.Issue{Field: field + ".space", Reason: fmt.Sprintf("space %d already carries a hotel", step.Space)})
			continue
		}
		if final := s.Spaces[step.Space].Houses + step.Houses; final > HotelHouses {
			issues = append(issues, protocol.Issue{Field: field + ".houses", Reason: fmt.Sprintf("%d houses would exceed the %d-house cap", final, HotelHouses)})
			continue
		}
		adds[step.Space] = step.Houses
	}
	if len(issues) > 0 {
		return &protocol.ValidationError{Action: ActionBuild, Issues: issues}
	}

	groups := make(map[Group]bool)
	total, cost := 0, 0
	for space, n := range adds {
		groups[spaceDefs[space].Group] = true
		total += n
		cost += n * spaceDefs[space].HouseCost
	}
	for g := range groups {
		var counts []int
		hotels := 0
		for _, i := range GroupSpaces(g) {
			if s.Spaces[i].Hotel {
				hotels++
				continue
			}
			counts = append(counts, s.Spaces[i].Houses+adds[i])
		}
		if !arrangementLegal(counts, hotels) {
			issues = append(issues, protocol.Issue{Field: "plan", Reason: fmt.Sprintf("group %s would be built unevenly", g)})
		}
	}
	if total > s.Bank.Houses {
		issues = append(issues, protocol.Issue{Field: "plan", Reason: fmt.Sprintf("plan needs %d houses, bank has %d", total, s.Bank.Houses)})
	}
	if cost > s.Players[seat].Cash {
		issues = append(issues, protocol.Issue{Field: "plan", Reason: fmt.Sprintf("plan costs %d, %s has %d", cost, s.Players[seat].Name, s.Players[seat].Cash)})
	}
	if len(issues) > 0 {
		return &protocol.ValidationError{Action: ActionBuild, Issues: issues}
	}

	s.Players[seat].Cash -= cost
	s.Bank.Houses -= total
	ordered := make([]int, 0, len(adds))
	for space := range adds {
		ordered = append(ordered, space)
	}
	sort.Ints(ordered)
	for _, space := range ordered {
		for n := 0; n < adds[space]; n++ {
			s.Spaces[space].Houses++
			s.emit(s.Players[seat].Name, EventHouseBuilt, HouseBuiltPayload{
				Player: s.Players[seat].Name,
				Space:  space,
				Houses: s.Spaces[space].Houses,
			})
		}
	}
	return nil
}

func (s *State) applyBuildHotel(seat, space int) error {
	def := spaceDefs[space]
	switch {
	case !s.buildEligible(seat, space) || s.Spaces[space].Hotel:
		return semanticErr(ActionBuildHotel, "space", fmt.Sprintf("space %d is not eligible for a hotel", space))
	case s.Spaces[space].Houses != HotelHouses:
		return semanticErr(ActionBuildHotel, "space", fmt.Sprintf("space %d has %d houses, a hotel needs %d", space, s.Spaces[space].Houses, HotelHouses))
	case s.Bank.Hotels == 0:
		return semanticErr(ActionBuildHotel, "space", "bank has no hotels left")
	case s.Players[seat].Cash < def.HouseCost:
		return semanticErr(ActionBuildHotel, "space", fmt.Sprintf("hotel costs %d, %s has %d", def.HouseCost, s.Players[seat].Name, s.Players[seat].Cash))
	case !s.legalAfter(space, 0, true):
		return semanticErr(ActionBuildHotel, "space", fmt.Sprintf("group %s would be built unevenly", def.Group))
	}
	s.Players[seat].Cash -= def.HouseCost
	s.Spaces[space].Houses = 0
	s.Spaces[space].Hotel = true
	s.Bank.Houses += HotelHouses
	s.Bank.Hotels--
	s.emit(s.Players[seat].Name, EventHotelBuilt, HotelBuiltPayload{
		Player: s.Players[seat].Name,
		Space:  space,
	})
	return nil
}

func (s *State) applySellHouse(seat, space int) error {
	switch {
	case s.Spaces[space].Owner != seat || s.Spaces[space].Houses == 0:
		return semanticErr(ActionSellHouse, "space", fmt.Sprintf("space %d has no house of %s to sell", space, s.Players[seat].Name))
	case !s.legalAfter(space, s.Spaces[space].Houses-1, false):
		return semanticErr(ActionSellHouse, "space", fmt.Sprintf("group %s would be built unevenly", spaceDefs[space].Group))
	}
	refund := spaceDefs[space].HouseCost / 2
	s.Spaces[space].Houses--
	s.Bank.Houses++
	s.Players[seat].Cash += refund
	s.emit(s.Players[seat].Name, EventHouseSold, HouseSoldPayload{
		Player: s.Players[seat].Name,
		Space:  space,
		Houses: s.Spaces[space].Houses,
		Refund: refund,
	})
	return nil
}

// applySellHotel downgrades a hotel to four houses when the bank can supply
// them, otherwise demolishes the space outright at the full building refund.
func (s *State) applySellHotel(seat, space int) error {
	if s.Spaces[space].Owner != seat || !s.Spaces[space].Hotel {
		return semanticErr(ActionSellHotel, "space", fmt.Sprintf("space %d has no hotel of %s to sell", space, s.Players[seat].Name))
	}
	hc := spaceDefs[space].HouseCost
	after, refund := HotelHouses, hc/2
	if s.Bank.Houses < HotelHouses {
		after, refund = 0, (HotelHouses+1)*hc/2
	}
	if !s.legalAfter(space, after, false) {
		return semanticErr(ActionSellHotel, "space", fmt.Sprintf("group %s would be built unevenly", spaceDefs[space].Group))
	}
	s.Spaces[space].Hotel = false
	s.Spaces[space].Houses = after
	s.Bank.Hotels++
	s.Bank.Houses -= after
	s.Players[seat].Cash += refund
	s.emit(s.Players[seat].Name, EventHotelSold, HotelSoldPayload{
		Player: s.Players[seat].Name,
		Space:  space,
		Houses: after,
		Refund: refund,
	})
	return nil
}

func (s *State) applyMortgage(seat, space int) error {
	def := spaceDefs[space]
	switch {
	case !def.Ownable() || s.Spaces[space].Owner != seat:
		return semanticErr(ActionMortgage, "space", fmt.Sprintf("space %d is not owned by %s", space, s.Players[seat].Name))
	case s.Spaces[space].Mortgaged:
		return semanticErr(ActionMortgage, "space", fmt.Sprintf("space %d is already mortgaged", space))
	case def.Kind == KindProperty && s.groupHasBuildings(def.Group):
		return semanticErr(ActionMortgage, "space", fmt.Sprintf("group %s still carries buildings", def.Group))
	}
	amount := def.MortgageValue()
	s.Spaces[space].Mortgaged = true
	s.Players[seat].Cash += amount
	s.emit(s.Players[seat].Name, EventMortgaged, MortgagePayload{
		Player: s.Players[seat].Name,
		Space:  space,
		Amount: amount,
	})
	return nil
}

func (s *State) applyUnmortgage(seat, space int) error {
	def := spaceDefs[space]
	cost := def.UnmortgageCost()
	switch {
	case !def.Ownable() || s.Spaces[space].Owner != seat || !s.Spaces[space].Mortgaged:
		return semanticErr(ActionUnmortgage, "space", fmt.Sprintf("space %d is not a mortgaged holding of %s", space, s.Players[seat].Name))
	case s.Players[seat].Cash < cost:
		return semanticErr(ActionUnmortgage, "space", fmt.Sprintf("lifting the mortgage costs %d, %s has %d", cost, s.Players[seat].Name, s.Players[seat].Cash))
	}
	s.Spaces[space].Mortgaged = false
	s.Players[seat].Cash -= cost
	s.emit(s.Players[seat].Name, EventUnmortgaged, MortgagePayload{
		Player: s.Players[seat].Name,
		Space:  space,
		Amount: cost,
	})
	return nil
}
