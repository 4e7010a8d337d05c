package engine

import (
	"fmt"

	"monopoly/game"
)

// InvariantError is an engine-fatal defect: the committed state violates a
// guarantee the rules engine is supposed to maintain. It carries the sequence
// number at which the audit caught it and always aborts the run.
type InvariantError struct {
	Name string
	Seq  uint64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated at seq %d", e.Name, e.Seq)
}

// checkInvariants audits the state after every committed transition.
func checkInvariants(s *game.State, seq uint64) error {
	if s.Bank.Houses < 0 || s.Bank.Hotels < 0 {
		return &InvariantError{Name: "bank_inventory_non_negative", Seq: seq}
	}

	boardHouses, boardHotels := 0, 0
	for i := range s.Spaces {
		sp := s.Spaces[i]
		if sp.Hotel && sp.Houses != 0 {
			return &InvariantError{Name: "hotel_house_exclusivity", Seq: seq}
		}
		if sp.Houses < 0 || sp.Houses > game.HotelHouses {
			return &InvariantError{Name: "house_count_range", Seq: seq}
		}
		if sp.Owner < -1 || sp.Owner >= len(s.Players) {
			return &InvariantError{Name: "owner_in_range", Seq: seq}
		}
		boardHouses += sp.Houses
		if sp.Hotel {
			boardHotels++
		}
	}
	if boardHouses+s.Bank.Houses != game.TotalHouses || boardHotels+s.Bank.Hotels != game.TotalHotels {
		return &InvariantError{Name: "building_conservation", Seq: seq}
	}

	for _, g := range game.StreetGroups() {
		lo, hi, hotels := -1, 0, 0
		for _, i := range game.GroupSpaces(g) {
			if s.Spaces[i].Hotel {
				hotels++
				continue
			}
			h := s.Spaces[i].Houses
			if lo == -1 || h < lo {
				lo = h
			}
			if h > hi {
				hi = h
			}
		}
		if lo == -1 {
			continue
		}
		if hotels > 0 && hi != lo {
			return &InvariantError{Name: "even_building", Seq: seq}
		}
		if hi-lo > 1 {
			return &InvariantError{Name: "even_building", Seq: seq}
		}
	}

	for i := range s.Players {
		if s.Players[i].Cash < 0 {
			return &InvariantError{Name: "cash_non_negative", Seq: seq}
		}
	}
	return nil
}
