package game

func (s *State) deckFor(name DeckName) *Deck {
	if name == DeckChance {
		return s.Chance
	}
	return s.Chest
}

// declareBankruptcy removes a player who cannot cover the debt at the head of
// the queue. Everything they still hold goes to the forcing creditor, or back
// to the bank: buildings to inventory, properties unmortgaged for re-sale.
// Remaining debts of the departing player are extinguished.
func (s *State) declareBankruptcy(seat int) {
	d := s.Debts[0]
	creditor := d.Creditor
	p := &s.Players[seat]
	creditorName := s.seatName(creditor)

	s.emit(p.Name, EventBankruptcyDeclared, BankruptcyPayload{
		Player:   p.Name,
		Creditor: creditorName,
	})

	if p.Cash > 0 {
		amount := p.Cash
		p.Cash = 0
		if creditor >= 0 {
			s.Players[creditor].Cash += amount
		}
		s.emit(p.Name, EventCashTransferred, CashTransferPayload{
			From:   p.Name,
			To:     creditorName,
			Amount: amount,
			Reason: "bankruptcy",
		})
	}

	var spaces []int
	for i := range s.Spaces {
		if s.Spaces[i].Owner == seat {
			spaces = append(spaces, i)
		}
	}
	if len(spaces) > 0 {
		for _, i := range spaces {
			if creditor >= 0 {
				s.Spaces[i].Owner = creditor
				continue
			}
			s.Bank.Houses += s.Spaces[i].Houses
			if s.Spaces[i].Hotel {
				s.Bank.Hotels++
			}
			s.Spaces[i] = SpaceState{Owner: -1}
		}
		s.emit(p.Name, EventPropertiesTransferred, PropertiesTransferredPayload{
			From:   p.Name,
			To:     creditorName,
			Spaces: spaces,
			Reason: "bankruptcy",
		})
	}

	if n := len(p.JailCards); n > 0 {
		if creditor >= 0 {
			s.Players[creditor].JailCards = append(s.Players[creditor].JailCards, p.JailCards...)
		} else {
			for _, card := range p.JailCards {
				s.deckFor(card.Deck).Return(card)
			}
		}
		p.JailCards = nil
		s.emit(p.Name, EventJailCardsTransferred, JailCardsTransferredPayload{
			From:   p.Name,
			To:     creditorName,
			Count:  n,
			Reason: "bankruptcy",
		})
	}

	remaining := s.Debts[:0]
	for _, debt := range s.Debts {
		if debt.Debtor != seat {
			remaining = append(remaining, debt)
		}
	}
	s.Debts = remaining
	p.Bankrupt = true
	p.Beneficiary = creditorName
	p.InJail = false
}
