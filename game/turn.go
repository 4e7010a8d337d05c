package game

import "monopoly/protocol"

// BeginTurn opens the current player's turn. Runs in START_TURN; refresh
// decides whether a jail decision or the roll comes next.
func (s *State) BeginTurn() {
	p := &s.Players[s.Current]
	p.Doubles = 0
	s.Rolled = false
	s.Managed = false
	s.RolledDoubles = false
	s.emit(p.Name, EventTurnStarted, TurnPayload{Player: p.Name})
	s.refresh()
}

// RollAndMove performs one roll segment: roll, doubles bookkeeping, movement,
// and landing resolution. Runs in RESOLVING_MOVE.
func (s *State) RollAndMove() {
	p := &s.Players[s.Current]
	s.Rolled = true
	d1, d2 := s.dice.Roll()
	s.LastRoll = [2]int{d1, d2}
	doubles := d1 == d2
	s.emit(p.Name, EventDiceRolled, DiceRolledPayload{Player: p.Name, Die1: d1, Die2: d2, Doubles: doubles})

	if s.JailRollPending {
		s.resolveJailRoll(d1, d2)
		s.refresh()
		return
	}

	if doubles {
		p.Doubles++
		if p.Doubles >= 3 {
			s.emit(p.Name, EventJailEntered, JailEnteredPayload{Player: p.Name, Reason: JailReasonThreeDoubles})
			s.sendToJail(s.Current)
			s.refresh()
			return
		}
		s.RolledDoubles = true
	}

	s.moveBy(s.Current, d1+d2)
	s.refresh()
}

// resolveJailRoll handles the roll a jailed player chose to attempt. Doubles
// release without a re-roll bonus; the third failure makes the fine due, with
// movement resuming once it is paid.
func (s *State) resolveJailRoll(d1, d2 int) {
	p := &s.Players[s.Current]
	s.JailRollPending = false
	if d1 == d2 {
		p.InJail = false
		p.JailTurns = 0
		s.emit(p.Name, EventJailLeft, JailLeftPayload{Player: p.Name, Via: JailLeftDoubles})
		s.moveBy(s.Current, d1+d2)
		return
	}
	p.JailTurns++
	if p.JailTurns >= MaxJailTurns {
		roll := [2]int{d1, d2}
		s.ResumeRoll = &roll
		s.charge(Debt{Debtor: s.Current, Creditor: -1, Amount: JailFine, Reason: "jail_fine", Space: -1})
	}
}

// FinishTurn closes the turn and rotates to the next non-bankrupt seat. Runs
// in END_TURN.
func (s *State) FinishTurn() {
	p := &s.Players[s.Current]
	s.emit(p.Name, EventTurnEnded, TurnPayload{Player: p.Name})
	s.Current = s.nextActive(s.Current)
	s.Turn++
	s.Rolled = false
	s.Managed = false
	s.RolledDoubles = false
	s.Phase = PhaseStartTurn
}

// EndByTurnLimit terminates a run that reached the configured turn cap,
// awarding the game on net worth.
func (s *State) EndByTurnLimit() {
	if s.Phase == PhaseGameOver {
		return
	}
	s.finishGame(GameOverTurnLimit)
}

func (s *State) finishGame(reason string) {
	winner := s.bestSeat()
	s.Winner = s.Players[winner].Name
	s.Phase = PhaseGameOver
	s.Decision = nil
	s.emit(protocol.ActorEngine, EventGameOver, GameOverPayload{Winner: s.Winner, Turns: s.Turn, Reason: reason})
}

// bestSeat picks the winner: the sole survivor, or the highest net worth with
// the lowest seat breaking ties.
func (s *State) bestSeat() int {
	best := -1
	bestWorth := -1
	for i := range s.Players {
		if s.Players[i].Bankrupt {
			continue
		}
		if worth := s.netWorth(i); worth > bestWorth {
			best, bestWorth = i, worth
		}
	}
	return best
}

// refresh recomputes the awaited decision and phase after any mutation. The
// priority order is fixed: debts, auction, trade, purchase, then the turn's
// own roll/manage cycle. This ordering is part of the replay contract.
func (s *State) refresh() {
	s.Decision = nil

	if s.Phase == PhaseGameOver {
		return
	}

	s.settleDebts()

	if s.activeCount() <= 1 && len(s.Players) > 1 {
		s.finishGame(GameOverLastStanding)
		return
	}

	if len(s.Debts) > 0 {
		d := s.Debts[0]
		s.Decision = &Pending{Type: DecisionLiquidation, Seat: d.Debtor, Space: -1}
		s.Phase = PhaseAwaitingDecision
		return
	}
	if s.Auction != nil {
		s.Decision = &Pending{Type: DecisionAuctionBid, Seat: s.Auction.bidder(), Space: s.Auction.Space}
		s.Phase = PhaseAwaitingDecision
		return
	}
	if s.Trade != nil {
		s.Decision = &Pending{Type: DecisionTradeRespond, Seat: s.Trade.Waiting, Space: -1}
		s.Phase = PhaseAwaitingDecision
		return
	}
	if s.PendingBuy >= 0 {
		s.Decision = &Pending{Type: DecisionBuyOrAuction, Seat: s.Current, Space: s.PendingBuy}
		s.Phase = PhaseAwaitingDecision
		return
	}

	if s.Players[s.Current].Bankrupt {
		s.Phase = PhaseEndTurn
		return
	}

	if !s.Rolled {
		if s.Players[s.Current].InJail && !s.JailRollPending {
			s.Decision = &Pending{Type: DecisionJail, Seat: s.Current, Space: -1}
			s.Phase = PhaseAwaitingDecision
			return
		}
		s.Phase = PhaseResolvingMove
		return
	}

	if !s.Managed {
		s.Decision = &Pending{Type: DecisionPostTurn, Seat: s.Current, Space: -1}
		s.Phase = PhaseAwaitingDecision
		return
	}

	if s.RolledDoubles && !s.Players[s.Current].InJail {
		// Doubles earn another segment of the same turn.
		s.Rolled = false
		s.Managed = false
		s.RolledDoubles = false
		s.Phase = PhaseResolvingMove
		return
	}

	s.Phase = PhaseEndTurn
}

// settleDebts pays the debt queue head for as long as the debtor can cover
// it. Settlement may itself trigger movement (a resumed jail roll) and new
// charges, which append to the queue and are picked up here.
func (s *State) settleDebts() {
	for len(s.Debts) > 0 {
		d := s.Debts[0]
		if s.Players[d.Debtor].Cash < d.Amount {
			return
		}
		s.Debts = s.Debts[1:]
		s.payDebt(d)
		s.emit(s.Players[d.Debtor].Name, EventDebtSettled, DebtSettledPayload{
			Player:   s.Players[d.Debtor].Name,
			Creditor: s.seatName(d.Creditor),
			Amount:   d.Amount,
		})
	}
}

// charge collects a debt immediately when cash allows, otherwise opens the
// liquidation window. Payment events are deferred until the debt is actually
// paid.
func (s *State) charge(d Debt) {
	if s.Players[d.Debtor].Cash >= d.Amount {
		s.payDebt(d)
		return
	}
	s.Debts = append(s.Debts, d)
	s.emit(s.Players[d.Debtor].Name, EventLiquidationStarted, LiquidationPayload{
		Player:   s.Players[d.Debtor].Name,
		Creditor: s.seatName(d.Creditor),
		Amount:   d.Amount,
		Reason:   d.Reason,
	})
}

// payDebt transfers the cash and emits the payment event the original charge
// stood for.
func (s *State) payDebt(d Debt) {
	debtor := &s.Players[d.Debtor]
	debtor.Cash -= d.Amount
	if d.Creditor >= 0 {
		s.Players[d.Creditor].Cash += d.Amount
	}
	name := debtor.Name
	switch d.Reason {
	case "rent":
		s.emit(name, EventRentPaid, RentPayload{Player: name, Owner: s.seatName(d.Creditor), Space: d.Space, Amount: d.Amount})
	case "tax":
		s.emit(name, EventTaxPaid, TaxPayload{Player: name, Space: d.Space, Amount: d.Amount})
	case "jail_fine":
		s.emit(name, EventJailFinePaid, JailFinePayload{Player: name, Amount: d.Amount})
		s.leaveJailPaid(d.Debtor)
	default:
		s.emit(name, EventCashTransferred, CashTransferPayload{From: name, To: s.seatName(d.Creditor), Amount: d.Amount, Reason: d.Reason})
	}
}

// leaveJailPaid releases a player whose fine was just paid, resuming the
// movement owed by a forced third roll if one is parked.
func (s *State) leaveJailPaid(seat int) {
	p := &s.Players[seat]
	if !p.InJail {
		return
	}
	p.InJail = false
	p.JailTurns = 0
	s.emit(p.Name, EventJailLeft, JailLeftPayload{Player: p.Name, Via: JailLeftPaid})
	if s.ResumeRoll != nil && seat == s.Current {
		roll := *s.ResumeRoll
		s.ResumeRoll = nil
		s.moveBy(seat, roll[0]+roll[1])
	}
}

func (s *State) moveBy(seat, steps int) {
	from := s.Players[seat].Pos
	to := (from + steps) % BoardSize
	s.completeMove(seat, from, to, from+steps >= BoardSize)
}

// moveTo is card movement. Passing GO pays out when the target wraps behind
// the current position; backward movement never pays.
func (s *State) moveTo(seat, to int, collectGo bool) {
	from := s.Players[seat].Pos
	s.completeMove(seat, from, to, collectGo && to <= from)
}

func (s *State) completeMove(seat, from, to int, passedGo bool) {
	p := &s.Players[seat]
	p.Pos = to
	s.emit(p.Name, EventPlayerMoved, MovedPayload{Player: p.Name, From: from, To: to, PassedGo: passedGo})
	if passedGo {
		p.Cash += GoSalary
		s.emit(p.Name, EventSalaryPaid, SalaryPayload{Player: p.Name, Amount: GoSalary})
	}
	s.resolveLanding(seat)
}

func (s *State) resolveLanding(seat int) {
	p := &s.Players[seat]
	pos := p.Pos
	def := spaceDefs[pos]

	// Advance-nearest multipliers apply to this one resolution.
	utilityOverride := s.UtilityRentOverride
	railDouble := s.RailRentDouble
	s.UtilityRentOverride = false
	s.RailRentDouble = false

	switch def.Kind {
	case KindProperty, KindRailroad, KindUtility:
		owner := s.Spaces[pos].Owner
		switch {
		case owner == -1:
			s.PendingBuy = pos
		case owner == seat || s.Spaces[pos].Mortgaged:
			// nothing due
		default:
			rent := s.rentFor(pos, utilityOverride, railDouble)
			s.charge(Debt{Debtor: seat, Creditor: owner, Amount: rent, Reason: "rent", Space: pos})
		}
	case KindTax:
		s.charge(Debt{Debtor: seat, Creditor: -1, Amount: def.Tax, Reason: "tax", Space: pos})
	case KindChance:
		s.drawCard(seat, s.Chance)
	case KindChest:
		s.drawCard(seat, s.Chest)
	case KindGoToJail:
		s.emit(p.Name, EventJailEntered, JailEnteredPayload{Player: p.Name, Reason: JailReasonSpace})
		s.sendToJail(seat)
	}
}

// rentFor computes the rent due on a landed space. Railroads scale with the
// owner's railroad count, utilities with the dice total, streets with
// buildings and the unimproved-monopoly double.
func (s *State) rentFor(pos int, utilityOverride, railDouble bool) int {
	def := spaceDefs[pos]
	owner := s.Spaces[pos].Owner
	switch def.Kind {
	case KindRailroad:
		rent := RailroadBase << (s.countOwned(owner, KindRailroad) - 1)
		if railDouble {
			rent *= 2
		}
		return rent
	case KindUtility:
		mult := UtilityMult
		if utilityOverride || s.countOwned(owner, KindUtility) == len(GroupSpaces(GroupUtility)) {
			mult = UtilityBothMult
		}
		return mult * (s.LastRoll[0] + s.LastRoll[1])
	default:
		sp := s.Spaces[pos]
		if sp.Hotel {
			return def.Rents[5]
		}
		if sp.Houses > 0 {
			return def.Rents[sp.Houses]
		}
		rent := def.Rents[0]
		if s.ownsGroup(owner, def.Group) {
			rent *= 2
		}
		return rent
	}
}

func (s *State) sendToJail(seat int) {
	p := &s.Players[seat]
	p.Pos = JailIndex
	p.InJail = true
	p.JailTurns = 0
	p.Doubles = 0
	if seat == s.Current {
		s.RolledDoubles = false
	}
}

func (s *State) drawCard(seat int, deck *Deck) {
	p := &s.Players[seat]
	card := deck.Draw()
	s.emit(p.Name, EventCardDrawn, CardDrawnPayload{Player: p.Name, Deck: string(deck.Name), Card: card.ID, Text: card.Text})
	s.applyCard(seat, card)
}

func (s *State) applyCard(seat int, card Card) {
	p := &s.Players[seat]
	switch card.Kind {
	case CardCollect:
		p.Cash += card.Amount
		s.emit(p.Name, EventCashTransferred, CashTransferPayload{From: protocol.ActorBank, To: p.Name, Amount: card.Amount, Reason: card.ID})
	case CardPay:
		s.charge(Debt{Debtor: seat, Creditor: -1, Amount: card.Amount, Reason: card.ID, Space: -1})
	case CardAdvanceTo:
		s.moveTo(seat, card.Space, true)
	case CardAdvanceNearest:
		if card.Target == KindUtility {
			s.UtilityRentOverride = true
		} else {
			s.RailRentDouble = true
		}
		s.moveTo(seat, s.nearest(p.Pos, card.Target), true)
	case CardGoBack:
		s.moveTo(seat, (p.Pos-card.Steps+BoardSize)%BoardSize, false)
	case CardGoToJail:
		s.emit(p.Name, EventJailEntered, JailEnteredPayload{Player: p.Name, Reason: JailReasonCard})
		s.sendToJail(seat)
	case CardJailFree:
		p.JailCards = append(p.JailCards, card)
	case CardCollectEach:
		for _, other := range s.othersFrom(seat) {
			s.charge(Debt{Debtor: other, Creditor: seat, Amount: card.Amount, Reason: card.ID, Space: -1})
		}
	case CardPayEach:
		for _, other := range s.othersFrom(seat) {
			s.charge(Debt{Debtor: seat, Creditor: other, Amount: card.Amount, Reason: card.ID, Space: -1})
		}
	case CardRepairs:
		total := 0
		for i := range s.Spaces {
			if s.Spaces[i].Owner != seat {
				continue
			}
			total += s.Spaces[i].Houses * card.PerHouse
			if s.Spaces[i].Hotel {
				total += card.PerHotel
			}
		}
		if total > 0 {
			s.charge(Debt{Debtor: seat, Creditor: -1, Amount: total, Reason: card.ID, Space: -1})
		}
	}
}

func (s *State) nearest(from int, kind SpaceKind) int {
	for step := 1; step <= BoardSize; step++ {
		idx := (from + step) % BoardSize
		if spaceDefs[idx].Kind == kind {
			return idx
		}
	}
	return from
}
