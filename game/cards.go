package game

import "golang.org/x/exp/rand"

// CardKind discriminates card effects.
type CardKind string

const (
	CardCollect        CardKind = "collect"
	CardPay            CardKind = "pay"
	CardAdvanceTo      CardKind = "advance_to"
	CardAdvanceNearest CardKind = "advance_nearest"
	CardGoBack         CardKind = "go_back"
	CardGoToJail       CardKind = "go_to_jail"
	CardJailFree       CardKind = "jail_free"
	CardCollectEach    CardKind = "collect_each"
	CardPayEach        CardKind = "pay_each"
	CardRepairs        CardKind = "repairs"
)

// Card is one draw-pile card. Which params matter depends on Kind.
type Card struct {
	ID       string
	Deck     DeckName
	Text     string
	Kind     CardKind
	Amount   int
	Space    int
	Target   SpaceKind
	Steps    int
	PerHouse int
	PerHotel int
}

type DeckName string

const (
	DeckChance DeckName = "chance"
	DeckChest  DeckName = "community_chest"
)

// Deck is an ordered draw pile. Index 0 is the top. Drawn cards return to the
// bottom, except jail-free cards, which stay out until used.
type Deck struct {
	Name  DeckName
	Cards []Card
}

// NewDeck builds the named deck in its fixed reference order, then shuffles it
// once with the supplied source. Shuffling happens only here, so a run's deck
// order is a pure function of its seed.
func NewDeck(name DeckName, rng *rand.Rand) *Deck {
	var cards []Card
	switch name {
	case DeckChance:
		cards = chanceCards()
	case DeckChest:
		cards = chestCards()
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{Name: name, Cards: cards}
}

// Draw pops the top card. Jail-free cards leave the deck; everything else
// cycles to the bottom.
func (d *Deck) Draw() Card {
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	if card.Kind != CardJailFree {
		d.Cards = append(d.Cards, card)
	}
	return card
}

// Return puts a held jail-free card back at the bottom.
func (d *Deck) Return(card Card) {
	d.Cards = append(d.Cards, card)
}

func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	return &Deck{Name: d.Name, Cards: cards}
}

func chanceCards() []Card {
	return []Card{
		{ID: "chance_01", Deck: DeckChance, Text: "Advance to Go. Collect $200.", Kind: CardAdvanceTo, Space: 0},
		{ID: "chance_02", Deck: DeckChance, Text: "Advance to Illinois Avenue.", Kind: CardAdvanceTo, Space: 24},
		{ID: "chance_03", Deck: DeckChance, Text: "Advance to St. Charles Place.", Kind: CardAdvanceTo, Space: 11},
		{ID: "chance_04", Deck: DeckChance, Text: "Advance to the nearest utility. If owned, pay ten times your last roll.", Kind: CardAdvanceNearest, Target: KindUtility},
		{ID: "chance_05", Deck: DeckChance, Text: "Advance to the nearest railroad. If owned, pay twice the usual rent.", Kind: CardAdvanceNearest, Target: KindRailroad},
		{ID: "chance_06", Deck: DeckChance, Text: "Advance to the nearest railroad. If owned, pay twice the usual rent.", Kind: CardAdvanceNearest, Target: KindRailroad},
		{ID: "chance_07", Deck: DeckChance, Text: "Bank pays you a dividend of $50.", Kind: CardCollect, Amount: 50},
		{ID: "chance_08", Deck: DeckChance, Text: "Get out of jail free.", Kind: CardJailFree},
		{ID: "chance_09", Deck: DeckChance, Text: "Go back three spaces.", Kind: CardGoBack, Steps: 3},
		{ID: "chance_10", Deck: DeckChance, Text: "Go directly to jail.", Kind: CardGoToJail},
		{ID: "chance_11", Deck: DeckChance, Text: "Make general repairs on all your property: $25 per house, $100 per hotel.", Kind: CardRepairs, PerHouse: 25, PerHotel: 100},
		{ID: "chance_12", Deck: DeckChance, Text: "Pay poor tax of $15.", Kind: CardPay, Amount: 15},
		{ID: "chance_13", Deck: DeckChance, Text: "Take a trip to Reading Railroad.", Kind: CardAdvanceTo, Space: 5},
		{ID: "chance_14", Deck: DeckChance, Text: "Take a walk on the Boardwalk.", Kind: CardAdvanceTo, Space: 39},
		{ID: "chance_15", Deck: DeckChance, Text: "You have been elected chairman of the board. Pay each player $50.", Kind: CardPayEach, Amount: 50},
		{ID: "chance_16", Deck: DeckChance, Text: "Your building loan matures. Collect $150.", Kind: CardCollect, Amount: 150},
	}
}

func chestCards() []Card {
	return []Card{
		{ID: "chest_01", Deck: DeckChest, Text: "Advance to Go. Collect $200.", Kind: CardAdvanceTo, Space: 0},
		{ID: "chest_02", Deck: DeckChest, Text: "Bank error in your favor. Collect $200.", Kind: CardCollect, Amount: 200},
		{ID: "chest_03", Deck: DeckChest, Text: "Doctor's fees. Pay $50.", Kind: CardPay, Amount: 50},
		{ID: "chest_04", Deck: DeckChest, Text: "From sale of stock you get $50.", Kind: CardCollect, Amount: 50},
		{ID: "chest_05", Deck: DeckChest, Text: "Get out of jail free.", Kind: CardJailFree},
		{ID: "chest_06", Deck: DeckChest, Text: "Go directly to jail.", Kind: CardGoToJail},
		{ID: "chest_07", Deck: DeckChest, Text: "Grand opera night. Collect $50 from every player.", Kind: CardCollectEach, Amount: 50},
		{ID: "chest_08", Deck: DeckChest, Text: "Holiday fund matures. Collect $100.", Kind: CardCollect, Amount: 100},
		{ID: "chest_09", Deck: DeckChest, Text: "Income tax refund. Collect $20.", Kind: CardCollect, Amount: 20},
		{ID: "chest_10", Deck: DeckChest, Text: "It is your birthday. Collect $10 from every player.", Kind: CardCollectEach, Amount: 10},
		{ID: "chest_11", Deck: DeckChest, Text: "Life insurance matures. Collect $100.", Kind: CardCollect, Amount: 100},
		{ID: "chest_12", Deck: DeckChest, Text: "Pay hospital fees of $100.", Kind: CardPay, Amount: 100},
		{ID: "chest_13", Deck: DeckChest, Text: "Pay school fees of $50.", Kind: CardPay, Amount: 50},
		{ID: "chest_14", Deck: DeckChest, Text: "Receive $25 consultancy fee.", Kind: CardCollect, Amount: 25},
		{ID: "chest_15", Deck: DeckChest, Text: "You are assessed for street repairs: $40 per house, $115 per hotel.", Kind: CardRepairs, PerHouse: 40, PerHotel: 115},
		{ID: "chest_16", Deck: DeckChest, Text: "You have won second prize in a beauty contest. Collect $10.", Kind: CardCollect, Amount: 10},
	}
}
