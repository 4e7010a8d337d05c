package game

// SpaceKind classifies the 40 board positions.
type SpaceKind string

const (
	KindGo          SpaceKind = "go"
	KindProperty    SpaceKind = "property"
	KindRailroad    SpaceKind = "railroad"
	KindUtility     SpaceKind = "utility"
	KindTax         SpaceKind = "tax"
	KindChance      SpaceKind = "chance"
	KindChest       SpaceKind = "community_chest"
	KindJail        SpaceKind = "jail"
	KindGoToJail    SpaceKind = "go_to_jail"
	KindFreeParking SpaceKind = "free_parking"
)

// Group is a property color group. Railroads and utilities are groups too:
// their rent scales with how many of the group one player holds.
type Group string

const (
	GroupNone      Group = ""
	GroupBrown     Group = "brown"
	GroupLightBlue Group = "light_blue"
	GroupPink      Group = "pink"
	GroupOrange    Group = "orange"
	GroupRed       Group = "red"
	GroupYellow    Group = "yellow"
	GroupGreen     Group = "green"
	GroupDarkBlue  Group = "dark_blue"
	GroupRailroad  Group = "railroad"
	GroupUtility   Group = "utility"
)

const (
	BoardSize     = 40
	GoSalary      = 200
	JailFine      = 50
	JailIndex     = 10
	GoToJailIndex = 30
	MaxJailTurns  = 3
	TotalHouses   = 32
	TotalHotels   = 12
	// Houses a street must carry before it converts to a hotel; they return
	// to the bank on conversion.
	HotelHouses     = 4
	MinBidIncrement = 1
	RailroadBase    = 25
	UtilityMult     = 4
	UtilityBothMult = 10
)

// SpaceDef is the static definition of one board position. Rents[0] is the
// unimproved rent, Rents[1..4] the rent at that house count, Rents[5] the
// hotel rent.
type SpaceDef struct {
	Index     int
	Name      string
	Kind      SpaceKind
	Group     Group
	Price     int
	Rents     [6]int
	HouseCost int
	Tax       int
}

// Ownable reports whether the space can be owned by a player.
func (d SpaceDef) Ownable() bool {
	return d.Kind == KindProperty || d.Kind == KindRailroad || d.Kind == KindUtility
}

// MortgageValue is the cash raised by mortgaging the space.
func (d SpaceDef) MortgageValue() int {
	return d.Price / 2
}

// UnmortgageCost is the mortgage value plus 10% interest, rounded up.
func (d SpaceDef) UnmortgageCost() int {
	mv := d.MortgageValue()
	return (mv*11 + 9) / 10
}

var spaceDefs = [BoardSize]SpaceDef{
	{Index: 0, Name: "Go", Kind: KindGo},
	{Index: 1, Name: "Mediterranean Avenue", Kind: KindProperty, Group: GroupBrown, Price: 60, Rents: [6]int{2, 10, 30, 90, 160, 250}, HouseCost: 50},
	{Index: 2, Name: "Community Chest", Kind: KindChest},
	{Index: 3, Name: "Baltic Avenue", Kind: KindProperty, Group: GroupBrown, Price: 60, Rents: [6]int{4, 20, 60, 180, 320, 450}, HouseCost: 50},
	{Index: 4, Name: "Income Tax", Kind: KindTax, Tax: 200},
	{Index: 5, Name: "Reading Railroad", Kind: KindRailroad, Group: GroupRailroad, Price: 200},
	{Index: 6, Name: "Oriental Avenue", Kind: KindProperty, Group: GroupLightBlue, Price: 100, Rents: [6]int{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{Index: 7, Name: "Vermont Avenue", Kind: KindProperty, Group: GroupLightBlue, Price: 100, Rents: [6]int{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{Index: 8, Name: "Chance", Kind: KindChance},
	{Index: 9, Name: "Connecticut Avenue", Kind: KindProperty, Group: GroupLightBlue, Price: 120, Rents: [6]int{8, 40, 100, 300, 450, 600}, HouseCost: 50},
	{Index: 10, Name: "Jail", Kind: KindJail},
	{Index: 11, Name: "St. Charles Place", Kind: KindProperty, Group: GroupPink, Price: 140, Rents: [6]int{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{Index: 12, Name: "Electric Company", Kind: KindUtility, Group: GroupUtility, Price: 150},
	{Index: 13, Name: "States Avenue", Kind: KindProperty, Group: GroupPink, Price: 140, Rents: [6]int{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{Index: 14, Name: "Virginia Avenue", Kind: KindProperty, Group: GroupPink, Price: 160, Rents: [6]int{12, 60, 180, 500, 700, 900}, HouseCost: 100},
	{Index: 15, Name: "Pennsylvania Railroad", Kind: KindRailroad, Group: GroupRailroad, Price: 200},
	{Index: 16, Name: "St. James Place", Kind: KindProperty, Group: GroupOrange, Price: 180, Rents: [6]int{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{Index: 17, Name: "Community Chest", Kind: KindChest},
	{Index: 18, Name: "Tennessee Avenue", Kind: KindProperty, Group: GroupOrange, Price: 180, Rents: [6]int{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{Index: 19, Name: "New York Avenue", Kind: KindProperty, Group: GroupOrange, Price: 200, Rents: [6]int{16, 80, 220, 600, 800, 1000}, HouseCost: 100},
	{Index: 20, Name: "Free Parking", Kind: KindFreeParking},
	{Index: 21, Name: "Kentucky Avenue", Kind: KindProperty, Group: GroupRed, Price: 220, Rents: [6]int{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{Index: 22, Name: "Chance", Kind: KindChance},
	{Index: 23, Name: "Indiana Avenue", Kind: KindProperty, Group: GroupRed, Price: 220, Rents: [6]int{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{Index: 24, Name: "Illinois Avenue", Kind: KindProperty, Group: GroupRed, Price: 240, Rents: [6]int{20, 100, 300, 750, 925, 1100}, HouseCost: 150},
	{Index: 25, Name: "B&O Railroad", Kind: KindRailroad, Group: GroupRailroad, Price: 200},
	{Index: 26, Name: "Atlantic Avenue", Kind: KindProperty, Group: GroupYellow, Price: 260, Rents: [6]int{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{Index: 27, Name: "Ventnor Avenue", Kind: KindProperty, Group: GroupYellow, Price: 260, Rents: [6]int{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{Index: 28, Name: "Water Works", Kind: KindUtility, Group: GroupUtility, Price: 150},
	{Index: 29, Name: "Marvin Gardens", Kind: KindProperty, Group: GroupYellow, Price: 280, Rents: [6]int{24, 120, 360, 850, 1025, 1200}, HouseCost: 150},
	{Index: 30, Name: "Go To Jail", Kind: KindGoToJail},
	{Index: 31, Name: "Pacific Avenue", Kind: KindProperty, Group: GroupGreen, Price: 300, Rents: [6]int{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{Index: 32, Name: "North Carolina Avenue", Kind: KindProperty, Group: GroupGreen, Price: 300, Rents: [6]int{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{Index: 33, Name: "Community Chest", Kind: KindChest},
	{Index: 34, Name: "Pennsylvania Avenue", Kind: KindProperty, Group: GroupGreen, Price: 320, Rents: [6]int{28, 150, 450, 1000, 1200, 1400}, HouseCost: 200},
	{Index: 35, Name: "Short Line", Kind: KindRailroad, Group: GroupRailroad, Price: 200},
	{Index: 36, Name: "Chance", Kind: KindChance},
	{Index: 37, Name: "Park Place", Kind: KindProperty, Group: GroupDarkBlue, Price: 350, Rents: [6]int{35, 175, 500, 1100, 1300, 1500}, HouseCost: 200},
	{Index: 38, Name: "Luxury Tax", Kind: KindTax, Tax: 100},
	{Index: 39, Name: "Boardwalk", Kind: KindProperty, Group: GroupDarkBlue, Price: 400, Rents: [6]int{50, 200, 600, 1400, 1700, 2000}, HouseCost: 200},
}

// Space returns the static definition for a board position.
func Space(index int) SpaceDef {
	return spaceDefs[index]
}

// GroupSpaces returns the board indices of a group in ascending order.
func GroupSpaces(g Group) []int {
	var indices []int
	for i := range spaceDefs {
		if spaceDefs[i].Group == g && g != GroupNone {
			indices = append(indices, i)
		}
	}
	return indices
}

// StreetGroups lists the buildable color groups in board order.
func StreetGroups() []Group {
	return []Group{
		GroupBrown, GroupLightBlue, GroupPink, GroupOrange,
		GroupRed, GroupYellow, GroupGreen, GroupDarkBlue,
	}
}
