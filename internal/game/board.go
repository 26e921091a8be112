package game

// Stat identifies one of the player upgrade tracks.
type Stat string

const (
	StatNone      Stat = ""
	StatActions   Stat = "actions"
	StatPrivilege Stat = "privilege"
	StatBook      Stat = "book"
	StatKeys      Stat = "keys"
	StatBank      Stat = "bank"
)

// statMax is the highest level each track can reach.
var statMax = map[Stat]int{
	StatActions:   5,
	StatPrivilege: 4,
	StatBook:      4,
	StatKeys:      4,
	StatBank:      4,
}

// MaxStatLevel returns the cap for a track, 0 for unknown tracks.
func MaxStatLevel(stat Stat) int {
	return statMax[stat]
}

// OfficeSpec describes one office slot printed on a city.
type OfficeSpec struct {
	Privilege int  `json:"privilege"` // minimum privilege level required to claim
	Merch     bool `json:"merch"`     // true when the slot takes a merchant disc
}

// CitySpec is the static definition of a city on the board.
type CitySpec struct {
	Name    string       `json:"name"`
	Offices []OfficeSpec `json:"offices"`
	Upgrade Stat         `json:"upgrade,omitempty"` // track upgraded by completing a route here
}

// RouteSpec is the static definition of a route between two cities.
type RouteSpec struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Posts int    `json:"posts"`
}

// CoellenSlotSpec is one slot of the Coellen bonus table.
type CoellenSlotSpec struct {
	Points    int `json:"points"`
	Privilege int `json:"privilege"`
}

// BoardSpec bundles all static map data. It is supplied at game creation
// and travels inside GameState so that a deserialized state is self-contained.
type BoardSpec struct {
	Cities       []CitySpec        `json:"cities"`
	Routes       []RouteSpec       `json:"routes"`
	WestAnchor   string            `json:"west_anchor"`
	EastAnchor   string            `json:"east_anchor"`
	CoellenCity  string            `json:"coellen_city"`
	CoellenSlots []CoellenSlotSpec `json:"coellen_slots"`
	// StartingMarkerRoutes lists route indices that carry a bonus marker
	// from the initial pool when the game is set up.
	StartingMarkerRoutes []int `json:"starting_marker_routes"`
}

// City returns the static definition of a city, nil if unknown.
func (b *BoardSpec) City(name string) *CitySpec {
	for i := range b.Cities {
		if b.Cities[i].Name == name {
			return &b.Cities[i]
		}
	}
	return nil
}

// Adjacent returns the cities directly connected to the given city.
func (b *BoardSpec) Adjacent(city string) []string {
	var out []string
	for _, r := range b.Routes {
		switch city {
		case r.From:
			out = append(out, r.To)
		case r.To:
			out = append(out, r.From)
		}
	}
	return out
}

// RoutesTouching returns the indices of all routes with the city as an endpoint.
func (b *BoardSpec) RoutesTouching(city string) []int {
	var out []int
	for i, r := range b.Routes {
		if r.From == city || r.To == city {
			out = append(out, i)
		}
	}
	return out
}

// RoutesAdjacent reports whether two routes share an endpoint city.
func (b *BoardSpec) RoutesAdjacent(a, c int) bool {
	ra, rc := b.Routes[a], b.Routes[c]
	return ra.From == rc.From || ra.From == rc.To || ra.To == rc.From || ra.To == rc.To
}

// DefaultBoard returns the standard map. Office slots are listed in claim
// order; the first slot of most cities is open at privilege 1.
func DefaultBoard() *BoardSpec {
	return &BoardSpec{
		Cities: []CitySpec{
			{Name: "Groningen", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 4, Merch: true}}, Upgrade: StatBook},
			{Name: "Emden", Offices: []OfficeSpec{{Privilege: 1, Merch: true}, {Privilege: 3}}, Upgrade: StatPrivilege},
			{Name: "Kampen", Offices: []OfficeSpec{{Privilege: 2}, {Privilege: 4}}},
			{Name: "Arnheim", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 1, Merch: true}, {Privilege: 2}, {Privilege: 3}}},
			{Name: "Duisburg", Offices: []OfficeSpec{{Privilege: 1}}},
			{Name: "Dortmund", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2, Merch: true}}},
			{Name: "Osnabruck", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2}, {Privilege: 4}}},
			{Name: "Munster", Offices: []OfficeSpec{{Privilege: 1, Merch: true}, {Privilege: 2}}},
			{Name: "Bremen", Offices: []OfficeSpec{{Privilege: 2}, {Privilege: 3}}},
			{Name: "Minden", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2}, {Privilege: 3, Merch: true}, {Privilege: 4}}},
			{Name: "Hannover", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 3}}},
			{Name: "Hamburg", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2}, {Privilege: 4}}},
			{Name: "Lubeck", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 3, Merch: true}}, Upgrade: StatBank},
			{Name: "Brunswick", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2}}},
			{Name: "Magdeburg", Offices: []OfficeSpec{{Privilege: 1, Merch: true}, {Privilege: 3}}},
			{Name: "Stendal", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 1, Merch: true}, {Privilege: 2}, {Privilege: 3}}},
			{Name: "Coellen", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2, Merch: true}}},
			{Name: "Warburg", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 2}}},
			{Name: "Paderborn", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 3, Merch: true}}, Upgrade: StatActions},
			{Name: "Hildesheim", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 3}}},
			{Name: "Goslar", Offices: []OfficeSpec{{Privilege: 1}, {Privilege: 4}}, Upgrade: StatKeys},
		},
		Routes: []RouteSpec{
			{From: "Groningen", To: "Emden", Posts: 3},
			{From: "Emden", To: "Osnabruck", Posts: 4},
			{From: "Kampen", To: "Osnabruck", Posts: 2},
			{From: "Kampen", To: "Arnheim", Posts: 3},
			{From: "Arnheim", To: "Duisburg", Posts: 3},
			{From: "Duisburg", To: "Dortmund", Posts: 2},
			{From: "Arnheim", To: "Munster", Posts: 3},
			{From: "Munster", To: "Minden", Posts: 3},
			{From: "Osnabruck", To: "Bremen", Posts: 3},
			{From: "Bremen", To: "Hamburg", Posts: 4},
			{From: "Hamburg", To: "Lubeck", Posts: 3},
			{From: "Minden", To: "Hannover", Posts: 3},
			{From: "Hannover", To: "Brunswick", Posts: 2},
			{From: "Brunswick", To: "Stendal", Posts: 4},
			{From: "Stendal", To: "Magdeburg", Posts: 3},
			{From: "Dortmund", To: "Paderborn", Posts: 3},
			{From: "Minden", To: "Paderborn", Posts: 3},
			{From: "Duisburg", To: "Coellen", Posts: 2},
			{From: "Coellen", To: "Warburg", Posts: 4},
			{From: "Warburg", To: "Paderborn", Posts: 3},
			{From: "Paderborn", To: "Hildesheim", Posts: 3},
			{From: "Hildesheim", To: "Goslar", Posts: 3},
			{From: "Goslar", To: "Magdeburg", Posts: 2},
		},
		WestAnchor:  "Arnheim",
		EastAnchor:  "Stendal",
		CoellenCity: "Coellen",
		CoellenSlots: []CoellenSlotSpec{
			{Points: 7, Privilege: 1},
			{Points: 8, Privilege: 2},
			{Points: 9, Privilege: 3},
			{Points: 11, Privilege: 4},
		},
		StartingMarkerRoutes: []int{2, 8, 13},
	}
}
