package game

import (
	"fmt"

	"github.com/google/uuid"
)

// NoSeat marks the absence of a controlling player.
const NoSeat = -1

// Token is a single player piece: a merchant disc or a tradesman cube.
type Token struct {
	Owner int  `json:"owner"`
	Merch bool `json:"merch"`
}

// Piece returns the printable name of the token's piece kind.
func (t Token) Piece() string {
	if t.Merch {
		return "merchant"
	}
	return "tradesman"
}

// Stock counts off-board tokens of one player, by piece kind.
type Stock struct {
	Merchants int `json:"merchants"`
	Tradesmen int `json:"tradesmen"`
}

// Total returns the number of tokens in the stock.
func (s Stock) Total() int {
	return s.Merchants + s.Tradesmen
}

// CityState holds the offices claimed in a city. Order within Tokens and
// Extras is meaningful: it drives the swap mechanic and the first-to-reach
// tie break for city control.
type CityState struct {
	Tokens      []Token `json:"tokens"`       // regular offices, in claim order
	Extras      []Token `json:"extras"`       // extra offices, same control weight
	LeftOffices []Token `json:"left_offices"` // tie-break only, capped at 5
}

// maxLeftOffices is the hard capacity of a city's left-office row.
const maxLeftOffices = 5

// RouteState is one route on the board. A post is nil while empty.
type RouteState struct {
	From   string     `json:"from"`
	To     string     `json:"to"`
	Posts  []*Token   `json:"posts"`
	Marker MarkerKind `json:"marker,omitempty"` // bonus marker waiting on the route
}

// Name returns the display name of the route, "From-To".
func (r *RouteState) Name() string {
	return r.From + "-" + r.To
}

// Complete reports whether every trading post on the route is occupied.
func (r *RouteState) Complete() bool {
	for _, p := range r.Posts {
		if p == nil {
			return false
		}
	}
	return true
}

// PlayerState is the per-seat portion of the game state.
type PlayerState struct {
	ID     string `json:"id"`
	Color  string `json:"color"`
	Name   string `json:"name"`
	Joined bool   `json:"joined"`

	GeneralStock   Stock `json:"general_stock"`
	PersonalSupply Stock `json:"personal_supply"`

	Points    int `json:"points"`
	Keys      int `json:"keys"`
	Privilege int `json:"privilege"`
	Actions   int `json:"actions"` // per-turn main action budget
	Book      int `json:"book"`    // move budget upgrade level
	Bank      int `json:"bank"`    // income upgrade level

	// A marker is in exactly one of the three lists at any time.
	ReadyMarkers    []MarkerKind `json:"ready_markers"`
	UsedMarkers     []MarkerKind `json:"used_markers"`
	UnplacedMarkers []MarkerKind `json:"unplaced_markers"`

	LinkEastWest bool `json:"link_east_west"` // one-time east-west bonus taken
}

// StatLevel returns the player's current level on an upgrade track.
func (p *PlayerState) StatLevel(stat Stat) int {
	switch stat {
	case StatActions:
		return p.Actions
	case StatPrivilege:
		return p.Privilege
	case StatBook:
		return p.Book
	case StatKeys:
		return p.Keys
	case StatBank:
		return p.Bank
	}
	return 0
}

// BumpStat raises an upgrade track by one level.
func (p *PlayerState) BumpStat(stat Stat) {
	switch stat {
	case StatActions:
		p.Actions++
	case StatPrivilege:
		p.Privilege++
	case StatBook:
		p.Book++
	case StatKeys:
		p.Keys++
	case StatBank:
		p.Bank++
	}
}

// CoellenSlot is one slot of the Coellen bonus table.
type CoellenSlot struct {
	Points    int `json:"points"`
	Privilege int `json:"privilege"`
	Owner     int `json:"owner"` // NoSeat while open
}

// LogEntry is one line of the game's audit trail.
type LogEntry struct {
	Player  int    `json:"player"`
	Message string `json:"message"`
}

// GameState is the root state object. It is exclusively owned by the
// caller between actions; the engine mutates the value it is handed and
// never retains a reference.
type GameState struct {
	ID      string                `json:"id"`
	Board   *BoardSpec            `json:"board"`
	Players []*PlayerState        `json:"players"`
	Routes  []*RouteState         `json:"routes"`
	Cities  map[string]*CityState `json:"cities"`
	Context *PhaseContext         `json:"context"`
	Markers []MarkerKind          `json:"markers"` // undrawn bonus marker pool
	Coellen []CoellenSlot         `json:"coellen"`
	Turn    int                   `json:"turn"`
	Log     []LogEntry            `json:"log"`
	IsOver  bool                  `json:"is_over"`
}

var seatColors = []string{"red", "blue", "green", "yellow", "purple"}

// initialMarkerPool is the draw order of the bonus marker pool. The first
// markers are placed on the board's starting routes during setup.
func initialMarkerPool() []MarkerKind {
	return []MarkerKind{
		MarkerExtraOffice, MarkerMove3, MarkerSwap,
		MarkerOffice, MarkerUpgrade, MarkerExtraOffice,
		MarkerMove3, MarkerOffice, MarkerSwap,
		MarkerUpgrade, MarkerExtraOffice, MarkerOffice,
	}
}

// NewGame sets up a game on the given board for 3-5 players. Seat order
// follows the order of names.
func NewGame(board *BoardSpec, names []string) (*GameState, error) {
	if len(names) < 3 || len(names) > 5 {
		return nil, fmt.Errorf("need 3-5 players, got %d", len(names))
	}

	s := &GameState{
		ID:      uuid.NewString(),
		Board:   board,
		Cities:  make(map[string]*CityState, len(board.Cities)),
		Markers: initialMarkerPool(),
		Turn:    1,
	}
	for _, c := range board.Cities {
		s.Cities[c.Name] = &CityState{}
	}
	for _, r := range board.Routes {
		s.Routes = append(s.Routes, &RouteState{
			From:  r.From,
			To:    r.To,
			Posts: make([]*Token, r.Posts),
		})
	}
	for _, idx := range board.StartingMarkerRoutes {
		if len(s.Markers) == 0 {
			break
		}
		s.Routes[idx].Marker = s.Markers[0]
		s.Markers = s.Markers[1:]
	}
	for _, slot := range board.CoellenSlots {
		s.Coellen = append(s.Coellen, CoellenSlot{
			Points:    slot.Points,
			Privilege: slot.Privilege,
			Owner:     NoSeat,
		})
	}

	for seat, name := range names {
		s.Players = append(s.Players, &PlayerState{
			ID:             uuid.NewString(),
			Color:          seatColors[seat],
			Name:           name,
			Joined:         true,
			GeneralStock:   Stock{Merchants: 0, Tradesmen: 7},
			PersonalSupply: Stock{Merchants: 1, Tradesmen: 4 + seat},
			Privilege:      1,
			Actions:        2,
			Book:           1,
			Bank:           1,
			Keys:           1,
		})
	}

	s.Context = &PhaseContext{Phase: PhaseActions, Player: 0}
	return s, nil
}

// Player returns the state of a seat. Panics on an out-of-range seat:
// seat indices come from the engine itself, never from user input.
func (s *GameState) Player(seat int) *PlayerState {
	if seat < 0 || seat >= len(s.Players) {
		panic(fmt.Sprintf("seat %d out of range", seat))
	}
	return s.Players[seat]
}

// City returns a city's state, panicking on unknown names. City names
// are validated against the board before use.
func (s *GameState) City(name string) *CityState {
	c, ok := s.Cities[name]
	if !ok {
		panic(fmt.Sprintf("unknown city %q", name))
	}
	return c
}

// Route returns a route's state, panicking on out-of-range indices.
// Per the error contract, bad indices are a caller bug, not a rule violation.
func (s *GameState) Route(idx int) *RouteState {
	if idx < 0 || idx >= len(s.Routes) {
		panic(fmt.Sprintf("route %d out of range", idx))
	}
	return s.Routes[idx]
}

// Post returns the token at a trading post, panicking on bad indices.
func (s *GameState) Post(route, post int) *Token {
	r := s.Route(route)
	if post < 0 || post >= len(r.Posts) {
		panic(fmt.Sprintf("post %d out of range on route %d", post, route))
	}
	return r.Posts[post]
}

// logf appends a line to the audit trail. The engine never reads the log.
func (s *GameState) logf(seat int, format string, args ...any) {
	s.Log = append(s.Log, LogEntry{
		Player:  seat,
		Message: fmt.Sprintf(format, args...),
	})
}
