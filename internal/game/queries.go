package game

import "fmt"

// This file holds the pure derived-state computations. Nothing here
// mutates state; validation and execution both build on these.

// tally counts tokens per seat over an office sequence.
func tally(seq []Token, seats int) []int {
	counts := make([]int, seats)
	for _, t := range seq {
		counts[t.Owner]++
	}
	return counts
}

// maxHolders returns the maximum count and the seats holding it.
func maxHolders(counts []int) (int, []int) {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	var holders []int
	for seat, c := range counts {
		if c == max {
			holders = append(holders, seat)
		}
	}
	return max, holders
}

// firstToReach resolves an arrival-order tie break: walking the office
// sequence in placement order, the first seat whose running count reaches
// the target wins. Only seats whose final count equals the maximum can
// ever reach it, so no candidate filtering is needed.
func firstToReach(seq []Token, target int) int {
	counts := map[int]int{}
	for _, t := range seq {
		counts[t.Owner]++
		if counts[t.Owner] == target {
			return t.Owner
		}
	}
	return NoSeat
}

// CityOwner computes which seat controls a city, NoSeat when nobody does.
// Priority offices (regular + extra) decide by strict maximum; a tie of
// all seats falls back to left offices; remaining ties go to the seat
// that reached the maximum first, in office array order.
func CityOwner(s *GameState, city string) int {
	c := s.City(city)
	seats := len(s.Players)

	priority := make([]Token, 0, len(c.Tokens)+len(c.Extras))
	priority = append(priority, c.Tokens...)
	priority = append(priority, c.Extras...)

	max, holders := maxHolders(tally(priority, seats))
	if max > 0 {
		if len(holders) == 1 {
			return holders[0]
		}
		if len(holders) == seats {
			// All seats tied on priority offices: left offices break the tie.
			lmax, lholders := maxHolders(tally(c.LeftOffices, seats))
			if lmax > 0 && len(lholders) == 1 {
				return lholders[0]
			}
		}
		return firstToReach(priority, max)
	}

	// No priority offices anywhere: left offices decide on their own.
	lmax, lholders := maxHolders(tally(c.LeftOffices, seats))
	if lmax == 0 {
		return NoSeat
	}
	if len(lholders) == 1 {
		return lholders[0]
	}
	return firstToReach(c.LeftOffices, lmax)
}

// HasPresence reports whether a seat holds any office in a city,
// left offices included.
func HasPresence(s *GameState, seat int, city string) bool {
	c := s.City(city)
	for _, seq := range [][]Token{c.Tokens, c.Extras, c.LeftOffices} {
		for _, t := range seq {
			if t.Owner == seat {
				return true
			}
		}
	}
	return false
}

// priorityOfficeCount counts a seat's regular plus extra offices in a city.
func priorityOfficeCount(s *GameState, seat int, city string) int {
	c := s.City(city)
	n := 0
	for _, t := range c.Tokens {
		if t.Owner == seat {
			n++
		}
	}
	for _, t := range c.Extras {
		if t.Owner == seat {
			n++
		}
	}
	return n
}

// AreCitiesLinked reports whether the seat's offices form a connected
// chain of cities between a and b on the board's adjacency graph. Both
// endpoints must hold an office of the seat themselves.
func AreCitiesLinked(s *GameState, a, b string, seat int) bool {
	if s.Board.City(a) == nil || s.Board.City(b) == nil {
		panic(fmt.Sprintf("unknown city in link query: %q, %q", a, b))
	}
	if !HasPresence(s, seat, a) || !HasPresence(s, seat, b) {
		return false
	}
	visited := map[string]bool{a: true}
	queue := []string{a}
	for len(queue) > 0 {
		city := queue[0]
		queue = queue[1:]
		if city == b {
			return true
		}
		for _, next := range s.Board.Adjacent(city) {
			if !visited[next] && HasPresence(s, seat, next) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// SwapPair is a pair of absolute office indices eligible for the swap
// marker. Indices count through LeftOffices, then Extras, then Tokens.
type SwapPair struct {
	Office1 int `json:"office1"`
	Office2 int `json:"office2"`
}

// ValidSwapPairs enumerates the swappable office pairs of a city:
// consecutive index pairs where both offices fall inside the regular
// Tokens subrange. Left and extra offices are never swappable.
func ValidSwapPairs(s *GameState, city string) []SwapPair {
	c := s.City(city)
	base := len(c.LeftOffices) + len(c.Extras)
	var pairs []SwapPair
	for i := 0; i+1 < len(c.Tokens); i++ {
		pairs = append(pairs, SwapPair{Office1: base + i, Office2: base + i + 1})
	}
	return pairs
}

// CanSwapOfficePair re-checks a swap pair against the same rule the
// enumeration uses. Returns "" when the swap is allowed, a reason
// otherwise. Indices beyond the office arrays are a hard fault.
func CanSwapOfficePair(s *GameState, city string, office1, office2 int) string {
	c := s.City(city)
	total := len(c.LeftOffices) + len(c.Extras) + len(c.Tokens)
	if office1 < 0 || office1 >= total || office2 < 0 || office2 >= total {
		panic(fmt.Sprintf("office index out of range in %s: %d, %d", city, office1, office2))
	}
	base := len(c.LeftOffices) + len(c.Extras)
	if office1 < base || office2 < base {
		return "Cannot swap left offices or extra offices"
	}
	if office1 > office2 {
		office1, office2 = office2, office1
	}
	if office2 != office1+1 {
		return "Offices are not adjacent"
	}
	return ""
}

// routeContext finds the innermost Route frame on the current phase
// stack, nil when no route completion is in flight.
func routeContext(s *GameState) *PhaseContext {
	for c := s.Context; c != nil; c = c.Prev {
		if c.Phase == PhaseRoute {
			return c
		}
	}
	return nil
}

// placedThisCompletion counts offices the in-flight route completion has
// already put into a city.
func placedThisCompletion(ctx *PhaseContext, city string) int {
	n := 0
	for _, rec := range ctx.Actions {
		if (rec.Name == ActionRouteOffice || rec.Name == ActionMarkerExtra) && rec.Params.City == city {
			n++
		}
	}
	return n
}

// ValidExtraOfficeLocations lists the cities where the acting player may
// put an extra office: cities adjacent to the route completed by the
// current action, where the player either holds more than one office or
// holds one that predates this completion.
func ValidExtraOfficeLocations(s *GameState) []string {
	ctx := routeContext(s)
	if ctx == nil || len(ctx.Actions) == 0 {
		return nil
	}
	route := s.Route(ctx.Actions[0].Params.Route)
	var out []string
	for _, city := range []string{route.From, route.To} {
		count := priorityOfficeCount(s, ctx.Player, city)
		if count > 1 || count-placedThisCompletion(ctx, city) >= 1 {
			out = append(out, city)
		}
	}
	return out
}

// ValidOfficeMarkerLocationsForRoute lists the cities of a route that can
// take an office marker: at least one regular office already present and
// room left in the left-office row.
func ValidOfficeMarkerLocationsForRoute(s *GameState, routeIndex int) []string {
	route := s.Route(routeIndex)
	var out []string
	for _, city := range []string{route.From, route.To} {
		c := s.City(city)
		if len(c.Tokens) >= 1 && len(c.LeftOffices) < maxLeftOffices {
			out = append(out, city)
		}
	}
	return out
}

// move3Triggered reports whether the given frame was pushed by a
// "Move 3" marker activation: the parent's most recent action (the one
// that caused the push) is a marker-use of that kind.
func move3Triggered(ctx *PhaseContext) bool {
	if ctx == nil || ctx.Prev == nil {
		return false
	}
	last := ctx.Prev.lastAction()
	return last != nil && last.Name == ActionMarkerUse && last.Params.Kind == MarkerMove3
}

// AvailableActionsCount returns the player's move budget: Book+1, pinned
// to 3 while a collection opened by the "Move 3" marker is active.
func AvailableActionsCount(s *GameState) int {
	ctx := s.Context
	if (ctx.Phase == PhaseCollection || ctx.Phase == PhaseMovement) && move3Triggered(ctx) {
		return 3
	}
	return s.Player(ctx.Player).Book + 1
}

// CanMoveOpponentMarkers reports whether opponents' tokens may be picked
// up during the current collection. Only a "Move 3" marker grants that.
func CanMoveOpponentMarkers(s *GameState) bool {
	return move3Triggered(s.Context)
}

// collectedCount counts tokens picked up so far in a collection frame.
func collectedCount(ctx *PhaseContext) int {
	n := 0
	for _, rec := range ctx.Actions {
		if rec.Name == ActionMoveCollect {
			n++
		}
	}
	return n
}

// bankIncome maps the bank track level to the number of tokens an income
// action retrieves from the general stock.
func bankIncome(level int) int {
	switch {
	case level <= 1:
		return 3
	case level == 2:
		return 5
	case level == 3:
		return 7
	default:
		return 1 << 30 // whole stock
	}
}

// mainActions are the Actions-phase actions that spend the per-turn budget.
var mainActions = map[ActionName]bool{
	ActionPlace:    true,
	ActionIncome:   true,
	ActionMove:     true,
	ActionDisplace: true,
	ActionRoute:    true,
}

// RemainingMainActions returns how many main actions the current turn's
// player may still take.
func RemainingMainActions(s *GameState) int {
	root := s.Context.root()
	used := 0
	for _, rec := range root.Actions {
		if mainActions[rec.Name] {
			used++
		}
	}
	left := s.Player(root.Player).Actions - used
	if left < 0 {
		return 0
	}
	return left
}
