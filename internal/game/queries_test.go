package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityOwnerEmptyCity(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, NoSeat, CityOwner(s, "Hamburg"))
}

// One regular plus one left office loses against two regular offices:
// 1 vs 2 priority offices is not a tie, so left offices never enter.
func TestCityOwnerHamburgScenario(t *testing.T) {
	s := newTestState(t)
	c := s.City("Hamburg")
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 1}}
	c.LeftOffices = []Token{{Owner: 0}}
	assert.Equal(t, 1, CityOwner(s, "Hamburg"))
}

func TestCityOwnerStrictMaximum(t *testing.T) {
	s := newTestState(t)
	c := s.City("Bremen")
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 0}}
	assert.Equal(t, 0, CityOwner(s, "Bremen"))
}

func TestCityOwnerExtrasCountAsPriority(t *testing.T) {
	s := newTestState(t)
	c := s.City("Bremen")
	c.Tokens = []Token{{Owner: 0}}
	c.Extras = []Token{{Owner: 1}, {Owner: 1}}
	assert.Equal(t, 1, CityOwner(s, "Bremen"))
}

// All three seats tied on priority offices: the left-office row decides.
func TestCityOwnerAllTiedFallsBackToLeftOffices(t *testing.T) {
	s := newTestState(t)
	c := s.City("Minden")
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 2}}
	c.LeftOffices = []Token{{Owner: 2}}
	assert.Equal(t, 2, CityOwner(s, "Minden"))
}

func TestCityOwnerLeftOfficesAlone(t *testing.T) {
	s := newTestState(t)
	c := s.City("Minden")
	c.LeftOffices = []Token{{Owner: 1}}
	assert.Equal(t, 1, CityOwner(s, "Minden"))
}

// A partial tie resolves by order of arrival: the first seat whose
// placement reached the shared maximum keeps control.
func TestCityOwnerFirstToReach(t *testing.T) {
	s := newTestState(t)
	c := s.City("Stendal")
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 1}, {Owner: 0}}
	assert.Equal(t, 1, CityOwner(s, "Stendal"))
}

// Reordering the office array through a swap changes who reached the
// maximum first. Control follows the current array order.
func TestCityOwnerSwapChangesTieBreak(t *testing.T) {
	s := newTestState(t)
	c := s.City("Arnheim")
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 0}, {Owner: 1}}
	require.Equal(t, 0, CityOwner(s, "Arnheim"))

	c.Tokens[2], c.Tokens[3] = c.Tokens[3], c.Tokens[2]
	assert.Equal(t, 1, CityOwner(s, "Arnheim"))
}

func TestAreCitiesLinked(t *testing.T) {
	s := newTestState(t)
	chain := []string{"Arnheim", "Munster", "Minden", "Hannover", "Brunswick", "Stendal"}
	for _, city := range chain {
		putOffice(s, city, 0)
	}
	assert.True(t, AreCitiesLinked(s, "Arnheim", "Stendal", 0))
	assert.False(t, AreCitiesLinked(s, "Arnheim", "Stendal", 1))

	// Breaking the chain in the middle severs the link.
	s.City("Hannover").Tokens = nil
	assert.False(t, AreCitiesLinked(s, "Arnheim", "Stendal", 0))
}

func TestAreCitiesLinkedRequiresPresenceAtEndpoints(t *testing.T) {
	s := newTestState(t)
	putOffice(s, "Arnheim", 0)
	assert.False(t, AreCitiesLinked(s, "Arnheim", "Stendal", 0))
}

func TestAreCitiesLinkedUnknownCityPanics(t *testing.T) {
	s := newTestState(t)
	assert.Panics(t, func() { AreCitiesLinked(s, "Atlantis", "Stendal", 0) })
}

func TestValidSwapPairs(t *testing.T) {
	s := newTestState(t)
	c := s.City("Minden")
	c.LeftOffices = []Token{{Owner: 0}}
	c.Extras = []Token{{Owner: 1}}
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 2}}

	pairs := ValidSwapPairs(s, "Minden")
	require.Len(t, pairs, 2)
	assert.Equal(t, SwapPair{Office1: 2, Office2: 3}, pairs[0])
	assert.Equal(t, SwapPair{Office1: 3, Office2: 4}, pairs[1])
}

func TestValidSwapPairsNoRegularOffices(t *testing.T) {
	s := newTestState(t)
	s.City("Minden").LeftOffices = []Token{{Owner: 0}, {Owner: 1}}
	assert.Empty(t, ValidSwapPairs(s, "Minden"))
}

func TestCanSwapOfficePair(t *testing.T) {
	s := newTestState(t)
	c := s.City("Minden")
	c.LeftOffices = []Token{{Owner: 0}}
	c.Extras = []Token{{Owner: 1}}
	c.Tokens = []Token{{Owner: 0}, {Owner: 1}, {Owner: 2}}

	assert.Equal(t, "", CanSwapOfficePair(s, "Minden", 2, 3))
	assert.Equal(t, "", CanSwapOfficePair(s, "Minden", 4, 3))
	assert.Equal(t, "Cannot swap left offices or extra offices", CanSwapOfficePair(s, "Minden", 0, 1))
	assert.Equal(t, "Cannot swap left offices or extra offices", CanSwapOfficePair(s, "Minden", 1, 2))
	assert.Equal(t, "Offices are not adjacent", CanSwapOfficePair(s, "Minden", 2, 4))
}

func TestCanSwapOfficePairOutOfRangePanics(t *testing.T) {
	s := newTestState(t)
	s.City("Minden").Tokens = []Token{{Owner: 0}, {Owner: 1}}
	assert.Panics(t, func() { CanSwapOfficePair(s, "Minden", 1, 2) })
	assert.Panics(t, func() { CanSwapOfficePair(s, "Minden", -1, 0) })
}

func TestAvailableActionsCountFollowsBook(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, 2, AvailableActionsCount(s))
	s.Player(0).Book = 3
	assert.Equal(t, 4, AvailableActionsCount(s))
}

func TestAvailableActionsCountPinnedDuringMove3(t *testing.T) {
	s := newTestState(t)
	root := s.Context
	root.record(ActionMarkerUse, ActionParams{Kind: MarkerMove3})
	s.Context = &PhaseContext{Phase: PhaseCollection, Player: 0, Prev: root}

	assert.Equal(t, 3, AvailableActionsCount(s))
	assert.True(t, CanMoveOpponentMarkers(s))
}

func TestOrdinaryMoveDoesNotAllowOpponentTokens(t *testing.T) {
	s := newTestState(t)
	root := s.Context
	root.record(ActionMove, ActionParams{})
	s.Context = &PhaseContext{Phase: PhaseCollection, Player: 0, Prev: root}

	assert.Equal(t, 2, AvailableActionsCount(s))
	assert.False(t, CanMoveOpponentMarkers(s))
}

func TestValidOfficeMarkerLocationsForRoute(t *testing.T) {
	s := newTestState(t)
	idx := routeIndex(t, s, "Bremen", "Hamburg")

	// Neither endpoint has a regular office yet.
	assert.Empty(t, ValidOfficeMarkerLocationsForRoute(s, idx))

	putOffice(s, "Bremen", 1)
	assert.Equal(t, []string{"Bremen"}, ValidOfficeMarkerLocationsForRoute(s, idx))

	// A full left-office row disqualifies the city.
	c := s.City("Bremen")
	for i := 0; i < maxLeftOffices; i++ {
		c.LeftOffices = append(c.LeftOffices, Token{Owner: 0})
	}
	assert.Empty(t, ValidOfficeMarkerLocationsForRoute(s, idx))
}

func TestValidExtraOfficeLocations(t *testing.T) {
	s := newTestState(t)
	idx := routeIndex(t, s, "Osnabruck", "Bremen")
	putOffice(s, "Bremen", 0)

	root := s.Context
	routeCtx := &PhaseContext{Phase: PhaseRoute, Player: 0, Prev: root}
	routeCtx.record(ActionRoute, ActionParams{Route: idx})
	s.Context = routeCtx

	// Bremen qualifies through the pre-existing office; Osnabruck has none.
	assert.Equal(t, []string{"Bremen"}, ValidExtraOfficeLocations(s))

	// An office placed by this very completion does not count on its own.
	s.City("Osnabruck").Extras = append(s.City("Osnabruck").Extras, Token{Owner: 0})
	routeCtx.record(ActionMarkerExtra, ActionParams{City: "Osnabruck"})
	assert.Equal(t, []string{"Bremen"}, ValidExtraOfficeLocations(s))
}

func TestRemainingMainActions(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, 2, RemainingMainActions(s))
	s.Context.record(ActionIncome, ActionParams{})
	assert.Equal(t, 1, RemainingMainActions(s))
	s.Context.record(ActionMarkerUse, ActionParams{Kind: MarkerMove3})
	assert.Equal(t, 1, RemainingMainActions(s))
	s.Context.record(ActionPlace, ActionParams{})
	assert.Equal(t, 0, RemainingMainActions(s))
}
