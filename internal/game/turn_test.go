package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoneAdvancesTurn(t *testing.T) {
	s := newTestState(t)

	next := ExecuteAction(ActionDone, s, ActionParams{})

	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, PhaseActions, next.Phase)
	assert.Equal(t, 1, next.Player)
	assert.Nil(t, next.Prev)
	assert.Contains(t, lastLog(s), "Alice ends the turn")
}

func TestDoneWrapsAroundToFirstSeat(t *testing.T) {
	s := newTestState(t)
	s.Context = &PhaseContext{Phase: PhaseActions, Player: 2}

	next := ExecuteAction(ActionDone, s, ActionParams{})
	assert.Equal(t, 0, next.Player)
}

// A claimed marker is replaced from the pool at turn end: the player
// places the drawn marker before the next player acts.
func TestDoneDrawsReplacementMarker(t *testing.T) {
	s := newTestState(t)
	s.Context.record(actionMarkerClaim, ActionParams{Kind: MarkerExtraOffice})
	drawn := s.Markers[0]
	poolBefore := len(s.Markers)

	ctx := ExecuteAction(ActionDone, s, ActionParams{})

	assert.Equal(t, PhaseMarkers, ctx.Phase)
	assert.Equal(t, 0, ctx.Player, "the ending player places the draw")
	assert.Len(t, s.Markers, poolBefore-1)
	require.Len(t, ctx.Actions, 1)
	assert.Equal(t, drawn, ctx.Actions[0].Params.Kind)
	assert.Equal(t, 0, ctx.Actions[0].Params.Count)
	// The next player's turn frame is already underneath.
	require.NotNil(t, ctx.Prev)
	assert.Equal(t, PhaseActions, ctx.Prev.Phase)
	assert.Equal(t, 1, ctx.Prev.Player)

	next := ExecuteAction(ActionMarkerPlace, s, ActionParams{Route: 0})
	assert.Equal(t, drawn, s.Routes[0].Marker)
	assert.Equal(t, PhaseActions, next.Phase)
	assert.Equal(t, 1, next.Player)
}

func TestDoneChainsMultipleDraws(t *testing.T) {
	s := newTestState(t)
	s.Context.record(actionMarkerClaim, ActionParams{Kind: MarkerSwap})
	s.Context.record(actionMarkerClaim, ActionParams{Kind: MarkerOffice})
	first, second := s.Markers[0], s.Markers[1]

	ctx := ExecuteAction(ActionDone, s, ActionParams{})
	assert.Equal(t, first, ctx.Actions[0].Params.Kind)
	assert.Equal(t, 1, ctx.Actions[0].Params.Count, "one more draw owed")

	ctx = ExecuteAction(ActionMarkerPlace, s, ActionParams{Route: 0})
	assert.Equal(t, PhaseMarkers, ctx.Phase)
	assert.Equal(t, second, ctx.Actions[0].Params.Kind)
	assert.Equal(t, 0, ctx.Actions[0].Params.Count)

	next := ExecuteAction(ActionMarkerPlace, s, ActionParams{Route: 1})
	assert.Equal(t, PhaseActions, next.Phase)
	assert.Equal(t, 1, next.Player)
}

func TestMarkerDeferKeepsMarkerUnplaced(t *testing.T) {
	s := newTestState(t)
	s.Context.record(actionMarkerClaim, ActionParams{Kind: MarkerUpgrade})
	drawn := s.Markers[0]

	ExecuteAction(ActionDone, s, ActionParams{})
	next := ExecuteAction(ActionMarkerDefer, s, ActionParams{})

	assert.Equal(t, []MarkerKind{drawn}, s.Player(0).UnplacedMarkers)
	assert.Equal(t, PhaseActions, next.Phase)
	assert.True(t, logContains(s, "keeps the"))
}

func TestEmptyPoolEndsGameAtTurnEnd(t *testing.T) {
	s := newTestState(t)
	s.Markers = nil

	next := ExecuteAction(ActionDone, s, ActionParams{})

	assert.True(t, s.IsOver)
	assert.True(t, next.EndGame)
	assert.True(t, logContains(s, "The bonus marker pool is exhausted - Game over"))
}

// A claim against an already empty pool draws nothing and ends the game.
func TestClaimWithEmptyPoolEndsGame(t *testing.T) {
	s := newTestState(t)
	s.Markers = nil
	s.Context.record(actionMarkerClaim, ActionParams{Kind: MarkerSwap})

	next := ExecuteAction(ActionDone, s, ActionParams{})

	assert.Equal(t, PhaseActions, next.Phase)
	assert.True(t, s.IsOver)
}

func TestDoneAfterGameOverDoesNotAdvance(t *testing.T) {
	s := newTestState(t)
	s.IsOver = true
	root := s.Context

	next := ExecuteAction(ActionDone, s, ActionParams{})

	assert.Same(t, root, next)
	assert.Equal(t, 1, s.Turn)
}
