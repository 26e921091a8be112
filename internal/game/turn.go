package game

// Turn and game-end bookkeeping: ending a turn, drawing replacement
// bonus markers from the pool, and the terminal conditions that are not
// tied to a single point award.

// endTurn closes the current player's turn. When the player claimed
// bonus markers this turn, replacements are drawn from the pool one at a
// time and offered for placement before the next player acts.
func endTurn(s *GameState) *PhaseContext {
	ctx := s.Context.root()
	p := s.Player(ctx.Player)
	s.logf(ctx.Player, "%s ends the turn", p.Name)

	if s.IsOver {
		// Terminal state: the turn does not advance any further.
		return ctx
	}

	claimed := 0
	for _, rec := range ctx.Actions {
		if rec.Name == actionMarkerClaim {
			claimed++
		}
	}

	s.Turn++
	next := (ctx.Player + 1) % len(s.Players)
	nextRoot := &PhaseContext{Phase: PhaseActions, Player: next}

	if claimed > 0 && len(s.Markers) > 0 {
		return pushMarkerDraw(s, ctx.Player, claimed, nextRoot)
	}
	if len(s.Markers) == 0 {
		s.IsOver = true
		nextRoot.EndGame = true
		s.logf(ctx.Player, "The bonus marker pool is exhausted - Game over")
	}
	return nextRoot
}

// pushMarkerDraw draws the next marker from the pool and opens a Markers
// frame in which the drawing player must place or defer it. The frame's
// seed record carries the drawn kind and how many draws are still owed.
func pushMarkerDraw(s *GameState, seat, owed int, prev *PhaseContext) *PhaseContext {
	kind := s.Markers[0]
	s.Markers = s.Markers[1:]
	ctx := &PhaseContext{Phase: PhaseMarkers, Player: seat, Prev: prev}
	ctx.record(actionMarkerDraw, ActionParams{Kind: kind, Count: owed - 1})
	s.logf(seat, "%s draws a %s bonus marker from the pool", s.Player(seat).Name, kind)
	return ctx
}

// finishMarkerDraw continues with the next owed draw or pops back to the
// next player's turn.
func finishMarkerDraw(s *GameState, ctx *PhaseContext) *PhaseContext {
	owed := ctx.Actions[0].Params.Count
	if owed > 0 && len(s.Markers) > 0 {
		return pushMarkerDraw(s, ctx.Player, owed, pop(ctx))
	}
	return pop(ctx)
}

func execMarkerPlace(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	kind := ctx.Actions[0].Params.Kind
	ctx.record(ActionMarkerPlace, params)
	r := s.Route(params.Route)
	r.Marker = kind
	s.logf(ctx.Player, "%s places the %s marker on %s", s.Player(ctx.Player).Name, kind, r.Name())
	return finishMarkerDraw(s, ctx)
}

func execMarkerDefer(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	kind := ctx.Actions[0].Params.Kind
	ctx.record(ActionMarkerDefer, params)
	p := s.Player(ctx.Player)
	p.UnplacedMarkers = append(p.UnplacedMarkers, kind)
	s.logf(ctx.Player, "%s keeps the %s marker unplaced", p.Name, kind)
	return finishMarkerDraw(s, ctx)
}
