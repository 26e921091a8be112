package game

import "fmt"

// ExecuteAction performs one validated action against the state and
// returns the phase context the caller should install. For convenience
// the returned context is also written to state.Context before returning.
//
// ExecuteAction panics on programmer-error conditions (out-of-range
// indices, placement from an empty hand, unknown action/phase
// combinations). Callers are expected to run ValidateAction first and to
// apply ExecuteAction to a disposable copy of the authoritative state.
func ExecuteAction(name ActionName, s *GameState, params ActionParams) *PhaseContext {
	ctx := s.Context
	var next *PhaseContext

	switch name {
	case ActionPlace:
		next = execPlace(s, ctx, params)
	case ActionIncome:
		next = execIncome(s, ctx, params)
	case ActionMove:
		next = execMove(s, ctx, params)
	case ActionDisplace:
		next = execDisplace(s, ctx, params)
	case ActionRoute:
		next = execRoute(s, ctx, params)
	case ActionMarkerUse:
		next = execMarkerUse(s, ctx, params)
	case ActionDone:
		if ctx.Phase == PhaseCollection {
			// Abandoning a collection before any placement.
			ctx.record(name, params)
			next = pop(ctx)
		} else {
			next = endTurn(s)
		}
	case ActionMoveCollect:
		next = execMoveCollect(s, ctx, params)
	case ActionMovePlace:
		next = execMovePlace(s, ctx, params)
	case ActionDisplacePlace:
		next = execDisplacePlace(s, ctx, params)
	case ActionRouteOffice:
		next = execRouteOffice(s, ctx, params)
	case ActionRouteUpgrade:
		next = execRouteUpgrade(s, ctx, params)
	case ActionRouteCoellen:
		next = execRouteCoellen(s, ctx, params)
	case ActionRouteDone:
		ctx.record(name, params)
		next = finishRoute(s, ctx)
	case ActionMarkerExtra:
		next = execMarkerExtra(s, ctx, params)
	case ActionMarkerPlace:
		next = execMarkerPlace(s, ctx, params)
	case ActionMarkerDefer:
		next = execMarkerDefer(s, ctx, params)
	case ActionMarkerSwap:
		next = execMarkerSwap(s, ctx, params)
	case ActionMarkerOffice:
		next = execMarkerOffice(s, ctx, params)
	case ActionMarkerUpgrade:
		next = execMarkerUpgrade(s, ctx, params)
	default:
		panic(fmt.Sprintf("unhandled action %q in phase %s", name, ctx.Phase))
	}

	s.Context = next
	return next
}

// pop returns the parent frame, carrying a pending end-game flag up the
// stack so the caller phase sees it.
func pop(ctx *PhaseContext) *PhaseContext {
	prev := ctx.Prev
	if ctx.EndGame && prev != nil {
		prev.EndGame = true
	}
	return prev
}

// awardPoints adds points and applies the 20-point end condition. The
// end-game flag goes to retCtx, the context the current action returns
// to, which is not necessarily the frame being executed in.
func awardPoints(s *GameState, seat, points int, retCtx *PhaseContext) {
	p := s.Player(seat)
	p.Points += points
	if points == 1 {
		s.logf(seat, "%s scores 1 point", p.Name)
	} else {
		s.logf(seat, "%s scores %d points", p.Name, points)
	}
	if p.Points >= 20 && !s.IsOver {
		s.IsOver = true
		if retCtx != nil {
			retCtx.EndGame = true
		}
		s.logf(seat, "%s reaches %d points - Game over", p.Name, p.Points)
	}
}

// eastWestAwards is the point ladder for successive east-west completions.
var eastWestAwards = []int{7, 4, 2}

// checkEastWest awards the one-time east-west bonus when the seat's
// offices newly connect the two anchor cities.
func checkEastWest(s *GameState, seat int, retCtx *PhaseContext) {
	p := s.Player(seat)
	if p.LinkEastWest {
		return
	}
	if !AreCitiesLinked(s, s.Board.WestAnchor, s.Board.EastAnchor, seat) {
		return
	}
	prior := 0
	for _, q := range s.Players {
		if q.LinkEastWest {
			prior++
		}
	}
	award := eastWestAwards[min(prior, len(eastWestAwards)-1)]
	p.LinkEastWest = true
	s.logf(seat, "%s completes the east-west route", p.Name)
	awardPoints(s, seat, award, retCtx)
}

// takeFromSupply removes one token of the given kind from the player's
// personal supply.
func takeFromSupply(p *PlayerState, merch bool) {
	if merch {
		if p.PersonalSupply.Merchants == 0 {
			panic("no merchant in personal supply")
		}
		p.PersonalSupply.Merchants--
		return
	}
	if p.PersonalSupply.Tradesmen == 0 {
		panic("no tradesman in personal supply")
	}
	p.PersonalSupply.Tradesmen--
}

// returnToStock puts a token back into its owner's general stock.
func returnToStock(s *GameState, t Token) {
	p := s.Player(t.Owner)
	if t.Merch {
		p.GeneralStock.Merchants++
	} else {
		p.GeneralStock.Tradesmen++
	}
}

func execPlace(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionPlace, params)
	p := s.Player(ctx.Player)
	takeFromSupply(p, params.Merch)
	r := s.Route(params.Route)
	t := Token{Owner: ctx.Player, Merch: params.Merch}
	r.Posts[params.Post] = &t
	s.logf(ctx.Player, "%s places a %s on %s", p.Name, t.Piece(), r.Name())
	return ctx
}

func execIncome(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionIncome, params)
	p := s.Player(ctx.Player)
	budget := bankIncome(p.Bank)
	merchants := min(budget, p.GeneralStock.Merchants)
	budget -= merchants
	tradesmen := min(budget, p.GeneralStock.Tradesmen)
	p.GeneralStock.Merchants -= merchants
	p.GeneralStock.Tradesmen -= tradesmen
	p.PersonalSupply.Merchants += merchants
	p.PersonalSupply.Tradesmen += tradesmen
	s.logf(ctx.Player, "%s takes income: %d merchants, %d tradesmen", p.Name, merchants, tradesmen)
	return ctx
}

func execMove(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionMove, params)
	return &PhaseContext{Phase: PhaseCollection, Player: ctx.Player, Prev: ctx}
}

func execDisplace(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionDisplace, params)
	p := s.Player(ctx.Player)
	r := s.Route(params.Route)
	evicted := *s.Post(params.Route, params.Post)

	takeFromSupply(p, params.Merch)
	for cost := displaceExtraCost(evicted); cost > 0; cost-- {
		// Surcharge is paid with tradesmen while any remain.
		paysMerch := p.PersonalSupply.Tradesmen == 0
		takeFromSupply(p, paysMerch)
		returnToStock(s, Token{Owner: ctx.Player, Merch: paysMerch})
	}

	t := Token{Owner: ctx.Player, Merch: params.Merch}
	r.Posts[params.Post] = &t
	s.logf(ctx.Player, "%s displaces %s's %s from %s",
		p.Name, s.Player(evicted.Owner).Name, evicted.Piece(), r.Name())

	next := &PhaseContext{
		Phase:  PhaseDisplacement,
		Player: evicted.Owner,
		Hand:   []Token{evicted},
		Prev:   ctx,
	}
	next.record(ActionDisplace, params)
	return next
}

func execDisplacePlace(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	if len(ctx.Hand) == 0 {
		panic("displace-place with empty hand")
	}
	ctx.record(ActionDisplacePlace, params)
	t := ctx.Hand[0]
	ctx.Hand = ctx.Hand[1:]
	r := s.Route(params.Route)
	r.Posts[params.Post] = &t
	s.logf(ctx.Player, "%s returns the displaced %s to %s",
		s.Player(ctx.Player).Name, t.Piece(), r.Name())
	if len(ctx.Hand) == 0 {
		return pop(ctx)
	}
	return ctx
}

func execMoveCollect(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionMoveCollect, params)
	r := s.Route(params.Route)
	t := *s.Post(params.Route, params.Post)
	r.Posts[params.Post] = nil
	ctx.Hand = append(ctx.Hand, t) // FIFO: first collected is first placed
	s.logf(ctx.Player, "%s moves a %s from %s", s.Player(ctx.Player).Name, t.Piece(), r.Name())
	return ctx
}

func execMovePlace(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	if len(ctx.Hand) == 0 {
		panic("move-place with empty hand")
	}
	t := ctx.Hand[0]
	rest := ctx.Hand[1:]
	r := s.Route(params.Route)
	r.Posts[params.Post] = &t
	s.logf(ctx.Player, "%s places a %s on %s", s.Player(ctx.Player).Name, t.Piece(), r.Name())

	if ctx.Phase == PhaseCollection {
		// The first placement turns the collection into a movement and
		// elides the collection frame from the stack.
		next := &PhaseContext{
			Phase:  PhaseMovement,
			Player: ctx.Player,
			Hand:   rest,
			Prev:   ctx.Prev,
		}
		next.record(ActionMovePlace, params)
		if len(next.Hand) == 0 {
			return pop(next)
		}
		return next
	}

	ctx.record(ActionMovePlace, params)
	ctx.Hand = rest
	if len(ctx.Hand) == 0 {
		return pop(ctx)
	}
	return ctx
}

func execRoute(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionRoute, params)
	r := s.Route(params.Route)
	seat := ctx.Player
	p := s.Player(seat)

	next := &PhaseContext{Phase: PhaseRoute, Player: seat, Prev: ctx}
	next.record(ActionRoute, params)
	for i, post := range r.Posts {
		next.Hand = append(next.Hand, *post)
		r.Posts[i] = nil
	}
	s.logf(seat, "%s completes the route %s", p.Name, r.Name())

	// Controllers of the connected cities score first.
	for _, city := range []string{r.From, r.To} {
		if owner := CityOwner(s, city); owner != NoSeat {
			awardPoints(s, owner, 1, next)
		}
	}

	if r.Marker != "" {
		p.ReadyMarkers = append(p.ReadyMarkers, r.Marker)
		s.logf(seat, "%s claims the %s bonus marker", p.Name, r.Marker)
		ctx.root().record(actionMarkerClaim, ActionParams{Kind: r.Marker})
		r.Marker = ""
	}

	checkEastWest(s, seat, next)

	// Reward building reads the in-flight completion through the context
	// stack, so the new frame has to be current already.
	s.Context = next
	next.Rewards = buildRouteRewards(s, next)
	return next
}

// handHasKind reports whether the hand holds a token of the given kind.
func handHasKind(hand []Token, merch bool) bool {
	for _, t := range hand {
		if t.Merch == merch {
			return true
		}
	}
	return false
}

// takeFromHand removes and returns the first token of the given kind.
func takeFromHand(hand []Token, merch bool) (Token, []Token) {
	for i, t := range hand {
		if t.Merch == merch {
			return t, append(hand[:i:i], hand[i+1:]...)
		}
	}
	panic(fmt.Sprintf("no %v token in hand", merch))
}

// buildRouteRewards assembles the selectable follow-ups of a completed
// route: an office or upgrade in either connected city, a Coellen table
// slot, extra-office marker placements, and declining outright.
func buildRouteRewards(s *GameState, ctx *PhaseContext) []Reward {
	routeIdx := ctx.Actions[0].Params.Route
	r := s.Route(routeIdx)
	p := s.Player(ctx.Player)
	var rewards []Reward

	for _, city := range []string{r.From, r.To} {
		spec := s.Board.City(city)
		c := s.City(city)
		if next := len(c.Tokens); next < len(spec.Offices) {
			slot := spec.Offices[next]
			if p.Privilege >= slot.Privilege && handHasKind(ctx.Hand, slot.Merch) {
				rewards = append(rewards, Reward{
					Title:  fmt.Sprintf("Take an office in %s", city),
					Action: ActionRouteOffice,
					Params: ActionParams{City: city},
				})
			}
		}
		if spec.Upgrade != StatNone && p.StatLevel(spec.Upgrade) < MaxStatLevel(spec.Upgrade) {
			rewards = append(rewards, Reward{
				Title:  fmt.Sprintf("Upgrade %s in %s", spec.Upgrade, city),
				Action: ActionRouteUpgrade,
				Params: ActionParams{City: city, Stat: spec.Upgrade},
			})
		}
		if city == s.Board.CoellenCity && handHasKind(ctx.Hand, true) {
			for i, slot := range s.Coellen {
				if slot.Owner == NoSeat && p.Privilege >= slot.Privilege {
					rewards = append(rewards, Reward{
						Title:  fmt.Sprintf("Place a merchant on the Coellen table for %d points", slot.Points),
						Action: ActionRouteCoellen,
						Params: ActionParams{Slot: i},
					})
				}
			}
		}
	}

	if hasMarker(p.ReadyMarkers, MarkerExtraOffice) && len(ctx.Hand) > 0 {
		for _, city := range ValidExtraOfficeLocations(s) {
			rewards = append(rewards, Reward{
				Title:  fmt.Sprintf("Use the Extra Office marker in %s", city),
				Action: ActionMarkerExtra,
				Params: ActionParams{City: city},
			})
		}
	}

	rewards = append(rewards, Reward{Title: "Take no reward", Action: ActionRouteDone})
	return rewards
}

// finishRoute returns the unused route tokens to their owner's general
// stock and pops the route frame.
func finishRoute(s *GameState, ctx *PhaseContext) *PhaseContext {
	for _, t := range ctx.Hand {
		returnToStock(s, t)
	}
	ctx.Hand = nil
	return pop(ctx)
}

func execRouteOffice(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionRouteOffice, params)
	seat := ctx.Player
	p := s.Player(seat)
	spec := s.Board.City(params.City)
	c := s.City(params.City)

	next := len(c.Tokens)
	if next >= len(spec.Offices) {
		panic(fmt.Sprintf("no open office slot in %s", params.City))
	}
	slot := spec.Offices[next]
	if p.Privilege < slot.Privilege {
		panic(fmt.Sprintf("privilege %d below office requirement %d in %s", p.Privilege, slot.Privilege, params.City))
	}
	t, rest := takeFromHand(ctx.Hand, slot.Merch)
	ctx.Hand = rest
	c.Tokens = append(c.Tokens, t)
	s.logf(seat, "%s takes an office in %s", p.Name, params.City)
	checkEastWest(s, seat, ctx)
	return finishRoute(s, ctx)
}

func execRouteUpgrade(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionRouteUpgrade, params)
	p := s.Player(ctx.Player)
	p.BumpStat(params.Stat)
	// Upgrading frees a token for later retrieval.
	if p.GeneralStock.Tradesmen > 0 {
		p.GeneralStock.Tradesmen--
		p.PersonalSupply.Tradesmen++
	}
	s.logf(ctx.Player, "%s upgrades %s to level %d", p.Name, params.Stat, p.StatLevel(params.Stat))
	return finishRoute(s, ctx)
}

func execRouteCoellen(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionRouteCoellen, params)
	if params.Slot < 0 || params.Slot >= len(s.Coellen) {
		panic(fmt.Sprintf("coellen slot %d out of range", params.Slot))
	}
	seat := ctx.Player
	slot := &s.Coellen[params.Slot]
	_, rest := takeFromHand(ctx.Hand, true)
	ctx.Hand = rest
	slot.Owner = seat
	s.logf(seat, "%s places a merchant on the Coellen table", s.Player(seat).Name)
	awardPoints(s, seat, slot.Points, ctx.Prev)
	return finishRoute(s, ctx)
}

func execMarkerExtra(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionMarkerExtra, params)
	seat := ctx.Player
	p := s.Player(seat)
	consumeMarker(p, MarkerExtraOffice)

	merch := !handHasKind(ctx.Hand, false) // tradesman preferred
	t, rest := takeFromHand(ctx.Hand, merch)
	ctx.Hand = rest
	c := s.City(params.City)
	c.Extras = append(c.Extras, t)
	s.logf(seat, "%s places an extra office in %s", p.Name, params.City)
	checkEastWest(s, seat, ctx)

	// The marker does not resolve the route; refresh the remaining choices.
	ctx.Rewards = buildRouteRewards(s, ctx)
	return ctx
}

// consumeMarker moves the first matching marker from ready to used.
func consumeMarker(p *PlayerState, kind MarkerKind) {
	for i, m := range p.ReadyMarkers {
		if m == kind {
			p.ReadyMarkers = append(p.ReadyMarkers[:i:i], p.ReadyMarkers[i+1:]...)
			p.UsedMarkers = append(p.UsedMarkers, kind)
			return
		}
	}
	panic(fmt.Sprintf("marker %q not ready", kind))
}

// swapRewards enumerates swap-marker choices across the whole board.
func swapRewards(s *GameState) []Reward {
	var rewards []Reward
	for _, city := range s.Board.Cities {
		for _, pair := range ValidSwapPairs(s, city.Name) {
			rewards = append(rewards, Reward{
				Title:  fmt.Sprintf("Swap offices in %s", city.Name),
				Action: ActionMarkerSwap,
				Params: ActionParams{City: city.Name, Office1: pair.Office1, Office2: pair.Office2},
			})
		}
	}
	return rewards
}

func execMarkerUse(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	seat := ctx.Player
	p := s.Player(seat)

	if params.Kind == MarkerSwap {
		rewards := swapRewards(s)
		if len(rewards) == 0 {
			// The marker stays ready and the phase does not change.
			s.logf(seat, "%s cannot use Swap marker - no valid office pairs available", p.Name)
			return ctx
		}
		ctx.record(ActionMarkerUse, params)
		consumeMarker(p, MarkerSwap)
		s.logf(seat, "%s uses the %s marker", p.Name, MarkerSwap)
		return &PhaseContext{Phase: PhaseSwap, Player: seat, Prev: ctx, Rewards: rewards}
	}

	ctx.record(ActionMarkerUse, params)
	consumeMarker(p, params.Kind)
	s.logf(seat, "%s uses the %s marker", p.Name, params.Kind)

	switch params.Kind {
	case MarkerMove3:
		return &PhaseContext{Phase: PhaseCollection, Player: seat, Prev: ctx}
	case MarkerOffice:
		// The office marker works on the tokens of the triggering route
		// completion; it takes over whatever hand the parent holds.
		next := &PhaseContext{Phase: PhaseOffice, Player: seat, Prev: ctx, Hand: ctx.Hand}
		ctx.Hand = nil
		return next
	case MarkerUpgrade:
		return &PhaseContext{Phase: PhaseUpgrade, Player: seat, Prev: ctx}
	}
	panic(fmt.Sprintf("unhandled marker kind %q", params.Kind))
}

func execMarkerSwap(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	// The reward list was pre-filtered, but the swap re-validates anyway.
	if reason := CanSwapOfficePair(s, params.City, params.Office1, params.Office2); reason != "" {
		panic("Cannot swap offices: " + reason)
	}
	ctx.record(ActionMarkerSwap, params)
	c := s.City(params.City)
	base := len(c.LeftOffices) + len(c.Extras)
	i, j := params.Office1-base, params.Office2-base
	c.Tokens[i], c.Tokens[j] = c.Tokens[j], c.Tokens[i]
	s.logf(ctx.Player, "%s swaps offices in %s", s.Player(ctx.Player).Name, params.City)
	return pop(ctx)
}

func execMarkerOffice(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	// The marker was consumed when it was activated; an empty hand here
	// still costs it. Documented behaviour, kept as is.
	if len(ctx.Hand) == 0 {
		panic("No tokens available from route completion")
	}
	ctx.record(ActionMarkerOffice, params)
	seat := ctx.Player

	merch := !handHasKind(ctx.Hand, false) // tradesman preferred
	t, rest := takeFromHand(ctx.Hand, merch)
	for _, leftover := range rest {
		returnToStock(s, leftover)
	}
	ctx.Hand = nil

	c := s.City(params.City)
	if len(c.LeftOffices) >= maxLeftOffices {
		panic(fmt.Sprintf("left offices full in %s", params.City))
	}
	c.LeftOffices = append(c.LeftOffices, t)
	s.logf(seat, "%s places an office marker in %s", s.Player(seat).Name, params.City)
	checkEastWest(s, seat, ctx)

	next := pop(ctx)
	if next != nil && next.Phase == PhaseRoute {
		// The route's hand moved into this frame and is gone now; the
		// remaining choices have to be recomputed.
		next.Rewards = buildRouteRewards(s, next)
	}
	return next
}

func execMarkerUpgrade(s *GameState, ctx *PhaseContext, params ActionParams) *PhaseContext {
	ctx.record(ActionMarkerUpgrade, params)
	p := s.Player(ctx.Player)
	p.BumpStat(params.Stat)
	if p.GeneralStock.Tradesmen > 0 {
		p.GeneralStock.Tradesmen--
		p.PersonalSupply.Tradesmen++
	}
	s.logf(ctx.Player, "%s upgrades %s to level %d", p.Name, params.Stat, p.StatLevel(params.Stat))
	return pop(ctx)
}
