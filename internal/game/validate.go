package game

// ValidateAction checks a requested action against the current phase and
// the game rules. It returns "" when the action is allowed and a
// user-facing reason otherwise. It never mutates state.
//
// Out-of-range route, post or office indices panic instead of returning
// a reason: they mean the caller bypassed its own input handling, which
// is a bug, not a rule violation.
func ValidateAction(name ActionName, s *GameState, params ActionParams) string {
	const cantNow = "You can't perform that action now"

	ctx := s.Context
	if s.IsOver && name != ActionDone && ctx.Phase != PhaseRoute {
		return "The game is over"
	}

	switch ctx.Phase {
	case PhaseActions:
		switch name {
		case ActionPlace:
			return validatePlace(s, params)
		case ActionIncome:
			return validateIncome(s)
		case ActionMove:
			return validateMainBudget(s)
		case ActionDisplace:
			return validateDisplace(s, params)
		case ActionRoute:
			return validateRoute(s, params)
		case ActionMarkerUse:
			return validateMarkerUse(s, params, false)
		case ActionDone:
			return ""
		}

	case PhaseCollection:
		switch name {
		case ActionMoveCollect:
			return validateMoveCollect(s, params)
		case ActionMovePlace:
			return validateMovePlace(s, params)
		case ActionDone:
			if len(ctx.Hand) > 0 {
				return "You must place the collected tokens first"
			}
			return ""
		}

	case PhaseMovement:
		if name == ActionMovePlace {
			return validateMovePlace(s, params)
		}

	case PhaseDisplacement:
		if name == ActionDisplacePlace {
			return validateDisplacePlace(s, params)
		}

	case PhaseRoute:
		switch name {
		case ActionRouteOffice, ActionRouteUpgrade, ActionRouteCoellen, ActionMarkerExtra:
			if !ctx.hasReward(name, params) {
				return "That reward is not available"
			}
			return ""
		case ActionRouteDone:
			return ""
		case ActionMarkerUse:
			return validateMarkerUse(s, params, true)
		}

	case PhaseMarkers:
		switch name {
		case ActionMarkerPlace:
			return validateMarkerPlace(s, params)
		case ActionMarkerDefer:
			if markerPlacableRouteExists(s) {
				return "A bonus marker can still be placed"
			}
			return ""
		}

	case PhaseSwap:
		if name == ActionMarkerSwap {
			return CanSwapOfficePair(s, params.City, params.Office1, params.Office2)
		}

	case PhaseOffice:
		if name == ActionMarkerOffice {
			return validateMarkerOffice(s, params)
		}

	case PhaseUpgrade:
		if name == ActionMarkerUpgrade {
			return validateMarkerUpgrade(s, params)
		}
	}

	return cantNow
}

func validateMainBudget(s *GameState) string {
	if RemainingMainActions(s) == 0 {
		return "No actions remaining this turn"
	}
	return ""
}

func validatePlace(s *GameState, params ActionParams) string {
	if reason := validateMainBudget(s); reason != "" {
		return reason
	}
	if s.Post(params.Route, params.Post) != nil {
		return "Trading Post is Taken"
	}
	p := s.Player(s.Context.Player)
	if params.Merch && p.PersonalSupply.Merchants == 0 {
		return "No merchant available in your Personal Supply"
	}
	if !params.Merch && p.PersonalSupply.Tradesmen == 0 {
		return "No tradesman available in your Personal Supply"
	}
	return ""
}

func validateIncome(s *GameState) string {
	if reason := validateMainBudget(s); reason != "" {
		return reason
	}
	if s.Player(s.Context.Player).GeneralStock.Total() == 0 {
		return "General Stock is empty"
	}
	return ""
}

// displaceExtraCost is the surcharge for evicting a piece: one token for
// a tradesman, two for a merchant, paid to the general stock.
func displaceExtraCost(evicted Token) int {
	if evicted.Merch {
		return 2
	}
	return 1
}

func validateDisplace(s *GameState, params ActionParams) string {
	if reason := validateMainBudget(s); reason != "" {
		return reason
	}
	post := s.Post(params.Route, params.Post)
	if post == nil {
		return "Trading Post is Empty"
	}
	if post.Owner == s.Context.Player {
		return "You cannot displace your own token"
	}
	p := s.Player(s.Context.Player)
	if params.Merch && p.PersonalSupply.Merchants == 0 {
		return "No merchant available in your Personal Supply"
	}
	if !params.Merch && p.PersonalSupply.Tradesmen == 0 {
		return "No tradesman available in your Personal Supply"
	}
	if p.PersonalSupply.Total() < 1+displaceExtraCost(*post) {
		return "Not enough tokens in your Personal Supply to displace"
	}
	return ""
}

func validateRoute(s *GameState, params ActionParams) string {
	if reason := validateMainBudget(s); reason != "" {
		return reason
	}
	r := s.Route(params.Route)
	if !r.Complete() {
		return "Route is not complete"
	}
	for _, post := range r.Posts {
		if post.Owner != s.Context.Player {
			return "Route is not yours"
		}
	}
	return ""
}

func hasMarker(markers []MarkerKind, kind MarkerKind) bool {
	for _, m := range markers {
		if m == kind {
			return true
		}
	}
	return false
}

func validateMarkerUse(s *GameState, params ActionParams, inRoute bool) string {
	if inRoute && params.Kind != MarkerOffice {
		return "You can't perform that action now"
	}
	if params.Kind == MarkerExtraOffice {
		return "That marker is used when completing a route"
	}
	if !hasMarker(s.Player(s.Context.Player).ReadyMarkers, params.Kind) {
		return "Marker is not ready"
	}
	return ""
}

func validateMoveCollect(s *GameState, params ActionParams) string {
	post := s.Post(params.Route, params.Post)
	if post == nil {
		return "Trading Post is Empty"
	}
	if post.Owner != s.Context.Player && !CanMoveOpponentMarkers(s) {
		return "Trading Post is not Yours"
	}
	if collectedCount(s.Context) >= AvailableActionsCount(s) {
		return "No moves remaining"
	}
	return ""
}

func validateMovePlace(s *GameState, params ActionParams) string {
	if len(s.Context.Hand) == 0 {
		return "No tokens in hand"
	}
	if s.Post(params.Route, params.Post) != nil {
		return "Trading Post is Taken"
	}
	return ""
}

// adjacentEmptyPostExists reports whether any route adjacent to origin
// has a free trading post.
func adjacentEmptyPostExists(s *GameState, origin int) bool {
	for i, r := range s.Routes {
		if i == origin || !s.Board.RoutesAdjacent(origin, i) {
			continue
		}
		for _, post := range r.Posts {
			if post == nil {
				return true
			}
		}
	}
	return false
}

func validateDisplacePlace(s *GameState, params ActionParams) string {
	ctx := s.Context
	if s.Post(params.Route, params.Post) != nil {
		return "Trading Post is Taken"
	}
	origin := ctx.Actions[0].Params.Route
	if params.Route == origin {
		return "Must place on a route adjacent to the displacement"
	}
	// When every adjacent route is full the token may go anywhere empty.
	if !s.Board.RoutesAdjacent(origin, params.Route) && adjacentEmptyPostExists(s, origin) {
		return "Must place on a route adjacent to the displacement"
	}
	return ""
}

// markerPlacableRouteExists reports whether any route can take a drawn
// bonus marker: no marker yet and no tokens on its posts.
func markerPlacableRouteExists(s *GameState) bool {
	for _, r := range s.Routes {
		if markerPlacableOnRoute(r) {
			return true
		}
	}
	return false
}

func markerPlacableOnRoute(r *RouteState) bool {
	if r.Marker != "" {
		return false
	}
	for _, post := range r.Posts {
		if post != nil {
			return false
		}
	}
	return true
}

func validateMarkerPlace(s *GameState, params ActionParams) string {
	r := s.Route(params.Route)
	if r.Marker != "" {
		return "Route already has a bonus marker"
	}
	if !markerPlacableOnRoute(r) {
		return "Route must be empty"
	}
	return ""
}

func validateMarkerOffice(s *GameState, params ActionParams) string {
	ctx := routeContext(s)
	if ctx == nil || len(ctx.Actions) == 0 {
		// Marker activated outside a route completion; the executor
		// raises the documented empty-hand fault.
		return ""
	}
	route := ctx.Actions[0].Params.Route
	for _, city := range ValidOfficeMarkerLocationsForRoute(s, route) {
		if city == params.City {
			return ""
		}
	}
	return "City does not qualify for an office marker"
}

func validateMarkerUpgrade(s *GameState, params ActionParams) string {
	max := MaxStatLevel(params.Stat)
	if max == 0 {
		return "Unknown upgrade track"
	}
	if s.Player(s.Context.Player).StatLevel(params.Stat) >= max {
		return "Track is already at its maximum"
	}
	return ""
}
