package game

import "fmt"

// Phase identifies the step of the (possibly nested) action protocol the
// game is currently waiting in.
type Phase int

const (
	PhaseActions Phase = iota
	PhaseCollection
	PhaseMovement
	PhaseDisplacement
	PhaseRoute
	PhaseMarkers
	PhaseUpgrade
	PhaseSwap
	PhaseOffice
)

var phaseNames = map[Phase]string{
	PhaseActions:      "ACTIONS",
	PhaseCollection:   "COLLECTION",
	PhaseMovement:     "MOVEMENT",
	PhaseDisplacement: "DISPLACEMENT",
	PhaseRoute:        "ROUTE",
	PhaseMarkers:      "MARKERS",
	PhaseUpgrade:      "UPGRADE",
	PhaseSwap:         "SWAP",
	PhaseOffice:       "OFFICE",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// MarkerKind enumerates the bonus marker abilities.
type MarkerKind string

const (
	MarkerMove3       MarkerKind = "Move 3"
	MarkerSwap        MarkerKind = "Swap"
	MarkerOffice      MarkerKind = "Office"
	MarkerUpgrade     MarkerKind = "Upgrade"
	MarkerExtraOffice MarkerKind = "Extra Office"
)

// ActionName tags a requested action. The meaningful fields of
// ActionParams are determined by the tag.
type ActionName string

const (
	// Actions phase
	ActionPlace     ActionName = "place"
	ActionIncome    ActionName = "income"
	ActionMove      ActionName = "move"
	ActionDisplace  ActionName = "displace"
	ActionRoute     ActionName = "route"
	ActionMarkerUse ActionName = "marker-use"
	ActionDone      ActionName = "done"

	// Collection / Movement
	ActionMoveCollect ActionName = "move-collect"
	ActionMovePlace   ActionName = "move-place"

	// Displacement
	ActionDisplacePlace ActionName = "displace-place"

	// Route rewards
	ActionRouteOffice  ActionName = "route-office"
	ActionRouteUpgrade ActionName = "route-upgrade"
	ActionRouteCoellen ActionName = "route-coellen"
	ActionRouteDone    ActionName = "route-done"
	ActionMarkerExtra  ActionName = "marker-extra"

	// Turn-end marker placement
	ActionMarkerPlace ActionName = "marker-place"
	ActionMarkerDefer ActionName = "marker-defer"

	// Single-shot marker follow-ups
	ActionMarkerSwap    ActionName = "marker-swap"
	ActionMarkerOffice  ActionName = "marker-office"
	ActionMarkerUpgrade ActionName = "marker-upgrade"

	// actionMarkerClaim and actionMarkerDraw are recorded automatically
	// (route yields its marker; turn end draws a replacement from the
	// pool); they are never requested by a caller.
	actionMarkerClaim ActionName = "marker-claim"
	actionMarkerDraw  ActionName = "marker-draw"
)

// ActionParams carries the payload of an action request. Which fields are
// read depends on the ActionName; unread fields are ignored.
type ActionParams struct {
	Route   int        `json:"route,omitempty"`
	Post    int        `json:"post,omitempty"`
	City    string     `json:"city,omitempty"`
	Office1 int        `json:"office1,omitempty"`
	Office2 int        `json:"office2,omitempty"`
	Merch   bool       `json:"merch,omitempty"`
	Kind    MarkerKind `json:"kind,omitempty"`
	Stat    Stat       `json:"stat,omitempty"`
	Slot    int        `json:"slot,omitempty"`
	Count   int        `json:"count,omitempty"`
}

// ActionRecord is one executed sub-action in a context's history.
type ActionRecord struct {
	Name   ActionName   `json:"name"`
	Params ActionParams `json:"params"`
}

// Reward is one selectable follow-up offered by a phase (route rewards,
// swap pairs). Executing the bound action resolves the phase.
type Reward struct {
	Title  string       `json:"title"`
	Action ActionName   `json:"action"`
	Params ActionParams `json:"params"`
}

// PhaseContext is one frame of the phase stack. Frames are linked through
// Prev; the chain terminates at the root Actions frame of the current
// turn. Frames are popped by returning Prev, never by rewriting Prev.
type PhaseContext struct {
	Phase   Phase          `json:"phase"`
	Player  int            `json:"player"`
	Actions []ActionRecord `json:"actions"`
	Hand    []Token        `json:"hand"`
	Prev    *PhaseContext  `json:"prev,omitempty"`
	Rewards []Reward       `json:"rewards,omitempty"`
	EndGame bool           `json:"end_game,omitempty"`
}

// record appends an executed sub-action to the context history.
func (c *PhaseContext) record(name ActionName, params ActionParams) {
	c.Actions = append(c.Actions, ActionRecord{Name: name, Params: params})
}

// lastAction returns the most recent record, nil for an empty history.
func (c *PhaseContext) lastAction() *ActionRecord {
	if len(c.Actions) == 0 {
		return nil
	}
	return &c.Actions[len(c.Actions)-1]
}

// root walks the Prev chain to the turn's root Actions frame.
func (c *PhaseContext) root() *PhaseContext {
	for c.Prev != nil {
		c = c.Prev
	}
	return c
}

// hasReward reports whether the context offers a reward bound to the
// given action and parameters.
func (c *PhaseContext) hasReward(name ActionName, params ActionParams) bool {
	for _, r := range c.Rewards {
		if r.Action == name && r.Params == params {
			return true
		}
	}
	return false
}
