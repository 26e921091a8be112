package game

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Engine hosts game instances and serializes access to each of them. The
// rules core itself (ValidateAction / ExecuteAction) holds no state
// between calls; the engine supplies the snapshot-before-execute
// discipline the core's contract demands and arbitrates concurrent
// callers so that at most one mutation per game is in flight.
type Engine struct {
	logger *zap.Logger
	mu     sync.RWMutex
	games  map[string]*GameState
}

// NewEngine creates an engine with no games.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger,
		games:  make(map[string]*GameState),
	}
}

// CreateGame sets up a new game on the default board and registers it.
func (e *Engine) CreateGame(names []string) (*GameState, error) {
	return e.CreateGameOnBoard(DefaultBoard(), names)
}

// CreateGameOnBoard sets up a new game on a custom board.
func (e *Engine) CreateGameOnBoard(board *BoardSpec, names []string) (*GameState, error) {
	s, err := NewGame(board, names)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.games[s.ID] = s
	e.mu.Unlock()
	e.logger.Info("game created",
		zap.String("game_id", s.ID),
		zap.Int("players", len(s.Players)),
	)
	return s, nil
}

// Restore registers a previously serialized game, replacing any loaded
// copy with the same ID.
func (e *Engine) Restore(s *GameState) {
	e.mu.Lock()
	e.games[s.ID] = s
	e.mu.Unlock()
	e.logger.Info("game restored", zap.String("game_id", s.ID), zap.Int("turn", s.Turn))
}

// Game is the introspection accessor: it returns the live state of a
// game for read-only inspection. Callers must not mutate it.
func (e *Engine) Game(id string) (*GameState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.games[id]
	return s, ok
}

// GameIDs lists the registered games.
func (e *Engine) GameIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	return ids
}

// Validate checks an action for a seat without mutating anything.
// It returns "" when the action would be accepted.
func (e *Engine) Validate(gameID string, seat int, name ActionName, params ActionParams) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.games[gameID]
	if !ok {
		return "", fmt.Errorf("unknown game %q", gameID)
	}
	if s.Context.Player != seat {
		return "It's not your turn", nil
	}
	return ValidateAction(name, s, params), nil
}

// Execute validates and applies one action. The mutation runs against a
// snapshot; the authoritative state is swapped only on success, so a
// hard fault leaves the game exactly as it was. A non-empty reason means
// the action was refused by the rules and nothing changed.
func (e *Engine) Execute(gameID string, seat int, name ActionName, params ActionParams) (st *GameState, reason string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.games[gameID]
	if !ok {
		return nil, "", fmt.Errorf("unknown game %q", gameID)
	}
	if s.Context.Player != seat {
		return nil, "It's not your turn", nil
	}
	if reason := ValidateAction(name, s, params); reason != "" {
		return nil, reason, nil
	}

	working, err := CloneState(s)
	if err != nil {
		return nil, "", fmt.Errorf("failed to snapshot game %q: %w", gameID, err)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action faulted",
				zap.String("game_id", gameID),
				zap.String("action", string(name)),
				zap.Any("fault", r),
			)
			st, reason = nil, ""
			err = fmt.Errorf("action %q faulted: %v", name, r)
		}
	}()

	next := ExecuteAction(name, working, params)
	working.Context = next
	e.games[gameID] = working

	e.logger.Info("action executed",
		zap.String("game_id", gameID),
		zap.String("action", string(name)),
		zap.Int("seat", seat),
		zap.String("phase", next.Phase.String()),
		zap.Bool("game_over", working.IsOver),
	)
	return working, "", nil
}
