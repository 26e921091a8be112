package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hansagames/hansa-server-go/internal/game"
)

// ErrNotFound is returned when a game id has no stored snapshot.
var ErrNotFound = errors.New("game not found")

// GameRepository stores one serialized snapshot per game, together with
// its checksum. Saves overwrite: the store keeps only the latest
// committed state, which is all the last-writer-wins model needs.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository wraps a connection pool.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Init creates the games table when it does not exist yet.
func (r *GameRepository) Init(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			turn       INTEGER NOT NULL,
			is_over    BOOLEAN NOT NULL,
			checksum   TEXT NOT NULL,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	return nil
}

// Save writes the snapshot of a committed state.
func (r *GameRepository) Save(ctx context.Context, s *game.GameState) error {
	data, err := game.MarshalState(s)
	if err != nil {
		return err
	}
	sum := game.ComputeChecksum(s)
	_, err = r.pool.Exec(ctx, `
		INSERT INTO games (id, turn, is_over, checksum, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET turn = EXCLUDED.turn,
		    is_over = EXCLUDED.is_over,
		    checksum = EXCLUDED.checksum,
		    state = EXCLUDED.state,
		    updated_at = now()`,
		s.ID, s.Turn, s.IsOver, sum.Hash, data)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", s.ID, err)
	}
	return nil
}

// Load restores a game snapshot and verifies its checksum.
func (r *GameRepository) Load(ctx context.Context, id string) (*game.GameState, error) {
	var data []byte
	var storedHash string
	err := r.pool.QueryRow(ctx,
		`SELECT state, checksum FROM games WHERE id = $1`, id).Scan(&data, &storedHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	s, err := game.UnmarshalState(data)
	if err != nil {
		return nil, err
	}
	if !game.VerifyChecksum(s, game.StateChecksum{Hash: storedHash}) {
		return nil, fmt.Errorf("stored state of game %s fails checksum verification", id)
	}
	return s, nil
}

// ListOpen returns the ids of games that have not finished.
func (r *GameRepository) ListOpen(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM games WHERE NOT is_over ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
