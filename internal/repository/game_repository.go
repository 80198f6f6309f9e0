package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/summitfall/summit-server/internal/game"
)

// GameRepository stores game snapshots.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS games (
//	    id         UUID PRIMARY KEY,
//	    snapshot   JSONB NOT NULL,
//	    checksum   TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type GameRepository struct {
	db *DB
}

// NewGameRepository creates a game repository on the shared pool.
func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

// Save upserts a snapshot of the game state, keyed by game id. The checksum
// is stored alongside so a load can detect corruption.
func (r *GameRepository) Save(ctx context.Context, gs *game.GameState) error {
	snap := game.TakeSnapshot(gs)

	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", gs.GameID, err)
	}
	checksum, err := snap.Checksum()
	if err != nil {
		return fmt.Errorf("failed to checksum game %s: %w", gs.GameID, err)
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO games (id, snapshot, checksum, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot,
		    checksum = EXCLUDED.checksum,
		    updated_at = now()`,
		gs.GameID, data, checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", gs.GameID, err)
	}
	return nil
}

// Load restores a game state by id and verifies the stored checksum against
// the decoded snapshot.
func (r *GameRepository) Load(ctx context.Context, gameID uuid.UUID) (*game.GameState, error) {
	var data []byte
	var storedChecksum string

	err := r.db.Pool().QueryRow(ctx,
		`SELECT snapshot, checksum FROM games WHERE id = $1`, gameID,
	).Scan(&data, &storedChecksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	snap, err := game.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", gameID, err)
	}

	checksum, err := snap.Checksum()
	if err != nil {
		return nil, fmt.Errorf("failed to checksum game %s: %w", gameID, err)
	}
	if checksum != storedChecksum {
		return nil, fmt.Errorf("game %s snapshot checksum mismatch", gameID)
	}

	return snap.Restore()
}

// Delete removes a stored game.
func (r *GameRepository) Delete(ctx context.Context, gameID uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
	}
	return nil
}
