// Package server hosts live matches and the websocket gateway that relays
// client commands into the rules engine.
package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summitfall/summit-server/internal/game"
	"github.com/summitfall/summit-server/internal/game/board"
)

// match pairs a game aggregate with the lock that serializes access to it.
// One engine call completes before the next begins; clients never observe
// partial mutation.
type match struct {
	mu    sync.Mutex
	state *game.GameState
}

// Manager tracks live games by id and owns the shared effect engine.
type Manager struct {
	mu      sync.RWMutex
	matches map[uuid.UUID]*match
	engine  *game.Engine
	logger  *zap.Logger
}

// NewManager creates a game manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		matches: make(map[uuid.UUID]*match),
		engine:  game.NewEngine(logger),
		logger:  logger,
	}
}

// CreateGame starts a match between two players on a mountain of the given
// height and returns the new game id.
func (m *Manager) CreateGame(levels int, p1, p2 *game.Player) uuid.UUID {
	gs := game.NewGameStateOn(levels, p1, p2)

	m.mu.Lock()
	m.matches[gs.GameID] = &match{state: gs}
	m.mu.Unlock()

	m.logger.Info("game created",
		zap.Stringer("game_id", gs.GameID),
		zap.String("player1", p1.Name),
		zap.String("player2", p2.Name),
		zap.Int("levels", levels),
	)
	return gs.GameID
}

// AdoptGame registers an existing game state, e.g. one restored from the
// repository.
func (m *Manager) AdoptGame(gs *game.GameState) {
	m.mu.Lock()
	m.matches[gs.GameID] = &match{state: gs}
	m.mu.Unlock()
}

// RemoveGame drops a live game.
func (m *Manager) RemoveGame(gameID uuid.UUID) {
	m.mu.Lock()
	delete(m.matches, gameID)
	m.mu.Unlock()
}

func (m *Manager) lookup(gameID uuid.UUID) (*match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.matches[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
	}
	return mt, nil
}

// withGame runs fn with the match lock held.
func (m *Manager) withGame(gameID uuid.UUID, fn func(gs *game.GameState) error) error {
	mt, err := m.lookup(gameID)
	if err != nil {
		return err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	return fn(mt.state)
}

// PlayCard removes the named card from the player's hand, applies its effects
// in order through the engine, and records the play against the per-turn
// counters. The first failing effect aborts the activation and propagates.
func (m *Manager) PlayCard(gameID, playerID, cardID uuid.UUID) error {
	return m.withGame(gameID, func(gs *game.GameState) error {
		player, ok := gs.Player(playerID)
		if !ok {
			return fmt.Errorf("play card for %s: %w", playerID, game.ErrPlayerNotFound)
		}

		idx := -1
		for i := range player.Hand {
			if player.Hand[i].ID == cardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("card %s not in hand of %s: %w", cardID, player.Name, game.ErrInvalidTarget)
		}

		card := player.Hand[idx]
		player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)

		for _, effect := range card.Effects {
			if err := m.engine.Apply(gs, effect, playerID); err != nil {
				return err
			}
		}

		player.RecordCardPlayed(card.Cost)
		return nil
	})
}

// ApplyEffect applies a single effect from a source player. This is the raw
// engine entry point, used by trap triggers and tests.
func (m *Manager) ApplyEffect(gameID uuid.UUID, effect game.Effect, source uuid.UUID) error {
	return m.withGame(gameID, func(gs *game.GameState) error {
		return m.engine.Apply(gs, effect, source)
	})
}

// MovePlayer relays a validated board move.
func (m *Manager) MovePlayer(gameID, playerID uuid.UUID, pos board.Position) error {
	return m.withGame(gameID, func(gs *game.GameState) error {
		return gs.MovePlayer(playerID, pos)
	})
}

// EndTurn advances the turn to the next player.
func (m *Manager) EndTurn(gameID uuid.UUID) error {
	return m.withGame(gameID, func(gs *game.GameState) error {
		gs.AdvanceTurn()
		return nil
	})
}

// Snapshot captures the current state of a live game.
func (m *Manager) Snapshot(gameID uuid.UUID) (*game.Snapshot, error) {
	var snap *game.Snapshot
	err := m.withGame(gameID, func(gs *game.GameState) error {
		snap = game.TakeSnapshot(gs)
		return nil
	})
	return snap, err
}
