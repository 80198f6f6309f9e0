package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/summitfall/summit-server/internal/game/board"
)

// DefaultMountainLevels is the board height used when the caller does not
// configure one.
const DefaultMountainLevels = 7

// GameState is the aggregate a match is played on: the mountain plus every
// player, keyed by identity. One apply or move call must complete before the
// next begins; the aggregate has a single owner and no internal locking.
type GameState struct {
	GameID       uuid.UUID
	Mountain     *board.Mountain
	ActivePlayer uuid.UUID
	TurnNumber   int

	players map[uuid.UUID]*Player
	// order preserves join order so roster scans are stable even though the
	// player map is not.
	order []uuid.UUID
}

// NewGameState starts a two-player match on a default-height mountain.
// Player one opens.
func NewGameState(p1, p2 *Player) *GameState {
	gs := &GameState{
		GameID:       uuid.New(),
		Mountain:     board.New(DefaultMountainLevels),
		ActivePlayer: p1.ID,
		TurnNumber:   1,
		players:      make(map[uuid.UUID]*Player),
	}
	gs.AddPlayer(p1)
	gs.AddPlayer(p2)
	return gs
}

// NewGameStateOn starts a match on a mountain of the given height.
func NewGameStateOn(levels int, p1, p2 *Player) *GameState {
	gs := NewGameState(p1, p2)
	gs.Mountain = board.New(levels)
	return gs
}

// AddPlayer registers a player with the aggregate. Re-adding an existing
// identity replaces the player in place, keeping roster order.
func (gs *GameState) AddPlayer(p *Player) {
	if _, exists := gs.players[p.ID]; !exists {
		gs.order = append(gs.order, p.ID)
	}
	gs.players[p.ID] = p
}

// Player looks up a player by identity.
func (gs *GameState) Player(id uuid.UUID) (*Player, bool) {
	p, ok := gs.players[id]
	return p, ok
}

// PlayerIDs returns the roster in join order.
func (gs *GameState) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(gs.order))
	copy(ids, gs.order)
	return ids
}

// PlayerCount reports the roster size.
func (gs *GameState) PlayerCount() int {
	return len(gs.players)
}

// MovePlayer relocates a player after validating the step against the board.
func (gs *GameState) MovePlayer(playerID uuid.UUID, newPosition board.Position) error {
	player, ok := gs.players[playerID]
	if !ok {
		return fmt.Errorf("move player %s: %w", playerID, ErrPlayerNotFound)
	}

	if !gs.Mountain.IsValidMove(player.Position, newPosition) {
		return fmt.Errorf("move player %s to %s: %w", playerID, newPosition, ErrInvalidMove)
	}

	player.Position = newPosition
	return nil
}

// AdvanceTurn passes the turn to the next player in roster order, bumps the
// turn counter, and runs the incoming player's begin-of-turn upkeep (counter
// resets and modifier expiry).
func (gs *GameState) AdvanceTurn() {
	if len(gs.order) == 0 {
		return
	}

	next := 0
	for i, id := range gs.order {
		if id == gs.ActivePlayer {
			next = (i + 1) % len(gs.order)
			break
		}
	}
	gs.ActivePlayer = gs.order[next]
	gs.TurnNumber++

	if player, ok := gs.players[gs.ActivePlayer]; ok {
		player.BeginTurn()
	}
}
