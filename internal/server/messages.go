package server

import "github.com/summitfall/summit-server/internal/game"

// clientCommand is the type-tagged envelope clients send. Only the fields of
// the tagged command are populated.
type clientCommand struct {
	Type string `json:"type"`

	// create_game
	Players []playerSpec `json:"players,omitempty"`
	Levels  int          `json:"levels,omitempty"`

	// play_card, move, end_turn, state
	GameID   string `json:"game_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	CardID   string `json:"card_id,omitempty"`

	// move
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`
	Z int `json:"z,omitempty"`
}

// playerSpec names a participant and the saved deck they bring.
type playerSpec struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Deck    string `json:"deck"`
}

// serverMessage is the type-tagged envelope sent back to clients.
type serverMessage struct {
	Type    string         `json:"type"`
	GameID  string         `json:"game_id,omitempty"`
	Players []string       `json:"players,omitempty"`
	State   *game.Snapshot `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
}

const (
	msgTypeCreated = "created"
	msgTypeOK      = "ok"
	msgTypeState   = "state"
	msgTypeError   = "error"
)
