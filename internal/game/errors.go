package game

import "errors"

// The engine's failure modes form a closed set. Callers match with errors.Is;
// wrapping adds context without breaking the match.
var (
	// ErrPlayerNotFound - a referenced identity is absent from the game.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrInvalidMove - the position delta is not a unit hex step, or an
	// endpoint tile does not exist.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidTarget - a targeting strategy cannot produce the requested
	// number of recipients.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrEmptyDeck - an unconditional draw with no cards remaining.
	ErrEmptyDeck = errors.New("deck is empty")

	// ErrNoValidCard - a filtered draw matched no card in the deck.
	ErrNoValidCard = errors.New("no card matches draw filter")

	// ErrDeckInvalid is raised by deck validation in the collection layer,
	// never by the engine itself.
	ErrDeckInvalid = errors.New("deck is invalid")

	// ErrGameNotFound is raised by the session layer, never by the engine
	// itself.
	ErrGameNotFound = errors.New("game not found")
)
