// Package collection tracks each owner's card pool and named decks, and
// hands ready decks to the match layer.
package collection

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summitfall/summit-server/internal/game"
)

// DeckSource supplies decks keyed by owner identity. The match layer depends
// on this interface, not on the manager.
type DeckSource interface {
	DeckFor(ownerID uuid.UUID, name string) (game.Deck, error)
}

// Collection is one owner's card pool plus their saved decks.
type Collection struct {
	OwnerID uuid.UUID
	Cards   map[uuid.UUID]struct{}
	Decks   map[string]game.Deck
}

// NewCollection creates an empty collection for an owner.
func NewCollection(ownerID uuid.UUID) *Collection {
	return &Collection{
		OwnerID: ownerID,
		Cards:   make(map[uuid.UUID]struct{}),
		Decks:   make(map[string]game.Deck),
	}
}

// MinDeckSize is the smallest deck a match accepts.
const MinDeckSize = 1

// Manager owns all collections for the process.
type Manager struct {
	mu          sync.RWMutex
	collections map[uuid.UUID]*Collection
	logger      *zap.Logger
}

// NewManager creates a collection manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		collections: make(map[uuid.UUID]*Collection),
		logger:      logger,
	}
}

// Collection returns the owner's collection, creating it on first use.
func (m *Manager) Collection(ownerID uuid.UUID) *Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[ownerID]
	if !ok {
		coll = NewCollection(ownerID)
		m.collections[ownerID] = coll
		m.logger.Debug("created collection", zap.Stringer("owner", ownerID))
	}
	return coll
}

// AddCard records a card as owned.
func (m *Manager) AddCard(ownerID, cardID uuid.UUID) {
	coll := m.Collection(ownerID)

	m.mu.Lock()
	defer m.mu.Unlock()
	coll.Cards[cardID] = struct{}{}
}

// SaveDeck validates and stores a named deck. Every card in the deck must be
// in the owner's pool.
func (m *Manager) SaveDeck(ownerID uuid.UUID, name string, deck game.Deck) error {
	if len(deck.Cards) < MinDeckSize {
		return fmt.Errorf("deck %q has %d cards, need at least %d: %w",
			name, len(deck.Cards), MinDeckSize, game.ErrDeckInvalid)
	}

	coll := m.Collection(ownerID)

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range deck.Cards {
		if _, owned := coll.Cards[deck.Cards[i].ID]; !owned {
			return fmt.Errorf("deck %q contains unowned card %s: %w",
				name, deck.Cards[i].ID, game.ErrDeckInvalid)
		}
	}

	deck.OwnerID = ownerID
	coll.Decks[name] = deck
	m.logger.Info("deck saved",
		zap.Stringer("owner", ownerID),
		zap.String("deck", name),
		zap.Int("cards", len(deck.Cards)),
	)
	return nil
}

// DeckFor returns a copy of the owner's named deck, so match play cannot
// mutate the stored deck.
func (m *Manager) DeckFor(ownerID uuid.UUID, name string) (game.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[ownerID]
	if !ok {
		return game.Deck{}, fmt.Errorf("owner %s has no collection: %w", ownerID, game.ErrDeckInvalid)
	}
	deck, ok := coll.Decks[name]
	if !ok {
		return game.Deck{}, fmt.Errorf("owner %s has no deck %q: %w", ownerID, name, game.ErrDeckInvalid)
	}

	copied := game.Deck{OwnerID: deck.OwnerID, Cards: make([]game.Card, len(deck.Cards))}
	copy(copied.Cards, deck.Cards)
	return copied, nil
}
