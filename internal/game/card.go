package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Rarity orders cards from Common to Legendary. The numeric order is
// meaningful: conditional targeting compares rarities with >=.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityLegendary
)

var rarityNames = map[Rarity]string{
	RarityCommon:    "COMMON",
	RarityUncommon:  "UNCOMMON",
	RarityRare:      "RARE",
	RarityLegendary: "LEGENDARY",
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RARITY_%d", int(r))
}

// CardType classifies what a card is.
type CardType string

const (
	CardTypeClimber CardType = "CLIMBER"
	CardTypeSpell   CardType = "SPELL"
	CardTypeWeapon  CardType = "WEAPON"
	CardTypeTrap    CardType = "TRAP"
	CardTypeGear    CardType = "GEAR"
)

// Card is an immutable template. Playing a card applies its effects to game
// state; the card itself is never mutated.
type Card struct {
	ID      uuid.UUID
	Name    string
	Cost    int
	Power   int
	Rarity  Rarity
	Type    CardType
	Effects []Effect
}

// Deck is an ordered pile of cards; the front of Cards is the next draw.
type Deck struct {
	OwnerID uuid.UUID
	Cards   []Card
}

// CostOp selects the comparison a cost draw filter performs.
type CostOp int

const (
	CostEqual CostOp = iota
	CostBelow
	CostAbove
)

// DrawFilter narrows a draw to the first matching card in the deck.
type DrawFilter interface {
	Matches(card *Card) bool
}

// CostFilter matches cards by mana cost.
type CostFilter struct {
	Op   CostOp
	Cost int
}

func (f CostFilter) Matches(card *Card) bool {
	switch f.Op {
	case CostEqual:
		return card.Cost == f.Cost
	case CostBelow:
		return card.Cost < f.Cost
	case CostAbove:
		return card.Cost > f.Cost
	default:
		return false
	}
}

// TypeFilter matches cards of one card type.
type TypeFilter struct {
	Type CardType
}

func (f TypeFilter) Matches(card *Card) bool {
	return card.Type == f.Type
}

// RarityFilter matches cards of exactly one rarity.
type RarityFilter struct {
	Rarity Rarity
}

func (f RarityFilter) Matches(card *Card) bool {
	return card.Rarity == f.Rarity
}
