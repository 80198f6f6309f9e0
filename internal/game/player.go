package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/summitfall/summit-server/internal/game/board"
)

// DefaultStartingHealth is the health a freshly created player climbs with.
const DefaultStartingHealth = 30

// StatBoost is a timed additive modifier to power or health.
type StatBoost struct {
	Amount   int
	Duration Duration
}

// ActiveEffect records that an effect kind is in force on a player. It feeds
// effect-presence queries only; it carries no further arithmetic.
type ActiveEffect struct {
	Kind     EffectKind
	Duration Duration
}

// Player is one combatant's mutable state. Position is a value resolved
// against the mountain lazily; players never hold tile references.
type Player struct {
	ID       uuid.UUID
	Name     string
	Health   int
	Hand     []Card
	Deck     Deck
	Mana     int
	Position board.Position

	// MaxHealth is the base maximum; health boosts raise the effective max.
	MaxHealth int

	PowerBoosts   []StatBoost
	HealthBoosts  []StatBoost
	ActiveEffects []ActiveEffect

	CardsPlayedThisTurn int
	ManaSpentThisTurn   int
}

// NewPlayer creates a player with default combat stats and the given deck.
func NewPlayer(name string, deck Deck) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Health:    DefaultStartingHealth,
		MaxHealth: DefaultStartingHealth,
		Deck:      deck,
	}
}

// Power is the sum of hand card power and all active power boosts.
func (p *Player) Power() int {
	power := 0
	for i := range p.Hand {
		power += p.Hand[i].Power
	}
	for _, boost := range p.PowerBoosts {
		power += boost.Amount
	}
	return power
}

// EffectiveMaxHealth is the base maximum plus all active health boosts.
func (p *Player) EffectiveMaxHealth() int {
	maxHealth := p.MaxHealth
	for _, boost := range p.HealthBoosts {
		maxHealth += boost.Amount
	}
	return maxHealth
}

// HasEffect reports whether an effect of the given kind is active.
func (p *Player) HasEffect(kind EffectKind) bool {
	for _, active := range p.ActiveEffects {
		if active.Kind == kind {
			return true
		}
	}
	return false
}

// DrawCard moves the deck's front card to the end of the hand.
func (p *Player) DrawCard() error {
	if len(p.Deck.Cards) == 0 {
		return fmt.Errorf("player %s: %w", p.Name, ErrEmptyDeck)
	}
	card := p.Deck.Cards[0]
	p.Deck.Cards = p.Deck.Cards[1:]
	p.Hand = append(p.Hand, card)
	return nil
}

// DrawFiltered removes the first deck card matching the filter and appends it
// to the hand.
func (p *Player) DrawFiltered(filter DrawFilter) error {
	for i := range p.Deck.Cards {
		if filter.Matches(&p.Deck.Cards[i]) {
			card := p.Deck.Cards[i]
			p.Deck.Cards = append(p.Deck.Cards[:i], p.Deck.Cards[i+1:]...)
			p.Hand = append(p.Hand, card)
			return nil
		}
	}
	return fmt.Errorf("player %s: %w", p.Name, ErrNoValidCard)
}

// AddPowerBoost pushes a timed power modifier.
func (p *Player) AddPowerBoost(amount int, duration Duration) {
	p.PowerBoosts = append(p.PowerBoosts, StatBoost{Amount: amount, Duration: duration})
}

// AddHealthBoost pushes a timed health modifier and re-clamps current health
// to the new effective max. Clamping can only lower or keep current health.
func (p *Player) AddHealthBoost(amount int, duration Duration) {
	p.HealthBoosts = append(p.HealthBoosts, StatBoost{Amount: amount, Duration: duration})
	if maxHealth := p.EffectiveMaxHealth(); p.Health > maxHealth {
		p.Health = maxHealth
	}
}

// AddBuff applies a combined power+health modifier. Only strictly positive
// components take effect; negative components are dropped.
func (p *Player) AddBuff(power, health int, duration Duration) {
	if power > 0 {
		p.AddPowerBoost(power, duration)
	}
	if health > 0 {
		p.AddHealthBoost(health, duration)
	}
}

// AddActiveEffect records an effect kind as active for presence queries.
func (p *Player) AddActiveEffect(kind EffectKind, duration Duration) {
	p.ActiveEffects = append(p.ActiveEffects, ActiveEffect{Kind: kind, Duration: duration})
}

// RecordCardPlayed bumps the per-turn counters that scaled effect values
// read. Mana is spent from the pool, saturating at zero.
func (p *Player) RecordCardPlayed(cost int) {
	p.CardsPlayedThisTurn++
	p.ManaSpentThisTurn += cost
	p.Mana -= cost
	if p.Mana < 0 {
		p.Mana = 0
	}
}

// BeginTurn resets the per-turn counters and advances every modifier list
// through one expiry step.
//
// Expiry is retain-then-decrement: entries already at Temporary(0) are
// dropped first, then every remaining temporary entry ticks down, saturating
// at zero. A Temporary(1) modifier therefore survives this advance at zero
// turns and is dropped on the next one.
func (p *Player) BeginTurn() {
	p.CardsPlayedThisTurn = 0
	p.ManaSpentThisTurn = 0

	p.PowerBoosts = tickBoosts(p.PowerBoosts)
	p.HealthBoosts = tickBoosts(p.HealthBoosts)
	p.ActiveEffects = tickActiveEffects(p.ActiveEffects)
}

func tickBoosts(boosts []StatBoost) []StatBoost {
	kept := boosts[:0]
	for _, boost := range boosts {
		if boost.Duration.expired() {
			continue
		}
		boost.Duration = boost.Duration.tick()
		kept = append(kept, boost)
	}
	return kept
}

func tickActiveEffects(active []ActiveEffect) []ActiveEffect {
	kept := active[:0]
	for _, effect := range active {
		if effect.Duration.expired() {
			continue
		}
		effect.Duration = effect.Duration.tick()
		kept = append(kept, effect)
	}
	return kept
}
