package game

import (
	"fmt"

	"github.com/google/uuid"
)

// EffectKind identifies an effect variant. Active-effect bookkeeping on
// players is keyed by kind, so conditional targeting can ask "is a heal
// effect active on this player" without holding the full effect.
type EffectKind string

const (
	EffectDamage EffectKind = "DAMAGE"
	EffectHeal   EffectKind = "HEAL"
	EffectDraw   EffectKind = "DRAW"
	EffectBoost  EffectKind = "BOOST"
	EffectBuff   EffectKind = "BUFF"
)

// Effect is one action a card performs when played. Effects are immutable
// templates; applying one mutates game state, never the template.
type Effect interface {
	Kind() EffectKind
	// TargetSpec is the declarative rule for who the effect hits.
	TargetSpec() Target
}

// ScalingKind selects the metric a scaled value grows with.
type ScalingKind int

const (
	// ScaleMountainLevel scales with the board's level count.
	ScaleMountainLevel ScalingKind = iota
	// ScaleCardsInHand scales with the target's hand size.
	ScaleCardsInHand
	// ScaleCardsPlayed scales with the target's cards-played-this-turn counter.
	ScaleCardsPlayed
	// ScaleManaSpent scales with the target's mana-spent-this-turn counter.
	ScaleManaSpent
)

// Scaling multiplies a game metric into an effect value.
type Scaling struct {
	Kind   ScalingKind
	Factor float64
}

// Value is a base amount plus an optional scaled component. The scaled
// component is computed in floating point and truncated toward zero when
// added to the base.
type Value struct {
	Base    int
	Scaling *Scaling
}

// Fixed is a convenience constructor for an unscaled value.
func Fixed(base int) Value {
	return Value{Base: base}
}

// Scaled builds a value with a scaling component.
func Scaled(base int, kind ScalingKind, factor float64) Value {
	return Value{Base: base, Scaling: &Scaling{Kind: kind, Factor: factor}}
}

// BoostStat selects which stat list a boost lands on.
type BoostStat int

const (
	BoostPower BoostStat = iota
	BoostHealth
	BoostBoth
)

// DamageEffect reduces target health, saturating at zero.
//
// Penetrating is carried for forward compatibility with shield mechanics and
// is currently not read by the applier.
type DamageEffect struct {
	Value       Value
	Target      Target
	Penetrating bool
}

func (e DamageEffect) Kind() EffectKind   { return EffectDamage }
func (e DamageEffect) TargetSpec() Target { return e.Target }

// HealEffect raises target health, clamped to the effective maximum unless
// OverHeal is set.
type HealEffect struct {
	Value    Value
	Target   Target
	OverHeal bool
}

func (e HealEffect) Kind() EffectKind   { return EffectHeal }
func (e HealEffect) TargetSpec() Target { return e.Target }

// DrawEffect moves cards from the target's deck to their hand. With a filter
// each draw takes the first matching deck card; without one it takes the
// deck front.
type DrawEffect struct {
	Cards  int
	Target Target
	Filter DrawFilter
}

func (e DrawEffect) Kind() EffectKind   { return EffectDraw }
func (e DrawEffect) TargetSpec() Target { return e.Target }

// BoostEffect pushes a timed additive modifier onto the target's power list,
// health list, or both.
type BoostEffect struct {
	Value    Value
	Target   Target
	Stat     BoostStat
	Duration Duration
}

func (e BoostEffect) Kind() EffectKind   { return EffectBoost }
func (e BoostEffect) TargetSpec() Target { return e.Target }

// BuffEffect is a combined power+health modifier. Only strictly positive
// components are applied; a negative debuff component is dropped.
type BuffEffect struct {
	Power    int
	Health   int
	Target   Target
	Duration Duration
}

func (e BuffEffect) Kind() EffectKind   { return EffectBuff }
func (e BuffEffect) TargetSpec() Target { return e.Target }

// Target is the declarative rule describing which players an effect affects.
// Resolution against a game state happens in ResolveTargets.
type Target interface {
	targetSpec()
}

// TargetSelf hits the effect's source.
type TargetSelf struct{}

// TargetSpecific hits one player by identity. The identity is not validated
// at resolution time; application surfaces ErrPlayerNotFound.
type TargetSpecific struct {
	ID uuid.UUID
}

// TargetMultiple hits a set of players. Order is unspecified.
type TargetMultiple struct {
	IDs map[uuid.UUID]struct{}
}

// TargetAllPlayers hits the listed players verbatim.
type TargetAllPlayers struct {
	IDs []uuid.UUID
}

// TargetRandom hits Count distinct players sampled from the full roster.
type TargetRandom struct {
	Count int
}

// TargetAdjacent hits every player standing on one of the six tiles
// neighboring the source's position.
type TargetAdjacent struct{}

// TargetArea hits every player within Radius hex distance of the center
// player's position, center included.
type TargetArea struct {
	Center uuid.UUID
	Radius int
}

// TargetConditional hits players matching a condition, truncated to
// MaxTargets when positive. Truncation keeps roster iteration order.
type TargetConditional struct {
	Condition  Condition
	MaxTargets int // 0 means no limit
}

func (TargetSelf) targetSpec()        {}
func (TargetSpecific) targetSpec()    {}
func (TargetMultiple) targetSpec()    {}
func (TargetAllPlayers) targetSpec()  {}
func (TargetRandom) targetSpec()      {}
func (TargetAdjacent) targetSpec()    {}
func (TargetArea) targetSpec()        {}
func (TargetConditional) targetSpec() {}

// Condition is a targeting predicate evaluated per player.
type Condition interface {
	Matches(p *Player) bool
}

// PowerAbove matches players whose effective power exceeds the threshold.
type PowerAbove struct {
	Threshold int
}

func (c PowerAbove) Matches(p *Player) bool { return p.Power() > c.Threshold }

// PowerBelow matches players whose effective power is under the threshold.
type PowerBelow struct {
	Threshold int
}

func (c PowerBelow) Matches(p *Player) bool { return p.Power() < c.Threshold }

// HasEffect matches players with an active effect of the given kind.
type HasEffect struct {
	Kind EffectKind
}

func (c HasEffect) Matches(p *Player) bool { return p.HasEffect(c.Kind) }

// HoldsRarity matches players holding at least one card of the given rarity
// or better.
type HoldsRarity struct {
	Rarity Rarity
}

func (c HoldsRarity) Matches(p *Player) bool {
	for i := range p.Hand {
		if p.Hand[i].Rarity >= c.Rarity {
			return true
		}
	}
	return false
}

func (k ScalingKind) String() string {
	switch k {
	case ScaleMountainLevel:
		return "MOUNTAIN_LEVEL"
	case ScaleCardsInHand:
		return "CARDS_IN_HAND"
	case ScaleCardsPlayed:
		return "CARDS_PLAYED"
	case ScaleManaSpent:
		return "MANA_SPENT"
	default:
		return fmt.Sprintf("SCALING_%d", int(k))
	}
}
