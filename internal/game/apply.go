package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine applies card effects to a game state. It is the sole mutation entry
// point for effects; movement goes through GameState.MovePlayer.
//
// Application is synchronous and fail-fast: targets are resolved up front,
// then mutated one by one, and the first per-target failure aborts the whole
// application and propagates to the caller.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an effect engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Apply resolves the effect's targets against the game state and mutates each
// in order. The engine never retries and never swallows a failure; partial
// mutation before a failing target is visible to the caller, as the aggregate
// is single-owner for the duration of the call.
func (e *Engine) Apply(gs *GameState, effect Effect, source uuid.UUID) error {
	targets, err := ResolveTargets(effect.TargetSpec(), gs, source)
	if err != nil {
		return err
	}

	e.logger.Debug("applying effect",
		zap.String("kind", string(effect.Kind())),
		zap.Stringer("source", source),
		zap.Int("targets", len(targets)),
	)

	for _, target := range targets {
		if err := e.applyOne(gs, effect, target); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyOne(gs *GameState, effect Effect, target uuid.UUID) error {
	switch eff := effect.(type) {
	case DamageEffect:
		return applyDamage(gs, target, eff.Value)
	case HealEffect:
		return applyHeal(gs, target, eff.Value, eff.OverHeal)
	case DrawEffect:
		return applyDraw(gs, target, eff.Cards, eff.Filter)
	case BoostEffect:
		return applyBoost(gs, target, eff)
	case BuffEffect:
		return applyBuff(gs, target, eff)
	default:
		return fmt.Errorf("unknown effect %T: %w", effect, ErrInvalidTarget)
	}
}

// calculateValue computes base + trunc(factor * metric). The scaled component
// is computed in floating point and truncated toward zero. A missing target
// contributes zero for the hand/played/spent metrics instead of failing.
func calculateValue(value Value, gs *GameState, target uuid.UUID) int {
	if value.Scaling == nil {
		return value.Base
	}

	var metric float64
	switch value.Scaling.Kind {
	case ScaleMountainLevel:
		metric = float64(gs.Mountain.Levels())
	case ScaleCardsInHand:
		if p, ok := gs.Player(target); ok {
			metric = float64(len(p.Hand))
		}
	case ScaleCardsPlayed:
		if p, ok := gs.Player(target); ok {
			metric = float64(p.CardsPlayedThisTurn)
		}
	case ScaleManaSpent:
		if p, ok := gs.Player(target); ok {
			metric = float64(p.ManaSpentThisTurn)
		}
	}

	return value.Base + int(value.Scaling.Factor*metric)
}

// applyDamage reduces target health by the scaled amount, saturating at zero.
// The penetrating flag on DamageEffect is intentionally not consulted: shield
// mechanics are not part of this engine yet.
func applyDamage(gs *GameState, target uuid.UUID, value Value) error {
	damage := calculateValue(value, gs, target)

	player, ok := gs.Player(target)
	if !ok {
		return fmt.Errorf("damage target %s: %w", target, ErrPlayerNotFound)
	}
	if damage == 0 {
		return nil
	}

	player.Health -= damage
	if player.Health < 0 {
		player.Health = 0
	}
	return nil
}

func applyHeal(gs *GameState, target uuid.UUID, value Value, overHeal bool) error {
	heal := calculateValue(value, gs, target)

	player, ok := gs.Player(target)
	if !ok {
		return fmt.Errorf("heal target %s: %w", target, ErrPlayerNotFound)
	}
	if heal == 0 {
		return nil
	}

	player.Health += heal
	if !overHeal {
		if maxHealth := player.EffectiveMaxHealth(); player.Health > maxHealth {
			player.Health = maxHealth
		}
	}
	return nil
}

func applyDraw(gs *GameState, target uuid.UUID, cards int, filter DrawFilter) error {
	player, ok := gs.Player(target)
	if !ok {
		return fmt.Errorf("draw target %s: %w", target, ErrPlayerNotFound)
	}

	for i := 0; i < cards; i++ {
		if filter != nil {
			if err := player.DrawFiltered(filter); err != nil {
				return err
			}
			continue
		}
		if err := player.DrawCard(); err != nil {
			return err
		}
	}
	return nil
}

func applyBoost(gs *GameState, target uuid.UUID, effect BoostEffect) error {
	amount := calculateValue(effect.Value, gs, target)

	player, ok := gs.Player(target)
	if !ok {
		return fmt.Errorf("boost target %s: %w", target, ErrPlayerNotFound)
	}

	switch effect.Stat {
	case BoostPower:
		player.AddPowerBoost(amount, effect.Duration)
	case BoostHealth:
		player.AddHealthBoost(amount, effect.Duration)
	case BoostBoth:
		player.AddPowerBoost(amount, effect.Duration)
		player.AddHealthBoost(amount, effect.Duration)
	}
	return nil
}

func applyBuff(gs *GameState, target uuid.UUID, effect BuffEffect) error {
	player, ok := gs.Player(target)
	if !ok {
		return fmt.Errorf("buff target %s: %w", target, ErrPlayerNotFound)
	}

	player.AddBuff(effect.Power, effect.Health, effect.Duration)
	return nil
}
