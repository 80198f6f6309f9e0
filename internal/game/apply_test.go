package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(zaptest.NewLogger(t))
}

func TestApplyDamageSpecificTarget(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	effect := DamageEffect{
		Value:  Fixed(5),
		Target: TargetSpecific{ID: p2.ID},
	}

	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p2.Health != 25 {
		t.Errorf("expected target at 25 health, got %d", p2.Health)
	}
	if p1.Health != 30 {
		t.Errorf("expected source untouched at 30 health, got %d", p1.Health)
	}
}

func TestApplyDamageSaturates(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	p2.Health = 3

	effect := DamageEffect{Value: Fixed(10), Target: TargetSpecific{ID: p2.ID}}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p2.Health != 0 {
		t.Errorf("expected health saturated at 0, got %d", p2.Health)
	}
}

func TestApplyDamageMissingTarget(t *testing.T) {
	gs, p1, _ := testGame(t)
	engine := testEngine(t)

	effect := DamageEffect{Value: Fixed(5), Target: TargetSpecific{ID: uuid.New()}}
	err := engine.Apply(gs, effect, p1.ID)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

// TestApplyDamagePenetratingIsInert pins that the penetrating flag changes
// nothing until shield mechanics exist.
func TestApplyDamagePenetratingIsInert(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	plain := DamageEffect{Value: Fixed(4), Target: TargetSpecific{ID: p2.ID}}
	piercing := DamageEffect{Value: Fixed(4), Target: TargetSpecific{ID: p2.ID}, Penetrating: true}

	if err := engine.Apply(gs, plain, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afterPlain := p2.Health

	if err := engine.Apply(gs, piercing, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if afterPlain-p2.Health != 4 {
		t.Errorf("expected penetrating damage identical to plain, delta %d", afterPlain-p2.Health)
	}
}

func TestApplyHealClampsToEffectiveMax(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	p2.Health = 28

	effect := HealEffect{Value: Fixed(10), Target: TargetSpecific{ID: p2.ID}}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p2.Health != 30 {
		t.Errorf("expected heal clamped to 30, got %d", p2.Health)
	}
}

func TestApplyHealClampsToBoostedMax(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	p2.Health = 28
	p2.AddHealthBoost(5, Temporary(3))

	effect := HealEffect{Value: Fixed(10), Target: TargetSpecific{ID: p2.ID}}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p2.Health != 35 {
		t.Errorf("expected heal clamped to boosted max 35, got %d", p2.Health)
	}
}

func TestApplyOverHealExceedsMax(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	effect := HealEffect{Value: Fixed(10), Target: TargetSpecific{ID: p2.ID}, OverHeal: true}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p2.Health != 40 {
		t.Errorf("expected over-heal to 40, got %d", p2.Health)
	}
}

func TestApplyHealZeroIsNoop(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	p2.Health = 12

	effect := HealEffect{Value: Fixed(0), Target: TargetSpecific{ID: p2.ID}}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("expected zero heal to succeed, got %v", err)
	}
	if p2.Health != 12 {
		t.Errorf("expected health unchanged, got %d", p2.Health)
	}
}

func TestApplyDrawMovesDeckFrontToHandEnd(t *testing.T) {
	gs, p1, _ := testGame(t)
	engine := testEngine(t)

	front := testCard("Front", 1, 1, RarityCommon, CardTypeSpell)
	back := testCard("Back", 1, 1, RarityCommon, CardTypeSpell)
	p1.Deck.Cards = []Card{front, back}
	p1.Hand = []Card{testCard("Held", 1, 1, RarityCommon, CardTypeGear)}

	effect := DrawEffect{Cards: 1, Target: TargetSelf{}}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p1.Hand) != 2 || p1.Hand[1].ID != front.ID {
		t.Error("expected deck front appended to hand end")
	}
	if len(p1.Deck.Cards) != 1 || p1.Deck.Cards[0].ID != back.ID {
		t.Error("expected back card to remain in deck")
	}
}

func TestApplyDrawEmptyDeck(t *testing.T) {
	gs, p1, _ := testGame(t)
	engine := testEngine(t)

	effect := DrawEffect{Cards: 1, Target: TargetSelf{}}
	err := engine.Apply(gs, effect, p1.ID)
	if !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("expected ErrEmptyDeck, got %v", err)
	}
}

func TestApplyDrawFilteredNoMatch(t *testing.T) {
	gs, p1, _ := testGame(t)
	engine := testEngine(t)
	p1.Deck.Cards = []Card{testCard("Plain", 1, 1, RarityCommon, CardTypeSpell)}

	effect := DrawEffect{Cards: 1, Target: TargetSelf{}, Filter: RarityFilter{Rarity: RarityRare}}
	err := engine.Apply(gs, effect, p1.ID)
	if !errors.Is(err, ErrNoValidCard) {
		t.Fatalf("expected ErrNoValidCard, got %v", err)
	}
}

func TestApplyBoostBothStats(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	effect := BoostEffect{
		Value:    Fixed(4),
		Target:   TargetSpecific{ID: p2.ID},
		Stat:     BoostBoth,
		Duration: Temporary(2),
	}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p2.PowerBoosts) != 1 || p2.PowerBoosts[0].Amount != 4 {
		t.Error("expected power boost of 4")
	}
	if len(p2.HealthBoosts) != 1 || p2.HealthBoosts[0].Amount != 4 {
		t.Error("expected health boost of 4")
	}
	if p2.EffectiveMaxHealth() != 34 {
		t.Errorf("expected effective max 34, got %d", p2.EffectiveMaxHealth())
	}
}

func TestApplyBuffDropsNegative(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	effect := BuffEffect{
		Power:    -2,
		Health:   3,
		Target:   TargetSpecific{ID: p2.ID},
		Duration: Permanent(),
	}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p2.PowerBoosts) != 0 {
		t.Error("expected negative power component dropped")
	}
	if len(p2.HealthBoosts) != 1 || p2.HealthBoosts[0].Amount != 3 {
		t.Error("expected positive health component applied")
	}
}

func TestApplyFailFastAcrossTargets(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	ghost := uuid.New()

	// Second target does not exist; the failure must propagate, not be
	// swallowed after the first target succeeded.
	effect := DamageEffect{
		Value:  Fixed(5),
		Target: TargetAllPlayers{IDs: []uuid.UUID{p2.ID, ghost, p1.ID}},
	}
	err := engine.Apply(gs, effect, p1.ID)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	// Fail-fast: the first target was mutated, the one after the failure
	// was not.
	if p2.Health != 25 {
		t.Errorf("expected first target damaged to 25, got %d", p2.Health)
	}
	if p1.Health != 30 {
		t.Errorf("expected target after failure untouched, got %d", p1.Health)
	}
}

func TestCalculateValueMountainLevel(t *testing.T) {
	gs, p1, _ := testGame(t)

	value := Scaled(2, ScaleMountainLevel, 0.5)
	// 2 + trunc(0.5 * 7) = 5
	if got := calculateValue(value, gs, p1.ID); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestCalculateValueCardsInHand(t *testing.T) {
	gs, p1, _ := testGame(t)
	p1.Hand = []Card{
		testCard("A", 1, 1, RarityCommon, CardTypeSpell),
		testCard("B", 1, 1, RarityCommon, CardTypeSpell),
		testCard("C", 1, 1, RarityCommon, CardTypeSpell),
	}

	value := Scaled(1, ScaleCardsInHand, 1.5)
	// 1 + trunc(1.5 * 3) = 5
	if got := calculateValue(value, gs, p1.ID); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestCalculateValueCountersAndMissingTarget(t *testing.T) {
	gs, p1, _ := testGame(t)
	p1.CardsPlayedThisTurn = 2
	p1.ManaSpentThisTurn = 6

	if got := calculateValue(Scaled(0, ScaleCardsPlayed, 2), gs, p1.ID); got != 4 {
		t.Errorf("expected 4 from cards played, got %d", got)
	}
	if got := calculateValue(Scaled(0, ScaleManaSpent, 0.5), gs, p1.ID); got != 3 {
		t.Errorf("expected 3 from mana spent, got %d", got)
	}

	// Missing target contributes zero scaling rather than failing.
	if got := calculateValue(Scaled(7, ScaleCardsInHand, 2), gs, uuid.New()); got != 7 {
		t.Errorf("expected base only for missing target, got %d", got)
	}
}

func TestApplyScaledDamage(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)
	p2.Hand = []Card{
		testCard("A", 1, 1, RarityCommon, CardTypeSpell),
		testCard("B", 1, 1, RarityCommon, CardTypeSpell),
	}

	effect := DamageEffect{
		Value:  Scaled(1, ScaleCardsInHand, 1),
		Target: TargetSpecific{ID: p2.ID},
	}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 + 2 cards in the target's hand = 3 damage.
	if p2.Health != 27 {
		t.Errorf("expected 27 health, got %d", p2.Health)
	}
}

func TestApplyAreaEffectHitsEveryoneInRange(t *testing.T) {
	gs, p1, p2 := testGame(t)
	engine := testEngine(t)

	// Both players sit on the same tile; radius 0 covers them both.
	effect := DamageEffect{
		Value:  Fixed(2),
		Target: TargetArea{Center: p1.ID, Radius: 0},
	}
	if err := engine.Apply(gs, effect, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p1.Health != 28 || p2.Health != 28 {
		t.Errorf("expected both players at 28, got %d/%d", p1.Health, p2.Health)
	}
}
