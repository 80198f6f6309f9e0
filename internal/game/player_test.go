package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func testCard(name string, cost, power int, rarity Rarity, cardType CardType) Card {
	return Card{
		ID:     uuid.New(),
		Name:   name,
		Cost:   cost,
		Power:  power,
		Rarity: rarity,
		Type:   cardType,
	}
}

func TestDrawCard(t *testing.T) {
	card := testCard("Ice Axe", 1, 1, RarityCommon, CardTypeGear)
	player := NewPlayer("Tester", Deck{Cards: []Card{card}})

	if err := player.DrawCard(); err != nil {
		t.Fatalf("unexpected draw error: %v", err)
	}

	if len(player.Hand) != 1 {
		t.Errorf("expected 1 card in hand, got %d", len(player.Hand))
	}
	if len(player.Deck.Cards) != 0 {
		t.Errorf("expected empty deck, got %d cards", len(player.Deck.Cards))
	}
	if player.Hand[0].ID != card.ID {
		t.Error("expected drawn card to be the deck front")
	}
}

func TestDrawCardEmptyDeck(t *testing.T) {
	player := NewPlayer("Tester", Deck{})

	err := player.DrawCard()
	if !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("expected ErrEmptyDeck, got %v", err)
	}
	if len(player.Hand) != 0 {
		t.Errorf("expected empty hand after failed draw, got %d cards", len(player.Hand))
	}
}

func TestDrawOrderIsDeckOrder(t *testing.T) {
	first := testCard("First", 1, 1, RarityCommon, CardTypeSpell)
	second := testCard("Second", 2, 2, RarityCommon, CardTypeSpell)
	player := NewPlayer("Tester", Deck{Cards: []Card{first, second}})

	player.DrawCard()
	player.DrawCard()

	if player.Hand[0].ID != first.ID || player.Hand[1].ID != second.ID {
		t.Error("expected hand order to follow deck order")
	}
}

func TestDrawFiltered(t *testing.T) {
	cheap := testCard("Cheap", 1, 1, RarityCommon, CardTypeSpell)
	costly := testCard("Costly", 5, 5, RarityRare, CardTypeWeapon)
	player := NewPlayer("Tester", Deck{Cards: []Card{cheap, costly}})

	if err := player.DrawFiltered(TypeFilter{Type: CardTypeWeapon}); err != nil {
		t.Fatalf("unexpected filtered draw error: %v", err)
	}

	if len(player.Hand) != 1 || player.Hand[0].ID != costly.ID {
		t.Error("expected filtered draw to pick the weapon")
	}
	if len(player.Deck.Cards) != 1 || player.Deck.Cards[0].ID != cheap.ID {
		t.Error("expected the other card to stay in the deck")
	}
}

func TestDrawFilteredNoMatch(t *testing.T) {
	cheap := testCard("Cheap", 1, 1, RarityCommon, CardTypeSpell)
	player := NewPlayer("Tester", Deck{Cards: []Card{cheap}})

	err := player.DrawFiltered(RarityFilter{Rarity: RarityLegendary})
	if !errors.Is(err, ErrNoValidCard) {
		t.Fatalf("expected ErrNoValidCard, got %v", err)
	}
	if len(player.Deck.Cards) != 1 {
		t.Error("expected deck untouched after failed filtered draw")
	}
}

func TestDrawFilteredByCost(t *testing.T) {
	cards := []Card{
		testCard("One", 1, 1, RarityCommon, CardTypeSpell),
		testCard("Three", 3, 1, RarityCommon, CardTypeSpell),
		testCard("Five", 5, 1, RarityCommon, CardTypeSpell),
	}
	player := NewPlayer("Tester", Deck{Cards: cards})

	if err := player.DrawFiltered(CostFilter{Op: CostAbove, Cost: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.Hand[0].Name != "Three" {
		t.Errorf("expected first matching card Three, got %s", player.Hand[0].Name)
	}

	if err := player.DrawFiltered(CostFilter{Op: CostEqual, Cost: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.Hand[1].Name != "Five" {
		t.Errorf("expected Five, got %s", player.Hand[1].Name)
	}

	if err := player.DrawFiltered(CostFilter{Op: CostBelow, Cost: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.Hand[2].Name != "One" {
		t.Errorf("expected One, got %s", player.Hand[2].Name)
	}
}

func TestPowerSumsHandAndBoosts(t *testing.T) {
	player := NewPlayer("Tester", Deck{})
	player.Hand = []Card{
		testCard("A", 1, 3, RarityCommon, CardTypeClimber),
		testCard("B", 1, 4, RarityCommon, CardTypeClimber),
	}
	player.AddPowerBoost(5, Permanent())

	if got := player.Power(); got != 12 {
		t.Errorf("expected power 12, got %d", got)
	}
}

func TestEffectiveMaxHealth(t *testing.T) {
	player := NewPlayer("Tester", Deck{})

	if got := player.EffectiveMaxHealth(); got != DefaultStartingHealth {
		t.Errorf("expected base max %d, got %d", DefaultStartingHealth, got)
	}

	player.AddHealthBoost(10, Temporary(2))
	if got := player.EffectiveMaxHealth(); got != DefaultStartingHealth+10 {
		t.Errorf("expected boosted max %d, got %d", DefaultStartingHealth+10, got)
	}
}

func TestHealthBoostReclampsDownward(t *testing.T) {
	player := NewPlayer("Tester", Deck{})
	player.Health = 40 // over-healed earlier

	player.AddHealthBoost(5, Permanent())

	if player.Health != 35 {
		t.Errorf("expected health clamped to 35, got %d", player.Health)
	}

	// A boost never raises current health.
	player.Health = 10
	player.AddHealthBoost(5, Permanent())
	if player.Health != 10 {
		t.Errorf("expected health unchanged at 10, got %d", player.Health)
	}
}

func TestAddBuffDropsNegativeComponents(t *testing.T) {
	player := NewPlayer("Tester", Deck{})

	player.AddBuff(-3, 4, Permanent())

	if len(player.PowerBoosts) != 0 {
		t.Error("expected negative power component to be dropped")
	}
	if len(player.HealthBoosts) != 1 {
		t.Error("expected positive health component to apply")
	}

	player.AddBuff(2, -1, Permanent())
	if len(player.PowerBoosts) != 1 {
		t.Error("expected positive power component to apply")
	}
	if len(player.HealthBoosts) != 1 {
		t.Error("expected negative health component to be dropped")
	}
}

func TestHasEffect(t *testing.T) {
	player := NewPlayer("Tester", Deck{})

	if player.HasEffect(EffectHeal) {
		t.Error("expected no active effects on a new player")
	}

	player.AddActiveEffect(EffectHeal, Temporary(1))
	if !player.HasEffect(EffectHeal) {
		t.Error("expected heal effect to be active")
	}
	if player.HasEffect(EffectDamage) {
		t.Error("expected damage effect to be absent")
	}
}

// TestTemporaryBoostLifecycle pins the retain-then-decrement ordering: a
// one-turn boost is still present after the advance that zeroes it and is
// removed on the advance after that.
func TestTemporaryBoostLifecycle(t *testing.T) {
	player := NewPlayer("Tester", Deck{})
	player.AddPowerBoost(3, Temporary(1))

	player.BeginTurn()
	if len(player.PowerBoosts) != 1 {
		t.Fatalf("expected boost to survive the first advance, got %d boosts", len(player.PowerBoosts))
	}
	if player.PowerBoosts[0].Duration.Turns != 0 {
		t.Errorf("expected boost at 0 turns after first advance, got %d", player.PowerBoosts[0].Duration.Turns)
	}

	player.BeginTurn()
	if len(player.PowerBoosts) != 0 {
		t.Errorf("expected boost removed on the second advance, got %d boosts", len(player.PowerBoosts))
	}
}

func TestPermanentAndLevelBoostsSurviveTurns(t *testing.T) {
	player := NewPlayer("Tester", Deck{})
	player.AddPowerBoost(1, Permanent())
	player.AddPowerBoost(2, UntilMountainLevel(5))
	player.AddActiveEffect(EffectBuff, Permanent())

	for i := 0; i < 10; i++ {
		player.BeginTurn()
	}

	if len(player.PowerBoosts) != 2 {
		t.Errorf("expected both boosts to persist, got %d", len(player.PowerBoosts))
	}
	if !player.HasEffect(EffectBuff) {
		t.Error("expected permanent active effect to persist")
	}
}

func TestBeginTurnResetsCounters(t *testing.T) {
	player := NewPlayer("Tester", Deck{})
	player.RecordCardPlayed(3)
	player.RecordCardPlayed(2)

	if player.CardsPlayedThisTurn != 2 || player.ManaSpentThisTurn != 5 {
		t.Fatalf("expected counters 2/5, got %d/%d", player.CardsPlayedThisTurn, player.ManaSpentThisTurn)
	}

	player.BeginTurn()

	if player.CardsPlayedThisTurn != 0 || player.ManaSpentThisTurn != 0 {
		t.Errorf("expected counters reset, got %d/%d", player.CardsPlayedThisTurn, player.ManaSpentThisTurn)
	}
}
