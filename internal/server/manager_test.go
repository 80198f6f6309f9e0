package server

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/summitfall/summit-server/internal/game"
	"github.com/summitfall/summit-server/internal/game/board"
)

func testMatch(t *testing.T) (*Manager, uuid.UUID, *game.Player, *game.Player) {
	t.Helper()
	m := NewManager(zaptest.NewLogger(t))
	p1 := game.NewPlayer("Alice", game.Deck{})
	p2 := game.NewPlayer("Bob", game.Deck{})
	gameID := m.CreateGame(game.DefaultMountainLevels, p1, p2)
	return m, gameID, p1, p2
}

func TestCreateAndSnapshot(t *testing.T) {
	m, gameID, p1, p2 := testMatch(t)

	snap, err := m.Snapshot(gameID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.GameID != gameID {
		t.Errorf("snapshot game id = %s, want %s", snap.GameID, gameID)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("snapshot has %d players, want 2", len(snap.Players))
	}
	if snap.Players[0].ID != p1.ID || snap.Players[1].ID != p2.ID {
		t.Errorf("snapshot players out of join order")
	}
}

func TestSnapshotUnknownGame(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	if _, err := m.Snapshot(uuid.New()); !errors.Is(err, game.ErrGameNotFound) {
		t.Fatalf("err = %v, want game.ErrGameNotFound", err)
	}
}

func TestRemoveGame(t *testing.T) {
	m, gameID, _, _ := testMatch(t)
	m.RemoveGame(gameID)
	if err := m.EndTurn(gameID); !errors.Is(err, game.ErrGameNotFound) {
		t.Fatalf("err after remove = %v, want game.ErrGameNotFound", err)
	}
}

func TestPlayCardAppliesEffects(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	p1 := game.NewPlayer("Alice", game.Deck{})
	p2 := game.NewPlayer("Bob", game.Deck{})

	card := game.Card{
		ID:     uuid.New(),
		Name:   "Rockfall",
		Cost:   2,
		Rarity: game.RarityCommon,
		Type:   game.CardTypeSpell,
		Effects: []game.Effect{
			game.DamageEffect{Value: game.Fixed(5), Target: game.TargetSpecific{ID: p2.ID}},
		},
	}
	p1.Hand = append(p1.Hand, card)
	p1.Mana = 4

	gameID := m.CreateGame(game.DefaultMountainLevels, p1, p2)

	if err := m.PlayCard(gameID, p1.ID, card.ID); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if p2.Health != game.DefaultStartingHealth-5 {
		t.Errorf("target health = %d, want %d", p2.Health, game.DefaultStartingHealth-5)
	}
	if len(p1.Hand) != 0 {
		t.Errorf("card not removed from hand, %d cards remain", len(p1.Hand))
	}
	if p1.CardsPlayedThisTurn != 1 {
		t.Errorf("CardsPlayedThisTurn = %d, want 1", p1.CardsPlayedThisTurn)
	}
	if p1.Mana != 2 {
		t.Errorf("mana = %d, want 2 after paying cost", p1.Mana)
	}
}

func TestPlayCardNotInHand(t *testing.T) {
	m, gameID, p1, _ := testMatch(t)
	err := m.PlayCard(gameID, p1.ID, uuid.New())
	if !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("err = %v, want game.ErrInvalidTarget", err)
	}
}

func TestPlayCardUnknownPlayer(t *testing.T) {
	m, gameID, _, _ := testMatch(t)
	err := m.PlayCard(gameID, uuid.New(), uuid.New())
	if !errors.Is(err, game.ErrPlayerNotFound) {
		t.Fatalf("err = %v, want game.ErrPlayerNotFound", err)
	}
}

func TestPlayCardFailingEffectLeavesCounters(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	p1 := game.NewPlayer("Alice", game.Deck{})
	p2 := game.NewPlayer("Bob", game.Deck{})

	card := game.Card{
		ID:     uuid.New(),
		Name:   "Misfire",
		Cost:   1,
		Rarity: game.RarityCommon,
		Type:   game.CardTypeSpell,
		Effects: []game.Effect{
			game.DamageEffect{Value: game.Fixed(3), Target: game.TargetSpecific{ID: uuid.New()}},
		},
	}
	p1.Hand = append(p1.Hand, card)

	gameID := m.CreateGame(game.DefaultMountainLevels, p1, p2)

	if err := m.PlayCard(gameID, p1.ID, card.ID); err == nil {
		t.Fatal("expected error for effect against missing target")
	}
	if p1.CardsPlayedThisTurn != 0 {
		t.Errorf("failed play must not count, CardsPlayedThisTurn = %d", p1.CardsPlayedThisTurn)
	}
}

func TestApplyEffectDirect(t *testing.T) {
	m, gameID, p1, p2 := testMatch(t)

	effect := game.HealEffect{Value: game.Fixed(5), Target: game.TargetSpecific{ID: p2.ID}}
	p2.Health = 20
	if err := m.ApplyEffect(gameID, effect, p1.ID); err != nil {
		t.Fatalf("ApplyEffect: %v", err)
	}
	if p2.Health != 25 {
		t.Errorf("health = %d, want 25", p2.Health)
	}
}

func TestMovePlayerThroughManager(t *testing.T) {
	m, gameID, p1, _ := testMatch(t)

	if err := m.MovePlayer(gameID, p1.ID, board.At(1, 0, 0)); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}
	if p1.Position != board.At(1, 0, 0) {
		t.Errorf("position = %+v", p1.Position)
	}

	if err := m.MovePlayer(gameID, p1.ID, board.At(3, 3, 0)); !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("err = %v, want game.ErrInvalidMove", err)
	}
}

func TestEndTurnRotates(t *testing.T) {
	m, gameID, _, p2 := testMatch(t)

	if err := m.EndTurn(gameID); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	snap, err := m.Snapshot(gameID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ActivePlayer != p2.ID {
		t.Errorf("active player = %s, want %s", snap.ActivePlayer, p2.ID)
	}
	if snap.TurnNumber != 2 {
		t.Errorf("turn = %d, want 2", snap.TurnNumber)
	}
}

func TestAdoptGame(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	gs := game.NewGameState(game.NewPlayer("Alice", game.Deck{}), game.NewPlayer("Bob", game.Deck{}))
	m.AdoptGame(gs)

	snap, err := m.Snapshot(gs.GameID)
	if err != nil {
		t.Fatalf("Snapshot after adopt: %v", err)
	}
	if snap.GameID != gs.GameID {
		t.Errorf("adopted game id mismatch")
	}
}
