package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/summitfall/summit-server/internal/game/board"
)

// snapshotVersion guards the persisted encoding for forward compatibility.
const snapshotVersion = 1

// Snapshot is the persistable form of a GameState. Interfaces in the effect
// grammar are flattened into kind-tagged records so the snapshot survives a
// JSON round trip.
type Snapshot struct {
	Version      int              `json:"version"`
	GameID       uuid.UUID        `json:"game_id"`
	ActivePlayer uuid.UUID        `json:"active_player"`
	TurnNumber   int              `json:"turn_number"`
	Levels       int              `json:"levels"`
	Tiles        []TileSnapshot   `json:"tiles,omitempty"`
	Players      []PlayerSnapshot `json:"players"`
}

// TileSnapshot records a non-empty tile; empty tiles are implied by Levels.
type TileSnapshot struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Z    int       `json:"z"`
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// PlayerSnapshot is a player's full mutable state in join order.
type PlayerSnapshot struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Health        int                    `json:"health"`
	MaxHealth     int                    `json:"max_health"`
	Mana          int                    `json:"mana"`
	Position      PositionSnapshot       `json:"position"`
	Hand          []CardSnapshot         `json:"hand,omitempty"`
	Deck          []CardSnapshot         `json:"deck,omitempty"`
	PowerBoosts   []BoostSnapshot        `json:"power_boosts,omitempty"`
	HealthBoosts  []BoostSnapshot        `json:"health_boosts,omitempty"`
	ActiveEffects []ActiveEffectSnapshot `json:"active_effects,omitempty"`
	CardsPlayed   int                    `json:"cards_played_this_turn"`
	ManaSpent     int                    `json:"mana_spent_this_turn"`
}

type PositionSnapshot struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Z     int `json:"z"`
	Level int `json:"level"`
}

type CardSnapshot struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Cost    int              `json:"cost"`
	Power   int              `json:"power"`
	Rarity  Rarity           `json:"rarity"`
	Type    CardType         `json:"type"`
	Effects []EffectSnapshot `json:"effects,omitempty"`
}

type BoostSnapshot struct {
	Amount   int              `json:"amount"`
	Duration DurationSnapshot `json:"duration"`
}

type ActiveEffectSnapshot struct {
	Kind     EffectKind       `json:"kind"`
	Duration DurationSnapshot `json:"duration"`
}

type DurationSnapshot struct {
	Kind  DurationKind `json:"kind"`
	Turns int          `json:"turns,omitempty"`
	Level int          `json:"level,omitempty"`
}

// EffectSnapshot flattens the Effect union. Only the fields of the tagged
// variant are populated.
type EffectSnapshot struct {
	Kind        EffectKind        `json:"kind"`
	Value       *ValueSnapshot    `json:"value,omitempty"`
	Target      TargetSnapshot    `json:"target"`
	Penetrating bool              `json:"penetrating,omitempty"`
	OverHeal    bool              `json:"over_heal,omitempty"`
	Cards       int               `json:"cards,omitempty"`
	Filter      *FilterSnapshot   `json:"filter,omitempty"`
	Stat        BoostStat         `json:"stat,omitempty"`
	Power       int               `json:"power,omitempty"`
	Health      int               `json:"health,omitempty"`
	Duration    *DurationSnapshot `json:"duration,omitempty"`
}

type ValueSnapshot struct {
	Base    int         `json:"base"`
	Scaled  bool        `json:"scaled,omitempty"`
	Scaling ScalingKind `json:"scaling,omitempty"`
	Factor  float64     `json:"factor,omitempty"`
}

type TargetSnapshot struct {
	Kind       string             `json:"kind"`
	ID         uuid.UUID          `json:"id,omitempty"`
	IDs        []uuid.UUID        `json:"ids,omitempty"`
	Count      int                `json:"count,omitempty"`
	Center     uuid.UUID          `json:"center,omitempty"`
	Radius     int                `json:"radius,omitempty"`
	Condition  *ConditionSnapshot `json:"condition,omitempty"`
	MaxTargets int                `json:"max_targets,omitempty"`
}

type ConditionSnapshot struct {
	Kind       string     `json:"kind"`
	Threshold  int        `json:"threshold,omitempty"`
	EffectKind EffectKind `json:"effect_kind,omitempty"`
	Rarity     Rarity     `json:"rarity,omitempty"`
}

type FilterSnapshot struct {
	Kind     string   `json:"kind"`
	Op       CostOp   `json:"op,omitempty"`
	Cost     int      `json:"cost,omitempty"`
	CardType CardType `json:"card_type,omitempty"`
	Rarity   Rarity   `json:"rarity,omitempty"`
}

// Target kind tags used in snapshots.
const (
	targetTagSelf        = "SELF"
	targetTagSpecific    = "SPECIFIC"
	targetTagMultiple    = "MULTIPLE"
	targetTagAllPlayers  = "ALL_PLAYERS"
	targetTagRandom      = "RANDOM"
	targetTagAdjacent    = "ADJACENT"
	targetTagArea        = "AREA"
	targetTagConditional = "CONDITIONAL"
)

const (
	conditionTagPowerAbove  = "POWER_ABOVE"
	conditionTagPowerBelow  = "POWER_BELOW"
	conditionTagHasEffect   = "HAS_EFFECT"
	conditionTagHoldsRarity = "HOLDS_RARITY"
)

const (
	filterTagCost   = "COST"
	filterTagType   = "TYPE"
	filterTagRarity = "RARITY"
)

// TakeSnapshot captures a game state.
func TakeSnapshot(gs *GameState) *Snapshot {
	snap := &Snapshot{
		Version:      snapshotVersion,
		GameID:       gs.GameID,
		ActivePlayer: gs.ActivePlayer,
		TurnNumber:   gs.TurnNumber,
		Levels:       gs.Mountain.Levels(),
	}

	for level := 0; level < gs.Mountain.Levels(); level++ {
		for _, tile := range gs.Mountain.Level(level) {
			if tile.Content.Kind == board.ContentEmpty {
				continue
			}
			snap.Tiles = append(snap.Tiles, TileSnapshot{
				X: tile.X, Y: tile.Y, Z: tile.Z,
				Kind: tile.Content.Kind.String(),
				ID:   tile.Content.ID,
			})
		}
	}

	for _, id := range gs.PlayerIDs() {
		player, _ := gs.Player(id)
		snap.Players = append(snap.Players, snapshotPlayer(player))
	}
	return snap
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	ps := PlayerSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Mana:      p.Mana,
		Position: PositionSnapshot{
			X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z, Level: p.Position.Level,
		},
		CardsPlayed: p.CardsPlayedThisTurn,
		ManaSpent:   p.ManaSpentThisTurn,
	}
	for i := range p.Hand {
		ps.Hand = append(ps.Hand, snapshotCard(&p.Hand[i]))
	}
	for i := range p.Deck.Cards {
		ps.Deck = append(ps.Deck, snapshotCard(&p.Deck.Cards[i]))
	}
	for _, b := range p.PowerBoosts {
		ps.PowerBoosts = append(ps.PowerBoosts, BoostSnapshot{Amount: b.Amount, Duration: snapshotDuration(b.Duration)})
	}
	for _, b := range p.HealthBoosts {
		ps.HealthBoosts = append(ps.HealthBoosts, BoostSnapshot{Amount: b.Amount, Duration: snapshotDuration(b.Duration)})
	}
	for _, a := range p.ActiveEffects {
		ps.ActiveEffects = append(ps.ActiveEffects, ActiveEffectSnapshot{Kind: a.Kind, Duration: snapshotDuration(a.Duration)})
	}
	return ps
}

func snapshotCard(c *Card) CardSnapshot {
	cs := CardSnapshot{
		ID:     c.ID,
		Name:   c.Name,
		Cost:   c.Cost,
		Power:  c.Power,
		Rarity: c.Rarity,
		Type:   c.Type,
	}
	for _, e := range c.Effects {
		cs.Effects = append(cs.Effects, snapshotEffect(e))
	}
	return cs
}

func snapshotDuration(d Duration) DurationSnapshot {
	return DurationSnapshot{Kind: d.Kind, Turns: d.Turns, Level: d.Level}
}

func restoreDuration(ds DurationSnapshot) Duration {
	return Duration{Kind: ds.Kind, Turns: ds.Turns, Level: ds.Level}
}

func snapshotValue(v Value) *ValueSnapshot {
	vs := &ValueSnapshot{Base: v.Base}
	if v.Scaling != nil {
		vs.Scaled = true
		vs.Scaling = v.Scaling.Kind
		vs.Factor = v.Scaling.Factor
	}
	return vs
}

func restoreValue(vs *ValueSnapshot) Value {
	if vs == nil {
		return Value{}
	}
	v := Value{Base: vs.Base}
	if vs.Scaled {
		v.Scaling = &Scaling{Kind: vs.Scaling, Factor: vs.Factor}
	}
	return v
}

func snapshotEffect(e Effect) EffectSnapshot {
	switch eff := e.(type) {
	case DamageEffect:
		return EffectSnapshot{
			Kind:        EffectDamage,
			Value:       snapshotValue(eff.Value),
			Target:      snapshotTarget(eff.Target),
			Penetrating: eff.Penetrating,
		}
	case HealEffect:
		return EffectSnapshot{
			Kind:     EffectHeal,
			Value:    snapshotValue(eff.Value),
			Target:   snapshotTarget(eff.Target),
			OverHeal: eff.OverHeal,
		}
	case DrawEffect:
		es := EffectSnapshot{
			Kind:   EffectDraw,
			Cards:  eff.Cards,
			Target: snapshotTarget(eff.Target),
		}
		if eff.Filter != nil {
			es.Filter = snapshotFilter(eff.Filter)
		}
		return es
	case BoostEffect:
		dur := snapshotDuration(eff.Duration)
		return EffectSnapshot{
			Kind:     EffectBoost,
			Value:    snapshotValue(eff.Value),
			Target:   snapshotTarget(eff.Target),
			Stat:     eff.Stat,
			Duration: &dur,
		}
	case BuffEffect:
		dur := snapshotDuration(eff.Duration)
		return EffectSnapshot{
			Kind:     EffectBuff,
			Power:    eff.Power,
			Health:   eff.Health,
			Target:   snapshotTarget(eff.Target),
			Duration: &dur,
		}
	default:
		return EffectSnapshot{Kind: e.Kind(), Target: snapshotTarget(e.TargetSpec())}
	}
}

// RestoreEffect rebuilds a grammar value from its snapshot form.
func RestoreEffect(es EffectSnapshot) (Effect, error) {
	target, err := restoreTarget(es.Target)
	if err != nil {
		return nil, err
	}
	switch es.Kind {
	case EffectDamage:
		return DamageEffect{Value: restoreValue(es.Value), Target: target, Penetrating: es.Penetrating}, nil
	case EffectHeal:
		return HealEffect{Value: restoreValue(es.Value), Target: target, OverHeal: es.OverHeal}, nil
	case EffectDraw:
		filter, err := restoreFilter(es.Filter)
		if err != nil {
			return nil, err
		}
		return DrawEffect{Cards: es.Cards, Target: target, Filter: filter}, nil
	case EffectBoost:
		var dur Duration
		if es.Duration != nil {
			dur = restoreDuration(*es.Duration)
		}
		return BoostEffect{Value: restoreValue(es.Value), Target: target, Stat: es.Stat, Duration: dur}, nil
	case EffectBuff:
		var dur Duration
		if es.Duration != nil {
			dur = restoreDuration(*es.Duration)
		}
		return BuffEffect{Power: es.Power, Health: es.Health, Target: target, Duration: dur}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q in snapshot", es.Kind)
	}
}

func snapshotTarget(t Target) TargetSnapshot {
	switch target := t.(type) {
	case TargetSelf:
		return TargetSnapshot{Kind: targetTagSelf}
	case TargetSpecific:
		return TargetSnapshot{Kind: targetTagSpecific, ID: target.ID}
	case TargetMultiple:
		ids := make([]uuid.UUID, 0, len(target.IDs))
		for id := range target.IDs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
		return TargetSnapshot{Kind: targetTagMultiple, IDs: ids}
	case TargetAllPlayers:
		return TargetSnapshot{Kind: targetTagAllPlayers, IDs: target.IDs}
	case TargetRandom:
		return TargetSnapshot{Kind: targetTagRandom, Count: target.Count}
	case TargetAdjacent:
		return TargetSnapshot{Kind: targetTagAdjacent}
	case TargetArea:
		return TargetSnapshot{Kind: targetTagArea, Center: target.Center, Radius: target.Radius}
	case TargetConditional:
		return TargetSnapshot{
			Kind:       targetTagConditional,
			Condition:  snapshotCondition(target.Condition),
			MaxTargets: target.MaxTargets,
		}
	default:
		return TargetSnapshot{Kind: targetTagSelf}
	}
}

func restoreTarget(ts TargetSnapshot) (Target, error) {
	switch ts.Kind {
	case targetTagSelf:
		return TargetSelf{}, nil
	case targetTagSpecific:
		return TargetSpecific{ID: ts.ID}, nil
	case targetTagMultiple:
		ids := make(map[uuid.UUID]struct{}, len(ts.IDs))
		for _, id := range ts.IDs {
			ids[id] = struct{}{}
		}
		return TargetMultiple{IDs: ids}, nil
	case targetTagAllPlayers:
		return TargetAllPlayers{IDs: ts.IDs}, nil
	case targetTagRandom:
		return TargetRandom{Count: ts.Count}, nil
	case targetTagAdjacent:
		return TargetAdjacent{}, nil
	case targetTagArea:
		return TargetArea{Center: ts.Center, Radius: ts.Radius}, nil
	case targetTagConditional:
		cond, err := restoreCondition(ts.Condition)
		if err != nil {
			return nil, err
		}
		return TargetConditional{Condition: cond, MaxTargets: ts.MaxTargets}, nil
	default:
		return nil, fmt.Errorf("unknown target kind %q in snapshot", ts.Kind)
	}
}

func snapshotCondition(c Condition) *ConditionSnapshot {
	switch cond := c.(type) {
	case PowerAbove:
		return &ConditionSnapshot{Kind: conditionTagPowerAbove, Threshold: cond.Threshold}
	case PowerBelow:
		return &ConditionSnapshot{Kind: conditionTagPowerBelow, Threshold: cond.Threshold}
	case HasEffect:
		return &ConditionSnapshot{Kind: conditionTagHasEffect, EffectKind: cond.Kind}
	case HoldsRarity:
		return &ConditionSnapshot{Kind: conditionTagHoldsRarity, Rarity: cond.Rarity}
	default:
		return nil
	}
}

func restoreCondition(cs *ConditionSnapshot) (Condition, error) {
	if cs == nil {
		return nil, fmt.Errorf("conditional target missing condition in snapshot")
	}
	switch cs.Kind {
	case conditionTagPowerAbove:
		return PowerAbove{Threshold: cs.Threshold}, nil
	case conditionTagPowerBelow:
		return PowerBelow{Threshold: cs.Threshold}, nil
	case conditionTagHasEffect:
		return HasEffect{Kind: cs.EffectKind}, nil
	case conditionTagHoldsRarity:
		return HoldsRarity{Rarity: cs.Rarity}, nil
	default:
		return nil, fmt.Errorf("unknown condition kind %q in snapshot", cs.Kind)
	}
}

func snapshotFilter(f DrawFilter) *FilterSnapshot {
	switch filter := f.(type) {
	case CostFilter:
		return &FilterSnapshot{Kind: filterTagCost, Op: filter.Op, Cost: filter.Cost}
	case TypeFilter:
		return &FilterSnapshot{Kind: filterTagType, CardType: filter.Type}
	case RarityFilter:
		return &FilterSnapshot{Kind: filterTagRarity, Rarity: filter.Rarity}
	default:
		return nil
	}
}

func restoreFilter(fs *FilterSnapshot) (DrawFilter, error) {
	if fs == nil {
		return nil, nil
	}
	switch fs.Kind {
	case filterTagCost:
		return CostFilter{Op: fs.Op, Cost: fs.Cost}, nil
	case filterTagType:
		return TypeFilter{Type: fs.CardType}, nil
	case filterTagRarity:
		return RarityFilter{Rarity: fs.Rarity}, nil
	default:
		return nil, fmt.Errorf("unknown draw filter kind %q in snapshot", fs.Kind)
	}
}

// Restore rebuilds a live GameState from the snapshot.
func (s *Snapshot) Restore() (*GameState, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}

	gs := &GameState{
		GameID:       s.GameID,
		Mountain:     board.New(s.Levels),
		ActivePlayer: s.ActivePlayer,
		TurnNumber:   s.TurnNumber,
		players:      make(map[uuid.UUID]*Player),
	}

	for _, ts := range s.Tiles {
		tile := gs.Mountain.Tile(ts.X, ts.Y, ts.Z)
		if tile == nil {
			return nil, fmt.Errorf("snapshot tile (%d,%d,%d) outside mountain", ts.X, ts.Y, ts.Z)
		}
		tile.Content = board.TileContent{Kind: parseContentKind(ts.Kind), ID: ts.ID}
	}

	for _, ps := range s.Players {
		player, err := restorePlayer(ps)
		if err != nil {
			return nil, err
		}
		gs.AddPlayer(player)
	}
	return gs, nil
}

func parseContentKind(tag string) board.ContentKind {
	switch tag {
	case board.ContentCard.String():
		return board.ContentCard
	case board.ContentTrap.String():
		return board.ContentTrap
	case board.ContentPlayer.String():
		return board.ContentPlayer
	default:
		return board.ContentEmpty
	}
}

func restorePlayer(ps PlayerSnapshot) (*Player, error) {
	player := &Player{
		ID:        ps.ID,
		Name:      ps.Name,
		Health:    ps.Health,
		MaxHealth: ps.MaxHealth,
		Mana:      ps.Mana,
		Position: board.Position{
			X: ps.Position.X, Y: ps.Position.Y, Z: ps.Position.Z, Level: ps.Position.Level,
		},
		CardsPlayedThisTurn: ps.CardsPlayed,
		ManaSpentThisTurn:   ps.ManaSpent,
	}
	player.Deck.OwnerID = ps.ID

	for _, cs := range ps.Hand {
		card, err := restoreCard(cs)
		if err != nil {
			return nil, err
		}
		player.Hand = append(player.Hand, card)
	}
	for _, cs := range ps.Deck {
		card, err := restoreCard(cs)
		if err != nil {
			return nil, err
		}
		player.Deck.Cards = append(player.Deck.Cards, card)
	}
	for _, bs := range ps.PowerBoosts {
		player.PowerBoosts = append(player.PowerBoosts, StatBoost{Amount: bs.Amount, Duration: restoreDuration(bs.Duration)})
	}
	for _, bs := range ps.HealthBoosts {
		player.HealthBoosts = append(player.HealthBoosts, StatBoost{Amount: bs.Amount, Duration: restoreDuration(bs.Duration)})
	}
	for _, as := range ps.ActiveEffects {
		player.ActiveEffects = append(player.ActiveEffects, ActiveEffect{Kind: as.Kind, Duration: restoreDuration(as.Duration)})
	}
	return player, nil
}

func restoreCard(cs CardSnapshot) (Card, error) {
	card := Card{
		ID:     cs.ID,
		Name:   cs.Name,
		Cost:   cs.Cost,
		Power:  cs.Power,
		Rarity: cs.Rarity,
		Type:   cs.Type,
	}
	for _, es := range cs.Effects {
		effect, err := RestoreEffect(es)
		if err != nil {
			return Card{}, err
		}
		card.Effects = append(card.Effects, effect)
	}
	return card, nil
}

// Checksum computes a sha256 over a canonical representation of the snapshot.
// Map order never leaks into snapshots (players are in join order, multiple
// targets are sorted), so equal states produce equal checksums.
func (s *Snapshot) Checksum() (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%d\n", s.GameID, s.ActivePlayer, s.TurnNumber, s.Levels)

	for _, tile := range s.Tiles {
		fmt.Fprintf(&buf, "TILE:%d,%d,%d|%s|%s\n", tile.X, tile.Y, tile.Z, tile.Kind, tile.ID)
	}

	for _, player := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d|%d|%d,%d,%d|%d|%d\n",
			player.ID, player.Name, player.Health, player.MaxHealth, player.Mana,
			player.Position.X, player.Position.Y, player.Position.Z,
			player.CardsPlayed, player.ManaSpent,
		)
		for _, card := range player.Hand {
			fmt.Fprintf(&buf, "  HAND:%s\n", card.ID)
		}
		for _, card := range player.Deck {
			fmt.Fprintf(&buf, "  DECK:%s\n", card.ID)
		}
		for _, boost := range player.PowerBoosts {
			fmt.Fprintf(&buf, "  PBOOST:%d|%s\n", boost.Amount, restoreDuration(boost.Duration))
		}
		for _, boost := range player.HealthBoosts {
			fmt.Fprintf(&buf, "  HBOOST:%d|%s\n", boost.Amount, restoreDuration(boost.Duration))
		}
		for _, active := range player.ActiveEffects {
			fmt.Fprintf(&buf, "  ACTIVE:%s|%s\n", active.Kind, restoreDuration(active.Duration))
		}
	}

	hash := sha256.New()
	if _, err := hash.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to compute checksum: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Encode serializes the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a snapshot previously produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
