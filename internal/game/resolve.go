package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/summitfall/summit-server/internal/game/board"
)

// ResolveTargets maps a target specification to the concrete ordered list of
// recipient identities. It reads the game state and never mutates it.
//
// Roster-wide strategies (Random, Adjacent, Area, Conditional) iterate players
// in join order, so repeated resolution against an unchanged state is stable.
func ResolveTargets(spec Target, gs *GameState, source uuid.UUID) ([]uuid.UUID, error) {
	switch t := spec.(type) {
	case TargetSelf:
		return []uuid.UUID{source}, nil

	case TargetSpecific:
		// Existence is not checked here; application reports the miss.
		return []uuid.UUID{t.ID}, nil

	case TargetMultiple:
		ids := make([]uuid.UUID, 0, len(t.IDs))
		for id := range t.IDs {
			ids = append(ids, id)
		}
		return ids, nil

	case TargetAllPlayers:
		ids := make([]uuid.UUID, len(t.IDs))
		copy(ids, t.IDs)
		return ids, nil

	case TargetRandom:
		roster := gs.PlayerIDs()
		if len(roster) < t.Count {
			return nil, fmt.Errorf("random targeting wants %d of %d players: %w",
				t.Count, len(roster), ErrInvalidTarget)
		}
		rand.Shuffle(len(roster), func(i, j int) {
			roster[i], roster[j] = roster[j], roster[i]
		})
		return roster[:t.Count], nil

	case TargetAdjacent:
		src, ok := gs.Player(source)
		if !ok {
			return nil, fmt.Errorf("adjacent targeting from %s: %w", source, ErrPlayerNotFound)
		}
		neighbors := gs.Mountain.Neighbors(src.Position.X, src.Position.Y, src.Position.Z)

		var ids []uuid.UUID
		for _, id := range gs.PlayerIDs() {
			p, _ := gs.Player(id)
			for _, pos := range neighbors {
				if p.Position == pos {
					ids = append(ids, id)
					break
				}
			}
		}
		return ids, nil

	case TargetArea:
		center, ok := gs.Player(t.Center)
		if !ok {
			return nil, fmt.Errorf("area targeting around %s: %w", t.Center, ErrPlayerNotFound)
		}

		var ids []uuid.UUID
		for _, id := range gs.PlayerIDs() {
			p, _ := gs.Player(id)
			if board.Distance(center.Position, p.Position) <= t.Radius {
				ids = append(ids, id)
			}
		}
		return ids, nil

	case TargetConditional:
		var ids []uuid.UUID
		for _, id := range gs.PlayerIDs() {
			p, _ := gs.Player(id)
			if t.Condition.Matches(p) {
				ids = append(ids, id)
			}
		}
		if t.MaxTargets > 0 && len(ids) > t.MaxTargets {
			ids = ids[:t.MaxTargets]
		}
		return ids, nil

	default:
		return nil, fmt.Errorf("unknown target spec %T: %w", spec, ErrInvalidTarget)
	}
}
