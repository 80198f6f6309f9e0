package game

import "fmt"

// DurationKind discriminates the expiry policy of a modifier.
type DurationKind int

const (
	// DurationTemporary expires after a counted number of turn advances.
	DurationTemporary DurationKind = iota
	// DurationUntilMountainLevel expires when outside game logic decides the
	// mountain has reached the gating level. The engine only stores the tag;
	// it never evaluates the condition.
	DurationUntilMountainLevel
	// DurationPermanent never expires on its own.
	DurationPermanent
)

// Duration tags a boost, buff, or active effect with its expiry policy.
type Duration struct {
	Kind  DurationKind
	Turns int // remaining turns, Temporary only
	Level int // gating mountain level, UntilMountainLevel only
}

// Temporary lasts for the given number of turn advances. A Temporary(1)
// modifier survives exactly one advance: expiry filters entries already at
// zero before decrementing, so the entry reaching zero is removed on the
// following advance, not the one that zeroed it.
func Temporary(turns int) Duration {
	return Duration{Kind: DurationTemporary, Turns: turns}
}

// UntilMountainLevel lasts until the mountain reaches the given level.
func UntilMountainLevel(level int) Duration {
	return Duration{Kind: DurationUntilMountainLevel, Level: level}
}

// Permanent lasts for the rest of the game.
func Permanent() Duration {
	return Duration{Kind: DurationPermanent}
}

// expired reports whether the modifier should be dropped at the start of a
// turn advance, before any decrement happens.
func (d Duration) expired() bool {
	return d.Kind == DurationTemporary && d.Turns <= 0
}

// tick decrements a temporary duration, saturating at zero. Other kinds are
// unchanged.
func (d Duration) tick() Duration {
	if d.Kind == DurationTemporary && d.Turns > 0 {
		d.Turns--
	}
	return d
}

func (d Duration) String() string {
	switch d.Kind {
	case DurationTemporary:
		return fmt.Sprintf("TEMPORARY(%d)", d.Turns)
	case DurationUntilMountainLevel:
		return fmt.Sprintf("UNTIL_LEVEL(%d)", d.Level)
	case DurationPermanent:
		return "PERMANENT"
	default:
		return fmt.Sprintf("DURATION_%d", int(d.Kind))
	}
}
