// Package board provides the mountain game board: a stack of hexagonal tile
// rings addressed by cube coordinates (x, y, z), where x+y+z is the level.
package board

import (
	"fmt"

	"github.com/google/uuid"
)

// Position is a location on the mountain in cube coordinates.
// Level is derived as X+Y+Z for any position generated by the board; it is
// carried explicitly because callers pass positions by value.
type Position struct {
	X     int
	Y     int
	Z     int
	Level int
}

// At builds a Position with its level derived from the coordinates.
func At(x, y, z int) Position {
	return Position{X: x, Y: y, Z: z, Level: x + y + z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)@%d", p.X, p.Y, p.Z, p.Level)
}

// ContentKind describes what occupies a tile.
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentCard
	ContentTrap
	ContentPlayer
)

var contentKindNames = map[ContentKind]string{
	ContentEmpty:  "EMPTY",
	ContentCard:   "CARD",
	ContentTrap:   "TRAP",
	ContentPlayer: "PLAYER",
}

func (k ContentKind) String() string {
	if name, ok := contentKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CONTENT_%d", int(k))
}

// TileContent records the occupant of a tile by identity. The board does not
// own card or player objects; it only references them.
type TileContent struct {
	Kind ContentKind
	ID   uuid.UUID
}

// Tile is a single hex on the mountain.
type Tile struct {
	X       int
	Y       int
	Z       int
	Level   int
	Content TileContent
}

// Position returns the tile's location as a Position value.
func (t *Tile) Position() Position {
	return Position{X: t.X, Y: t.Y, Z: t.Z, Level: t.Level}
}

// directions are the six cube-coordinate unit steps between adjacent hexes.
var directions = [6][3]int{
	{1, 0, -1},
	{1, -1, 0},
	{0, -1, 1},
	{-1, 0, 1},
	{-1, 1, 0},
	{0, 1, -1},
}

// Mountain is the game board. The tile set is fixed at construction; only
// tile contents change afterwards.
type Mountain struct {
	tiles  []*Tile
	index  map[[3]int]*Tile
	levels int
}

// MaxLevels bounds mountain height at construction time.
const MaxLevels = 50

// New builds a mountain with the given number of levels. Every tile (x,y,z)
// with x+y+z = level, 0 <= x,y <= level and z >= 0 exists for each level in
// [0, levels). The level bounds are a configuration contract; violating them
// panics rather than returning an error.
func New(levels int) *Mountain {
	if levels <= 0 {
		panic("board: mountain must have at least one level")
	}
	if levels > MaxLevels {
		panic(fmt.Sprintf("board: mountain height is capped at %d levels", MaxLevels))
	}

	m := &Mountain{
		index:  make(map[[3]int]*Tile),
		levels: levels,
	}
	for level := 0; level < levels; level++ {
		for x := 0; x <= level; x++ {
			for y := 0; y <= level; y++ {
				z := level - x - y
				if z < 0 {
					continue
				}
				tile := &Tile{X: x, Y: y, Z: z, Level: level}
				m.tiles = append(m.tiles, tile)
				m.index[[3]int{x, y, z}] = tile
			}
		}
	}
	return m
}

// Levels reports the mountain height used at construction.
func (m *Mountain) Levels() int {
	return m.levels
}

// Tile returns the tile at the given coordinates, or nil if no such tile was
// generated. The returned tile is live; mutating its Content mutates the board.
func (m *Mountain) Tile(x, y, z int) *Tile {
	return m.index[[3]int{x, y, z}]
}

// Neighbors returns the positions one hex step away from (x,y,z). A neighbor
// is included when all of its coordinates are non-negative and its derived
// level is at most the mountain height. Note the boundary: a level exactly
// equal to the height passes the check even though no tile is generated there.
func (m *Mountain) Neighbors(x, y, z int) []Position {
	neighbors := make([]Position, 0, len(directions))
	for _, d := range directions {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if nx < 0 || ny < 0 || nz < 0 {
			continue
		}
		if nx+ny+nz > m.levels {
			continue
		}
		neighbors = append(neighbors, At(nx, ny, nz))
	}
	return neighbors
}

// Distance is cube-coordinate hex distance: max(|dx|, |dy|, |dz|).
func Distance(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dz := abs(a.Z - b.Z)
	return max(dx, dy, dz)
}

// IsValidMove reports whether stepping from current to next is legal: both
// endpoints must be generated tiles, the hex distance must be exactly 1, and
// the destination level must not exceed the mountain height.
func (m *Mountain) IsValidMove(current, next Position) bool {
	if m.Tile(current.X, current.Y, current.Z) == nil {
		return false
	}
	if m.Tile(next.X, next.Y, next.Z) == nil {
		return false
	}
	return Distance(current, next) == 1 && next.Level <= m.levels
}

// TilesInRange returns every tile within the given hex distance of center,
// center included when it exists.
func (m *Mountain) TilesInRange(center Position, radius int) []*Tile {
	var tiles []*Tile
	for _, tile := range m.tiles {
		if Distance(center, tile.Position()) <= radius {
			tiles = append(tiles, tile)
		}
	}
	return tiles
}

// Level returns every tile in the ring at the given level.
func (m *Mountain) Level(level int) []*Tile {
	var tiles []*Tile
	for _, tile := range m.tiles {
		if tile.Level == level {
			tiles = append(tiles, tile)
		}
	}
	return tiles
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
