package cgra

import "fmt"

// Geometry describes a rectangular array of tiles. X grows toward the
// East, Y toward the North. One memory module sits at every (x, y)
// lattice point, between the cores of its row: on even rows a core's
// native module is on its East side, on odd rows on its West side, so
// that horizontally adjacent cores of consecutive rows share modules in
// a checkerboard pattern.
type Geometry struct {
	Width  int
	Height int
}

// NewGeometry validates the array dimensions.
func NewGeometry(width, height int) (Geometry, error) {
	if width < 1 || height < 1 {
		return Geometry{}, fmt.Errorf(
			"%w: geometry %dx%d, both dimensions must be at least 1",
			ErrOutOfRange, width, height)
	}

	return Geometry{Width: width, Height: height}, nil
}

// Size returns the number of tiles in the array.
func (g Geometry) Size() int {
	return g.Width * g.Height
}

// Contains reports whether (x, y) is a valid tile coordinate.
func (g Geometry) Contains(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Validate returns an error when (x, y) lies outside the array.
func (g Geometry) Validate(x, y int) error {
	if !g.Contains(x, y) {
		return fmt.Errorf("%w: tile (%d,%d) outside %dx%d array",
			ErrOutOfRange, x, y, g.Width, g.Height)
	}

	return nil
}

// LinearID flattens a coordinate into a row-major index.
func (g Geometry) LinearID(x, y int) int {
	if err := g.Validate(x, y); err != nil {
		panic(err)
	}

	return y*g.Width + x
}

// Position is the inverse of LinearID.
func (g Geometry) Position(id int) (x, y int) {
	if id < 0 || id >= g.Size() {
		panic(fmt.Errorf("%w: linear id %d outside %dx%d array",
			ErrOutOfRange, id, g.Width, g.Height))
	}

	return id % g.Width, id / g.Width
}

// IsWestColumn reports whether x is the westernmost column.
func (g Geometry) IsWestColumn(x int) bool {
	return x == 0
}

// IsEastColumn reports whether x is the easternmost column.
func (g Geometry) IsEastColumn(x int) bool {
	return x == g.Width-1
}

// IsSouthRow reports whether y is the southernmost row.
func (g Geometry) IsSouthRow(y int) bool {
	return y == 0
}

// IsNorthRow reports whether y is the northernmost row.
func (g Geometry) IsNorthRow(y int) bool {
	return y == g.Height-1
}

// NativeSide returns the side of the memory module a core on row y
// always has: East on even rows, West on odd rows.
func (g Geometry) NativeSide(y int) Side {
	if y&1 == 1 {
		return West
	}

	return East
}

// Neighbor derives the coordinate of the adjacent tile on side s, with
// no range check on the result.
func (g Geometry) Neighbor(x, y int, s Side) (nx, ny int) {
	switch s {
	case North:
		return x, y + 1
	case East:
		return x + 1, y
	case South:
		return x, y - 1
	case West:
		return x - 1, y
	default:
		panic("invalid side")
	}
}

// HasNeighbor reports whether an adjacent tile exists on side s.
func (g Geometry) HasNeighbor(x, y int, s Side) bool {
	if err := g.Validate(x, y); err != nil {
		panic(err)
	}

	nx, ny := g.Neighbor(x, y, s)

	return g.Contains(nx, ny)
}

// memCoord derives the lattice coordinate of the memory module on side
// s of core (x, y), with no range check on the result.
func (g Geometry) memCoord(x, y int, s Side) (int, int) {
	switch s {
	case North:
		return x, y + 1
	case South:
		return x, y - 1
	case East:
		if y&1 == 1 {
			return x + 1, y
		}
		return x, y
	case West:
		if y&1 == 1 {
			return x, y
		}
		return x - 1, y
	default:
		panic("invalid side")
	}
}

// HasMem reports whether core (x, y) has a memory module on side s.
// The native side always does.
func (g Geometry) HasMem(x, y int, s Side) bool {
	if err := g.Validate(x, y); err != nil {
		panic(err)
	}

	mx, my := g.memCoord(x, y, s)

	return g.Contains(mx, my)
}

// MemCoord returns the lattice coordinate of the memory module on side
// s of core (x, y). It panics when no module exists there.
func (g Geometry) MemCoord(x, y int, s Side) (mx, my int) {
	if err := g.Validate(x, y); err != nil {
		panic(err)
	}

	mx, my = g.memCoord(x, y, s)
	if !g.Contains(mx, my) {
		panic(fmt.Errorf("%w: tile (%d,%d) has no %s memory module",
			ErrOutOfRange, x, y, s.Name()))
	}

	return mx, my
}
