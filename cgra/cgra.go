// Package cgra defines the commonly used data structures for CGRAs.
package cgra

// Side defines the side of a tile.
type Side int

const (
	North Side = iota
	East
	South
	West
)

// NumSides is the number of sides of a tile.
const NumSides = 4

// Name returns the name of the side.
func (s Side) Name() string {
	switch s {
	case North:
		return "North"
	case West:
		return "West"
	case South:
		return "South"
	case East:
		return "East"
	default:
		panic("invalid side")
	}
}

// Opposite returns the side that faces s on the neighboring tile.
func (s Side) Opposite() Side {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		panic("invalid side")
	}
}
