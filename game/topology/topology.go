package topology

import (
	"errors"
	"fmt"
	"math"
)

// CoordinateSystemType selects the direction convention of a map
type CoordinateSystemType string

const (
	Square  CoordinateSystemType = "square"
	Diamond CoordinateSystemType = "diamond"
	Hex     CoordinateSystemType = "hex"
)

// ErrInvalidCoordinateSystem is returned by Validate
var ErrInvalidCoordinateSystem = errors.New("invalid coordinate system")

// Direction is a 1-based direction number
type Direction int

// Coords is a location on a map; Plane is 0 for single-plane maps
type Coords struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Plane int `json:"plane" yaml:"plane"`
}

func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Plane)
}

// CoordinateSystem holds map dimensions and wrap-around topology
type CoordinateSystem struct {
	Type             CoordinateSystemType `json:"type" yaml:"type"`
	Width            int                  `json:"width" yaml:"width"`
	Height           int                  `json:"height" yaml:"height"`
	Depth            int                  `json:"depth" yaml:"depth"`
	WrapsLeftToRight bool                 `json:"wraps_left_to_right" yaml:"wraps_left_to_right"`
	WrapsTopToBottom bool                 `json:"wraps_top_to_bottom" yaml:"wraps_top_to_bottom"`
}

// Validate checks dimensions and type
func (s CoordinateSystem) Validate() error {
	switch s.Type {
	case Square, Diamond, Hex:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCoordinateSystem, s.Type)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Depth <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%dx%d",
			ErrInvalidCoordinateSystem, s.Width, s.Height, s.Depth)
	}
	return nil
}

// Size returns the number of cells across all planes
func (s CoordinateSystem) Size() int {
	return s.Width * s.Height * s.Depth
}

// Index returns the row-major offset of c in a dense plane x row x column volume.
// c must be on the map.
func (s CoordinateSystem) Index(c Coords) int {
	return (c.Plane*s.Height+c.Y)*s.Width + c.X
}

// Contains reports whether c lies on the map without applying wrap
func (s CoordinateSystem) Contains(c Coords) bool {
	return c.X >= 0 && c.X < s.Width &&
		c.Y >= 0 && c.Y < s.Height &&
		c.Plane >= 0 && c.Plane < s.Depth
}

// Normalize wraps c back onto the map. It returns false if c is off an edge
// that does not wrap.
func (s CoordinateSystem) Normalize(c Coords) (Coords, bool) {
	if c.Plane < 0 || c.Plane >= s.Depth {
		return c, false
	}
	if c.X < 0 || c.X >= s.Width {
		if !s.WrapsLeftToRight {
			return c, false
		}
		c.X = mod(c.X, s.Width)
	}
	if c.Y < 0 || c.Y >= s.Height {
		if !s.WrapsTopToBottom {
			return c, false
		}
		c.Y = mod(c.Y, s.Height)
	}
	return c, true
}

// MaxDirection is the highest valid direction number for the system type
func (s CoordinateSystem) MaxDirection() int {
	return MaxDirection(s.Type)
}

// MaxDirection is the highest valid direction number for t
func MaxDirection(t CoordinateSystemType) int {
	if t == Hex {
		return 6
	}
	return 8
}

// ValidDirection reports whether d exists for the system type t
func ValidDirection(t CoordinateSystemType, d Direction) bool {
	return d >= 1 && int(d) <= MaxDirection(t)
}

// Opposite returns the direction pointing back the way d came
func (s CoordinateSystem) Opposite(d Direction) Direction {
	half := s.MaxDirection() / 2
	return Direction((int(d)-1+half)%s.MaxDirection() + 1)
}

// Move steps one tile from c in direction d and wraps the result.
// It returns false if d is not valid or the step leaves a non-wrapping edge.
func (s CoordinateSystem) Move(c Coords, d Direction) (Coords, bool) {
	if !ValidDirection(s.Type, d) {
		return c, false
	}
	dx, dy := offset(s.Type, c.Y, d)
	return s.Normalize(Coords{X: c.X + dx, Y: c.Y + dy, Plane: c.Plane})
}

// DeltaX returns the signed column difference from -> to along the shortest way round
func (s CoordinateSystem) DeltaX(from, to Coords) int {
	return shortest(to.X-from.X, s.Width, s.WrapsLeftToRight)
}

// DeltaY returns the signed row difference from -> to along the shortest way round
func (s CoordinateSystem) DeltaY(from, to Coords) int {
	return shortest(to.Y-from.Y, s.Height, s.WrapsTopToBottom)
}

// Distance is the Euclidean distance in grid units between two locations,
// honouring wrap-around. Planes are ignored.
func (s CoordinateSystem) Distance(from, to Coords) float64 {
	dx := float64(s.DeltaX(from, to))
	dy := float64(s.DeltaY(from, to))
	return math.Sqrt(dx*dx + dy*dy)
}

// squareOffsets are indexed by direction-1, clockwise from up
var squareOffsets = [8]struct{ dx, dy int }{
	{0, -1},  // up
	{1, -1},  // up-right
	{1, 0},   // right
	{1, 1},   // down-right
	{0, 1},   // down
	{-1, 1},  // down-left
	{-1, 0},  // left
	{-1, -1}, // up-left
}

func offset(t CoordinateSystemType, y int, d Direction) (int, int) {
	switch t {
	case Diamond:
		return diamondOffset(y, d)
	case Hex:
		return hexOffset(y, d)
	default:
		o := squareOffsets[d-1]
		return o.dx, o.dy
	}
}

// diamondOffset implements the staggered isometric layout: odd rows sit half a
// tile to the right of even rows, so vertical neighbours are two rows apart.
func diamondOffset(y int, d Direction) (int, int) {
	odd := mod(y, 2) == 1
	switch d {
	case 1:
		return 0, -2
	case 2:
		if odd {
			return 1, -1
		}
		return 0, -1
	case 3:
		return 1, 0
	case 4:
		if odd {
			return 1, 1
		}
		return 0, 1
	case 5:
		return 0, 2
	case 6:
		if odd {
			return 0, 1
		}
		return -1, 1
	case 7:
		return -1, 0
	default:
		if odd {
			return 0, -1
		}
		return -1, -1
	}
}

// hexOffset uses odd-row offset coordinates, directions clockwise from up-right
func hexOffset(y int, d Direction) (int, int) {
	odd := mod(y, 2) == 1
	switch d {
	case 1:
		if odd {
			return 1, -1
		}
		return 0, -1
	case 2:
		return 1, 0
	case 3:
		if odd {
			return 1, 1
		}
		return 0, 1
	case 4:
		if odd {
			return 0, 1
		}
		return -1, 1
	case 5:
		return -1, 0
	default:
		if odd {
			return 0, -1
		}
		return -1, -1
	}
}

func shortest(delta, size int, wraps bool) int {
	if !wraps || size <= 0 {
		return delta
	}
	delta = mod(delta, size)
	if delta > size/2 {
		delta -= size
	}
	return delta
}

// mod returns the non-negative remainder of a / b
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
