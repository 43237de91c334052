// Package movement holds the cost unit shared by overland and combat movement.
package movement

import "strconv"

// DoubleMovement is a movement cost in double movement points, so that half
// points can be represented as odd integers. Impassable marks a location that
// cannot be entered.
type DoubleMovement int

// Impassable is the "not enterable" value
const Impassable DoubleMovement = -1

// Enterable reports whether the value is a real cost
func (d DoubleMovement) Enterable() bool {
	return d >= 0
}

// FromRate converts an optional rate from reference data; nil means impassable
func FromRate(rate *int) DoubleMovement {
	if rate == nil || *rate < 0 {
		return Impassable
	}
	return DoubleMovement(*rate)
}

func (d DoubleMovement) String() string {
	if !d.Enterable() {
		return "impassable"
	}
	if d%2 == 0 {
		return strconv.Itoa(int(d / 2))
	}
	if d == 1 {
		return "½"
	}
	return strconv.Itoa(int(d/2)) + "½"
}
