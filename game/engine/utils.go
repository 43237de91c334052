package engine

import (
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

// CountEnterable counts the enterable locations on one plane
func CountEnterable(m *CostMatrix, plane int) int {
	count := 0
	for _, row := range m.Plane(plane) {
		for _, cost := range row {
			if cost.Enterable() {
				count++
			}
		}
	}
	return count
}

// CheapestCost returns the lowest enterable cost on one plane
func CheapestCost(m *CostMatrix, plane int) (movement.DoubleMovement, bool) {
	cheapest := movement.Impassable
	for _, row := range m.Plane(plane) {
		for _, cost := range row {
			if cost.Enterable() && (!cheapest.Enterable() || cost < cheapest) {
				cheapest = cost
			}
		}
	}
	return cheapest, cheapest.Enterable()
}

// NearestEnterable finds the enterable location on from's plane closest to
// from, honouring wrap. Ties go to the first location in row order.
func NearestEnterable(m *CostMatrix, from topology.Coords) (topology.Coords, float64, bool) {
	sys := m.System()
	var nearest topology.Coords
	minDistance := -1.0
	found := false

	for y := 0; y < sys.Height; y++ {
		for x := 0; x < sys.Width; x++ {
			c := topology.Coords{X: x, Y: y, Plane: from.Plane}
			if !m.At(c).Enterable() {
				continue
			}
			distance := sys.Distance(from, c)
			if !found || distance < minDistance {
				nearest = c
				minDistance = distance
				found = true
			}
		}
	}

	return nearest, minDistance, found
}

// PlaneStrings renders one plane as rows of cost labels, "-" for impassable
func PlaneStrings(m *CostMatrix, plane int) [][]string {
	rows := m.Plane(plane)
	out := make([][]string, len(rows))
	for y, row := range rows {
		out[y] = make([]string, len(row))
		for x, cost := range row {
			if cost.Enterable() {
				out[y][x] = cost.String()
			} else {
				out[y][x] = "-"
			}
		}
	}
	return out
}
