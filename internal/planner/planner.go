// Package planner computes an ordered cyclic traversal over a coordinate
// pool. It is treated as a pure-function external collaborator by the
// dispatcher: given coordinates and a couple of knobs, it returns an
// ordering, with no further say in how that ordering is used.
package planner

import "github.com/riftline/geodispatch/internal/models"

// Algorithm selects the tradeoff between route quality and compute cost.
type Algorithm string

const (
	// AlgorithmOptimized produces a tighter tour at higher compute cost.
	AlgorithmOptimized Algorithm = "optimized"
	// AlgorithmQuick produces a route fast, at the cost of tour quality.
	AlgorithmQuick Algorithm = "quick"
)

// Planner turns a fenced coordinate pool into an ordered cyclic traversal.
type Planner interface {
	Plan(coords []models.Location, maxRadius float64, maxPerCluster int, algorithm Algorithm) ([]models.Location, error)
}

// GreedyPlanner is the reference Planner. AlgorithmQuick returns the input
// order unchanged (cheapest possible plan); AlgorithmOptimized runs a greedy
// nearest-neighbor tour. Distance is an equirectangular approximation —
// exact geodesic distance is explicitly out of scope.
type GreedyPlanner struct{}

// Plan implements Planner.
func (GreedyPlanner) Plan(coords []models.Location, maxRadius float64, maxPerCluster int, algorithm Algorithm) ([]models.Location, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	if algorithm == AlgorithmQuick {
		out := make([]models.Location, len(coords))
		copy(out, coords)
		return out, nil
	}
	return greedyNearestNeighbor(coords), nil
}

func greedyNearestNeighbor(coords []models.Location) []models.Location {
	remaining := make([]models.Location, len(coords))
	copy(remaining, coords)

	route := make([]models.Location, 0, len(coords))
	current := remaining[0]
	route = append(route, current)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		nearestIdx := 0
		nearestDist := flatDistance(current, remaining[0])
		for i := 1; i < len(remaining); i++ {
			if d := flatDistance(current, remaining[i]); d < nearestDist {
				nearestDist = d
				nearestIdx = i
			}
		}
		current = remaining[nearestIdx]
		route = append(route, current)
		remaining = append(remaining[:nearestIdx], remaining[nearestIdx+1:]...)
	}
	return route
}

// flatDistance is an equirectangular approximation, adequate for comparing
// relative distances within a small geofenced area. Not a geodesic distance.
func flatDistance(a, b models.Location) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
