// Package systems provides the simulation core: tag rules, the behavior
// FSM, steering, spatial memory, stuck recovery, and the gene/ability
// system. All types are plain values wired together by the game package;
// nothing in here touches global state.
package systems

import "math"

// ObstacleKind discriminates obstacle shapes.
type ObstacleKind uint8

const (
	ObstacleCircle ObstacleKind = iota
	ObstacleRect
)

// Obstacle is a static arena obstacle, either circular or rectangular.
type Obstacle struct {
	Kind  ObstacleKind
	Name  string
	X, Z  float64
	R     float64 // circle radius
	HalfW float64 // rect half-extent along X
	HalfD float64 // rect half-extent along Z
}

// Clearance returns the signed distance from (x,z) to the obstacle
// surface. Negative values mean the point is inside the obstacle.
func (o Obstacle) Clearance(x, z float64) float64 {
	switch o.Kind {
	case ObstacleCircle:
		return math.Hypot(x-o.X, z-o.Z) - o.R
	default:
		qx := math.Abs(x-o.X) - o.HalfW
		qz := math.Abs(z-o.Z) - o.HalfD
		outside := math.Hypot(math.Max(qx, 0), math.Max(qz, 0))
		inside := math.Min(math.Max(qx, qz), 0)
		return outside + inside
	}
}

// Arena is the shared play-area geometry. Steering avoidance and stuck
// diagnosis/escape consume this one table so they can never disagree
// about where the walls are.
type Arena struct {
	HalfExtent float64
	Obstacles  []Obstacle
}

// InBounds reports whether (x,z) lies inside the square play area.
func (a *Arena) InBounds(x, z float64) bool {
	return math.Abs(x) <= a.HalfExtent && math.Abs(z) <= a.HalfExtent
}

// BoundaryClearance returns the distance from (x,z) to the nearest arena
// edge. Negative values mean the point is out of bounds.
func (a *Arena) BoundaryClearance(x, z float64) float64 {
	return math.Min(a.HalfExtent-math.Abs(x), a.HalfExtent-math.Abs(z))
}

// NearestObstacle returns the index of the obstacle closest to (x,z) and
// its clearance. Returns (-1, +Inf) when the arena has no obstacles.
func (a *Arena) NearestObstacle(x, z float64) (int, float64) {
	best := -1
	bestClear := math.Inf(1)
	for i := range a.Obstacles {
		c := a.Obstacles[i].Clearance(x, z)
		if c < bestClear {
			best = i
			bestClear = c
		}
	}
	return best, bestClear
}

// ClearanceScore sums per-obstacle clearance around (x,z), capping each
// obstacle's contribution so one distant obstacle cannot dominate.
func (a *Arena) ClearanceScore(x, z, capPerObstacle float64) float64 {
	var sum float64
	for i := range a.Obstacles {
		c := a.Obstacles[i].Clearance(x, z)
		if c > capPerObstacle {
			c = capPerObstacle
		}
		sum += c
	}
	return sum
}
