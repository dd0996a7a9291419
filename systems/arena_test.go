package systems

import (
	"math"
	"testing"
)

func TestObstacleClearance(t *testing.T) {
	circle := Obstacle{Kind: ObstacleCircle, X: 0, Z: 0, R: 2}
	rect := Obstacle{Kind: ObstacleRect, X: 10, Z: 0, HalfW: 2, HalfD: 1}

	tests := []struct {
		name string
		o    Obstacle
		x, z float64
		want float64
	}{
		{"outside circle", circle, 5, 0, 3},
		{"on circle surface", circle, 2, 0, 0},
		{"inside circle", circle, 1, 0, -1},
		{"outside rect on x", rect, 15, 0, 3},
		{"outside rect diagonal", rect, 13, 2, math.Hypot(1, 1)},
		{"inside rect", rect, 10, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Clearance(tt.x, tt.z); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Clearance(%v,%v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestArenaBounds(t *testing.T) {
	a := &Arena{HalfExtent: 14}

	if !a.InBounds(14, -14) {
		t.Error("boundary point counted as out of bounds")
	}
	if a.InBounds(14.1, 0) {
		t.Error("point past the wall counted as in bounds")
	}
	if got := a.BoundaryClearance(10, -13); got != 1 {
		t.Errorf("BoundaryClearance = %v, want 1", got)
	}
	if got := a.BoundaryClearance(15, 0); got != -1 {
		t.Errorf("BoundaryClearance out of bounds = %v, want -1", got)
	}
}

func TestClearanceScoreCapsPerObstacle(t *testing.T) {
	a := testArena()

	// Far from both obstacles each contribution caps out.
	far := a.ClearanceScore(-13, -13, 4.0)
	if far != 8.0 {
		t.Errorf("capped score = %v, want 8", far)
	}

	// Touching the fountain scores strictly lower.
	near := a.ClearanceScore(2.1, 0, 4.0)
	if near >= far {
		t.Errorf("score near obstacle (%v) not below open-ground score (%v)", near, far)
	}
}

func TestNearestObstacle(t *testing.T) {
	a := testArena()
	idx, c := a.NearestObstacle(3, 0)
	if idx != 0 {
		t.Errorf("nearest obstacle index = %d, want 0 (fountain)", idx)
	}
	if math.Abs(c-1.0) > 1e-9 {
		t.Errorf("clearance = %v, want 1", c)
	}

	empty := &Arena{HalfExtent: 10}
	idx, c = empty.NearestObstacle(0, 0)
	if idx != -1 || !math.IsInf(c, 1) {
		t.Errorf("empty arena NearestObstacle = %d,%v want -1,+Inf", idx, c)
	}
}
