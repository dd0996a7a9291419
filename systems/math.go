package systems

import "math"

// Vec2 is a ground-plane vector (X/Z).
type Vec2 struct {
	X, Z float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Z + o.Z}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Z * s}
}

// Len returns the vector magnitude.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Z)
}

// Normalized returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// ClampLen returns v with its magnitude capped at maxLen.
func (v Vec2) ClampLen(maxLen float64) Vec2 {
	l := v.Len()
	if l <= maxLen || l < 1e-9 {
		return v
	}
	return v.Scale(maxLen / l)
}

// clamp limits v to [minVal, maxVal].
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// distance returns the ground-plane Euclidean distance between two points.
func distance(x1, z1, x2, z2 float64) float64 {
	return math.Hypot(x2-x1, z2-z1)
}
