// Package geom provides the small amount of 3D vector math the group
// coordinator needs. Y is up; the ground plane is XZ and +Z is world forward.
package geom

import "math"

// Epsilon thresholds shared by callers that detect degenerate geometry.
const (
	// DegenerateSq is the squared length below which a direction is unusable.
	DegenerateSq = 0.001
	// MinDistance is the distance below which two points are treated as coincident.
	MinDistance = 0.01
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// WorldForward is the fallback facing used when a forward vector is degenerate.
var WorldForward = Vec3{Z: 1}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// LenSq returns the squared length of v.
func (v Vec3) LenSq() float64 { return v.Dot(v) }

// Len returns the length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Horizontal returns v with its Y component zeroed.
func (v Vec3) Horizontal() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Normalized returns v scaled to unit length. A zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// IsDegenerate reports whether v is too short to be used as a direction.
func (v Vec3) IsDegenerate() bool { return v.LenSq() < DegenerateSq }

// HorizontalDistanceSq returns the squared XZ distance between a and b.
func HorizontalDistanceSq(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// HorizontalDistance returns the XZ distance between a and b.
func HorizontalDistance(a, b Vec3) float64 {
	return math.Sqrt(HorizontalDistanceSq(a, b))
}

// FlatDirection returns the normalized horizontal component of v, or
// fallback when that component is degenerate.
func FlatDirection(v, fallback Vec3) Vec3 {
	h := v.Horizontal()
	if h.IsDegenerate() {
		return fallback
	}
	return h.Normalized()
}
