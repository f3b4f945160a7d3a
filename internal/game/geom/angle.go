package geom

import "math"

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// SignedAngle returns the yaw in degrees, within [-180, 180], that rotates
// the horizontal projection of from onto the horizontal projection of to.
// Positive angles turn from +Z towards +X (clockwise seen from above).
//
// Postcondition: returns 0 when either vector has no horizontal extent.
func SignedAngle(from, to Vec3) float64 {
	cross := from.Z*to.X - from.X*to.Z
	dot := from.X*to.X + from.Z*to.Z
	if cross == 0 && dot == 0 {
		return 0
	}
	return math.Atan2(cross, dot) * radToDeg
}

// DeltaAngle returns the shortest signed difference b - a in degrees,
// wrapped to [-180, 180].
func DeltaAngle(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// WrapAngle wraps a into [-180, 180].
func WrapAngle(a float64) float64 {
	return DeltaAngle(0, a)
}

// RotateYaw rotates v about +Y by deg degrees using the SignedAngle convention.
// The Y component is preserved.
func RotateYaw(v Vec3, deg float64) Vec3 {
	s, c := math.Sincos(deg * degToRad)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float64) float64 { return Clamp(x, 0, 1) }

// Clamp clamps x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp interpolates from a to b by t. t is clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}
