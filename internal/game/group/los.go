package group

import "github.com/cory-johannsen/horde/internal/game/geom"

// LineOfSightChecker tests visibility between two points against obstruction colliders.
type LineOfSightChecker struct {
	rays      Raycaster
	eyeHeight float64
	mask      geom.LayerMask
	targetTag string
}

// NewLineOfSightChecker creates a checker. A nil Raycaster sees through everything.
func NewLineOfSightChecker(rays Raycaster, cfg LineOfSightSettings) *LineOfSightChecker {
	return &LineOfSightChecker{
		rays:      rays,
		eyeHeight: cfg.EyeHeight,
		mask:      cfg.Mask,
		targetTag: cfg.TargetTag,
	}
}

// HasLineOfSight reports whether to is visible from from at eye height.
// A blocking hit on the target's own collider still counts as visible.
func (c *LineOfSightChecker) HasLineOfSight(from, to geom.Vec3) bool {
	lift := geom.Vec3{Y: c.eyeHeight}
	origin := from.Add(lift)
	delta := to.Add(lift).Sub(origin)
	dist := delta.Len()
	if dist < geom.MinDistance || c.rays == nil {
		return true
	}
	hit, ok := c.rays.Cast(origin, delta.Scale(1/dist), dist, c.mask)
	if !ok {
		return true
	}
	return c.targetTag != "" && hit.Tag == c.targetTag
}
