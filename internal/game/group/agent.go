// Package group coordinates a band of independent melee combatants sharing
// one contested target. It limits how many may attack at once, spreads the
// rest around the target in angular sectors, and nudges bystanders out of
// the way when an attacker retreats.
//
// Nothing in this package starts goroutines or blocks. A Director and the
// components it owns must be driven from a single goroutine.
package group

import "github.com/cory-johannsen/horde/internal/game/geom"

// Agent is the read-only view of a combatant the coordinator consumes.
// Position and facing are owned by the combatant's own navigation.
type Agent interface {
	Position() geom.Vec3
	Forward() geom.Vec3
	IsAlive() bool
	AttackRange() float64
	PreferredMinDistance() float64
	PreferredMaxDistance() float64
}

// Mover is an optional capability. Agents that implement it are steered
// towards their desired position by the Director while they hold no slot.
type Mover interface {
	MoveTo(point geom.Vec3)
}

// Target is the contested entity the group surrounds.
type Target struct {
	Position geom.Vec3
	Forward  geom.Vec3
}

// TargetProvider reports the current target. ok is false when there is no
// target, in which case ticks are skipped.
type TargetProvider interface {
	Target() (t Target, ok bool)
}

// TargetFunc adapts a function to TargetProvider.
type TargetFunc func() (Target, bool)

// Target calls f.
func (f TargetFunc) Target() (Target, bool) { return f() }

// Raycaster answers obstruction queries. Implementations must ignore
// trigger volumes and report only the nearest hit within maxDist.
type Raycaster interface {
	Cast(origin, dir geom.Vec3, maxDist float64, mask geom.LayerMask) (geom.Hit, bool)
}

// Clock reports monotonic time in seconds.
type Clock interface {
	Now() float64
}

// flatForward returns the target's horizontal facing, or world forward when
// it is degenerate.
func (t Target) flatForward() geom.Vec3 {
	return geom.FlatDirection(t.Forward, geom.WorldForward)
}

// angleOf returns the signed angle of pos around the target, relative to the
// target's facing.
func (t Target) angleOf(pos geom.Vec3) float64 {
	return geom.SignedAngle(t.flatForward(), pos.Sub(t.Position))
}
