package agent

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// arriveDistance is how close to its goal a combatant stops.
const arriveDistance = 0.05

// Blocker reports whether a point is obstructed. *arena.World satisfies it.
type Blocker interface {
	Blocked(p geom.Vec3) bool
}

// BlockerFunc adapts a function to Blocker.
type BlockerFunc func(p geom.Vec3) bool

// Blocked calls f.
func (f BlockerFunc) Blocked(p geom.Vec3) bool { return f(p) }

// Combatant is a live agent standing in an encounter. It steers in a
// straight line toward the last goal it was given.
//
// A Combatant is not safe for concurrent use.
type Combatant struct {
	// ID uniquely identifies this runtime combatant.
	ID string
	// ProfileID is the source profile's ID.
	ProfileID string
	// Name is copied from the profile for display.
	Name string

	pos     geom.Vec3
	forward geom.Vec3
	goal    geom.Vec3
	hasGoal bool

	attackRange float64
	minDistance float64
	maxDistance float64
	moveSpeed   float64

	currentHP int
	maxHP     int

	blocker Blocker
}

// Position returns the combatant's world position.
func (c *Combatant) Position() geom.Vec3 { return c.pos }

// Forward returns the horizontal facing.
func (c *Combatant) Forward() geom.Vec3 { return c.forward }

// IsAlive reports whether the combatant has hit points left.
func (c *Combatant) IsAlive() bool { return c.currentHP > 0 }

// AttackRange returns the profile's reach.
func (c *Combatant) AttackRange() float64 { return c.attackRange }

// PreferredMinDistance returns the near edge of the preferred band.
func (c *Combatant) PreferredMinDistance() float64 { return c.minDistance }

// PreferredMaxDistance returns the far edge of the preferred band.
func (c *Combatant) PreferredMaxDistance() float64 { return c.maxDistance }

// MoveSpeed returns metres per second.
func (c *Combatant) MoveSpeed() float64 { return c.moveSpeed }

// MoveTo sets the navigation goal. Dead combatants ignore it.
func (c *Combatant) MoveTo(p geom.Vec3) {
	if !c.IsAlive() {
		return
	}
	c.goal = p
	c.hasGoal = true
}

// Goal returns the current navigation goal, if any.
func (c *Combatant) Goal() (geom.Vec3, bool) { return c.goal, c.hasGoal }

// Face turns the combatant toward p on the horizontal plane. A point on top
// of the combatant leaves the facing unchanged.
func (c *Combatant) Face(p geom.Vec3) {
	c.forward = geom.FlatDirection(p.Sub(c.pos), c.forward)
}

// Step advances the combatant toward its goal for dt seconds.
//
// Postcondition: the combatant moves at most MoveSpeed*dt, never overshoots
// the goal, keeps its height, and faces its direction of travel. A move into
// a blocked point is refused and the goal is kept.
func (c *Combatant) Step(dt float64) {
	if !c.hasGoal || !c.IsAlive() || dt <= 0 || c.moveSpeed <= 0 {
		return
	}
	offset := c.goal.Sub(c.pos).Horizontal()
	dist := offset.Len()
	if dist <= arriveDistance {
		c.hasGoal = false
		return
	}
	stride := math.Min(dist, c.moveSpeed*dt)
	dir := offset.Scale(1 / dist)
	next := c.pos.Add(dir.Scale(stride))
	c.forward = dir
	if c.blocker != nil && c.blocker.Blocked(next) {
		return
	}
	c.pos = next
	if stride >= dist {
		c.hasGoal = false
	}
}

// Teleport places the combatant at p and clears its goal.
func (c *Combatant) Teleport(p geom.Vec3) {
	c.pos = p
	c.hasGoal = false
}

// Damage removes hp hit points and reports whether the combatant died from it.
//
// Precondition: hp >= 0.
func (c *Combatant) Damage(hp int) bool {
	if hp <= 0 || !c.IsAlive() {
		return false
	}
	c.currentHP -= hp
	if c.currentHP <= 0 {
		c.currentHP = 0
		c.hasGoal = false
		return true
	}
	return false
}

// Kill drops the combatant to zero hit points.
func (c *Combatant) Kill() {
	c.currentHP = 0
	c.hasGoal = false
}

// HP returns current and maximum hit points.
func (c *Combatant) HP() (current, maximum int) { return c.currentHP, c.maxHP }

// HealthDescription returns a visible health state string for logs.
//
// Postcondition: Returns a non-empty string.
func (c *Combatant) HealthDescription() string {
	if c.currentHP <= 0 {
		return "dead"
	}
	pct := float64(c.currentHP) / float64(c.maxHP)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.60:
		return "wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
