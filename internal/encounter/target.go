package encounter

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

// target is the contested entity. It patrols its waypoints, faces where it
// walks and soaks strikes until its hit points run out.
type target struct {
	spec       TargetSpec
	pos        geom.Vec3
	forward    geom.Vec3
	hp         int
	next       int
	lastAttack float64
}

func newTarget(spec TargetSpec) *target {
	return &target{
		spec:       spec,
		pos:        spec.Position.Vec(),
		forward:    geom.FlatDirection(spec.Forward.Vec(), geom.WorldForward),
		hp:         spec.MaxHP,
		lastAttack: math.Inf(-1),
	}
}

// current is the director's TargetProvider. A defeated target is absent.
func (t *target) current() (group.Target, bool) {
	if !t.alive() {
		return group.Target{}, false
	}
	return group.Target{Position: t.pos, Forward: t.forward}, true
}

func (t *target) alive() bool {
	return t.spec.MaxHP == 0 || t.hp > 0
}

// damage reports whether hp killed the target.
func (t *target) damage(hp int) bool {
	if t.spec.MaxHP == 0 || t.hp <= 0 || hp <= 0 {
		return false
	}
	t.hp -= hp
	if t.hp <= 0 {
		t.hp = 0
		return true
	}
	return false
}

// step walks toward the current waypoint, moving on to the next one on
// arrival. The target keeps its height.
func (t *target) step(dt float64) {
	if len(t.spec.Waypoints) == 0 || t.spec.Speed <= 0 || dt <= 0 || !t.alive() {
		return
	}
	budget := t.spec.Speed * dt
	// Bounded so a run of coincident waypoints cannot spin forever.
	for i := 0; i < len(t.spec.Waypoints) && budget > 0; i++ {
		goal := t.spec.Waypoints[t.next].Vec()
		offset := goal.Sub(t.pos).Horizontal()
		dist := offset.Len()
		if dist <= budget {
			t.pos = geom.Vec3{X: goal.X, Y: t.pos.Y, Z: goal.Z}
			t.forward = geom.FlatDirection(offset, t.forward)
			t.next = (t.next + 1) % len(t.spec.Waypoints)
			budget -= dist
			continue
		}
		dir := offset.Scale(1 / dist)
		t.pos = t.pos.Add(dir.Scale(budget))
		t.forward = dir
		budget = 0
	}
}
