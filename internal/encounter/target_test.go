package encounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/horde/internal/game/agent"
	"github.com/cory-johannsen/horde/internal/game/arena"
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

func TestTarget_WalksWaypointsAndLoops(t *testing.T) {
	tg := newTarget(TargetSpec{
		Position:  Point{0, 1, 0},
		Waypoints: []Point{{2, 0, 0}, {2, 0, 2}},
		Speed:     1,
	})

	tg.step(1)
	assert.InDelta(t, 1.0, tg.pos.X, 1e-9)
	assert.Equal(t, 1.0, tg.pos.Y, "height is kept")
	assert.InDelta(t, 1.0, tg.forward.X, 1e-9)

	// Overshooting a waypoint carries the remainder toward the next one.
	tg.step(1.5)
	assert.InDelta(t, 2.0, tg.pos.X, 1e-9)
	assert.InDelta(t, 0.5, tg.pos.Z, 1e-9)
	assert.InDelta(t, 1.0, tg.forward.Z, 1e-9)

	tg.step(1.5)
	assert.InDelta(t, 2.0, tg.pos.Z, 1e-9)
	assert.Equal(t, 0, tg.next, "wraps back to the first waypoint")
}

func TestTarget_StaysPutWithoutSpeed(t *testing.T) {
	tg := newTarget(TargetSpec{Waypoints: []Point{{5, 0, 0}}, Forward: Point{1, 0, 0}})
	tg.step(10)
	assert.Equal(t, geom.Vec3{}, tg.pos)
	assert.Equal(t, geom.Vec3{X: 1}, tg.forward)
}

func TestTarget_DegenerateForwardFallsBack(t *testing.T) {
	tg := newTarget(TargetSpec{})
	assert.Equal(t, geom.WorldForward, tg.forward)
}

func TestTarget_Damage(t *testing.T) {
	tg := newTarget(TargetSpec{MaxHP: 3})
	assert.False(t, tg.damage(2))
	assert.True(t, tg.alive())
	assert.True(t, tg.damage(5))
	assert.False(t, tg.alive())
	assert.Zero(t, tg.hp)
	assert.False(t, tg.damage(1), "already dead")

	_, ok := tg.current()
	assert.False(t, ok, "a defeated target is absent")
}

func TestTarget_InvulnerableWithoutHP(t *testing.T) {
	tg := newTarget(TargetSpec{})
	assert.False(t, tg.damage(100))
	assert.True(t, tg.alive())
	got, ok := tg.current()
	require.True(t, ok)
	assert.Equal(t, geom.WorldForward, got.Forward)
}

func TestEncounter_BlockedIgnoresTargetBody(t *testing.T) {
	sc := &Scenario{
		Colliders: []arena.ColliderSpec{{ID: "wall", Min: [2]float64{3, -1}, Max: [2]float64{4, 1}, MaxY: 2}},
		Agents:    []AgentSpec{{Profile: "grunt", Position: Point{0, 0, 5}}},
	}
	profiles := map[string]*agent.Profile{"grunt": {
		ID: "grunt", Name: "Grunt", AttackRange: 1, PreferredMaxDistance: 4, MoveSpeed: 1, MaxHP: 1,
	}}
	e, err := NewEncounter(sc, profiles, group.DefaultSettings())
	require.NoError(t, err)

	assert.False(t, e.blocked(geom.Vec3{X: 0.1, Y: 0.5}), "inside the target body")
	assert.True(t, e.blocked(geom.Vec3{X: 3.5, Y: 0.5}), "inside the wall")
	assert.False(t, e.blocked(geom.Vec3{X: 2, Y: 0.5}))

	var tagged string
	for _, c := range e.world.Colliders() {
		if c.ID == targetColliderID {
			tagged = c.Tag
		}
	}
	assert.Equal(t, "Player", tagged, "the target body takes the configured tag")
}

func TestProperty_TargetNeverOvershootsWaypointPath(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		speed := rapid.Float64Range(0.1, 5).Draw(rt, "speed")
		tg := newTarget(TargetSpec{Waypoints: []Point{{4, 0, 0}, {4, 0, 4}, {0, 0, 4}, {0, 0, 0}}, Speed: speed})
		for i := 0; i < 50; i++ {
			prev := tg.pos
			dt := rapid.Float64Range(0, 1).Draw(rt, "dt")
			tg.step(dt)
			moved := geom.HorizontalDistance(prev, tg.pos)
			if moved > speed*dt+1e-9 {
				rt.Fatalf("moved %f in %f s at speed %f", moved, dt, speed)
			}
			if tg.pos.X < -1e-9 || tg.pos.X > 4+1e-9 || tg.pos.Z < -1e-9 || tg.pos.Z > 4+1e-9 {
				rt.Fatalf("left the patrol square: %+v", tg.pos)
			}
		}
	})
}
