package group_test

import (
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

type fakeAgent struct {
	pos     geom.Vec3
	fwd     geom.Vec3
	dead    bool
	reach   float64
	minDist float64
	maxDist float64
}

func newAgent(x, z float64) *fakeAgent {
	return &fakeAgent{
		pos:     geom.Vec3{X: x, Z: z},
		fwd:     geom.WorldForward,
		reach:   2,
		minDist: 2,
		maxDist: 6,
	}
}

func (a *fakeAgent) Position() geom.Vec3 { return a.pos }
func (a *fakeAgent) Forward() geom.Vec3 { return a.fwd }
func (a *fakeAgent) IsAlive() bool { return !a.dead }
func (a *fakeAgent) AttackRange() float64 { return a.reach }
func (a *fakeAgent) PreferredMinDistance() float64 { return a.minDist }
func (a *fakeAgent) PreferredMaxDistance() float64 { return a.maxDist }

// movingAgent additionally accepts navigation goals.
type movingAgent struct {
	*fakeAgent
	goals []geom.Vec3
}

func (m *movingAgent) MoveTo(p geom.Vec3) { m.goals = append(m.goals, p) }

type fakeClock struct{ now float64 }

func (c *fakeClock) Now() float64 { return c.now }

// atAngle places an agent dist units from origin at the given signed angle
// relative to world forward.
func atAngle(deg, dist float64) *fakeAgent {
	p := geom.RotateYaw(geom.WorldForward, deg).Scale(dist)
	return newAgent(p.X, p.Z)
}

func originTarget() group.Target {
	return group.Target{Forward: geom.WorldForward}
}

func staticTarget(t group.Target) group.TargetProvider {
	return group.TargetFunc(func() (group.Target, bool) { return t, true })
}

var noTarget = group.TargetFunc(func() (group.Target, bool) { return group.Target{}, false })

type constScorer float64

func (c constScorer) CalculateScore(*group.State, group.Handle, group.Target, float64) float64 {
	return float64(c)
}

type stubRays struct {
	hit   geom.Hit
	ok    bool
	calls int
}

func (s *stubRays) Cast(origin, dir geom.Vec3, maxDist float64, mask geom.LayerMask) (geom.Hit, bool) {
	s.calls++
	return s.hit, s.ok
}
