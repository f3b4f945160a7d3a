package group_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/horde/internal/game/arena"
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

func scoringSettings() group.ScoringSettings {
	return group.ScoringSettings{
		RangeBuffer:                  0.5,
		PreferredFlankAngle:          90,
		AngleSigma:                   45,
		AngleWeight:                  1.5,
		RecentAttackerPenaltySeconds: 2,
	}
}

// flanker stands at the ideal distance on the target's right side, where
// both the distance and angle terms peak: 3.0 + 1.5.
func flanker() *fakeAgent {
	return newAgent(2.25, 0)
}

func TestScore_PeakTerms(t *testing.T) {
	st := group.NewState()
	h := st.Register(flanker())
	calc := group.NewScoreCalculator(scoringSettings(), nil, nil)

	f, ok := calc.Factors(st, h, originTarget(), 100)
	require.True(t, ok)
	assert.InDelta(t, 3.0, f.DistanceTerm, 1e-9)
	assert.InDelta(t, 1.5, f.AngleTerm, 1e-9)
	assert.InDelta(t, 1.5, f.Fairness, 1e-9)
	assert.Equal(t, 1.0, f.Crowd)
	assert.InDelta(t, 4.5*1.5, calc.CalculateScore(st, h, originTarget(), 100), 1e-9)
}

func TestScore_LeftFlankScoresLikeRight(t *testing.T) {
	st := group.NewState()
	right := st.Register(newAgent(2.25, 0))
	left := st.Register(newAgent(-2.25, 10))
	calc := group.NewScoreCalculator(scoringSettings(), nil, nil)
	tgtRight := originTarget()
	tgtLeft := group.Target{Position: geom.Vec3{Z: 10}, Forward: geom.WorldForward}
	assert.InDelta(t,
		calc.CalculateScore(st, right, tgtRight, 100),
		calc.CalculateScore(st, left, tgtLeft, 100),
		1e-9)
}

func TestScore_RangeGate(t *testing.T) {
	st := group.NewState()
	in := st.Register(newAgent(4.5, 0))
	out := st.Register(newAgent(-4.6, 0))
	calc := group.NewScoreCalculator(scoringSettings(), nil, nil)
	assert.Greater(t, calc.CalculateScore(st, in, originTarget(), 0), 0.0)
	assert.Equal(t, 0.0, calc.CalculateScore(st, out, originTarget(), 0))
}

func TestScore_DeadAndUnknownAreZero(t *testing.T) {
	st := group.NewState()
	a := flanker()
	a.dead = true
	h := st.Register(a)
	calc := group.NewScoreCalculator(scoringSettings(), nil, nil)
	assert.Equal(t, 0.0, calc.CalculateScore(st, h, originTarget(), 0))
	assert.Equal(t, 0.0, calc.CalculateScore(st, 12345, originTarget(), 0))
}

func TestScore_WallGatesScore(t *testing.T) {
	w, err := arena.NewWorld(arena.Box("wall", "Wall", 1, -1, 1.5, 1, 3))
	require.NoError(t, err)
	los := group.NewLineOfSightChecker(w, losSettings())
	st := group.NewState()
	h := st.Register(flanker())
	calc := group.NewScoreCalculator(scoringSettings(), los, nil)

	assert.Equal(t, 0.0, calc.CalculateScore(st, h, originTarget(), 50))

	require.True(t, w.Move("wall", 1, 5))
	assert.Greater(t, calc.CalculateScore(st, h, originTarget(), 50), 0.0)
}

func TestScore_FairnessPenalty(t *testing.T) {
	st := group.NewState()
	h := st.Register(flanker())
	calc := group.NewScoreCalculator(scoringSettings(), nil, nil)
	now := 100.0

	st.SetLastAttackTime(h, now-0.1)
	f, ok := calc.Factors(st, h, originTarget(), now)
	require.True(t, ok)
	assert.Equal(t, 0.35, f.Fairness)
	assert.InDelta(t, 4.5*0.35, calc.CalculateScore(st, h, originTarget(), now), 1e-9)

	st.SetLastAttackTime(h, now-10)
	f, _ = calc.Factors(st, h, originTarget(), now)
	assert.Equal(t, 1.5, f.Fairness)
}

func TestFairnessMultiplier(t *testing.T) {
	assert.Equal(t, 0.35, group.FairnessMultiplier(0.1, 2))
	assert.InDelta(t, 1.3, group.FairnessMultiplier(3, 2), 1e-9)
	assert.Equal(t, 1.5, group.FairnessMultiplier(10, 2))
	assert.Equal(t, 1.5, group.FairnessMultiplier(group.NeverAttacked*-1, 2))
}

func TestCrowdMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, group.CrowdMultiplier(0))
	assert.Equal(t, 0.9, group.CrowdMultiplier(1))
	assert.Equal(t, 0.8, group.CrowdMultiplier(2))
	assert.Equal(t, 0.7, group.CrowdMultiplier(3))
	assert.Equal(t, 0.7, group.CrowdMultiplier(9))
}

func TestScore_CrowdCountsCloseAliveNeighbours(t *testing.T) {
	st := group.NewState()
	h := st.Register(flanker())
	st.Register(newAgent(2.25, 1.0))
	st.Register(newAgent(2.25, -1.1))
	dead := newAgent(2.25, 0.5)
	dead.dead = true
	st.Register(dead)
	st.Register(newAgent(2.25, 3))

	f, ok := group.NewScoreCalculator(scoringSettings(), nil, nil).Factors(st, h, originTarget(), 100)
	require.True(t, ok)
	assert.Equal(t, 2, f.Neighbors)
	assert.Equal(t, 0.8, f.Crowd)
}

type doubling struct{ last group.ScoreFactors }

func (d *doubling) AdjustScore(_ group.Handle, score float64, f group.ScoreFactors) float64 {
	d.last = f
	return score * 2
}

type negative struct{}

func (negative) AdjustScore(group.Handle, float64, group.ScoreFactors) float64 { return -5 }

func TestScore_HookAdjusts(t *testing.T) {
	st := group.NewState()
	h := st.Register(flanker())
	hook := &doubling{}
	calc := group.NewScoreCalculator(scoringSettings(), nil, hook)
	assert.InDelta(t, 4.5*1.5*2, calc.CalculateScore(st, h, originTarget(), 100), 1e-9)
	assert.InDelta(t, 2.25, hook.last.Distance, 1e-9)

	neg := group.NewScoreCalculator(scoringSettings(), nil, negative{})
	assert.Equal(t, 0.0, neg.CalculateScore(st, h, originTarget(), 100))
}

func TestProperty_ScoreNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		st := group.NewState()
		x := rapid.Float64Range(-10, 10).Draw(rt, "x")
		z := rapid.Float64Range(-10, 10).Draw(rt, "z")
		reach := rapid.Float64Range(0.5, 5).Draw(rt, "reach")
		a := newAgent(x, z)
		a.reach = reach
		h := st.Register(a)
		now := rapid.Float64Range(0, 100).Draw(rt, "now")
		st.SetLastAttackTime(h, now-rapid.Float64Range(0, 20).Draw(rt, "since"))
		score := group.NewScoreCalculator(scoringSettings(), nil, nil).CalculateScore(st, h, originTarget(), now)
		assert.GreaterOrEqual(rt, score, 0.0)
		assert.LessOrEqual(rt, score, (3.0+1.5)*1.5)
	})
}
