package group

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

const (
	// rangeGateSlack widens the eligibility range beyond attack range plus buffer.
	rangeGateSlack     = 2.0
	idealRangeOffset   = 0.25
	distanceTermWeight = 3.0

	recentAttackerMultiplier = 0.35
	waitingBonusWindow       = 5.0
	waitingBonusMax          = 0.5

	crowdRadius = 1.2
)

// crowdMultipliers indexes by neighbour count; counts past the end use the last entry.
var crowdMultipliers = [...]float64{1.0, 0.9, 0.8, 0.7}

// ScoreFactors is the breakdown behind a positive attack score.
type ScoreFactors struct {
	Distance     float64
	Angle        float64
	Neighbors    int
	DistanceTerm float64
	AngleTerm    float64
	Fairness     float64
	Crowd        float64
}

// ScoreHook post-processes positive attack scores, e.g. from a script.
// Negative results are treated as 0.
type ScoreHook interface {
	AdjustScore(h Handle, score float64, f ScoreFactors) float64
}

// Scorer rates how suitable an agent is to take an attack slot. 0 means ineligible.
type Scorer interface {
	CalculateScore(st *State, h Handle, target Target, now float64) float64
}

// ScoreCalculator is the multi-factor Scorer.
type ScoreCalculator struct {
	cfg  ScoringSettings
	los  *LineOfSightChecker
	hook ScoreHook
}

// NewScoreCalculator creates a calculator. los may be nil to skip the
// visibility gate; hook may be nil.
func NewScoreCalculator(cfg ScoringSettings, los *LineOfSightChecker, hook ScoreHook) *ScoreCalculator {
	return &ScoreCalculator{cfg: cfg, los: los, hook: hook}
}

// CalculateScore returns (distance term + angle term) * fairness * crowd for
// h, or 0 when h is unknown, dead, out of range or cannot see the target.
func (c *ScoreCalculator) CalculateScore(st *State, h Handle, target Target, now float64) float64 {
	f, ok := c.Factors(st, h, target, now)
	if !ok {
		return 0
	}
	score := (f.DistanceTerm + f.AngleTerm) * f.Fairness * f.Crowd
	if c.hook != nil && score > 0 {
		score = math.Max(0, c.hook.AdjustScore(h, score, f))
	}
	return score
}

// Factors computes the score breakdown. ok is false when h is ineligible.
func (c *ScoreCalculator) Factors(st *State, h Handle, target Target, now float64) (ScoreFactors, bool) {
	a, ok := st.alive(h)
	if !ok {
		return ScoreFactors{}, false
	}
	pos := a.Position()
	attackRange := a.AttackRange()
	dist := geom.HorizontalDistance(pos, target.Position)
	if dist > attackRange+c.cfg.RangeBuffer+rangeGateSlack {
		return ScoreFactors{}, false
	}
	if c.los != nil && !c.los.HasLineOfSight(pos, target.Position) {
		return ScoreFactors{}, false
	}

	f := ScoreFactors{Distance: dist, Angle: target.angleOf(pos)}

	ideal := attackRange + idealRangeOffset
	f.DistanceTerm = geom.Clamp01(1-math.Abs(dist-ideal)/(attackRange+1)) * distanceTermWeight

	sigma := math.Max(c.cfg.AngleSigma, 1e-3)
	delta := geom.DeltaAngle(c.cfg.PreferredFlankAngle, math.Abs(f.Angle))
	f.AngleTerm = math.Exp(-(delta*delta)/(2*sigma*sigma)) * c.cfg.AngleWeight

	f.Fairness = FairnessMultiplier(now-st.LastAttackTime(h), c.cfg.RecentAttackerPenaltySeconds)

	f.Neighbors = countNeighbors(st, h, pos, crowdRadius)
	f.Crowd = CrowdMultiplier(f.Neighbors)
	return f, true
}

// FairnessMultiplier suppresses agents that attacked within penalty seconds
// and rewards long waits with up to +50%.
func FairnessMultiplier(sinceLastAttack, penalty float64) float64 {
	if sinceLastAttack < penalty {
		return recentAttackerMultiplier
	}
	return 1 + geom.Clamp01(sinceLastAttack/waitingBonusWindow)*waitingBonusMax
}

// CrowdMultiplier returns 1.0, 0.9, 0.8 or 0.7 for 0, 1, 2 or 3+ neighbours.
func CrowdMultiplier(neighbors int) float64 {
	if neighbors < 0 {
		neighbors = 0
	}
	if neighbors >= len(crowdMultipliers) {
		neighbors = len(crowdMultipliers) - 1
	}
	return crowdMultipliers[neighbors]
}

func countNeighbors(st *State, self Handle, pos geom.Vec3, radius float64) int {
	radiusSq := radius * radius
	n := 0
	for _, h := range st.order {
		if h == self {
			continue
		}
		other, ok := st.alive(h)
		if !ok {
			continue
		}
		if geom.HorizontalDistanceSq(pos, other.Position()) <= radiusSq {
			n++
		}
	}
	return n
}
