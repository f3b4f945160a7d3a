package group

import (
	"math"
	"sort"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// maxInwardPull caps how far one pass pulls an agent that is too far away.
const maxInwardPull = 2.0

// PositionAssigner turns desired angles and distance bands into world positions.
type PositionAssigner struct {
	sep    *SeparationCalculator
	weight float64
}

// NewPositionAssigner creates an assigner. sep may be nil to disable separation.
func NewPositionAssigner(sep *SeparationCalculator, cfg PositioningSettings) *PositionAssigner {
	return &PositionAssigner{sep: sep, weight: cfg.SeparationWeight}
}

// SelectRelocationCandidates returns alive agents without a slot, in registration order.
func (a *PositionAssigner) SelectRelocationCandidates(st *State, slots *SlotManager) []Handle {
	var out []Handle
	for _, h := range st.order {
		if slots.HasSlot(h) {
			continue
		}
		if _, ok := st.alive(h); ok {
			out = append(out, h)
		}
	}
	return out
}

// SortByDistanceToTarget orders hs closest-first in place. Unknown handles sort last.
func (a *PositionAssigner) SortByDistanceToTarget(st *State, hs []Handle, targetPos geom.Vec3) {
	dist := func(h Handle) float64 {
		ag, ok := st.Agent(h)
		if !ok {
			return math.Inf(1)
		}
		return geom.HorizontalDistanceSq(ag.Position(), targetPos)
	}
	sort.SliceStable(hs, func(i, j int) bool { return dist(hs[i]) < dist(hs[j]) })
}

// ApplyDistanceBand moves pos into the [minDist, maxDist] band around
// targetPos. Too close: placed exactly minDist out along the radial. Too far:
// pulled in by at most 2 units. Y is preserved.
func ApplyDistanceBand(pos, targetPos geom.Vec3, minDist, maxDist float64) geom.Vec3 {
	if maxDist < minDist {
		maxDist = minDist
	}
	offset := pos.Sub(targetPos).Horizontal()
	dist := offset.Len()
	switch {
	case dist < minDist:
		out := geom.FlatDirection(offset, geom.WorldForward)
		p := targetPos.Add(out.Scale(minDist))
		p.Y = pos.Y
		return p
	case dist > maxDist:
		in := offset.Scale(-1 / dist)
		p := pos.Add(in.Scale(math.Min(maxInwardPull, dist-maxDist)))
		p.Y = pos.Y
		return p
	}
	return pos
}

// CalculatePositions computes and stores the desired position of every alive
// agent in hs: band correction, then placement on the agent's desired angle
// at its band-clamped distance, then weighted separation. The agent's own
// height is kept.
func (a *PositionAssigner) CalculatePositions(st *State, hs []Handle, target Target) {
	fwd := target.flatForward()
	for _, h := range hs {
		ag, ok := st.alive(h)
		if !ok {
			continue
		}
		pos := ag.Position()
		minD, maxD := ag.PreferredMinDistance(), ag.PreferredMaxDistance()
		desired := ApplyDistanceBand(pos, target.Position, minD, maxD)

		if angle, ok := st.DesiredAngle(h); ok {
			radius := geom.Clamp(geom.HorizontalDistance(pos, target.Position), minD, math.Max(minD, maxD))
			desired = target.Position.Add(geom.RotateYaw(fwd, angle).Scale(radius))
		}
		if a.sep != nil && a.weight != 0 {
			desired = desired.Add(a.sep.ComputeSeparation(st, h).Scale(a.weight))
		}
		desired.Y = pos.Y
		st.SetDesiredPosition(h, desired)
	}
}

// GetDesiredPosition returns the stored stance for h. ok is false when h is
// not registered.
func (a *PositionAssigner) GetDesiredPosition(st *State, h Handle) (geom.Vec3, bool) {
	return st.DesiredPosition(h)
}
