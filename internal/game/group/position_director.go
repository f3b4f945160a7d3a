package group

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// PositionDirector decides where around the target each agent should stand.
type PositionDirector struct {
	sectors         *SectorCalculator
	assigner        *PositionAssigner
	relocatePerTick int
	avoidFrontBias  float64
	hold            float64
	logger          *zap.Logger
}

// NewPositionDirector creates a director over the given calculators.
//
// Precondition: sectors and assigner must be non-nil.
func NewPositionDirector(sectors *SectorCalculator, assigner *PositionAssigner, sc SectorSettings, pc PositioningSettings, logger *zap.Logger) *PositionDirector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionDirector{
		sectors:         sectors,
		assigner:        assigner,
		relocatePerTick: pc.RelocatePerTick,
		avoidFrontBias:  geom.Clamp01(sc.AvoidFrontBias),
		hold:            math.Max(0, pc.AngleHoldTime.Seconds()),
		logger:          logger,
	}
}

// Update runs one positioning pass:
//  1. occupancy is measured over all agents;
//  2. every slot holder's angle is locked to where it currently stands;
//  3. up to relocatePerTick idle agents, closest first, move to the least
//     occupied sector, each pick raising that sector's occupancy by 1;
//  4. world positions are recomputed for everyone.
func (p *PositionDirector) Update(st *State, slots *SlotManager, target Target, now float64) {
	target.Forward = target.flatForward()
	occ := p.sectors.CalculateSectorOccupancy(st, target)

	for _, h := range slots.Holders() {
		if a, ok := st.Agent(h); ok {
			st.SetDesiredAngle(h, target.angleOf(a.Position()))
		}
	}

	cands := p.assigner.SelectRelocationCandidates(st, slots)
	p.assigner.SortByDistanceToTarget(st, cands, target.Position)
	moved := 0
	for _, h := range cands {
		if moved >= p.relocatePerTick {
			break
		}
		if now-st.angleAssignedAt(h) < p.hold {
			continue
		}
		sector := p.sectors.SelectLeastOccupiedSector(occ, p.avoidFrontBias)
		angle := p.sectors.ApplyJitter(p.sectors.SectorToAngle(sector))
		st.SetDesiredAngle(h, angle)
		st.markAngleAssigned(h, now)
		occ[sector]++
		moved++
		p.logger.Debug("agent relocated",
			zap.Uint64("handle", uint64(h)),
			zap.Int("sector", sector),
			zap.Float64("angle", angle),
		)
	}

	p.assigner.CalculatePositions(st, st.order, target)
}
