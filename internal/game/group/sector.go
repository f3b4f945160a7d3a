package group

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/dice"
	"github.com/cory-johannsen/horde/internal/game/geom"
)

const (
	nearOccupancyWeight = 1.5
	farOccupancyWeight  = 0.5
	tieEpsilon          = 1e-9
)

// SectorCalculator divides the ring around the target into equal sectors
// and measures how crowded each one is.
type SectorCalculator struct {
	count    int
	step     float64
	scanDist float64
	jitter   float64
	src      dice.Source
}

// NewSectorCalculator creates a calculator. A count below 1 becomes 1. A nil
// src disables jitter.
func NewSectorCalculator(cfg SectorSettings, src dice.Source) *SectorCalculator {
	count := cfg.Count
	if count < 1 {
		count = 1
	}
	return &SectorCalculator{
		count:    count,
		step:     360 / float64(count),
		scanDist: cfg.ScanDistance(),
		jitter:   math.Abs(cfg.JitterDegrees),
		src:      src,
	}
}

// Count returns the number of sectors.
func (c *SectorCalculator) Count() int { return c.count }

// SectorIndex maps a signed angle to its sector.
func (c *SectorCalculator) SectorIndex(angle float64) int {
	idx := int(math.Floor((angle + 180) / 360 * float64(c.count)))
	if idx < 0 {
		return 0
	}
	if idx >= c.count {
		return c.count - 1
	}
	return idx
}

// SectorToAngle returns the centre angle of sector index.
func (c *SectorCalculator) SectorToAngle(index int) float64 {
	return -180 + c.step*(float64(index)+0.5)
}

// CalculateSectorOccupancy scores each sector by the alive agents within
// the scan distance of the target. Closer agents weigh more, from 1.5 at the
// target down to 0.5 at the scan edge.
//
// Postcondition: len(result) == Count().
func (c *SectorCalculator) CalculateSectorOccupancy(st *State, target Target) []float64 {
	occ := make([]float64, c.count)
	if c.scanDist <= 0 {
		return occ
	}
	for _, h := range st.order {
		a, ok := st.alive(h)
		if !ok {
			continue
		}
		pos := a.Position()
		dist := geom.HorizontalDistance(pos, target.Position)
		if dist > c.scanDist {
			continue
		}
		idx := c.SectorIndex(target.angleOf(pos))
		occ[idx] += geom.Lerp(nearOccupancyWeight, farOccupancyWeight, geom.Clamp01(dist/c.scanDist))
	}
	return occ
}

// SelectLeastOccupiedSector returns the sector minimising
// occupancy + lerp(0, 1-|angle|/180, avoidFrontBias). Equal costs prefer the
// sector angularly farthest from existing occupancy, then the lowest index.
func (c *SectorCalculator) SelectLeastOccupiedSector(occupancy []float64, avoidFrontBias float64) int {
	n := len(occupancy)
	if n == 0 {
		return 0
	}
	best := 0
	bestCost := math.Inf(1)
	bestPressure := math.Inf(1)
	for s := 0; s < n; s++ {
		angle := c.SectorToAngle(s)
		cost := occupancy[s] + geom.Lerp(0, 1-math.Abs(geom.DeltaAngle(0, angle))/180, avoidFrontBias)
		switch {
		case cost < bestCost-tieEpsilon:
			best, bestCost, bestPressure = s, cost, c.pressure(occupancy, angle)
		case cost <= bestCost+tieEpsilon:
			if p := c.pressure(occupancy, angle); p < bestPressure-tieEpsilon {
				best, bestPressure = s, p
			}
		}
	}
	return best
}

// pressure weighs every occupied sector by its angular closeness to angle.
func (c *SectorCalculator) pressure(occupancy []float64, angle float64) float64 {
	var p float64
	for o, v := range occupancy {
		if v == 0 {
			continue
		}
		p += v * (1 - math.Abs(geom.DeltaAngle(angle, c.SectorToAngle(o)))/180)
	}
	return p
}

// ApplyJitter offsets angle by a uniform amount in [-jitter, jitter].
func (c *SectorCalculator) ApplyJitter(angle float64) float64 {
	if c.src == nil || c.jitter == 0 {
		return angle
	}
	return angle + dice.Uniform(c.src, -c.jitter, c.jitter)
}
