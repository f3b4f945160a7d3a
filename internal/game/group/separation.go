package group

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// SeparationCalculator sums pairwise repulsion from nearby agents.
type SeparationCalculator struct {
	radius float64
}

// NewSeparationCalculator creates a calculator with the given influence radius.
func NewSeparationCalculator(cfg SeparationSettings) *SeparationCalculator {
	return &SeparationCalculator{radius: cfg.Radius}
}

// ComputeSeparation returns the unweighted sum of
// normalize(self - other) * (1 - distance/radius) over every other alive
// agent within radius on the ground plane.
func (c *SeparationCalculator) ComputeSeparation(st *State, self Handle) geom.Vec3 {
	me, ok := st.Agent(self)
	if !ok || c.radius <= 0 {
		return geom.Vec3{}
	}
	pos := me.Position()
	radiusSq := c.radius * c.radius

	var force geom.Vec3
	for _, h := range st.order {
		if h == self {
			continue
		}
		other, ok := st.alive(h)
		if !ok {
			continue
		}
		away := pos.Sub(other.Position()).Horizontal()
		distSq := away.LenSq()
		if distSq >= radiusSq || distSq < geom.MinDistance*geom.MinDistance {
			continue
		}
		dist := math.Sqrt(distSq)
		force = force.Add(away.Scale(1 / dist).Scale(1 - dist/c.radius))
	}
	return force
}
