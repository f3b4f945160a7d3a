package group

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// minPush is the smallest displacement worth applying.
const minPush = 0.01

// PushedFunc is notified for every agent displaced by a pushback.
type PushedFunc func(h Handle, delta geom.Vec3)

// PushbackCoordinator nudges idle agents standing behind a retreating agent.
// The effect is single-hop: displaced agents do not push others in turn.
type PushbackCoordinator struct {
	maxRange   float64
	cosCone    float64
	dampening  float64
	onPushed   PushedFunc
	processing bool
	logger     *zap.Logger
}

// NewPushbackCoordinator creates a coordinator. onPushed may be nil.
func NewPushbackCoordinator(cfg PushbackSettings, onPushed PushedFunc, logger *zap.Logger) *PushbackCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushbackCoordinator{
		maxRange:  cfg.MaxRange,
		cosCone:   math.Cos(geom.Clamp(cfg.ConeSemiAngle, 0, 180) * math.Pi / 180),
		dampening: cfg.Dampening,
		onPushed:  onPushed,
		logger:    logger,
	}
}

// ProcessPushback shifts the desired position of every other alive agent
// without a slot that stands within maxRange of pusher and inside the cone
// around direction. The shift is direction * distance * (1 - d/maxRange) *
// dampening. A call made while another is in progress is ignored.
//
// Postcondition: slot holders' desired positions are untouched.
func (p *PushbackCoordinator) ProcessPushback(st *State, slots *SlotManager, pusher Handle, direction geom.Vec3, distance float64) {
	if p.processing {
		p.logger.Debug("pushback ignored: already processing", zap.Uint64("pusher", uint64(pusher)))
		return
	}
	if distance < minPush || p.maxRange <= 0 {
		return
	}
	src, ok := st.Agent(pusher)
	if !ok {
		return
	}
	dir := direction.Horizontal()
	if dir.IsDegenerate() {
		return
	}
	dir = dir.Normalized()

	p.processing = true
	defer func() { p.processing = false }()

	origin := src.Position()
	rangeSq := p.maxRange * p.maxRange
	for _, h := range st.Handles() {
		if h == pusher {
			continue
		}
		other, ok := st.alive(h)
		if !ok {
			continue
		}
		offset := other.Position().Sub(origin).Horizontal()
		distSq := offset.LenSq()
		if distSq > rangeSq {
			continue
		}
		d := math.Sqrt(distSq)
		if d >= geom.MinDistance && offset.Scale(1/d).Dot(dir) < p.cosCone-1e-12 {
			continue
		}
		if slots.HasSlot(h) {
			continue
		}
		amount := distance * (1 - d/p.maxRange) * p.dampening
		if amount <= minPush {
			continue
		}
		delta := dir.Scale(amount)
		cur, _ := st.DesiredPosition(h)
		st.SetDesiredPosition(h, cur.Add(delta))
		p.logger.Debug("agent pushed back",
			zap.Uint64("pusher", uint64(pusher)),
			zap.Uint64("handle", uint64(h)),
			zap.Float64("amount", amount),
		)
		if p.onPushed != nil {
			p.onPushed(h, delta)
		}
	}
}
