package group

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/dice"
	"github.com/cory-johannsen/horde/internal/game/geom"
)

// Director is the group's public face. It owns the agent table and the slot
// pool and runs positioning then attacker selection once per tick.
//
// A Director is not safe for concurrent use.
type Director struct {
	state     *State
	slots     *SlotManager
	los       *LineOfSightChecker
	sectors   *SectorCalculator
	scorer    *ScoreCalculator
	selector  *AttackerSelector
	assigner  *PositionAssigner
	positions *PositionDirector
	pushback  *PushbackCoordinator

	target   TargetProvider
	clock    Clock
	interval float64
	nextTick float64

	logger   *zap.Logger
	hook     ScoreHook
	observer PushedFunc
	jitter   dice.Source
}

// Option customises a Director.
type Option func(*Director)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Director) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithScoreHook installs a post-processor for attack scores.
func WithScoreHook(h ScoreHook) Option {
	return func(d *Director) { d.hook = h }
}

// WithPushbackObserver installs a sink notified for each agent displaced by
// RequestPushback.
func WithPushbackObserver(fn PushedFunc) Option {
	return func(d *Director) { d.observer = fn }
}

// WithJitterSource sets the randomness used to jitter sector angles. The
// default is crypto-backed.
func WithJitterSource(src dice.Source) Option {
	return func(d *Director) { d.jitter = src }
}

// NewDirector wires the group components.
//
// Precondition: target and clock must be non-nil. rays may be nil, in which
// case nothing obstructs line of sight.
// Postcondition: capacity is at least 1.
func NewDirector(cfg Settings, target TargetProvider, rays Raycaster, clock Clock, opts ...Option) *Director {
	d := &Director{
		state:    NewState(),
		target:   target,
		clock:    clock,
		interval: math.Max(0, cfg.Tick.Interval.Seconds()),
		nextTick: math.Inf(-1),
		logger:   zap.NewNop(),
		jitter:   dice.NewCryptoSource(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if cfg.Slots.Capacity < 1 {
		d.logger.Warn("attack slot capacity below 1, clamping",
			zap.Int("configured", cfg.Slots.Capacity),
		)
	}

	d.slots = NewSlotManager(cfg.Slots.Capacity)
	d.los = NewLineOfSightChecker(rays, cfg.LineOfSight)
	d.sectors = NewSectorCalculator(cfg.Sectors, d.jitter)
	d.scorer = NewScoreCalculator(cfg.Scoring, d.los, d.hook)
	d.selector = NewAttackerSelector(d.scorer, d.slots, cfg.Selection, d.logger)
	d.assigner = NewPositionAssigner(NewSeparationCalculator(cfg.Separation), cfg.Positioning)
	d.positions = NewPositionDirector(d.sectors, d.assigner, cfg.Sectors, cfg.Positioning, d.logger)
	d.pushback = NewPushbackCoordinator(cfg.Pushback, d.onPushed, d.logger)
	return d
}

// RegisterAgent adds a to the group and returns its handle. A nil agent
// returns the zero Handle.
func (d *Director) RegisterAgent(a Agent) Handle {
	h := d.state.Register(a)
	if h == 0 {
		d.logger.Debug("register ignored: nil agent")
		return 0
	}
	d.logger.Debug("agent registered", zap.Uint64("handle", uint64(h)), zap.Int("agents", d.state.Len()))
	return h
}

// UnregisterAgent releases any slot h holds and forgets it.
func (d *Director) UnregisterAgent(h Handle) {
	d.slots.ReleaseSlot(h)
	if !d.state.Unregister(h) {
		d.logger.Debug("unregister ignored: unknown handle", zap.Uint64("handle", uint64(h)))
		return
	}
	d.logger.Debug("agent unregistered", zap.Uint64("handle", uint64(h)), zap.Int("agents", d.state.Len()))
}

// RequestAttackSlot grants h a slot if one is free. Unknown or dead agents
// are refused. A fresh grant stamps h's last attack time.
func (d *Director) RequestAttackSlot(h Handle) bool {
	if _, ok := d.state.alive(h); !ok {
		d.logger.Debug("slot request ignored: unknown or dead agent", zap.Uint64("handle", uint64(h)))
		return false
	}
	if d.slots.HasSlot(h) {
		return true
	}
	if !d.slots.RequestSlot(h) {
		return false
	}
	d.state.SetLastAttackTime(h, d.clock.Now())
	return true
}

// ReleaseAttackSlot returns h's slot, if any.
func (d *Director) ReleaseAttackSlot(h Handle) {
	d.slots.ReleaseSlot(h)
}

// CanAttack reports whether h currently holds a slot.
func (d *Director) CanAttack(h Handle) bool {
	return d.state.Valid(h) && d.slots.HasSlot(h)
}

// GetDesiredPosition returns where h should stand. ok is false for an
// unknown handle.
func (d *Director) GetDesiredPosition(h Handle) (geom.Vec3, bool) {
	return d.assigner.GetDesiredPosition(d.state, h)
}

// DesiredAngle returns h's target-relative angle.
func (d *Director) DesiredAngle(h Handle) (float64, bool) {
	return d.state.DesiredAngle(h)
}

// RequestPushback nudges idle agents behind a retreating pusher. It may be
// called between ticks; a call made from within a pushback observer is ignored.
func (d *Director) RequestPushback(pusher Handle, direction geom.Vec3, distance float64) {
	if !d.state.Valid(pusher) {
		d.logger.Debug("pushback ignored: unknown pusher", zap.Uint64("handle", uint64(pusher)))
		return
	}
	d.pushback.ProcessPushback(d.state, d.slots, pusher, direction, distance)
}

func (d *Director) onPushed(h Handle, delta geom.Vec3) {
	if m := d.state.mover(h); m != nil {
		if p, ok := d.state.DesiredPosition(h); ok {
			m.MoveTo(p)
		}
	}
	if d.observer != nil {
		d.observer(h, delta)
	}
}

// Update runs Tick if the tick interval has elapsed. It reports whether a
// tick ran.
func (d *Director) Update() bool {
	now := d.clock.Now()
	if now < d.nextTick {
		return false
	}
	d.nextTick = now + d.interval
	d.tick(now)
	return true
}

// Tick runs a full coordination pass now. Without a target it only drops
// slots held by dead agents.
func (d *Director) Tick() {
	d.tick(d.clock.Now())
}

func (d *Director) tick(now float64) {
	for _, h := range d.slots.Holders() {
		if _, ok := d.state.alive(h); !ok {
			d.slots.ReleaseSlot(h)
			d.logger.Debug("slot released: holder gone", zap.Uint64("handle", uint64(h)))
		}
	}

	if d.target == nil || d.state.Len() == 0 {
		return
	}
	target, ok := d.target.Target()
	if !ok {
		return
	}

	d.positions.Update(d.state, d.slots, target, now)
	d.selector.AssignAttackersByScore(d.state, target, now)

	for _, h := range d.state.Handles() {
		if d.slots.HasSlot(h) {
			continue
		}
		m := d.state.mover(h)
		if m == nil {
			continue
		}
		if _, alive := d.state.alive(h); !alive {
			continue
		}
		if p, ok := d.state.DesiredPosition(h); ok {
			m.MoveTo(p)
		}
	}
}

// SlotHolders returns the handles holding slots in acquisition order.
func (d *Director) SlotHolders() []Handle { return d.slots.Holders() }

// Capacity returns the slot pool size.
func (d *Director) Capacity() int { return d.slots.Capacity() }

// Len returns the number of registered agents.
func (d *Director) Len() int { return d.state.Len() }

// Handles returns every registered handle in registration order.
func (d *Director) Handles() []Handle { return d.state.Handles() }

// Score returns h's current attack score, or 0 without a target.
func (d *Director) Score(h Handle) float64 {
	if d.target == nil {
		return 0
	}
	target, ok := d.target.Target()
	if !ok {
		return 0
	}
	return d.scorer.CalculateScore(d.state, h, target, d.clock.Now())
}
