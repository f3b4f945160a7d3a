// Package encounter hosts a group of combatants fighting over one target:
// it builds the arena and roster from a scenario, steps the group director
// and the combatants' behaviour, and runs encounters on a single-goroutine
// tick loop.
package encounter

import (
	"fmt"
	"math"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/agent"
	"github.com/cory-johannsen/horde/internal/game/arena"
	"github.com/cory-johannsen/horde/internal/game/dice"
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

const (
	targetColliderID = "target"
	// approachFraction of attack range is where a slot holder stops closing in.
	approachFraction = 0.8
	arriveTolerance  = 0.1
)

type options struct {
	logger *zap.Logger
	clock  group.Clock
	hook   group.ScoreHook
	jitter dice.Source
}

// Option customises an Encounter.
type Option func(*options)

// WithLogger sets the logger shared by the encounter and its director.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source. A *ManualClock is advanced by Step; any
// other clock is only read.
func WithClock(c group.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithScoreHook installs an attack score post-processor on the director.
func WithScoreHook(h group.ScoreHook) Option {
	return func(o *options) { o.hook = h }
}

// WithJitterSource sets the sector jitter randomness.
func WithJitterSource(src dice.Source) Option {
	return func(o *options) {
		if src != nil {
			o.jitter = src
		}
	}
}

type member struct {
	c          *agent.Combatant
	h          group.Handle
	registered bool
	holding    bool
	retreating bool
	retreatTo  geom.Vec3
	retreatEnd float64
	heldSince  float64
	lastStrike float64
	strikes    int
}

// Encounter is one running fight. It is not safe for concurrent use; drive
// it from a TickLoop.
type Encounter struct {
	id   string
	name string

	world    *arena.World
	roster   *agent.Manager
	director *group.Director
	clock    group.Clock
	manual   *ManualClock
	logger   *zap.Logger

	behavior BehaviorSpec
	release  *vm.Program
	target   *target
	members  []*member

	strikes  int
	releases int
	pushes   int
	deaths   int
}

// NewEncounter builds the arena, spawns the scenario's combatants from
// profiles and registers them with a new group director.
//
// Precondition: sc must be non-nil; every agent group must name a profile in profiles.
// Postcondition: Returns a ready Encounter or a non-nil error.
func NewEncounter(sc *Scenario, profiles map[string]*agent.Profile, settings group.Settings, opts ...Option) (*Encounter, error) {
	if sc == nil {
		return nil, fmt.Errorf("encounter.NewEncounter: scenario must not be nil")
	}
	s := *sc
	s.Agents = append([]AgentSpec(nil), sc.Agents...)
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("encounter.NewEncounter: %w", err)
	}

	o := options{logger: zap.NewNop(), clock: NewManualClock(0), jitter: dice.NewCryptoSource()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(zap.String("encounter", s.ID))

	tag := s.Target.Tag
	if tag == "" {
		tag = settings.LineOfSight.TargetTag
	} else if tag != settings.LineOfSight.TargetTag {
		logger.Info("scenario overrides target tag",
			zap.String("configured", settings.LineOfSight.TargetTag),
			zap.String("scenario", tag),
		)
		settings.LineOfSight.TargetTag = tag
	}

	world, err := buildWorld(&s, tag)
	if err != nil {
		return nil, fmt.Errorf("encounter.NewEncounter: %w", err)
	}
	program, err := compileRelease(s.Behavior.ReleaseWhen)
	if err != nil {
		return nil, fmt.Errorf("encounter.NewEncounter: release_when: %w", err)
	}

	e := &Encounter{
		id:       s.ID,
		name:     s.Name,
		world:    world,
		clock:    o.clock,
		logger:   logger,
		behavior: s.Behavior,
		release:  program,
		target:   newTarget(s.Target),
	}
	if mc, ok := o.clock.(*ManualClock); ok {
		e.manual = mc
	}
	e.roster = agent.NewManager(agent.BlockerFunc(e.blocked))

	dopts := []group.Option{
		group.WithLogger(logger),
		group.WithPushbackObserver(e.onPushed),
		group.WithJitterSource(o.jitter),
	}
	if o.hook != nil {
		dopts = append(dopts, group.WithScoreHook(o.hook))
	}
	e.director = group.NewDirector(settings, group.TargetFunc(e.target.current), world, o.clock, dopts...)

	for i, spec := range s.Agents {
		p, ok := profiles[spec.Profile]
		if !ok {
			return nil, fmt.Errorf("encounter.NewEncounter: agents[%d]: unknown profile %q", i, spec.Profile)
		}
		for n := 0; n < spec.Count; n++ {
			pos := spec.Position.Vec().Add(geom.Vec3{X: float64(n) * spec.Spacing})
			c, err := e.roster.Spawn(p, pos, spec.Facing.Vec())
			if err != nil {
				return nil, fmt.Errorf("encounter.NewEncounter: agents[%d]: %w", i, err)
			}
			h := e.director.RegisterAgent(c)
			e.members = append(e.members, &member{c: c, h: h, registered: true, lastStrike: math.Inf(-1)})
		}
	}

	logger.Info("encounter created",
		zap.String("name", s.Name),
		zap.Int("agents", len(e.members)),
		zap.Int("colliders", len(world.Colliders())),
		zap.Int("slots", e.director.Capacity()),
	)
	return e, nil
}

func buildWorld(s *Scenario, tag string) (*arena.World, error) {
	world, err := arena.NewWorld()
	if err != nil {
		return nil, err
	}
	for _, cs := range s.Colliders {
		c, err := cs.Collider()
		if err != nil {
			return nil, err
		}
		if err := world.Add(c); err != nil {
			return nil, err
		}
	}
	p := s.Target.Position.Vec()
	r := s.Target.Radius
	body, err := arena.ColliderSpec{
		ID:    targetColliderID,
		Tag:   tag,
		Min:   [2]float64{p.X - r, p.Z - r},
		Max:   [2]float64{p.X + r, p.Z + r},
		MinY:  p.Y,
		MaxY:  p.Y + s.Target.Height,
		Layer: s.Target.Layer,
	}.Collider()
	if err != nil {
		return nil, fmt.Errorf("target body: %w", err)
	}
	return world, world.Add(body)
}

// blocked keeps combatants out of walls but lets them brush the target's body.
func (e *Encounter) blocked(p geom.Vec3) bool {
	id, ok := e.world.Occupant(p)
	return ok && id != targetColliderID
}

// ID returns the scenario ID.
func (e *Encounter) ID() string { return e.id }

// Director exposes the group coordinator.
func (e *Encounter) Director() *group.Director { return e.director }

// Combatants returns every spawned combatant in spawn order, dead ones included.
func (e *Encounter) Combatants() []*agent.Combatant { return e.roster.All() }

// Done reports whether the fight is over: the target fell or no combatant is left standing.
func (e *Encounter) Done() bool {
	return !e.target.alive() || e.roster.Alive() == 0
}

// Step advances the encounter by dt: it moves the target, lets the director
// run when due, drives each combatant's behaviour and then moves them.
func (e *Encounter) Step(dt time.Duration) {
	if e.manual != nil {
		e.manual.Advance(dt)
	}
	now := e.clock.Now()
	sec := dt.Seconds()

	e.target.step(sec)
	e.world.Move(targetColliderID, e.target.pos.X-e.target.spec.Radius, e.target.pos.Z-e.target.spec.Radius)

	e.director.Update()
	slotsOpen := len(e.director.SlotHolders()) < e.director.Capacity()
	for _, m := range e.members {
		if m.registered {
			e.behave(m, now, slotsOpen)
		}
	}
	for _, m := range e.members {
		m.c.Step(sec)
	}
	e.retaliate(now)
}

// behave drives one combatant. Idle combatants take the director's stance,
// closing to striking distance along it while a slot is free so the selector
// has candidates in range.
func (e *Encounter) behave(m *member, now float64, slotsOpen bool) {
	c := m.c
	if !e.director.CanAttack(m.h) {
		m.holding = false
		if m.retreating {
			// The director re-targets idle agents on its own ticks; keep
			// backing off until the retreat point is reached or time runs out.
			if now < m.retreatEnd && geom.HorizontalDistance(c.Position(), m.retreatTo) > arriveTolerance {
				c.MoveTo(m.retreatTo)
				return
			}
			m.retreating = false
		}
		p, ok := e.director.GetDesiredPosition(m.h)
		if !ok {
			return
		}
		if slotsOpen {
			dir := geom.FlatDirection(p.Sub(e.target.pos), e.target.forward)
			p = e.target.pos.Add(dir.Scale(c.AttackRange() * approachFraction))
			p.Y = c.Position().Y
		}
		c.MoveTo(p)
		return
	}

	if !m.holding {
		m.holding = true
		m.retreating = false
		m.heldSince = now
		m.strikes = 0
	}

	tpos := e.target.pos
	dist := geom.HorizontalDistance(c.Position(), tpos)
	if dist > c.AttackRange() {
		dir := geom.FlatDirection(c.Position().Sub(tpos), e.target.forward)
		c.MoveTo(tpos.Add(dir.Scale(c.AttackRange() * approachFraction)))
	} else {
		c.MoveTo(c.Position())
		c.Face(tpos)
		if e.target.alive() && now-m.lastStrike >= e.behavior.StrikeInterval {
			m.lastStrike = now
			m.strikes++
			e.strikes++
			if e.target.damage(e.behavior.StrikeDamage) {
				e.logger.Info("target defeated", zap.String("by", c.ID), zap.Float64("at", now))
			}
		}
	}

	cur, maximum := c.HP()
	env := ReleaseEnv{
		HeldFor:     now - m.heldSince,
		Distance:    dist,
		AttackRange: c.AttackRange(),
		Now:         now,
		Strikes:     m.strikes,
		Health:      float64(cur) / float64(maximum),
	}
	out, err := expr.Run(e.release, env)
	fire, _ := out.(bool)
	if err != nil {
		e.logger.Warn("release rule failed, releasing slot", zap.String("agent", c.ID), zap.Error(err))
		fire = true
	}
	if fire {
		e.retreat(m, env)
	}
}

func (e *Encounter) retreat(m *member, env ReleaseEnv) {
	c := m.c
	dir := geom.FlatDirection(c.Position().Sub(e.target.pos), e.target.forward)
	e.director.ReleaseAttackSlot(m.h)
	m.holding = false
	m.retreating = true
	m.retreatTo = c.Position().Add(dir.Scale(e.behavior.RetreatDistance))
	m.retreatEnd = env.Now + retreatTimeout(e.behavior.RetreatDistance, c.MoveSpeed())
	e.releases++
	c.MoveTo(m.retreatTo)
	e.logger.Debug("attack slot released",
		zap.String("agent", c.ID),
		zap.Float64("held_for", env.HeldFor),
		zap.Int("strikes", env.Strikes),
	)
	e.director.RequestPushback(m.h, dir, e.behavior.RetreatDistance)
}

// retreatTimeout bounds a retreat so a combatant backing into a wall rejoins
// the group.
func retreatTimeout(distance, speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return 2 * distance / speed
}

func (e *Encounter) onPushed(h group.Handle, delta geom.Vec3) {
	e.pushes++
	e.logger.Debug("agent pushed", zap.Uint64("handle", uint64(h)), zap.Float64("distance", delta.Len()))
}

// retaliate lets the target hit the nearest living combatant within reach
// and inside its front arc.
func (e *Encounter) retaliate(now float64) {
	t := e.target
	if t.spec.Damage <= 0 || !t.alive() || now-t.lastAttack < t.spec.AttackInterval {
		return
	}
	var victim *member
	best := math.Inf(1)
	for _, m := range e.members {
		if !m.registered || !m.c.IsAlive() {
			continue
		}
		d := geom.HorizontalDistance(m.c.Position(), t.pos)
		if d > t.spec.Reach || d >= best {
			continue
		}
		if math.Abs(geom.SignedAngle(t.forward, m.c.Position().Sub(t.pos))) > t.spec.FrontArc {
			continue
		}
		victim, best = m, d
	}
	if victim == nil {
		return
	}
	t.lastAttack = now
	if !victim.c.Damage(t.spec.Damage) {
		e.logger.Debug("combatant hit",
			zap.String("agent", victim.c.ID),
			zap.String("health", victim.c.HealthDescription()),
		)
		return
	}
	e.deaths++
	victim.registered = false
	victim.holding = false
	e.director.UnregisterAgent(victim.h)
	e.logger.Info("combatant killed", zap.String("agent", victim.c.ID), zap.Float64("at", now))
}

// AgentSnapshot is one combatant's state at a point in time.
type AgentSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  geom.Vec3 `json:"position"`
	Desired   geom.Vec3 `json:"desired"`
	Angle     float64   `json:"angle"`
	Attacking bool      `json:"attacking"`
	Alive     bool      `json:"alive"`
	Health    string    `json:"health"`
	Score     float64   `json:"score"`
}

// Snapshot is the encounter's state at a point in time.
type Snapshot struct {
	ID          string          `json:"id"`
	Now         float64         `json:"now"`
	Target      geom.Vec3       `json:"target"`
	TargetHP    int             `json:"target_hp"`
	SlotHolders int             `json:"slot_holders"`
	Strikes     int             `json:"strikes"`
	Releases    int             `json:"releases"`
	Pushes      int             `json:"pushes"`
	Deaths      int             `json:"deaths"`
	Agents      []AgentSnapshot `json:"agents"`
}

// Snapshot captures positions, desired positions and slot ownership.
func (e *Encounter) Snapshot() Snapshot {
	snap := Snapshot{
		ID:          e.id,
		Now:         e.clock.Now(),
		Target:      e.target.pos,
		TargetHP:    e.target.hp,
		SlotHolders: len(e.director.SlotHolders()),
		Strikes:     e.strikes,
		Releases:    e.releases,
		Pushes:      e.pushes,
		Deaths:      e.deaths,
	}
	for _, m := range e.members {
		as := AgentSnapshot{
			ID:       m.c.ID,
			Name:     m.c.Name,
			Position: m.c.Position(),
			Alive:    m.c.IsAlive(),
			Health:   m.c.HealthDescription(),
		}
		if m.registered {
			as.Desired, _ = e.director.GetDesiredPosition(m.h)
			as.Angle, _ = e.director.DesiredAngle(m.h)
			as.Attacking = e.director.CanAttack(m.h)
			as.Score = e.director.Score(m.h)
		}
		snap.Agents = append(snap.Agents, as)
	}
	return snap
}

// LogSnapshot writes a one-line summary and one debug line per agent.
func (e *Encounter) LogSnapshot(msg string) {
	snap := e.Snapshot()
	e.logger.Info(msg,
		zap.Float64("now", snap.Now),
		zap.Int("target_hp", snap.TargetHP),
		zap.Int("slot_holders", snap.SlotHolders),
		zap.Int("strikes", snap.Strikes),
		zap.Int("releases", snap.Releases),
		zap.Int("pushes", snap.Pushes),
		zap.Int("deaths", snap.Deaths),
	)
	for _, a := range snap.Agents {
		e.logger.Debug("agent state",
			zap.String("agent", a.ID),
			zap.Float64("x", a.Position.X),
			zap.Float64("z", a.Position.Z),
			zap.Float64("angle", a.Angle),
			zap.Bool("attacking", a.Attacking),
			zap.String("health", a.Health),
		)
	}
}
