package group

import (
	"math"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// NeverAttacked is the last-attack time of an agent that has not yet held a slot.
var NeverAttacked = math.Inf(-1)

// Handle is an opaque reference to a registered agent. The zero Handle is
// never issued. A handle stays valid until its agent is unregistered; a
// recycled table slot is issued under a new generation so stale handles
// never alias a newer agent.
type Handle uint64

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) index() (uint32, bool) {
	low := uint32(h)
	if low == 0 {
		return 0, false
	}
	return low - 1, true
}

func (h Handle) gen() uint32 { return uint32(h >> 32) }

type record struct {
	agent Agent
	mover Mover
	gen   uint32
	live  bool

	desiredAngle    float64
	desiredPosition geom.Vec3
	lastAttackTime  float64
	angleAssignedAt float64
}

// State is the per-group agent table. It owns every per-agent value the
// coordinator tracks: desired angle, desired position and last attack time.
//
// Invariant: every live handle has exactly one value of each kind; a
// released handle has none.
type State struct {
	records []record
	free    []uint32
	order   []Handle
}

// NewState returns an empty table.
func NewState() *State {
	return &State{}
}

// Register adds a and seeds its entries: angle 0, desired position equal to
// its current position, and NeverAttacked. A nil agent yields the zero Handle.
func (s *State) Register(a Agent) Handle {
	if a == nil {
		return 0
	}
	rec := record{
		agent:           a,
		live:            true,
		desiredPosition: a.Position(),
		lastAttackTime:  NeverAttacked,
		angleAssignedAt: math.Inf(-1),
	}
	if m, ok := a.(Mover); ok {
		rec.mover = m
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		rec.gen = s.records[idx].gen + 1
		s.records[idx] = rec
	} else {
		idx = uint32(len(s.records))
		s.records = append(s.records, rec)
	}
	h := makeHandle(idx, rec.gen)
	s.order = append(s.order, h)
	return h
}

// Unregister removes h and all of its entries. It reports whether h was live.
func (s *State) Unregister(h Handle) bool {
	rec := s.lookup(h)
	if rec == nil {
		return false
	}
	idx, _ := h.index()
	gen := rec.gen
	s.records[idx] = record{gen: gen}
	s.free = append(s.free, idx)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *State) lookup(h Handle) *record {
	idx, ok := h.index()
	if !ok || int(idx) >= len(s.records) {
		return nil
	}
	rec := &s.records[idx]
	if !rec.live || rec.gen != h.gen() {
		return nil
	}
	return rec
}

// Valid reports whether h refers to a registered agent.
func (s *State) Valid(h Handle) bool { return s.lookup(h) != nil }

// Agent returns the agent behind h.
func (s *State) Agent(h Handle) (Agent, bool) {
	rec := s.lookup(h)
	if rec == nil {
		return nil, false
	}
	return rec.agent, true
}

// Handles returns all live handles in registration order.
//
// Postcondition: the returned slice is a copy and may be modified freely.
func (s *State) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of registered agents.
func (s *State) Len() int { return len(s.order) }

// alive reports whether h is registered and its agent is alive.
func (s *State) alive(h Handle) (Agent, bool) {
	rec := s.lookup(h)
	if rec == nil || !rec.agent.IsAlive() {
		return nil, false
	}
	return rec.agent, true
}

// DesiredAngle returns the target-relative angle assigned to h.
func (s *State) DesiredAngle(h Handle) (float64, bool) {
	rec := s.lookup(h)
	if rec == nil {
		return 0, false
	}
	return rec.desiredAngle, true
}

// SetDesiredAngle records the target-relative angle for h, wrapped to [-180, 180].
func (s *State) SetDesiredAngle(h Handle, deg float64) {
	if rec := s.lookup(h); rec != nil {
		rec.desiredAngle = geom.WrapAngle(deg)
	}
}

// DesiredPosition returns the last computed stance for h.
func (s *State) DesiredPosition(h Handle) (geom.Vec3, bool) {
	rec := s.lookup(h)
	if rec == nil {
		return geom.Vec3{}, false
	}
	return rec.desiredPosition, true
}

// SetDesiredPosition records the stance for h.
func (s *State) SetDesiredPosition(h Handle, p geom.Vec3) {
	if rec := s.lookup(h); rec != nil {
		rec.desiredPosition = p
	}
}

// LastAttackTime returns when h last acquired a slot, or NeverAttacked.
func (s *State) LastAttackTime(h Handle) float64 {
	rec := s.lookup(h)
	if rec == nil {
		return NeverAttacked
	}
	return rec.lastAttackTime
}

// SetLastAttackTime records when h acquired a slot.
func (s *State) SetLastAttackTime(h Handle, now float64) {
	if rec := s.lookup(h); rec != nil {
		rec.lastAttackTime = now
	}
}

func (s *State) mover(h Handle) Mover {
	if rec := s.lookup(h); rec != nil {
		return rec.mover
	}
	return nil
}

func (s *State) angleAssignedAt(h Handle) float64 {
	if rec := s.lookup(h); rec != nil {
		return rec.angleAssignedAt
	}
	return math.Inf(-1)
}

func (s *State) markAngleAssigned(h Handle, now float64) {
	if rec := s.lookup(h); rec != nil {
		rec.angleAssignedAt = now
	}
}
