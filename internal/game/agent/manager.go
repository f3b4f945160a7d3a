package agent

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// Manager tracks the live combatants of an encounter by ID.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	combatants map[string]*Combatant
	order      []string
	counter    atomic.Uint64
	blocker    Blocker
}

// NewManager creates an empty Manager. blocker may be nil.
func NewManager(blocker Blocker) *Manager {
	return &Manager{
		combatants: make(map[string]*Combatant),
		blocker:    blocker,
	}
}

// Spawn builds a combatant from profile at pos facing facing.
//
// Precondition: profile must be non-nil and valid.
// Postcondition: Returns a new Combatant with a unique ID of the form
// "<profile id>-<n>".
func (m *Manager) Spawn(profile *Profile, pos, facing geom.Vec3) (*Combatant, error) {
	if profile == nil {
		return nil, fmt.Errorf("agent.Manager.Spawn: profile must not be nil")
	}
	n := m.counter.Add(1)
	c, err := NewBuilder(profile).
		WithID(fmt.Sprintf("%s-%d", profile.ID, n)).
		At(pos).
		Facing(facing).
		BlockedBy(m.blocker).
		Build()
	if err != nil {
		return nil, fmt.Errorf("agent.Manager.Spawn: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.combatants[c.ID] = c
	m.order = append(m.order, c.ID)
	return c, nil
}

// Remove deletes a combatant by ID.
//
// Postcondition: Returns an error if the combatant is not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.combatants[id]; !ok {
		return fmt.Errorf("combatant %q not found", id)
	}
	delete(m.combatants, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the combatant with the given ID.
//
// Postcondition: Returns (c, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Combatant, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.combatants[id]
	return c, ok
}

// All returns a snapshot of every combatant in spawn order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) All() []*Combatant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Combatant, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.combatants[id])
	}
	return out
}

// Alive returns how many combatants still have hit points.
func (m *Manager) Alive() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.combatants {
		if c.IsAlive() {
			n++
		}
	}
	return n
}

// FindByName returns the first combatant, in spawn order, whose Name has
// prefix as a case-insensitive prefix. Returns nil if no match is found.
func (m *Manager) FindByName(prefix string) *Combatant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lower := strings.ToLower(prefix)
	for _, id := range m.order {
		c := m.combatants[id]
		if strings.HasPrefix(strings.ToLower(c.Name), lower) {
			return c
		}
	}
	return nil
}
