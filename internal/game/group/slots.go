package group

// SlotManager is a fixed-capacity pool of attack tokens.
//
// Invariant: len(holders) <= capacity.
type SlotManager struct {
	capacity int
	holders  []Handle
}

// NewSlotManager creates a pool with capacity tokens; capacity < 1 becomes 1.
func NewSlotManager(capacity int) *SlotManager {
	if capacity < 1 {
		capacity = 1
	}
	return &SlotManager{capacity: capacity, holders: make([]Handle, 0, capacity)}
}

// RequestSlot grants a token to h. It returns true if h already holds one,
// false if the pool is full or h is the zero Handle.
func (m *SlotManager) RequestSlot(h Handle) bool {
	if h == 0 {
		return false
	}
	if m.HasSlot(h) {
		return true
	}
	if m.IsFull() {
		return false
	}
	m.holders = append(m.holders, h)
	return true
}

// ReleaseSlot returns h's token to the pool. No-op if h holds none.
func (m *SlotManager) ReleaseSlot(h Handle) {
	for i, o := range m.holders {
		if o == h {
			m.holders = append(m.holders[:i], m.holders[i+1:]...)
			return
		}
	}
}

// HasSlot reports whether h holds a token.
func (m *SlotManager) HasSlot(h Handle) bool {
	if h == 0 {
		return false
	}
	for _, o := range m.holders {
		if o == h {
			return true
		}
	}
	return false
}

// Capacity returns the pool size.
func (m *SlotManager) Capacity() int { return m.capacity }

// Count returns the number of tokens held.
func (m *SlotManager) Count() int { return len(m.holders) }

// AvailableSlots returns the number of free tokens.
func (m *SlotManager) AvailableSlots() int { return m.capacity - len(m.holders) }

// IsFull reports whether every token is held.
func (m *SlotManager) IsFull() bool { return len(m.holders) >= m.capacity }

// IsEmpty reports whether no token is held.
func (m *SlotManager) IsEmpty() bool { return len(m.holders) == 0 }

// ClearAll releases every token.
func (m *SlotManager) ClearAll() { m.holders = m.holders[:0] }

// Holders returns the current holders in acquisition order.
func (m *SlotManager) Holders() []Handle {
	out := make([]Handle, len(m.holders))
	copy(out, m.holders)
	return out
}
