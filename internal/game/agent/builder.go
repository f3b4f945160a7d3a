package agent

import (
	"fmt"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// Builder assembles a Combatant. Every capability is fixed at Build time.
type Builder struct {
	profile *Profile
	id      string
	pos     geom.Vec3
	facing  geom.Vec3
	blocker Blocker
}

// NewBuilder starts a combatant from profile, facing world forward at the origin.
func NewBuilder(profile *Profile) *Builder {
	return &Builder{profile: profile, facing: geom.WorldForward}
}

// WithID sets the runtime ID. The default is the profile ID.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// At sets the spawn point.
func (b *Builder) At(p geom.Vec3) *Builder {
	b.pos = p
	return b
}

// Facing sets the initial facing. Only the horizontal part is used.
func (b *Builder) Facing(dir geom.Vec3) *Builder {
	b.facing = dir
	return b
}

// BlockedBy makes Step refuse moves into points blocker reports as obstructed.
func (b *Builder) BlockedBy(blocker Blocker) *Builder {
	b.blocker = blocker
	return b
}

// Build validates the profile and returns the combatant at full health.
//
// Postcondition: on success IsAlive() is true and Forward() is a unit
// horizontal vector.
func (b *Builder) Build() (*Combatant, error) {
	if b.profile == nil {
		return nil, fmt.Errorf("agent.Builder.Build: profile must not be nil")
	}
	if err := b.profile.Validate(); err != nil {
		return nil, fmt.Errorf("agent.Builder.Build: %w", err)
	}
	id := b.id
	if id == "" {
		id = b.profile.ID
	}
	return &Combatant{
		ID:          id,
		ProfileID:   b.profile.ID,
		Name:        b.profile.Name,
		pos:         b.pos,
		forward:     geom.FlatDirection(b.facing, geom.WorldForward),
		attackRange: b.profile.AttackRange,
		minDistance: b.profile.PreferredMinDistance,
		maxDistance: b.profile.PreferredMaxDistance,
		moveSpeed:   b.profile.MoveSpeed,
		currentHP:   b.profile.MaxHP,
		maxHP:       b.profile.MaxHP,
		blocker:     b.blocker,
	}, nil
}
