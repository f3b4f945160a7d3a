// Package agent provides combatant profiles and the live combatants that a
// group director coordinates.
package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile defines a reusable combatant archetype loaded from YAML.
type Profile struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// AttackRange is the reach, in metres, from which the combatant can strike.
	AttackRange          float64 `yaml:"attack_range"`
	PreferredMinDistance float64 `yaml:"preferred_min_distance"`
	PreferredMaxDistance float64 `yaml:"preferred_max_distance"`
	// MoveSpeed is in metres per second. Zero means the combatant never moves.
	MoveSpeed float64 `yaml:"move_speed"`
	MaxHP     int     `yaml:"max_hp"`
}

// Validate checks that the profile satisfies basic invariants.
//
// Precondition: p must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, AttackRange > 0,
// 0 <= PreferredMinDistance <= PreferredMaxDistance, MoveSpeed >= 0 and
// MaxHP >= 1; returns an error on the first violation otherwise.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("agent profile: id must not be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("agent profile %q: name must not be empty", p.ID)
	}
	if p.AttackRange <= 0 {
		return fmt.Errorf("agent profile %q: attack_range must be > 0", p.ID)
	}
	if p.PreferredMinDistance < 0 {
		return fmt.Errorf("agent profile %q: preferred_min_distance must be >= 0", p.ID)
	}
	if p.PreferredMaxDistance < p.PreferredMinDistance {
		return fmt.Errorf("agent profile %q: preferred_max_distance %.2f is below preferred_min_distance %.2f",
			p.ID, p.PreferredMaxDistance, p.PreferredMinDistance)
	}
	if p.MoveSpeed < 0 {
		return fmt.Errorf("agent profile %q: move_speed must be >= 0", p.ID)
	}
	if p.MaxHP < 1 {
		return fmt.Errorf("agent profile %q: max_hp must be >= 1", p.ID)
	}
	return nil
}

// LoadProfileFromBytes parses a single profile from raw YAML bytes.
//
// Postcondition: Returns a validated *Profile, or an error.
func LoadProfileFromBytes(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfiles reads all *.yaml files in dir and returns the parsed profiles
// keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all profiles or an error on the first parse,
// validate or duplicate-ID failure; on error, the partial result is discarded.
func LoadProfiles(dir string) (map[string]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading profile dir %q: %w", dir, err)
	}

	profiles := make(map[string]*Profile)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		p, err := LoadProfileFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := profiles[p.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate profile id %q", path, p.ID)
		}
		profiles[p.ID] = p
	}
	return profiles, nil
}

// ProfileIDs returns the keys of profiles in sorted order.
func ProfileIDs(profiles map[string]*Profile) []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
