package agent_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cory-johannsen/horde/internal/game/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const gruntYAML = `id: grunt
name: Grunt
description: A shambling brawler.
attack_range: 1.8
preferred_min_distance: 2
preferred_max_distance: 6
move_speed: 3.5
max_hp: 20
`

func validProfile() *agent.Profile {
	return &agent.Profile{
		ID:                   "grunt",
		Name:                 "Grunt",
		AttackRange:          1.8,
		PreferredMinDistance: 2,
		PreferredMaxDistance: 6,
		MoveSpeed:            3.5,
		MaxHP:                20,
	}
}

func TestLoadProfileFromBytes_Valid(t *testing.T) {
	p, err := agent.LoadProfileFromBytes([]byte(gruntYAML))
	require.NoError(t, err)
	assert.Equal(t, "grunt", p.ID)
	assert.Equal(t, "Grunt", p.Name)
	assert.Equal(t, 1.8, p.AttackRange)
	assert.Equal(t, 2.0, p.PreferredMinDistance)
	assert.Equal(t, 6.0, p.PreferredMaxDistance)
	assert.Equal(t, 3.5, p.MoveSpeed)
	assert.Equal(t, 20, p.MaxHP)
}

func TestLoadProfileFromBytes_InvalidYAML(t *testing.T) {
	_, err := agent.LoadProfileFromBytes([]byte(":::invalid"))
	assert.Error(t, err)
}

func TestProfile_Validate(t *testing.T) {
	cases := map[string]func(p *agent.Profile){
		"empty id":        func(p *agent.Profile) { p.ID = "" },
		"empty name":      func(p *agent.Profile) { p.Name = "" },
		"zero range":      func(p *agent.Profile) { p.AttackRange = 0 },
		"negative min":    func(p *agent.Profile) { p.PreferredMinDistance = -1 },
		"max below min":   func(p *agent.Profile) { p.PreferredMaxDistance = 1 },
		"negative speed":  func(p *agent.Profile) { p.MoveSpeed = -0.1 },
		"zero hit points": func(p *agent.Profile) { p.MaxHP = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validProfile()
			mutate(p)
			assert.Error(t, p.Validate())
		})
	}
	assert.NoError(t, validProfile().Validate())
}

func TestLoadProfiles_ValidDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grunt.yaml"), []byte(gruntYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	profiles, err := agent.LoadProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Grunt", profiles["grunt"].Name)
	assert.Equal(t, []string{"grunt"}, agent.ProfileIDs(profiles))
}

func TestLoadProfiles_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(gruntYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(gruntYAML), 0644))

	_, err := agent.LoadProfiles(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate profile id")
}

func TestLoadProfiles_InvalidFileFailsWhole(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(gruntYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("id: broken\n"), 0644))

	profiles, err := agent.LoadProfiles(dir)
	assert.Error(t, err)
	assert.Nil(t, profiles)
}

func TestLoadProfiles_MissingDir(t *testing.T) {
	_, err := agent.LoadProfiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestProperty_Profile_BandOrderingDecidesValidity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := validProfile()
		p.PreferredMinDistance = rapid.Float64Range(0, 10).Draw(rt, "min")
		p.PreferredMaxDistance = rapid.Float64Range(0, 10).Draw(rt, "max")
		err := p.Validate()
		if p.PreferredMaxDistance < p.PreferredMinDistance {
			assert.Error(rt, err)
		} else {
			assert.NoError(rt, err)
		}
	})
}

func TestLoadProfiles_ShippedContent(t *testing.T) {
	profiles, err := agent.LoadProfiles("../../../content/profiles")
	require.NoError(t, err)
	assert.Equal(t, []string{"brute", "grunt", "skirmisher"}, agent.ProfileIDs(profiles))
}
