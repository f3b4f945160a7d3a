package agent_test

import (
	"sync"
	"testing"

	"github.com/cory-johannsen/horde/internal/game/agent"
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SpawnAssignsUniqueIDs(t *testing.T) {
	m := agent.NewManager(nil)
	a, err := m.Spawn(validProfile(), geom.Vec3{X: 1}, geom.WorldForward)
	require.NoError(t, err)
	b, err := m.Spawn(validProfile(), geom.Vec3{X: 2}, geom.WorldForward)
	require.NoError(t, err)

	assert.Equal(t, "grunt-1", a.ID)
	assert.Equal(t, "grunt-2", b.ID)
	assert.Equal(t, []*agent.Combatant{a, b}, m.All())
	got, ok := m.Get("grunt-2")
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestManager_SpawnRejectsNil(t *testing.T) {
	_, err := agent.NewManager(nil).Spawn(nil, geom.Vec3{}, geom.WorldForward)
	assert.Error(t, err)
}

func TestManager_SpawnWiresBlocker(t *testing.T) {
	m := agent.NewManager(blockAbove(0.5))
	c, err := m.Spawn(validProfile(), geom.Vec3{}, geom.WorldForward)
	require.NoError(t, err)
	c.MoveTo(geom.Vec3{X: 5})
	c.Step(1)
	assert.Equal(t, geom.Vec3{}, c.Position())
}

func TestManager_RemoveAndAlive(t *testing.T) {
	m := agent.NewManager(nil)
	a, _ := m.Spawn(validProfile(), geom.Vec3{}, geom.WorldForward)
	b, _ := m.Spawn(validProfile(), geom.Vec3{}, geom.WorldForward)
	b.Kill()
	assert.Equal(t, 1, m.Alive())

	require.NoError(t, m.Remove(a.ID))
	assert.Error(t, m.Remove(a.ID))
	assert.Equal(t, []*agent.Combatant{b}, m.All())
	assert.Equal(t, 0, m.Alive())
}

func TestManager_FindByName(t *testing.T) {
	m := agent.NewManager(nil)
	p := validProfile()
	p.ID, p.Name = "stalker", "Stalker"
	first, _ := m.Spawn(validProfile(), geom.Vec3{}, geom.WorldForward)
	second, _ := m.Spawn(p, geom.Vec3{}, geom.WorldForward)

	assert.Same(t, first, m.FindByName("gr"))
	assert.Same(t, second, m.FindByName("STAL"))
	assert.Nil(t, m.FindByName("boss"))
	assert.Empty(t, agent.NewManager(nil).All())
}

func TestManager_ConcurrentSpawn(t *testing.T) {
	m := agent.NewManager(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Spawn(validProfile(), geom.Vec3{}, geom.WorldForward)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, c := range m.All() {
		seen[c.ID] = true
	}
	assert.Len(t, seen, 20)
}
