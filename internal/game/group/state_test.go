package group_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

func TestState_RegisterSeedsEntries(t *testing.T) {
	st := group.NewState()
	a := newAgent(3, 4)
	h := st.Register(a)
	require.NotZero(t, h)

	angle, ok := st.DesiredAngle(h)
	require.True(t, ok)
	assert.Equal(t, 0.0, angle)

	pos, ok := st.DesiredPosition(h)
	require.True(t, ok)
	assert.Equal(t, a.pos, pos)

	assert.True(t, math.IsInf(st.LastAttackTime(h), -1))
}

func TestState_NilAgent(t *testing.T) {
	st := group.NewState()
	assert.Zero(t, st.Register(nil))
	assert.Equal(t, 0, st.Len())
}

func TestState_UnregisterRemovesEntries(t *testing.T) {
	st := group.NewState()
	h := st.Register(newAgent(1, 1))
	require.True(t, st.Unregister(h))
	assert.False(t, st.Unregister(h))
	assert.False(t, st.Valid(h))
	_, ok := st.DesiredAngle(h)
	assert.False(t, ok)
	_, ok = st.DesiredPosition(h)
	assert.False(t, ok)
	assert.Empty(t, st.Handles())
}

func TestState_StaleHandleDoesNotAliasRecycledSlot(t *testing.T) {
	st := group.NewState()
	old := st.Register(newAgent(1, 1))
	st.Unregister(old)
	fresh := st.Register(newAgent(2, 2))

	assert.NotEqual(t, old, fresh)
	assert.False(t, st.Valid(old))
	assert.True(t, st.Valid(fresh))
	st.SetDesiredPosition(old, geom.Vec3{X: 99})
	pos, _ := st.DesiredPosition(fresh)
	assert.Equal(t, 2.0, pos.X)
}

func TestState_HandlesKeepRegistrationOrder(t *testing.T) {
	st := group.NewState()
	a := st.Register(newAgent(0, 1))
	b := st.Register(newAgent(0, 2))
	c := st.Register(newAgent(0, 3))
	st.Unregister(b)
	d := st.Register(newAgent(0, 4))
	assert.Equal(t, []group.Handle{a, c, d}, st.Handles())
}

func TestState_SetDesiredAngleWraps(t *testing.T) {
	st := group.NewState()
	h := st.Register(newAgent(0, 1))
	st.SetDesiredAngle(h, 190)
	angle, _ := st.DesiredAngle(h)
	assert.InDelta(t, -170.0, angle, 1e-9)
}
