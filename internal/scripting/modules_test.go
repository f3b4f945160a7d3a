package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/horde/internal/game/dice"
	"github.com/cory-johannsen/horde/internal/scripting"
)

func runScript(t testing.TB, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	require.NoError(t, mgr.Load(writeTempLua(t, "test.lua", luaSrc)))
	ret, err := mgr.CallHook(hook, args...)
	require.NoError(t, err)
	return ret
}

func TestHordeLog_WritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewCryptoSource(), zap.New(core), 0)
	t.Cleanup(mgr.Close)

	runScript(t, mgr, `
		function do_log()
			horde.log("hello from lua")
		end
	`, "do_log")

	entries := logs.FilterMessage("script log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "hello from lua", entries[0].ContextMap()["message"])
}

func TestHordeLog_BadArgumentIsRuntimeError(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret := runScript(t, mgr, `
		function do_log()
			horde.log()
			return 1
		end
	`, "do_log")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestHordeRandom_UsesSource(t *testing.T) {
	mgr := scripting.NewManager(dice.Fixed(0.25), zap.NewNop(), 0)
	t.Cleanup(mgr.Close)

	ret := runScript(t, mgr, `function roll() return horde.random() end`, "roll")
	assert.Equal(t, lua.LNumber(0.25), ret)
}

func TestHordeRandomRange_ScalesSource(t *testing.T) {
	mgr := scripting.NewManager(dice.Fixed(0.5), zap.NewNop(), 0)
	t.Cleanup(mgr.Close)

	ret := runScript(t, mgr, `function roll(a, b) return horde.random_range(a, b) end`, "roll",
		lua.LNumber(-4), lua.LNumber(8))
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestProperty_HordeRandomRangeWithinBounds(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "r.lua", `function roll(a, b) return horde.random_range(a, b) end`)))
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(-100, 100).Draw(rt, "lo")
		hi := lo + rapid.Float64Range(0.001, 100).Draw(rt, "span")
		ret, err := mgr.CallHook("roll", lua.LNumber(lo), lua.LNumber(hi))
		require.NoError(rt, err)
		v, ok := ret.(lua.LNumber)
		require.True(rt, ok)
		assert.GreaterOrEqual(rt, float64(v), lo)
		assert.LessOrEqual(rt, float64(v), hi)
	})
}
