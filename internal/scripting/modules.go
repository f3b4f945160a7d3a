package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/dice"
)

// RegisterModules registers the horde.* Lua table into L:
//
//	horde.log(msg)            logs msg at info level
//	horde.random()            uniform value in [0, 1)
//	horde.random_range(a, b)  uniform value in [a, b)
//
// Precondition: L must be from NewSandbox.
// Postcondition: horde global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(m.luaLog))
	L.SetField(mod, "random", L.NewFunction(m.luaRandom))
	L.SetField(mod, "random_range", L.NewFunction(m.luaRandomRange))
	L.SetGlobal("horde", mod)
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("script log", zap.String("message", L.CheckString(1)))
	return 0
}

func (m *Manager) luaRandom(L *lua.LState) int {
	L.Push(lua.LNumber(m.src.Float64()))
	return 1
}

func (m *Manager) luaRandomRange(L *lua.LState) int {
	lo := float64(L.CheckNumber(1))
	hi := float64(L.CheckNumber(2))
	L.Push(lua.LNumber(dice.Uniform(m.src, lo, hi)))
	return 1
}
