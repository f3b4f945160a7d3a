package encounter

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/horde/internal/game/group"
)

// ScoreHookName is the Lua global consulted for attack score adjustments:
//
//	function adjust_attack_score(handle, score, distance, angle, neighbors) return score end
const ScoreHookName = "adjust_attack_score"

// HookCaller dispatches a named script hook. *scripting.Manager satisfies it.
type HookCaller interface {
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// LuaScoreHook lets scripts rescale attack scores.
type LuaScoreHook struct {
	scripts HookCaller
}

// NewLuaScoreHook wraps scripts.
//
// Precondition: scripts must be non-nil.
func NewLuaScoreHook(scripts HookCaller) *LuaScoreHook {
	return &LuaScoreHook{scripts: scripts}
}

// AdjustScore returns the hook's numeric result. A missing hook, a failed
// call or a non-numeric or non-finite return leaves score unchanged.
func (l *LuaScoreHook) AdjustScore(h group.Handle, score float64, f group.ScoreFactors) float64 {
	ret, err := l.scripts.CallHook(ScoreHookName,
		lua.LNumber(h),
		lua.LNumber(score),
		lua.LNumber(f.Distance),
		lua.LNumber(f.Angle),
		lua.LNumber(f.Neighbors),
	)
	if err != nil {
		return score
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return score
	}
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return score
	}
	return v
}
