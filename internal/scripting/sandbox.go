// Package scripting runs encounter scripts inside a sandboxed GopherLua VM.
// It knows nothing about the group packages; callers marshal their own
// arguments into lua.LValue.
package scripting

import (
	"context"
	"errors"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode allowance of one file load or hook
// call when no override is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted is the error a VM raises once its Budget runs dry.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

// spent is already closed; an exhausted Budget hands it to the VM.
var spent = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// safeLibs are the only standard libraries a sandbox opens.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// strippedGlobals are base library functions that reach the filesystem or
// compile code at run time.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// Budget is a refillable opcode allowance installed as an LState's context.
// GopherLua polls Done once per opcode: Done returns nil while opcodes remain
// and a closed channel afterwards, which aborts the running chunk.
//
// A Budget is shared by one VM; Refill it before every entry into Lua.
type Budget struct {
	context.Context
	limit int64
	left  atomic.Int64
}

// NewBudget returns a full budget of limit opcodes; limit <= 0 uses
// DefaultInstructionLimit.
func NewBudget(limit int) *Budget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	b := &Budget{Context: context.Background(), limit: int64(limit)}
	b.left.Store(b.limit)
	return b
}

// Limit is the allowance restored by Refill.
func (b *Budget) Limit() int { return int(b.limit) }

// Remaining is the number of opcodes left before the VM is aborted.
func (b *Budget) Remaining() int {
	if n := b.left.Load(); n > 0 {
		return int(n)
	}
	return 0
}

// Refill restores the full allowance.
func (b *Budget) Refill() { b.left.Store(b.limit) }

// Done charges one opcode.
func (b *Budget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		return spent
	}
	return nil
}

// Err reports ErrBudgetExhausted once the allowance is spent.
func (b *Budget) Err() error {
	if b.left.Load() < 0 {
		return ErrBudgetExhausted
	}
	return nil
}

// NewSandbox creates an LState that can only see the base, table, string and
// math libraries, minus strippedGlobals, and runs under a fresh Budget of
// limit opcodes.
//
// Postcondition: the caller owns the LState and must Close it.
func NewSandbox(limit int) (*lua.LState, *Budget) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	b := NewBudget(limit)
	L.SetContext(b)
	return L, b
}
