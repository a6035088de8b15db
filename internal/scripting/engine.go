// Package scripting hosts the Lua formulas that tune the simulation.
package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Calls are serialised by a mutex
// because systems of one layer run on different goroutines.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory leaves every formula on its Go fallback.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core scripts first, then feature scripts.
	for _, sub := range []string{"core", "combat", "character"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// NewEngineFromSource builds an engine from inline Lua, for tests and tools.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, err
	}
	return &Engine{vm: vm, log: log}, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// EnergyRegenContext is the input of calc_energy_regen.
type EnergyRegenContext struct {
	Current uint32
	Maximum uint32
	State   string // character state name
	Moving  bool
	Dt      float64 // seconds
}

// CalcEnergyRegen returns the energy gained this tick.
func (e *Engine) CalcEnergyRegen(ctx EnergyRegenContext) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("calc_energy_regen")
	if fn == lua.LNil {
		return DefaultEnergyRegen(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("current", lua.LNumber(ctx.Current))
	t.RawSetString("maximum", lua.LNumber(ctx.Maximum))
	t.RawSetString("state", lua.LString(ctx.State))
	t.RawSetString("moving", lua.LBool(ctx.Moving))
	t.RawSetString("dt", lua.LNumber(ctx.Dt))

	result, ok := e.call("calc_energy_regen", fn, t)
	if !ok {
		return DefaultEnergyRegen(ctx)
	}
	return int32(lua.LVAsNumber(result))
}

// DefaultEnergyRegen is the Go formula used when no script defines one:
// 10% of maximum per second, doubled while resting, none while fighting.
func DefaultEnergyRegen(ctx EnergyRegenContext) int32 {
	rate := 0.1
	switch ctx.State {
	case "sit", "dance":
		rate = 0.2
	case "idle", "wielding", "sneak", "glide", "glide_wield":
	default:
		return 0
	}
	if ctx.Moving {
		rate /= 2
	}
	return int32(math.Ceil(float64(ctx.Maximum) * rate * ctx.Dt))
}

// BuffTickContext is the input of calc_buff_tick.
type BuffTickContext struct {
	Buff     string
	Strength float64
	Dt       float64
}

// CalcBuffTick returns the health change a buff applies to one target this
// tick.
func (e *Engine) CalcBuffTick(ctx BuffTickContext) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("calc_buff_tick")
	if fn == lua.LNil {
		return DefaultBuffTick(ctx)
	}
	t := e.vm.NewTable()
	t.RawSetString("buff", lua.LString(ctx.Buff))
	t.RawSetString("strength", lua.LNumber(ctx.Strength))
	t.RawSetString("dt", lua.LNumber(ctx.Dt))

	result, ok := e.call("calc_buff_tick", fn, t)
	if !ok {
		return DefaultBuffTick(ctx)
	}
	return int32(lua.LVAsNumber(result))
}

func DefaultBuffTick(ctx BuffTickContext) int32 {
	amount := int32(math.Round(ctx.Strength * ctx.Dt))
	if ctx.Buff == "burning" {
		return -amount
	}
	return amount
}

// call runs fn protected and returns its single result.
func (e *Engine) call(name string, fn lua.LValue, args ...lua.LValue) (lua.LValue, bool) {
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	if result.Type() != lua.LTNumber {
		e.log.Error("lua function returned a non-number",
			zap.String("func", name),
			zap.String("type", result.Type().String()),
		)
		return lua.LNil, false
	}
	return result, true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
