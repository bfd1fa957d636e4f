package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/graveyard/engine/internal/geom"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. The VM is not goroutine-safe; only
// one system may call into it.
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback Tunables
	missing  map[string]bool
}

// NewEngine creates a Lua engine and loads the scripts of every known
// subdirectory of scriptsDir. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, fallback: DefaultTunables, missing: make(map[string]bool)}

	for _, sub := range []string{"core", "player"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	if t, ok := e.tunables(); ok {
		e.fallback = t
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
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

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	if t, ok := e.tunables(); ok {
		e.fallback = t
	}
	return nil
}

// tunables reads the optional player_tunables table. Absent fields keep
// their defaults.
func (e *Engine) tunables() (Tunables, bool) {
	tbl, ok := e.vm.GetGlobal("player_tunables").(*lua.LTable)
	if !ok {
		return Tunables{}, false
	}
	t := DefaultTunables
	lFloat(tbl, "run_speed", &t.RunSpeed)
	lFloat(tbl, "jump_speed", &t.JumpSpeed)
	lFloat(tbl, "gravity", &t.Gravity)
	lFloat(tbl, "max_fall", &t.MaxFall)
	lFloat(tbl, "slide_factor", &t.SlideFactor)
	return t, true
}

// PlayerVelocity calls the Lua player_velocity function. Without the
// function, or when it fails, the Go formula with the configured tunables
// is used.
func (e *Engine) PlayerVelocity(ctx MoveContext) MoveResult {
	fn := e.vm.GetGlobal("player_velocity")
	if fn == lua.LNil {
		e.missingOnce("player_velocity")
		return Move(ctx, e.fallback)
	}

	t := e.vm.NewTable()
	t.RawSetString("left", lua.LBool(ctx.Left))
	t.RawSetString("right", lua.LBool(ctx.Right))
	t.RawSetString("jump", lua.LBool(ctx.Jump))
	t.RawSetString("slide", lua.LBool(ctx.Slide))
	t.RawSetString("grounded", lua.LBool(ctx.Grounded))
	t.RawSetString("vx", lua.LNumber(ctx.Velocity.X))
	t.RawSetString("vy", lua.LNumber(ctx.Velocity.Y))
	t.RawSetString("dt", lua.LNumber(ctx.DT))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua player_velocity error", zap.Error(err))
		return Move(ctx, e.fallback)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua player_velocity returned non-table")
		return Move(ctx, e.fallback)
	}

	return MoveResult{
		Velocity: geom.V(float64(lua.LVAsNumber(rt.RawGetString("vx"))), float64(lua.LVAsNumber(rt.RawGetString("vy")))),
	}
}

func (e *Engine) missingOnce(name string) {
	if e.missing[name] {
		return
	}
	e.missing[name] = true
	e.log.Warn("lua function not found, using built-in", zap.String("name", name))
}

// lFloat overwrites *dst with a numeric table field when present.
func lFloat(t *lua.LTable, key string, dst *float64) {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		*dst = float64(v)
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
