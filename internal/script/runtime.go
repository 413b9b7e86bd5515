package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dshills/structedit/internal/engine"
	lua "github.com/yuin/gopher-lua"
)

// DefaultCallLimit is the number of document calls a script may make when
// no limit is configured.
const DefaultCallLimit = 1_000_000

// ModuleName is the name scripts can require the document API under.
const ModuleName = "structedit"

// Runtime executes edit scripts against one engine.
//
// gopher-lua's LState is not goroutine-safe. Runtime serializes Run calls
// with a mutex.
type Runtime struct {
	mu sync.Mutex

	L      *lua.LState
	eng    *engine.Engine
	logger *slog.Logger
	out    io.Writer

	callLimit int64
	calls     int64
	exceeded  bool

	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithCallLimit sets the maximum document calls per run. Zero means no
// limit.
func WithCallLimit(limit int64) Option {
	return func(r *Runtime) {
		if limit >= 0 {
			r.callLimit = limit
		}
	}
}

// WithLogger sets the logger for script runs.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput sets where the script's print writes. By default output is
// discarded.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		if w != nil {
			r.out = w
		}
	}
}

// New creates a sandboxed runtime bound to eng.
func New(eng *engine.Engine, opts ...Option) *Runtime {
	r := &Runtime{
		eng:       eng,
		logger:    slog.New(slog.DiscardHandler),
		out:       io.Discard,
		callLimit: DefaultCallLimit,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installSandbox()

	mod := r.module(r.L)
	r.L.SetGlobal("doc", mod)
	r.L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	return r
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenPackage(L)

	// io, os and debug are intentionally not opened.
}

// installSandbox removes file loading and routes print to the runtime
// output.
func (r *Runtime) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		r.L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := r.L.GetGlobal("package").(*lua.LTable); ok {
		r.L.SetField(pkg, "path", lua.LString(""))
		r.L.SetField(pkg, "cpath", lua.LString(""))
	}

	r.L.SetGlobal("print", r.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(r.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// Run executes code. name identifies the script in errors and logs. The
// run is abandoned when ctx is done.
func (r *Runtime) Run(ctx context.Context, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}

	r.calls = 0
	r.exceeded = false
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	r.logger.Debug("script started", "script", name)
	err := r.doWithRecovery(func() error {
		fn, err := r.L.Load(strings.NewReader(code), name)
		if err != nil {
			return err
		}
		r.L.Push(fn)
		return r.L.PCall(0, lua.MultRet, nil)
	})
	switch {
	case r.exceeded:
		err = fmt.Errorf("script %s: %w (limit %d)", name, ErrCallLimit, r.callLimit)
	case err != nil && ctx.Err() != nil:
		err = fmt.Errorf("script %s: %w", name, ctx.Err())
	case err != nil:
		err = fmt.Errorf("script %s: %w", name, err)
	}
	if err != nil {
		r.logger.Warn("script failed", "script", name, "calls", r.calls, "error", err)
		return err
	}
	r.logger.Debug("script finished", "script", name, "calls", r.calls)
	return nil
}

// RunFile executes the script at path.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return r.Run(ctx, path, string(code))
}

// Calls returns the number of document calls made by the last run.
func (r *Runtime) Calls() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Close releases the Lua state.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

// doWithRecovery executes a function with panic recovery.
func (r *Runtime) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// count records one document call and raises a Lua error once the limit is
// passed.
func (r *Runtime) count(L *lua.LState) {
	r.calls++
	if r.callLimit > 0 && r.calls > r.callLimit {
		r.exceeded = true
		L.RaiseError("%v", ErrCallLimit)
	}
}

// raise turns an engine error into a Lua error.
func raise(L *lua.LState, fn string, err error) {
	L.RaiseError("%s: %v", fn, err)
}
