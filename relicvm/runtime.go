package relicvm

import (
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/reusee/relic/logs"
)

// Runtime owns the heap, the symbol table, the root registry and the package
// registry. All heap access is serialized by mu; Context methods hold it for
// their duration and release it while closure bodies run.
type Runtime struct {
	mu       sync.Mutex
	config   Config
	logger   logs.Logger
	heap     heap
	symbols  *symbolTable
	roots    map[string]Handle
	top      Handle
	contexts map[*Context]struct{}
	main     *Context
	protos   map[string]*Proto
	cycles   int
	last     GCStats
	packages *Loader

	debugger   Debugger
	debugState atomic.Int32
}

func New(config Config, logger logs.Logger) *Runtime {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runtime{
		config:   config,
		logger:   logger,
		symbols:  newSymbolTable(),
		roots:    make(map[string]Handle),
		contexts: make(map[*Context]struct{}),
		protos:   make(map[string]*Proto),
		heap: heap{
			Capacity: config.HeapCapacity,
		},
	}
	r.packages = newLoader(r)
	if state, err := ParseDebugState(config.Debug); err == nil {
		r.debugState.Store(int32(state))
	}
	r.top = r.heap.alloc(Cell{
		Kind: KindEnvironment,
		Env: &Env{
			Name: "top",
			Vars: make(map[Symbol]Handle),
		},
	})
	r.main = r.NewContext()
	return r
}

func (r *Runtime) Config() Config {
	return r.config
}

func (r *Runtime) Logger() logs.Logger {
	return r.logger
}

// TopEnvironment returns the global frame.
func (r *Runtime) TopEnvironment() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.top
}

// Main returns the default Context.
func (r *Runtime) Main() *Context {
	return r.main
}

func (r *Runtime) NewContext() *Context {
	c := &Context{
		rt:    r,
		stack: make([]Handle, 0, r.config.StackCapacity),
		tail:  -1,
	}
	r.mu.Lock()
	c.env = r.top
	r.contexts[c] = struct{}{}
	r.mu.Unlock()
	return c
}

// Capacity is the live cell count at which the next safepoint collects.
func (r *Runtime) Capacity() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.Capacity
}

func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.Live
}

// Stats returns the statistics of the last collection.
func (r *Runtime) Stats() GCStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// RegisterProto makes proto available for re-binding closure bodies after Restore.
func (r *Runtime) RegisterProto(proto *Proto) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerProto(proto)
}

func (r *Runtime) registerProto(proto *Proto) {
	if proto.Name == "" || proto.Body == nil {
		return
	}
	r.protos[proto.Name] = proto
}

func (r *Runtime) Packages() *Loader {
	return r.packages
}

// Intern returns the symbol id of name.
func (r *Runtime) Intern(name string) Symbol {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.symbols.intern(name)
}

func (r *Runtime) SymbolName(sym Symbol) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.symbols.name(sym)
}

// Cell returns a copy of the cell addressed by h.
func (r *Runtime) Cell(h Handle) (Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell, ok := r.heap.get(h)
	if !ok {
		return Cell{}, fail("read", h, ErrInvalidHandle)
	}
	ret := *cell
	if ret.Env != nil {
		env := *ret.Env
		env.Vars = maps.Clone(ret.Env.Vars)
		ret.Env = &env
	}
	return ret, nil
}

func (r *Runtime) alloc(cell Cell) Handle {
	return r.heap.alloc(cell)
}

func (r *Runtime) read(op string, h Handle) (*Cell, error) {
	cell, ok := r.heap.get(h)
	if !ok {
		return nil, fail(op, h, ErrInvalidHandle)
	}
	return cell, nil
}

func (r *Runtime) readKind(op string, h Handle, kind Kind) (*Cell, error) {
	cell, err := r.read(op, h)
	if err != nil {
		return nil, err
	}
	if cell.Kind != kind {
		return nil, failf(op, h, ErrTypeMismatch, "expecting %v, got %v", kind, cell.Kind)
	}
	return cell, nil
}

func (r *Runtime) symbolCell(sym Symbol) Handle {
	return r.alloc(Cell{
		Kind: KindSymbol,
		Sym:  sym,
	})
}
