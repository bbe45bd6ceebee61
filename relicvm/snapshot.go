package relicvm

import (
	"encoding/gob"
	"fmt"
	"io"
	"maps"
)

type snapshot struct {
	Heap    heap
	Symbols []string
	Roots   map[string]Handle
	Top     Handle
	Stack   []Handle
	Env     Handle
	Loaded  []string
	Cycles  int
}

// Snapshot encodes the heap, symbols, roots, loaded packages and the main
// Context. Closure bodies are stored by proto name.
func (r *Runtime) Snapshot(w io.Writer) error {
	loaded := r.packages.Loaded()

	r.mu.Lock()
	if r.main.active > 0 {
		r.mu.Unlock()
		return fmt.Errorf("snapshot: main context is running")
	}
	snap := snapshot{
		Heap:    r.heap,
		Symbols: r.symbols.Names,
		Roots:   r.roots,
		Top:     r.top,
		Stack:   r.main.stack,
		Env:     r.main.env,
		Loaded:  loaded,
		Cycles:  r.cycles,
	}
	err := gob.NewEncoder(w).Encode(&snap)
	r.mu.Unlock()
	if err != nil {
		return wrap(err)
	}
	r.logger.Debug("snapshot", "live", snap.Heap.Live, "roots", len(snap.Roots))
	return nil
}

// Restore replaces the runtime state with a snapshot. Closures are re-bound to
// the protos registered under the same names; the others fail with
// ErrMissingBody when called. Contexts other than the main one are reset to an
// empty stack in the top environment.
func (r *Runtime) Restore(rd io.Reader) error {
	var snap snapshot
	if err := gob.NewDecoder(rd).Decode(&snap); err != nil {
		return wrap(err)
	}

	r.mu.Lock()
	if r.main.active > 0 {
		r.mu.Unlock()
		return fmt.Errorf("restore: main context is running")
	}

	r.heap = snap.Heap
	if r.heap.Capacity <= 0 {
		r.heap.Capacity = r.config.HeapCapacity
	}
	r.symbols = &symbolTable{
		Names: snap.Symbols,
	}
	r.symbols.reindex()
	r.roots = maps.Clone(snap.Roots)
	if r.roots == nil {
		r.roots = make(map[string]Handle)
	}
	r.top = snap.Top
	r.cycles = snap.Cycles

	missing := 0
	for i := range r.heap.Slots {
		cell := &r.heap.Slots[i].Cell
		if cell.Kind != KindClosure || cell.Proto == nil {
			continue
		}
		if proto, ok := r.protos[cell.Proto.Name]; ok {
			cell.Proto = proto
		} else {
			missing++
		}
	}

	for c := range r.contexts {
		c.stack = c.stack[:0]
		c.env = r.top
		c.tail = -1
	}
	r.main.stack = append(r.main.stack, snap.Stack...)
	r.main.env = snap.Env
	if !r.heap.valid(r.main.env) {
		r.main.env = r.top
	}
	r.mu.Unlock()

	r.packages.mu.Lock()
	r.packages.loaded = make(map[string]bool)
	for _, name := range snap.Loaded {
		r.packages.loaded[name] = true
	}
	r.packages.mu.Unlock()

	r.logger.Debug("restore",
		"live", r.heap.Live,
		"roots", len(snap.Roots),
		"missing bodies", missing,
	)
	return nil
}
