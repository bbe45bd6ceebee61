package relicvm

import (
	"slices"

	"github.com/samber/lo"
)

func (r *Runtime) AddRoot(name string, h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.heap.valid(h) {
		return fail("add-root", h, ErrInvalidHandle)
	}
	if _, ok := r.roots[name]; ok {
		return failName("add-root", name, ErrDuplicateRoot)
	}
	r.roots[name] = h
	return nil
}

func (r *Runtime) SetRoot(name string, h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.heap.valid(h) {
		return fail("set-root", h, ErrInvalidHandle)
	}
	r.roots[name] = h
	return nil
}

func (r *Runtime) GetRoot(name string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.roots[name]
	if !ok {
		return NoHandle, failName("get-root", name, ErrUnknownRoot)
	}
	return h, nil
}

// RemoveRoot unregisters name and returns the handle it held.
func (r *Runtime) RemoveRoot(name string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.roots[name]
	if !ok {
		return NoHandle, failName("remove-root", name, ErrUnknownRoot)
	}
	delete(r.roots, name)
	return h, nil
}

// Roots returns the registered root names, sorted.
func (r *Runtime) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := lo.Keys(r.roots)
	slices.Sort(names)
	return names
}

func (c *Context) AddRoot(name string, h Handle) error {
	c.trace("add-root", name, h)
	return c.rt.AddRoot(name, h)
}

func (c *Context) SetRoot(name string, h Handle) error {
	c.trace("set-root", name, h)
	return c.rt.SetRoot(name, h)
}

func (c *Context) GetRoot(name string) (Handle, error) {
	c.trace("get-root", name)
	return c.rt.GetRoot(name)
}

func (c *Context) RemoveRoot(name string) (Handle, error) {
	c.trace("remove-root", name)
	return c.rt.RemoveRoot(name)
}
