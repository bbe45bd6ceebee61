package relicvm

import (
	"slices"
)

// Apply applies the primitive operator named by the symbol on top of the
// stack to the nargs values below it.
func (c *Context) Apply(nargs int) error {
	c.trace("apply", nargs)
	defer c.lock()()
	if err := c.need("apply", nargs+1); err != nil {
		return err
	}
	n := len(c.stack)
	start := n - nargs - 1
	operator := c.stack[n-1]
	cell, err := c.rt.readKind("apply", operator, KindSymbol)
	if err != nil {
		return err
	}
	name := c.rt.symbols.name(cell.Sym)
	prim, ok := primitives[name]
	if !ok {
		c.truncate(start)
		return failf("apply", operator, ErrNotCallable, "%s is not a primitive operator", name)
	}
	args := slices.Clone(c.stack[start : n-1])

	c.rt.safepoint()
	ret, err := prim(c.rt, args)
	c.truncate(start)
	if err != nil {
		return &OpError{
			Op:     "apply",
			Handle: operator,
			Name:   name,
			Err:    err,
		}
	}
	c.push(ret)
	return nil
}

// IsPrimitive reports whether name is a primitive operator.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}
