package relicvm

import "fmt"

// NewClosure pushes a closure of proto capturing the current environment.
func (c *Context) NewClosure(proto *Proto) error {
	c.trace("new-closure", proto.Name)
	defer c.lock()()
	if proto.Arity < 0 {
		return failName("new-closure", proto.Name, ErrArityMismatch)
	}
	c.rt.registerProto(proto)
	c.rt.safepoint()
	c.push(c.rt.alloc(Cell{
		Kind:     KindClosure,
		Proto:    proto,
		Captured: c.env,
	}))
	return nil
}

// CallClosure applies the closure on top of the stack to the nargs values
// below it. Arguments are pushed left to right, the callee last. On return the
// callee and arguments are replaced by the single result.
func (c *Context) CallClosure(nargs int) error {
	c.trace("call-closure", nargs)
	c.rt.mu.Lock()
	proto, base, err := c.enter("call-closure", nargs, true)
	var saved Handle
	if err == nil {
		saved = c.stack[base-1]
	}
	c.rt.mu.Unlock()
	if err != nil {
		return err
	}
	return c.run(proto, base, saved)
}

// Call applies the value on top of the stack: primitive operators for
// symbols, CallClosure for closures.
func (c *Context) Call(nargs int) error {
	c.trace("call", nargs)
	kind, err := c.calleeKind("call", nargs)
	if err != nil {
		return err
	}
	if kind == KindSymbol {
		return c.Apply(nargs)
	}
	return c.CallClosure(nargs)
}

// TailCall requests a call that replaces the running closure's frame.
// The calling body must return right after a nil error. Outside of any closure
// body it behaves as Call; a primitive callee is applied immediately.
func (c *Context) TailCall(nargs int) error {
	c.trace("tail-call", nargs)
	if c.active == 0 {
		return c.Call(nargs)
	}
	kind, err := c.calleeKind("tail-call", nargs)
	if err != nil {
		return err
	}
	if kind == KindSymbol {
		return c.Apply(nargs)
	}
	if c.tail >= 0 {
		return failf("tail-call", NoHandle, ErrStackImbalance, "tail call already pending")
	}
	c.tail = nargs
	return nil
}

func (c *Context) calleeKind(op string, nargs int) (Kind, error) {
	defer c.lock()()
	if err := c.need(op, nargs+1); err != nil {
		return KindFree, err
	}
	callee := c.stack[len(c.stack)-1]
	cell, err := c.rt.read(op, callee)
	if err != nil {
		return KindFree, err
	}
	switch cell.Kind {
	case KindSymbol, KindClosure:
		return cell.Kind, nil
	}
	c.truncate(len(c.stack) - nargs - 1)
	return KindFree, failf(op, callee, ErrNotCallable, "%v", cell.Kind)
}

// enter replaces callee and arguments with a fresh frame for the closure.
// With save the caller environment is pushed and becomes the frame's return
// slot base. The lock must be held.
func (c *Context) enter(op string, nargs int, save bool) (*Proto, int, error) {
	if err := c.need(op, nargs+1); err != nil {
		return nil, 0, err
	}
	n := len(c.stack)
	callee := c.stack[n-1]
	start := n - nargs - 1
	cell, err := c.rt.readKind(op, callee, KindClosure)
	if err != nil {
		return nil, 0, err
	}
	proto := cell.Proto
	captured := cell.Captured
	if !proto.accepts(nargs) {
		c.truncate(start)
		return nil, 0, &OpError{
			Op:     op,
			Handle: callee,
			Name:   proto.Name,
			Err:    ErrArityMismatch,
			Detail: arityDetail(proto, nargs),
		}
	}

	c.rt.safepoint()

	vars := make(map[Symbol]Handle, proto.Arity+1)
	args := c.stack[start : n-1]
	for i := 0; i < proto.Arity; i++ {
		vars[c.rt.symbols.intern(proto.paramName(i))] = args[i]
	}
	if proto.Variadic {
		rest := c.rt.symbolCell(SymNil)
		for i := len(args) - 1; i >= proto.Arity; i-- {
			rest = c.rt.alloc(Cell{
				Kind: KindPair,
				Car:  args[i],
				Cdr:  rest,
			})
		}
		vars[c.rt.symbols.intern(proto.paramName(proto.Arity))] = rest
	}
	frame := c.rt.alloc(Cell{
		Kind: KindEnvironment,
		Env: &Env{
			Name:   "closure",
			Vars:   vars,
			Parent: captured,
		},
	})

	saved := c.env
	c.truncate(start)
	if save {
		c.push(saved)
	}
	c.env = frame
	return proto, len(c.stack), nil
}

// run executes proto's body and every tail call it requests in one loop.
// base is the depth above the saved caller environment.
func (c *Context) run(proto *Proto, base int, saved Handle) error {
	c.active++
	defer func() {
		c.active--
	}()

	for {
		if proto.Body == nil {
			return c.abort(base, saved, failName("call-closure", proto.Name, ErrMissingBody))
		}
		if err := proto.Body(c); err != nil {
			c.tail = -1
			return c.abort(base, saved, err)
		}
		if c.tail < 0 {
			break
		}
		nargs := c.tail
		c.tail = -1

		c.rt.mu.Lock()
		if depth := len(c.stack); depth != base+nargs+1 {
			c.rt.mu.Unlock()
			return c.abort(base, saved, failf("tail-call", NoHandle, ErrStackImbalance,
				"depth %d, expecting %d", depth, base+nargs+1))
		}
		next, _, err := c.enter("tail-call", nargs, false)
		c.rt.mu.Unlock()
		if err != nil {
			return c.abort(base, saved, err)
		}
		proto = next
	}

	defer c.lock()()
	switch depth := len(c.stack); {
	case depth < base+1:
		c.restore(base, saved)
		return failf("call-closure", NoHandle, ErrStackUnderflow,
			"%s left %d values", proto.Name, depth-base)
	case depth > base+1:
		c.restore(base, saved)
		return failf("call-closure", NoHandle, ErrStackImbalance,
			"%s left %d values", proto.Name, depth-base)
	}
	ret := c.stack[base]
	c.truncate(base - 1)
	c.env = saved
	c.push(ret)
	return nil
}

func (c *Context) abort(base int, saved Handle, err error) error {
	defer c.lock()()
	c.restore(base, saved)
	return err
}

func (c *Context) restore(base int, saved Handle) {
	c.truncate(base - 1)
	c.env = saved
}

// ListToStack pops a proper list and pushes its elements, returning their count.
func (c *Context) ListToStack() (int, error) {
	c.trace("list-to-stack")
	defer c.lock()()
	if err := c.need("list-to-stack", 1); err != nil {
		return 0, err
	}
	list := c.stack[len(c.stack)-1]
	elems, err := c.rt.listElems("list-to-stack", list)
	if err != nil {
		return 0, err
	}
	c.truncate(len(c.stack) - 1)
	c.stack = append(c.stack, elems...)
	return len(elems), nil
}

func (r *Runtime) listElems(op string, list Handle) ([]Handle, error) {
	var ret []Handle
	for h := list; ; {
		cell, err := r.read(op, h)
		if err != nil {
			return nil, err
		}
		switch {
		case cell.Kind == KindPair:
			ret = append(ret, cell.Car)
			h = cell.Cdr
			if len(ret) > len(r.heap.Slots) {
				return nil, failf(op, list, ErrTypeMismatch, "circular list")
			}
		case cell.Kind == KindSymbol && cell.Sym == SymNil:
			return ret, nil
		default:
			return nil, failf(op, list, ErrTypeMismatch, "improper list")
		}
	}
}

func arityDetail(proto *Proto, nargs int) string {
	if proto.Variadic {
		return fmt.Sprintf("expecting at least %d arguments, got %d", proto.Arity, nargs)
	}
	return fmt.Sprintf("expecting %d arguments, got %d", proto.Arity, nargs)
}
