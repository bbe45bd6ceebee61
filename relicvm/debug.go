package relicvm

// Debugger receives control at breakpoints, evaluated points and, in step
// state, at every runtime call. It runs without the runtime lock held and may
// use the Context, for example to print bindings or change the debug state.
type Debugger interface {
	Breakpoint(c *Context)
	Evaluated(c *Context, info string, optimized bool)
	APICalled(c *Context, op string, args []any)
}

func (r *Runtime) SetDebugger(d Debugger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debugger = d
}

func (r *Runtime) getDebugger() Debugger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debugger
}

func (r *Runtime) SetDebugState(state DebugState) {
	r.debugState.Store(int32(state))
}

func (r *Runtime) DebugState() DebugState {
	return DebugState(r.debugState.Load())
}

func (c *Context) debugger(level DebugState) Debugger {
	if c.tracing || c.rt.DebugState() < level {
		return nil
	}
	return c.rt.getDebugger()
}

func (c *Context) trace(op string, args ...any) {
	d := c.debugger(DebugStep)
	if d == nil {
		return
	}
	c.tracing = true
	defer func() {
		c.tracing = false
	}()
	c.rt.logger.Debug("api called", "op", op, "args", args)
	d.APICalled(c, op, args)
}

// Breakpoint enters the debugger unless debugging is off.
func (c *Context) Breakpoint() {
	d := c.debugger(DebugNormal)
	if d == nil {
		return
	}
	c.tracing = true
	defer func() {
		c.tracing = false
	}()
	c.rt.logger.Debug("hit a breakpoint")
	d.Breakpoint(c)
}

// Evaluated marks the end of evaluating the expression described by info.
// Unless optimized, the value is on top of the stack.
func (c *Context) Evaluated(info string, optimized bool) {
	d := c.debugger(DebugNext)
	if d == nil {
		return
	}
	c.tracing = true
	defer func() {
		c.tracing = false
	}()
	c.rt.logger.Debug("evaluated", "info", info, "optimized", optimized)
	d.Evaluated(c, info, optimized)
}
