package relicvm

// NewEnvironment allocates a frame whose parent is outer.
// A NoHandle outer makes a parentless frame.
func (c *Context) NewEnvironment(outer Handle) (Handle, error) {
	return c.NewNamedEnvironment("env", outer)
}

func (c *Context) NewNamedEnvironment(name string, outer Handle) (Handle, error) {
	c.trace("new-environment", name, outer)
	defer c.lock()()
	if outer != NoHandle {
		if _, err := c.rt.readKind("new-environment", outer, KindEnvironment); err != nil {
			return NoHandle, err
		}
	}
	c.rt.safepoint(outer)
	return c.rt.alloc(Cell{
		Kind: KindEnvironment,
		Env: &Env{
			Name:   name,
			Vars:   make(map[Symbol]Handle),
			Parent: outer,
		},
	}), nil
}

// MoveTo sets the current environment.
func (c *Context) MoveTo(env Handle) error {
	c.trace("move-to", env)
	defer c.lock()()
	if _, err := c.rt.readKind("move-to", env, KindEnvironment); err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *Context) Current() Handle {
	c.trace("current")
	defer c.lock()()
	return c.env
}

// Define binds name in the current frame.
func (c *Context) Define(name string, v Handle) error {
	c.trace("define", name, v)
	defer c.lock()()
	return c.define("define", c.env, name, v)
}

func (c *Context) define(op string, envHandle Handle, name string, v Handle) error {
	if !c.rt.heap.valid(v) {
		return fail(op, v, ErrInvalidHandle)
	}
	cell, err := c.rt.readKind(op, envHandle, KindEnvironment)
	if err != nil {
		return err
	}
	if cell.Env.Vars == nil {
		cell.Env.Vars = make(map[Symbol]Handle)
	}
	cell.Env.Vars[c.rt.symbols.intern(name)] = v
	return nil
}

// Set rebinds name in the nearest frame that defines it.
func (c *Context) Set(name string, v Handle) error {
	c.trace("set", name, v)
	defer c.lock()()
	if !c.rt.heap.valid(v) {
		return fail("set", v, ErrInvalidHandle)
	}
	frame, err := c.rt.resolve("set", c.env, name)
	if err != nil {
		return err
	}
	frame.Vars[c.rt.symbols.intern(name)] = v
	return nil
}

func (c *Context) Get(name string) (Handle, error) {
	c.trace("get", name)
	defer c.lock()()
	frame, err := c.rt.resolve("get", c.env, name)
	if err != nil {
		return NoHandle, err
	}
	sym, _ := c.rt.symbols.lookup(name)
	return frame.Vars[sym], nil
}

// Load pushes the value bound to name.
func (c *Context) Load(name string) error {
	c.trace("load", name)
	defer c.lock()()
	frame, err := c.rt.resolve("load", c.env, name)
	if err != nil {
		return err
	}
	sym, _ := c.rt.symbols.lookup(name)
	c.push(frame.Vars[sym])
	return nil
}

// resolve returns the innermost frame of the chain starting at env that binds name.
func (r *Runtime) resolve(op string, env Handle, name string) (*Env, error) {
	sym, ok := r.symbols.lookup(name)
	if !ok {
		return nil, failName(op, name, ErrUnboundVariable)
	}
	for h := env; h != NoHandle; {
		cell, err := r.readKind(op, h, KindEnvironment)
		if err != nil {
			return nil, err
		}
		if _, ok := cell.Env.Vars[sym]; ok {
			return cell.Env, nil
		}
		h = cell.Env.Parent
	}
	return nil, failName(op, name, ErrUnboundVariable)
}
