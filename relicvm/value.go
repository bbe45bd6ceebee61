package relicvm

func (c *Context) NewInteger(v int64) {
	c.trace("new-integer", v)
	defer c.lock()()
	c.rt.safepoint()
	c.push(c.rt.alloc(Cell{
		Kind: KindInteger,
		Int:  v,
	}))
}

func (c *Context) NewFloat(v float64) {
	c.trace("new-float", v)
	defer c.lock()()
	c.rt.safepoint()
	c.push(c.rt.alloc(Cell{
		Kind:  KindFloat,
		Float: v,
	}))
}

func (c *Context) NewSymbol(name string) {
	c.trace("new-symbol", name)
	defer c.lock()()
	c.rt.safepoint()
	c.push(c.rt.symbolCell(c.rt.symbols.intern(name)))
}

// NewBool pushes t or nil.
func (c *Context) NewBool(v bool) {
	c.trace("new-bool", v)
	defer c.lock()()
	c.rt.safepoint()
	c.push(c.rt.boolCell(v))
}

// NewPair pops the cdr, then the car, and pushes the pair. Push the car
// first: the top of the stack becomes the cdr. This is the reverse of
// runtimes that pop the car first.
func (c *Context) NewPair() error {
	c.trace("new-pair")
	defer c.lock()()
	if err := c.need("new-pair", 2); err != nil {
		return err
	}
	c.rt.safepoint()
	n := len(c.stack)
	pair := c.rt.alloc(Cell{
		Kind: KindPair,
		Car:  c.stack[n-2],
		Cdr:  c.stack[n-1],
	})
	c.truncate(n - 2)
	c.push(pair)
	return nil
}

func (c *Context) SetCar(h Handle, target Handle) (Handle, error) {
	c.trace("set-car", h, target)
	defer c.lock()()
	return c.setPairField("set-car", h, target, true)
}

func (c *Context) SetCdr(h Handle, target Handle) (Handle, error) {
	c.trace("set-cdr", h, target)
	defer c.lock()()
	return c.setPairField("set-cdr", h, target, false)
}

func (c *Context) setPairField(op string, h Handle, target Handle, car bool) (Handle, error) {
	if !c.rt.heap.valid(target) {
		return NoHandle, fail(op, target, ErrInvalidHandle)
	}
	cell, err := c.rt.readKind(op, h, KindPair)
	if err != nil {
		return NoHandle, err
	}
	if car {
		cell.Car = target
	} else {
		cell.Cdr = target
	}
	return h, nil
}

func (c *Context) GetInteger(h Handle) (int64, error) {
	c.trace("get-integer", h)
	defer c.lock()()
	cell, err := c.rt.readKind("get-integer", h, KindInteger)
	if err != nil {
		return 0, err
	}
	return cell.Int, nil
}

func (c *Context) GetFloat(h Handle) (float64, error) {
	c.trace("get-float", h)
	defer c.lock()()
	cell, err := c.rt.readKind("get-float", h, KindFloat)
	if err != nil {
		return 0, err
	}
	return cell.Float, nil
}

// GetSymbol returns the name of a symbol.
func (c *Context) GetSymbol(h Handle) (string, error) {
	c.trace("get-symbol", h)
	defer c.lock()()
	cell, err := c.rt.readKind("get-symbol", h, KindSymbol)
	if err != nil {
		return "", err
	}
	return c.rt.symbols.name(cell.Sym), nil
}

// GetPair returns the car and cdr handles of a pair.
func (c *Context) GetPair(h Handle) (car Handle, cdr Handle, err error) {
	c.trace("get-pair", h)
	defer c.lock()()
	cell, err := c.rt.readKind("get-pair", h, KindPair)
	if err != nil {
		return NoHandle, NoHandle, err
	}
	return cell.Car, cell.Cdr, nil
}

// GetBool reports false for the symbol nil and true for every other value.
func (c *Context) GetBool(h Handle) (bool, error) {
	c.trace("get-bool", h)
	defer c.lock()()
	cell, err := c.rt.read("get-bool", h)
	if err != nil {
		return false, err
	}
	return !(cell.Kind == KindSymbol && cell.Sym == SymNil), nil
}

func (c *Context) IsSymbol(h Handle) (bool, error) {
	c.trace("is-symbol", h)
	defer c.lock()()
	cell, err := c.rt.read("is-symbol", h)
	if err != nil {
		return false, err
	}
	return cell.Kind == KindSymbol, nil
}

// Kind returns the kind of the cell addressed by h.
func (c *Context) Kind(h Handle) (Kind, error) {
	defer c.lock()()
	cell, err := c.rt.read("kind", h)
	if err != nil {
		return KindFree, err
	}
	return cell.Kind, nil
}

func (r *Runtime) boolCell(v bool) Handle {
	if v {
		return r.symbolCell(SymT)
	}
	return r.symbolCell(SymNil)
}
