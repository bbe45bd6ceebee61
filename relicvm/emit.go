package relicvm

// Combinators for writing bodies in the shape a code generator emits.
// Each pushes or consumes values on the operand stack like the Context
// method it wraps.

func Seq(bodies ...Body) Body {
	return func(c *Context) error {
		for _, body := range bodies {
			if err := body(c); err != nil {
				return err
			}
		}
		return nil
	}
}

func Int(v int64) Body {
	return func(c *Context) error {
		c.NewInteger(v)
		return nil
	}
}

func Float(v float64) Body {
	return func(c *Context) error {
		c.NewFloat(v)
		return nil
	}
}

func Sym(name string) Body {
	return func(c *Context) error {
		c.NewSymbol(name)
		return nil
	}
}

func Const(expr string) Body {
	return func(c *Context) error {
		return c.NewConstant(expr)
	}
}

// Load pushes the value bound to name.
func Load(name string) Body {
	return func(c *Context) error {
		return c.Load(name)
	}
}

// Def evaluates value and binds it to name in the current frame, leaving nil.
func Def(name string, value Body) Body {
	return func(c *Context) error {
		if err := value(c); err != nil {
			return err
		}
		h, err := c.Top()
		if err != nil {
			return err
		}
		if err := c.Define(name, h); err != nil {
			return err
		}
		if err := c.Drop(1); err != nil {
			return err
		}
		c.NewSymbol("nil")
		return nil
	}
}

// SetVar evaluates value and rebinds name, leaving nil.
func SetVar(name string, value Body) Body {
	return func(c *Context) error {
		if err := value(c); err != nil {
			return err
		}
		h, err := c.Top()
		if err != nil {
			return err
		}
		if err := c.Set(name, h); err != nil {
			return err
		}
		if err := c.Drop(1); err != nil {
			return err
		}
		c.NewSymbol("nil")
		return nil
	}
}

func Lambda(proto *Proto) Body {
	return func(c *Context) error {
		return c.NewClosure(proto)
	}
}

func ApplyN(nargs int) Body {
	return func(c *Context) error {
		return c.Apply(nargs)
	}
}

func CallN(nargs int) Body {
	return func(c *Context) error {
		return c.Call(nargs)
	}
}

func TailCallN(nargs int) Body {
	return func(c *Context) error {
		return c.TailCall(nargs)
	}
}

// If evaluates test, drops its value and continues with then unless it is nil.
func If(test Body, then Body, otherwise Body) Body {
	return func(c *Context) error {
		if err := test(c); err != nil {
			return err
		}
		// read before dropping; a popped handle is not a root
		h, err := c.Top()
		if err != nil {
			return err
		}
		ok, err := c.GetBool(h)
		if err != nil {
			return err
		}
		if err := c.Drop(1); err != nil {
			return err
		}
		if ok {
			return then(c)
		}
		return otherwise(c)
	}
}

// Drop1 discards the top value, as between expressions of a begin.
func Drop1(c *Context) error {
	return c.Drop(1)
}
