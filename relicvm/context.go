package relicvm

// Context is the per-thread execution state: an operand stack and the
// current-environment register. A Context must be used by one goroutine at a
// time; distinct Contexts of the same Runtime may run concurrently.
type Context struct {
	rt      *Runtime
	stack   []Handle
	env     Handle
	tail    int
	active  int
	tracing bool
}

func (c *Context) Runtime() *Runtime {
	return c.rt
}

// Close unregisters the Context, so its stack and environment stop being roots.
func (c *Context) Close() {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	delete(c.rt.contexts, c)
	c.stack = nil
	c.env = NoHandle
}

func (c *Context) lock() func() {
	c.rt.mu.Lock()
	return c.rt.mu.Unlock
}

func (c *Context) push(h Handle) {
	c.stack = append(c.stack, h)
}

func (c *Context) truncate(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth < len(c.stack) {
		clear(c.stack[depth:])
		c.stack = c.stack[:depth]
	}
}

func (c *Context) need(op string, n int) error {
	if n < 0 || len(c.stack) < n {
		return failf(op, NoHandle, ErrStackUnderflow, "need %d, depth %d", n, len(c.stack))
	}
	return nil
}

func (c *Context) Push(h Handle) error {
	c.trace("push", h)
	defer c.lock()()
	if !c.rt.heap.valid(h) {
		return fail("push", h, ErrInvalidHandle)
	}
	c.push(h)
	return nil
}

func (c *Context) Pop() (Handle, error) {
	c.trace("pop")
	defer c.lock()()
	return c.pop("pop")
}

func (c *Context) pop(op string) (Handle, error) {
	if err := c.need(op, 1); err != nil {
		return NoHandle, err
	}
	h := c.stack[len(c.stack)-1]
	c.stack[len(c.stack)-1] = NoHandle
	c.stack = c.stack[:len(c.stack)-1]
	return h, nil
}

func (c *Context) Top() (Handle, error) {
	c.trace("top")
	defer c.lock()()
	if err := c.need("top", 1); err != nil {
		return NoHandle, err
	}
	return c.stack[len(c.stack)-1], nil
}

func (c *Context) Swap() error {
	c.trace("swap")
	defer c.lock()()
	if err := c.need("swap", 2); err != nil {
		return err
	}
	n := len(c.stack)
	c.stack[n-1], c.stack[n-2] = c.stack[n-2], c.stack[n-1]
	return nil
}

func (c *Context) Depth() int {
	defer c.lock()()
	return len(c.stack)
}

// Drop discards the top n values.
func (c *Context) Drop(n int) error {
	c.trace("drop", n)
	defer c.lock()()
	if err := c.need("drop", n); err != nil {
		return err
	}
	c.truncate(len(c.stack) - n)
	return nil
}

// Stack returns a copy of the operand stack, bottom first.
func (c *Context) Stack() []Handle {
	defer c.lock()()
	return append([]Handle(nil), c.stack...)
}
