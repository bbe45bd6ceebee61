package relicvm

import (
	"context"
	"errors"
	"iter"
)

// ResultRoot names the root that holds the value of the last form run.
const ResultRoot = "_"

// Run evaluates top-level forms in order, yielding each form's value.
// A form that fails is abandoned with the stack and current environment as
// they were before it, and its error is yielded. A fatal error stops the run.
func (c *Context) Run(ctx context.Context, forms ...Body) iter.Seq2[Handle, error] {
	return func(yield func(Handle, error) bool) {
		for _, form := range forms {
			if err := ctx.Err(); err != nil {
				yield(NoHandle, err)
				return
			}

			ret, err := c.runForm(form)
			if err != nil {
				if IsFatal(err) {
					args := []any{"error", err}
					var opErr *OpError
					if errors.As(err, &opErr) {
						args = append(args, "op", opErr.Op, "handle", opErr.Handle)
					}
					c.rt.logger.ErrorContext(ctx, "fatal runtime error", args...)
					yield(NoHandle, err)
					return
				}
				if !yield(NoHandle, err) {
					return
				}
				continue
			}

			if !yield(ret, nil) {
				return
			}
		}
	}
}

func (r *Runtime) Run(ctx context.Context, forms ...Body) iter.Seq2[Handle, error] {
	return r.main.Run(ctx, forms...)
}

func (c *Context) runForm(form Body) (Handle, error) {
	c.rt.mu.Lock()
	depth := len(c.stack)
	env := c.env
	c.rt.mu.Unlock()

	err := form(c)

	defer c.lock()()
	c.tail = -1
	if err != nil {
		c.truncate(depth)
		c.env = env
		return NoHandle, err
	}
	switch d := len(c.stack); {
	case d < depth+1:
		c.env = env
		return NoHandle, failf("run", NoHandle, ErrStackUnderflow, "form left %d values", d-depth)
	case d > depth+1:
		c.truncate(depth)
		c.env = env
		return NoHandle, failf("run", NoHandle, ErrStackImbalance, "form left %d values", d-depth)
	}
	ret, _ := c.pop("run")
	c.rt.roots[ResultRoot] = ret
	return ret, nil
}
