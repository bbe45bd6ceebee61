package relicvm

import (
	"errors"
	"testing"
)

func newTestRuntime(capacity int) (*Runtime, *Context) {
	config := DefaultConfig()
	config.HeapCapacity = capacity
	rt := New(config, nil)
	return rt, rt.Main()
}

func check(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func expectErr(t testing.TB, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expecting %v, got %v", target, err)
	}
}

// eval runs body and pops its single value.
func eval(t testing.TB, c *Context, body Body) Handle {
	t.Helper()
	depth := c.Depth()
	check(t, body(c))
	if d := c.Depth(); d != depth+1 {
		t.Fatalf("got depth %d, expecting %d", d, depth+1)
	}
	h, err := c.Pop()
	check(t, err)
	return h
}

func display(t testing.TB, c *Context, body Body) string {
	t.Helper()
	return c.Display(eval(t, c, body))
}
