package relicvm

import (
	"slices"
	"testing"
)

type recorder struct {
	breakpoints int
	evaluated   []string
	calls       []string
}

func (r *recorder) Breakpoint(c *Context) {
	r.breakpoints++
	// calls made from the debugger are not traced
	c.NewInteger(0)
	c.Drop(1)
}

func (r *recorder) Evaluated(c *Context, info string, optimized bool) {
	if !optimized {
		h, _ := c.Top()
		info += " = " + c.Display(h)
	}
	r.evaluated = append(r.evaluated, info)
}

func (r *recorder) APICalled(c *Context, op string, args []any) {
	r.calls = append(r.calls, op)
	c.Depth()
	c.Top()
}

func TestDebugStates(t *testing.T) {
	rt, c := newTestRuntime(1024)
	rec := new(recorder)
	rt.SetDebugger(rec)

	c.Breakpoint()
	c.NewInteger(1)
	c.Evaluated("one", false)
	if rec.breakpoints != 0 || len(rec.evaluated) != 0 || len(rec.calls) != 0 {
		t.Fatalf("got %+v", rec)
	}

	rt.SetDebugState(DebugNormal)
	c.Breakpoint()
	c.Evaluated("one", false)
	if rec.breakpoints != 1 || len(rec.evaluated) != 0 {
		t.Fatalf("got %+v", rec)
	}

	rt.SetDebugState(DebugNext)
	c.Evaluated("one", false)
	c.Evaluated("opt", true)
	if !slices.Equal(rec.evaluated, []string{"one = 1", "opt"}) {
		t.Fatalf("got %v", rec.evaluated)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("got %v", rec.calls)
	}

	rt.SetDebugState(DebugStep)
	c.NewInteger(2)
	check(t, c.Swap())
	if !slices.Equal(rec.calls, []string{"new-integer", "swap"}) {
		t.Fatalf("got %v", rec.calls)
	}
	c.Breakpoint()
	if rec.breakpoints != 2 || len(rec.calls) != 2 {
		t.Fatalf("got %+v", rec)
	}

	rt.SetDebugState(DebugOff)
	c.NewInteger(3)
	if len(rec.calls) != 2 {
		t.Fatalf("got %v", rec.calls)
	}
}

func TestParseDebugState(t *testing.T) {
	for _, state := range []DebugState{DebugOff, DebugNormal, DebugNext, DebugStep} {
		got, err := ParseDebugState(state.String())
		check(t, err)
		if got != state {
			t.Fatalf("got %v", got)
		}
	}
	if got, err := ParseDebugState(" STEP "); err != nil || got != DebugStep {
		t.Fatalf("got %v %v", got, err)
	}
	if _, err := ParseDebugState("bogus"); err == nil {
		t.Fatal("expecting error")
	}
}

func TestConfigDebugState(t *testing.T) {
	config := DefaultConfig()
	config.Debug = "next"
	rt := New(config, nil)
	if rt.DebugState() != DebugNext {
		t.Fatalf("got %v", rt.DebugState())
	}
}
