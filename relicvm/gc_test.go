package relicvm

import "testing"

func TestCollectCycle(t *testing.T) {
	rt, c := newTestRuntime(1024)
	before := rt.Live()

	c.NewInteger(1)
	c.NewInteger(2)
	check(t, c.NewPair())
	c.NewInteger(3)
	c.NewInteger(4)
	check(t, c.NewPair())
	b, err := c.Pop()
	check(t, err)
	a, err := c.Pop()
	check(t, err)
	_, err = c.SetCdr(a, b)
	check(t, err)
	_, err = c.SetCdr(b, a)
	check(t, err)

	stats := rt.Collect()
	if stats.Freed != 6 {
		t.Fatalf("got %v", stats.Freed)
	}
	if stats.Live != before || rt.Live() != before {
		t.Fatalf("got %v", stats.Live)
	}
	_, _, err = c.GetPair(a)
	expectErr(t, err, ErrInvalidHandle)

	slots := len(rt.heap.Slots)
	for i := range 6 {
		c.NewInteger(int64(i))
	}
	if len(rt.heap.Slots) != slots {
		t.Fatalf("freed slots not reused: %v", len(rt.heap.Slots))
	}
}

func TestRootIndependence(t *testing.T) {
	rt, c := newTestRuntime(1024)
	c.NewInteger(5)
	h, err := c.Pop()
	check(t, err)
	check(t, c.AddRoot("a", h))
	check(t, c.AddRoot("b", h))
	expectErr(t, c.AddRoot("a", h), ErrDuplicateRoot)

	if names := rt.Roots(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("got %v", names)
	}

	got, err := c.RemoveRoot("a")
	check(t, err)
	if got != h {
		t.Fatalf("got %v", got)
	}
	rt.Collect()
	if v, err := c.GetInteger(h); err != nil || v != 5 {
		t.Fatalf("got %v %v", v, err)
	}

	_, err = c.RemoveRoot("b")
	check(t, err)
	rt.Collect()
	_, err = c.GetInteger(h)
	expectErr(t, err, ErrInvalidHandle)

	_, err = c.RemoveRoot("b")
	expectErr(t, err, ErrUnknownRoot)
	_, err = c.GetRoot("b")
	expectErr(t, err, ErrUnknownRoot)
	expectErr(t, c.AddRoot("c", h), ErrInvalidHandle)
}

func TestSetRoot(t *testing.T) {
	_, c := newTestRuntime(1024)
	c.NewInteger(1)
	c.NewInteger(2)
	two, err := c.Pop()
	check(t, err)
	one, err := c.Pop()
	check(t, err)
	check(t, c.SetRoot("x", one))
	check(t, c.SetRoot("x", two))
	got, err := c.GetRoot("x")
	check(t, err)
	if got != two {
		t.Fatalf("got %v", got)
	}
}

func TestCollectReachable(t *testing.T) {
	rt, c := newTestRuntime(1024)
	// environment chain, closure capture and stack values survive
	check(t, Seq(Def("x", Const("(1 2 3)")), Drop1)(c))
	env, err := c.NewEnvironment(c.Current())
	check(t, err)
	check(t, c.MoveTo(env))
	check(t, Seq(Def("f", Lambda(addProto)), Drop1)(c))
	c.NewFloat(2.5)

	live := rt.Live()
	stats := rt.Collect()
	if stats.Freed == 0 {
		// the nil values left by Def were dropped
		t.Fatal("expecting garbage")
	}
	if rt.Live() >= live {
		t.Fatalf("got %v", rt.Live())
	}

	if str := display(t, c, Load("x")); str != "(1 2 3)" {
		t.Fatalf("got %v", str)
	}
	if str := display(t, c, Seq(Int(1), Int(2), Load("f"), CallN(2))); str != "3" {
		t.Fatalf("got %v", str)
	}
	h, err := c.Pop()
	check(t, err)
	if v, err := c.GetFloat(h); err != nil || v != 2.5 {
		t.Fatalf("got %v %v", v, err)
	}
}

func TestSafepointKeepsOperands(t *testing.T) {
	rt, c := newTestRuntime(4)
	c.NewSymbol("nil")
	for i := range 100 {
		c.NewInteger(int64(i))
		check(t, c.Swap())
		check(t, c.NewPair())
	}
	n, err := c.ListToStack()
	check(t, err)
	if n != 100 {
		t.Fatalf("got %v", n)
	}
	check(t, c.Drop(n))

	if rt.Stats().Cycle == 0 {
		t.Fatal("expecting collections")
	}
	if rt.Capacity() <= 4 {
		t.Fatalf("heap did not grow: %v", rt.Capacity())
	}
}

func TestGrowth(t *testing.T) {
	config := DefaultConfig()
	config.HeapCapacity = 8
	config.GrowthFactor = 1.5
	config.GCThreshold = 0.5
	rt := New(config, nil)
	c := rt.Main()
	for i := range 10 {
		c.NewInteger(int64(i))
	}
	stats := rt.Stats()
	if stats.Cycle == 0 {
		t.Fatal("expecting collections")
	}
	if float64(stats.Live) >= float64(stats.Capacity)*0.5 {
		t.Fatalf("got %+v", stats)
	}
}

func BenchmarkAlloc(b *testing.B) {
	_, c := newTestRuntime(1024)
	for b.Loop() {
		c.NewInteger(1)
		if err := c.Drop(1); err != nil {
			b.Fatal(err)
		}
	}
}
