package relicvm

import (
	"bytes"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	rt, c := newTestRuntime(1024)
	check(t, Seq(
		Def("x", Const("(1 2.5 sym)")),
		Drop1,
		Def("add", Lambda(addProto)),
		Drop1,
	)(c))
	c.NewInteger(42)
	h, err := c.Pop()
	check(t, err)
	check(t, c.AddRoot("answer", h))
	rt.Packages().MarkLoaded("pkg")
	c.NewSymbol("on-stack")

	buf := new(bytes.Buffer)
	check(t, rt.Snapshot(buf))
	data := buf.Bytes()

	// restore with the body registered
	rt2 := New(DefaultConfig(), nil)
	rt2.RegisterProto(addProto)
	check(t, rt2.Restore(bytes.NewReader(data)))
	c2 := rt2.Main()
	if rt2.Live() != rt.Live() {
		t.Fatalf("got %v, expecting %v", rt2.Live(), rt.Live())
	}

	if str := display(t, c2, Load("x")); str != "(1 2.5 sym)" {
		t.Fatalf("got %v", str)
	}
	if str := display(t, c2, Seq(Int(1), Int(2), Load("add"), CallN(2))); str != "3" {
		t.Fatalf("got %v", str)
	}
	root, err := c2.GetRoot("answer")
	check(t, err)
	if v, err := c2.GetInteger(root); err != nil || v != 42 {
		t.Fatalf("got %v %v", v, err)
	}
	if !rt2.Packages().IsLoaded("pkg") {
		t.Fatal("loaded packages not restored")
	}
	if c2.Depth() != 1 {
		t.Fatalf("got %v", c2.Depth())
	}
	top, err := c2.Pop()
	check(t, err)
	if name, err := c2.GetSymbol(top); err != nil || name != "on-stack" {
		t.Fatalf("got %v %v", name, err)
	}

	// new symbols do not collide with restored ones
	c2.NewSymbol("fresh")
	fresh, err := c2.Pop()
	check(t, err)
	if name, _ := c2.GetSymbol(fresh); name != "fresh" {
		t.Fatalf("got %v", name)
	}

	// restore without the body
	rt3 := New(DefaultConfig(), nil)
	check(t, rt3.Restore(bytes.NewReader(data)))
	c3 := rt3.Main()
	check(t, c3.Drop(1))
	check(t, Seq(Int(1), Int(2), Load("add"))(c3))
	expectErr(t, c3.CallClosure(2), ErrMissingBody)
	if c3.Depth() != 0 {
		t.Fatalf("got %v", c3.Depth())
	}
	if str := display(t, c3, Load("x")); str != "(1 2.5 sym)" {
		t.Fatalf("got %v", str)
	}
}

func TestSnapshotCollectAfterRestore(t *testing.T) {
	rt, c := newTestRuntime(16)
	check(t, Seq(Def("x", Const("(1 2 3)")), Drop1)(c))
	buf := new(bytes.Buffer)
	check(t, rt.Snapshot(buf))

	rt2 := New(DefaultConfig(), nil)
	check(t, rt2.Restore(buf))
	c2 := rt2.Main()
	for i := range 200 {
		c2.NewInteger(int64(i))
		check(t, c2.Drop(1))
	}
	if rt2.Stats().Cycle == 0 {
		t.Fatal("expecting collections")
	}
	if str := display(t, c2, Load("x")); str != "(1 2 3)" {
		t.Fatalf("got %v", str)
	}
}

func TestRestoreResetsOtherContexts(t *testing.T) {
	rt, c := newTestRuntime(64)
	c.NewInteger(7)
	buf := new(bytes.Buffer)
	check(t, rt.Snapshot(buf))

	rt2 := New(DefaultConfig(), nil)
	other := rt2.NewContext()
	defer other.Close()
	other.NewInteger(1)
	env, err := other.NewEnvironment(rt2.TopEnvironment())
	check(t, err)
	check(t, other.MoveTo(env))

	check(t, rt2.Restore(buf))
	if d := other.Depth(); d != 0 {
		t.Fatalf("got %v", d)
	}
	if other.Current() != rt2.TopEnvironment() {
		t.Fatalf("got %v", other.Current())
	}
	if d := rt2.Main().Depth(); d != 1 {
		t.Fatalf("got %v", d)
	}
	top, err := rt2.Main().Top()
	check(t, err)
	if v, err := rt2.Main().GetInteger(top); err != nil || v != 7 {
		t.Fatalf("got %v %v", v, err)
	}
}

func TestSnapshotRestoreBadInput(t *testing.T) {
	rt, _ := newTestRuntime(16)
	if err := rt.Restore(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Fatal("expecting error")
	}
}
