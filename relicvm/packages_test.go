package relicvm

import (
	"errors"
	"testing"
)

func TestImportOnce(t *testing.T) {
	rt, c := newTestRuntime(1024)
	runs := 0
	rt.Packages().Register("counter", func(c *Context) error {
		runs++
		return Seq(Def("from-counter", Int(1)), Drop1)(c)
	})

	check(t, c.Import("counter"))
	check(t, c.Import("counter"))
	if runs != 1 {
		t.Fatalf("got %v", runs)
	}
	if _, err := c.Get("from-counter"); err != nil {
		t.Fatal(err)
	}
	if !rt.Packages().IsLoaded("counter") {
		t.Fatal("not loaded")
	}
	if names := rt.Packages().Loaded(); len(names) != 1 || names[0] != "counter" {
		t.Fatalf("got %v", names)
	}
	if names := rt.Packages().Registered(); len(names) != 1 || names[0] != "counter" {
		t.Fatalf("got %v", names)
	}

	// a second runtime initializes again
	rt2, c2 := newTestRuntime(1024)
	rt2.Packages().Register("counter", func(c *Context) error {
		runs++
		return nil
	})
	check(t, c2.Import("counter"))
	if runs != 2 {
		t.Fatalf("got %v", runs)
	}
}

func TestImportErrors(t *testing.T) {
	rt, c := newTestRuntime(1024)
	expectErr(t, c.Import("nope"), ErrUnknownPackage)

	boom := errors.New("boom")
	rt.Packages().Register("failing", func(*Context) error {
		return boom
	})
	expectErr(t, c.Import("failing"), boom)
	if rt.Packages().IsLoaded("failing") {
		t.Fatal("failed package is loaded")
	}

	rt.Packages().Register("leaky", Int(1))
	expectErr(t, c.Import("leaky"), ErrStackImbalance)
	if rt.Packages().IsLoaded("leaky") {
		t.Fatal("failed package is loaded")
	}
}

func TestMarkLoaded(t *testing.T) {
	rt, _ := newTestRuntime(1024)
	if !rt.Packages().MarkLoaded("p") {
		t.Fatal("expecting first mark")
	}
	if rt.Packages().MarkLoaded("p") {
		t.Fatal("expecting marked")
	}
}

func TestImportNested(t *testing.T) {
	rt, c := newTestRuntime(1024)
	var order []string
	rt.Packages().Register("base", func(c *Context) error {
		order = append(order, "base")
		return nil
	})
	rt.Packages().Register("app", func(c *Context) error {
		if err := c.Import("base"); err != nil {
			return err
		}
		order = append(order, "app")
		return nil
	})
	check(t, c.Import("app"))
	check(t, c.Import("base"))
	if len(order) != 2 || order[0] != "base" || order[1] != "app" {
		t.Fatalf("got %v", order)
	}
}
