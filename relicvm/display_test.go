package relicvm

import (
	"strings"
	"testing"
)

func TestDisplayCycles(t *testing.T) {
	_, c := newTestRuntime(1024)

	check(t, c.NewConstant("(1 2)"))
	list, err := c.Top()
	check(t, err)
	_, second, err := c.GetPair(list)
	check(t, err)
	_, err = c.SetCdr(second, list)
	check(t, err)
	if str := c.Display(list); str != "#0=(1 2 . #0#)" {
		t.Fatalf("got %v", str)
	}

	check(t, c.NewConstant("(1)"))
	self, err := c.Top()
	check(t, err)
	_, err = c.SetCdr(self, self)
	check(t, err)
	if str := c.Display(self); str != "#0=(1 . #0#)" {
		t.Fatalf("got %v", str)
	}

	check(t, c.NewConstant("(x)"))
	inCar, err := c.Top()
	check(t, err)
	_, err = c.SetCar(inCar, inCar)
	check(t, err)
	if str := c.Display(inCar); str != "#0=(#0#)" {
		t.Fatalf("got %v", str)
	}

	// shared structure without cycles is printed twice
	check(t, c.NewConstant("(1)"))
	shared, err := c.Pop()
	check(t, err)
	check(t, c.Push(shared))
	check(t, c.Push(shared))
	check(t, c.NewPair())
	pair, err := c.Top()
	check(t, err)
	if str := c.Display(pair); str != "((1) 1)" {
		t.Fatalf("got %v", str)
	}
}

func TestDisplayValues(t *testing.T) {
	rt, c := newTestRuntime(1024)
	top := c.Current()

	c.NewFloat(2.5)
	h, err := c.Pop()
	check(t, err)
	if str := rt.Display(h); str != "2.5" {
		t.Fatalf("got %v", str)
	}

	check(t, c.NewClosure(addProto))
	h, err = c.Pop()
	check(t, err)
	want := "<Closure add env: " + top.String() + ", nargs: 2>"
	if str := c.Display(h); str != want {
		t.Fatalf("got %v", str)
	}

	env, err := c.NewNamedEnvironment("inner", top)
	check(t, err)
	if str := c.Display(env); str != "<Environment inner, outer: "+top.String()+">" {
		t.Fatalf("got %v", str)
	}
	if str := c.Display(top); str != "<Environment top>" {
		t.Fatalf("got %v", str)
	}

	c.NewInteger(1)
	h, err = c.Pop()
	check(t, err)
	rt.Collect()
	if str := c.Display(h); !strings.HasPrefix(str, "<invalid") {
		t.Fatalf("got %v", str)
	}
}
