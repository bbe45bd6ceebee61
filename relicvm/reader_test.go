package relicvm

import "testing"

func TestConstantRoundTrip(t *testing.T) {
	_, c := newTestRuntime(1024)
	cases := [][2]string{
		{"(2 (3 . /) <= (5 a))", "(2 (3 . /) <= (5 a))"},
		{"(1 . (2 . (3 . ())))", "(1 2 3)"},
		{"()", "nil"},
		{"( )", "nil"},
		{"-5", "-5"},
		{"+", "+"},
		{"-", "-"},
		{"1.5e3", "1500"},
		{".5", "0.5"},
		{"a.b", "a.b"},
		{"1+", "1+"},
		{"(1 ; comment\n 2)", "(1 2)"},
		{"  (nested (lists (here)))  ", "(nested (lists (here)))"},
		{"(() ())", "(nil nil)"},
	}
	for _, tc := range cases {
		check(t, c.NewConstant(tc[0]))
		h, err := c.Pop()
		check(t, err)
		if got := c.Display(h); got != tc[1] {
			t.Fatalf("%q: got %v, expecting %v", tc[0], got, tc[1])
		}
	}
}

func TestConstantKinds(t *testing.T) {
	_, c := newTestRuntime(1024)
	check(t, c.NewConstant("-5"))
	h, err := c.Pop()
	check(t, err)
	if v, err := c.GetInteger(h); err != nil || v != -5 {
		t.Fatalf("got %v %v", v, err)
	}
	check(t, c.NewConstant("2.0"))
	h, err = c.Pop()
	check(t, err)
	if v, err := c.GetFloat(h); err != nil || v != 2 {
		t.Fatalf("got %v %v", v, err)
	}
	check(t, c.NewConstant("12abc"))
	h, err = c.Pop()
	check(t, err)
	if v, err := c.GetSymbol(h); err != nil || v != "12abc" {
		t.Fatalf("got %v %v", v, err)
	}
}

func TestConstantSyntaxErrors(t *testing.T) {
	_, c := newTestRuntime(1024)
	for _, src := range []string{
		"",
		"(1 2",
		")",
		"(1 . )",
		"( . 1)",
		"(1 . 2 3)",
		"1 2",
		"'a",
		"(a `b)",
		`"str"`,
	} {
		err := c.NewConstant(src)
		expectErr(t, err, ErrSyntax)
		if IsFatal(err) {
			t.Fatalf("%q: syntax errors are not fatal", src)
		}
		if c.Depth() != 0 {
			t.Fatalf("%q: got depth %v", src, c.Depth())
		}
	}
}

func TestConstantCollects(t *testing.T) {
	rt, c := newTestRuntime(8)
	for range 50 {
		check(t, c.NewConstant("(1 2 3 4 5 6 7 8 9 10)"))
		check(t, c.Drop(1))
	}
	check(t, c.NewConstant("(1 2 3 4 5 6 7 8 9 10)"))
	h, err := c.Pop()
	check(t, err)
	if str := c.Display(h); str != "(1 2 3 4 5 6 7 8 9 10)" {
		t.Fatalf("got %v", str)
	}
	if rt.Stats().Cycle == 0 {
		t.Fatal("expecting collections")
	}
}
