package debugs

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/relic/logs"
	"github.com/reusee/relic/modes"
	"github.com/reusee/relic/relicvm"
)

func script(lines ...string) ReadLine {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func withDebugger(t *testing.T, readLine ReadLine, fn func(c *relicvm.Context, d *Debugger, out *bytes.Buffer)) {
	t.Helper()
	logBuf := new(bytes.Buffer)
	dscope.New(modes.ForTest(t), new(Module)).Fork(
		func() logs.Writer {
			return logBuf
		},
	).Call(func(
		newDebugger NewDebugger,
	) {
		out := new(bytes.Buffer)
		d := newDebugger(readLine, out)
		rt := relicvm.New(relicvm.DefaultConfig(), nil)
		rt.SetDebugger(d)
		rt.SetDebugState(relicvm.DebugNormal)
		fn(rt.Main(), d, out)
	})
}

func TestDebuggerCommands(t *testing.T) {
	withDebugger(t, script(
		"p x",
		"p x + 1",
		"print",
		"r",
		"stack",
		"graph",
		"bogus",
		"",
		"c",
	), func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		define(t, c, "x", "1")
		c.NewInteger(42)
		c.Breakpoint()
		if state := c.Runtime().DebugState(); state != relicvm.DebugNormal {
			t.Fatalf("got %v", state)
		}
		str := out.String()
		for _, want := range []string{
			"hit a breakpoint",
			"x = 1",
			"x + 1 = 2",
			"live: ",
			"0: 42",
			"digraph env {",
			"available commands",
		} {
			if !strings.Contains(str, want) {
				t.Fatalf("missing %q in\n%s", want, str)
			}
		}
	})
}

func TestDebuggerStep(t *testing.T) {
	withDebugger(t, script(
		"s",
		"stack",
		"c",
	), func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		c.Breakpoint()
		if state := c.Runtime().DebugState(); state != relicvm.DebugStep {
			t.Fatalf("got %v", state)
		}
		c.NewInteger(5)
		if state := c.Runtime().DebugState(); state != relicvm.DebugNormal {
			t.Fatalf("got %v", state)
		}
		if !strings.Contains(out.String(), "api called: new-integer(5)") {
			t.Fatalf("got %s", out.String())
		}
		// the value is pushed after the debugger returns
		if c.Depth() != 1 {
			t.Fatalf("got %v", c.Depth())
		}
	})
}

func TestDebuggerNext(t *testing.T) {
	withDebugger(t, script(
		"n",
		"c",
	), func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		c.Breakpoint()
		c.NewInteger(3)
		c.Evaluated("(+ 1 2)", false)
		c.Evaluated("(define y 1)", true)
		str := out.String()
		if !strings.Contains(str, "(+ 1 2)\n\t|-> 3") {
			t.Fatalf("got %s", str)
		}
		if strings.Contains(str, "define y") {
			t.Fatalf("evaluated point after continue: %s", str)
		}
		if strings.Contains(str, "api called") {
			t.Fatalf("got %s", str)
		}
	})
}

func TestDebuggerEOF(t *testing.T) {
	withDebugger(t, script(), func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		c.Runtime().SetDebugState(relicvm.DebugStep)
		c.NewInteger(1)
		if state := c.Runtime().DebugState(); state != relicvm.DebugNormal {
			t.Fatalf("got %v", state)
		}
	})

	withDebugger(t, func() (string, error) {
		return "", errors.New("broken terminal")
	}, func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		c.Breakpoint()
		if state := c.Runtime().DebugState(); state != relicvm.DebugNormal {
			t.Fatalf("got %v", state)
		}
	})
}

func TestDebuggerCondition(t *testing.T) {
	withDebugger(t, script(
		"cond n > 5",
		"c",
		"uncond",
		"c",
	), func(c *relicvm.Context, d *Debugger, out *bytes.Buffer) {
		define(t, c, "n", "3")
		c.Breakpoint()
		if d.Condition != "n > 5" {
			t.Fatalf("got %q", d.Condition)
		}
		// skipped without reading commands
		c.Breakpoint()
		if n := strings.Count(out.String(), "hit a breakpoint"); n != 1 {
			t.Fatalf("got %v", n)
		}

		define(t, c, "n", "6")
		c.Breakpoint()
		if d.Condition != "" {
			t.Fatalf("got %q", d.Condition)
		}
		if n := strings.Count(out.String(), "hit a breakpoint"); n != 2 {
			t.Fatalf("got %v", n)
		}
	})
}
