package debugs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reusee/relic/logs"
	"github.com/reusee/relic/relicvm"
)

// ReadLine returns the next command line, io.EOF when input ends.
type ReadLine func() (string, error)

// Debugger is a line-oriented debugger for a Runtime.
type Debugger struct {
	readLine ReadLine
	out      io.Writer
	logger   logs.Logger
	tap      Tap

	// Condition, if set, is a starlark expression a breakpoint must satisfy to stop.
	Condition string
}

var _ relicvm.Debugger = new(Debugger)

type NewDebugger func(readLine ReadLine, out io.Writer) *Debugger

func (Module) NewDebugger(
	logger logs.Logger,
	tap Tap,
) NewDebugger {
	return func(readLine ReadLine, out io.Writer) *Debugger {
		return &Debugger{
			readLine: readLine,
			out:      out,
			logger:   logger,
			tap:      tap,
		}
	}
}

const help = "available commands: (s)tep, (n)ext, (c)ontinue, (p)rint <name or expr>, (r)untime, stack, graph, tap, cond <expr>, uncond"

func (d *Debugger) Breakpoint(c *relicvm.Context) {
	if d.Condition != "" {
		ok, err := Condition(c, d.Condition)
		if err != nil {
			d.logger.Warn("breakpoint condition", "error", err)
		} else if !ok {
			return
		}
	}
	fmt.Fprintln(d.out, "hit a breakpoint")
	d.loop(c)
}

func (d *Debugger) Evaluated(c *relicvm.Context, info string, optimized bool) {
	if optimized {
		fmt.Fprintf(d.out, "%s\n\t|-> [optimized]\n", info)
	} else if top, err := c.Top(); err == nil {
		fmt.Fprintf(d.out, "%s\n\t|-> %s\n", info, c.Display(top))
	} else {
		fmt.Fprintf(d.out, "%s\n\t|-> %v\n", info, err)
	}
	d.loop(c)
}

func (d *Debugger) APICalled(c *relicvm.Context, op string, args []any) {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = fmt.Sprint(arg)
	}
	fmt.Fprintf(d.out, "api called: %s(%s)\n", op, strings.Join(strs, ", "))
	d.loop(c)
}

func (d *Debugger) loop(c *relicvm.Context) {
	rt := c.Runtime()
	for {
		line, err := d.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.logger.Warn("debugger input", "error", err)
			}
			rt.SetDebugState(relicvm.DebugNormal)
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		switch cmd {

		case "":

		case "s", "step":
			rt.SetDebugState(relicvm.DebugStep)
			return

		case "n", "next":
			rt.SetDebugState(relicvm.DebugNext)
			return

		case "c", "continue":
			rt.SetDebugState(relicvm.DebugNormal)
			return

		case "p", "print":
			d.print(c, arg)

		case "r", "runtime":
			stats := rt.Stats()
			fmt.Fprintf(d.out, "live: %d, capacity: %d, cycles: %d, depth: %d, current: %v\n",
				rt.Live(), rt.Capacity(), stats.Cycle, c.Depth(), c.Current())
			fmt.Fprintf(d.out, "roots: %s\n", strings.Join(rt.Roots(), ", "))
			fmt.Fprintf(d.out, "packages: %s\n", strings.Join(rt.Packages().Loaded(), ", "))

		case "stack":
			stack := c.Stack()
			for i := len(stack) - 1; i >= 0; i-- {
				fmt.Fprintf(d.out, "%d: %s\n", i, c.Display(stack[i]))
			}

		case "graph":
			graph, err := rt.Describe(c.Current())
			if err != nil {
				fmt.Fprintln(d.out, err)
				continue
			}
			if err := graph.WriteDOT(d.out, "env"); err != nil {
				fmt.Fprintln(d.out, err)
			}

		case "tap":
			d.tap(context.Background(), c, "debugger")

		case "cond":
			d.Condition = arg

		case "uncond":
			d.Condition = ""

		default:
			fmt.Fprintln(d.out, help)
		}
	}
}

func (d *Debugger) print(c *relicvm.Context, arg string) {
	if arg == "" {
		fmt.Fprintln(d.out, help)
		return
	}
	if h, err := c.Get(arg); err == nil {
		fmt.Fprintf(d.out, "%s = %s\n", arg, c.Display(h))
		return
	}
	value, err := Eval(c, arg)
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	fmt.Fprintf(d.out, "%s = %s\n", arg, value)
}
