package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"github.com/reusee/relic/cmds"
	"github.com/reusee/relic/debugs"
	"github.com/reusee/relic/logs"
	"github.com/reusee/relic/modes"
	"github.com/reusee/relic/prelude"
	"github.com/reusee/relic/relicvm"
	"github.com/reusee/relic/vars"
	"github.com/samber/lo"
	"github.com/xyproto/env/v2"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

var (
	demoFlag     = cmds.Var[string]("demo", "run a demo program")
	exprFlag     = cmds.Collect[string]("expr", "read and print a quoted expression")
	dotFlag      = cmds.Var[string]("dot", "write the environment graph in DOT to a file")
	snapshotFlag = cmds.Var[string]("snapshot", "write a heap snapshot to a file")
	restoreFlag  = cmds.Var[string]("restore", "restore a heap snapshot before running")
	debugFlag    = cmds.Switch("debug", "enable the interactive debugger")
	tapFlag      = cmds.Switch("tap", "open a starlark shell after running")
)

func init() {
	cmds.Define("demos", cmds.Func(func() {
		names := lo.Keys(demos)
		slices.Sort(names)
		fmt.Println(strings.Join(names, "\n"))
		os.Exit(0)
	}).Desc("list demo programs"))
}

func main() {
	cmds.Execute(os.Args[1:])

	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Call(func(
		rt *relicvm.Runtime,
		preload relicvm.Preload,
		logger logs.Logger,
		newSpan logs.NewSpan,
		newDebugger debugs.NewDebugger,
		tap debugs.Tap,
	) {
		ctx, _ := newSpan(context.Background(), "", "args", os.Args[1:])
		err := run(ctx, rt, preload, newDebugger)
		if err == nil && (*tapFlag || vars.StrToBool(env.Str("RELIC_TAP"))) {
			tap(ctx, rt.Main(), "after run")
		}
		if err != nil {
			err = logs.WrapSpan(ctx, err)
			logger.ErrorContext(ctx, "run", "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}

func run(
	ctx context.Context,
	rt *relicvm.Runtime,
	preload relicvm.Preload,
	newDebugger debugs.NewDebugger,
) error {
	prelude.Register(rt)
	for _, proto := range demoProtos {
		rt.RegisterProto(proto)
	}
	c := rt.Main()

	if *debugFlag {
		readLine, closeReadLine, err := newReadLine()
		if err != nil {
			return err
		}
		defer closeReadLine()
		rt.SetDebugger(newDebugger(readLine, os.Stdout))
		if rt.DebugState() == relicvm.DebugOff {
			rt.SetDebugState(relicvm.DebugNormal)
		}
	}

	if *restoreFlag != "" {
		if err := restore(rt, *restoreFlag); err != nil {
			return err
		}
	}

	for _, name := range preload {
		if err := c.Import(name); err != nil {
			return err
		}
	}

	var forms []relicvm.Body
	for _, expr := range *exprFlag {
		forms = append(forms, evaluated(expr, relicvm.Const(expr)))
	}
	name := vars.FirstNonZero(
		vars.DerefOrZero(demoFlag),
		env.Str("RELIC_DEMO"),
	)
	if name == "" && len(forms) == 0 && *restoreFlag == "" {
		name = "lists"
	}
	if name != "" {
		demo, ok := demos[name]
		if !ok {
			return fmt.Errorf("unknown demo: %s", name)
		}
		forms = append(forms, demo()...)
	}

	for h, err := range c.Run(ctx, forms...) {
		if err != nil {
			if relicvm.IsFatal(err) || errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(os.Stdout, c.Display(h))
	}

	stats := rt.Collect()
	rt.Logger().InfoContext(ctx, "done",
		"live", stats.Live,
		"capacity", stats.Capacity,
		"cycles", stats.Cycle,
		"maxrss", stats.MaxRSS,
	)

	if *dotFlag != "" {
		if err := writeDOT(rt, c.Current(), *dotFlag); err != nil {
			return err
		}
	}
	if *snapshotFlag != "" {
		if err := snapshot(rt, *snapshotFlag); err != nil {
			return err
		}
	}
	return nil
}

func writeDOT(rt *relicvm.Runtime, env relicvm.Handle, path string) error {
	graph, err := rt.Describe(env)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()
	if err := graph.WriteDOT(f, "relic"); err != nil {
		return wrap(err)
	}
	if err := f.Close(); err != nil {
		return wrap(err)
	}
	return nil
}

func snapshot(rt *relicvm.Runtime, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()
	if err := rt.Snapshot(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return wrap(err)
	}
	return nil
}

func restore(rt *relicvm.Runtime, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()
	return rt.Restore(f)
}
