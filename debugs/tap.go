package debugs

import (
	"context"
	"slices"

	"github.com/reusee/relic/logs"
	"github.com/reusee/relic/relicvm"
	"github.com/samber/lo"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
)

// Tap opens an interactive starlark session over the bindings visible from c.
type Tap func(ctx context.Context, c *relicvm.Context, what string)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, c *relicvm.Context, what string) {
		globals := Globals(c)
		names := lo.Keys(globals)
		slices.Sort(names)
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "tap",
		}
		repl.REPLOptions(fileOptions, thread, globals)
	}
}
