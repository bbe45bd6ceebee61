package debugs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/reusee/relic/relicvm"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Globals exposes the bindings visible from the current environment, inner
// frames shadowing outer ones. Names that are not identifiers are reachable
// through lookup. Helper functions: lookup(name), display(name), stats(), roots().
func Globals(c *relicvm.Context) starlark.StringDict {
	rt := c.Runtime()
	globals := make(starlark.StringDict)

	for h := c.Current(); h != relicvm.NoHandle; {
		cell, err := rt.Cell(h)
		if err != nil || cell.Kind != relicvm.KindEnvironment {
			break
		}
		for sym, value := range cell.Env.Vars {
			name := rt.SymbolName(sym)
			if !isIdentifier(name) {
				continue
			}
			if _, ok := globals[name]; ok {
				continue
			}
			globals[name] = FromHandle(c, value)
		}
		h = cell.Env.Parent
	}

	globals["lookup"] = starlark.NewBuiltin("lookup", func(
		thread *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		h, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		return FromHandle(c, h), nil
	})

	globals["display"] = goValue(func(name string) string {
		h, err := c.Get(name)
		if err != nil {
			return err.Error()
		}
		return c.Display(h)
	})

	globals["stats"] = starlark.NewBuiltin("stats", func(
		thread *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		return goValue(rt.Stats()), nil
	})

	globals["roots"] = starlark.NewBuiltin("roots", func(
		thread *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		return goValue(rt.Roots()), nil
	})

	return globals
}

var reserved = map[string]bool{}

func init() {
	for _, word := range strings.Fields(`
		and as assert async await break class continue def del elif else
		except finally for from global if import in is lambda load nonlocal
		not or pass raise return try while with yield
		None True False
	`) {
		reserved[word] = true
	}
}

func isIdentifier(name string) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Eval evaluates a starlark expression over the visible bindings.
func Eval(c *relicvm.Context, expr string) (starlark.Value, error) {
	thread := &starlark.Thread{
		Name: "debugger",
	}
	return starlark.EvalOptions(fileOptions, thread, "<expr>", expr, Globals(c))
}

// Condition evaluates expr for a conditional breakpoint.
func Condition(c *relicvm.Context, expr string) (bool, error) {
	value, err := Eval(c, expr)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}
	return bool(value.Truth()), nil
}
