package debugs

import (
	"fmt"
	"reflect"

	"github.com/reusee/relic/relicvm"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

// FromHandle converts a heap value to starlark.
// nil is None, t is True, other symbols are strings, proper lists are lists
// and improper lists are tuples ending with their tail. Closures, environments
// and cyclic lists are rendered with the runtime printer.
func FromHandle(c *relicvm.Context, h relicvm.Handle) starlark.Value {
	return fromHandle(c, h, make(map[relicvm.Handle]bool))
}

func fromHandle(c *relicvm.Context, h relicvm.Handle, seen map[relicvm.Handle]bool) starlark.Value {
	rt := c.Runtime()
	cell, err := rt.Cell(h)
	if err != nil {
		return starlark.None
	}
	switch cell.Kind {

	case relicvm.KindInteger:
		return starlark.MakeInt64(cell.Int)

	case relicvm.KindFloat:
		return starlark.Float(cell.Float)

	case relicvm.KindSymbol:
		switch cell.Sym {
		case relicvm.SymNil:
			return starlark.None
		case relicvm.SymT:
			return starlark.True
		}
		return starlark.String(rt.SymbolName(cell.Sym))

	case relicvm.KindPair:
		if seen[h] {
			return starlark.String(c.Display(h))
		}
		seen[h] = true
		defer delete(seen, h)
		var elems []starlark.Value
		for {
			elems = append(elems, fromHandle(c, cell.Car, seen))
			next, err := rt.Cell(cell.Cdr)
			if err != nil {
				return starlark.Tuple(elems)
			}
			if next.Kind == relicvm.KindSymbol && next.Sym == relicvm.SymNil {
				return starlark.NewList(elems)
			}
			if next.Kind != relicvm.KindPair || seen[cell.Cdr] {
				return starlark.Tuple(append(elems, fromHandle(c, cell.Cdr, seen)))
			}
			seen[cell.Cdr] = true
			defer delete(seen, cell.Cdr)
			cell = next
		}

	}

	return starlark.String(c.Display(h))
}

// goValue converts host values such as statistics structs.
func goValue(v any) starlark.Value {
	switch v := v.(type) {
	case nil:
		return starlark.None
	case starlark.Value:
		return v
	case fmt.Stringer:
		return starlark.String(v.String())
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool())

	case reflect.String:
		return starlark.String(value.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(value.Uint())

	case reflect.Float32, reflect.Float64:
		return starlark.Float(value.Float())

	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, value.Len())
		for i := range elems {
			elems[i] = goValue(value.Index(i).Interface())
		}
		return starlark.NewList(elems)

	case reflect.Map:
		d := starlark.NewDict(value.Len())
		iter := value.MapRange()
		for iter.Next() {
			d.SetKey(
				goValue(iter.Key().Interface()),
				goValue(iter.Value().Interface()),
			)
		}
		return d

	case reflect.Struct:
		typ := value.Type()
		d := starlark.NewDict(value.NumField())
		for i := range value.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			d.SetKey(
				starlark.String(field.Name),
				goValue(value.Field(i).Interface()),
			)
		}
		return d

	case reflect.Pointer, reflect.Interface:
		elem := value.Elem()
		if !elem.IsValid() {
			return starlark.None
		}
		return goValue(elem.Interface())

	case reflect.Func:
		return starlarkutil.MakeFunc("", value.Interface())

	}

	panic(fmt.Errorf("unsupported type for starlark: %T", v))
}
