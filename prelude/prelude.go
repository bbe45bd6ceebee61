// Package prelude is a package of list procedures compiled against the relic
// runtime ABI. Importing it defines them in the importing environment.
package prelude

import (
	"github.com/reusee/relic/relicvm"
)

const Name = "prelude"

// Register installs the package initializer and the closure bodies,
// so that closures restored from a snapshot find them.
func Register(rt *relicvm.Runtime) {
	for _, proto := range protos {
		rt.RegisterProto(proto)
	}
	rt.Packages().Register(Name, initialize)
}

func isNull(name string) relicvm.Body {
	return relicvm.Seq(relicvm.Load(name), relicvm.Sym("null?"), relicvm.ApplyN(1))
}

func field(list string, f string) relicvm.Body {
	return relicvm.Seq(relicvm.Load(list), relicvm.Sym(f), relicvm.ApplyN(1))
}

var protos = []*relicvm.Proto{

	// (define (length-iter l acc) (if (null? l) acc (length-iter (cdr l) (+ acc 1))))
	{
		Name:   "length-iter",
		Arity:  2,
		Params: []string{"l", "acc"},
		Body: relicvm.If(isNull("l"),
			relicvm.Load("acc"),
			relicvm.Seq(
				field("l", "cdr"),
				relicvm.Load("acc"), relicvm.Int(1), relicvm.Sym("+"), relicvm.ApplyN(2),
				relicvm.Load("length-iter"), relicvm.TailCallN(2),
			),
		),
	},

	// (define (length l) (length-iter l 0))
	{
		Name:   "length",
		Arity:  1,
		Params: []string{"l"},
		Body: relicvm.Seq(
			relicvm.Load("l"), relicvm.Int(0),
			relicvm.Load("length-iter"), relicvm.TailCallN(2),
		),
	},

	// (define (reverse-iter l acc) (if (null? l) acc (reverse-iter (cdr l) (cons (car l) acc))))
	{
		Name:   "reverse-iter",
		Arity:  2,
		Params: []string{"l", "acc"},
		Body: relicvm.If(isNull("l"),
			relicvm.Load("acc"),
			relicvm.Seq(
				field("l", "cdr"),
				field("l", "car"), relicvm.Load("acc"), relicvm.Sym("cons"), relicvm.ApplyN(2),
				relicvm.Load("reverse-iter"), relicvm.TailCallN(2),
			),
		),
	},

	// (define (reverse l) (reverse-iter l nil))
	{
		Name:   "reverse",
		Arity:  1,
		Params: []string{"l"},
		Body: relicvm.Seq(
			relicvm.Load("l"), relicvm.Sym("nil"),
			relicvm.Load("reverse-iter"), relicvm.TailCallN(2),
		),
	},

	// (define (append a b) (if (null? a) b (cons (car a) (append (cdr a) b))))
	{
		Name:   "append",
		Arity:  2,
		Params: []string{"a", "b"},
		Body: relicvm.If(isNull("a"),
			relicvm.Load("b"),
			relicvm.Seq(
				field("a", "car"),
				field("a", "cdr"), relicvm.Load("b"), relicvm.Load("append"), relicvm.CallN(2),
				relicvm.Sym("cons"), relicvm.TailCallN(2),
			),
		),
	},

	// (define (map f l) (if (null? l) nil (cons (f (car l)) (map f (cdr l)))))
	{
		Name:   "map",
		Arity:  2,
		Params: []string{"f", "l"},
		Body: relicvm.If(isNull("l"),
			relicvm.Sym("nil"),
			relicvm.Seq(
				field("l", "car"), relicvm.Load("f"), relicvm.CallN(1),
				relicvm.Load("f"), field("l", "cdr"), relicvm.Load("map"), relicvm.CallN(2),
				relicvm.Sym("cons"), relicvm.TailCallN(2),
			),
		),
	},

	// (define (foldl f acc l) (if (null? l) acc (foldl f (f acc (car l)) (cdr l))))
	{
		Name:   "foldl",
		Arity:  3,
		Params: []string{"f", "acc", "l"},
		Body: relicvm.If(isNull("l"),
			relicvm.Load("acc"),
			relicvm.Seq(
				relicvm.Load("f"),
				relicvm.Load("acc"), field("l", "car"), relicvm.Load("f"), relicvm.CallN(2),
				field("l", "cdr"),
				relicvm.Load("foldl"), relicvm.TailCallN(3),
			),
		),
	},

	// (define (apply f args) ...) spreads args onto the stack
	{
		Name:   "apply",
		Arity:  2,
		Params: []string{"f", "args"},
		Body: func(c *relicvm.Context) error {
			if err := c.Load("args"); err != nil {
				return err
			}
			n, err := c.ListToStack()
			if err != nil {
				return err
			}
			if err := c.Load("f"); err != nil {
				return err
			}
			return c.TailCall(n)
		},
	},

	// (define (list . xs) xs)
	{
		Name:     "list",
		Variadic: true,
		Params:   []string{"xs"},
		Body:     relicvm.Load("xs"),
	},
}

func initialize(c *relicvm.Context) error {
	for _, proto := range protos {
		if err := relicvm.Def(proto.Name, relicvm.Lambda(proto))(c); err != nil {
			return err
		}
		if err := c.Drop(1); err != nil {
			return err
		}
	}
	return nil
}
