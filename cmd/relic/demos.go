package main

import (
	"sync"

	"github.com/reusee/relic/prelude"
	"github.com/reusee/relic/relicvm"
	"github.com/reusee/relic/syncs"
	"github.com/xyproto/env/v2"
)

// demoProtos are registered before a restore so restored closures find their bodies.
var demoProtos = []*relicvm.Proto{
	squareProto,
	factProto,
	loopProto,
	incProto,
	makeCounterProto,
}

// demos are programs in the shape the compiler emits: one body per top-level
// form, each reporting its source to the debugger once evaluated.
var demos = map[string]func() []relicvm.Body{
	"lists":      listsDemo,
	"factorial":  factorialDemo,
	"tail":       tailDemo,
	"counter":    counterDemo,
	"cycle":      cycleDemo,
	"math":       mathDemo,
	"breakpoint": breakpointDemo,
	"parallel":   parallelDemo,
}

func evaluated(src string, body relicvm.Body) relicvm.Body {
	return func(c *relicvm.Context) error {
		if err := body(c); err != nil {
			return err
		}
		c.Evaluated(src, false)
		return nil
	}
}

func importPackage(name string) relicvm.Body {
	return func(c *relicvm.Context) error {
		if err := c.Import(name); err != nil {
			return err
		}
		c.NewSymbol("nil")
		return nil
	}
}

// (define (square x) (* x x))
var squareProto = &relicvm.Proto{
	Name:   "square",
	Arity:  1,
	Params: []string{"x"},
	Body:   relicvm.Seq(relicvm.Load("x"), relicvm.Load("x"), relicvm.Sym("*"), relicvm.ApplyN(2)),
}

func listsDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(import prelude)", importPackage(prelude.Name)),
		evaluated("(define (square x) (* x x))",
			relicvm.Def("square", relicvm.Lambda(squareProto))),
		evaluated("(map square (list 1 2 3 4 5))",
			relicvm.Seq(relicvm.Load("square"), relicvm.Int(1), relicvm.Int(2), relicvm.Int(3), relicvm.Int(4), relicvm.Int(5), relicvm.Load("list"), relicvm.CallN(5), relicvm.Load("map"), relicvm.CallN(2))),
		evaluated("(foldl + 0 '(1 2 3 4 5))",
			relicvm.Seq(relicvm.Sym("+"), relicvm.Int(0), relicvm.Const("(1 2 3 4 5)"), relicvm.Load("foldl"), relicvm.CallN(3))),
		evaluated("(reverse '(1 (2 3) 4))",
			relicvm.Seq(relicvm.Const("(1 (2 3) 4)"), relicvm.Load("reverse"), relicvm.CallN(1))),
		evaluated("(length (append '(1 2) '(3 4 5)))",
			relicvm.Seq(relicvm.Const("(1 2)"), relicvm.Const("(3 4 5)"), relicvm.Load("append"), relicvm.CallN(2), relicvm.Load("length"), relicvm.CallN(1))),
		evaluated("(apply cons '(1 2))",
			relicvm.Seq(relicvm.Sym("cons"), relicvm.Const("(1 2)"), relicvm.Load("apply"), relicvm.CallN(2))),
	}
}

// (define (fact n) (if (<= n 1) 1 (* n (fact (- n 1)))))
var factProto = &relicvm.Proto{
	Name:   "fact",
	Arity:  1,
	Params: []string{"n"},
	Body: relicvm.If(
		relicvm.Seq(relicvm.Load("n"), relicvm.Int(1), relicvm.Sym("<="), relicvm.ApplyN(2)),
		relicvm.Int(1),
		relicvm.Seq(
			relicvm.Load("n"),
			relicvm.Load("n"), relicvm.Int(1), relicvm.Sym("-"), relicvm.ApplyN(2), relicvm.Load("fact"), relicvm.CallN(1),
			relicvm.Sym("*"), relicvm.TailCallN(2),
		),
	),
}

func factorialDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(define (fact n) ...)", relicvm.Def("fact", relicvm.Lambda(factProto))),
		evaluated("(fact 10)", relicvm.Seq(relicvm.Int(10), relicvm.Load("fact"), relicvm.CallN(1))),
		evaluated("(fact 20)", relicvm.Seq(relicvm.Int(20), relicvm.Load("fact"), relicvm.CallN(1))),
	}
}

// (define (loop n acc) (if (= n 0) acc (loop (- n 1) (+ acc n))))
var loopProto = &relicvm.Proto{
	Name:   "loop",
	Arity:  2,
	Params: []string{"n", "acc"},
	Body: relicvm.If(
		relicvm.Seq(relicvm.Load("n"), relicvm.Int(0), relicvm.Sym("="), relicvm.ApplyN(2)),
		relicvm.Load("acc"),
		relicvm.Seq(
			relicvm.Load("n"), relicvm.Int(1), relicvm.Sym("-"), relicvm.ApplyN(2),
			relicvm.Load("acc"), relicvm.Load("n"), relicvm.Sym("+"), relicvm.ApplyN(2),
			relicvm.Load("loop"), relicvm.TailCallN(2),
		),
	),
}

func tailDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(define (loop n acc) ...)", relicvm.Def("loop", relicvm.Lambda(loopProto))),
		evaluated("(loop 1000000 0)", relicvm.Seq(relicvm.Int(1000000), relicvm.Int(0), relicvm.Load("loop"), relicvm.CallN(2))),
	}
}

// (lambda () (set! n (+ n 1)) n)
var incProto = &relicvm.Proto{
	Name: "inc",
	Body: relicvm.Seq(
		relicvm.SetVar("n", relicvm.Seq(relicvm.Load("n"), relicvm.Int(1), relicvm.Sym("+"), relicvm.ApplyN(2))),
		relicvm.Drop1,
		relicvm.Load("n"),
	),
}

// (define (make-counter) (define n 0) (lambda () ...))
var makeCounterProto = &relicvm.Proto{
	Name: "make-counter",
	Body: relicvm.Seq(
		relicvm.Def("n", relicvm.Int(0)),
		relicvm.Drop1,
		relicvm.Lambda(incProto),
	),
}

func counterDemo() []relicvm.Body {
	call := evaluated("(counter)", relicvm.Seq(relicvm.Load("counter"), relicvm.CallN(0)))
	return []relicvm.Body{
		evaluated("(define (make-counter) ...)", relicvm.Def("make-counter", relicvm.Lambda(makeCounterProto))),
		evaluated("(define counter (make-counter))", relicvm.Def("counter", relicvm.Seq(relicvm.Load("make-counter"), relicvm.CallN(0)))),
		call,
		call,
		call,
		evaluated("counter", relicvm.Load("counter")),
	}
}

func cycleDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(define l '(1 2 3))", relicvm.Def("l", relicvm.Const("(1 2 3)"))),
		evaluated("(set-cdr! (cddr l) l)", func(c *relicvm.Context) error {
			h, err := c.Get("l")
			if err != nil {
				return err
			}
			last := h
			for range 2 {
				if _, last, err = c.GetPair(last); err != nil {
					return err
				}
			}
			if _, err := c.SetCdr(last, h); err != nil {
				return err
			}
			return c.Push(h)
		}),
		evaluated("(eq? l l)", relicvm.Seq(relicvm.Load("l"), relicvm.Load("l"), relicvm.Sym("eq?"), relicvm.ApplyN(2))),
	}
}

func mathDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(/ 12 5)", relicvm.Seq(relicvm.Int(12), relicvm.Int(5), relicvm.Sym("/"), relicvm.ApplyN(2))),
		evaluated("(/ 12 4)", relicvm.Seq(relicvm.Int(12), relicvm.Int(4), relicvm.Sym("/"), relicvm.ApplyN(2))),
		evaluated("(quotient 12 5)", relicvm.Seq(relicvm.Int(12), relicvm.Int(5), relicvm.Sym("quotient"), relicvm.ApplyN(2))),
		evaluated("(remainder 12 5)", relicvm.Seq(relicvm.Int(12), relicvm.Int(5), relicvm.Sym("remainder"), relicvm.ApplyN(2))),
		evaluated("(floor 2.7)", relicvm.Seq(relicvm.Float(2.7), relicvm.Sym("floor"), relicvm.ApplyN(1))),
		evaluated("(cos 0)", relicvm.Seq(relicvm.Int(0), relicvm.Sym("cos"), relicvm.ApplyN(1))),
		evaluated("(eq? '(1 (2)) '(1 (2)))", relicvm.Seq(relicvm.Const("(1 (2))"), relicvm.Const("(1 (2))"), relicvm.Sym("eq?"), relicvm.ApplyN(2))),
		evaluated("(+ 'a 1)", relicvm.Seq(relicvm.Sym("a"), relicvm.Int(1), relicvm.Sym("+"), relicvm.ApplyN(2))),
		evaluated("(car 1)", relicvm.Seq(relicvm.Int(1), relicvm.Sym("car"), relicvm.ApplyN(1))),
	}
}

func breakpointDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(define x 42)", relicvm.Def("x", relicvm.Int(42))),
		evaluated("(begin (breakpoint) x)", func(c *relicvm.Context) error {
			c.Breakpoint()
			return c.Load("x")
		}),
	}
}

// parallelFact computes fact for each argument on its own Context, at most
// RELIC_WORKERS at a time, and pushes the results as a list.
func parallelFact(args ...int64) relicvm.Body {
	return func(c *relicvm.Context) error {
		rt := c.Runtime()
		results := make([]int64, len(args))
		errs := make([]error, len(args))
		sem := syncs.NewSemaphore(env.Int("RELIC_WORKERS", 2))
		var wg sync.WaitGroup
		for i, arg := range args {
			sem.Go(&wg, func() {
				worker := rt.NewContext()
				defer worker.Close()
				if err := relicvm.Seq(relicvm.Int(arg), relicvm.Load("fact"), relicvm.CallN(1))(worker); err != nil {
					errs[i] = err
					return
				}
				// kept on the stack so other workers' collections see it
				h, err := worker.Top()
				if err != nil {
					errs[i] = err
					return
				}
				results[i], errs[i] = worker.GetInteger(h)
			})
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return err
			}
		}

		c.NewSymbol("nil")
		for i := len(results) - 1; i >= 0; i-- {
			c.NewInteger(results[i])
			if err := c.Swap(); err != nil {
				return err
			}
			if err := c.NewPair(); err != nil {
				return err
			}
		}
		return nil
	}
}

func parallelDemo() []relicvm.Body {
	return []relicvm.Body{
		evaluated("(define (fact n) ...)", relicvm.Def("fact", relicvm.Lambda(factProto))),
		evaluated("(parallel-map fact '(5 10 15 20))", parallelFact(5, 10, 15, 20)),
	}
}
