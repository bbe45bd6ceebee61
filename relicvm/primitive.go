package relicvm

import (
	"fmt"
	"math"
)

type primitive func(r *Runtime, args []Handle) (Handle, error)

var primitives map[string]primitive

func init() {
	primitives = map[string]primitive{
		"+":         arith('+'),
		"-":         arith('-'),
		"*":         arith('*'),
		"/":         arith('/'),
		"remainder": intOp(func(a, b int64) int64 { return a % b }),
		"quotient":  intOp(func(a, b int64) int64 { return a / b }),
		"=":         rel(func(c int) bool { return c == 0 }),
		"<":         rel(func(c int) bool { return c < 0 }),
		">":         rel(func(c int) bool { return c > 0 }),
		"<=":        rel(func(c int) bool { return c <= 0 }),
		">=":        rel(func(c int) bool { return c >= 0 }),
		"eq?":       primEq,
		"atom?":     predicate(func(cell *Cell) bool { return cell.Kind != KindPair }),
		"number?":   predicate(isNumber),
		"symbol?":   predicate(func(cell *Cell) bool { return cell.Kind == KindSymbol }),
		"pair?":     predicate(func(cell *Cell) bool { return cell.Kind == KindPair }),
		"null?": predicate(func(cell *Cell) bool {
			return cell.Kind == KindSymbol && cell.Sym == SymNil
		}),
		"car":     pairField(true),
		"cdr":     pairField(false),
		"cons":    primCons,
		"list":    primList,
		"floor":   rounding(math.Floor),
		"ceiling": rounding(math.Ceil),
		"sin":     floatFunc(math.Sin),
		"cos":     floatFunc(math.Cos),
		"abs":     primAbs,
	}
	primitives["not"] = primitives["null?"]
}

type number struct {
	isFloat bool
	i       int64
	f       float64
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (r *Runtime) number(h Handle) (number, error) {
	cell, ok := r.heap.get(h)
	if !ok {
		return number{}, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	if isNumber(cell) {
		return cellNumber(cell), nil
	}
	return number{}, fmt.Errorf("%w: expecting number, got %s", ErrBadOperand, r.display(h))
}

func (r *Runtime) numberCell(n number) Handle {
	if n.isFloat {
		return r.alloc(Cell{
			Kind:  KindFloat,
			Float: n.f,
		})
	}
	return r.alloc(Cell{
		Kind: KindInteger,
		Int:  n.i,
	})
}

func arity(args []Handle, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expecting %d operands, got %d", ErrArityMismatch, n, len(args))
	}
	return nil
}

func arith(op rune) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if len(args) < 2 {
			return NoHandle, fmt.Errorf("%w: expecting at least 2 operands, got %d", ErrArityMismatch, len(args))
		}
		acc, err := r.number(args[0])
		if err != nil {
			return NoHandle, err
		}
		for _, h := range args[1:] {
			b, err := r.number(h)
			if err != nil {
				return NoHandle, err
			}
			acc, err = arith2(op, acc, b)
			if err != nil {
				return NoHandle, err
			}
		}
		return r.numberCell(acc), nil
	}
}

func arith2(op rune, a, b number) (number, error) {
	if !a.isFloat && !b.isFloat {
		switch op {
		case '+':
			return number{i: a.i + b.i}, nil
		case '-':
			return number{i: a.i - b.i}, nil
		case '*':
			return number{i: a.i * b.i}, nil
		case '/':
			if b.i == 0 {
				return number{}, fmt.Errorf("%w: division by zero", ErrBadOperand)
			}
			if a.i%b.i == 0 {
				return number{i: a.i / b.i}, nil
			}
		}
	}
	x, y := a.float(), b.float()
	var ret float64
	switch op {
	case '+':
		ret = x + y
	case '-':
		ret = x - y
	case '*':
		ret = x * y
	case '/':
		ret = x / y
	}
	return number{isFloat: true, f: ret}, nil
}

func intOp(fn func(a, b int64) int64) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 2); err != nil {
			return NoHandle, err
		}
		a, err := r.number(args[0])
		if err != nil {
			return NoHandle, err
		}
		b, err := r.number(args[1])
		if err != nil {
			return NoHandle, err
		}
		if a.isFloat || b.isFloat {
			return NoHandle, fmt.Errorf("%w: expecting two integers, got %s and %s",
				ErrBadOperand, r.display(args[0]), r.display(args[1]))
		}
		if b.i == 0 {
			return NoHandle, fmt.Errorf("%w: division by zero", ErrBadOperand)
		}
		return r.numberCell(number{i: fn(a.i, b.i)}), nil
	}
}

func isNumber(cell *Cell) bool {
	return cell.Kind == KindInteger || cell.Kind == KindFloat
}

func cellNumber(cell *Cell) number {
	if cell.Kind == KindFloat {
		return number{isFloat: true, f: cell.Float}
	}
	return number{i: cell.Int}
}

func compare(a, b number) int {
	if !a.isFloat && !b.isFloat {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	x, y := a.float(), b.float()
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func rel(test func(int) bool) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 2); err != nil {
			return NoHandle, err
		}
		a, err := r.number(args[0])
		if err != nil {
			return NoHandle, err
		}
		b, err := r.number(args[1])
		if err != nil {
			return NoHandle, err
		}
		return r.boolCell(test(compare(a, b))), nil
	}
}

func predicate(test func(*Cell) bool) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 1); err != nil {
			return NoHandle, err
		}
		cell, ok := r.heap.get(args[0])
		if !ok {
			return NoHandle, fmt.Errorf("%w: %v", ErrInvalidHandle, args[0])
		}
		return r.boolCell(test(cell)), nil
	}
}

func pairField(car bool) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 1); err != nil {
			return NoHandle, err
		}
		cell, ok := r.heap.get(args[0])
		if !ok {
			return NoHandle, fmt.Errorf("%w: %v", ErrInvalidHandle, args[0])
		}
		if cell.Kind != KindPair {
			return NoHandle, fmt.Errorf("%w: %s is not a pair", ErrBadOperand, r.display(args[0]))
		}
		if car {
			return cell.Car, nil
		}
		return cell.Cdr, nil
	}
}

func primCons(r *Runtime, args []Handle) (Handle, error) {
	if err := arity(args, 2); err != nil {
		return NoHandle, err
	}
	return r.alloc(Cell{
		Kind: KindPair,
		Car:  args[0],
		Cdr:  args[1],
	}), nil
}

func primList(r *Runtime, args []Handle) (Handle, error) {
	return r.list(args), nil
}

// list allocates a proper list of elems. It never collects.
func (r *Runtime) list(elems []Handle) Handle {
	ret := r.symbolCell(SymNil)
	for i := len(elems) - 1; i >= 0; i-- {
		ret = r.alloc(Cell{
			Kind: KindPair,
			Car:  elems[i],
			Cdr:  ret,
		})
	}
	return ret
}

func rounding(fn func(float64) float64) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 1); err != nil {
			return NoHandle, err
		}
		n, err := r.number(args[0])
		if err != nil {
			return NoHandle, err
		}
		if !n.isFloat {
			return args[0], nil
		}
		return r.numberCell(number{i: int64(fn(n.f))}), nil
	}
}

func floatFunc(fn func(float64) float64) primitive {
	return func(r *Runtime, args []Handle) (Handle, error) {
		if err := arity(args, 1); err != nil {
			return NoHandle, err
		}
		n, err := r.number(args[0])
		if err != nil {
			return NoHandle, err
		}
		return r.numberCell(number{isFloat: true, f: fn(n.float())}), nil
	}
}

func primAbs(r *Runtime, args []Handle) (Handle, error) {
	if err := arity(args, 1); err != nil {
		return NoHandle, err
	}
	n, err := r.number(args[0])
	if err != nil {
		return NoHandle, err
	}
	if n.isFloat {
		n.f = math.Abs(n.f)
	} else if n.i < 0 {
		n.i = -n.i
	}
	return r.numberCell(n), nil
}

func primEq(r *Runtime, args []Handle) (Handle, error) {
	if err := arity(args, 2); err != nil {
		return NoHandle, err
	}
	eq, err := r.equal(args[0], args[1])
	if err != nil {
		return NoHandle, err
	}
	return r.boolCell(eq), nil
}

// equal compares scalars by value and pairs by structure.
// Closures and environments compare by identity.
func (r *Runtime) equal(a, b Handle) (bool, error) {
	type pair struct {
		a, b Handle
	}
	seen := make(map[pair]bool)
	work := []pair{{a, b}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]
		if p.a == p.b || seen[p] {
			continue
		}
		seen[p] = true
		x, ok := r.heap.get(p.a)
		if !ok {
			return false, fmt.Errorf("%w: %v", ErrInvalidHandle, p.a)
		}
		y, ok := r.heap.get(p.b)
		if !ok {
			return false, fmt.Errorf("%w: %v", ErrInvalidHandle, p.b)
		}
		if isNumber(x) && isNumber(y) {
			if compare(cellNumber(x), cellNumber(y)) != 0 {
				return false, nil
			}
			continue
		}
		if x.Kind != y.Kind {
			return false, nil
		}
		switch x.Kind {
		case KindInteger:
			if x.Int != y.Int {
				return false, nil
			}
		case KindFloat:
			if x.Float != y.Float {
				return false, nil
			}
		case KindSymbol:
			if x.Sym != y.Sym {
				return false, nil
			}
		case KindPair:
			work = append(work, pair{x.Cdr, y.Cdr}, pair{x.Car, y.Car})
		default:
			return false, nil
		}
	}
	return true, nil
}
