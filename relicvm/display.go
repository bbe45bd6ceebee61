package relicvm

import (
	"fmt"
	"strings"
)

// Display renders the value addressed by h. Cyclic structure is labeled
// #n= at its first occurrence and referenced as #n# afterwards.
func (c *Context) Display(h Handle) string {
	defer c.lock()()
	return c.rt.display(h)
}

func (r *Runtime) Display(h Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.display(h)
}

const (
	scanVisiting = iota + 1
	scanDone
)

type printer struct {
	r       *Runtime
	b       strings.Builder
	state   map[Handle]int
	labels  map[Handle]int
	printed map[Handle]bool
}

func (r *Runtime) display(h Handle) string {
	p := &printer{
		r:       r,
		state:   make(map[Handle]int),
		labels:  make(map[Handle]int),
		printed: make(map[Handle]bool),
	}
	p.scan(h)
	p.print(h)
	return p.b.String()
}

// scan labels the pairs that are reachable from themselves.
func (p *printer) scan(h Handle) {
	cell, ok := p.r.heap.get(h)
	if !ok || cell.Kind != KindPair {
		return
	}
	switch p.state[h] {
	case scanVisiting:
		if _, ok := p.labels[h]; !ok {
			p.labels[h] = len(p.labels)
		}
		return
	case scanDone:
		return
	}
	p.state[h] = scanVisiting
	car, cdr := cell.Car, cell.Cdr
	p.scan(car)
	p.scan(cdr)
	p.state[h] = scanDone
}

func (p *printer) print(h Handle) {
	cell, ok := p.r.heap.get(h)
	if !ok {
		fmt.Fprintf(&p.b, "<invalid %v>", h)
		return
	}
	switch cell.Kind {
	case KindInteger:
		fmt.Fprintf(&p.b, "%d", cell.Int)
	case KindFloat:
		fmt.Fprintf(&p.b, "%v", cell.Float)
	case KindSymbol:
		p.b.WriteString(p.r.symbols.name(cell.Sym))
	case KindClosure:
		fmt.Fprintf(&p.b, "<Closure %s env: %v, nargs: %d>", cell.Proto.Name, cell.Captured, cell.Proto.Arity)
	case KindEnvironment:
		fmt.Fprintf(&p.b, "<Environment %s", cell.Env.Name)
		if cell.Env.Parent != NoHandle {
			fmt.Fprintf(&p.b, ", outer: %v", cell.Env.Parent)
		}
		p.b.WriteString(">")
	case KindPair:
		p.printList(h)
	}
}

func (p *printer) printLabel(h Handle) bool {
	label, ok := p.labels[h]
	if !ok {
		return false
	}
	if p.printed[h] {
		fmt.Fprintf(&p.b, "#%d#", label)
		return true
	}
	p.printed[h] = true
	fmt.Fprintf(&p.b, "#%d=", label)
	return false
}

func (p *printer) printList(h Handle) {
	if p.printLabel(h) {
		return
	}
	p.b.WriteString("(")
	for first := true; ; first = false {
		cell, _ := p.r.heap.get(h)
		if !first {
			p.b.WriteString(" ")
		}
		car, cdr := cell.Car, cell.Cdr
		p.print(car)

		next, ok := p.r.heap.get(cdr)
		switch {
		case ok && next.Kind == KindSymbol && next.Sym == SymNil:
			p.b.WriteString(")")
			return
		case ok && next.Kind == KindPair:
			if _, labeled := p.labels[cdr]; !labeled {
				h = cdr
				continue
			}
		}
		p.b.WriteString(" . ")
		p.print(cdr)
		p.b.WriteString(")")
		return
	}
}
