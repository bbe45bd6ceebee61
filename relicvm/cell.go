package relicvm

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

type Kind uint8

const (
	KindFree Kind = iota
	KindInteger
	KindFloat
	KindSymbol
	KindPair
	KindClosure
	KindEnvironment
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	case KindPair:
		return "pair"
	case KindClosure:
		return "closure"
	case KindEnvironment:
		return "environment"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Cell is a heap value. Only the fields of its Kind are meaningful.
type Cell struct {
	Kind     Kind
	Int      int64
	Float    float64
	Sym      Symbol
	Car      Handle
	Cdr      Handle
	Proto    *Proto
	Captured Handle
	Env      *Env
}

// Env is the payload of an environment cell.
type Env struct {
	Name   string
	Vars   map[Symbol]Handle
	Parent Handle
}

// Body is the native code of a closure.
// It runs with the closure's fresh frame as the current environment
// and must leave exactly one value on the operand stack.
type Body func(*Context) error

type Proto struct {
	Name     string
	Body     Body
	Arity    int
	Variadic bool
	Params   []string
}

func (p *Proto) paramName(i int) string {
	if i < len(p.Params) && p.Params[i] != "" {
		return p.Params[i]
	}
	return fmt.Sprintf("#%d_func_%s", i, p.Name)
}

func (p *Proto) accepts(nargs int) bool {
	if p.Variadic {
		return nargs >= p.Arity
	}
	return nargs == p.Arity
}

type protoWire struct {
	Name     string
	Arity    int
	Variadic bool
	Params   []string
}

var _ gob.GobEncoder = Proto{}

var _ gob.GobDecoder = new(Proto)

func (p Proto) GobEncode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(protoWire{
		Name:     p.Name,
		Arity:    p.Arity,
		Variadic: p.Variadic,
		Params:   p.Params,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Proto) GobDecode(data []byte) error {
	var wire protoWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	p.Name = wire.Name
	p.Arity = wire.Arity
	p.Variadic = wire.Variadic
	p.Params = wire.Params
	p.Body = nil // re-bound from registered protos on restore
	return nil
}

func (p *Proto) IsMissing() bool {
	return p.Body == nil
}
