package relicvm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenOpen
	tokenClose
	tokenDot
	tokenAtom
)

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

type reader struct {
	source  *bufio.Reader
	currPos Pos
	prevPos Pos
	peeked  *token
}

func newReader(r io.Reader) *reader {
	return &reader{
		source: bufio.NewReader(r),
		currPos: Pos{
			Line:   1,
			Column: 1,
		},
	}
}

func (t *reader) readRune() (rune, error) {
	r, _, err := t.source.ReadRune()
	if err != nil {
		return 0, err
	}
	t.prevPos = t.currPos
	if r == '\n' {
		t.currPos.Line++
		t.currPos.Column = 1
	} else {
		t.currPos.Column++
	}
	return r, nil
}

func (t *reader) unreadRune() {
	t.source.UnreadRune()
	t.currPos = t.prevPos
}

func (t *reader) peek() (*token, error) {
	if t.peeked == nil {
		tok, err := t.scan()
		if err != nil {
			return nil, err
		}
		t.peeked = tok
	}
	return t.peeked, nil
}

func (t *reader) next() (*token, error) {
	tok, err := t.peek()
	if err != nil {
		return nil, err
	}
	t.peeked = nil
	return tok, nil
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == ';'
}

func (t *reader) scan() (*token, error) {
	for {
		r, err := t.readRune()
		if err == io.EOF {
			return &token{kind: tokenEOF, pos: t.currPos}, nil
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r) {
			continue
		}
		if r == ';' {
			for {
				r, err := t.readRune()
				if err != nil || r == '\n' {
					break
				}
			}
			continue
		}

		pos := t.prevPos
		switch r {
		case '(':
			return &token{kind: tokenOpen, text: "(", pos: pos}, nil
		case ')':
			return &token{kind: tokenClose, text: ")", pos: pos}, nil
		case '\'', '`', ',', '"':
			return nil, fmt.Errorf("%w: %v: unexpected %q", ErrSyntax, pos, r)
		}

		var sb strings.Builder
		sb.WriteRune(r)
		for {
			r, err := t.readRune()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			if isDelimiter(r) {
				t.unreadRune()
				break
			}
			sb.WriteRune(r)
		}
		text := sb.String()
		if text == "." {
			return &token{kind: tokenDot, text: text, pos: pos}, nil
		}
		return &token{kind: tokenAtom, text: text, pos: pos}, nil
	}
}

type datumKind uint8

const (
	datumInteger datumKind = iota
	datumFloat
	datumSymbol
	datumList
)

type datum struct {
	kind  datumKind
	i     int64
	f     float64
	sym   string
	elems []*datum
	tail  *datum
}

func (t *reader) readDatum() (*datum, error) {
	tok, err := t.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenEOF:
		return nil, fmt.Errorf("%w: %v: unexpected end of input", ErrSyntax, tok.pos)
	case tokenClose, tokenDot:
		return nil, fmt.Errorf("%w: %v: unexpected %s", ErrSyntax, tok.pos, tok.text)
	case tokenAtom:
		return parseAtom(tok)
	}

	list := &datum{
		kind: datumList,
	}
	for {
		tok, err := t.peek()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenClose:
			t.next()
			return list, nil
		case tokenDot:
			if len(list.elems) == 0 {
				return nil, fmt.Errorf("%w: %v: dot without car", ErrSyntax, tok.pos)
			}
			t.next()
			list.tail, err = t.readDatum()
			if err != nil {
				return nil, err
			}
			tok, err := t.next()
			if err != nil {
				return nil, err
			}
			if tok.kind != tokenClose {
				return nil, fmt.Errorf("%w: %v: expecting ), got %q", ErrSyntax, tok.pos, tok.text)
			}
			return list, nil
		}
		elem, err := t.readDatum()
		if err != nil {
			return nil, err
		}
		list.elems = append(list.elems, elem)
	}
}

func looksNumeric(text string) bool {
	s := strings.TrimLeft(text, "+-")
	if len(text)-len(s) > 1 {
		return false
	}
	s = strings.TrimPrefix(s, ".")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func parseAtom(tok *token) (*datum, error) {
	if looksNumeric(tok.text) {
		if i, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
			return &datum{
				kind: datumInteger,
				i:    i,
			}, nil
		}
		if f, err := strconv.ParseFloat(tok.text, 64); err == nil {
			return &datum{
				kind: datumFloat,
				f:    f,
			}, nil
		}
	}
	return &datum{
		kind: datumSymbol,
		sym:  tok.text,
	}, nil
}

// parseDatum reads one datum and checks that nothing follows it.
func parseDatum(src string) (*datum, error) {
	r := newReader(strings.NewReader(src))
	d, err := r.readDatum()
	if err != nil {
		return nil, err
	}
	tok, err := r.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenEOF {
		return nil, fmt.Errorf("%w: %v: trailing %q", ErrSyntax, tok.pos, tok.text)
	}
	return d, nil
}

// build allocates the cells of d. It never collects.
func (r *Runtime) build(d *datum) Handle {
	switch d.kind {
	case datumInteger:
		return r.alloc(Cell{
			Kind: KindInteger,
			Int:  d.i,
		})
	case datumFloat:
		return r.alloc(Cell{
			Kind:  KindFloat,
			Float: d.f,
		})
	case datumSymbol:
		return r.symbolCell(r.symbols.intern(d.sym))
	}
	var ret Handle
	if d.tail != nil {
		ret = r.build(d.tail)
	} else {
		ret = r.symbolCell(SymNil)
	}
	for i := len(d.elems) - 1; i >= 0; i-- {
		car := r.build(d.elems[i])
		ret = r.alloc(Cell{
			Kind: KindPair,
			Car:  car,
			Cdr:  ret,
		})
	}
	return ret
}

// NewConstant parses a literal datum and pushes its value.
// The empty list () reads as nil.
func (c *Context) NewConstant(expr string) error {
	c.trace("new-constant", expr)
	d, err := parseDatum(expr)
	if err != nil {
		return &OpError{
			Op:  "new-constant",
			Err: err,
		}
	}
	defer c.lock()()
	c.rt.safepoint()
	c.push(c.rt.build(d))
	return nil
}
