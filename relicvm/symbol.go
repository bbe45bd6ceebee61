package relicvm

// Symbol is an interned symbol id.
type Symbol uint32

const (
	SymNil Symbol = iota
	SymT
)

type symbolTable struct {
	Names []string
	ids   map[string]Symbol
}

func newSymbolTable() *symbolTable {
	t := &symbolTable{}
	t.intern("nil")
	t.intern("t")
	return t
}

func (t *symbolTable) intern(name string) Symbol {
	if t.ids == nil {
		t.reindex()
	}
	if sym, ok := t.ids[name]; ok {
		return sym
	}
	sym := Symbol(len(t.Names))
	t.Names = append(t.Names, name)
	t.ids[name] = sym
	return sym
}

func (t *symbolTable) lookup(name string) (Symbol, bool) {
	if t.ids == nil {
		t.reindex()
	}
	sym, ok := t.ids[name]
	return sym, ok
}

func (t *symbolTable) name(sym Symbol) string {
	if int(sym) >= len(t.Names) {
		return ""
	}
	return t.Names[sym]
}

func (t *symbolTable) reindex() {
	t.ids = make(map[string]Symbol, len(t.Names))
	for i, name := range t.Names {
		t.ids[name] = Symbol(i)
	}
}
