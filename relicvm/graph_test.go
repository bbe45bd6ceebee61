package relicvm

import (
	"bytes"
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	rt, c := newTestRuntime(1024)
	top := c.Current()
	check(t, Seq(
		Def("x", Int(1)),
		Drop1,
		Def("f", Lambda(addProto)),
		Drop1,
	)(c))
	inner, err := c.NewNamedEnvironment("inner", top)
	check(t, err)
	check(t, c.MoveTo(inner))
	check(t, Seq(Def("y", Const("(1 2)")), Drop1)(c))

	graph, err := rt.Describe(inner)
	check(t, err)
	if len(graph.Envs) != 2 {
		t.Fatalf("got %v", len(graph.Envs))
	}
	if graph.Envs[0].Name != "inner" || graph.Envs[1].Name != "top" {
		t.Fatalf("got %+v", graph.Envs)
	}
	if graph.Envs[0].Outer != top {
		t.Fatalf("got %v", graph.Envs[0].Outer)
	}
	vars := graph.Envs[1].Vars
	if len(vars) != 2 || vars[0].Name != "f" || vars[1].Name != "x" {
		t.Fatalf("got %+v", vars)
	}

	kinds := make(map[Kind]int)
	for _, node := range graph.Nodes {
		kinds[node.Kind]++
	}
	if kinds[KindPair] != 2 || kinds[KindClosure] != 1 {
		t.Fatalf("got %v", kinds)
	}

	buf := new(bytes.Buffer)
	check(t, graph.WriteDOT(buf, "test"))
	dot := buf.String()
	for _, want := range []string{
		"digraph test {",
		"subgraph " + dotID("cluster", inner) + " {",
		"subgraph " + dotID("cluster", top) + " {",
		`label="Env top"`,
		`[label="x", shape=box];`,
		`[label="env", style=dashed]`,
		`[label="outer", style=dashed]`,
		`[label="car"]`,
		`[label="(1 2)", shape=box]`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("missing %q in\n%s", want, dot)
		}
	}
}

func TestDescribeNonEnvironment(t *testing.T) {
	rt, c := newTestRuntime(1024)
	c.NewInteger(1)
	h, err := c.Pop()
	check(t, err)
	_, err = rt.Describe(h)
	expectErr(t, err, ErrTypeMismatch)
}
