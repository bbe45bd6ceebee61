package relicvm

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Graph is the environment chain of a frame and the cells reachable from it.
type Graph struct {
	Envs  []GraphEnv
	Nodes []GraphNode
}

type GraphEnv struct {
	Handle Handle
	Name   string
	Outer  Handle
	Vars   []GraphVar
}

type GraphVar struct {
	Name  string
	Value Handle
}

type GraphNode struct {
	Handle Handle
	Kind   Kind
	Label  string
	// pair fields, or the captured environment of a closure in Car
	Car Handle
	Cdr Handle
}

// Describe collects the graph reachable from env, breadth first.
func (r *Runtime) Describe(env Handle) (*Graph, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.readKind("describe", env, KindEnvironment); err != nil {
		return nil, err
	}

	graph := new(Graph)
	seen := map[Handle]bool{
		env: true,
	}
	queue := []Handle{env}
	enqueue := func(h Handle) {
		if h == NoHandle || seen[h] {
			return
		}
		seen[h] = true
		queue = append(queue, h)
	}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		cell, ok := r.heap.get(h)
		if !ok {
			continue
		}
		switch cell.Kind {

		case KindEnvironment:
			e := GraphEnv{
				Handle: h,
				Name:   cell.Env.Name,
				Outer:  cell.Env.Parent,
			}
			syms := lo.Keys(cell.Env.Vars)
			slices.SortFunc(syms, func(a, b Symbol) int {
				return strings.Compare(r.symbols.name(a), r.symbols.name(b))
			})
			for _, sym := range syms {
				value := cell.Env.Vars[sym]
				e.Vars = append(e.Vars, GraphVar{
					Name:  r.symbols.name(sym),
					Value: value,
				})
				enqueue(value)
			}
			enqueue(cell.Env.Parent)
			graph.Envs = append(graph.Envs, e)

		case KindPair:
			graph.Nodes = append(graph.Nodes, GraphNode{
				Handle: h,
				Kind:   KindPair,
				Label:  r.display(h),
				Car:    cell.Car,
				Cdr:    cell.Cdr,
			})
			enqueue(cell.Car)
			enqueue(cell.Cdr)

		case KindClosure:
			graph.Nodes = append(graph.Nodes, GraphNode{
				Handle: h,
				Kind:   KindClosure,
				Label:  r.display(h),
				Car:    cell.Captured,
			})
			enqueue(cell.Captured)

		default:
			graph.Nodes = append(graph.Nodes, GraphNode{
				Handle: h,
				Kind:   cell.Kind,
				Label:  r.display(h),
			})
		}
	}

	return graph, nil
}

func dotID(prefix string, h Handle) string {
	return fmt.Sprintf("%s_%d_%d", prefix, h.Index(), h.Generation())
}

func dotLabel(str string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(str)
}

// WriteDOT renders the graph in Graphviz DOT.
func (g *Graph) WriteDOT(w io.Writer, name string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %s {\n\n", name)

	for _, node := range g.Nodes {
		id := dotID("node", node.Handle)
		fmt.Fprintf(&sb, "\t%s [label=\"%s\", shape=box]\n", id, dotLabel(node.Label))
		switch node.Kind {
		case KindPair:
			fmt.Fprintf(&sb, "\t%s -> %s [label=\"car\"]\n", id, g.target(node.Car))
			fmt.Fprintf(&sb, "\t%s -> %s [label=\"cdr\"]\n", id, g.target(node.Cdr))
		case KindClosure:
			fmt.Fprintf(&sb, "\t%s -> %s [label=\"env\", style=dashed]\n", id, dotID("env_node", node.Car))
		}
	}

	for _, env := range g.Envs {
		envID := dotID("env_node", env.Handle)
		fmt.Fprintf(&sb, "\tsubgraph %s {\n", dotID("cluster", env.Handle))
		fmt.Fprintf(&sb, "\t\tlabel=\"Env %s\"\n", dotLabel(env.Name))
		sb.WriteString("\t\tstyle=filled;\n")
		sb.WriteString("\t\tcolor=lightgrey;\n")
		fmt.Fprintf(&sb, "\t\t%s [label=\"\", shape=point, style=invis];\n\n", envID)
		for i, v := range env.Vars {
			keyID := fmt.Sprintf("key_%d_%d_%d", env.Handle.Index(), env.Handle.Generation(), i)
			fmt.Fprintf(&sb, "\t\t%s [label=\"%s\", shape=box];\n", keyID, dotLabel(v.Name))
			fmt.Fprintf(&sb, "\t\t%s -> %s;\n", keyID, g.target(v.Value))
		}
		sb.WriteString("\t}\n")
		if env.Outer != NoHandle {
			fmt.Fprintf(&sb, "\t%s -> %s [label=\"outer\", style=dashed];\n", envID, dotID("env_node", env.Outer))
		}
	}

	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// target is the DOT id a binding or pair field points to.
func (g *Graph) target(h Handle) string {
	for _, env := range g.Envs {
		if env.Handle == h {
			return dotID("env_node", h)
		}
	}
	return dotID("node", h)
}
