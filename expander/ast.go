package expander

import (
	"strings"
)

type Node interface {
	// String renders the node back to macro text that parses to the same node.
	String() string
}

type Nodes []Node

func (ns Nodes) String() string {
	var sb strings.Builder
	for _, n := range ns {
		sb.WriteString(n.String())
	}
	return sb.String()
}

// add appends n, merging adjacent literal text.
func (ns Nodes) add(n Node) Nodes {
	if r, ok := n.(*Raw); ok && len(ns) > 0 {
		if last, ok := ns[len(ns)-1].(*Raw); ok {
			ns[len(ns)-1] = &Raw{Text: last.Text + r.Text}
			return ns
		}
	}

	return append(ns, n)
}

type Raw struct {
	Text string
}

func (r *Raw) String() string {
	return r.Text
}

// Escape is a "$$" sequence.
type Escape struct{}

func (e *Escape) String() string {
	return "$$"
}

// Ref is a variable reference. Its name may itself contain references.
type Ref struct {
	Name Nodes
}

func (r *Ref) String() string {
	return "$(" + r.Name.String() + ")"
}

type Call struct {
	Name string
	Args []Nodes
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return "$(" + c.Name + " " + strings.Join(args, ",") + ")"
}
