// File path: internal/flow/types.go
package flow

// NodeKind identifies the control-flow role of a node.
type NodeKind string

const (
	NodeStart    NodeKind = "start"
	NodeProcess  NodeKind = "process"
	NodeDecision NodeKind = "decision"
	NodeLoop     NodeKind = "loop"
	NodeLoopExit NodeKind = "loop_exit"
	NodeJoin     NodeKind = "join"
	NodeEnd      NodeKind = "end"
)

// Edge labels used on branching nodes. Decisions branch yes/no, loop heads
// branch loop/done. All other edges carry no label.
const (
	EdgeYes  = "yes"
	EdgeNo   = "no"
	EdgeLoop = "loop"
	EdgeDone = "done"
)

// Node is a single step in the flow graph. IDs are assigned in creation
// order and never reused.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Graph is the control-flow form shared by the code and diagram emitters.
// Nodes and Edges keep creation order; emitters read but never mutate it.
type Graph struct {
	Nodes     []Node   `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	Start     string   `json:"start"`
	Terminals []string `json:"terminals,omitempty"`
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving id in creation order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges arriving at id in creation order.
func (g *Graph) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// OutTarget returns the destination of the edge leaving id with the given
// label, or "" when no such edge exists.
func (g *Graph) OutTarget(id, label string) string {
	for _, e := range g.Edges {
		if e.From == id && e.Label == label {
			return e.To
		}
	}
	return ""
}
