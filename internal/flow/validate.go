// File path: internal/flow/validate.go
package flow

import "fmt"

// MalformedGraphError reports an internal inconsistency in a built graph.
// It is a defect in the lowering pipeline, not a user input problem, so
// callers log the reason and surface only a generic failure.
type MalformedGraphError struct {
	Reason string
}

func (e *MalformedGraphError) Error() string {
	return "malformed control-flow graph: " + e.Reason
}

func malformed(format string, args ...any) *MalformedGraphError {
	return &MalformedGraphError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants every emitter relies on: a
// single start, labeled two-way branches, connected flow and cycles that
// pass only through loop heads. Emitters assume a validated graph.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return malformed("graph has no nodes")
	}
	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return malformed("node with empty id")
		}
		if _, dup := byID[n.ID]; dup {
			return malformed("duplicate node id %q", n.ID)
		}
		byID[n.ID] = n
	}
	for _, e := range g.Edges {
		if _, ok := byID[e.From]; !ok {
			return malformed("edge from unknown node %q", e.From)
		}
		if _, ok := byID[e.To]; !ok {
			return malformed("edge to unknown node %q", e.To)
		}
	}

	starts := 0
	for _, n := range g.Nodes {
		if n.Kind == NodeStart {
			starts++
			if g.Start != n.ID {
				return malformed("start pointer %q does not match start node %q", g.Start, n.ID)
			}
		}
	}
	if starts != 1 {
		return malformed("graph has %d start nodes, want exactly one", starts)
	}
	if len(g.Incoming(g.Start)) != 0 {
		return malformed("start node %q has incoming edges", g.Start)
	}

	for _, n := range g.Nodes {
		out := g.Outgoing(n.ID)
		switch n.Kind {
		case NodeDecision, NodeLoop:
			if len(out) != 2 {
				return malformed("%s node %q has %d outgoing edges, want 2", n.Kind, n.ID, len(out))
			}
			if out[0].Label == "" || out[1].Label == "" || out[0].Label == out[1].Label {
				return malformed("%s node %q needs two distinct edge labels, got %q and %q",
					n.Kind, n.ID, out[0].Label, out[1].Label)
			}
			if n.Kind == NodeLoop {
				done := g.OutTarget(n.ID, EdgeDone)
				if done == "" {
					return malformed("loop node %q has no %q edge", n.ID, EdgeDone)
				}
				if t := byID[done]; t.Kind != NodeLoopExit {
					return malformed("loop node %q escapes to %s node %q, want %s", n.ID, t.Kind, done, NodeLoopExit)
				}
			}
		case NodeEnd:
			if len(out) != 0 {
				return malformed("end node %q has outgoing edges", n.ID)
			}
		default:
			if len(out) != 1 {
				return malformed("%s node %q has %d outgoing edges, want 1", n.Kind, n.ID, len(out))
			}
			if out[0].Label != "" {
				return malformed("%s node %q carries edge label %q", n.Kind, n.ID, out[0].Label)
			}
		}
		if n.Kind != NodeStart && len(g.Incoming(n.ID)) == 0 {
			return malformed("node %q is unreachable, no incoming edges", n.ID)
		}
	}

	// Depth-first sweep from the start: everything must be reachable and
	// every back edge must close onto a loop head. Any other cycle has no
	// guarded escape and would hang both emitters.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Nodes))
	var walk func(id string) error
	walk = func(id string) error {
		color[id] = gray
		for _, e := range g.Outgoing(id) {
			switch color[e.To] {
			case white:
				if err := walk(e.To); err != nil {
					return err
				}
			case gray:
				if byID[e.To].Kind != NodeLoop {
					return malformed("cycle through %s node %q bypasses every loop head", byID[e.To].Kind, e.To)
				}
			}
		}
		color[id] = black
		return nil
	}
	if err := walk(g.Start); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if color[n.ID] == white {
			return malformed("node %q is not reachable from start", n.ID)
		}
	}

	ends := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Kind == NodeEnd {
			ends[n.ID] = true
		}
	}
	if len(ends) == 0 {
		return malformed("graph has no end node")
	}
	for _, t := range g.Terminals {
		if !ends[t] {
			return malformed("terminal %q is not an end node", t)
		}
	}
	return nil
}
