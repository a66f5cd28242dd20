// File path: internal/flow/mermaid.go
package flow

import (
	"fmt"
	"strings"
)

// EmitDiagram renders the graph as Mermaid flowchart text. Nodes appear in
// creation order and edges in creation order, so output is byte stable for
// a given graph.
func EmitDiagram(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range g.Nodes {
		open, closing := shapeFor(n.Kind)
		fmt.Fprintf(&b, "    %s%s\"%s\"%s\n", n.ID, open, diagramLabel(n), closing)
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "    %s -- %s --> %s\n", e.From, e.Label, e.To)
		} else {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
		}
	}
	return b.String()
}

// shapeFor picks the Mermaid bracket pair for a node kind. Decisions and
// loop heads share the diamond; joins and loop exits render as small
// connector circles like the terminators.
func shapeFor(kind NodeKind) (string, string) {
	switch kind {
	case NodeProcess:
		return "[", "]"
	case NodeDecision, NodeLoop:
		return "{", "}"
	default:
		return "((", "))"
	}
}

// diagramLabel escapes quotes and gives connector nodes a non-empty body,
// which Mermaid requires.
func diagramLabel(n Node) string {
	label := n.Label
	if label == "" {
		label = " "
	}
	return strings.ReplaceAll(label, `"`, "&quot;")
}
