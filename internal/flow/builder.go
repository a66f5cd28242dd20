// File path: internal/flow/builder.go
package flow

import (
	"fmt"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/model"
)

// graphBuilder accumulates nodes and edges while walking a statement tree.
// Node ids follow creation order so both emitters see the same sequence.
type graphBuilder struct {
	g       *Graph
	counter int
}

func (b *graphBuilder) addNode(kind NodeKind, label string) string {
	b.counter++
	id := fmt.Sprintf("n%d", b.counter)
	b.g.Nodes = append(b.g.Nodes, Node{ID: id, Kind: kind, Label: label})
	return id
}

func (b *graphBuilder) addEdge(from, to, label string) {
	b.g.Edges = append(b.g.Edges, Edge{From: from, To: to, Label: label})
}

// pending is a dangling edge whose source is known but whose target has not
// been created yet. Branching leaves several pendings open at once.
type pending struct {
	from  string
	label string
}

// connect resolves every pending edge onto the freshly created node.
func (b *graphBuilder) connect(cur []pending, to string) {
	for _, p := range cur {
		b.addEdge(p.from, to, p.label)
	}
}

// Build lowers a normalized statement tree into a flow graph. The graph is
// validated before it is returned; a validation failure means the builder
// itself produced an inconsistent shape and surfaces as MalformedGraphError.
func Build(stmts []*model.Statement) (*Graph, error) {
	b := &graphBuilder{g: &Graph{}}
	start := b.addNode(NodeStart, "Start")
	b.g.Start = start
	live := b.buildSequence(stmts, []pending{{from: start}})
	if len(live) > 0 {
		end := b.addNode(NodeEnd, "End")
		b.connect(live, end)
		b.g.Terminals = append(b.g.Terminals, end)
	}
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// buildSequence threads the open cursors through each statement in order.
// Once every cursor has terminated the remaining statements are unreachable
// and are not lowered at all, which keeps code and diagram consistent.
func (b *graphBuilder) buildSequence(stmts []*model.Statement, cur []pending) []pending {
	for _, st := range stmts {
		if len(cur) == 0 {
			break
		}
		cur = b.buildStatement(st, cur)
	}
	return cur
}

func (b *graphBuilder) buildStatement(st *model.Statement, cur []pending) []pending {
	switch st.Kind {
	case model.KindAction, model.KindSequence:
		id := b.addNode(NodeProcess, st.Text)
		b.connect(cur, id)
		return []pending{{from: id}}

	case model.KindTerminate:
		id := b.addNode(NodeEnd, st.Text)
		b.connect(cur, id)
		b.g.Terminals = append(b.g.Terminals, id)
		return nil

	case model.KindCondition:
		d := b.addNode(NodeDecision, st.Text)
		b.connect(cur, d)
		thenLive := b.buildSequence(st.Children, []pending{{from: d, label: EdgeYes}})
		elseLive := []pending{{from: d, label: EdgeNo}}
		if len(st.Else) > 0 {
			elseLive = b.buildSequence(st.Else, elseLive)
		}
		live := append(thenLive, elseLive...)
		if len(live) == 0 {
			return nil
		}
		j := b.addNode(NodeJoin, "")
		b.connect(live, j)
		return []pending{{from: j}}

	case model.KindLoop:
		label := st.Text
		if label == "" {
			label = "forever"
		}
		l := b.addNode(NodeLoop, label)
		b.connect(cur, l)
		body := st.Children
		if len(body) == 0 {
			// A loop with no lowered body would collapse into a bare
			// self-edge, so it gets an explicit placeholder step.
			body = []*model.Statement{{Kind: model.KindAction, Text: "do nothing"}}
		}
		bodyLive := b.buildSequence(body, []pending{{from: l, label: EdgeLoop}})
		b.connect(bodyLive, l)
		exit := b.addNode(NodeLoopExit, "")
		b.addEdge(l, exit, EdgeDone)
		return []pending{{from: exit}}

	default:
		// Unknown kinds lower as plain steps rather than vanishing.
		id := b.addNode(NodeProcess, st.Text)
		b.connect(cur, id)
		return []pending{{from: id}}
	}
}
