// File path: internal/flow/compile_test.go
package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/model"
)

func TestCompileEmptyPrompt(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t\n"} {
		res, err := Compile(src)
		if err == nil {
			t.Fatalf("expected error for %q", src)
		}
		if res != nil {
			t.Fatalf("failed compile must not return a partial result")
		}
		var empty *EmptyLogicError
		if !errors.As(err, &empty) {
			t.Fatalf("expected EmptyLogicError, got %T", err)
		}
	}
}

func TestCompileConditional(t *testing.T) {
	res, err := Compile("If x is greater than 10, print big, otherwise print small.")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if res.Code == "" || res.Diagram == "" {
		t.Fatalf("compile must produce both outputs")
	}
	if !strings.Contains(res.Code, "if x > 10:") {
		t.Fatalf("missing conditional in code:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "else:") {
		t.Fatalf("missing else in code:\n%s", res.Code)
	}
	if !strings.Contains(res.Diagram, `{"x is greater than 10"}`) {
		t.Fatalf("missing decision diamond in diagram:\n%s", res.Diagram)
	}
	if !strings.Contains(res.Diagram, "-- yes -->") || !strings.Contains(res.Diagram, "-- no -->") {
		t.Fatalf("decision must carry two labeled edges:\n%s", res.Diagram)
	}
	decisions := 0
	for _, n := range res.Graph.Nodes {
		if n.Kind == NodeDecision {
			decisions++
		}
	}
	if decisions != 1 {
		t.Fatalf("expected one decision node, got %d", decisions)
	}
}

func TestCompileLoop(t *testing.T) {
	res, err := Compile("While the list is not empty, remove the first item.")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if strings.Count(res.Code, "while ") != 1 {
		t.Fatalf("expected a single loop in code:\n%s", res.Code)
	}
	bodyLines := 0
	for _, line := range strings.Split(res.Code, "\n") {
		if strings.HasPrefix(line, "        ") {
			bodyLines++
		}
	}
	if bodyLines != 1 {
		t.Fatalf("loop should wrap exactly one statement, got %d:\n%s", bodyLines, res.Code)
	}
	var head string
	for _, n := range res.Graph.Nodes {
		if n.Kind == NodeLoop {
			head = n.ID
		}
	}
	if head == "" {
		t.Fatalf("graph has no loop head")
	}
	if strings.Count(res.Diagram, "--> "+head) != 2 {
		t.Fatalf("loop head should have entry and back edge:\n%s", res.Diagram)
	}
}

func TestCompileTerminatingBranch(t *testing.T) {
	res, err := Compile("if the input is negative then stop, otherwise print the input")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(res.Code, "return") {
		t.Fatalf("terminate should surface as return:\n%s", res.Code)
	}
	ends := 0
	for _, n := range res.Graph.Nodes {
		if n.Kind == NodeEnd {
			ends++
		}
	}
	if ends != 2 {
		t.Fatalf("expected a stop end and a fall-through end, got %d", ends)
	}
}

func TestCompileUnmappableStep(t *testing.T) {
	res, err := Compile("Recalibrate the flux capacitor. Print done.")
	if err != nil {
		t.Fatalf("unmappable steps must not fail the compile: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	if !strings.Contains(res.Code, "# Recalibrate the flux capacitor") {
		t.Fatalf("placeholder comment missing:\n%s", res.Code)
	}
	if !strings.Contains(res.Diagram, `["Recalibrate the flux capacitor"]`) {
		t.Fatalf("step must still appear in the diagram:\n%s", res.Diagram)
	}
}

func TestCompileDeterministic(t *testing.T) {
	src := `ask for a number
if the number is even
  print even
otherwise
  print odd
print done`
	first, err := Compile(src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compile(src)
		if err != nil {
			t.Fatalf("compile failed on round %d: %v", i, err)
		}
		if again.Code != first.Code {
			t.Fatalf("code not deterministic:\n%s\nvs\n%s", first.Code, again.Code)
		}
		if again.Diagram != first.Diagram {
			t.Fatalf("diagram not deterministic:\n%s\nvs\n%s", first.Diagram, again.Diagram)
		}
	}
}

func TestCompileStatementsDirect(t *testing.T) {
	res, err := CompileStatements([]*model.Statement{
		{Kind: model.KindAction, Text: "set count to 0"},
		{Kind: model.KindLoop, Text: "count is less than 3", Children: []*model.Statement{
			{Kind: model.KindAction, Text: "increment count"},
		}},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(res.Code, "count = 0") {
		t.Fatalf("missing assignment:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "while count < 3:") {
		t.Fatalf("missing loop header:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "count += 1") {
		t.Fatalf("missing loop body:\n%s", res.Code)
	}
}
