// File path: internal/flow/codegen_test.go
package flow

import (
	"strings"
	"testing"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/model"
)

func TestEmitCodeLinear(t *testing.T) {
	g, err := Build([]*model.Statement{
		action("ask for a number"),
		action("print the number"),
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, warns, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	want := `def main():
    number = input("Enter a number: ")
    print(number)

if __name__ == "__main__":
    main()
`
	if code != want {
		t.Fatalf("unexpected code:\n%s\nwant:\n%s", code, want)
	}
}

func TestEmitCodeDecision(t *testing.T) {
	cond := &model.Statement{
		Kind:     model.KindCondition,
		Text:     "x is greater than 10",
		Children: []*model.Statement{action("print big")},
		Else:     []*model.Statement{action("print small")},
	}
	g, err := Build([]*model.Statement{cond})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, _, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.Contains(code, "    if x > 10:") {
		t.Fatalf("missing if header:\n%s", code)
	}
	if !strings.Contains(code, "        print(\"big\")") {
		t.Fatalf("missing then branch:\n%s", code)
	}
	if !strings.Contains(code, "    else:") || !strings.Contains(code, "        print(\"small\")") {
		t.Fatalf("missing else branch:\n%s", code)
	}
	if strings.Count(code, "if ") != 2 {
		// one branch plus the __main__ guard
		t.Fatalf("expected exactly one conditional:\n%s", code)
	}
}

func TestEmitCodeLoop(t *testing.T) {
	loop := &model.Statement{
		Kind:     model.KindLoop,
		Text:     "the list is not empty",
		Children: []*model.Statement{action("remove the first item")},
	}
	g, err := Build([]*model.Statement{loop})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, warns, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if strings.Count(code, "while ") != 1 {
		t.Fatalf("expected a single loop construct:\n%s", code)
	}
	if !strings.Contains(code, "    while len(list) > 0:") {
		t.Fatalf("missing loop header:\n%s", code)
	}
	if !strings.Contains(code, "        items.pop(0)") {
		t.Fatalf("missing loop body:\n%s", code)
	}
}

func TestEmitCodeTerminateBranch(t *testing.T) {
	cond := &model.Statement{
		Kind:     model.KindCondition,
		Text:     "the input is negative",
		Children: []*model.Statement{terminate("stop")},
		Else:     []*model.Statement{action("print the input")},
	}
	g, err := Build([]*model.Statement{cond})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, _, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.Contains(code, "    if input < 0:") {
		t.Fatalf("missing condition:\n%s", code)
	}
	if !strings.Contains(code, "        return") {
		t.Fatalf("terminate should emit a return:\n%s", code)
	}
	if !strings.Contains(code, "        print(input)") {
		t.Fatalf("missing else branch:\n%s", code)
	}
}

func TestEmitCodeForeverLoopWithBreakout(t *testing.T) {
	loop := &model.Statement{
		Kind:    model.KindLoop,
		Text:    "forever",
		Forever: true,
		Children: []*model.Statement{
			action("read the command"),
			{
				Kind:     model.KindCondition,
				Text:     "the command is quit",
				Children: []*model.Statement{terminate("stop")},
			},
		},
	}
	g, err := Build([]*model.Statement{loop})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, _, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.Contains(code, "    while True:") {
		t.Fatalf("forever loop should emit while True:\n%s", code)
	}
	if !strings.Contains(code, "            return") {
		t.Fatalf("nested terminate should emit an indented return:\n%s", code)
	}
}

func TestEmitCodeUnmappableAction(t *testing.T) {
	g, err := Build([]*model.Statement{action("recalibrate the flux capacitor")})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	code, warns, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %d", len(warns))
	}
	if warns[0].Label != "recalibrate the flux capacitor" {
		t.Fatalf("unexpected warning label: %q", warns[0].Label)
	}
	if warns[0].NodeID != "n2" {
		t.Fatalf("warning should name the process node, got %q", warns[0].NodeID)
	}
	if !strings.Contains(code, "    # recalibrate the flux capacitor") {
		t.Fatalf("placeholder comment missing:\n%s", code)
	}
	if !strings.Contains(code, "    pass") {
		t.Fatalf("placeholder pass missing:\n%s", code)
	}
}

func TestEmitCodeVisitOrderMatchesCreation(t *testing.T) {
	loop := &model.Statement{
		Kind: model.KindLoop,
		Text: "the queue is not empty",
		Children: []*model.Statement{
			{
				Kind:     model.KindCondition,
				Text:     "the job is urgent",
				Children: []*model.Statement{terminate("stop")},
			},
			action("log the job"),
		},
	}
	g, err := Build([]*model.Statement{loop})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	e := &codeEmitter{
		g:    g,
		byID: make(map[string]Node, len(g.Nodes)),
		seen: make(map[string]bool, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		e.byID[n.ID] = n
	}
	ipdom, err := postdominators(g)
	if err != nil {
		t.Fatalf("postdominators failed: %v", err)
	}
	e.ipdom = ipdom
	if err := e.walk(g.Start, "", 1); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if len(e.visit) != len(g.Nodes) {
		t.Fatalf("walk visited %d of %d nodes", len(e.visit), len(g.Nodes))
	}
	for i, n := range g.Nodes {
		if e.visit[i] != n.ID {
			t.Fatalf("visit order diverged at %d: got %s, want %s", i, e.visit[i], n.ID)
		}
	}
}

func TestEmitCodeDeterministic(t *testing.T) {
	cond := &model.Statement{
		Kind:     model.KindCondition,
		Text:     "the total is greater than 100",
		Children: []*model.Statement{action("print the total")},
		Else:     []*model.Statement{action("increment the total")},
	}
	g, err := Build([]*model.Statement{action("set the total to 0"), cond})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	first, _, err := EmitCode(g)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := EmitCode(g)
		if err != nil {
			t.Fatalf("emit failed on round %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("emission is not byte stable:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestStatementMappings(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"print the total", "print(total)"},
		{"print hello world", `print("hello world")`},
		{"set count to 0", "count = 0"},
		{"increment count", "count += 1"},
		{"increase the total by 5", "total += 5"},
		{"decrease the balance by 10", "balance -= 10"},
		{"add the item to the basket", "basket.append(item)"},
		{"add 3 to the total", "total += 3"},
		{"remove the first item", "items.pop(0)"},
		{"remove the last entry from the log", "log.pop()"},
		{"read the name", `name = input("Enter the name: ")`},
		{"calculate the average", "average = calculate_average()"},
		{"call the cleanup routine", "cleanup_routine()"},
		{"do nothing", "pass"},
	}
	for _, tc := range cases {
		lines, ok := statementFor(tc.label)
		if !ok {
			t.Fatalf("%q should map, got placeholder %v", tc.label, lines)
		}
		if len(lines) != 1 || lines[0] != tc.want {
			t.Fatalf("%q: got %v, want %q", tc.label, lines, tc.want)
		}
	}
}

func TestConditionMappings(t *testing.T) {
	cases := []struct {
		phrase string
		want   string
	}{
		{"x is greater than 10", "x > 10"},
		{"the count is less than or equal to 3", "count <= 3"},
		{"the list is empty", "len(list) == 0"},
		{"the queue is not empty", "len(queue) > 0"},
		{"the number is even", "number % 2 == 0"},
		{"the number is odd", "number % 2 != 0"},
		{"the balance is negative", "balance < 0"},
		{"the name equals 'alice'", `name == "alice"`},
		{"the status is done", `status == "done"`},
		{"x is positive and y is negative", "x > 0 and y < 0"},
	}
	for _, tc := range cases {
		if got := conditionExpr(tc.phrase); got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.phrase, got, tc.want)
		}
	}
}

func TestReturnMappings(t *testing.T) {
	if got := returnFor("stop"); got != "return" {
		t.Fatalf("stop: got %q", got)
	}
	if got := returnFor("return the total"); got != "return total" {
		t.Fatalf("return the total: got %q", got)
	}
	if got := returnFor("halt the program"); got != "return" {
		t.Fatalf("halt: got %q", got)
	}
}
