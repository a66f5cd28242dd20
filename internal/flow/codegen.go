// File path: internal/flow/codegen.go
package flow

import (
	"fmt"
	"regexp"
	"strings"
)

// UnmappableActionWarning flags a process step whose label matched no known
// action pattern. The step still appears in the output as a commented
// placeholder, so the warning is advisory rather than fatal.
type UnmappableActionWarning struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label"`
}

func (w UnmappableActionWarning) Error() string {
	return fmt.Sprintf("no statement mapping for step %s (%q), emitted placeholder", w.NodeID, w.Label)
}

// syntheticEndLabel marks the implicit end appended when control falls off
// the last statement. It emits no source line.
const syntheticEndLabel = "End"

// EmitCode renders the graph as Python source wrapped in a main() entry
// point, which keeps return statements legal wherever a terminal node sits.
// The walk is read only and recovers block nesting from the graph's
// postdominator structure, so statement order always matches node creation
// order.
func EmitCode(g *Graph) (string, []UnmappableActionWarning, error) {
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
		return "", nil, err
	}
	e.ipdom = ipdom
	e.line(0, "def main():")
	if err := e.walk(g.Start, "", 1); err != nil {
		return "", nil, err
	}
	if len(e.lines) == 1 {
		e.line(1, "pass")
	}
	e.line(0, "")
	e.line(0, `if __name__ == "__main__":`)
	e.line(1, "main()")
	return strings.Join(e.lines, "\n") + "\n", e.warns, nil
}

type codeEmitter struct {
	g     *Graph
	byID  map[string]Node
	ipdom map[string]string
	lines []string
	warns []UnmappableActionWarning
	visit []string
	seen  map[string]bool
	steps int
}

func (e *codeEmitter) line(indent int, text string) {
	e.lines = append(e.lines, strings.Repeat("    ", indent)+text)
}

func (e *codeEmitter) record(id string) {
	if !e.seen[id] {
		e.seen[id] = true
		e.visit = append(e.visit, id)
	}
}

// next returns the sole unlabeled successor of a straight-line node.
func (e *codeEmitter) next(id string) string {
	out := e.g.Outgoing(id)
	if len(out) == 0 {
		return ""
	}
	return out[0].To
}

// walk emits the chain from cur until it reaches stop, an end node or the
// end of the graph. Branch and loop bodies recurse with a tighter stop.
func (e *codeEmitter) walk(cur, stop string, indent int) error {
	for cur != "" && cur != stop {
		e.steps++
		if e.steps > 4*len(e.g.Nodes)+16 {
			return malformed("emitter exceeded step budget at node %q", cur)
		}
		n, ok := e.byID[cur]
		if !ok {
			return malformed("walk reached unknown node %q", cur)
		}
		e.record(cur)
		switch n.Kind {
		case NodeStart, NodeJoin, NodeLoopExit:
			cur = e.next(cur)

		case NodeProcess:
			e.process(n, indent)
			cur = e.next(cur)

		case NodeEnd:
			e.terminal(n, indent)
			return nil

		case NodeDecision:
			yes := e.g.OutTarget(cur, EdgeYes)
			no := e.g.OutTarget(cur, EdgeNo)
			if yes == "" || no == "" {
				return malformed("decision %q is missing a labeled branch", cur)
			}
			merge := e.ipdom[cur]
			branchStop := merge
			if branchStop == "" {
				branchStop = stop
			}
			e.line(indent, "if "+conditionExpr(n.Label)+":")
			if err := e.branch(yes, branchStop, indent+1); err != nil {
				return err
			}
			if e.chainEmits(no, branchStop) {
				e.line(indent, "else:")
				if err := e.branch(no, branchStop, indent+1); err != nil {
					return err
				}
			} else {
				e.recordChain(no, branchStop)
			}
			if merge == "" {
				// No common continuation: both arms run to their own end
				// or rejoin an enclosing construct.
				return nil
			}
			cur = merge

		case NodeLoop:
			body := e.g.OutTarget(cur, EdgeLoop)
			exit := e.g.OutTarget(cur, EdgeDone)
			if body == "" || exit == "" {
				return malformed("loop %q is missing a labeled branch", cur)
			}
			e.line(indent, loopHeader(n.Label))
			if err := e.branch(body, cur, indent+1); err != nil {
				return err
			}
			cur = exit

		default:
			return malformed("walk reached node %q of unknown kind %q", cur, n.Kind)
		}
	}
	return nil
}

// branch emits one nested arm, falling back to pass when the arm reaches its
// stop without producing a statement.
func (e *codeEmitter) branch(from, stop string, indent int) error {
	if !e.chainEmits(from, stop) {
		e.recordChain(from, stop)
		e.line(indent, "pass")
		return nil
	}
	return e.walk(from, stop, indent)
}

// recordChain marks silently traversed connector nodes as visited so the
// visit order stays aligned with node creation order.
func (e *codeEmitter) recordChain(from, stop string) {
	for cur := from; cur != "" && cur != stop; cur = e.next(cur) {
		e.record(cur)
	}
}

// chainEmits reports whether the chain from cur to stop produces at least
// one source line.
func (e *codeEmitter) chainEmits(cur, stop string) bool {
	for steps := 0; cur != "" && cur != stop && steps <= len(e.g.Nodes); steps++ {
		n := e.byID[cur]
		switch n.Kind {
		case NodeProcess, NodeDecision, NodeLoop:
			return true
		case NodeEnd:
			return n.Label != syntheticEndLabel
		default:
			cur = e.next(cur)
		}
	}
	return false
}

func (e *codeEmitter) process(n Node, indent int) {
	lines, ok := statementFor(n.Label)
	if !ok {
		e.warns = append(e.warns, UnmappableActionWarning{NodeID: n.ID, Label: n.Label})
	}
	for _, l := range lines {
		e.line(indent, l)
	}
}

func (e *codeEmitter) terminal(n Node, indent int) {
	if n.Label == syntheticEndLabel {
		return
	}
	e.line(indent, returnFor(n.Label))
}

// postdominators computes the immediate postdominator of every node against
// a virtual exit that succeeds each end node. A decision whose postdominator
// is the virtual exit has no merge point inside the graph.
func postdominators(g *Graph) (map[string]string, error) {
	n := len(g.Nodes)
	idx := make(map[string]int, n)
	for i, node := range g.Nodes {
		idx[node.ID] = i
	}
	vexit := n

	// rsucc walks edges backwards, which is the direction dominance runs in.
	rsucc := make([][]int, n+1)
	fsucc := make([][]int, n+1)
	for _, e := range g.Edges {
		rsucc[idx[e.To]] = append(rsucc[idx[e.To]], idx[e.From])
		fsucc[idx[e.From]] = append(fsucc[idx[e.From]], idx[e.To])
	}
	for i, node := range g.Nodes {
		if node.Kind == NodeEnd {
			rsucc[vexit] = append(rsucc[vexit], i)
			fsucc[i] = append(fsucc[i], vexit)
		}
	}

	po := make([]int, n+1)
	seen := make([]bool, n+1)
	var order []int
	var dfs func(u int)
	dfs = func(u int) {
		seen[u] = true
		for _, v := range rsucc[u] {
			if !seen[v] {
				dfs(v)
			}
		}
		po[u] = len(order)
		order = append(order, u)
	}
	dfs(vexit)
	for i := 0; i < n; i++ {
		if !seen[i] {
			return nil, malformed("node %q cannot reach an end node", g.Nodes[i].ID)
		}
	}

	doms := make([]int, n+1)
	for i := range doms {
		doms[i] = -1
	}
	doms[vexit] = vexit
	intersect := func(a, b int) int {
		for a != b {
			for po[a] < po[b] {
				a = doms[a]
			}
			for po[b] < po[a] {
				b = doms[b]
			}
		}
		return a
	}
	for changed := true; changed; {
		changed = false
		for k := len(order) - 2; k >= 0; k-- {
			u := order[k]
			newIdom := -1
			for _, p := range fsucc[u] {
				if doms[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != -1 && doms[u] != newIdom {
				doms[u] = newIdom
				changed = true
			}
		}
	}

	out := make(map[string]string, n)
	for i, node := range g.Nodes {
		if doms[i] == -1 || doms[i] == vexit {
			out[node.ID] = ""
		} else {
			out[node.ID] = g.Nodes[doms[i]].ID
		}
	}
	return out, nil
}

// Phrase mapping below turns step and condition labels into Python. Rules
// are ordered, first match wins, and anything unmatched degrades to a
// commented placeholder so the structure never silently loses a step.

var (
	numberRe   = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	quotedRe   = regexp.MustCompile(`^(['"])(.*)(['"])$`)
	articleRe  = regexp.MustCompile(`^(?i)(?:the|a|an|my|our|its|their)\s+`)
	nonWordRe  = regexp.MustCompile(`[^a-z0-9]+`)
	leadDigit  = regexp.MustCompile(`^[0-9]`)
	andOrSepRe = regexp.MustCompile(`(?i)\s+\b(and|or)\b\s+`)
)

// slug reduces a noun phrase to an identifier.
func slug(s string) string {
	s = strings.TrimSpace(s)
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		s = m[2]
	}
	s = articleRe.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "value"
	}
	if leadDigit.MatchString(s) {
		return "v_" + s
	}
	return s
}

func pyQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// operandExpr maps a noun phrase to a Python expression: numbers stay
// literal, quoted text stays a string, referents become identifiers.
func operandExpr(s string) string {
	s = strings.TrimSpace(s)
	if numberRe.MatchString(s) {
		return s
	}
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		return pyQuote(m[2])
	}
	return slug(s)
}

// valueExpr is operandExpr for assignment right-hand sides, where loose
// multi-word phrases read better as string literals than as identifiers.
func valueExpr(s string) string {
	s = strings.TrimSpace(s)
	if numberRe.MatchString(s) {
		return s
	}
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		return pyQuote(m[2])
	}
	if len(strings.Fields(s)) > 1 && !articleRe.MatchString(s) {
		return pyQuote(s)
	}
	return slug(s)
}

// printArg decides between a variable reference and a string literal. A
// leading article signals a referent; bare multi-word text is a message.
func printArg(s string) string {
	s = strings.TrimSpace(s)
	if numberRe.MatchString(s) {
		return s
	}
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		return pyQuote(m[2])
	}
	if articleRe.MatchString(s) {
		return slug(s)
	}
	if len(strings.Fields(s)) == 1 && len(s) <= 2 {
		return slug(s)
	}
	return pyQuote(s)
}

type stmtRule struct {
	re *regexp.Regexp
	fn func(m []string) []string
}

var stmtRules = []stmtRule{
	{regexp.MustCompile(`^(?i)(?:print|display|show|output|say|log|write)\s+(.+)$`), func(m []string) []string {
		return []string{"print(" + printArg(m[1]) + ")"}
	}},
	{regexp.MustCompile(`^(?i)(?:set|make)\s+(.+?)\s+to\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " = " + valueExpr(m[2])}
	}},
	{regexp.MustCompile(`^(?i)(?:let)\s+(.+?)\s+(?:be|equal)\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " = " + valueExpr(m[2])}
	}},
	{regexp.MustCompile(`^(?i)(?:assign)\s+(.+?)\s+to\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[2]) + " = " + valueExpr(m[1])}
	}},
	{regexp.MustCompile(`^(?i)(?:initialize|initialise)\s+(.+?)\s+(?:to|at|with)\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " = " + valueExpr(m[2])}
	}},
	{regexp.MustCompile(`^(?i)(?:increment|increase|bump|raise)\s+(.+?)(?:\s+by\s+(.+))?$`), func(m []string) []string {
		by := "1"
		if m[2] != "" {
			by = operandExpr(m[2])
		}
		return []string{slug(m[1]) + " += " + by}
	}},
	{regexp.MustCompile(`^(?i)(?:decrement|decrease|reduce|lower)\s+(.+?)(?:\s+by\s+(.+))?$`), func(m []string) []string {
		by := "1"
		if m[2] != "" {
			by = operandExpr(m[2])
		}
		return []string{slug(m[1]) + " -= " + by}
	}},
	{regexp.MustCompile(`^(?i)(?:add|append|push)\s+(.+?)\s+(?:to|onto|into)\s+(.+)$`), func(m []string) []string {
		val := operandExpr(m[1])
		dst := slug(m[2])
		if numberRe.MatchString(strings.TrimSpace(m[1])) {
			return []string{dst + " += " + val}
		}
		return []string{dst + ".append(" + val + ")"}
	}},
	{regexp.MustCompile(`^(?i)(?:subtract)\s+(.+?)\s+from\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[2]) + " -= " + operandExpr(m[1])}
	}},
	{regexp.MustCompile(`^(?i)(?:multiply)\s+(.+?)\s+by\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " *= " + operandExpr(m[2])}
	}},
	{regexp.MustCompile(`^(?i)(?:divide)\s+(.+?)\s+by\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " /= " + operandExpr(m[2])}
	}},
	{regexp.MustCompile(`^(?i)(?:remove|pop|take|drop)\s+the\s+(first|last|next)\s+(?:item|element|entry|job|value)(?:\s+from\s+(.+))?$`), func(m []string) []string {
		src := "items"
		if m[2] != "" {
			src = slug(m[2])
		}
		if strings.EqualFold(m[1], "last") {
			return []string{src + ".pop()"}
		}
		return []string{src + ".pop(0)"}
	}},
	{regexp.MustCompile(`^(?i)(?:read|input)\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + ` = input("Enter ` + strings.ToLower(strings.TrimSpace(m[1])) + `: ")`}
	}},
	{regexp.MustCompile(`^(?i)(?:ask|prompt)\s+(?:(?i:the\s+user)\s+)?for\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + ` = input("Enter ` + strings.ToLower(strings.TrimSpace(m[1])) + `: ")`}
	}},
	{regexp.MustCompile(`^(?i)(?:get)\s+(.+?)\s+from\s+(?i:the\s+user)$`), func(m []string) []string {
		return []string{slug(m[1]) + ` = input("Enter ` + strings.ToLower(strings.TrimSpace(m[1])) + `: ")`}
	}},
	{regexp.MustCompile(`^(?i)(?:calculate|compute)\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + " = calculate_" + slug(m[1]) + "()"}
	}},
	{regexp.MustCompile(`^(?i)(?:call|invoke|execute|perform)\s+(.+)$`), func(m []string) []string {
		return []string{slug(m[1]) + "()"}
	}},
	{regexp.MustCompile(`^(?i)(?:do\s+nothing|wait|pass|skip(?:\s+it)?|continue)$`), func(m []string) []string {
		return []string{"pass"}
	}},
}

// statementFor maps a process label to source lines. The second return is
// false when only the commented placeholder could be produced.
func statementFor(label string) ([]string, bool) {
	trimmed := strings.TrimSpace(label)
	for _, r := range stmtRules {
		if m := r.re.FindStringSubmatch(trimmed); m != nil {
			return r.fn(m), true
		}
	}
	return []string{"# " + trimmed, "pass"}, false
}

type condRule struct {
	re *regexp.Regexp
	fn func(m []string) string
}

var condRules = []condRule{
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+greater\s+than\s+or\s+equal\s+to|is\s+at\s+least)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " >= " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+less\s+than\s+or\s+equal\s+to|is\s+at\s+most)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " <= " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+(?:greater|more|bigger|larger)\s+than|exceeds|is\s+above|is\s+over)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " > " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+(?:less|smaller|lower)\s+than|is\s+below|is\s+under)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " < " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+not\s+equal\s+to|does\s+not\s+equal|differs\s+from)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " != " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+equal\s+to|equals)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " == " + operandExpr(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+not\s+empty|has\s+items|has\s+entries)$`), func(m []string) string {
		return "len(" + slug(m[1]) + ") > 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+empty|has\s+no\s+items|has\s+no\s+entries)$`), func(m []string) string {
		return "len(" + slug(m[1]) + ") == 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+even)$`), func(m []string) string {
		return slug(m[1]) + " % 2 == 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+odd)$`), func(m []string) string {
		return slug(m[1]) + " % 2 != 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+positive)$`), func(m []string) string {
		return slug(m[1]) + " > 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+negative)$`), func(m []string) string {
		return slug(m[1]) + " < 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+zero)$`), func(m []string) string {
		return slug(m[1]) + " == 0"
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+true)$`), func(m []string) string {
		return slug(m[1])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+false)$`), func(m []string) string {
		return "not " + slug(m[1])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:contains|includes)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[2]) + " in " + slug(m[1])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is\s+not)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " != " + condOperand(m[2])
	}},
	{regexp.MustCompile(`^(.+?)\s+(?i:is|are)\s+(.+)$`), func(m []string) string {
		return operandExpr(m[1]) + " == " + condOperand(m[2])
	}},
}

// condOperand quotes bare comparison targets, so "the status is done"
// compares against the string "done" rather than an undefined name.
func condOperand(s string) string {
	s = strings.TrimSpace(s)
	if numberRe.MatchString(s) {
		return s
	}
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		return pyQuote(m[2])
	}
	if articleRe.MatchString(s) {
		return slug(s)
	}
	return pyQuote(strings.ToLower(s))
}

// conditionExpr maps a condition phrase to a Python expression, splitting
// conjunctions first so each side maps on its own.
func conditionExpr(phrase string) string {
	phrase = strings.TrimSpace(phrase)
	if locs := andOrSepRe.FindAllStringSubmatchIndex(phrase, -1); len(locs) > 0 {
		var parts []string
		last := 0
		for _, loc := range locs {
			parts = append(parts, simpleCondition(phrase[last:loc[0]]))
			parts = append(parts, strings.ToLower(phrase[loc[2]:loc[3]]))
			last = loc[1]
		}
		parts = append(parts, simpleCondition(phrase[last:]))
		return strings.Join(parts, " ")
	}
	return simpleCondition(phrase)
}

func simpleCondition(phrase string) string {
	trimmed := strings.TrimSpace(phrase)
	for _, r := range condRules {
		if m := r.re.FindStringSubmatch(trimmed); m != nil {
			return r.fn(m)
		}
	}
	return slug(trimmed)
}

// loopHeader maps a loop head label to its Python header line.
func loopHeader(label string) string {
	trimmed := strings.TrimSpace(label)
	lower := strings.ToLower(trimmed)
	switch {
	case lower == "forever":
		return "while True:"
	case strings.HasPrefix(lower, "until "):
		return "while not (" + conditionExpr(trimmed[len("until "):]) + "):"
	case strings.HasPrefix(lower, "for each "):
		rest := trimmed[len("for each "):]
		if i := strings.Index(strings.ToLower(rest), " in "); i >= 0 {
			return "for " + slug(rest[:i]) + " in " + slug(rest[i+len(" in "):]) + ":"
		}
		v := slug(rest)
		return "for " + v + " in " + v + "s:"
	default:
		return "while " + conditionExpr(trimmed) + ":"
	}
}

// returnFor maps a terminal label to its return statement. Bare stop words
// return nothing, "return X" carries its operand.
func returnFor(label string) string {
	trimmed := strings.TrimSpace(label)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "return") {
		rest := strings.TrimSpace(trimmed[len("return"):])
		if rest == "" {
			return "return"
		}
		return "return " + operandExpr(rest)
	}
	return "return"
}
