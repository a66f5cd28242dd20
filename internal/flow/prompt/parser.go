// File path: internal/flow/prompt/parser.go
package prompt

import (
	"regexp"
	"strings"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/model"
)

// EmptyLogicError reports a prompt that yielded no actionable steps after
// normalization. It is user correctable and safe to surface verbatim.
type EmptyLogicError struct {
	Prompt string
}

func (e *EmptyLogicError) Error() string {
	return "prompt describes no actionable logic; add at least one concrete step"
}

var (
	bulletRe   = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)
	condRe     = regexp.MustCompile(`^(?i:if|when|whenever)\s+(.+)$`)
	elseRe     = regexp.MustCompile(`^(?i:otherwise|else)\b[,:]?\s*(.*)$`)
	whileRe    = regexp.MustCompile(`^(?i:while|as long as)\s+(.+)$`)
	untilRe    = regexp.MustCompile(`^(?i:until)\s+(.+)$`)
	forEachRe  = regexp.MustCompile(`^(?i:for)\s+(?i:each|every)\s+(.+)$`)
	repeatRe   = regexp.MustCompile(`^(?i:repeat|keep)\s+(.+)$`)
	foreverRe  = regexp.MustCompile(`(?i)\bforever\b|\bindefinitely\b`)
	termRe     = regexp.MustCompile(`^(?i:return|stop|halt|terminate|finish|quit|exit|end)\b(.*)$`)
	seqRe      = regexp.MustCompile(`^(?i:first|next|then|after that|finally|lastly)\b[,:]?\s*(.*)$`)
	thenSepRe  = regexp.MustCompile(`(?i)\s+then\s+`)
	elseSepRe  = regexp.MustCompile(`(?i)[,;]?\s*\b(?:otherwise|else)\b[,]?\s*`)
	untilSepRe = regexp.MustCompile(`(?i)\s+until\s+`)
	actionSep  = regexp.MustCompile(`(?i),\s*(?:and\s+then\s+|then\s+|and\s+)?|\s+and\s+then\s+`)
)

// Parser normalizes free-form prompt text into a statement tree. The same
// cues cover hand-written prompts and the line-per-step form produced by the
// refinement pass, so normalization never depends on which path fed it.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// parse frames track the innermost open condition or loop so that indented
// follow-up lines nest under it.
type frame struct {
	indent int
	stmt   *model.Statement
	inElse bool
}

// Normalize splits the prompt into clauses, classifies each one and
// assembles the statement tree. It returns EmptyLogicError when nothing
// actionable survives.
func (p *Parser) Normalize(text string) ([]*model.Statement, error) {
	var top []*model.Statement
	var stack []*frame

	attach := func(st *model.Statement) {
		if len(stack) == 0 {
			top = append(top, st)
			return
		}
		fr := stack[len(stack)-1]
		if fr.inElse {
			fr.stmt.Else = append(fr.stmt.Else, st)
		} else {
			fr.stmt.Children = append(fr.stmt.Children, st)
		}
	}

	var handleClause func(indent int, clause string)
	handleClause = func(indent int, clause string) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return
		}
		if m := elseRe.FindStringSubmatch(clause); m != nil {
			for len(stack) > 0 && stack[len(stack)-1].indent > indent {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				fr := stack[len(stack)-1]
				if fr.indent == indent && fr.stmt.Kind == model.KindCondition {
					fr.inElse = true
					if rest := strings.TrimSpace(m[1]); rest != "" {
						st := parseClause(rest)
						if st != nil {
							fr.stmt.Else = append(fr.stmt.Else, st)
							if opensBlock(st) {
								stack = append(stack, &frame{indent: indent, stmt: st})
							}
						}
					}
					return
				}
			}
			// A stray otherwise with no matching condition degrades to a
			// plain action so the step is not silently dropped.
			attach(&model.Statement{Kind: model.KindAction, Text: clause, Raw: clause})
			return
		}
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}
		st := parseClause(clause)
		if st == nil {
			return
		}
		attach(st)
		if opensBlock(st) {
			fr := &frame{indent: indent, stmt: st}
			if st.Kind == model.KindCondition && len(st.Else) > 0 {
				fr.inElse = true
			}
			stack = append(stack, fr)
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		indent, content := measureIndent(raw)
		content = strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(content), ""))
		if content == "" {
			continue
		}
		for _, clause := range splitClauses(content) {
			handleClause(indent, clause)
		}
	}

	if !model.HasActionable(top) {
		return nil, &EmptyLogicError{Prompt: text}
	}
	return top, nil
}

// opensBlock reports whether indented follow-up lines should nest under the
// statement.
func opensBlock(st *model.Statement) bool {
	return st.Kind == model.KindCondition || st.Kind == model.KindLoop
}

// measureIndent counts leading whitespace with tabs weighted as four columns.
func measureIndent(line string) (int, string) {
	indent := 0
	for i, r := range line {
		switch r {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			return indent, line[i:]
		}
	}
	return indent, ""
}

// splitClauses breaks a line into sentences on terminal punctuation while
// keeping decimal numbers intact.
func splitClauses(s string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(s)
	flush := func() {
		if t := strings.TrimSpace(b.String()); t != "" {
			out = append(out, t)
		}
		b.Reset()
	}
	for i, r := range runes {
		switch r {
		case '.':
			prevDigit := i > 0 && runes[i-1] >= '0' && runes[i-1] <= '9'
			nextDigit := i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9'
			if prevDigit && nextDigit {
				b.WriteRune(r)
				continue
			}
			flush()
		case ';', '!', '?':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

// parseClause classifies a single clause and expands any inline structure
// such as "if C, A, otherwise B" into nested statements.
func parseClause(text string) *model.Statement {
	raw := strings.TrimSpace(text)
	t := strings.TrimSpace(strings.Trim(raw, ":"))
	if t == "" {
		return nil
	}
	if m := condRe.FindStringSubmatch(t); m != nil {
		cond, thenPart, elsePart := splitCondition(m[1])
		st := &model.Statement{Kind: model.KindCondition, Text: cond, Raw: raw}
		st.Children = parseActions(thenPart)
		st.Else = parseActions(elsePart)
		return st
	}
	if m := whileRe.FindStringSubmatch(t); m != nil {
		head, tail := splitControl(m[1])
		st := &model.Statement{Kind: model.KindLoop, Text: head, Raw: raw, Children: parseActions(tail)}
		if foreverRe.MatchString(head) {
			st.Forever = true
			st.Text = "forever"
		}
		return st
	}
	if m := untilRe.FindStringSubmatch(t); m != nil {
		head, tail := splitControl(m[1])
		return &model.Statement{Kind: model.KindLoop, Text: "until " + head, Raw: raw, Children: parseActions(tail)}
	}
	if m := forEachRe.FindStringSubmatch(t); m != nil {
		head, tail := splitControl(m[1])
		return &model.Statement{Kind: model.KindLoop, Text: "for each " + head, Raw: raw, Children: parseActions(tail)}
	}
	if m := repeatRe.FindStringSubmatch(t); m != nil {
		rest := m[1]
		if loc := untilSepRe.FindStringIndex(rest); loc != nil {
			body := strings.TrimSpace(rest[:loc[0]])
			cond := strings.TrimSpace(rest[loc[1]:])
			return &model.Statement{Kind: model.KindLoop, Text: "until " + cond, Raw: raw, Children: parseActions(body)}
		}
		body := strings.TrimSpace(foreverRe.ReplaceAllString(rest, ""))
		return &model.Statement{Kind: model.KindLoop, Text: "forever", Forever: true, Raw: raw, Children: parseActions(body)}
	}
	if termRe.MatchString(t) {
		return &model.Statement{Kind: model.KindTerminate, Text: t, Raw: raw}
	}
	if m := seqRe.FindStringSubmatch(t); m != nil {
		rest := strings.TrimSpace(m[1])
		if rest == "" {
			return nil
		}
		inner := parseClause(rest)
		if inner == nil {
			return nil
		}
		if inner.Kind == model.KindAction {
			inner.Kind = model.KindSequence
			inner.Raw = raw
		}
		return inner
	}
	return &model.Statement{Kind: model.KindAction, Text: t, Raw: raw}
}

// splitCondition separates "C then A else B" and "C, A, otherwise B" forms
// into their three parts. Missing parts come back empty.
func splitCondition(s string) (cond, thenPart, elsePart string) {
	rest := ""
	if loc := thenSepRe.FindStringIndex(s); loc != nil {
		cond = strings.TrimSpace(s[:loc[0]])
		rest = s[loc[1]:]
	} else if i := strings.Index(s, ","); i >= 0 {
		cond = strings.TrimSpace(s[:i])
		rest = s[i+1:]
	} else {
		cond = strings.TrimSpace(s)
		return cond, "", ""
	}
	if loc := elseSepRe.FindStringIndex(rest); loc != nil {
		return cond, strings.TrimSpace(rest[:loc[0]]), strings.TrimSpace(rest[loc[1]:])
	}
	return cond, strings.TrimSpace(rest), ""
}

// splitControl separates a loop's control phrase from an inline body, as in
// "the list is not empty, remove the first item".
func splitControl(s string) (head, tail string) {
	if loc := thenSepRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]]), s[loc[1]:]
	}
	if i := strings.Index(s, ","); i >= 0 {
		return strings.TrimSpace(s[:i]), s[i+1:]
	}
	return strings.TrimSpace(s), ""
}

// parseActions splits an inline branch or loop body into individual steps.
func parseActions(s string) []*model.Statement {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []*model.Statement
	for _, part := range actionSep.Split(s, -1) {
		if st := parseClause(part); st != nil {
			out = append(out, st)
		}
	}
	return out
}
