// File path: internal/flow/compile.go
package flow

import (
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/model"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow/prompt"
)

// EmptyLogicError aliases the normalizer's rejection so callers can match
// the whole compile error taxonomy from this package alone.
type EmptyLogicError = prompt.EmptyLogicError

// Result carries the two renderings of one compiled graph. Code and Diagram
// are produced from the same graph in the same pass, so they either both
// exist or the compile failed as a whole.
type Result struct {
	Code     string                    `json:"code"`
	Diagram  string                    `json:"diagram"`
	Graph    *Graph                    `json:"-"`
	Warnings []UnmappableActionWarning `json:"warnings,omitempty"`
}

// Compile normalizes the prompt, lowers it to a flow graph and renders both
// outputs. Errors are either *EmptyLogicError for unusable input or
// *MalformedGraphError for internal lowering defects.
func Compile(promptText string) (*Result, error) {
	stmts, err := prompt.NewParser().Normalize(promptText)
	if err != nil {
		return nil, err
	}
	return CompileStatements(stmts)
}

// CompileStatements lowers an already normalized statement tree. The
// refinement pipeline uses it to compile without re-running normalization.
func CompileStatements(stmts []*model.Statement) (*Result, error) {
	g, err := Build(stmts)
	if err != nil {
		return nil, err
	}
	code, warns, err := EmitCode(g)
	if err != nil {
		return nil, err
	}
	return &Result{
		Code:     code,
		Diagram:  EmitDiagram(g),
		Graph:    g,
		Warnings: warns,
	}, nil
}
