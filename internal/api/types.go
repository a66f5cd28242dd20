// File path: internal/api/types.go
package api

import (
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/userstore"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// indexView backs the prompt form. Error carries a banner shown above the
// form; Prompt preserves the submitted text so a failed attempt can be edited.
type indexView struct {
	User   userstore.User
	AuthOn bool
	Prompt string
	Error  string
}

type loginView struct {
	AuthOn bool
	Error  string
}

// resultView backs both result pages. The flowchart page renders Diagram
// through mermaid on the client; the code page shows Code alone.
type resultView struct {
	User     userstore.User
	AuthOn   bool
	Prompt   string
	Refined  string
	Code     string
	Diagram  string
	Warnings []string
	Provider string
	Cached   bool
}
