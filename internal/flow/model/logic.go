// File path: internal/flow/model/logic.go
package model

// Kind tags a normalized logic statement.
type Kind string

const (
	KindSequence  Kind = "sequence"
	KindCondition Kind = "condition"
	KindLoop      Kind = "loop"
	KindAction    Kind = "action"
	KindTerminate Kind = "terminate"
)

// Statement represents one normalized unit of prompt logic. Conditions keep
// their positive branch in Children and the alternative in Else; loops keep
// their body in Children. Statements are not mutated after normalization.
type Statement struct {
	Kind     Kind         `json:"kind"`
	Text     string       `json:"text"`
	Children []*Statement `json:"children,omitempty"`
	Else     []*Statement `json:"else,omitempty"`
	Forever  bool         `json:"forever,omitempty"`
	Raw      string       `json:"raw,omitempty"`
}

// HasActionable reports whether the tree rooted at the statements contains at
// least one concrete step (action, sequence or terminate).
func HasActionable(stmts []*Statement) bool {
	for _, st := range stmts {
		if st == nil {
			continue
		}
		switch st.Kind {
		case KindAction, KindSequence, KindTerminate:
			return true
		}
		if HasActionable(st.Children) || HasActionable(st.Else) {
			return true
		}
	}
	return false
}
