// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// LocalProvider answers without any remote model by echoing the last user
// message. Refinement built on it degrades to the identity transform, which
// keeps the compile pipeline usable offline.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" || messages[i].Role == "" {
			return strings.TrimSpace(messages[i].Content), nil
		}
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	return strings.TrimSpace(messages[len(messages)-1].Content), nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
