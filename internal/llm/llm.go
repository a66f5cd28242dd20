// File path: internal/llm/llm.go
package llm

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// NewProvider picks the refinement backend from the environment. An explicit
// FLOWGEN_PROVIDER wins, then the first configured API key, then the local
// echo provider so the service never fails to start.
func NewProvider(ctx context.Context) Provider {
	logger := common.Logger()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FLOWGEN_PROVIDER"))) {
	case "gemini":
		if p := newGemini(ctx); p != nil {
			return p
		}
		logger.Warn("llm: forced gemini provider unavailable; falling back to local")
		return providers.NewLocalProvider()
	case "openai":
		if p := newOpenAI(); p != nil {
			return p
		}
		logger.Warn("llm: forced openai provider unavailable; falling back to local")
		return providers.NewLocalProvider()
	case "local":
		logger.Info("llm: local provider selected")
		return providers.NewLocalProvider()
	}
	if p := newGemini(ctx); p != nil {
		return p
	}
	if p := newOpenAI(); p != nil {
		return p
	}
	logger.Warn("llm: no provider API key set; falling back to local provider")
	return providers.NewLocalProvider()
}

func newGemini(ctx context.Context) Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	if apiKey == "" {
		return nil
	}
	model := strings.TrimSpace(os.Getenv("FLOWGEN_GEMINI_MODEL"))
	provider, err := providers.NewGeminiProvider(ctx, apiKey, model)
	if err != nil {
		logger.Warn("llm: gemini client unavailable", "error", err)
		return nil
	}
	logger.Info("llm: Gemini provider selected")
	return provider
}

func newOpenAI() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
		} else {
			logger.Info("llm: configuring OpenAI client with custom HTTP timeout", "timeout", timeout)
			opts = append(opts, option.WithRequestTimeout(timeout))
		}
	}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client)
}

// NormalizeMessages lowercases roles and rejects empty batches before they
// reach a provider.
func NormalizeMessages(messages []Message) ([]Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages provided")
	}
	for i := range messages {
		messages[i].Role = strings.ToLower(messages[i].Role)
	}
	return messages, nil
}
