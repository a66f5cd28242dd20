// File path: internal/agent/graph.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langgraphgo/graph"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common/telemetry"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/llm"
)

// refineInstruction steers the provider toward the line-per-step form the
// normalizer parses best. The compiler still accepts raw prompts, so a
// sloppy model response only costs quality, never correctness.
const refineInstruction = `Rewrite the description of program logic below as a plain sequence of imperative steps.
Write one step per line and indent nested steps by two spaces.
Use "if <condition>" and "otherwise" for branches, "while <condition>" for loops, and "stop" or "return <value>" to finish early.
Do not add explanations, numbering, markdown, or code fences.`

// Refiner runs prompts through a single-node message graph that asks the
// configured provider to restate the logic step by step.
type Refiner struct {
	provider llm.Provider
	runnable *graph.Runnable
}

func NewRefiner(provider llm.Provider) (*Refiner, error) {
	r := &Refiner{provider: provider}
	g := graph.NewMessageGraph()
	g.AddNode("refine", r.refineNode)
	g.AddEdge("refine", graph.END)
	g.SetEntryPoint("refine")
	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile refine graph: %w", err)
	}
	r.runnable = runnable
	return r, nil
}

// Refine restates the prompt as one step per line. The returned text is
// fence-stripped and trimmed; an empty result is an error so callers can
// fall back to the raw prompt.
func (r *Refiner) Refine(ctx context.Context, promptText string) (string, error) {
	logger := common.Logger()
	trimmed := strings.TrimSpace(promptText)
	if trimmed == "" {
		return "", fmt.Errorf("empty prompt")
	}
	start := time.Now()
	state := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, refineInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, trimmed),
	}
	spanCtx, finish := telemetry.StartSpan(ctx, "agent.refine")
	status := "ok"
	defer func() {
		finish("provider", r.ProviderName(), "status", status)
	}()
	out, err := r.runnable.Invoke(spanCtx, state)
	if err != nil {
		status = "error"
		return "", fmt.Errorf("refine invoke: %w", err)
	}
	if len(out) == 0 {
		status = "error"
		return "", fmt.Errorf("refine returned no messages")
	}
	refined := StripFences(messageText(out[len(out)-1]))
	if refined == "" {
		status = "error"
		return "", fmt.Errorf("refine returned empty text")
	}
	telemetry.RecordRefine(r.provider.Name(), time.Since(start))
	logger.Debug("agent: prompt refined", "provider", r.provider.Name(), "chars", len(refined))
	return refined, nil
}

// ProviderName reports which backend the refiner is wired to.
func (r *Refiner) ProviderName() string {
	if r.provider == nil {
		return "none"
	}
	return r.provider.Name()
}

// refineNode converts graph state into provider messages and appends the
// provider's answer as the AI turn.
func (r *Refiner) refineNode(ctx context.Context, state []llms.MessageContent) ([]llms.MessageContent, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("no provider configured")
	}
	var messages []llm.Message
	for _, msg := range state {
		text := messageText(msg)
		if text == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: roleFor(msg.Role), Content: text})
	}
	messages, err := llm.NormalizeMessages(messages)
	if err != nil {
		return nil, err
	}
	answer, err := r.provider.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	return append(state, llms.TextParts(llms.ChatMessageTypeAI, answer)), nil
}

func roleFor(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeSystem:
		return "system"
	case llms.ChatMessageTypeAI:
		return "assistant"
	default:
		return "user"
	}
}

func messageText(msg llms.MessageContent) string {
	var b strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims the remainder.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return strings.Trim(strings.TrimSpace(strings.Trim(s, "`")), "\n")
	}
	lines = lines[1:]
	for len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
