// File path: internal/generator/generator.go
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common/telemetry"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow"
)

// Refiner restates free-form logic as line-per-step text before lowering.
// It is optional; without one the compiler works from the raw prompt.
type Refiner interface {
	Refine(ctx context.Context, promptText string) (string, error)
	ProviderName() string
}

// Output is one finished generation: the Python source and the Mermaid
// diagram plus the provenance surfaced next to them.
type Output struct {
	Prompt   string   `json:"prompt"`
	Refined  string   `json:"refined,omitempty"`
	Code     string   `json:"code"`
	Diagram  string   `json:"diagram"`
	Warnings []string `json:"warnings,omitempty"`
	Provider string   `json:"provider"`
	Cached   bool     `json:"cached"`
}

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Generator coordinates refinement, lowering, and the result cache.
type Generator struct {
	refiner Refiner
	cache   *resultCache
}

func New(refiner Refiner, opts Options) *Generator {
	return &Generator{
		refiner: refiner,
		cache:   newResultCache(opts.CacheSize, opts.CacheTTL),
	}
}

// Generate turns a prompt into code and diagram. Refinement failures fall
// back to the raw prompt rather than failing the request; only a prompt the
// compiler itself rejects is an error.
func (g *Generator) Generate(ctx context.Context, promptText string) (*Output, error) {
	logger := common.Logger()
	start := time.Now()
	trimmed := strings.TrimSpace(promptText)
	provider := g.providerName()
	key := cacheKey(provider, trimmed)
	if cached, ok := g.cache.Get(key); ok {
		telemetry.RecordGenerate(true, time.Since(start))
		hit := cached
		hit.Cached = true
		return &hit, nil
	}
	if err := telemetry.CheckMemoryBudget("generator"); err != nil {
		telemetry.RecordGenerateFailure()
		return nil, err
	}
	refined := ""
	if g.refiner != nil && trimmed != "" {
		text, err := g.refiner.Refine(ctx, trimmed)
		if err != nil {
			logger.Warn("generator: refinement failed, compiling raw prompt", "provider", provider, "error", err)
		} else {
			refined = text
		}
	}
	source := trimmed
	if refined != "" {
		source = refined
	}
	res, err := flow.Compile(source)
	if err != nil && refined != "" {
		var empty *flow.EmptyLogicError
		if errors.As(err, &empty) {
			logger.Warn("generator: refined text had no actionable logic, compiling raw prompt", "provider", provider)
			refined = ""
			res, err = flow.Compile(trimmed)
		}
	}
	telemetry.RecordCompile(err == nil)
	if err != nil {
		telemetry.RecordGenerateFailure()
		return nil, err
	}
	warnings := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.Error())
	}
	telemetry.RecordUnmappable(len(warnings))
	out := Output{
		Prompt:   trimmed,
		Refined:  refined,
		Code:     res.Code,
		Diagram:  res.Diagram,
		Warnings: warnings,
		Provider: provider,
	}
	g.cache.Set(key, out)
	telemetry.RecordGenerate(false, time.Since(start))
	logger.Info("generator: prompt compiled",
		"provider", provider,
		"warnings", len(warnings),
		"duration_ms", time.Since(start).Milliseconds())
	result := out
	return &result, nil
}

// PurgeCache drops every memoized generation.
func (g *Generator) PurgeCache() {
	g.cache.Purge()
}

// CacheLen reports how many generations are memoized right now.
func (g *Generator) CacheLen() int {
	return g.cache.Len()
}

func (g *Generator) providerName() string {
	if g.refiner == nil {
		return "none"
	}
	return g.refiner.ProviderName()
}
