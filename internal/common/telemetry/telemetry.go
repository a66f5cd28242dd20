// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

// MemoryLimitError is returned by CheckMemoryBudget when the configured
// process budget is exceeded. Handlers shed load instead of compiling.
type MemoryLimitError struct {
	Component string
	Usage     uint64
	Limit     uint64
}

func (e MemoryLimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded for %s: %d > %d", e.Component, e.Usage, e.Limit)
}

var (
	initOnce sync.Once

	generateTotal     *expvar.Int
	generateFailures  *expvar.Int
	generateCacheHits *expvar.Int
	generateLatencyMS *expvar.Int

	refineTotal     *expvar.Map
	refineLatencyMS *expvar.Map

	compileTotal     *expvar.Int
	compileFailures  *expvar.Int
	unmappableTotal  *expvar.Int
	memoryLimitBytes uint64
	memoryLimitVar   *expvar.Int
	memoryUsageVar   *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		generateTotal = expvar.NewInt("flowgen_generate_total")
		generateFailures = expvar.NewInt("flowgen_generate_failures")
		generateCacheHits = expvar.NewInt("flowgen_generate_cache_hits")
		generateLatencyMS = expvar.NewInt("flowgen_generate_latency_ms")

		refineTotal = expvar.NewMap("flowgen_refine_total")
		refineLatencyMS = expvar.NewMap("flowgen_refine_latency_ms")

		compileTotal = expvar.NewInt("flowgen_compile_total")
		compileFailures = expvar.NewInt("flowgen_compile_failures")
		unmappableTotal = expvar.NewInt("flowgen_unmappable_steps_total")

		memoryLimitVar = expvar.NewInt("flowgen_memory_limit_bytes")
		memoryUsageVar = expvar.NewInt("flowgen_memory_usage_bytes")

		memoryLimitBytes = loadMemoryLimit()
		memoryLimitVar.Set(int64(memoryLimitBytes))
	})
}

func loadMemoryLimit() uint64 {
	if limit := strings.TrimSpace(os.Getenv("FLOWGEN_MEMORY_LIMIT_BYTES")); limit != "" {
		if value, err := strconv.ParseUint(limit, 10, 64); err == nil {
			return value
		}
	}
	if limitMB := strings.TrimSpace(os.Getenv("FLOWGEN_MEMORY_LIMIT_MB")); limitMB != "" {
		if value, err := strconv.ParseUint(limitMB, 10, 64); err == nil {
			return value * 1024 * 1024
		}
	}
	return 0
}

// StartSpan opens a debug-logged span and returns its finish func.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...any)) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...any) {
		if sp == nil {
			return
		}
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]any{"span", name, "dur", duration}, attrs...)...)
	}
}

// RecordGenerate counts one generation request end to end.
func RecordGenerate(cacheHit bool, duration time.Duration) {
	ensureInit()
	generateTotal.Add(1)
	if cacheHit {
		generateCacheHits.Add(1)
	}
	if duration > 0 {
		generateLatencyMS.Add(duration.Milliseconds())
	}
}

// RecordGenerateFailure counts a generation request that returned an error.
func RecordGenerateFailure() {
	ensureInit()
	generateFailures.Add(1)
}

// RecordRefine counts one prompt refinement call keyed by provider name.
func RecordRefine(provider string, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(provider))
	if key == "" {
		key = "unknown"
	}
	refineTotal.Add(key, 1)
	if duration > 0 {
		refineLatencyMS.Add(key, duration.Milliseconds())
	}
}

// RecordCompile counts one lowering pass and its outcome.
func RecordCompile(ok bool) {
	ensureInit()
	compileTotal.Add(1)
	if !ok {
		compileFailures.Add(1)
	}
}

// RecordUnmappable counts placeholder steps surfaced by the code emitter.
func RecordUnmappable(count int) {
	ensureInit()
	if count > 0 {
		unmappableTotal.Add(int64(count))
	}
}

// CheckMemoryBudget compares current heap usage against the configured
// limit. A zero limit disables the guard but still refreshes the gauge.
func CheckMemoryBudget(component string) error {
	ensureInit()
	if memoryLimitBytes == 0 {
		updateMemoryUsage()
		return nil
	}
	usage := updateMemoryUsage()
	if usage > memoryLimitBytes {
		err := MemoryLimitError{Component: component, Usage: usage, Limit: memoryLimitBytes}
		common.Logger().Warn("telemetry: memory guard tripped", "component", component, "usage", usage, "limit", memoryLimitBytes)
		return err
	}
	return nil
}

func updateMemoryUsage() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usage := stats.Alloc
	memoryUsageVar.Set(int64(usage))
	return usage
}

// SpanDuration reports elapsed time for the span carried by ctx, if any.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}
