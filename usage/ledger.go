// Package usage tracks model invocations and caches expensive derived
// statistics. The ledger is an explicitly constructed service, not
// module-level mutable state, so tests can instantiate it in isolation.
package usage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/plotdeck/plotdeck/llm"
)

// DefaultMaxRecords bounds the in-memory request log.
const DefaultMaxRecords = 1000

// Record is one model invocation, success or failure.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Endpoint     string    `json:"endpoint"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	TotalTokens  int       `json:"totalTokens"`
	Model        string    `json:"model"`
	LatencyMs    int64     `json:"latencyMs"`
	Error        string    `json:"error,omitempty"`
}

// TokenCounts aggregates token consumption for one grouping key.
type TokenCounts struct {
	Requests     int `json:"requests"`
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

func (t *TokenCounts) add(in, out int) {
	t.Requests++
	t.InputTokens += in
	t.OutputTokens += out
	t.TotalTokens += in + out
}

// Stats is the aggregate view over the request log.
type Stats struct {
	TotalRequests     int                    `json:"totalRequests"`
	FailedRequests    int                    `json:"failedRequests"`
	TotalInputTokens  int                    `json:"totalInputTokens"`
	TotalOutputTokens int                    `json:"totalOutputTokens"`
	TotalTokens       int                    `json:"totalTokens"`
	AvgLatencyMs      float64                `json:"avgLatencyMs"`
	ByModel           map[string]TokenCounts `json:"byModel"`
}

// CacheStats reports statistics-cache effectiveness.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Clear targets.
const (
	ClearUsage = "usage"
	ClearCache = "cache"
	ClearAll   = "all"
)

// Publisher mirrors appended records to an external sink. Failures are
// logged, never propagated. Publishing is observability, not bookkeeping.
type Publisher interface {
	Publish(rec Record) error
}

// Ledger is the process-wide usage log plus the derived-statistics cache.
// The log is append-only, so appenders only serialize the append; the
// cache holds a per-key critical section so concurrent requests for the
// same key compute the value once.
type Ledger struct {
	mu         sync.Mutex
	records    []Record
	maxRecords int

	cacheMu  sync.Mutex
	cache    map[string]any
	keyLocks map[string]*sync.Mutex
	hits     int64
	misses   int64

	publisher Publisher
	logger    *slog.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithMaxRecords bounds the request log; older records are dropped.
func WithMaxRecords(n int) LedgerOption {
	return func(l *Ledger) {
		l.maxRecords = n
	}
}

// WithPublisher mirrors appended records to the given sink.
func WithPublisher(p Publisher) LedgerOption {
	return func(l *Ledger) {
		l.publisher = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		maxRecords: DefaultMaxRecords,
		cache:      make(map[string]any),
		keyLocks:   make(map[string]*sync.Mutex),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds one record to the log.
func (l *Ledger) Append(rec Record) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	if len(l.records) > l.maxRecords {
		l.records = l.records[len(l.records)-l.maxRecords:]
	}
	l.mu.Unlock()

	if l.publisher != nil {
		if err := l.publisher.Publish(rec); err != nil {
			l.logger.Warn("Failed to publish usage record",
				"endpoint", rec.Endpoint,
				"model", rec.Model,
				"error", err)
		}
	}
}

// RecordCall implements llm.Recorder.
func (l *Ledger) RecordCall(endpoint, model string, usage llm.TokenUsage, latency time.Duration, callErr error) {
	rec := Record{
		Timestamp:    time.Now().UTC(),
		Endpoint:     endpoint,
		Model:        model,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		TotalTokens:  usage.TotalTokens,
		LatencyMs:    latency.Milliseconds(),
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	l.Append(rec)
}

// Recent returns up to n records, newest first.
func (l *Ledger) Recent(n int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Stats aggregates the request log.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{ByModel: make(map[string]TokenCounts)}
	var totalLatency int64
	for _, rec := range l.records {
		stats.TotalRequests++
		if rec.Error != "" {
			stats.FailedRequests++
		}
		stats.TotalInputTokens += rec.InputTokens
		stats.TotalOutputTokens += rec.OutputTokens
		stats.TotalTokens += rec.TotalTokens
		totalLatency += rec.LatencyMs

		counts := stats.ByModel[rec.Model]
		counts.add(rec.InputTokens, rec.OutputTokens)
		stats.ByModel[rec.Model] = counts
	}
	if stats.TotalRequests > 0 {
		stats.AvgLatencyMs = float64(totalLatency) / float64(stats.TotalRequests)
	}
	return stats
}

// CacheKey derives a cache key from a content hash of the underlying data
// plus a logical statistic name. Identical data and name always map to
// the same key.
func CacheKey(name string, data []byte) string {
	sum := sha256.Sum256(data)
	return name + ":" + hex.EncodeToString(sum[:8])
}

// CacheGetOrCompute returns the cached value for key, computing and
// storing it on miss. Concurrent callers for the same key serialize on a
// per-key lock so the computation runs once; callers for different keys
// do not block each other.
func (l *Ledger) CacheGetOrCompute(key string, compute func() (any, error)) (any, error) {
	l.cacheMu.Lock()
	if v, ok := l.cache[key]; ok {
		l.hits++
		l.cacheMu.Unlock()
		return v, nil
	}
	keyLock, ok := l.keyLocks[key]
	if !ok {
		keyLock = &sync.Mutex{}
		l.keyLocks[key] = keyLock
	}
	l.cacheMu.Unlock()

	keyLock.Lock()
	defer keyLock.Unlock()

	// Re-check under the key lock: another caller may have computed the
	// value while we waited.
	l.cacheMu.Lock()
	if v, ok := l.cache[key]; ok {
		l.hits++
		l.cacheMu.Unlock()
		return v, nil
	}
	l.misses++
	l.cacheMu.Unlock()

	v, err := compute()

	// The key lock exists only to serialize the in-flight computation;
	// drop it once the outcome is settled so the map stays bounded by the
	// number of concurrent computations, not by distinct keys ever seen.
	l.cacheMu.Lock()
	if err == nil {
		l.cache[key] = v
	}
	delete(l.keyLocks, key)
	l.cacheMu.Unlock()

	if err != nil {
		return nil, err
	}
	return v, nil
}

// CacheGet returns the cached value without computing.
func (l *Ledger) CacheGet(key string) (any, bool) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	v, ok := l.cache[key]
	if ok {
		l.hits++
	} else {
		l.misses++
	}
	return v, ok
}

// CacheStats reports cache effectiveness counters.
func (l *Ledger) CacheStats() CacheStats {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	return CacheStats{
		Entries: len(l.cache),
		Hits:    l.hits,
		Misses:  l.misses,
	}
}

// Clear resets the scoped state: the request log ("usage"), the
// statistics cache ("cache"), or both ("all"). Any other target is an
// error.
func (l *Ledger) Clear(target string) error {
	switch target {
	case ClearUsage:
		l.clearRecords()
	case ClearCache:
		l.clearCache()
	case ClearAll:
		l.clearRecords()
		l.clearCache()
	default:
		return fmt.Errorf("invalid clear target %q: must be %q, %q or %q", target, ClearUsage, ClearCache, ClearAll)
	}
	return nil
}

func (l *Ledger) clearRecords() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

func (l *Ledger) clearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache = make(map[string]any)
	l.keyLocks = make(map[string]*sync.Mutex)
	l.hits = 0
	l.misses = 0
}
