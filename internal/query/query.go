// Package query implements a coarse memoization layer over the pipeline:
// derived results (parsed cells, the dependency graph, compiled
// artifacts, cell outputs) are computed once per input identity and
// shared across every caller asking for the same key concurrently.
// Generalizes internal/cache.Eval's populate-once-under-lock resource/
// module cache from two hardcoded maps to a generic key space, per
// SPEC_FULL.md §2.12.
package query

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// QueryKind names one of the derived queries memoized by this layer.
type QueryKind string

const (
	ParseCells     QueryKind = "parse_cells"
	CellNames      QueryKind = "cell_names"
	GraphAnalysis  QueryKind = "graph_analysis"
	DependencyHash QueryKind = "dependency_hash"
	CompileCell    QueryKind = "compile_cell"
	CellOutput     QueryKind = "cell_output"
)

// Result wraps a derived value with Ok/Err so callers can distinguish
// "computed and empty" from "computation failed" (spec §4.12).
type Result struct {
	Value any
	Err   error
}

func Ok(v any) Result       { return Result{Value: v} }
func Err(err error) Result  { return Result{Err: err} }
func (r Result) IsOk() bool { return r.Err == nil }

// Engine memoizes derived queries keyed by (QueryKind, input identity).
// Concurrent callers for the same key block on a single computation via
// singleflight rather than duplicating work, matching cache.Eval's
// per-entry mutex but generalized across an open set of query kinds
// instead of two hardcoded maps.
type Engine struct {
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]Result
}

func New() *Engine {
	return &Engine{cache: make(map[string]Result)}
}

// Eval returns the memoized result for (kind, key), computing it via
// compute if not already cached.
func (e *Engine) Eval(kind QueryKind, key string, compute func() Result) Result {
	cacheKey := string(kind) + ":" + key

	e.mu.Lock()
	if r, ok := e.cache[cacheKey]; ok {
		e.mu.Unlock()
		return r
	}
	e.mu.Unlock()

	v, _, _ := e.group.Do(cacheKey, func() (any, error) {
		r := compute()
		e.mu.Lock()
		e.cache[cacheKey] = r
		e.mu.Unlock()
		return r, nil
	})
	return v.(Result)
}

// Evict drops the cached result for (kind, key), forcing recomputation
// on the next Eval.
func (e *Engine) Evict(kind QueryKind, key string) {
	cacheKey := string(kind) + ":" + key
	e.mu.Lock()
	delete(e.cache, cacheKey)
	e.mu.Unlock()
}

// EvictAll drops every cached result of the given kind.
func (e *Engine) EvictAll(kind QueryKind) {
	prefix := string(kind) + ":"
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.cache {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(e.cache, k)
		}
	}
}
