package query

import (
	"hash/fnv"

	"github.com/venus-notebooks/venus/internal/graph"
)

// SourceFile is a content-addressed handle to one notebook source file.
type SourceFile struct {
	Path        string
	ContentHash uint64
}

func HashContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// CompilerSettings is a content-addressed handle to the toolchain
// configuration a compile query was run against.
type CompilerSettings struct {
	CompilerName string
	FastBackend  bool
}

// CellOutputs is a content-addressed handle to one cell's stored output.
type CellOutputs struct {
	CellID     graph.CellID
	OutputHash uint64
}

// Analysis is the cached GraphAnalysis result: both ExecutionOrder and
// ParallelLevels read the same underlying *graph.Graph, computed once
// (spec §4.12's "GraphAnalysis is computed once and shared").
type Analysis struct {
	Graph *graph.Graph
}

func (a *Analysis) ExecutionOrder() []graph.CellID {
	return a.Graph.TopologicalOrder()
}

func (a *Analysis) ParallelLevels() [][]graph.CellID {
	return a.Graph.TopologicalLevels(a.Graph.TopologicalOrder())
}
