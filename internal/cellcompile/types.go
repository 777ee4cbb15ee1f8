package cellcompile

import "github.com/venus-notebooks/venus/internal/graph"

// CompiledCell is the artifact a successful compile produces.
type CompiledCell struct {
	CellID        graph.CellID
	Name          string
	DylibPath     string
	EntrySymbol   string
	SourceHash    uint64
	DepsHash      uint64
	CompileTimeMs int64
}

// ResultKind discriminates a CompilationResult's three shapes.
type ResultKind string

const (
	ResultCached  ResultKind = "cached"
	ResultSuccess ResultKind = "success"
	ResultFailed  ResultKind = "failed"
)

// Result is the outcome of one Compile call.
type Result struct {
	Kind     ResultKind
	Compiled *CompiledCell
	CellID   graph.CellID
	Errors   []Diagnostic
}

// Diagnostic is one compiler error or warning, mapped back from the
// generated wrapper's line numbers to the original source.
type Diagnostic struct {
	Message    string
	SourceLine int
	Column     int
	Severity   string
}

// LineMapping records one correspondence between a line in the
// generated wrapper and the originating line in the cell's source file,
// consulted by diagnostics.go when remapping compiler output.
type LineMapping struct {
	GeneratedLine int
	SourceLine    int
}
