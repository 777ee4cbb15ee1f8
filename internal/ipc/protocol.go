// Package ipc implements the length-prefixed message protocol between
// the coordinator process and its worker subprocesses, plus the worker
// pool that manages their lifecycle. Grounded on
// original_source/crates/venus-core/src/ipc/protocol.rs.
package ipc

// Kind discriminates the tagged envelope that stands in for the
// original's rkyv enum (msgpack has no native tagged union - SPEC_FULL.md
// §2.7).
type Kind byte

const (
	KindLoadCell Kind = iota + 1
	KindExecute
	KindShutdown
	KindPing

	KindLoaded
	KindOutput
	KindError
	KindPanic
	KindPong
	KindShuttingDown
)

// LoadCell instructs a worker to dlopen a compiled cell's dynamic
// library and resolve its entry symbol.
type LoadCell struct {
	DylibPath   string
	DepCount    int
	EntrySymbol string
	Name        string
}

// Execute instructs a worker to invoke the loaded cell with the given
// serialized dependency inputs and widget state.
type Execute struct {
	Inputs           [][]byte
	WidgetValuesJSON []byte
}

// Output is a successful Execute result.
type Output struct {
	Bytes       []byte
	WidgetsJSON []byte
}

// ExecError reports a non-panic execution failure.
type ExecError struct {
	Message string
}

// Panic reports that the worker recovered from a panic during dispatch.
type Panic struct {
	Message string
}
