// Package notebook holds the data model shared across the pipeline: the
// parsed cell forms, the external-dependency declaration, and the boxed
// output that flows between cells. These types have no behavior of their
// own beyond what's needed to carry data between packages - the graph,
// parser, compiler, and executor each own the operations over them.
package notebook

// SourceSpan locates a byte range in the original notebook source file by
// line/column, 1-indexed to match compiler diagnostic conventions.
type SourceSpan struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Dependency is one parameter of a code cell's function signature that
// names another cell as its producer.
type Dependency struct {
	// ParamName doubles as the name of the producer cell it resolves to.
	ParamName string
	// ParamType is the textual (unparsed) type of the parameter.
	ParamType string
	IsRef     bool
	IsMut     bool
}

// CodeCell is a top-level function bearing the cell attribute.
type CodeCell struct {
	Name         string
	DisplayName  string
	Dependencies []Dependency
	ReturnType   string
	DocComment   string
	SourceCode   string
	SourceFile   string
	Span         SourceSpan
}

// DefinitionKind classifies a non-executable top-level item.
type DefinitionKind string

const (
	KindImport    DefinitionKind = "import"
	KindStruct    DefinitionKind = "struct"
	KindEnum      DefinitionKind = "enum"
	KindTypeAlias DefinitionKind = "type_alias"
	KindImpl      DefinitionKind = "impl"
	KindHelperFn  DefinitionKind = "helper_fn"
	KindMixed     DefinitionKind = "mixed"
)

// DefinitionCell is lifted verbatim into the universe; it is never
// executed directly.
type DefinitionCell struct {
	Content    string
	Kind       DefinitionKind
	DocComment string
	Span       SourceSpan
}

// ExternalDependency is one entry of the module doc comment's dependency
// table.
type ExternalDependency struct {
	Name      string
	Version   string
	Features  []string
	LocalPath string
}

// ParsedFile is everything the parser extracts from one notebook source
// file.
type ParsedFile struct {
	Cells        []CodeCell
	Definitions  []DefinitionCell
	ModuleDoc    string
	Dependencies []ExternalDependency
}

// BoxedOutput is the unit of data exchanged between cells: a zero-copy
// serialized payload plus enough metadata to validate and render it.
type BoxedOutput struct {
	// Bytes holds the cell's return value, encoded with the msgpack codec
	// (the Go stand-in for the original's zero-copy rkyv runtime - see
	// internal/ipc/codec.go).
	Bytes []byte
	// TypeHash is 0 when the output arrived straight from worker FFI
	// bytes, since no type tag crosses that boundary (spec §9, kept as a
	// documented limitation rather than fixed).
	TypeHash uint64
	TypeName string
	// DisplayText is the cell's debug-formatted textual rendering.
	DisplayText string
}
