package cellcompile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/notebook"
)

func TestEntrySymbol(t *testing.T) {
	require.Equal(t, "venus_cell_my_cell", EntrySymbol("my_cell"))
}

func TestGenerateWrapperIncludesEntryPoint(t *testing.T) {
	cell := notebook.CodeCell{
		Name:       "double",
		SourceCode: "func double(n int) int {\n\treturn n * 2\n}",
		SourceFile: "notebook.go",
		ReturnType: "int",
		Span:       notebook.SourceSpan{StartLine: 10},
		Dependencies: []notebook.Dependency{
			{ParamName: "n", ParamType: "int"},
		},
	}

	source, mappings := GenerateWrapper(cell)
	require.Contains(t, source, "//export venus_cell_double")
	require.Contains(t, source, "func venus_cell_double(")
	require.Contains(t, source, "func double(n int) int {")
	require.NotEmpty(t, mappings)
	require.Equal(t, 10, mappings[0].SourceLine)
}

func TestGenerateWrapperMapsErrorToCellErrorCode(t *testing.T) {
	cell := notebook.CodeCell{
		Name:       "load",
		SourceCode: "func load() (DataFrame, error) {\n\treturn DataFrame{}, errors.New(\"boom\")\n}",
		SourceFile: "notebook.go",
		ReturnType: "(DataFrame, error)",
		Span:       notebook.SourceSpan{StartLine: 20},
	}

	source, _ := GenerateWrapper(cell)
	require.Contains(t, source, "value, err := load()")
	require.Contains(t, source, "if err != nil {")
	require.Contains(t, source, "return -2 // cell returned a non-nil error")
	require.Contains(t, source, "universe.Encode(value)")
}

func TestGenerateWrapperSkipsErrorCheckForPlainReturnType(t *testing.T) {
	cell := notebook.CodeCell{
		Name:       "double",
		SourceCode: "func double(n int) int {\n\treturn n * 2\n}",
		SourceFile: "notebook.go",
		ReturnType: "int",
		Span:       notebook.SourceSpan{StartLine: 10},
		Dependencies: []notebook.Dependency{
			{ParamName: "n", ParamType: "int"},
		},
	}

	source, _ := GenerateWrapper(cell)
	require.NotContains(t, source, "return -2 // cell returned a non-nil error")
	require.Contains(t, source, "universe.Encode(result)")
}

func TestHashSourceDeterministic(t *testing.T) {
	a := HashSource("func foo() {}")
	b := HashSource("func foo() {}")
	require.Equal(t, a, b)

	c := HashSource("func foo() { return 1 }")
	require.NotEqual(t, a, c)
}
