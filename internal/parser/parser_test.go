package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleCell(t *testing.T) {
	src := `
import "github.com/venus-notebooks/venus/prelude"

//venus:cell
func config() Config {
	return Config{}
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Equal(t, "config", pf.Cells[0].Name)
	require.Empty(t, pf.Cells[0].Dependencies)
	require.Equal(t, "Config", pf.Cells[0].ReturnType)
}

func TestParseCellWithDependencies(t *testing.T) {
	src := `
//venus:cell
func process(config *Config, data *DataFrame) (Result, error) {
	return Result{}, nil
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	c := pf.Cells[0]
	require.Equal(t, "process", c.Name)
	require.Len(t, c.Dependencies, 2)
	require.Equal(t, "config", c.Dependencies[0].ParamName)
	require.Equal(t, "Config", c.Dependencies[0].ParamType)
	require.True(t, c.Dependencies[0].IsRef)
	require.Equal(t, "data", c.Dependencies[1].ParamName)
	require.Equal(t, "DataFrame", c.Dependencies[1].ParamType)
}

func TestParseDocComments(t *testing.T) {
	src := `
// This is a cell
// with multiple lines
// of documentation.
//venus:cell
func documented() int {
	return 42
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Contains(t, pf.Cells[0].DocComment, "This is a cell")
	require.Contains(t, pf.Cells[0].DocComment, "multiple lines")
}

func TestParseMultipleCells(t *testing.T) {
	src := `
//venus:cell
func a() int { return 1 }

func notACell() {}

//venus:cell
func b(a *int) int { return *a + 1 }

//venus:cell
func c(b *int) int { return *b + 1 }
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 3)
	require.Equal(t, "a", pf.Cells[0].Name)
	require.Equal(t, "b", pf.Cells[1].Name)
	require.Equal(t, "c", pf.Cells[2].Name)
	require.Len(t, pf.Definitions, 1)
}

func TestSkipNonCellFunctions(t *testing.T) {
	src := `
func regularFunction() {}

func anotherRegular() int { return 0 }

// some other comment, not the cell directive
func withOtherComment() {}

//venus:cell
func actualCell() int { return 42 }
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Equal(t, "actualCell", pf.Cells[0].Name)
}

func TestPointerParameter(t *testing.T) {
	src := `
//venus:cell
func mutator(data *[]int) {
	*data = append(*data, 1)
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Len(t, pf.Cells[0].Dependencies, 1)
	require.True(t, pf.Cells[0].Dependencies[0].IsRef)
	require.True(t, pf.Cells[0].Dependencies[0].IsMut)
	require.Equal(t, "[]int", pf.Cells[0].Dependencies[0].ParamType)
}

func TestSkipCtxParameter(t *testing.T) {
	src := `
//venus:cell
func withContext(ctx *CellContext, data *DataFrame) (Result, error) {
	return Result{}, nil
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Len(t, pf.Cells[0].Dependencies, 1)
	require.Equal(t, "data", pf.Cells[0].Dependencies[0].ParamName)
}

func TestErrorableReturnType(t *testing.T) {
	src := `
//venus:cell
func genericCell() (DataFrame, error) {
	return DataFrame{}, nil
}
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Cells, 1)
	require.Contains(t, pf.Cells[0].ReturnType, "error")
}

func TestDefinitionKindsClassified(t *testing.T) {
	src := `
type Config struct {
	Value int
}

type Mode int

type Alias = float64

func (c Config) New() Config { return Config{Value: 0} }
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Definitions, 4)
	require.Equal(t, "struct", string(pf.Definitions[0].Kind))
	require.Equal(t, "enum", string(pf.Definitions[1].Kind))
	require.Equal(t, "type_alias", string(pf.Definitions[2].Kind))
	require.Equal(t, "impl", string(pf.Definitions[3].Kind))
}

func TestParseDependenciesBlock(t *testing.T) {
	src := `//! # My Notebook
//!
//! ` + "```cargo" + `
//! [dependencies]
//! serde = "1.0"
//! tokio = { version = "1", features = ["full"] }
//! ` + "```" + `

//venus:cell
func a() int { return 1 }
`
	pf, err := Parse("test.go", src)
	require.NoError(t, err)
	require.Len(t, pf.Dependencies, 2)
	require.Equal(t, "serde", pf.Dependencies[0].Name)
	require.Equal(t, "1.0", pf.Dependencies[0].Version)
	require.Equal(t, "tokio", pf.Dependencies[1].Name)
	require.Equal(t, "1", pf.Dependencies[1].Version)
	require.Equal(t, []string{"full"}, pf.Dependencies[1].Features)
}
