package cellcompile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/toolchain"
)

func TestCompileUsesCacheWhenHashesMatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	cell := notebook.CodeCell{Name: "answer", SourceCode: "func answer() int { return 42 }"}
	id := graph.CellID(1)
	sourceHash := HashSource(cell.SourceCode)
	depsHash := uint64(7)

	require.NoError(t, afero.WriteFile(fs, "/dylibs/answer.so", []byte("fake"), 0o644))
	require.NoError(t, saveToCache(fs, "/cache", CompiledCell{
		CellID: id, Name: "answer", DylibPath: "/dylibs/answer.so",
		EntrySymbol: "venus_cell_answer", SourceHash: sourceHash, DepsHash: depsHash,
	}))

	c := NewCompiler(fs, "/work", "/cache", "", toolchain.NewDriver(), nil)
	result := c.Compile(cell, id, depsHash)

	require.Equal(t, ResultCached, result.Kind)
	require.Equal(t, "/dylibs/answer.so", result.Compiled.DylibPath)
}

func TestCompileCacheMissOnSourceChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	cell := notebook.CodeCell{Name: "answer", SourceCode: "func answer() int { return 42 }"}
	id := graph.CellID(1)
	depsHash := uint64(7)

	require.NoError(t, afero.WriteFile(fs, "/dylibs/answer.so", []byte("fake"), 0o644))
	require.NoError(t, saveToCache(fs, "/cache", CompiledCell{
		CellID: id, Name: "answer", DylibPath: "/dylibs/answer.so",
		EntrySymbol: "venus_cell_answer", SourceHash: HashSource("func answer() int { return 41 }"), DepsHash: depsHash,
	}))

	_, ok := checkCache(fs, "/cache", id, HashSource(cell.SourceCode), depsHash)
	require.False(t, ok)
}
