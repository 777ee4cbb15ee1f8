package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

func cell(name string, deps ...string) notebook.CodeCell {
	var d []notebook.Dependency
	for _, dep := range deps {
		d = append(d, notebook.Dependency{ParamName: dep, IsRef: true})
	}
	return notebook.CodeCell{Name: name, Dependencies: d, ReturnType: "i32"}
}

func TestLinearChain(t *testing.T) {
	g, err := Build([]notebook.CodeCell{
		cell("a"),
		cell("b", "a"),
		cell("c", "b"),
	})
	require.NoError(t, err)

	order := g.TopologicalOrder()
	var names []string
	for _, id := range order {
		names = append(names, g.Cell(id).Name)
	}
	require.Equal(t, []string{"a", "b", "c"}, names)

	aID, _ := g.CellID("a")
	invalidated := g.InvalidatedCells(aID)
	require.Len(t, invalidated, 3)
	require.Equal(t, aID, invalidated[0])
}

func TestDiamond(t *testing.T) {
	g, err := Build([]notebook.CodeCell{
		cell("a"),
		cell("b", "a"),
		cell("c", "a"),
		cell("d", "b", "c"),
	})
	require.NoError(t, err)

	levels := g.TopologicalLevels(g.allIDs())
	require.Len(t, levels, 3)
	require.Len(t, levels[0], 1)
	require.Len(t, levels[1], 2)
	require.Len(t, levels[2], 1)

	aID, _ := g.CellID("a")
	require.Equal(t, aID, levels[0][0])
	dID, _ := g.CellID("d")
	require.Equal(t, dID, levels[2][0])
}

func TestCycleRejection(t *testing.T) {
	_, err := Build([]notebook.CodeCell{
		cell("x", "y"),
		cell("y", "x"),
	})
	require.Error(t, err)
	diag, ok := err.(*tfdiags.Diagnostic)
	require.True(t, ok)
	require.Equal(t, tfdiags.CyclicDependency, diag.Kind)
}

func TestMissingDependency(t *testing.T) {
	_, err := Build([]notebook.CodeCell{
		cell("p", "q"),
	})
	require.Error(t, err)
	diag, ok := err.(*tfdiags.Diagnostic)
	require.True(t, ok)
	require.Equal(t, tfdiags.CellNotFound, diag.Kind)
}

func TestDuplicateName(t *testing.T) {
	_, err := Build([]notebook.CodeCell{
		cell("a"),
		cell("a"),
	})
	require.Error(t, err)
}

func TestTopologicalLevelsPartition(t *testing.T) {
	g, err := Build([]notebook.CodeCell{
		cell("a"),
		cell("b", "a"),
		cell("c", "a"),
		cell("d", "b", "c"),
	})
	require.NoError(t, err)

	order := g.TopologicalOrder()
	levels := g.TopologicalLevels(order)

	seen := map[CellID]bool{}
	for _, level := range levels {
		for _, id := range level {
			require.False(t, seen[id])
			seen[id] = true
		}
	}
	require.Len(t, seen, g.Len())
}

func TestSelfLoopIsCyclic(t *testing.T) {
	_, err := Build([]notebook.CodeCell{
		cell("a", "a"),
	})
	require.Error(t, err)
	diag, ok := err.(*tfdiags.Diagnostic)
	require.True(t, ok)
	require.Equal(t, tfdiags.CyclicDependency, diag.Kind)
}
