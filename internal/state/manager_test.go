package state

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/schema"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(afero.NewMemMapFs(), "/state", nil)
	require.NoError(t, err)
	return m
}

func TestStoreAndGetOutput(t *testing.T) {
	m := newTestManager(t)
	id := graph.CellID(1)
	m.StoreOutput(id, notebook.BoxedOutput{Bytes: []byte{1, 2, 3}, DisplayText: "3"})

	out, ok := m.GetOutput(id)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, out.Bytes)
	require.True(t, m.HasOutput(id))
}

func TestInvalidateDropsOutput(t *testing.T) {
	m := newTestManager(t)
	id := graph.CellID(1)
	m.StoreOutput(id, notebook.BoxedOutput{Bytes: []byte{9}})
	m.Invalidate(id)
	require.False(t, m.HasOutput(id))
}

func TestOnCellModifiedCascade(t *testing.T) {
	m := newTestManager(t)
	a, b, c := graph.CellID(1), graph.CellID(2), graph.CellID(3)
	m.StoreOutput(a, notebook.BoxedOutput{Bytes: []byte{1}})
	m.StoreOutput(b, notebook.BoxedOutput{Bytes: []byte{2}})
	m.StoreOutput(c, notebook.BoxedOutput{Bytes: []byte{3}})

	invalidated := m.OnCellModified(a, []graph.CellID{b, c})
	require.ElementsMatch(t, []graph.CellID{a, b, c}, invalidated)
	require.False(t, m.HasOutput(a))
	require.False(t, m.HasOutput(b))
	require.False(t, m.HasOutput(c))
}

func TestUpdateFingerprintInvalidatesOnBreakingChange(t *testing.T) {
	m := newTestManager(t)
	id := graph.CellID(1)
	m.StoreOutput(id, notebook.BoxedOutput{Bytes: []byte{1}})

	old := schema.New("Point", []schema.FieldSpec{{Name: "x", Type: "f64"}})
	require.Equal(t, schema.ChangeNone, m.UpdateFingerprint(id, old).Kind)

	newFP := schema.New("Point", []schema.FieldSpec{{Name: "y", Type: "f64"}})
	change := m.UpdateFingerprint(id, newFP)
	require.True(t, change.IsBreaking())
	require.False(t, m.HasOutput(id))
}

func TestFlushAndRestore(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := New(fs, "/state", nil)
	require.NoError(t, err)

	id := graph.CellID(7)
	m.StoreOutput(id, notebook.BoxedOutput{Bytes: []byte{1, 2}, TypeName: "i32", DisplayText: "258"})
	require.NoError(t, m.Flush())

	m2, err := New(fs, "/state", nil)
	require.NoError(t, err)
	count, err := m2.Restore()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	out, ok := m2.GetOutput(id)
	require.True(t, ok)
	require.Equal(t, "i32", out.TypeName)
}
