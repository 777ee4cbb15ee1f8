package executor

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/cellcompile"
	"github.com/venus-notebooks/venus/internal/graph"
)

func TestCheckArityAcceptsZeroThroughEight(t *testing.T) {
	for n := 0; n <= maxDispatchArity; n++ {
		require.NoError(t, checkArity(n))
	}
}

func TestCheckArityRejectsBeyondEight(t *testing.T) {
	require.Error(t, checkArity(9))
	require.Error(t, checkArity(-1))
}

func TestParseOutputBytesRoundtrip(t *testing.T) {
	display := "42"
	var buf []byte
	lenBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(lenBuf, uint64(len(display)))
	buf = append(buf, lenBuf...)
	buf = append(buf, []byte(display)...)
	buf = append(buf, []byte{1, 2, 3}...)

	out, err := parseOutputBytes(buf, "answer")
	require.NoError(t, err)
	require.Equal(t, "42", out.DisplayText)
	require.Equal(t, []byte{1, 2, 3}, out.Bytes)
	require.Equal(t, uint64(0), out.TypeHash)
}

func TestParseOutputBytesTooShort(t *testing.T) {
	_, err := parseOutputBytes([]byte{1, 2, 3}, "answer")
	require.Error(t, err)
}

func TestRegisterCellIndirectsThroughScratchLoader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dylibs/answer.so", []byte("fake"), 0o644))

	e := New(nil, nil)
	e.SetScratchLoader(cellcompile.NewScratchLoader(fs, "/scratch", time.Hour))

	id := graph.CellID(1)
	e.RegisterCell(CompiledCell{CellID: id, Name: "answer", DylibPath: "/dylibs/answer.so"})

	e.mu.Lock()
	got := e.cells[id].DylibPath
	e.mu.Unlock()
	require.NotEqual(t, "/dylibs/answer.so", got)

	exists, err := afero.Exists(fs, got)
	require.NoError(t, err)
	require.True(t, exists)

	e.UnregisterCell(id)
	e.mu.Lock()
	_, tracked := e.scratchPaths[id]
	e.mu.Unlock()
	require.False(t, tracked)
}

func TestStateStringer(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "registered", Registered.String())
	require.Equal(t, "running", Running.String())
	require.Equal(t, "success", Success.String())
	require.Equal(t, "error", ExecError.String())
	require.Equal(t, "aborted", Aborted.String())
}
