package ipc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadMessageRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	cmd := LoadCell{DylibPath: "/tmp/cell.so", DepCount: 2, EntrySymbol: "venus_cell_my_cell", Name: "my_cell"}
	require.NoError(t, WriteMessage(&buf, KindLoadCell, cmd))

	kind, payload, err := ReadMessage(&buf)
	require.NoError(t, err)
	require.Equal(t, KindLoadCell, kind)

	var decoded LoadCell
	require.NoError(t, DecodePayload(payload, &decoded))
	require.Equal(t, cmd, decoded)
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	lenBuf := make([]byte, 4)
	lenBuf[3] = 0xFF // absurdly large length prefix, little-endian high byte
	buf.Write(lenBuf)

	_, _, err := ReadMessage(&buf)
	require.Error(t, err)
}

func TestOutputRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	out := Output{Bytes: []byte{1, 2, 3}, WidgetsJSON: []byte(`[]`)}
	require.NoError(t, WriteMessage(&buf, KindOutput, out))

	kind, payload, err := ReadMessage(&buf)
	require.NoError(t, err)
	require.Equal(t, KindOutput, kind)

	var decoded Output
	require.NoError(t, DecodePayload(payload, &decoded))
	require.Equal(t, out, decoded)
}
