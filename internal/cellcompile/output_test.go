package cellcompile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackRawOutputRoundtripsWithWrapperFormat(t *testing.T) {
	raw := rawOutputFixture(t, "42", []byte(`[{"id":"x"}]`), []byte{9, 9, 9})

	display, widgetsJSON, data, err := UnpackRawOutput(raw)
	require.NoError(t, err)
	require.Equal(t, "42", display)
	require.Equal(t, []byte(`[{"id":"x"}]`), widgetsJSON)
	require.Equal(t, []byte{9, 9, 9}, data)
}

func TestUnpackRawOutputRejectsTruncated(t *testing.T) {
	_, _, _, err := UnpackRawOutput([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestRepackForCoordinatorMatchesExecutorFormat(t *testing.T) {
	out := RepackForCoordinator("hello", []byte{1, 2, 3})
	require.Equal(t, uint64(5), leUint64(out[:8]))
	require.Equal(t, "hello", string(out[8:13]))
	require.Equal(t, []byte{1, 2, 3}, out[13:])
}

// rawOutputFixture builds a buffer in packOutput's generated layout:
// display_len | display | widgets_len | widgets | data.
func rawOutputFixture(t *testing.T, display string, widgetsJSON, data []byte) []byte {
	t.Helper()
	putLen := func(n int) []byte {
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(uint64(n) >> (8 * i))
		}
		return b
	}
	var out []byte
	out = append(out, putLen(len(display))...)
	out = append(out, []byte(display)...)
	out = append(out, putLen(len(widgetsJSON))...)
	out = append(out, widgetsJSON...)
	out = append(out, data...)
	return out
}

func leUint64(b []byte) uint64 {
	var n uint64
	for i := 0; i < 8; i++ {
		n |= uint64(b[i]) << (8 * i)
	}
	return n
}
