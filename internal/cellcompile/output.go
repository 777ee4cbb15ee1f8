package cellcompile

import (
	"encoding/binary"
	"fmt"
)

// UnpackRawOutput splits the raw byte buffer a compiled cell's entry
// point hands back across the FFI boundary into its three parts, mirroring
// the layout writeSupportFuncs generates in packOutput: display_len(8 LE)
// | display | widgets_len(8 LE) | widgets | data. The worker binary calls
// this right after invoking the entry point, forwarding widgetsJSON to the
// coordinator separately from the display+data bytes (internal/ipc.Output).
func UnpackRawOutput(raw []byte) (display string, widgetsJSON []byte, data []byte, err error) {
	if len(raw) < 8 {
		return "", nil, nil, fmt.Errorf("cellcompile: raw output too short for display length header")
	}
	displayLen := binary.LittleEndian.Uint64(raw[:8])
	pos := uint64(8)
	if pos+displayLen > uint64(len(raw)) {
		return "", nil, nil, fmt.Errorf("cellcompile: raw output truncated reading display text")
	}
	display = string(raw[pos : pos+displayLen])
	pos += displayLen

	if pos+8 > uint64(len(raw)) {
		return "", nil, nil, fmt.Errorf("cellcompile: raw output too short for widgets length header")
	}
	widgetsLen := binary.LittleEndian.Uint64(raw[pos : pos+8])
	pos += 8
	if pos+widgetsLen > uint64(len(raw)) {
		return "", nil, nil, fmt.Errorf("cellcompile: raw output truncated reading widgets block")
	}
	widgetsJSON = raw[pos : pos+widgetsLen]
	pos += widgetsLen

	data = raw[pos:]
	return display, widgetsJSON, data, nil
}

// RepackForCoordinator lays out the executor-facing format
// (display_len(8 LE) | display | data, no widgets block), matching
// internal/executor/output.go's parseOutputBytes.
func RepackForCoordinator(display string, data []byte) []byte {
	displayBytes := []byte(display)
	out := make([]byte, 8+len(displayBytes)+len(data))
	binary.LittleEndian.PutUint64(out[:8], uint64(len(displayBytes)))
	copy(out[8:], displayBytes)
	copy(out[8+len(displayBytes):], data)
	return out
}
