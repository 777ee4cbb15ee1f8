package executor

import (
	"encoding/binary"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// parseOutputBytes decodes a worker's Output.Bytes payload:
// display_len (8 bytes, u64 LE) | display_bytes | serialized_data. The
// worker has already stripped the widget block, delivered alongside via
// Output.WidgetsJSON. Grounded on
// original_source/.../execute/process.rs::parse_output_bytes.
func parseOutputBytes(raw []byte, cellName string) (*notebook.BoxedOutput, error) {
	const headerSize = 8
	if len(raw) < headerSize {
		return nil, &tfdiags.Diagnostic{
			Kind:    tfdiags.Execution,
			Message: "cell \"" + cellName + "\" output too short",
		}
	}

	displayLen := binary.LittleEndian.Uint64(raw[:headerSize])
	displayEnd := headerSize + int(displayLen)
	if displayEnd > len(raw) {
		return nil, &tfdiags.Diagnostic{
			Kind:    tfdiags.Execution,
			Message: "cell \"" + cellName + "\" output too short for display data",
		}
	}

	displayText := string(raw[headerSize:displayEnd])
	data := raw[displayEnd:]

	return &notebook.BoxedOutput{
		Bytes:       append([]byte(nil), data...),
		DisplayText: displayText,
		// TypeHash is 0: no type tag crosses the FFI boundary (spec §9).
	}, nil
}
