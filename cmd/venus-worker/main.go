// Command venus-worker is the isolated subprocess internal/ipc.Worker
// spawns and drives over stdin/stdout. It dlopens one compiled cell's
// dynamic library at a time and invokes its C ABI entry point, recovering
// from any unexpected crash at the dispatch boundary the way the
// generated wrapper itself recovers from a panic inside the cell body.
package main

import (
	"bufio"
	"os"

	"github.com/venus-notebooks/venus/internal/cellcompile"
	"github.com/venus-notebooks/venus/internal/ipc"
)

func main() {
	stdin := bufio.NewReader(os.Stdin)
	stdout := os.Stdout

	var current *loadedCell
	defer func() {
		if current != nil {
			current.close()
		}
	}()

	for {
		kind, payload, err := ipc.ReadMessage(stdin)
		if err != nil {
			// Parent closed the pipe or died; nothing left to serve.
			return
		}

		switch kind {
		case ipc.KindLoadCell:
			var cmd ipc.LoadCell
			if err := ipc.DecodePayload(payload, &cmd); err != nil {
				writeError(stdout, err.Error())
				continue
			}
			if current != nil {
				current.close()
				current = nil
			}
			loaded, err := loadDylib(cmd.DylibPath, cmd.EntrySymbol, cmd.DepCount)
			if err != nil {
				writeError(stdout, err.Error())
				continue
			}
			current = loaded
			_ = ipc.WriteMessage(stdout, ipc.KindLoaded, struct{}{})

		case ipc.KindExecute:
			var cmd ipc.Execute
			if err := ipc.DecodePayload(payload, &cmd); err != nil {
				writeError(stdout, err.Error())
				continue
			}
			if current == nil {
				writeError(stdout, "execute requested before any cell was loaded")
				continue
			}
			handleExecute(stdout, current, cmd)

		case ipc.KindPing:
			_ = ipc.WriteMessage(stdout, ipc.KindPong, struct{}{})

		case ipc.KindShutdown:
			_ = ipc.WriteMessage(stdout, ipc.KindShuttingDown, struct{}{})
			return

		default:
			writeError(stdout, "unrecognized command kind")
		}
	}
}

// handleExecute invokes the loaded cell and translates its return code
// into the matching IPC response kind, recovering from a Go-side panic
// (e.g. a marshalling bug in this process, distinct from a recovered
// panic inside the cell body itself, which the dylib already turns into
// return code -4 before this call ever sees it). Widget context setup
// happens inside the dylib's own generated entry point, against its own
// statically-linked copy of internal/widgets - this process only ever
// forwards the raw widget-values bytes across the cgo call.
func handleExecute(stdout *os.File, cell *loadedCell, cmd ipc.Execute) {
	defer func() {
		if r := recover(); r != nil {
			_ = ipc.WriteMessage(stdout, ipc.KindPanic, ipc.Panic{Message: "worker dispatch panicked"})
		}
	}()

	raw, code, err := cell.invoke(cmd.Inputs, cmd.WidgetValuesJSON)
	if err != nil {
		_ = ipc.WriteMessage(stdout, ipc.KindError, ipc.ExecError{Message: err.Error()})
		return
	}

	switch code {
	case 0:
		display, widgetsJSON, data, err := cellcompile.UnpackRawOutput(raw)
		if err != nil {
			_ = ipc.WriteMessage(stdout, ipc.KindError, ipc.ExecError{Message: err.Error()})
			return
		}
		_ = ipc.WriteMessage(stdout, ipc.KindOutput, ipc.Output{
			Bytes:       cellcompile.RepackForCoordinator(display, data),
			WidgetsJSON: widgetsJSON,
		})
	case -4:
		_ = ipc.WriteMessage(stdout, ipc.KindPanic, ipc.Panic{Message: "cell panicked"})
	default:
		_ = ipc.WriteMessage(stdout, ipc.KindError, ipc.ExecError{Message: "cell returned error code"})
	}
}

func writeError(stdout *os.File, message string) {
	_ = ipc.WriteMessage(stdout, ipc.KindError, ipc.ExecError{Message: message})
}
