// Package executor runs compiled cells in worker subprocesses, tracking
// each cell's lifecycle and routing execution progress to callbacks.
// Grounded on original_source/crates/venus-core/src/execute/process.rs.
package executor

// CellState is the observable lifecycle of one registered cell.
// Compiling is owned by the compiler, not the executor (spec §4.9).
type CellState int

const (
	Idle CellState = iota
	Registered
	Running
	Success
	ExecError
	Aborted
)

func (s CellState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Registered:
		return "registered"
	case Running:
		return "running"
	case Success:
		return "success"
	case ExecError:
		return "error"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
