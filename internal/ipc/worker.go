package ipc

import (
	"bufio"
	"io"
	"os/exec"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// Worker owns one subprocess and its stdin/stdout IPC frames. Spawned
// the way internal/command/plugins.go configures plugin subprocesses:
// inherited environment, stderr piped to the structured logger.
type Worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	logger hclog.Logger
	kill   *KillHandle
}

// SpawnWorker starts the worker binary and wires its stdio pipes. On
// Linux the child is killed if the parent dies first
// (SysProcAttr.Pdeathsig), matching the mechanism go-plugin itself uses
// internally. Pdeathsig is set unconditionally; callers end a worker
// explicitly with Shutdown or Kill.
func SpawnWorker(path string, args []string, logger hclog.Logger) (*Worker, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "opening worker stdin", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "opening worker stdout", Cause: err}
	}
	cmd.Stderr = logger.StandardWriter(&hclog.StandardLoggerOptions{})

	if err := cmd.Start(); err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "starting worker process", Cause: err}
	}

	w := &Worker{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		logger: logger.Named("worker").With("pid", cmd.Process.Pid),
		kill:   newKillHandle(cmd.Process),
	}
	return w, nil
}

// KillHandle returns a handle that can be held and invoked from any
// goroutine while this worker is busy.
func (w *Worker) KillHandle() *KillHandle { return w.kill }

func (w *Worker) Pid() int { return w.cmd.Process.Pid }

// LoadCell sends a LoadCell command and waits for Loaded.
func (w *Worker) LoadCell(cmd LoadCell) error {
	if err := WriteMessage(w.stdin, KindLoadCell, cmd); err != nil {
		return err
	}
	kind, payload, err := ReadMessage(w.stdout)
	if err != nil {
		return err
	}
	return expectKind(kind, payload, KindLoaded)
}

// Execute sends an Execute command and returns the output bytes and
// widget definitions JSON, or an error/panic diagnostic.
func (w *Worker) Execute(inputs [][]byte, widgetValuesJSON []byte) ([]byte, []byte, error) {
	cmd := Execute{Inputs: inputs, WidgetValuesJSON: widgetValuesJSON}
	if err := WriteMessage(w.stdin, KindExecute, cmd); err != nil {
		return nil, nil, err
	}
	kind, payload, err := ReadMessage(w.stdout)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case KindOutput:
		var out Output
		if err := DecodePayload(payload, &out); err != nil {
			return nil, nil, err
		}
		return out.Bytes, out.WidgetsJSON, nil
	case KindError:
		var e ExecError
		_ = DecodePayload(payload, &e)
		return nil, nil, &tfdiags.Diagnostic{Kind: tfdiags.Execution, Message: e.Message}
	case KindPanic:
		var p Panic
		_ = DecodePayload(payload, &p)
		return nil, nil, &tfdiags.Diagnostic{Kind: tfdiags.Execution, Message: "worker panicked: " + p.Message}
	default:
		return nil, nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "unexpected response kind during Execute"}
	}
}

// Ping checks liveness; used by the pool before handing a worker back
// out to a new caller.
func (w *Worker) Ping() error {
	if err := WriteMessage(w.stdin, KindPing, struct{}{}); err != nil {
		return err
	}
	kind, payload, err := ReadMessage(w.stdout)
	if err != nil {
		return err
	}
	return expectKind(kind, payload, KindPong)
}

// Shutdown asks the worker to exit cleanly, waiting for acknowledgement.
func (w *Worker) Shutdown() error {
	if err := WriteMessage(w.stdin, KindShutdown, struct{}{}); err != nil {
		return err
	}
	kind, payload, err := ReadMessage(w.stdout)
	if err == nil {
		_ = expectKind(kind, payload, KindShuttingDown)
	}
	_ = w.stdin.Close()
	return w.cmd.Wait()
}

// Kill forcibly terminates the worker process.
func (w *Worker) Kill() error {
	return w.kill.Kill()
}

func expectKind(got Kind, payload []byte, want Kind) error {
	if got == want {
		return nil
	}
	if got == KindError {
		var e ExecError
		_ = DecodePayload(payload, &e)
		return &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: e.Message}
	}
	return &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "unexpected IPC response kind"}
}
