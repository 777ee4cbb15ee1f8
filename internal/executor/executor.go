package executor

import (
	"context"
	"sync"
	"time"

	"github.com/venus-notebooks/venus/internal/cellcompile"
	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/ipc"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/state"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// Callback receives execution progress notifications. Implementations
// must be safe to call from any worker-driving goroutine (spec §4.9).
type Callback interface {
	OnCellStarted(id graph.CellID, name string)
	OnCellCompleted(id graph.CellID, name string)
	OnCellError(id graph.CellID, name string, err error)
}

// CompiledCell is what the executor needs to dispatch a worker load, not
// the loaded library itself - workers load the dylib, not the executor.
type CompiledCell struct {
	CellID      graph.CellID
	Name        string
	DylibPath   string
	EntrySymbol string
	DepCount    int
	// ReturnTypeHash identifies the cell's declared output type, checked
	// against a dependent's cached output before it's trusted as an input
	// (spec §4.10's type-coherence read, internal/state.Manager.GetOutputTyped).
	ReturnTypeHash uint64
}

// Executor runs compiled cells in isolated worker processes, offering
// true interruption by killing the worker rather than relying on
// cooperative cancellation checks.
type Executor struct {
	pool  *ipc.Pool
	state *state.Manager

	mu       sync.Mutex
	cells    map[graph.CellID]CompiledCell
	states   map[graph.CellID]CellState
	callback Callback

	// scratch indirects every dylib handed to a worker through a
	// UUID-named temp copy (spec.md "Resource lifetimes"), so
	// recompiling a cell while a prior version is still loaded by a
	// live worker never fails even on platforms that lock open dylibs.
	scratch      *cellcompile.ScratchLoader
	scratchPaths map[graph.CellID]string

	abortMu  sync.Mutex
	aborted  bool
	current  *ipc.KillHandle
}

// New creates an executor backed by the given worker pool and state
// manager.
func New(pool *ipc.Pool, stateManager *state.Manager) *Executor {
	return &Executor{
		pool:         pool,
		state:        stateManager,
		cells:        make(map[graph.CellID]CompiledCell),
		states:       make(map[graph.CellID]CellState),
		scratchPaths: make(map[graph.CellID]string),
	}
}

// SetScratchLoader enables UUID-copy indirection for every subsequently
// registered cell. Without one, RegisterCell hands the compiled DylibPath
// to workers directly.
func (e *Executor) SetScratchLoader(s *cellcompile.ScratchLoader) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scratch = s
}

func (e *Executor) SetCallback(cb Callback) { e.callback = cb }

// RegisterCell records a compiled cell for execution without loading its
// dylib - the worker process loads it lazily on first Execute.
func (e *Executor) RegisterCell(cc CompiledCell) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scratch != nil {
		if copyPath, err := e.scratch.LoadCopy(cc.DylibPath); err == nil {
			e.scratchPaths[cc.CellID] = copyPath
			cc.DylibPath = copyPath
		}
	}

	e.cells[cc.CellID] = cc
	e.states[cc.CellID] = Registered
}

func (e *Executor) UnregisterCell(id graph.CellID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scratch != nil {
		if copyPath, ok := e.scratchPaths[id]; ok {
			e.scratch.Release(copyPath)
			delete(e.scratchPaths, id)
		}
	}
	delete(e.cells, id)
	delete(e.states, id)
}

func (e *Executor) IsRegistered(id graph.CellID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.cells[id]
	return ok
}

func (e *Executor) State(id graph.CellID) CellState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[id]; ok {
		return s
	}
	return Idle
}

// Abort signals abort; any in-flight execute_cell observing it returns
// tfdiags.ErrAborted, and it kills whatever worker is currently executing.
// A subsequent ExecuteCell call resets the abort state (spec §4.9).
func (e *Executor) Abort() {
	e.abortMu.Lock()
	e.aborted = true
	current := e.current
	e.abortMu.Unlock()
	if current != nil {
		_ = current.Kill()
	}
}

func (e *Executor) isAborted() bool {
	e.abortMu.Lock()
	defer e.abortMu.Unlock()
	return e.aborted
}

// KillHandle returns a thread-safe handle that kills whatever cell is
// currently executing, a no-op if none is (SPEC_FULL.md §3).
func (e *Executor) KillHandle() *KillHandle {
	return &KillHandle{exec: e}
}

// KillHandle is the clonable cross-goroutine handle, grounded on
// ExecutorKillHandle from original_source/.../process.rs.
type KillHandle struct {
	exec *Executor
}

func (k *KillHandle) Kill() {
	k.exec.Abort()
}

// ExecuteCell runs id against the given inputs, returning the output and
// any widget definitions produced.
func (e *Executor) ExecuteCell(id graph.CellID, inputs []*notebook.BoxedOutput, widgetValuesJSON []byte) (*notebook.BoxedOutput, []byte, error) {
	e.abortMu.Lock()
	e.aborted = false
	e.abortMu.Unlock()

	if e.isAborted() {
		return nil, nil, tfdiags.ErrAborted
	}

	e.mu.Lock()
	cc, ok := e.cells[id]
	e.mu.Unlock()
	if !ok {
		return nil, nil, (&tfdiags.Diagnostic{Kind: tfdiags.CellNotFound, Message: "cell not registered"}).WithCell(int(id))
	}

	if err := checkArity(cc.DepCount); err != nil {
		return nil, nil, err
	}

	e.setState(id, Running)
	if e.callback != nil {
		e.callback.OnCellStarted(id, cc.Name)
	}

	worker, err := e.pool.Get()
	if err != nil {
		e.setState(id, ExecError)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, err)
		}
		return nil, nil, err
	}

	e.abortMu.Lock()
	e.current = worker.KillHandle()
	e.abortMu.Unlock()
	defer func() {
		e.abortMu.Lock()
		e.current = nil
		e.abortMu.Unlock()
	}()

	if err := worker.LoadCell(ipc.LoadCell{
		DylibPath:   cc.DylibPath,
		DepCount:    cc.DepCount,
		EntrySymbol: cc.EntrySymbol,
		Name:        cc.Name,
	}); err != nil {
		e.setState(id, ExecError)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, err)
		}
		return nil, nil, err
	}

	inputBytes := make([][]byte, len(inputs))
	for i, in := range inputs {
		inputBytes[i] = in.Bytes
	}

	if e.isAborted() {
		_ = worker.Kill()
		e.setState(id, Aborted)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, tfdiags.ErrAborted)
		}
		return nil, nil, tfdiags.ErrAborted
	}

	raw, widgetsJSON, err := worker.Execute(inputBytes, widgetValuesJSON)
	e.pool.Put(worker)

	if e.isAborted() {
		e.setState(id, Aborted)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, tfdiags.ErrAborted)
		}
		return nil, nil, tfdiags.ErrAborted
	}

	if err != nil {
		e.setState(id, ExecError)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, err)
		}
		return nil, nil, err
	}

	output, err := parseOutputBytes(raw, cc.Name)
	if err != nil {
		e.setState(id, ExecError)
		if e.callback != nil {
			e.callback.OnCellError(id, cc.Name, err)
		}
		return nil, nil, err
	}

	e.setState(id, Success)
	if e.callback != nil {
		e.callback.OnCellCompleted(id, cc.Name)
	}
	return output, widgetsJSON, nil
}

// ExecuteAndStore runs id and stores the result in the state manager.
func (e *Executor) ExecuteAndStore(id graph.CellID, inputs []*notebook.BoxedOutput) error {
	out, _, err := e.ExecuteCell(id, inputs, nil)
	if err != nil {
		return err
	}
	e.state.StoreOutput(id, *out)
	return nil
}

// ExecuteInOrder walks order, gathering each cell's inputs from the state
// manager and storing its output back, failing on the first error and
// honoring abort between cells. An optional timeout bounds the whole walk.
func (e *Executor) ExecuteInOrder(ctx context.Context, order []graph.CellID, deps map[graph.CellID][]graph.CellID, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- e.runOrder(order, deps) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		e.Abort()
		<-done
		return &tfdiags.Diagnostic{Kind: tfdiags.Aborted, Message: "execution timed out"}
	}
}

func (e *Executor) runOrder(order []graph.CellID, deps map[graph.CellID][]graph.CellID) error {
	for _, id := range order {
		if e.isAborted() {
			return tfdiags.ErrAborted
		}

		depIDs := deps[id]
		inputs := make([]*notebook.BoxedOutput, 0, len(depIDs))
		for _, depID := range depIDs {
			e.mu.Lock()
			expectedHash := e.cells[depID].ReturnTypeHash
			e.mu.Unlock()

			out, ok, err := e.state.GetOutputTyped(depID, expectedHash)
			if err != nil {
				return err
			}
			if ok {
				inputs = append(inputs, out)
			}
		}
		if len(inputs) != len(depIDs) {
			return &tfdiags.Diagnostic{
				Kind:    tfdiags.Execution,
				Message: "missing dependency outputs for cell",
				CellID:  cellIDPtr(id),
			}
		}

		if err := e.ExecuteAndStore(id, inputs); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) setState(id graph.CellID, s CellState) {
	e.mu.Lock()
	e.states[id] = s
	e.mu.Unlock()
}

func cellIDPtr(id graph.CellID) *int {
	v := int(id)
	return &v
}
