package ipc

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

const defaultPoolSize = 4

// Pool manages a bounded set of reusable worker processes, spawning new
// ones on demand up to its capacity and discarding workers that fail a
// liveness check on return (SPEC_FULL.md §2.8).
type Pool struct {
	workerPath string
	workerArgs []string
	logger     hclog.Logger

	mu    sync.Mutex
	idle  []*Worker
	live  int
	limit int
}

// Option configures a Pool.
type Option func(*Pool)

func WithLogger(l hclog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

func WithArgs(args ...string) Option {
	return func(p *Pool) { p.workerArgs = args }
}

// NewPool creates a pool bounded to size concurrent workers (default 4
// when size <= 0), spawning worker subprocesses from workerPath.
func NewPool(workerPath string, size int, opts ...Option) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}
	p := &Pool{workerPath: workerPath, limit: size, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prewarm spawns n workers (capped at the pool's limit) up front so the
// first real Get doesn't pay subprocess-startup latency.
func (p *Pool) Prewarm(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.limit {
		n = p.limit
	}
	for p.live < n {
		w, err := SpawnWorker(p.workerPath, p.workerArgs, p.logger)
		if err != nil {
			return err
		}
		p.live++
		p.idle = append(p.idle, w)
	}
	return nil
}

// Get returns an idle worker if one is available, otherwise spawns a new
// one if under the pool limit, otherwise returns a "worker pool
// exhausted" diagnostic at once (callers queue at a higher layer; the
// pool itself never blocks).
func (p *Pool) Get() (*Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.idle) > 0 {
		w := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if w.Ping() == nil {
			return w, nil
		}
		p.live--
	}

	if p.live >= p.limit {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "worker pool exhausted"}
	}

	w, err := SpawnWorker(p.workerPath, p.workerArgs, p.logger)
	if err != nil {
		return nil, err
	}
	p.live++
	return w, nil
}

// Put returns a worker to the idle set, or discards it (decrementing the
// live count) if it's no longer alive.
func (p *Pool) Put(w *Worker) {
	if w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if w.KillHandle().Killed() {
		p.live--
		return
	}
	p.idle = append(p.idle, w)
}

// Shutdown asks every idle worker to exit cleanly.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, w := range idle {
		_ = w.Shutdown()
	}
}
