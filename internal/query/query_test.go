package query

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalMemoizesComputation(t *testing.T) {
	e := New()
	var calls int32

	compute := func() Result {
		atomic.AddInt32(&calls, 1)
		return Ok(42)
	}

	r1 := e.Eval(CellNames, "notebook.rs", compute)
	r2 := e.Eval(CellNames, "notebook.rs", compute)

	require.True(t, r1.IsOk())
	require.Equal(t, 42, r1.Value)
	require.Equal(t, r1, r2)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEvalConcurrentCallersShareOneComputation(t *testing.T) {
	e := New()
	var calls int32
	var wg sync.WaitGroup

	compute := func() Result {
		atomic.AddInt32(&calls, 1)
		return Ok("graph")
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Eval(GraphAnalysis, "notebook.rs", compute)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEvictForcesRecompute(t *testing.T) {
	e := New()
	var calls int32
	compute := func() Result {
		atomic.AddInt32(&calls, 1)
		return Ok(nil)
	}

	e.Eval(ParseCells, "a.rs", compute)
	e.Evict(ParseCells, "a.rs")
	e.Eval(ParseCells, "a.rs", compute)

	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEvalDistinguishesEmptyFromFailed(t *testing.T) {
	e := New()
	errResult := e.Eval(CompileCell, "bad.rs", func() Result {
		return Err(assertError{})
	})
	require.False(t, errResult.IsOk())
}

type assertError struct{}

func (assertError) Error() string { return "compile failed" }
