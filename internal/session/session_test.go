package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/graph"
)

func TestRecordExecutionUpdatesCurrentOutput(t *testing.T) {
	s := New()
	id := graph.CellID(1)
	s.RecordExecution(id, []byte{1, 2}, "2", time.Unix(0, 0))

	cs := s.Cell(id)
	require.Equal(t, StatusSuccess, cs.Status)
	require.Equal(t, []byte{1, 2}, cs.CurrentOutput)
	require.False(t, cs.Dirty)
	require.Len(t, cs.History, 1)
}

func TestHistoryRingEvictsOldestAtCapacity(t *testing.T) {
	s := New()
	id := graph.CellID(1)
	for i := 0; i < 15; i++ {
		s.RecordExecution(id, []byte{byte(i)}, "", time.Unix(int64(i), 0))
	}

	cs := s.Cell(id)
	require.Len(t, cs.History, 10)
	// oldest retained entry should be the 6th execution (index 5), since
	// 15 appends over a 10-capacity FIFO ring keep the last 10.
	require.Equal(t, []byte{5}, cs.History[0].SerializedOutput)
	require.Equal(t, []byte{14}, cs.History[9].SerializedOutput)
}

func TestRecordErrorDoesNotTouchHistory(t *testing.T) {
	s := New()
	id := graph.CellID(1)
	s.RecordExecution(id, []byte{1}, "1", time.Unix(0, 0))
	s.RecordError(id)

	cs := s.Cell(id)
	require.Equal(t, StatusError, cs.Status)
	require.Len(t, cs.History, 1)
}

func TestMarkDirty(t *testing.T) {
	s := New()
	id := graph.CellID(2)
	s.MarkDirty(id, true)
	require.True(t, s.Cell(id).Dirty)
}
