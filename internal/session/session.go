// Package session tracks per-cell observable status, a bounded output
// history, and the widget state layered on top of the core state
// manager for external collaborators (the notebook frontend, CLI, etc).
// Supplements the distilled spec's Session State description with the
// eviction policy original_source/ leaves implicit (SPEC_FULL.md §3).
package session

import (
	"sync"
	"time"

	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/widgets"
)

// Status mirrors the executor's state machine, plus Compiling, which the
// compiler (not the executor) owns (spec §3).
type Status string

const (
	StatusIdle      Status = "idle"
	StatusCompiling Status = "compiling"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// historyCapacity is the fixed size of each cell's output ring (spec §3:
// "fixed capacity (10 entries)").
const historyCapacity = 10

// HistoryEntry is one retained past output.
type HistoryEntry struct {
	SerializedOutput []byte
	DisplayOutput    string
	Timestamp        time.Time
}

// CellSession is the observable session state for one cell.
type CellSession struct {
	Status        Status
	CurrentOutput []byte
	Dirty         bool
	History       []HistoryEntry
}

// Session holds per-cell state plus the widget value/definition maps for
// one notebook session.
type Session struct {
	mu    sync.Mutex
	cells map[graph.CellID]*CellSession

	widgetValues      map[graph.CellID]map[string]widgets.Value
	widgetDefinitions map[graph.CellID][]widgets.Def
}

func New() *Session {
	return &Session{
		cells:             make(map[graph.CellID]*CellSession),
		widgetValues:      make(map[graph.CellID]map[string]widgets.Value),
		widgetDefinitions: make(map[graph.CellID][]widgets.Def),
	}
}

func (s *Session) cellFor(id graph.CellID) *CellSession {
	cs, ok := s.cells[id]
	if !ok {
		cs = &CellSession{Status: StatusIdle}
		s.cells[id] = cs
	}
	return cs
}

// Cell returns a copy of id's current session state.
func (s *Session) Cell(id graph.CellID) CellSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cellFor(id)
}

// SetStatus updates id's observable status.
func (s *Session) SetStatus(id graph.CellID, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellFor(id).Status = status
}

// MarkDirty flags id as needing re-execution (e.g. after a source edit).
func (s *Session) MarkDirty(id graph.CellID, dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellFor(id).Dirty = dirty
}

// RecordExecution appends a successful execution's output to id's
// history ring, evicting the oldest entry once the ring is full
// (append-then-truncate-to-capacity, FIFO - SPEC_FULL.md §3), and
// updates CurrentOutput/Status/Dirty accordingly.
func (s *Session) RecordExecution(id graph.CellID, serialized []byte, display string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.cellFor(id)
	cs.Status = StatusSuccess
	cs.CurrentOutput = serialized
	cs.Dirty = false
	cs.History = append(cs.History, HistoryEntry{
		SerializedOutput: serialized,
		DisplayOutput:    display,
		Timestamp:        at,
	})
	if len(cs.History) > historyCapacity {
		cs.History = cs.History[len(cs.History)-historyCapacity:]
	}
}

// RecordError marks id as failed without touching its history.
func (s *Session) RecordError(id graph.CellID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellFor(id).Status = StatusError
}

// SetWidgetValues installs the widget values supplied for id's next
// execution, separate from the worker's own per-execution widget bus.
func (s *Session) SetWidgetValues(id graph.CellID, values map[string]widgets.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgetValues[id] = values
}

func (s *Session) WidgetValues(id graph.CellID) map[string]widgets.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widgetValues[id]
}

// SetWidgetDefinitions records the widgets an execution registered, for
// the frontend to render.
func (s *Session) SetWidgetDefinitions(id graph.CellID, defs []widgets.Def) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgetDefinitions[id] = defs
}

func (s *Session) WidgetDefinitions(id graph.CellID) []widgets.Def {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widgetDefinitions[id]
}
