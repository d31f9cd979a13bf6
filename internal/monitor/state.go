package monitor

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the session state shared by every kernel watcher: the session
// identity and the running cell total. The cell counter is global across all
// kernels; its final value is what the log footer reports.
type State struct {
	SessionID string
	cells     atomic.Int64
}

// NewState creates the shared state for one monitoring session.
func NewState() *State {
	return &State{SessionID: uuid.New().String()}
}

// NextCell increments the global cell counter and returns the new total.
func (s *State) NextCell() int64 {
	return s.cells.Add(1)
}

// Cells returns the number of cells started so far across all kernels.
func (s *State) Cells() int64 {
	return s.cells.Load()
}
