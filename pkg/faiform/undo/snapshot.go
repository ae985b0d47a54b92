// Package undo provides the two Form 3 undo mechanisms: table-level
// snapshots for destructive operations and a cell-level command ledger
// for direct grid edits.
package undo

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"
)

// DefaultSnapshotDepth is the snapshot cap; the oldest entry is evicted
// first.
const DefaultSnapshotDepth = 20

// GridCell is one captured cell in a fallback grid copy.
type GridCell struct {
	Row   int
	Col   int
	Value string
	Fill  string
}

// GridCopy is the in-memory fallback capture used when workbook
// serialization fails.
type GridCopy struct {
	FirstRow int
	LastRow  int
	Cells    []GridCell
}

// Snapshot is an opaque full-table capture pushed before a destructive
// operation. Exactly one of Payload or Grid is set.
type Snapshot struct {
	ID      uuid.UUID
	Taken   time.Time
	Payload []byte
	Grid    *GridCopy
}

// SnapshotLedger is a LIFO stack of snapshots with FIFO eviction at the
// depth cap. No redo is provided at this granularity.
type SnapshotLedger struct {
	depth  int
	stack  []Snapshot
	logger *slog.Logger
}

// NewSnapshotLedger returns a ledger with the given depth (or
// DefaultSnapshotDepth when depth <= 0).
func NewSnapshotLedger(depth int, logger *slog.Logger) *SnapshotLedger {
	if depth <= 0 {
		depth = DefaultSnapshotDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotLedger{depth: depth, logger: logger}
}

// PushPayload records a serialized workbook capture.
func (l *SnapshotLedger) PushPayload(payload []byte) {
	l.push(Snapshot{ID: uuid.New(), Taken: time.Now(), Payload: payload})
}

// PushGrid records a deep copy of an in-memory grid capture. It returns
// false (and skips the push) when the copy fails; undo availability
// degrades rather than blocking the operation.
func (l *SnapshotLedger) PushGrid(grid *GridCopy) bool {
	var cp GridCopy
	if err := deepcopy.Copy(&cp, grid); err != nil {
		l.logger.Warn("undo snapshot skipped", slog.String("error", err.Error()))
		return false
	}
	l.push(Snapshot{ID: uuid.New(), Taken: time.Now(), Grid: &cp})
	return true
}

func (l *SnapshotLedger) push(s Snapshot) {
	l.stack = append(l.stack, s)
	if len(l.stack) > l.depth {
		l.stack = l.stack[len(l.stack)-l.depth:]
	}
	l.logger.Debug("undo snapshot pushed",
		slog.String("id", s.ID.String()), slog.Int("depth", len(l.stack)))
}

// Pop removes and returns the most recent snapshot.
func (l *SnapshotLedger) Pop() (Snapshot, bool) {
	if len(l.stack) == 0 {
		return Snapshot{}, false
	}
	s := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	return s, true
}

// Len returns the number of stored snapshots.
func (l *SnapshotLedger) Len() int { return len(l.stack) }
