package undo

// CellKey addresses one cell in the live grid.
type CellKey struct {
	Row int
	Col int
}

// CellChange records the before/after state of one cell for a discrete
// user edit. HasValue/HasFill distinguish value edits from fill edits so
// a fill-only change does not clobber the value on undo.
type CellChange struct {
	OldValue any
	NewValue any
	OldFill  string
	NewFill  string
	HasValue bool
	HasFill  bool
}

// Command is one undoable edit: a single cell for a keystroke, many for
// a paste, fill-down, fill-right or selection-wide fill.
type Command map[CellKey]CellChange

// CellWriter applies ledger state back to the grid.
type CellWriter interface {
	SetCellValue(row, col int, value any) error
	SetFill(row, col int, rgb string) error
}

// CellLedger is the fine-grained per-cell undo/redo for direct edits.
// It is independent of the table-level snapshot ledger; the Delegate
// hook lets the table level claim a keystroke first.
type CellLedger struct {
	undo []Command
	redo []Command
	// Delegate is consulted before the cell ledger acts; when it
	// returns true the keystroke was handled at the table level.
	Delegate func() bool
}

// NewCellLedger returns an empty ledger.
func NewCellLedger() *CellLedger { return &CellLedger{} }

// Record pushes a new edit and clears the redo stack.
func (l *CellLedger) Record(cmd Command) {
	if len(cmd) == 0 {
		return
	}
	l.undo = append(l.undo, cmd)
	l.redo = nil
}

// Undo re-applies the old state of the most recent command. It returns
// true when an undo was performed (or claimed by the delegate).
func (l *CellLedger) Undo(w CellWriter) bool {
	if l.Delegate != nil && l.Delegate() {
		return true
	}
	if len(l.undo) == 0 {
		return false
	}
	cmd := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	applyCommand(w, cmd, false)
	l.redo = append(l.redo, cmd)
	return true
}

// Redo re-applies the new state of the most recently undone command.
func (l *CellLedger) Redo(w CellWriter) bool {
	if len(l.redo) == 0 {
		return false
	}
	cmd := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	applyCommand(w, cmd, true)
	l.undo = append(l.undo, cmd)
	return true
}

// Depths returns the undo and redo stack sizes.
func (l *CellLedger) Depths() (int, int) { return len(l.undo), len(l.redo) }

func applyCommand(w CellWriter, cmd Command, forward bool) {
	for key, change := range cmd {
		if change.HasValue {
			v := change.OldValue
			if forward {
				v = change.NewValue
			}
			_ = w.SetCellValue(key.Row, key.Col, v)
		}
		if change.HasFill {
			f := change.OldFill
			if forward {
				f = change.NewFill
			}
			_ = w.SetFill(key.Row, key.Col, f)
		}
	}
}
