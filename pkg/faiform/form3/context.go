// Package form3 keeps the Form 3 characteristic table consistent with
// the drawing's bubble callouts: rendering rows, renumbering after
// insert/delete, and recoloring bubble cells.
package form3

import (
	"errors"
	"log/slog"

	"github.com/faiform/faiform-go/pkg/faiform/drawing"
	"github.com/faiform/faiform-go/pkg/faiform/gdt"
	"github.com/faiform/faiform-go/pkg/faiform/sheet"
	"github.com/faiform/faiform-go/pkg/faiform/undo"
)

// ErrHeaderBoundary rejects row operations at or above the fixed header
// rows. Callers treat it as a silent refusal, not a dialog.
var ErrHeaderBoundary = errors.New("row operation within header boundary")

// Layout describes where Form 3 keeps its columns and data rows.
type Layout struct {
	// FirstDataRow is the first row below the fixed header.
	FirstDataRow int
	// EmptyRunCutoff is the run of contentless rows that terminates the
	// managed-range scan.
	EmptyRunCutoff int

	ColCharNo        int
	ColOpNo          int
	ColRefLocation   int
	ColBubbleNo      int
	ColDesignator    int
	ColDescription   int
	ColSpecification int
	ColCallout       int
	ColUnit          int
	ColBonusTol      int
	ColResult        int
	ColEquipment     int
}

// DefaultLayout matches the stock AS9102 Form 3 template.
func DefaultLayout() Layout {
	return Layout{
		FirstDataRow:     6,
		EmptyRunCutoff:   25,
		ColCharNo:        2,
		ColOpNo:          3,
		ColRefLocation:   4,
		ColBubbleNo:      5,
		ColDesignator:    6,
		ColDescription:   7,
		ColSpecification: 8,
		ColCallout:       9,
		ColUnit:          10,
		ColBonusTol:      11,
		ColResult:        12,
		ColEquipment:     13,
	}
}

// managedCols lists every column the reconciler owns, in order.
func (l Layout) managedCols() []int {
	return []int{
		l.ColCharNo, l.ColRefLocation, l.ColBubbleNo, l.ColDescription,
		l.ColSpecification, l.ColCallout, l.ColUnit, l.ColBonusTol,
		l.ColResult, l.ColEquipment,
	}
}

// derivedFillCols lists the columns shaded for derived rows: the data
// columns, not the char-no column.
func (l Layout) derivedFillCols() []int {
	return []int{
		l.ColRefLocation, l.ColDescription, l.ColSpecification,
		l.ColUnit, l.ColResult,
	}
}

// Palette holds the RGB fills ("RRGGBB") for derived shading.
type Palette struct {
	PassGreen   string
	FailRed     string
	BonusYellow string
	DerivedRed  string
	BubbleGreen string
	BubbleRed   string
}

// DefaultPalette uses the conditional-formatting colors Excel ships.
func DefaultPalette() Palette {
	return Palette{
		PassGreen:   "C6EFCE",
		FailRed:     "FFC7CE",
		BonusYellow: "FFEB9C",
		DerivedRed:  "F8CBAD",
		BubbleGreen: "C6EFCE",
		BubbleRed:   "FFC7CE",
	}
}

// Options carries the user-facing reconciliation modes.
type Options struct {
	// SymbolMode selects font codes or Unicode glyphs for callouts.
	SymbolMode gdt.Mode
	// RefLocationMode controls drawing-derived reference locations.
	RefLocationMode drawing.RefLocationMode
	// IncludeDerived admits derived rows into full rebuilds.
	IncludeDerived bool
	// Equipment is the tooling label written on measured rows.
	Equipment string
}

// DefaultOptions returns the stock modes.
func DefaultOptions() Options {
	return Options{
		SymbolMode:      gdt.ModeFont,
		RefLocationMode: drawing.RefLocSheetZone,
	}
}

// Context owns everything a reconciliation pass touches: the workbook
// store, the drawing reference (which may be absent during startup
// ordering races), both undo ledgers, and the configured modes. Passing
// it explicitly keeps the reconciliation functions testable without a
// live GUI.
type Context struct {
	Store     sheet.Store
	Drawing   drawing.Drawing
	Snapshots *undo.SnapshotLedger
	Cells     *undo.CellLedger
	Layout    Layout
	Palette   Palette
	Options   Options
	Logger    *slog.Logger
}

// NewContext wires a context with defaults for everything optional.
func NewContext(store sheet.Store, dw drawing.Drawing, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Store:     store,
		Drawing:   dw,
		Snapshots: undo.NewSnapshotLedger(undo.DefaultSnapshotDepth, logger),
		Cells:     undo.NewCellLedger(),
		Layout:    DefaultLayout(),
		Palette:   DefaultPalette(),
		Options:   DefaultOptions(),
		Logger:    logger,
	}
}

// lastDataRow discovers the managed range's end by scanning for a run of
// contentless char-no/description rows.
func (c *Context) lastDataRow() int {
	l := c.Layout
	return c.Store.LastDataRow(l.FirstDataRow,
		[]int{l.ColCharNo, l.ColDescription}, l.EmptyRunCutoff)
}

// pushUndo captures the table before a destructive operation. The full
// workbook serialization is preferred; a deep in-memory grid copy is the
// fallback, and when both fail the push is skipped with a log entry.
func (c *Context) pushUndo() {
	payload, err := c.Store.Capture()
	if err == nil {
		c.Snapshots.PushPayload(payload)
		return
	}
	c.Logger.Warn("workbook capture failed, falling back to grid copy",
		slog.String("error", err.Error()))
	c.Snapshots.PushGrid(c.captureGrid())
}

// captureGrid copies the managed range's values and fills.
func (c *Context) captureGrid() *undo.GridCopy {
	l := c.Layout
	last := c.lastDataRow()
	grid := &undo.GridCopy{FirstRow: l.FirstDataRow, LastRow: last}
	for row := l.FirstDataRow; row <= last; row++ {
		for _, col := range l.managedCols() {
			v, err := c.Store.CellValue(row, col)
			if err != nil {
				continue
			}
			grid.Cells = append(grid.Cells, undo.GridCell{Row: row, Col: col, Value: v})
		}
	}
	return grid
}

// Undo restores the most recent table snapshot and re-syncs bubble
// coloring. It reports whether a snapshot was available. No redo exists
// at this granularity.
func (c *Context) Undo() bool {
	snap, ok := c.Snapshots.Pop()
	if !ok {
		return false
	}
	if snap.Payload != nil {
		if err := c.Store.Restore(snap.Payload); err != nil {
			c.Logger.Warn("snapshot restore failed", slog.String("error", err.Error()))
			return false
		}
	} else if snap.Grid != nil {
		for _, cell := range snap.Grid.Cells {
			if err := c.Store.SetCellValue(cell.Row, cell.Col, cell.Value); err != nil {
				c.Logger.Debug("grid restore write failed",
					slog.Int("row", cell.Row), slog.Int("col", cell.Col))
			}
		}
	}
	NewSynchronizer(c).Sync()
	return true
}

// setFill applies a fill, logging and continuing on failure; shading is
// cosmetic and must never abort an operation.
func (c *Context) setFill(row, col int, rgb string) {
	if err := c.Store.SetFill(row, col, rgb); err != nil {
		c.Logger.Debug("fill skipped", slog.Int("row", row), slog.Int("col", col),
			slog.String("error", err.Error()))
	}
}
