// Package sheet abstracts workbook access for the Form 3 engine.
package sheet

// Store is the spreadsheet collaborator contract. All coordinates are
// 1-based. Writes that target a member of a merged range must resolve to
// the range's top-left anchor; implementations own that resolution.
type Store interface {
	// CellValue returns the displayed value at (row, col).
	CellValue(row, col int) (string, error)
	// SetCellValue writes a value, resolving merged anchors.
	SetCellValue(row, col int, value any) error
	// SetFill applies a solid RGB fill ("RRGGBB"); an empty string
	// clears the fill while preserving the rest of the style.
	SetFill(row, col int, rgb string) error
	// MergedAnchor returns the top-left anchor for (row, col); cells in
	// no merged range anchor to themselves.
	MergedAnchor(row, col int) (int, int)
	// InsertRows shifts rows down, opening count blank rows at `at`.
	InsertRows(at, count int) error
	// DeleteRow removes one row, shifting subsequent rows up.
	DeleteRow(row int) error
	// CopyRowStyle copies font/border/alignment/number-format from the
	// source row to the destination row across [minCol, maxCol],
	// explicitly excluding fill.
	CopyRowStyle(src, dst, minCol, maxCol int) error
	// LastDataRow scans downward from first until emptyRun consecutive
	// rows have no content in any probe column, returning the last row
	// that held content (first-1 when none do).
	LastDataRow(first int, probeCols []int, emptyRun int) int
	// Capture serializes the whole workbook for undo snapshots.
	Capture() ([]byte, error)
	// Restore replaces the workbook state from a Capture payload.
	Restore(payload []byte) error
	// Save writes the workbook to disk.
	Save(path string) error
}
