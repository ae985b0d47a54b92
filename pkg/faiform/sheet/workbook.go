package sheet

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

type cellKey struct{ row, col int }

// Workbook is the excelize-backed Store bound to one worksheet.
//
// Merged-range resolution is served from an index built once per table
// version rather than walking every range on every write; structural
// mutations invalidate the index.
type Workbook struct {
	f       *excelize.File
	sheet   string
	anchors map[cellKey]cellKey
	logger  *slog.Logger
}

// Open loads a workbook from disk and binds it to sheetName.
func Open(path, sheetName string, logger *slog.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return Bind(f, sheetName, logger)
}

// Bind wraps an already-open excelize file.
func Bind(f *excelize.File, sheetName string, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	found := false
	for _, name := range f.GetSheetList() {
		if name == sheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("worksheet %q not found", sheetName)
	}
	return &Workbook{f: f, sheet: sheetName, logger: logger}, nil
}

// File exposes the underlying excelize file for workbook-level
// operations (hidden seed sheets, data validations).
func (w *Workbook) File() *excelize.File { return w.f }

// SheetName returns the bound worksheet name.
func (w *Workbook) SheetName() string { return w.sheet }

// Close releases the underlying file.
func (w *Workbook) Close() error { return w.f.Close() }

func (w *Workbook) axis(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// buildAnchorIndex maps every covered cell of every merged range to the
// range's top-left anchor.
func (w *Workbook) buildAnchorIndex() {
	w.anchors = make(map[cellKey]cellKey)
	merged, err := w.f.GetMergeCells(w.sheet)
	if err != nil {
		w.logger.Debug("merged range scan failed", slog.String("error", err.Error()))
		return
	}
	for _, m := range merged {
		c1, r1, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		c2, r2, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		for r := r1; r <= r2; r++ {
			for c := c1; c <= c2; c++ {
				w.anchors[cellKey{r, c}] = cellKey{r1, c1}
			}
		}
	}
}

// invalidateAnchors drops the merge index after structural changes.
func (w *Workbook) invalidateAnchors() { w.anchors = nil }

// MergedAnchor implements Store.
func (w *Workbook) MergedAnchor(row, col int) (int, int) {
	if w.anchors == nil {
		w.buildAnchorIndex()
	}
	if a, ok := w.anchors[cellKey{row, col}]; ok {
		return a.row, a.col
	}
	return row, col
}

// CellValue implements Store.
func (w *Workbook) CellValue(row, col int) (string, error) {
	return w.f.GetCellValue(w.sheet, w.axis(row, col))
}

// SetCellValue implements Store.
func (w *Workbook) SetCellValue(row, col int, value any) error {
	ar, ac := w.MergedAnchor(row, col)
	return w.f.SetCellValue(w.sheet, w.axis(ar, ac), value)
}

// SetFill implements Store. The rest of the cell style is preserved.
func (w *Workbook) SetFill(row, col int, rgb string) error {
	ar, ac := w.MergedAnchor(row, col)
	axis := w.axis(ar, ac)

	styleID, err := w.f.GetCellStyle(w.sheet, axis)
	if err != nil {
		return err
	}
	style, err := w.f.GetStyle(styleID)
	if err != nil || style == nil {
		style = &excelize.Style{}
	}
	if rgb == "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 0}
	} else {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgb}}
	}
	newID, err := w.f.NewStyle(style)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, axis, axis, newID)
}

// InsertRows implements Store.
func (w *Workbook) InsertRows(at, count int) error {
	if err := w.f.InsertRows(w.sheet, at, count); err != nil {
		return err
	}
	w.invalidateAnchors()
	return nil
}

// DeleteRow implements Store.
func (w *Workbook) DeleteRow(row int) error {
	if err := w.f.RemoveRow(w.sheet, row); err != nil {
		return err
	}
	w.invalidateAnchors()
	return nil
}

// CopyRowStyle implements Store. Fill is excluded so a new row does not
// inherit stale pass/fail shading.
func (w *Workbook) CopyRowStyle(src, dst, minCol, maxCol int) error {
	for col := minCol; col <= maxCol; col++ {
		srcAxis := w.axis(src, col)
		styleID, err := w.f.GetCellStyle(w.sheet, srcAxis)
		if err != nil {
			return err
		}
		style, err := w.f.GetStyle(styleID)
		if err != nil || style == nil {
			continue
		}
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 0}
		newID, err := w.f.NewStyle(style)
		if err != nil {
			return err
		}
		dstAxis := w.axis(dst, col)
		if err := w.f.SetCellStyle(w.sheet, dstAxis, dstAxis, newID); err != nil {
			return err
		}
	}
	return nil
}

// LastDataRow implements Store.
func (w *Workbook) LastDataRow(first int, probeCols []int, emptyRun int) int {
	last := first - 1
	empty := 0
	for row := first; ; row++ {
		hasContent := false
		for _, col := range probeCols {
			v, err := w.CellValue(row, col)
			if err == nil && v != "" {
				hasContent = true
				break
			}
		}
		if hasContent {
			last = row
			empty = 0
			continue
		}
		empty++
		if empty >= emptyRun {
			return last
		}
	}
}

// Capture implements Store by serializing the workbook to xlsx bytes.
func (w *Workbook) Capture() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore implements Store.
func (w *Workbook) Restore(payload []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return err
	}
	old := w.f
	w.f = f
	w.invalidateAnchors()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Save implements Store.
func (w *Workbook) Save(path string) error {
	return w.f.SaveAs(path)
}
