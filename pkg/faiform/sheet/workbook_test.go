package sheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	w, err := Bind(f, "Sheet1", nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestBindUnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := Bind(f, "Form 3", nil); err == nil {
		t.Fatal("expected error for missing worksheet")
	}
}

func TestSetCellValueResolvesMergedAnchor(t *testing.T) {
	w := newTestWorkbook(t)
	if err := w.File().MergeCell("Sheet1", "B6", "C7"); err != nil {
		t.Fatalf("MergeCell() error = %v", err)
	}

	if err := w.SetCellValue(7, 3, "anchored"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	got, err := w.CellValue(6, 2)
	if err != nil {
		t.Fatalf("CellValue() error = %v", err)
	}
	if got != "anchored" {
		t.Errorf("anchor cell = %q, expected %q", got, "anchored")
	}

	r, c := w.MergedAnchor(7, 3)
	if r != 6 || c != 2 {
		t.Errorf("MergedAnchor(7, 3) = (%d, %d), expected (6, 2)", r, c)
	}
	r, c = w.MergedAnchor(10, 10)
	if r != 10 || c != 10 {
		t.Errorf("unmerged cell remapped to (%d, %d)", r, c)
	}
}

func TestAnchorIndexInvalidatedByInsert(t *testing.T) {
	w := newTestWorkbook(t)
	if err := w.File().MergeCell("Sheet1", "B6", "B7"); err != nil {
		t.Fatalf("MergeCell() error = %v", err)
	}
	// Force the index to build, then shift the range down.
	if r, c := w.MergedAnchor(7, 2); r != 6 || c != 2 {
		t.Fatalf("MergedAnchor(7, 2) = (%d, %d) before insert", r, c)
	}
	if err := w.InsertRows(6, 1); err != nil {
		t.Fatalf("InsertRows() error = %v", err)
	}
	if r, c := w.MergedAnchor(8, 2); r != 7 || c != 2 {
		t.Errorf("MergedAnchor(8, 2) = (%d, %d) after insert, expected (7, 2)", r, c)
	}
}

func TestLastDataRow(t *testing.T) {
	w := newTestWorkbook(t)
	for _, row := range []int{6, 7, 9} {
		if err := w.SetCellValue(row, 7, "CHR"); err != nil {
			t.Fatalf("SetCellValue() error = %v", err)
		}
	}

	if got := w.LastDataRow(6, []int{2, 7}, 5); got != 9 {
		t.Errorf("LastDataRow() = %d, expected 9", got)
	}
	if got := w.LastDataRow(20, []int{2, 7}, 3); got != 19 {
		t.Errorf("empty table LastDataRow() = %d, expected 19", got)
	}
}

func TestInsertAndDeleteRowsShiftValues(t *testing.T) {
	w := newTestWorkbook(t)
	if err := w.SetCellValue(6, 2, "first"); err != nil {
		t.Fatal(err)
	}
	if err := w.SetCellValue(7, 2, "second"); err != nil {
		t.Fatal(err)
	}

	if err := w.InsertRows(7, 1); err != nil {
		t.Fatalf("InsertRows() error = %v", err)
	}
	got, _ := w.CellValue(8, 2)
	if got != "second" {
		t.Errorf("row 8 = %q after insert, expected %q", got, "second")
	}

	if err := w.DeleteRow(7); err != nil {
		t.Fatalf("DeleteRow() error = %v", err)
	}
	got, _ = w.CellValue(7, 2)
	if got != "second" {
		t.Errorf("row 7 = %q after delete, expected %q", got, "second")
	}
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	w := newTestWorkbook(t)
	if err := w.SetCellValue(6, 2, "1"); err != nil {
		t.Fatal(err)
	}
	payload, err := w.Capture()
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	if err := w.SetCellValue(6, 2, "mutated"); err != nil {
		t.Fatal(err)
	}
	if err := w.Restore(payload); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	got, err := w.CellValue(6, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1" {
		t.Errorf("restored value = %q, expected %q", got, "1")
	}
}

func TestSetFillPreservesStyle(t *testing.T) {
	w := newTestWorkbook(t)
	bold, err := w.File().NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.File().SetCellStyle("Sheet1", "L6", "L6", bold); err != nil {
		t.Fatal(err)
	}

	if err := w.SetFill(6, 12, "C6EFCE"); err != nil {
		t.Fatalf("SetFill() error = %v", err)
	}
	styleID, err := w.File().GetCellStyle("Sheet1", "L6")
	if err != nil {
		t.Fatal(err)
	}
	style, err := w.File().GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("fill replaced the font style")
	}
	if style.Fill.Pattern != 1 {
		t.Errorf("fill pattern = %d, expected 1", style.Fill.Pattern)
	}

	if err := w.SetFill(6, 12, ""); err != nil {
		t.Fatalf("clearing fill: %v", err)
	}
	styleID, _ = w.File().GetCellStyle("Sheet1", "L6")
	style, err = w.File().GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Fill.Pattern != 0 {
		t.Errorf("cleared fill pattern = %d, expected 0", style.Fill.Pattern)
	}
}

func TestSaveAndOpen(t *testing.T) {
	w := newTestWorkbook(t)
	if err := w.SetCellValue(6, 2, "persisted"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := w.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := Open(path, "Sheet1", nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()
	got, err := reopened.CellValue(6, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "persisted" {
		t.Errorf("reopened value = %q, expected %q", got, "persisted")
	}
}
