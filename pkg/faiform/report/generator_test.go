package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// writeTemplate creates a minimal FAI template with a Form 3 worksheet
// whose "Char No." header sits at headerRow.
func writeTemplate(t *testing.T, headerRow int) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "AS9102 Form 3"); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	if headerRow > 0 {
		axis, err := excelize.CoordinatesToCellName(2, headerRow)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue("AS9102 Form 3", axis, "5. Char No."); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

func measured(id string) models.Characteristic {
	return models.Characteristic{
		ID:          id,
		Description: ".5000 +/- .0050",
		Actual:      "0.5",
		Nominal:     "0.5",
		UpperTol:    "0.005",
		LowerTol:    "-0.005",
		Type:        "Distance",
		Source:      models.SourceMeasured,
	}
}

func TestNewGeneratorMissingFile(t *testing.T) {
	_, err := NewGenerator(filepath.Join(t.TempDir(), "absent.xlsx"), nil, nil)
	if !errors.Is(err, ErrTemplateNotLoaded) {
		t.Errorf("error = %v, expected ErrTemplateNotLoaded", err)
	}
}

func TestNewGeneratorMissingForm3Sheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	_, err := NewGenerator(path, nil, nil)
	if !errors.Is(err, ErrForm3SheetMissing) {
		t.Errorf("error = %v, expected ErrForm3SheetMissing", err)
	}
}

func TestDiscoverStartRowFollowsHeader(t *testing.T) {
	g, err := NewGenerator(writeTemplate(t, 7), nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer g.Close()

	if got := g.Context().Layout.FirstDataRow; got != 8 {
		t.Errorf("FirstDataRow = %d, expected 8", got)
	}
}

func TestDiscoverStartRowDefault(t *testing.T) {
	g, err := NewGenerator(writeTemplate(t, 0), nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer g.Close()

	if got := g.Context().Layout.FirstDataRow; got != 6 {
		t.Errorf("FirstDataRow = %d, expected 6", got)
	}
}

func TestGenerate(t *testing.T) {
	g, err := NewGenerator(writeTemplate(t, 5), nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer g.Close()

	basic := measured("DIM2")
	basic.Comment = "BASIC"
	chars := []models.Characteristic{measured("DIM1"), basic}

	out := filepath.Join(t.TempDir(), "fai.xlsx")
	if err := g.Generate(chars, out, "FLAG ALL SURFACES\n\nBREAK SHARP EDGES"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("reopening output: %v", err)
	}
	defer f.Close()

	get := func(axis string) string {
		v, err := f.GetCellValue("AS9102 Form 3", axis)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", axis, err)
		}
		return v
	}

	if got := get("G6"); got != "DIM1" {
		t.Errorf("G6 = %q, expected DIM1", got)
	}
	if got := get("L6"); got != "0.5000" {
		t.Errorf("L6 = %q, expected 0.5000", got)
	}
	if got := get("L7"); got != "NA" {
		t.Errorf("basic row result = %q, expected NA", got)
	}

	// Notes block two rows below the two data rows.
	if got := get("A10"); got != "NOTES:" {
		t.Errorf("A10 = %q, expected NOTES:", got)
	}
	if got := get("A11"); got != "FLAG ALL SURFACES" {
		t.Errorf("A11 = %q", got)
	}
	if got := get("A12"); got != "BREAK SHARP EDGES" {
		t.Errorf("blank note lines should be dropped, A12 = %q", got)
	}

	// The hidden seed sheet backs the designator dropdown.
	seed, err := f.GetCellValue(seedSheetName, "A1")
	if err != nil {
		t.Fatalf("seed sheet: %v", err)
	}
	if seed != designators[0] {
		t.Errorf("seed A1 = %q, expected %q", seed, designators[0])
	}
	visible, err := f.GetSheetVisible(seedSheetName)
	if err != nil {
		t.Fatal(err)
	}
	if visible {
		t.Error("seed sheet should be hidden")
	}

	dvs, err := f.GetDataValidations("AS9102 Form 3")
	if err != nil {
		t.Fatal(err)
	}
	if len(dvs) == 0 {
		t.Error("expected a designator data validation")
	}
}

func TestGenerateEmptyTable(t *testing.T) {
	g, err := NewGenerator(writeTemplate(t, 5), nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer g.Close()

	out := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := g.Generate(nil, out, ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}
