// Package report populates the AS9102 Form 3 worksheet of an FAI
// template and exports the finished package.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/faiform/faiform-go/pkg/faiform/drawing"
	"github.com/faiform/faiform-go/pkg/faiform/form3"
	"github.com/faiform/faiform-go/pkg/faiform/models"
	"github.com/faiform/faiform-go/pkg/faiform/sheet"
)

// ErrForm3SheetMissing indicates the template has no Form 3 worksheet.
var ErrForm3SheetMissing = errors.New("no Form 3 worksheet available")

// ErrTemplateNotLoaded indicates an operation ran before a template was
// loaded.
var ErrTemplateNotLoaded = errors.New("load an FAI template first")

// SaveError wraps a workbook save failure with its destination.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save workbook to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// seedSheetName is the hidden lookup sheet backing list validations.
const seedSheetName = "FAI Seed"

// designators seed the characteristic-designator dropdown.
var designators = []string{"Major", "Minor", "Critical", "Key", "Reference"}

// Generator populates Form 3 from parsed characteristics.
type Generator struct {
	wb     *sheet.Workbook
	ctx    *form3.Context
	logger *slog.Logger
}

// NewGenerator loads the template and binds the first worksheet whose
// name contains "Form 3".
func NewGenerator(templatePath string, dw drawing.Drawing, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotLoaded, err)
	}

	sheetName := ""
	for _, name := range f.GetSheetList() {
		if strings.Contains(name, "Form 3") {
			sheetName = name
			break
		}
	}
	if sheetName == "" {
		_ = f.Close()
		return nil, ErrForm3SheetMissing
	}

	wb, err := sheet.Bind(f, sheetName, logger)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	ctx := form3.NewContext(wb, dw, logger)
	ctx.Layout.FirstDataRow = discoverStartRow(wb, ctx.Layout)

	return &Generator{wb: wb, ctx: ctx, logger: logger}, nil
}

// Context exposes the reconciliation context for callers that need the
// reconciler or synchronizer directly.
func (g *Generator) Context() *form3.Context { return g.ctx }

// Close releases the underlying workbook.
func (g *Generator) Close() error { return g.wb.Close() }

// discoverStartRow locates the data start below the "Char No." header,
// defaulting to the layout's first data row when the header is not in
// the expected band.
func discoverStartRow(wb *sheet.Workbook, layout form3.Layout) int {
	for row := 1; row < 20; row++ {
		v, err := wb.CellValue(row, layout.ColCharNo)
		if err != nil {
			continue
		}
		// "Char No." specifically, to avoid matching the report title.
		if strings.Contains(v, "Char No.") {
			return row + 1
		}
	}
	return layout.FirstDataRow
}

// Generate rebuilds the Form 3 table from the characteristics, syncs
// bubble coloring, appends the notes block and saves to outputPath.
func (g *Generator) Generate(chars []models.Characteristic, outputPath, notes string) error {
	rec := form3.NewReconciler(g.ctx)
	rows, err := rec.Rebuild(chars)
	if err != nil {
		return err
	}
	form3.NewSynchronizer(g.ctx).Sync()

	if notes != "" {
		g.appendNotes(len(rows), notes)
	}

	g.ensureSeedValidation(len(rows))

	if err := g.wb.Save(outputPath); err != nil {
		return &SaveError{Path: outputPath, Err: err}
	}
	g.logger.Debug("report saved", slog.String("path", outputPath),
		slog.Int("rows", len(rows)))
	return nil
}

// appendNotes writes a NOTES: block two rows below the table, one line
// per row, mirroring drawing-note extraction output.
func (g *Generator) appendNotes(rowCount int, notes string) {
	row := g.ctx.Layout.FirstDataRow + rowCount + 2
	if err := g.wb.SetCellValue(row, 1, "NOTES:"); err != nil {
		g.logger.Debug("notes header skipped", slog.String("error", err.Error()))
		return
	}
	row++
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := g.wb.SetCellValue(row, 1, line); err != nil {
			g.logger.Debug("notes line skipped", slog.Int("row", row))
		}
		row++
	}
}

// ensureSeedValidation maintains a hidden seed sheet and attaches the
// designator dropdown to the data rows by literal range. Validation is
// cosmetic; failures never abort generation.
func (g *Generator) ensureSeedValidation(rowCount int) {
	f := g.wb.File()

	idx, err := f.GetSheetIndex(seedSheetName)
	if err != nil || idx < 0 {
		if _, err := f.NewSheet(seedSheetName); err != nil {
			g.logger.Debug("seed sheet skipped", slog.String("error", err.Error()))
			return
		}
	}
	for i, d := range designators {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			continue
		}
		if err := f.SetCellValue(seedSheetName, axis, d); err != nil {
			g.logger.Debug("seed value skipped", slog.String("error", err.Error()))
		}
	}
	if err := f.SetSheetVisible(seedSheetName, false); err != nil {
		g.logger.Debug("seed hide skipped", slog.String("error", err.Error()))
	}

	if rowCount == 0 {
		return
	}
	l := g.ctx.Layout
	first, err1 := excelize.CoordinatesToCellName(l.ColDesignator, l.FirstDataRow)
	last, err2 := excelize.CoordinatesToCellName(l.ColDesignator, l.FirstDataRow+rowCount-1)
	if err1 != nil || err2 != nil {
		return
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = first + ":" + last
	dv.SetSqrefDropList(fmt.Sprintf("'%s'!$A$1:$A$%d", seedSheetName, len(designators)))
	if err := f.AddDataValidation(g.wb.SheetName(), dv); err != nil {
		g.logger.Debug("designator validation skipped", slog.String("error", err.Error()))
	}
}
