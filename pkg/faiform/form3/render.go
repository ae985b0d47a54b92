package form3

import (
	"log/slog"

	"github.com/faiform/faiform-go/pkg/faiform/gdt"
	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// RowRenderer projects characteristic records into worksheet rows.
type RowRenderer struct {
	ctx *Context
}

// NewRowRenderer returns a renderer bound to the context.
func NewRowRenderer(ctx *Context) *RowRenderer {
	return &RowRenderer{ctx: ctx}
}

// fillRGB maps a fill classification to the palette color, empty for
// no-fill states.
func (r *RowRenderer) fillRGB(fs models.FillState) string {
	p := r.ctx.Palette
	switch fs {
	case models.FillPassGreen:
		return p.PassGreen
	case models.FillFailRed:
		return p.FailRed
	case models.FillDerivedRed:
		return p.DerivedRed
	case models.FillBonusYellow:
		return p.BonusYellow
	default:
		return ""
	}
}

// Render writes one characteristic into the worksheet row at rowIndex
// with the given sequential number. refLocOverride preserves user edits
// across reconciliation; bubbled is the drawing-side presence of the
// row's number.
func (r *RowRenderer) Render(c models.Characteristic, rowIndex, number int, refLocOverride string, bubbled bool) (models.Form3Row, error) {
	ctx := r.ctx
	l := ctx.Layout
	store := ctx.Store

	row := models.Form3Row{
		RowIndex:          rowIndex,
		CharNo:            number,
		BubbleNo:          number,
		DescriptionText:   c.ID,
		SpecificationText: c.Description,
		UnitText:          c.Unit,
		Bubbled:           bubbled,
	}

	if err := store.SetCellValue(rowIndex, l.ColCharNo, number); err != nil {
		return row, err
	}
	if err := store.SetCellValue(rowIndex, l.ColBubbleNo, number); err != nil {
		return row, err
	}

	row.ReferenceLocation = refLocOverride
	if row.ReferenceLocation == "" {
		row.ReferenceLocation = c.Group1
	}
	if row.ReferenceLocation != "" {
		if err := store.SetCellValue(rowIndex, l.ColRefLocation, row.ReferenceLocation); err != nil {
			return row, err
		}
	}

	if err := store.SetCellValue(rowIndex, l.ColDescription, c.ID); err != nil {
		return row, err
	}
	if err := store.SetCellValue(rowIndex, l.ColSpecification, c.Description); err != nil {
		return row, err
	}
	if c.Unit != "" {
		if err := store.SetCellValue(rowIndex, l.ColUnit, c.Unit); err != nil {
			return row, err
		}
	}

	// Callouts are forced blank on basic rows even when the row would
	// otherwise be eligible.
	if !IsBasic(c) {
		row.GDTCalloutText = gdt.BuildCallout(c, ctx.Options.SymbolMode)
	}
	if err := store.SetCellValue(rowIndex, l.ColCallout, row.GDTCalloutText); err != nil {
		return row, err
	}
	if row.GDTCalloutText != "" && gdt.HasMMC(c) {
		// Cross-column effect: an MMC callout implies bonus tolerance.
		ctx.setFill(rowIndex, l.ColBonusTol, ctx.Palette.BonusYellow)
	}

	row.ResultValue, row.Fill = Evaluate(c)
	if err := store.SetCellValue(rowIndex, l.ColResult, row.ResultValue); err != nil {
		return row, err
	}
	ctx.setFill(rowIndex, l.ColResult, r.fillRGB(row.Fill))

	if c.Source == models.SourceDerived {
		// Flag the whole data row for manual attention; the char-no
		// column stays unshaded.
		for _, col := range l.derivedFillCols() {
			ctx.setFill(rowIndex, col, ctx.Palette.DerivedRed)
		}
	} else if ctx.Options.Equipment != "" {
		// Equipment metadata is only meaningful on measured rows.
		if err := store.SetCellValue(rowIndex, l.ColEquipment, ctx.Options.Equipment); err != nil {
			ctx.Logger.Debug("equipment write skipped", slog.Int("row", rowIndex),
				slog.String("error", err.Error()))
		}
	}

	// Bubble status is applied last and wins over pass/fail shading: a
	// missing callout on the drawing is operationally more urgent.
	bubbleFill := ctx.Palette.BubbleRed
	if bubbled {
		bubbleFill = ctx.Palette.BubbleGreen
	}
	ctx.setFill(rowIndex, l.ColBubbleNo, bubbleFill)

	return row, nil
}
