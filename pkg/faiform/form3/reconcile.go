package form3

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// InsertWhere selects the side of the anchor row for an insertion.
type InsertWhere string

const (
	// InsertAbove opens the new row above the anchor row.
	InsertAbove InsertWhere = "above"
	// InsertBelow opens the new row below the anchor row.
	InsertBelow InsertWhere = "below"
)

// Reconciler owns the authoritative row order and numbering of the
// Form 3 characteristic table.
type Reconciler struct {
	ctx      *Context
	renderer *RowRenderer
}

// NewReconciler returns a reconciler over the context's managed range.
func NewReconciler(ctx *Context) *Reconciler {
	return &Reconciler{ctx: ctx, renderer: NewRowRenderer(ctx)}
}

// Rebuild clears the managed range and re-renders every eligible
// characteristic in order, starting at the first data row. User-entered
// reference locations survive, keyed by the characteristic id parsed
// from each row's description cell. The rendered rows are returned.
func (r *Reconciler) Rebuild(chars []models.Characteristic) ([]models.Form3Row, error) {
	ctx := r.ctx
	l := ctx.Layout

	ctx.pushUndo()

	last := ctx.lastDataRow()
	saved := r.savedReferenceLocations(last)
	r.clearManagedRange(last)

	bubbled := r.bubbledNumbers()

	var rows []models.Form3Row
	rowIndex := l.FirstDataRow
	number := 0
	for _, c := range chars {
		if !r.eligible(c) {
			continue
		}
		number++
		_, isBubbled := bubbled[number]
		row, err := r.renderer.Render(c, rowIndex, number, saved[c.ID], isBubbled)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
		rowIndex++
	}

	ctx.Logger.Debug("table rebuilt", slog.Int("rows", len(rows)))
	return rows, nil
}

// eligible filters characteristics admitted into a rebuild: a non-empty
// description, no numeric-parser "nan" artifacts, and measured-only
// unless derived extras are enabled.
func (r *Reconciler) eligible(c models.Characteristic) bool {
	desc := strings.TrimSpace(c.Description)
	if desc == "" || strings.Contains(strings.ToLower(desc), "nan") {
		return false
	}
	if c.Source == models.SourceDerived && !r.ctx.Options.IncludeDerived {
		return false
	}
	return true
}

// savedReferenceLocations captures reference-location text keyed by the
// characteristic id currently in each row's description cell.
func (r *Reconciler) savedReferenceLocations(last int) map[string]string {
	ctx := r.ctx
	l := ctx.Layout
	saved := make(map[string]string)
	for row := l.FirstDataRow; row <= last; row++ {
		id, err := ctx.Store.CellValue(row, l.ColDescription)
		if err != nil || strings.TrimSpace(id) == "" {
			continue
		}
		loc, err := ctx.Store.CellValue(row, l.ColRefLocation)
		if err != nil || strings.TrimSpace(loc) == "" {
			continue
		}
		saved[strings.TrimSpace(id)] = loc
	}
	return saved
}

// clearManagedRange blanks values and fills in every managed column.
func (r *Reconciler) clearManagedRange(last int) {
	ctx := r.ctx
	l := ctx.Layout
	for row := l.FirstDataRow; row <= last; row++ {
		for _, col := range l.managedCols() {
			if err := ctx.Store.SetCellValue(row, col, ""); err != nil {
				ctx.Logger.Debug("clear skipped", slog.Int("row", row), slog.Int("col", col))
				continue
			}
			ctx.setFill(row, col, "")
		}
	}
}

func (r *Reconciler) bubbledNumbers() map[int]struct{} {
	if r.ctx.Drawing == nil {
		return map[int]struct{}{}
	}
	return r.ctx.Drawing.BubbledNumbers()
}

// InsertRow opens a blank characteristic row next to the anchor row and
// renumbers the table. The new row's assigned bubble number is returned
// and excluded from any pre-existing drawing bubble range so a manually
// inserted characteristic does not inherit a multi-bubble group's shared
// number.
func (r *Reconciler) InsertRow(row int, where InsertWhere) (int, error) {
	ctx := r.ctx
	l := ctx.Layout

	insertAt := row
	if where == InsertBelow {
		insertAt = row + 1
	}
	if row < l.FirstDataRow || insertAt < l.FirstDataRow {
		return 0, ErrHeaderBoundary
	}

	ctx.pushUndo()

	if err := ctx.Store.InsertRows(insertAt, 1); err != nil {
		return 0, err
	}

	// Style follows the neighboring data row, minus its fill; stale
	// pass/fail shading must not transfer. Best effort only.
	styleSrc := insertAt + 1
	if where == InsertBelow {
		styleSrc = insertAt - 1
	}
	if err := ctx.Store.CopyRowStyle(styleSrc, insertAt, l.ColCharNo, l.ColEquipment); err != nil {
		ctx.Logger.Debug("style copy skipped", slog.Int("row", insertAt),
			slog.String("error", err.Error()))
	}
	if err := ctx.Store.SetCellValue(insertAt, l.ColRefLocation, ""); err != nil {
		ctx.Logger.Debug("reference location clear skipped", slog.Int("row", insertAt))
	}
	ctx.setFill(insertAt, l.ColCharNo, "")
	ctx.setFill(insertAt, l.ColDescription, "")

	// The plain renumber variant numbers every row in range, so the new
	// blank row receives the next dense number.
	mapping := r.RenumberAll()

	newNumber := r.parseBubbleNo(insertAt)
	if ctx.Drawing != nil {
		ctx.Drawing.ApplyNumberMapping(mapping)
		if newNumber > 0 {
			ctx.Drawing.ExcludeFromRanges([]int{newNumber})
		}
	}
	return newNumber, nil
}

// DeleteRow removes a single characteristic row. See DeleteRows.
func (r *Reconciler) DeleteRow(row int) (models.NumberMapping, error) {
	return r.DeleteRows([]int{row})
}

// DeleteRows removes the target rows, deletes exactly their captured
// bubble numbers from the drawing (singles only, never range-based),
// renumbers the survivors and propagates the old-to-new mapping, which
// is also returned.
func (r *Reconciler) DeleteRows(rows []int) (models.NumberMapping, error) {
	ctx := r.ctx
	l := ctx.Layout

	for _, row := range rows {
		if row < l.FirstDataRow {
			return nil, ErrHeaderBoundary
		}
	}
	if len(rows) == 0 {
		return models.NumberMapping{}, nil
	}

	ctx.pushUndo()

	var captured []int
	for _, row := range rows {
		if n := r.parseBubbleNo(row); n > 0 {
			captured = append(captured, n)
		}
	}

	// Descending order keeps the remaining physical indices stable.
	ordered := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	for _, row := range ordered {
		if err := ctx.Store.DeleteRow(row); err != nil {
			return nil, err
		}
	}

	if ctx.Drawing != nil {
		ctx.Drawing.DeleteBubbles(captured)
	}

	mapping := r.Renumber()
	if ctx.Drawing != nil {
		ctx.Drawing.ApplyNumberMapping(mapping)
	}

	ctx.Logger.Debug("rows deleted", slog.Int("count", len(rows)),
		slog.Int("remapped", len(mapping)))
	return mapping, nil
}

// Renumber is the description-based renumber pass: rows without
// description text are skipped and their char/bubble cells cleared, so
// gaps appear only where content is genuinely absent. This is the
// canonical variant.
func (r *Reconciler) Renumber() models.NumberMapping {
	return r.renumber(true)
}

// RenumberAll is the plain renumber variant: every row in the managed
// range receives a number, blank rows included. Kept for templates that
// use intentional spacer rows, and used by InsertRow so the new blank
// row is numbered.
func (r *Reconciler) RenumberAll() models.NumberMapping {
	return r.renumber(false)
}

func (r *Reconciler) renumber(byDescription bool) models.NumberMapping {
	ctx := r.ctx
	l := ctx.Layout
	last := ctx.lastDataRow()

	mapping := make(models.NumberMapping)
	counter := 0
	for row := l.FirstDataRow; row <= last; row++ {
		old := r.parseBubbleNo(row)

		if byDescription {
			desc, err := ctx.Store.CellValue(row, l.ColDescription)
			if err != nil || strings.TrimSpace(desc) == "" {
				// Placeholder row: both numbers are cleared.
				_ = ctx.Store.SetCellValue(row, l.ColCharNo, "")
				_ = ctx.Store.SetCellValue(row, l.ColBubbleNo, "")
				continue
			}
		}

		counter++
		if err := ctx.Store.SetCellValue(row, l.ColCharNo, counter); err != nil {
			ctx.Logger.Debug("char no write failed", slog.Int("row", row))
		}
		if err := ctx.Store.SetCellValue(row, l.ColBubbleNo, counter); err != nil {
			ctx.Logger.Debug("bubble no write failed", slog.Int("row", row))
		}
		if old > 0 && old != counter {
			mapping[old] = counter
		}
	}
	return mapping
}

// parseBubbleNo reads the bubble-number cell, returning 0 when it is
// absent or not a positive integer.
func (r *Reconciler) parseBubbleNo(row int) int {
	v, err := r.ctx.Store.CellValue(row, r.ctx.Layout.ColBubbleNo)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
