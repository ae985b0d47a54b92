package form3

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/drawing"
	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// Synchronizer reconciles the table's bubble-number coloring and
// reference-location text against the drawing's live bubble set.
type Synchronizer struct {
	ctx *Context
}

// NewSynchronizer returns a synchronizer bound to the context.
func NewSynchronizer(ctx *Context) *Synchronizer {
	return &Synchronizer{ctx: ctx}
}

// Sync recolors every managed row against the drawing's current bubble
// set. When the drawing reference is absent (startup ordering races)
// the call is a no-op, not an error; callers retry once both sides are
// loaded.
func (s *Synchronizer) Sync() {
	if s.ctx.Drawing == nil {
		s.ctx.Logger.Debug("bubble sync skipped: no drawing loaded")
		return
	}
	locs := s.ctx.Drawing.ReferenceLocations(s.ctx.Options.RefLocationMode)
	s.SyncWith(s.ctx.Drawing.BubbledNumbers(), locs)
}

// SyncWith applies red/green bubble coloring for an explicit number set
// and location map. Rows whose number is bubbled turn green; missing
// numbers turn red and any stale drawing-derived location is cleared.
func (s *Synchronizer) SyncWith(bubbled map[int]struct{}, locs map[int]string) {
	ctx := s.ctx
	l := ctx.Layout
	writeLocations := ctx.Options.RefLocationMode != drawing.RefLocNone

	last := ctx.lastDataRow()
	for row := l.FirstDataRow; row <= last; row++ {
		v, err := ctx.Store.CellValue(row, l.ColBubbleNo)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			continue
		}

		if _, ok := bubbled[n]; ok {
			ctx.setFill(row, l.ColBubbleNo, ctx.Palette.BubbleGreen)
			if writeLocations {
				if loc, ok := locs[n]; ok && loc != "" {
					if err := ctx.Store.SetCellValue(row, l.ColRefLocation, loc); err == nil {
						ctx.setFill(row, l.ColRefLocation, ctx.Palette.BubbleGreen)
					}
				}
			} else {
				// Location text is disabled; clear anything the
				// drawing wrote previously.
				_ = ctx.Store.SetCellValue(row, l.ColRefLocation, "")
			}
			continue
		}

		// No callout placed for this row yet.
		_ = ctx.Store.SetCellValue(row, l.ColRefLocation, "")
		ctx.setFill(row, l.ColBubbleNo, ctx.Palette.BubbleRed)
		ctx.setFill(row, l.ColRefLocation, ctx.Palette.BubbleRed)
	}

	ctx.Logger.Debug("bubble sync complete", slog.Int("bubbled", len(bubbled)))
}

// ApplyNumberMapping forwards a renumber mapping to the drawing so its
// placed callouts stay correlated with table rows. Safe with no drawing
// loaded.
func (s *Synchronizer) ApplyNumberMapping(mapping models.NumberMapping) {
	if s.ctx.Drawing == nil {
		return
	}
	s.ctx.Drawing.ApplyNumberMapping(mapping)
}

// NextAvailableNumber asks the drawing for the lowest unused bubble
// number for an upcoming placement. Without a drawing it returns 1.
func (s *Synchronizer) NextAvailableNumber() int {
	if s.ctx.Drawing == nil {
		return 1
	}
	return s.ctx.Drawing.LowestAvailable()
}
