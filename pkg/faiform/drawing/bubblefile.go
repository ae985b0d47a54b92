package drawing

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// maxBubbleNumber caps pathological numbers and ranges.
const maxBubbleNumber = 9999

// maxUndoDepth caps the bubble-side snapshot stack.
const maxUndoDepth = 20

// Spec is one placed callout. Start == End for a single bubble; a range
// bubble covers [Start, End]. X and Y are normalized page coordinates in
// [0, 1].
type Spec struct {
	Start    int     `json:"start"`
	End      int     `json:"end"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   int     `json:"radius"`
	Backfill string  `json:"backfill,omitempty"`
}

// BubbleFile is an in-memory Drawing backed by a JSON sidecar, the same
// shape the PDF editor persists next to the drawing file.
type BubbleFile struct {
	pages    map[int][]Spec
	pending  int
	selected int
	onChange func(map[int]struct{})
	undo     [][]byte
	logger   *slog.Logger
}

// NewBubbleFile returns an empty drawing.
func NewBubbleFile(logger *slog.Logger) *BubbleFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &BubbleFile{pages: make(map[int][]Spec), pending: 1, logger: logger}
}

// sidecar is the persisted sidecar document.
type sidecar struct {
	Version int            `json:"version"`
	Pages   map[int][]Spec `json:"pages"`
}

// Load reads a sidecar file, replacing the current bubble set.
func Load(path string, logger *slog.Logger) (*BubbleFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc sidecar
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse bubble sidecar: %w", err)
	}
	b := NewBubbleFile(logger)
	if doc.Pages != nil {
		b.pages = doc.Pages
	}
	b.SetPendingToLowestAvailable()
	return b, nil
}

// Save writes the sidecar file.
func (b *BubbleFile) Save(path string) error {
	raw, err := json.MarshalIndent(sidecar{Version: 1, Pages: b.pages}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// OnChange registers a callback invoked with the expanded number set
// after any mutation.
func (b *BubbleFile) OnChange(fn func(map[int]struct{})) { b.onChange = fn }

func (b *BubbleFile) notify() {
	if b.onChange != nil {
		b.onChange(b.BubbledNumbers())
	}
}

// pushUndo snapshots the page specs before a mutation.
func (b *BubbleFile) pushUndo() {
	raw, err := json.Marshal(b.pages)
	if err != nil {
		b.logger.Warn("bubble undo snapshot skipped", slog.String("error", err.Error()))
		return
	}
	b.undo = append(b.undo, raw)
	if len(b.undo) > maxUndoDepth {
		b.undo = b.undo[len(b.undo)-maxUndoDepth:]
	}
}

// Undo restores the most recent snapshot. It reports whether a snapshot
// was available.
func (b *BubbleFile) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	raw := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	pages := make(map[int][]Spec)
	if err := json.Unmarshal(raw, &pages); err != nil {
		b.logger.Warn("bubble undo restore failed", slog.String("error", err.Error()))
		return false
	}
	b.pages = pages
	b.notify()
	return true
}

// AddBubble places a single bubble on a page.
func (b *BubbleFile) AddBubble(page, number int, x, y float64) {
	b.AddRange(page, number, number, x, y)
}

// AddRange places a range bubble covering [start, end].
func (b *BubbleFile) AddRange(page, start, end int, x, y float64) {
	if start <= 0 {
		return
	}
	if end < start {
		end = start
	}
	if end-start > maxBubbleNumber {
		end = start
	}
	b.pushUndo()
	b.pages[page] = append(b.pages[page], Spec{Start: start, End: end, X: x, Y: y, Radius: 15})
	b.sortPage(page)
	b.SetPendingToLowestAvailable()
	b.notify()
}

func (b *BubbleFile) sortPage(page int) {
	specs := b.pages[page]
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].Start != specs[j].Start {
			return specs[i].Start < specs[j].Start
		}
		return specs[i].End < specs[j].End
	})
}

// BubbledNumbers implements Drawing.
func (b *BubbleFile) BubbledNumbers() map[int]struct{} {
	out := make(map[int]struct{})
	for _, specs := range b.pages {
		for _, s := range specs {
			start, end := s.Start, s.End
			if start <= 0 {
				continue
			}
			if end < start || end-start > maxBubbleNumber {
				end = start
			}
			for n := start; n <= end; n++ {
				out[n] = struct{}{}
			}
		}
	}
	return out
}

// DeleteBubbles implements Drawing. Only single bubbles are removed;
// deleting a number out of a range callout would orphan its neighbors.
func (b *BubbleFile) DeleteBubbles(numbers []int) {
	targets := make(map[int]bool)
	for _, n := range numbers {
		if n > 0 {
			targets[n] = true
		}
	}
	if len(targets) == 0 {
		return
	}

	changed := false
	for page, specs := range b.pages {
		kept := specs[:0]
		for _, s := range specs {
			if s.Start == s.End && targets[s.Start] {
				changed = true
				continue
			}
			kept = append(kept, s)
		}
		b.pages[page] = kept
	}
	if changed {
		b.SetPendingToLowestAvailable()
		b.notify()
	}
}

// ApplyNumberMapping implements Drawing. Range endpoints are remapped
// independently; a collapsed range keeps order.
func (b *BubbleFile) ApplyNumberMapping(mapping models.NumberMapping) {
	norm := mapping.Normalized()
	if len(norm) == 0 {
		return
	}

	changed := false
	for page, specs := range b.pages {
		for i, s := range specs {
			start, end := s.Start, s.End
			if n, ok := norm[start]; ok {
				start = n
			}
			if n, ok := norm[end]; ok {
				end = n
			}
			if end < start {
				end = start
			}
			if start != s.Start || end != s.End {
				specs[i].Start = start
				specs[i].End = end
				changed = true
			}
		}
		if changed {
			b.sortPage(page)
		}
	}
	if changed {
		b.SetPendingToLowestAvailable()
		b.notify()
	}
}

// ExcludeFromRanges implements Drawing. A hole in the middle of a range
// splits it into two segments; holes at the edges shrink it.
func (b *BubbleFile) ExcludeFromRanges(numbers []int) {
	holes := make(map[int]bool)
	for _, n := range numbers {
		if n > 0 {
			holes[n] = true
		}
	}
	if len(holes) == 0 {
		return
	}

	changed := false
	for page, specs := range b.pages {
		var out []Spec
		for _, s := range specs {
			if s.Start == s.End {
				out = append(out, s)
				continue
			}
			segments := splitRange(s.Start, s.End, holes)
			if len(segments) != 1 || segments[0] != [2]int{s.Start, s.End} {
				changed = true
			}
			for i, seg := range segments {
				ns := s
				ns.Start, ns.End = seg[0], seg[1]
				// Offset re-laid segments slightly so they do not
				// overlap the original position.
				ns.Y = s.Y + float64(i)*0.02
				out = append(out, ns)
			}
		}
		b.pages[page] = out
		b.sortPage(page)
	}
	if changed {
		b.SetPendingToLowestAvailable()
		b.notify()
	}
}

// splitRange returns the maximal sub-ranges of [start, end] avoiding the
// hole numbers.
func splitRange(start, end int, holes map[int]bool) [][2]int {
	var out [][2]int
	segStart := -1
	for n := start; n <= end; n++ {
		if holes[n] {
			if segStart >= 0 {
				out = append(out, [2]int{segStart, n - 1})
				segStart = -1
			}
			continue
		}
		if segStart < 0 {
			segStart = n
		}
	}
	if segStart >= 0 {
		out = append(out, [2]int{segStart, end})
	}
	return out
}

// SelectBubble implements Drawing.
func (b *BubbleFile) SelectBubble(number int, center bool) bool {
	_, ok := b.BubbledNumbers()[number]
	if ok {
		b.selected = number
	}
	return ok
}

// Selected returns the most recently selected bubble number (0 when
// nothing is selected).
func (b *BubbleFile) Selected() int { return b.selected }

// LowestAvailable implements Drawing.
func (b *BubbleFile) LowestAvailable() int {
	existing := b.BubbledNumbers()
	n := 1
	for {
		if _, ok := existing[n]; !ok || n >= maxBubbleNumber {
			return n
		}
		n++
	}
}

// SetPendingToLowestAvailable implements Drawing.
func (b *BubbleFile) SetPendingToLowestAvailable() {
	b.pending = b.LowestAvailable()
}

// Pending returns the number primed for the next placement.
func (b *BubbleFile) Pending() int { return b.pending }

// ReferenceLocations implements Drawing.
func (b *BubbleFile) ReferenceLocations(mode RefLocationMode) map[int]string {
	switch mode {
	case RefLocNone:
		return map[int]string{}
	case RefLocPageLabel:
		out := make(map[int]string)
		for page, specs := range b.pages {
			label := fmt.Sprintf("PAGE %d", page+1)
			for _, s := range specs {
				for n := s.Start; n <= rangeEnd(s); n++ {
					out[n] = label
				}
			}
		}
		return out
	default:
		return b.sheetZones()
	}
}

// sheetZones derives "SH<n> <zone>" strings from normalized positions:
// zone rows A-D from the top, zone columns 1-8 from the left.
func (b *BubbleFile) sheetZones() map[int]string {
	out := make(map[int]string)
	for page, specs := range b.pages {
		for _, s := range specs {
			zone := zoneFor(s.X, s.Y)
			label := fmt.Sprintf("SH%d %s", page+1, zone)
			for n := s.Start; n <= rangeEnd(s); n++ {
				out[n] = label
			}
		}
	}
	return out
}

func zoneFor(x, y float64) string {
	row := int(clamp01(y) * 4)
	if row > 3 {
		row = 3
	}
	col := int(clamp01(x)*8) + 1
	if col > 8 {
		col = 8
	}
	return fmt.Sprintf("%c%d", 'A'+row, col)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rangeEnd(s Spec) int {
	if s.End < s.Start || s.End-s.Start > maxBubbleNumber {
		return s.Start
	}
	return s.End
}
