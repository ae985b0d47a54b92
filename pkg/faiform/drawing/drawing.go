// Package drawing models the engineering drawing's bubble callouts.
package drawing

import "github.com/faiform/faiform-go/pkg/faiform/models"

// RefLocationMode selects how reference-location text is derived.
type RefLocationMode string

const (
	// RefLocSheetZone reports "SH<n> <zone>" grid locations.
	RefLocSheetZone RefLocationMode = "sheet_zone"
	// RefLocPageLabel reports "PAGE <n>" labels.
	RefLocPageLabel RefLocationMode = "page_label"
	// RefLocNone disables reference-location text; bubble coloring
	// still applies.
	RefLocNone RefLocationMode = "none"
)

// Drawing is the bubble-editor collaborator contract. Implementations
// own bubble placement; the Form 3 engine only reads the number set and
// pushes renumber/delete effects back.
type Drawing interface {
	// BubbledNumbers returns every placed callout number across all
	// pages, with range bubbles expanded.
	BubbledNumbers() map[int]struct{}
	// DeleteBubbles removes single-number bubbles matching the given
	// numbers. Range bubbles are left intact.
	DeleteBubbles(numbers []int)
	// ApplyNumberMapping renumbers placed callouts after a Form 3
	// renumber pass.
	ApplyNumberMapping(mapping models.NumberMapping)
	// ExcludeFromRanges splits range bubbles so the given numbers are
	// no longer covered by any range.
	ExcludeFromRanges(numbers []int)
	// SelectBubble highlights a callout, optionally centering the view.
	// It reports whether the number exists on the drawing.
	SelectBubble(number int, center bool) bool
	// LowestAvailable returns the lowest unused bubble number.
	LowestAvailable() int
	// SetPendingToLowestAvailable primes the next placement number.
	SetPendingToLowestAvailable()
	// ReferenceLocations returns per-number location text for the mode;
	// RefLocNone yields an empty map.
	ReferenceLocations(mode RefLocationMode) map[int]string
}
