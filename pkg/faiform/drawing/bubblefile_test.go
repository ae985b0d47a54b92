package drawing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

func numbers(b *BubbleFile) []int {
	set := b.BubbledNumbers()
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

func TestAddRangeExpandsNumbers(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 3, 6, 0.5, 0.5)
	b.AddBubble(1, 10, 0.1, 0.1)

	assert.ElementsMatch(t, []int{3, 4, 5, 6, 10}, numbers(b))
	assert.Equal(t, 1, b.Pending())
}

func TestAddRangeRejectsInvalid(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 0, 5, 0.5, 0.5)
	assert.Empty(t, numbers(b))

	// Inverted and oversized ranges collapse to a single bubble.
	b.AddRange(0, 7, 2, 0.5, 0.5)
	assert.ElementsMatch(t, []int{7}, numbers(b))
}

func TestDeleteBubblesSkipsRanges(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddBubble(0, 1, 0.1, 0.1)
	b.AddRange(0, 2, 4, 0.5, 0.5)

	b.DeleteBubbles([]int{1, 3})

	// The single bubble goes; 3 stays because it belongs to a range.
	assert.ElementsMatch(t, []int{2, 3, 4}, numbers(b))
	assert.Equal(t, 1, b.Pending())
}

func TestApplyNumberMappingRemapsEndpoints(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddBubble(0, 6, 0.1, 0.1)
	b.AddRange(0, 7, 10, 0.5, 0.5)

	b.ApplyNumberMapping(models.NumberMapping{6: 5, 7: 6, 8: 7, 9: 8, 10: 9})

	assert.ElementsMatch(t, []int{5, 6, 7, 8, 9}, numbers(b))
}

func TestApplyNumberMappingIgnoresIdentity(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddBubble(0, 3, 0.1, 0.1)
	notified := false
	b.OnChange(func(map[int]struct{}) { notified = true })

	b.ApplyNumberMapping(models.NumberMapping{3: 3})
	assert.False(t, notified)
	assert.ElementsMatch(t, []int{3}, numbers(b))
}

func TestExcludeFromRangesSplitsMiddle(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 1, 5, 0.5, 0.5)

	b.ExcludeFromRanges([]int{3})

	assert.ElementsMatch(t, []int{1, 2, 4, 5}, numbers(b))
	specs := b.pages[0]
	require.Len(t, specs, 2)
	assert.Equal(t, [2]int{1, 2}, [2]int{specs[0].Start, specs[0].End})
	assert.Equal(t, [2]int{4, 5}, [2]int{specs[1].Start, specs[1].End})
}

func TestExcludeFromRangesShrinksEdges(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 1, 4, 0.5, 0.5)

	b.ExcludeFromRanges([]int{1, 4})

	specs := b.pages[0]
	require.Len(t, specs, 1)
	assert.Equal(t, 2, specs[0].Start)
	assert.Equal(t, 3, specs[0].End)
}

func TestExcludeFromRangesLeavesSingles(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddBubble(0, 2, 0.1, 0.1)

	b.ExcludeFromRanges([]int{2})

	assert.ElementsMatch(t, []int{2}, numbers(b))
}

func TestLowestAvailableSkipsUsed(t *testing.T) {
	b := NewBubbleFile(nil)
	assert.Equal(t, 1, b.LowestAvailable())

	b.AddRange(0, 1, 3, 0.5, 0.5)
	assert.Equal(t, 4, b.LowestAvailable())

	b.AddBubble(0, 5, 0.1, 0.1)
	assert.Equal(t, 4, b.LowestAvailable())
	assert.Equal(t, 4, b.Pending())
}

func TestSelectBubble(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 2, 4, 0.5, 0.5)

	assert.True(t, b.SelectBubble(3, true))
	assert.Equal(t, 3, b.Selected())
	assert.False(t, b.SelectBubble(9, false))
	assert.Equal(t, 3, b.Selected())
}

func TestUndoRestoresPreviousState(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddBubble(0, 1, 0.1, 0.1)
	b.AddBubble(0, 2, 0.2, 0.2)

	require.True(t, b.Undo())
	assert.ElementsMatch(t, []int{1}, numbers(b))

	require.True(t, b.Undo())
	assert.Empty(t, numbers(b))
	assert.False(t, b.Undo())
}

func TestUndoDepthCapped(t *testing.T) {
	b := NewBubbleFile(nil)
	for n := 1; n <= maxUndoDepth+5; n++ {
		b.AddBubble(0, n, 0.1, 0.1)
	}
	undone := 0
	for b.Undo() {
		undone++
	}
	assert.Equal(t, maxUndoDepth, undone)
}

func TestSidecarRoundTrip(t *testing.T) {
	b := NewBubbleFile(nil)
	b.AddRange(0, 1, 3, 0.25, 0.75)
	b.AddBubble(1, 7, 0.9, 0.1)

	path := filepath.Join(t.TempDir(), "drawing.bubbles.json")
	require.NoError(t, b.Save(path))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, numbers(b), numbers(loaded))
	assert.Equal(t, 4, loaded.Pending())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	assert.Error(t, err)
}

func TestReferenceLocations(t *testing.T) {
	b := NewBubbleFile(nil)
	// Top-left quadrant of page 1 and bottom-right of page 2.
	b.AddBubble(0, 1, 0.05, 0.05)
	b.AddBubble(1, 2, 0.95, 0.95)

	zones := b.ReferenceLocations(RefLocSheetZone)
	assert.Equal(t, "SH1 A1", zones[1])
	assert.Equal(t, "SH2 D8", zones[2])

	labels := b.ReferenceLocations(RefLocPageLabel)
	assert.Equal(t, "PAGE 1", labels[1])
	assert.Equal(t, "PAGE 2", labels[2])

	assert.Empty(t, b.ReferenceLocations(RefLocNone))
}
