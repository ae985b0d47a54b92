// Package gdt builds display callout strings for geometric tolerances.
package gdt

import "strings"

// Mode selects how GD&T symbols are rendered.
type Mode string

const (
	// ModeFont maps categories to single-letter codes for a GD&T
	// symbol font.
	ModeFont Mode = "font"
	// ModeUnicode maps categories to Unicode GD&T glyphs.
	ModeUnicode Mode = "unicode"
)

// category pairs a lookup keyword with its font code and Unicode glyph.
// Entries are matched longest-keyword-first so that, for example,
// "profile of a line" wins over "profile".
type category struct {
	keyword string
	font    string
	unicode string
}

// categories is ordered by descending keyword length.
var categories = []category{
	{"profile of a surface", "d", "⌓"},
	{"profile of a line", "k", "⌒"},
	{"perpendicularity", "b", "⟂"},
	{"circular runout", "h", "↗"},
	{"total runout", "t", "⌰"},
	{"concentricity", "r", "◎"},
	{"cylindricity", "g", "⌭"},
	{"straightness", "u", "⏤"},
	{"parallelism", "f", "∥"},
	{"countersink", "w", "⌵"},
	{"counterbore", "v", "⌴"},
	{"circularity", "e", "○"},
	{"angularity", "a", "∠"},
	{"roundness", "e", "○"},
	{"symmetry", "i", "⌯"},
	{"position", "j", "⌖"},
	{"flatness", "c", "⏥"},
	{"profile", "d", "⌓"},
	{"runout", "h", "↗"},
}

// passthroughFontCodes are returned verbatim in font mode: they are
// symbol-only callouts with no numeric tolerance to assemble.
var passthroughFontCodes = map[string]bool{"v": true, "w": true}

const (
	mmcFont    = "m"
	mmcUnicode = "Ⓜ"
)

// ResolveSymbol maps free-text category text to a display symbol for the
// given mode. It returns "" when no category matches.
func ResolveSymbol(text string, mode Mode) string {
	low := strings.ToLower(text)
	for _, c := range categories {
		if strings.Contains(low, c.keyword) {
			if mode == ModeUnicode {
				return c.unicode
			}
			return c.font
		}
	}
	return ""
}

// MMCGlyph returns the maximum-material-condition modifier for the mode.
func MMCGlyph(mode Mode) string {
	if mode == ModeUnicode {
		return mmcUnicode
	}
	return mmcFont
}
