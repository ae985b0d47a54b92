package gdt

import (
	"regexp"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// Delimiter separates callout tokens in the assembled string. The result
// is a parseable, font-rendering-friendly encoding rather than true
// GD&T typesetting.
const Delimiter = "|"

// sizeDimensionTypes never carry a frame callout even when their symbol
// id superficially resembles a GD&T marker.
var sizeDimensionTypes = map[string]bool{
	"diameter": true,
	"radius":   true,
	"distance": true,
	"length":   true,
	"width":    true,
	"angle":    true,
}

// gdtMarkerPrefixes are symbol-id prefixes emitted by the CMM software
// for characteristics that own a geometric tolerance frame.
var gdtMarkerPrefixes = []string{
	"POS", "FLT", "PER", "PRF", "PAR", "ANG",
	"STR", "CIR", "CYL", "RUN", "SYM", "CON",
}

var firstNumberRe = regexp.MustCompile(`\d*\.\d+|\d+`)

// Eligible reports whether a characteristic can carry a callout at all.
// Component decompositions of a callout (symbol ids ending in "X" or
// "Z") and pure size dimensions are excluded.
func Eligible(c models.Characteristic) bool {
	sym := strings.ToUpper(strings.TrimSpace(c.SymbolID))
	if sym != "" && (strings.HasSuffix(sym, "X") || strings.HasSuffix(sym, "Z")) {
		return false
	}
	typ := strings.ToLower(strings.TrimSpace(c.Type))
	if sizeDimensionTypes[typ] {
		return false
	}
	for _, p := range gdtMarkerPrefixes {
		if strings.HasPrefix(sym, p) {
			return true
		}
	}
	return ResolveSymbol(c.Type, ModeFont) != ""
}

// BuildCallout assembles the display callout for a characteristic, or ""
// when the row is not eligible or no category matches.
//
// The assembled string joins symbol+tolerance+modifier as one token and
// each datum letter as an additional token, e.g. "j.014m|A|B|C".
func BuildCallout(c models.Characteristic, mode Mode) string {
	if !Eligible(c) {
		return ""
	}

	// Resolve the symbol from the free-text type first, falling back to
	// the symbol id when the type is uninformative.
	sym := ResolveSymbol(c.Type, mode)
	if sym == "" {
		sym = ResolveSymbol(c.SymbolID, mode)
	}
	if sym == "" {
		return ""
	}

	if mode == ModeFont && passthroughFontCodes[sym] {
		return sym
	}

	tol := firstNumberRe.FindString(c.Description)
	if tol == "" {
		tol = strings.TrimSpace(c.Description)
	}

	frame := sym + tol
	if HasMMC(c) {
		frame += MMCGlyph(mode)
	}

	datums := c.Datums()
	if len(datums) == 0 {
		datums = []string{"A", "B", "C"}
	}
	if len(datums) > 3 {
		datums = datums[:3]
	}

	return strings.Join(append([]string{frame}, datums...), Delimiter)
}

// HasMMC reports whether the characteristic carries a maximum material
// condition modifier. Callers use this to flag the bonus tolerance
// column in addition to the callout glyph.
func HasMMC(c models.Characteristic) bool {
	v := strings.ToLower(strings.TrimSpace(c.MMC))
	switch v {
	case "", "0", "false", "no", "none":
		return false
	}
	return true
}
