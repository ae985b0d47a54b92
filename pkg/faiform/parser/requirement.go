package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// basicTolerance is the sentinel tolerance magnitude exporters use for
// basic dimensions.
const basicTolerance = 990

// FormatRequirement renders the nominal/tolerance triple into the
// specification string shown in Form 3.
func FormatRequirement(nominal, upper, lower, typeStr string) string {
	nom, err1 := strconv.ParseFloat(strings.TrimSpace(nominal), 64)
	up, err2 := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	low, err3 := strconv.ParseFloat(strings.TrimSpace(lower), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return strings.TrimSpace(nominal)
	}

	// Basic dimension: show the bare value, no brackets.
	if math.Abs(up) >= basicTolerance && math.Abs(low) >= basicTolerance {
		return stripLeadingZero(nom)
	}

	// Zero-nominal GD&T zone: the requirement is the upper tolerance.
	if nom == 0 && up > 0 && low == 0 {
		return stripLeadingZero(up) + " MAX"
	}

	// Bilateral tolerance.
	if math.Abs(up) == math.Abs(low) && up != 0 {
		return fmt.Sprintf("%s +/- %s", stripLeadingZero(nom), stripLeadingZero(up))
	}

	// Unilateral / unequal tolerance.
	if up != 0 || low != 0 {
		lowStr := "+" + stripLeadingZero(low)
		if low <= 0 {
			lowStr = "-" + stripLeadingZero(math.Abs(low))
		}
		return fmt.Sprintf("%s +%s/%s", stripLeadingZero(nom), stripLeadingZero(up), lowStr)
	}

	return stripLeadingZero(nom)
}

// stripLeadingZero formats a value to four decimals without a leading
// zero before the decimal point (0.1234 -> ".1234"), the drawing-note
// convention for inch dimensions.
func stripLeadingZero(v float64) string {
	if v == 0 {
		return ".0000"
	}
	s := fmt.Sprintf("%.4f", math.Abs(v))
	return strings.TrimPrefix(s, "0")
}
