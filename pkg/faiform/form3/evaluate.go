package form3

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// tolEpsilon absorbs floating rounding at the tolerance limits.
const tolEpsilon = 1e-6

// unboundedTolerance marks basic-equivalent dimensions: at or above this
// upper tolerance no pass/fail shading applies.
const unboundedTolerance = 990

// IsBasic reports whether the characteristic is a basic dimension. The
// word is looked for across the id, description, comment and feature
// name, case-insensitively, and overrides all other evaluation.
func IsBasic(c models.Characteristic) bool {
	joined := strings.ToLower(strings.Join([]string{
		c.ID, c.Description, c.Comment, c.FeatureName,
	}, " "))
	return strings.Contains(joined, "basic")
}

// Evaluate computes the displayed result and fill classification for a
// characteristic.
func Evaluate(c models.Characteristic) (string, models.FillState) {
	if IsBasic(c) {
		return "NA", models.FillBasicNone
	}

	// Derived rows are flagged for manual completion regardless of the
	// pass/fail path.
	if c.Source == models.SourceDerived {
		return c.Actual, models.FillDerivedRed
	}

	if c.IsAttribute {
		if strings.EqualFold(strings.TrimSpace(c.Actual), "pass") {
			return c.Actual, models.FillPassGreen
		}
		return c.Actual, models.FillFailRed
	}

	actual, err := strconv.ParseFloat(strings.TrimSpace(c.Actual), 64)
	if err != nil {
		// Missing measurement reads as a failure; other non-numeric
		// values pass through untouched.
		if strings.TrimSpace(c.Actual) == "" {
			return "", models.FillFailRed
		}
		return c.Actual, models.FillNone
	}

	display := fmt.Sprintf("%.4f", math.Abs(actual))

	nominal, _ := strconv.ParseFloat(strings.TrimSpace(c.Nominal), 64)
	upper := parseTol(c.UpperTol)
	lower := parseTol(c.LowerTol)

	// Bounds are evaluated in absolute-value space: exports sign
	// deviations by probe direction, not by requirement.
	if math.Abs(upper) >= unboundedTolerance {
		return display, models.FillNone
	}
	limitHigh := math.Abs(nominal) + upper
	limitLow := math.Abs(nominal) + lower
	if math.Abs(actual) > limitHigh+tolEpsilon || math.Abs(actual) < limitLow-tolEpsilon {
		return display, models.FillFailRed
	}
	return display, models.FillPassGreen
}

func parseTol(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
