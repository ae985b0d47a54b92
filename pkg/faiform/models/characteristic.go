// Package models defines the data records shared across the FAI engine.
package models

// Source marks where a characteristic originated.
type Source string

const (
	// SourceMeasured marks rows imported from a CMM measurement export.
	SourceMeasured Source = "measured"
	// SourceDerived marks rows synthesized by post-processing, such as
	// thread Go/No-Go and minor diameter checks.
	SourceDerived Source = "derived"
)

// Characteristic is one measured or derived inspection requirement.
// Instances are created by the CMM parser (or thread expansion) and are
// consumed read-only by the row renderer.
type Characteristic struct {
	// ID is the stable identifier from the CMM export.
	ID string
	// FeatureName is the feature the characteristic was measured on.
	FeatureName string
	// Description is the formatted tolerance/requirement string.
	Description string
	// Actual is the measured value, numeric or categorical ("Pass"/"Fail").
	Actual string
	// Nominal is the nominal value as exported.
	Nominal string
	// UpperTol is the upper tolerance as exported.
	UpperTol string
	// LowerTol is the lower tolerance as exported.
	LowerTol string
	// Type is the free-text GD&T/dimension category.
	Type string
	// Unit is the unit of measurement, when present.
	Unit string
	// Group1 is the reference-location hint from the export.
	Group1 string
	// SymbolID is the exporter's symbol identifier (e.g. a position
	// callout decomposition suffix ends in "X" or "Z").
	SymbolID string
	// MMC is non-empty when the callout carries a maximum material
	// condition modifier.
	MMC string
	// DatumA, DatumB and DatumC are datum letter references.
	DatumA string
	DatumB string
	DatumC string
	// Source marks measured versus derived rows.
	Source Source
	// IsThread is true for thread features.
	IsThread bool
	// IsAttribute selects the categorical (Pass/Fail) evaluation path.
	IsAttribute bool
	// Comment is the note/comment text from the export, when present.
	Comment string
	// Equipment is the tooling/equipment label written for measured rows.
	Equipment string
}

// Datums returns the datum letters in first-appearance order with
// duplicates removed.
func (c Characteristic) Datums() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range []string{c.DatumA, c.DatumB, c.DatumC} {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
