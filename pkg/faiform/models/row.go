package models

// FillState classifies the derived cell shading for a rendered row.
type FillState string

const (
	// FillNone leaves the template's default appearance.
	FillNone FillState = "none"
	// FillPassGreen marks an in-tolerance or passing result.
	FillPassGreen FillState = "pass-green"
	// FillFailRed marks an out-of-tolerance or missing result.
	FillFailRed FillState = "fail-red"
	// FillBasicNone marks a basic dimension; no pass/fail shading applies.
	FillBasicNone FillState = "basic-none"
	// FillDerivedRed marks a synthesized row that needs manual completion.
	FillDerivedRed FillState = "derived-red"
	// FillBonusYellow marks a bonus-tolerance dependency (MMC callout).
	FillBonusYellow FillState = "bonus-yellow"
)

// Form3Row is one rendered spreadsheet row bound to a worksheet row index.
type Form3Row struct {
	// RowIndex is the 1-based worksheet row; it shifts as rows move.
	RowIndex int
	// CharNo is the sequential characteristic number, recomputed on
	// every reconciliation pass.
	CharNo int
	// BubbleNo usually equals CharNo but may be decoupled after a
	// manual row insertion.
	BubbleNo int
	// ReferenceLocation is user-editable text that must survive
	// renumbering.
	ReferenceLocation string
	// DescriptionText is the characteristic id shown in the
	// description column.
	DescriptionText string
	// SpecificationText is the formatted tolerance string.
	SpecificationText string
	// GDTCalloutText is the assembled callout, empty when suppressed.
	GDTCalloutText string
	// UnitText is the unit of measurement.
	UnitText string
	// ResultValue is the displayed measurement result.
	ResultValue string
	// Fill is the derived shading for the result cell.
	Fill FillState
	// Bubbled reports whether the row's bubble exists on the drawing.
	Bubbled bool
}
