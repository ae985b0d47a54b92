package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

func writeChr(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.chr")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatalf("write chr file: %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	path := writeChr(t, []string{
		"ID\tFeatureID\tComment\tType\tActual\tNominal\tUpperTol\tLowerTol\tIdSymbol\tMMC\tDatumAId\tDatumBId\tDatumCId\tUnit of Measurement\tGroup1",
		"DIM001\tBore\t\tDiameter\t0.5012\t0.5000\t0.0050\t-0.0050\t\t\t\t\t\tin\tZONE-2",
		"POS002\tHole Pattern\t\tPosition\t0.0080\t0.0000\t0.0140\t0.0000\tPOS1\t1\tA\tB\tC\tin\t",
	})

	chars, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("expected 2 characteristics, got %d", len(chars))
	}

	dim := chars[0]
	if dim.ID != "DIM001" {
		t.Errorf("expected id DIM001, got %q", dim.ID)
	}
	if dim.Unit != "in" {
		t.Errorf("expected inferred unit column, got %q", dim.Unit)
	}
	if dim.Group1 != "ZONE-2" {
		t.Errorf("expected group1 ZONE-2, got %q", dim.Group1)
	}
	if dim.Description != ".5000 +/- .0050" {
		t.Errorf("unexpected requirement string %q", dim.Description)
	}
	if dim.Source != models.SourceMeasured {
		t.Errorf("expected measured source, got %q", dim.Source)
	}

	pos := chars[1]
	if pos.SymbolID != "POS1" || pos.MMC != "1" {
		t.Errorf("GD&T metadata not carried: symbol=%q mmc=%q", pos.SymbolID, pos.MMC)
	}
	if pos.DatumA != "A" || pos.DatumB != "B" || pos.DatumC != "C" {
		t.Errorf("datums not carried: %q %q %q", pos.DatumA, pos.DatumB, pos.DatumC)
	}
	if pos.Description != ".0140 MAX" {
		t.Errorf("unexpected position requirement %q", pos.Description)
	}
}

func TestParseFileSkipsMalformedAndNan(t *testing.T) {
	path := writeChr(t, []string{
		"ID\tFeatureID\tType\tActual\tNominal\tUpperTol\tLowerTol",
		"DIM001\tBore\tDiameter\t0.5\t0.5\t0.005\t-0.005",
		"\t\t\t\t\t\t",
		"DIM002\tFace\tDistance\tnan\t1.0\t0.01\t-0.01",
	})

	chars, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("expected 2 characteristics (blank line skipped), got %d", len(chars))
	}
	if chars[1].Actual != "" {
		t.Errorf("expected nan actual normalized to empty, got %q", chars[1].Actual)
	}
}

func TestExpandThreads(t *testing.T) {
	chars := []models.Characteristic{
		{
			ID:          "THR001",
			FeatureName: "M6x1 Tapped Hole",
			Description: ".2362 +/- .0050",
			Unit:        "in",
			Group1:      "ZONE-4",
			Source:      models.SourceMeasured,
			IsThread:    true,
		},
	}

	expanded := ExpandThreads(chars)
	if len(expanded) != 3 {
		t.Fatalf("expected thread + 2 derived rows, got %d", len(expanded))
	}

	gng := expanded[1]
	if gng.ID != "THR001_GNG" || gng.Source != models.SourceDerived || !gng.IsAttribute {
		t.Errorf("unexpected Go/No Go row: %+v", gng)
	}
	if gng.Group1 != "ZONE-4" {
		t.Errorf("derived row should inherit group1, got %q", gng.Group1)
	}

	minor := expanded[2]
	if minor.ID != "THR001_MIN" || minor.Description != "Minor Diameter Check" {
		t.Errorf("unexpected minor dia row: %+v", minor)
	}
}

func TestExpandThreadsSkipsExistingMinor(t *testing.T) {
	chars := []models.Characteristic{
		{
			ID:          "THR001",
			FeatureName: "M6x1 Tapped Hole",
			Source:      models.SourceMeasured,
			IsThread:    true,
		},
		{
			ID:          "THR001_MINOR",
			FeatureName: "M6x1 Minor Dia",
			Source:      models.SourceMeasured,
			IsThread:    true,
		},
	}

	expanded := ExpandThreads(chars)
	for _, c := range expanded {
		if c.ID == "THR001_MIN" {
			t.Fatalf("minor dia should not be synthesized when one exists")
		}
	}
}
