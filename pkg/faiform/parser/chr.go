// Package parser reads CMM measurement exports into characteristic
// records.
package parser

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// ParseFile reads a tab-delimited CHR export and returns the parsed
// characteristics, including derived thread rows appended by
// ExpandThreads.
func ParseFile(path string) ([]models.Characteristic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chr export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	// Malformed lines are skipped rather than failing the import.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read chr export: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := normalizeHeader(records[0])
	cols := indexColumns(header)

	var chars []models.Characteristic
	for i, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		c, ok := parseRecord(rec, cols)
		if !ok {
			slog.Debug("skipping malformed chr line", slog.Int("line", i+2))
			continue
		}
		chars = append(chars, c)
	}

	return ExpandThreads(chars), nil
}

// columnIndex maps export column names to positions in each record.
type columnIndex struct {
	id, featureID, comment, typ              int
	actual, nominal, upperTol, lowerTol      int
	symbolID, mmc, datumA, datumB, datumC    int
	unit, group1                             int
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

func indexColumns(header []string) columnIndex {
	find := func(names ...string) int {
		for _, n := range names {
			for i, h := range header {
				if h == n {
					return i
				}
			}
		}
		return -1
	}

	idx := columnIndex{
		id:        find("id"),
		featureID: find("featureid"),
		comment:   find("comment"),
		typ:       find("type"),
		actual:    find("actual"),
		nominal:   find("nominal"),
		upperTol:  find("uppertol"),
		lowerTol:  find("lowertol"),
		symbolID:  find("idsymbol"),
		mmc:       find("mmc"),
		datumA:    find("datumaid"),
		datumB:    find("datumbid"),
		datumC:    find("datumcid"),
	}
	idx.unit = inferUnitColumn(header)
	idx.group1 = inferGroupColumn(header)
	return idx
}

// inferUnitColumn discovers a unit column. Exports are inconsistent about
// the header, so direct candidates are tried before a fuzzy match.
func inferUnitColumn(header []string) int {
	direct := []string{
		"unit", "uom", "unitofmeasure", "unitofmeasurement",
		"unit of measure", "unit of measurement",
	}
	for _, name := range direct {
		for i, h := range header {
			if h == name {
				return i
			}
		}
	}
	for i, h := range header {
		if strings.Contains(h, "unit") &&
			(strings.Contains(h, "measure") || strings.Contains(h, "measurement")) {
			return i
		}
	}
	return -1
}

func inferGroupColumn(header []string) int {
	direct := []string{"group1", "group 1", "group", "grp1", "grp 1"}
	for _, name := range direct {
		for i, h := range header {
			if h == name {
				return i
			}
		}
	}
	for i, h := range header {
		if strings.ReplaceAll(h, " ", "") == "group1" {
			return i
		}
	}
	return -1
}

func parseRecord(rec []string, cols columnIndex) (models.Characteristic, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		// Numeric-parser artifacts arrive as literal "nan".
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	id := get(cols.id)
	featureID := get(cols.featureID)
	comment := get(cols.comment)
	if id == "" && featureID == "" {
		return models.Characteristic{}, false
	}

	c := models.Characteristic{
		ID:          id,
		FeatureName: featureID,
		Actual:      get(cols.actual),
		Nominal:     get(cols.nominal),
		UpperTol:    get(cols.upperTol),
		LowerTol:    get(cols.lowerTol),
		Type:        get(cols.typ),
		Unit:        get(cols.unit),
		Group1:      get(cols.group1),
		SymbolID:    get(cols.symbolID),
		MMC:         get(cols.mmc),
		DatumA:      get(cols.datumA),
		DatumB:      get(cols.datumB),
		DatumC:      get(cols.datumC),
		Source:      models.SourceMeasured,
		Comment:     comment,
	}
	c.IsThread = IsThread(id) || IsThread(featureID) || IsThread(comment)
	c.IsAttribute = strings.EqualFold(c.Type, "attribute")
	c.Description = FormatRequirement(c.Nominal, c.UpperTol, c.LowerTol, c.Type)
	return c, true
}
