package parser

import (
	"regexp"
	"strings"

	"github.com/faiform/faiform-go/pkg/faiform/models"
)

// threadRe matches thread designations in ids, feature names and
// comments (metric M6/M6x1, unified series, pipe threads, ACME, ...).
var threadRe = regexp.MustCompile(`(?i)\bM\d+(?:x\d+)?\b|\bUN\b|\bUNC\b|\bUNF\b|\bUNEF\b|\bUNJ\b|\bUNJC\b|\bUNJF\b|\bNPT\b|\bNPTF\b|\bBSP\b|\bBSPT\b|\bSTI\b|\bACME\b|\bSTUB ACME\b|\bWHITWORTH\b`)

// IsThread reports whether the text names a thread feature.
func IsThread(text string) bool {
	if text == "" {
		return false
	}
	return threadRe.MatchString(text)
}

// ExpandThreads appends derived Go/No-Go and minor diameter checks after
// each thread characteristic that lacks them. Derived rows are attribute
// rows the inspector completes by hand.
func ExpandThreads(chars []models.Characteristic) []models.Characteristic {
	expanded := make([]models.Characteristic, 0, len(chars))

	for _, c := range chars {
		expanded = append(expanded, c)
		if !c.IsThread || c.IsAttribute {
			continue
		}

		expanded = append(expanded, models.Characteristic{
			ID:          c.ID + "_GNG",
			FeatureName: c.FeatureName + " Go/No Go",
			Description: "Thread Attribute",
			Nominal:     "Pass",
			Type:        "Attribute",
			Unit:        c.Unit,
			Group1:      c.Group1,
			Source:      models.SourceDerived,
			IsAttribute: true,
			IsThread:    true,
		})

		if !hasMinorDia(c, chars) {
			expanded = append(expanded, models.Characteristic{
				ID:          c.ID + "_MIN",
				FeatureName: c.FeatureName + " Minor Dia",
				Description: "Minor Diameter Check",
				Type:        "Attribute",
				Unit:        c.Unit,
				Group1:      c.Group1,
				Source:      models.SourceDerived,
				IsAttribute: true,
				IsThread:    true,
			})
		}
	}

	return expanded
}

// hasMinorDia reports whether a minor diameter check already exists for
// the thread, either on the thread row itself or as a related row.
func hasMinorDia(thread models.Characteristic, chars []models.Characteristic) bool {
	if containsMinor(thread.FeatureName) || containsMinor(thread.ID) {
		return true
	}
	for _, other := range chars {
		if other.ID == thread.ID && other.FeatureName == thread.FeatureName {
			continue
		}
		if !containsMinor(other.FeatureName) && !containsMinor(other.ID) {
			continue
		}
		if thread.ID != "" && strings.Contains(strings.ToLower(other.ID), strings.ToLower(thread.ID)) {
			return true
		}
		if thread.FeatureName != "" && strings.Contains(strings.ToLower(other.FeatureName), strings.ToLower(thread.FeatureName)) {
			return true
		}
	}
	return false
}

func containsMinor(s string) bool {
	return strings.Contains(strings.ToLower(s), "minor")
}
