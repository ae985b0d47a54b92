// Package config loads faiform settings with layered precedence.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/faiform/faiform-go/pkg/faiform/drawing"
	"github.com/faiform/faiform-go/pkg/faiform/form3"
	"github.com/faiform/faiform-go/pkg/faiform/gdt"
)

// Config is the persisted user-facing configuration.
type Config struct {
	// SymbolMode is "font" or "unicode".
	SymbolMode string `yaml:"symbol_mode"`
	// ReferenceLocationMode is "sheet_zone", "page_label" or "none".
	ReferenceLocationMode string `yaml:"reference_location_mode"`
	// IncludeDerived admits derived thread rows into rebuilds.
	IncludeDerived bool `yaml:"include_derived"`
	// Equipment is the tooling label written on measured rows.
	Equipment string `yaml:"equipment"`
	// FirstDataRow overrides the template's first data row.
	FirstDataRow int `yaml:"first_data_row"`
	// UndoDepth caps the table snapshot stack.
	UndoDepth int `yaml:"undo_depth"`
	// Palette overrides the fill colors ("RRGGBB").
	Palette PaletteConfig `yaml:"palette"`
}

// PaletteConfig holds optional fill color overrides.
type PaletteConfig struct {
	PassGreen   string `yaml:"pass_green"`
	FailRed     string `yaml:"fail_red"`
	BonusYellow string `yaml:"bonus_yellow"`
	DerivedRed  string `yaml:"derived_red"`
	BubbleGreen string `yaml:"bubble_green"`
	BubbleRed   string `yaml:"bubble_red"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		SymbolMode:            string(gdt.ModeFont),
		ReferenceLocationMode: string(drawing.RefLocSheetZone),
		FirstDataRow:          form3.DefaultLayout().FirstDataRow,
		UndoDepth:             20,
	}
}

// LoadFromFile reads one YAML config file.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.SymbolMode != "" {
		c.SymbolMode = other.SymbolMode
	}
	if other.ReferenceLocationMode != "" {
		c.ReferenceLocationMode = other.ReferenceLocationMode
	}
	if other.IncludeDerived {
		c.IncludeDerived = true
	}
	if other.Equipment != "" {
		c.Equipment = other.Equipment
	}
	if other.FirstDataRow > 0 {
		c.FirstDataRow = other.FirstDataRow
	}
	if other.UndoDepth > 0 {
		c.UndoDepth = other.UndoDepth
	}
	mergePalette(&c.Palette, other.Palette)
}

func mergePalette(dst *PaletteConfig, src PaletteConfig) {
	if src.PassGreen != "" {
		dst.PassGreen = src.PassGreen
	}
	if src.FailRed != "" {
		dst.FailRed = src.FailRed
	}
	if src.BonusYellow != "" {
		dst.BonusYellow = src.BonusYellow
	}
	if src.DerivedRed != "" {
		dst.DerivedRed = src.DerivedRed
	}
	if src.BubbleGreen != "" {
		dst.BubbleGreen = src.BubbleGreen
	}
	if src.BubbleRed != "" {
		dst.BubbleRed = src.BubbleRed
	}
}

// Validate rejects unknown modes.
func (c *Config) Validate() error {
	switch gdt.Mode(c.SymbolMode) {
	case gdt.ModeFont, gdt.ModeUnicode:
	default:
		return fmt.Errorf("invalid symbol_mode %q", c.SymbolMode)
	}
	switch drawing.RefLocationMode(c.ReferenceLocationMode) {
	case drawing.RefLocSheetZone, drawing.RefLocPageLabel, drawing.RefLocNone:
	default:
		return fmt.Errorf("invalid reference_location_mode %q", c.ReferenceLocationMode)
	}
	if c.FirstDataRow < 2 {
		return fmt.Errorf("first_data_row must leave at least one header row, got %d", c.FirstDataRow)
	}
	return nil
}

// Options converts the configuration to reconciliation options.
func (c *Config) Options() form3.Options {
	return form3.Options{
		SymbolMode:      gdt.Mode(c.SymbolMode),
		RefLocationMode: drawing.RefLocationMode(c.ReferenceLocationMode),
		IncludeDerived:  c.IncludeDerived,
		Equipment:       c.Equipment,
	}
}

// PaletteOverride applies configured colors over the default palette.
func (c *Config) PaletteOverride() form3.Palette {
	p := form3.DefaultPalette()
	if c.Palette.PassGreen != "" {
		p.PassGreen = c.Palette.PassGreen
	}
	if c.Palette.FailRed != "" {
		p.FailRed = c.Palette.FailRed
	}
	if c.Palette.BonusYellow != "" {
		p.BonusYellow = c.Palette.BonusYellow
	}
	if c.Palette.DerivedRed != "" {
		p.DerivedRed = c.Palette.DerivedRed
	}
	if c.Palette.BubbleGreen != "" {
		p.BubbleGreen = c.Palette.BubbleGreen
	}
	if c.Palette.BubbleRed != "" {
		p.BubbleRed = c.Palette.BubbleRed
	}
	return p
}
