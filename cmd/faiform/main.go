// Package main provides the faiform CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/faiform/faiform-go/pkg/faiform/config"
	"github.com/faiform/faiform-go/pkg/faiform/drawing"
	"github.com/faiform/faiform-go/pkg/faiform/form3"
	"github.com/faiform/faiform-go/pkg/faiform/parser"
	"github.com/faiform/faiform-go/pkg/faiform/report"
)

var (
	templatePath string
	outputPath   string
	notesPath    string
	sidecarPath  string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "faiform",
		Short: "Build AS9102 First Article Inspection packages",
		Long: `faiform imports CMM measurement exports, populates the Form 3
characteristic table of an FAI template, and keeps characteristic rows
consistent with the drawing's bubble callouts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newGenerateCmd(), newRenumberCmd(), newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [export.chr]",
		Short: "Populate a Form 3 template from a CMM export",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "FAI template workbook (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path (required)")
	cmd.Flags().StringVar(&notesPath, "notes", "", "Text file of drawing notes to append")
	cmd.Flags().StringVar(&sidecarPath, "bubbles", "", "Bubble sidecar JSON from the drawing editor")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	chrPath := args[0]
	if _, err := os.Stat(chrPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", chrPath)
	}

	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return err
	}

	chars, err := parser.ParseFile(chrPath)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	slog.Info("parsed CMM export", slog.Int("characteristics", len(chars)))

	dw := loadDrawing()
	gen, err := report.NewGenerator(templatePath, dw, slog.Default())
	if err != nil {
		return err
	}
	defer gen.Close()
	applyConfig(gen.Context(), cfg)

	notes := ""
	if notesPath != "" {
		raw, err := os.ReadFile(notesPath)
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		notes = string(raw)
	}

	if err := gen.Generate(chars, outputPath, notes); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outputPath)
	return nil
}

func newRenumberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renumber [workbook.xlsx]",
		Short: "Re-densify char/bubble numbers in an edited workbook",
		Long: `renumber walks the Form 3 data rows and rewrites char and bubble
numbers as a dense 1..N sequence, skipping rows without description
text. The old-to-new mapping is printed and, when a bubble sidecar is
given, applied to the drawing's callouts.`,
		Args: cobra.ExactArgs(1),
		RunE: runRenumber,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path (default: in place)")
	cmd.Flags().StringVar(&sidecarPath, "bubbles", "", "Bubble sidecar JSON to renumber alongside")
	return cmd
}

func runRenumber(cmd *cobra.Command, args []string) error {
	wbPath := args[0]
	dw := loadDrawing()

	gen, err := report.NewGenerator(wbPath, dw, slog.Default())
	if err != nil {
		return err
	}
	defer gen.Close()

	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return err
	}
	applyConfig(gen.Context(), cfg)

	rec := form3.NewReconciler(gen.Context())
	mapping := rec.Renumber()
	form3.NewSynchronizer(gen.Context()).ApplyNumberMapping(mapping)
	form3.NewSynchronizer(gen.Context()).Sync()

	olds := make([]int, 0, len(mapping))
	for old := range mapping {
		olds = append(olds, old)
	}
	sort.Ints(olds)
	for _, old := range olds {
		fmt.Printf("%d -> %d\n", old, mapping[old])
	}

	if sidecarPath != "" {
		if bf, ok := dw.(*drawing.BubbleFile); ok {
			if err := bf.Save(sidecarPath); err != nil {
				return err
			}
		}
	}

	out := outputPath
	if out == "" {
		out = wbPath
	}
	return gen.Context().Store.Save(out)
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [export.chr]",
		Short: "Regenerate the report whenever the CMM export changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "FAI template workbook (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path (required)")
	cmd.Flags().StringVar(&sidecarPath, "bubbles", "", "Bubble sidecar JSON from the drawing editor")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	chrPath := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files rather than writing in
	// place, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(chrPath)); err != nil {
		return err
	}

	regen := func() {
		if err := runGenerate(cmd, args); err != nil {
			slog.Error("regeneration failed", slog.String("error", err.Error()))
		}
	}
	regen()

	var debounce *time.Timer
	slog.Info("watching for changes", slog.String("path", chrPath))
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(chrPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, regen)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// loadDrawing opens the bubble sidecar when given; a missing drawing is
// not an error, sync calls are simply no-ops until one is loaded.
func loadDrawing() drawing.Drawing {
	if sidecarPath == "" {
		return nil
	}
	bf, err := drawing.Load(sidecarPath, slog.Default())
	if err != nil {
		slog.Warn("bubble sidecar not loaded", slog.String("path", sidecarPath),
			slog.String("error", err.Error()))
		return nil
	}
	return bf
}

func applyConfig(ctx *form3.Context, cfg *config.Config) {
	ctx.Options = cfg.Options()
	ctx.Palette = cfg.PaletteOverride()
	if cfg.FirstDataRow > 0 && ctx.Layout.FirstDataRow == form3.DefaultLayout().FirstDataRow {
		ctx.Layout.FirstDataRow = cfg.FirstDataRow
	}
}
