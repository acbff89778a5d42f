package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/worksheets/internal/render"
	"github.com/abhisek/worksheets/internal/store"
	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
	"github.com/abhisek/worksheets/internal/ui/theme"
	"github.com/abhisek/worksheets/internal/variant"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate worksheet variants from a template and a task bank",
	Long: `Generate plans one or more variants of a template against a task bank
and writes each as a worksheet plus an answer key.

The same --seed, template and bank always produce the same variants.`,
	Example: `  worksheets generate --template fractions.yaml --bank banks/ --variants 3 --seed spring-quiz
  worksheets generate -t quiz.json -b tasks.json --shuffle --format markdown --save`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("template", "t", "", "Template file, JSON or YAML (required)")
	generateCmd.Flags().StringP("bank", "b", "", "Task bank file or directory (default: bank_dir from config)")
	generateCmd.Flags().IntP("variants", "n", 1, "Number of variants")
	generateCmd.Flags().String("seed", "", "Base seed (default: random)")
	generateCmd.Flags().Bool("shuffle", false, "Shuffle task order within each variant (default: variants.shuffle from config)")
	generateCmd.Flags().StringP("out", "o", ".", "Output directory")
	generateCmd.Flags().String("format", "text", "Output format: text or markdown")
	generateCmd.Flags().Bool("show-seed", true, "Print the variant seed on each worksheet")
	generateCmd.Flags().Bool("save", false, "Save the batch to the database")
	_ = generateCmd.MarkFlagRequired("template")
}

type generateOptions struct {
	TemplatePath string
	BankPath     string
	Variants     int
	Seed         string
	Shuffle      bool
	OutDir       string
	Format       render.Format
	ShowSeed     bool

	// Repo receives the batch when non-nil.
	Repo store.VariantRepo
}

type generateResult struct {
	Batch *variant.Batch
	Files []string
	Saved *store.BatchRecord
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts := generateOptions{}
	opts.TemplatePath, _ = cmd.Flags().GetString("template")
	opts.BankPath, _ = cmd.Flags().GetString("bank")
	opts.Variants, _ = cmd.Flags().GetInt("variants")
	opts.Seed, _ = cmd.Flags().GetString("seed")
	opts.OutDir, _ = cmd.Flags().GetString("out")
	opts.ShowSeed, _ = cmd.Flags().GetBool("show-seed")

	opts.Shuffle = cfg.Variants.Shuffle
	if cmd.Flags().Changed("shuffle") {
		opts.Shuffle, _ = cmd.Flags().GetBool("shuffle")
	}
	if opts.BankPath == "" {
		opts.BankPath = cfg.BankDir
	}
	if opts.BankPath == "" {
		return fmt.Errorf("no task bank: pass --bank or set bank_dir in the config")
	}

	formatVal, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatVal)
	if err != nil {
		return err
	}
	opts.Format = format

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Repo = st.VariantRepo()
	}

	res, err := generate(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printGenerateSummary(cmd.OutOrStdout(), opts, res)
	return nil
}

// generate loads inputs, plans the batch, writes worksheets and optionally
// saves the batch.
func generate(ctx context.Context, opts generateOptions) (*generateResult, error) {
	tmpl, err := template.LoadFile(opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	bank, err := taskbank.Load(opts.BankPath)
	if err != nil {
		return nil, fmt.Errorf("load task bank: %w", err)
	}
	logger.Debug("inputs loaded",
		zap.String("template", tmpl.ID),
		zap.Int("sections", len(tmpl.Sections)),
		zap.Int("bank_tasks", bank.Len()))

	asm := variant.New(variant.Config{
		Concurrency:   cfg.Variants.Concurrency,
		MaxQuotaRatio: cfg.Variants.MaxQuotaRatio,
		MaxSteps:      cfg.Planner.MaxSteps,
	}, logger.Named("variant"))

	batch, err := asm.Assemble(ctx, bank, variant.Request{
		Template:      tmpl,
		VariantsCount: opts.Variants,
		BaseSeed:      opts.Seed,
		Shuffle:       opts.Shuffle,
	})
	if err != nil {
		return nil, err
	}

	res := &generateResult{Batch: batch}
	res.Files, err = writeWorksheets(opts, tmpl, batch)
	if err != nil {
		return nil, err
	}

	if opts.Repo != nil {
		rec := batchRecord(tmpl, batch, opts.Shuffle)
		if err := opts.Repo.SaveBatch(ctx, rec); err != nil {
			return nil, fmt.Errorf("save batch: %w", err)
		}
		logger.Info("batch saved", zap.String("id", rec.ID), zap.Int64("sequence", rec.Sequence))
		res.Saved = rec
	}
	return res, nil
}

func writeWorksheets(opts generateOptions, tmpl template.Template, batch *variant.Batch) ([]string, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	ropts := render.Options{Format: opts.Format, ShowSeed: opts.ShowSeed}
	ext := opts.Format.Ext()

	var files []string
	for _, v := range batch.Variants {
		sheet := filepath.Join(opts.OutDir, fmt.Sprintf("variant-%d%s", v.Index+1, ext))
		if err := writeFile(sheet, func(w io.Writer) error {
			return render.Worksheet(w, tmpl, v, ropts)
		}); err != nil {
			return nil, err
		}
		key := filepath.Join(opts.OutDir, fmt.Sprintf("variant-%d-answers%s", v.Index+1, ext))
		if err := writeFile(key, func(w io.Writer) error {
			return render.AnswerKey(w, tmpl, v, ropts)
		}); err != nil {
			return nil, err
		}
		files = append(files, sheet, key)
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func batchRecord(tmpl template.Template, batch *variant.Batch, shuffled bool) *store.BatchRecord {
	rec := &store.BatchRecord{
		TemplateID: tmpl.ID,
		TopicID:    tmpl.TopicID,
		Title:      tmpl.Title,
		BaseSeed:   batch.BaseSeed,
		Shuffled:   shuffled,
		Variants:   make([]store.VariantRecord, len(batch.Variants)),
	}
	for i, v := range batch.Variants {
		items := make([]store.ItemRecord, len(v.Assignments))
		for j, a := range v.Assignments {
			items[j] = store.ItemRecord{
				OrderIndex:   a.OrderIndex,
				SlotIndex:    a.SlotIndex,
				TaskID:       a.Task.ID,
				SectionLabel: a.SectionLabel,
			}
		}
		rec.Variants[i] = store.VariantRecord{Index: v.Index, Seed: v.Seed, Items: items}
	}
	return rec
}

func printGenerateSummary(w io.Writer, opts generateOptions, res *generateResult) {
	lipgloss.Fprintln(w, theme.OK.Render("✓"), fmt.Sprintf("Generated %d variant(s)", len(res.Batch.Variants)))
	lipgloss.Fprintln(w, "  base seed:", theme.Value.Render(res.Batch.BaseSeed))
	lipgloss.Fprintln(w, "  output:   ", opts.OutDir)
	if res.Saved != nil {
		lipgloss.Fprintln(w, "  saved as: ", theme.Value.Render(fmt.Sprintf("#%d", res.Saved.Sequence)), theme.Hint.Render(res.Saved.ID))
	}
	if opts.Seed == "" {
		lipgloss.Fprintln(w, theme.Hint.Render("Pass --seed "+res.Batch.BaseSeed+" to reproduce these variants."))
	}
}
