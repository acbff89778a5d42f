package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/worksheets/internal/store"
	"github.com/abhisek/worksheets/internal/ui/theme"
)

var variantCmd = &cobra.Command{
	Use:   "variant",
	Short: "Browse saved variant batches",
}

var variantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved batches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		tmplID, _ := cmd.Flags().GetString("template")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, TemplateID: tmplID}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		return listBatches(cmd.Context(), cmd.OutOrStdout(), st.VariantRepo(), opts)
	},
}

var variantShowCmd = &cobra.Command{
	Use:   "show ID|NUMBER",
	Short: "Show the tasks of a saved batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		return showBatch(cmd.Context(), cmd.OutOrStdout(), st.VariantRepo(), args[0])
	},
}

var variantDeleteCmd = &cobra.Command{
	Use:   "delete ID|NUMBER",
	Short: "Delete a saved batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		return deleteBatch(cmd.Context(), cmd.OutOrStdout(), st.VariantRepo(), args[0])
	},
}

func init() {
	variantListCmd.Flags().Int("limit", 20, "Maximum batches to list (0 = all)")
	variantListCmd.Flags().String("template", "", "Only batches of this template id")
	variantListCmd.Flags().Duration("since", 0, "Only batches newer than this (e.g. 72h)")

	variantCmd.AddCommand(variantListCmd)
	variantCmd.AddCommand(variantShowCmd)
	variantCmd.AddCommand(variantDeleteCmd)
}

func listBatches(ctx context.Context, w io.Writer, repo store.VariantRepo, opts store.QueryOpts) error {
	batches, err := repo.ListBatches(ctx, opts)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		lipgloss.Fprintln(w, theme.Hint.Render("No saved batches."))
		return nil
	}

	tbl := theme.NewTable([]string{"#", "Template", "Title", "Variants", "Seed", "Created"}, 0, 3)
	for _, b := range batches {
		tbl.Row(strconv.FormatInt(b.Sequence, 10), b.TemplateID, b.Title,
			strconv.Itoa(b.VariantsCount), b.BaseSeed, b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	lipgloss.Fprintln(w, tbl.String())
	return nil
}

// findBatch accepts a batch id or its sequence number.
func findBatch(ctx context.Context, repo store.VariantRepo, ref string) (*store.BatchRecord, error) {
	var (
		b   *store.BatchRecord
		err error
	)
	if seq, perr := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64); perr == nil {
		b, err = repo.GetBatchBySequence(ctx, seq)
	} else {
		b, err = repo.GetBatch(ctx, ref)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("batch %s: %w", ref, err)
	}
	return b, err
}

func showBatch(ctx context.Context, w io.Writer, repo store.VariantRepo, ref string) error {
	b, err := findBatch(ctx, repo, ref)
	if err != nil {
		return err
	}

	lipgloss.Fprintln(w, theme.Title.Render(fmt.Sprintf("#%d %s", b.Sequence, b.Title)))
	lipgloss.Fprintln(w, "  id:       ", theme.Hint.Render(b.ID))
	lipgloss.Fprintln(w, "  template: ", b.TemplateID)
	lipgloss.Fprintln(w, "  base seed:", theme.Value.Render(b.BaseSeed))
	lipgloss.Fprintln(w, "  shuffled: ", b.Shuffled)
	lipgloss.Fprintln(w, "  created:  ", b.CreatedAt.Local().Format(time.RFC3339))

	for _, v := range b.Variants {
		lipgloss.Fprintln(w)
		lipgloss.Fprintln(w, theme.Heading.Render(fmt.Sprintf("Variant %d", v.Index+1)), theme.Hint.Render("seed "+v.Seed))
		tbl := theme.NewTable([]string{"#", "Section", "Task", "Slot"}, 0, 3)
		for _, it := range v.Items {
			tbl.Row(strconv.Itoa(it.OrderIndex+1), it.SectionLabel, it.TaskID, strconv.Itoa(it.SlotIndex))
		}
		lipgloss.Fprintln(w, tbl.String())
	}
	return nil
}

func deleteBatch(ctx context.Context, w io.Writer, repo store.VariantRepo, ref string) error {
	b, err := findBatch(ctx, repo, ref)
	if err != nil {
		return err
	}
	if err := repo.DeleteBatch(ctx, b.ID); err != nil {
		return err
	}
	lipgloss.Fprintln(w, theme.OK.Render("✓"), fmt.Sprintf("Deleted batch #%d", b.Sequence))
	return nil
}
