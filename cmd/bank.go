package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
	"github.com/abhisek/worksheets/internal/ui/theme"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect task banks",
}

var bankStatsCmd = &cobra.Command{
	Use:   "stats [PATH]",
	Short: "Show tasks per skill and difficulty",
	Long: `Show a skill × difficulty histogram of a task bank file or directory.

With --template, also show how many tasks each section can draw from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.BankDir
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no task bank: pass PATH or set bank_dir in the config")
		}
		tmplPath, _ := cmd.Flags().GetString("template")
		return bankStats(cmd.OutOrStdout(), path, tmplPath)
	},
}

func init() {
	bankStatsCmd.Flags().StringP("template", "t", "", "Also check section coverage for this template")
	bankCmd.AddCommand(bankStatsCmd)
}

func bankStats(w io.Writer, path, tmplPath string) error {
	bank, err := taskbank.Load(path)
	if err != nil {
		return fmt.Errorf("load task bank: %w", err)
	}

	headers := []string{"Skill"}
	numeric := []int{}
	for d := template.MinDifficulty; d <= template.MaxDifficulty; d++ {
		numeric = append(numeric, len(headers))
		headers = append(headers, fmt.Sprintf("D%d", d))
	}
	numeric = append(numeric, len(headers))
	headers = append(headers, "Total")

	tbl := theme.NewTable(headers, numeric...)
	for _, s := range bank.Stats() {
		row := []string{s.SkillID}
		for _, n := range s.ByDifficulty {
			row = append(row, strconv.Itoa(n))
		}
		row = append(row, strconv.Itoa(s.Total))
		tbl.Row(row...)
	}
	lipgloss.Fprintln(w, theme.Title.Render(fmt.Sprintf("%d tasks", bank.Len())))
	lipgloss.Fprintln(w, tbl.String())

	if tmplPath == "" {
		return nil
	}
	t, err := template.LoadFile(tmplPath)
	if err != nil {
		return err
	}
	return sectionCoverage(w, bank, t)
}

// sectionCoverage compares each section's count with the tasks it could
// draw from on its own. Sharing between sections is not considered.
func sectionCoverage(w io.Writer, bank *taskbank.Bank, t template.Template) error {
	tbl := theme.NewTable([]string{"Section", "Skills", "Difficulty", "Need", "Eligible", ""}, 3, 4)
	short := 0
	for _, sec := range t.Sections {
		eligible := bank.CountEligible(sec.SkillIDs, sec.Difficulty)
		status := theme.OK.Render("ok")
		if eligible < sec.Count {
			status = theme.Fail.Render("short")
			short++
		}
		tbl.Row(sec.Label, strings.Join(sec.SkillIDs, ", "), sec.Difficulty.String(),
			strconv.Itoa(sec.Count), strconv.Itoa(eligible), status)
	}
	lipgloss.Fprintln(w)
	lipgloss.Fprintln(w, theme.Heading.Render("Coverage for "+titleOrID(t)))
	lipgloss.Fprintln(w, tbl.String())
	if short > 0 {
		lipgloss.Fprintln(w, theme.Fail.Render(fmt.Sprintf("%d section(s) cannot be filled from this bank", short)))
	}
	return nil
}
