package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/worksheets/internal/template"
	"github.com/abhisek/worksheets/internal/ui/theme"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect worksheet templates",
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a template's structure without a task bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateTemplate(cmd.OutOrStdout(), args[0])
	},
}

var templateSlotsCmd = &cobra.Command{
	Use:   "slots FILE",
	Short: "List the slots a template expands to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSlots(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	templateCmd.AddCommand(templateValidateCmd)
	templateCmd.AddCommand(templateSlotsCmd)
}

func validateTemplate(w io.Writer, path string) error {
	t, err := template.LoadFile(path)
	if err != nil {
		return err
	}
	lipgloss.Fprintln(w, theme.OK.Render("✓"),
		fmt.Sprintf("%s is valid: %d section(s), %d task(s) per variant",
			path, len(t.Sections), template.TotalQuota(t)))
	return nil
}

func listSlots(w io.Writer, path string) error {
	t, err := template.LoadFile(path)
	if err != nil {
		return err
	}

	tbl := theme.NewTable([]string{"Slot", "Section", "Skills", "Difficulty"}, 0)
	for _, s := range template.ExpandSlots(t) {
		tbl.Row(strconv.Itoa(s.SlotIndex), s.SectionLabel, strings.Join(s.SkillIDs, ", "), s.Difficulty.String())
	}
	lipgloss.Fprintln(w, theme.Title.Render(titleOrID(t)))
	lipgloss.Fprintln(w, tbl.String())
	return nil
}

func titleOrID(t template.Template) string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}
