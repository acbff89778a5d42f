// Package theme holds the terminal styles used by CLI summaries.
package theme

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Value = lipgloss.NewStyle().
		Foreground(Accent)
)

// States
var (
	OK = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Fail = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Table styles
var (
	TableHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Padding(0, 1)
)

// NewTable returns a rounded table with the theme's header and cell styles.
// Columns listed in numeric are right-aligned.
func NewTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := TableCell
			if row == table.HeaderRow {
				s = TableHeader
			}
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
}
