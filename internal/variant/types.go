// Package variant assembles one or more fully planned task sets from a
// template and a task bank.
package variant

import (
	"github.com/abhisek/worksheets/internal/planner"
	"github.com/abhisek/worksheets/internal/template"
)

// Request describes one generation request.
type Request struct {
	Template      template.Template
	VariantsCount int

	// BaseSeed fixes every variant's randomness. Empty means a fresh
	// random seed is generated.
	BaseSeed string

	// Shuffle reorders each variant's tasks after planning.
	Shuffle bool
}

// Variant is one fully assigned task set.
type Variant struct {
	Index       int
	Seed        string
	Assignments []planner.Assignment
}

// OutputItem is the reference handed to persistence and rendering.
type OutputItem struct {
	TaskID       string `json:"taskId"`
	SectionLabel string `json:"sectionLabel"`
	OrderIndex   int    `json:"orderIndex"`
}

// TaskIDs returns task ids in presentation order.
func (v Variant) TaskIDs() []string {
	ids := make([]string, len(v.Assignments))
	for i, a := range v.Assignments {
		ids[i] = a.Task.ID
	}
	return ids
}

// Output returns the ordered {taskId, sectionLabel, orderIndex} triples.
func (v Variant) Output() []OutputItem {
	out := make([]OutputItem, len(v.Assignments))
	for i, a := range v.Assignments {
		out[i] = OutputItem{
			TaskID:       a.Task.ID,
			SectionLabel: a.SectionLabel,
			OrderIndex:   a.OrderIndex,
		}
	}
	return out
}

// Batch is the result of one Assemble call.
type Batch struct {
	BaseSeed string
	Variants []Variant
}
