package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/worksheets/internal/planner"
	"github.com/abhisek/worksheets/internal/template"
	"github.com/abhisek/worksheets/internal/variant"
)

// Problem is the machine-readable form of a generation failure.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Variant any    `json:"variant,omitempty"`
}

// ProblemOf classifies err. Errors other than the structured template and
// planner errors get code "error".
func ProblemOf(err error) Problem {
	p := Problem{Code: "error", Message: err.Error()}

	var ve *variant.VariantError
	if errors.As(err, &ve) {
		p.Variant = ve
	}

	var ite *template.InvalidTemplateError
	var ins *planner.InsufficientTasksError
	switch {
	case errors.As(err, &ite):
		p.Code = ite.Code()
		p.Message = ite.Message
		p.Details = ite.Details
	case errors.As(err, &ins):
		p.Code = ins.Code()
		p.Message = ins.Error()
		p.Details = ins
	}
	return p
}

// DiagnosticsJSON writes ProblemOf(err) as indented JSON.
func DiagnosticsJSON(w io.Writer, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ProblemOf(err))
}

// Diagnostics explains err in plain text: what failed and what
// to change in the template or the task bank.
func Diagnostics(w io.Writer, err error) error {
	var b strings.Builder

	var ve *variant.VariantError
	if errors.As(err, &ve) {
		fmt.Fprintf(&b, "Could not build variant %d of %d (task bank has %d tasks).\n",
			ve.VariantIndex+1, ve.VariantsCount, ve.RemainingUniqueTasks)
	}

	var ite *template.InvalidTemplateError
	var ins *planner.InsufficientTasksError
	switch {
	case errors.As(err, &ite):
		fmt.Fprintf(&b, "Template is invalid: %s\n", ite.Message)
		for _, d := range ite.Details {
			if d.Path == "" {
				fmt.Fprintf(&b, "  - %s\n", d.Message)
				continue
			}
			fmt.Fprintf(&b, "  - %s: %s\n", d.Path, d.Message)
		}
		b.WriteString("Fix the fields above and run the command again.\n")

	case errors.As(err, &ins):
		insufficient(&b, ins)

	default:
		fmt.Fprintf(&b, "Error: %v\n", err)
	}

	_, werr := io.WriteString(w, b.String())
	return werr
}

func insufficient(b *strings.Builder, e *planner.InsufficientTasksError) {
	if e.Source == planner.SourceQuota {
		fmt.Fprintf(b, "The template asks for %d tasks but only %d may be drawn from this bank.\n",
			e.RequiredCount, e.AvailableCount)
		b.WriteString("Add tasks to the bank or lower section counts.\n")
		return
	}

	fmt.Fprintf(b, "Section %q needs %d tasks but only %d are available.\n",
		e.SectionLabel, e.RequiredCount, e.AvailableCount)
	fmt.Fprintf(b, "  skills:     %s\n", strings.Join(e.SkillIDs, ", "))
	fmt.Fprintf(b, "  difficulty: %s\n", e.DifficultyRange)

	switch {
	case errors.Is(e.Cause, planner.ErrSearchBudgetExceeded):
		b.WriteString("The search stopped at its step limit. Raise planner.max_steps or set it to 0.\n")
	case e.Source == planner.SourceSearch:
		b.WriteString("Other sections use the same tasks. Add tasks for these skills, widen the difficulty range, or lower a competing section's count.\n")
	default:
		b.WriteString("Add tasks for these skills and difficulties, widen the range, or lower the count.\n")
	}
}
