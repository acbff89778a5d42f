package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/worksheets/internal/template"
)

// CodeInsufficientTasks is the discriminant carried by InsufficientTasksError.
const CodeInsufficientTasks = "insufficient_tasks"

// FailureSource says which stage detected infeasibility.
type FailureSource string

const (
	// SourcePrecheck: a single section has too few eligible tasks.
	SourcePrecheck FailureSource = "precheck"
	// SourceSearch: sections compete for the same tasks and backtracking
	// ran out of options.
	SourceSearch FailureSource = "search"
	// SourceQuota: the request asks for more tasks than the caller allows
	// relative to the bank size.
	SourceQuota FailureSource = "quota"
)

// ErrSearchBudgetExceeded is the cause of an InsufficientTasksError when the
// solver gave up after Options.MaxSteps candidate attempts.
var ErrSearchBudgetExceeded = errors.New("search step budget exceeded")

// InsufficientTasksError reports that the task bank cannot satisfy a
// section of a structurally valid template.
type InsufficientTasksError struct {
	SectionLabel    string                   `json:"sectionLabel"`
	RequiredCount   int                      `json:"requiredCount"`
	AvailableCount  int                      `json:"availableCount"`
	SkillIDs        []string                 `json:"skillIds"`
	DifficultyRange template.DifficultyRange `json:"difficultyRange"`
	Source          FailureSource            `json:"source"`

	// Cause is set when the failure was not a plain lack of candidates.
	Cause error `json:"-"`
}

// Code returns CodeInsufficientTasks.
func (e *InsufficientTasksError) Code() string { return CodeInsufficientTasks }

func (e *InsufficientTasksError) Error() string {
	msg := fmt.Sprintf("section %q needs %d tasks (skills %s, difficulty %s) but only %d available",
		e.SectionLabel, e.RequiredCount, strings.Join(e.SkillIDs, ","), e.DifficultyRange, e.AvailableCount)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InsufficientTasksError) Unwrap() error { return e.Cause }
