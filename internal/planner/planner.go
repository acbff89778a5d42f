// Package planner assigns bank tasks to template slots. It runs a per-section
// feasibility precheck, then a most-constrained-first backtracking search
// whose candidate order is driven by a seeded random source.
package planner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
)

// Assignment binds one task to one slot.
type Assignment struct {
	SlotIndex    int
	Task         taskbank.Task
	SectionLabel string

	// OrderIndex is the presentation position. It equals SlotIndex until a
	// shuffle renumbers it.
	OrderIndex int
}

// Options tunes a Planner.
type Options struct {
	// MaxSteps caps the number of candidate attempts in one search.
	// Zero means unlimited.
	MaxSteps int

	Logger *zap.Logger
}

// Stats describes the work done by one Solve call.
type Stats struct {
	Steps      int
	Backtracks int
}

// Planner solves slot assignments. A Planner holds no per-call state and is
// safe for concurrent use.
type Planner struct {
	maxSteps int
	log      *zap.Logger
}

// New creates a Planner.
func New(opts Options) *Planner {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{maxSteps: opts.MaxSteps, log: log}
}

// Solve assigns exactly one distinct eligible task to every slot using the
// default Planner.
func Solve(slots []template.Slot, tasks []taskbank.Task, seed string) ([]Assignment, error) {
	out, _, err := New(Options{}).Solve(slots, tasks, seed)
	return out, err
}

// Plan validates t, expands it into slots and solves against bank.
func (p *Planner) Plan(bank *taskbank.Bank, t template.Template, seed string) ([]Assignment, Stats, error) {
	if err := template.Validate(t); err != nil {
		return nil, Stats{}, err
	}
	return p.Solve(template.ExpandSlots(t), bank.Tasks(), seed)
}

// Solve assigns exactly one distinct eligible task to every slot. On
// failure it returns an *InsufficientTasksError and no assignments.
func (p *Planner) Solve(slots []template.Slot, tasks []taskbank.Task, seed string) ([]Assignment, Stats, error) {
	if err := precheck(slots, tasks); err != nil {
		p.log.Debug("precheck failed",
			zap.String("section", err.SectionLabel),
			zap.Int("required", err.RequiredCount),
			zap.Int("available", err.AvailableCount))
		return nil, Stats{}, err
	}

	s := newSearch(slots, tasks, seed, p.maxSteps)
	ok := s.solve(0)
	if !ok {
		fail := s.failure()
		p.log.Debug("search failed",
			zap.String("seed", seed),
			zap.String("section", fail.SectionLabel),
			zap.Int("steps", s.stats.Steps),
			zap.Int("backtracks", s.stats.Backtracks),
			zap.Bool("aborted", s.aborted))
		return nil, s.stats, fail
	}

	out := make([]Assignment, len(slots))
	for i, slot := range slots {
		out[i] = Assignment{
			SlotIndex:    slot.SlotIndex,
			Task:         tasks[s.assigned[i]],
			SectionLabel: slot.SectionLabel,
			OrderIndex:   slot.SlotIndex,
		}
	}
	p.log.Debug("search solved",
		zap.String("seed", seed),
		zap.Int("slots", len(slots)),
		zap.Int("steps", s.stats.Steps),
		zap.Int("backtracks", s.stats.Backtracks))
	return out, s.stats, nil
}

// sectionDemand is one section as seen through its slots.
type sectionDemand struct {
	index int
	slot  template.Slot // representative slot carrying the constraints
	count int
}

// demands groups slots by section, ordered by section index.
func demands(slots []template.Slot) []sectionDemand {
	bySection := make(map[int]*sectionDemand)
	for _, s := range slots {
		d, ok := bySection[s.SectionIndex]
		if !ok {
			d = &sectionDemand{index: s.SectionIndex, slot: s}
			bySection[s.SectionIndex] = d
		}
		d.count++
	}
	out := make([]sectionDemand, 0, len(bySection))
	for _, d := range bySection {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// Precheck reports the first section, in declaration order, that has fewer
// eligible tasks than its quota. It ignores competition between sections and
// does not depend on any seed.
func Precheck(slots []template.Slot, tasks []taskbank.Task) error {
	if err := precheck(slots, tasks); err != nil {
		return err
	}
	return nil
}

func precheck(slots []template.Slot, tasks []taskbank.Task) *InsufficientTasksError {
	for _, d := range demands(slots) {
		available := 0
		for _, t := range tasks {
			if d.slot.Accepts(t.SkillID, t.Difficulty) {
				available++
			}
		}
		if available < d.count {
			return &InsufficientTasksError{
				SectionLabel:    d.slot.SectionLabel,
				RequiredCount:   d.count,
				AvailableCount:  available,
				SkillIDs:        d.slot.SkillIDs,
				DifficultyRange: d.slot.Difficulty,
				Source:          SourcePrecheck,
			}
		}
	}
	return nil
}
