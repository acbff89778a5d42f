// Package taskbank holds the candidate task pool that variants are drawn
// from, plus loaders for task bank documents.
package taskbank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/worksheets/internal/template"
)

// Task is one candidate exercise. Tasks are read-only once loaded.
type Task struct {
	ID         string `json:"id"`
	SkillID    string `json:"skillId"`
	Difficulty int    `json:"difficulty"`
	Content    string `json:"content"`
	Answer     string `json:"answer"`
}

// Bank is an immutable, ordered task pool indexed by id.
type Bank struct {
	tasks []Task
	byID  map[string]int
}

// New builds a Bank, rejecting empty or duplicate ids, empty skills and
// difficulties outside 1..5. Bank order follows the input order.
func New(tasks []Task) (*Bank, error) {
	b := &Bank{
		tasks: make([]Task, len(tasks)),
		byID:  make(map[string]int, len(tasks)),
	}
	copy(b.tasks, tasks)

	var errs []string
	for i, t := range b.tasks {
		switch {
		case strings.TrimSpace(t.ID) == "":
			errs = append(errs, fmt.Sprintf("task %d: id is empty", i))
			continue
		case strings.TrimSpace(t.SkillID) == "":
			errs = append(errs, fmt.Sprintf("task %q: skillId is empty", t.ID))
		case t.Difficulty < template.MinDifficulty || t.Difficulty > template.MaxDifficulty:
			errs = append(errs, fmt.Sprintf("task %q: difficulty must be between %d and %d, got %d",
				t.ID, template.MinDifficulty, template.MaxDifficulty, t.Difficulty))
		}
		if prev, dup := b.byID[t.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate task id %q (positions %d and %d)", t.ID, prev, i))
			continue
		}
		b.byID[t.ID] = i
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("task bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return b, nil
}

// Len returns the number of tasks in the bank.
func (b *Bank) Len() int { return len(b.tasks) }

// Tasks returns the tasks in bank order. The slice must not be modified.
func (b *Bank) Tasks() []Task { return b.tasks }

// Get returns the task with the given id.
func (b *Bank) Get(id string) (Task, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Task{}, false
	}
	return b.tasks[i], true
}

// Eligible returns the bank positions of tasks whose skill is in skillIDs
// and whose difficulty lies in r, in bank order.
func (b *Bank) Eligible(skillIDs []string, r template.DifficultyRange) []int {
	want := make(map[string]bool, len(skillIDs))
	for _, id := range skillIDs {
		want[id] = true
	}
	var out []int
	for i, t := range b.tasks {
		if want[t.SkillID] && r.Contains(t.Difficulty) {
			out = append(out, i)
		}
	}
	return out
}

// CountEligible is len(Eligible(skillIDs, r)).
func (b *Bank) CountEligible(skillIDs []string, r template.DifficultyRange) int {
	return len(b.Eligible(skillIDs, r))
}

// SkillStats is the per-difficulty task count for one skill.
type SkillStats struct {
	SkillID string
	// ByDifficulty[d-1] counts tasks at difficulty d.
	ByDifficulty [template.MaxDifficulty]int
	Total        int
}

// Stats returns a skill × difficulty histogram sorted by skill id.
func (b *Bank) Stats() []SkillStats {
	bySkill := make(map[string]*SkillStats)
	for _, t := range b.tasks {
		s, ok := bySkill[t.SkillID]
		if !ok {
			s = &SkillStats{SkillID: t.SkillID}
			bySkill[t.SkillID] = s
		}
		s.ByDifficulty[t.Difficulty-1]++
		s.Total++
	}
	out := make([]SkillStats, 0, len(bySkill))
	for _, s := range bySkill {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out
}
