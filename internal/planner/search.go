package planner

import (
	"github.com/abhisek/worksheets/internal/seededrand"
	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
)

const unassigned = -1

// search is the mutable state of one Solve call. Nothing here is shared
// between calls.
type search struct {
	slots    []template.Slot
	tasks    []taskbank.Task
	eligible [][]int // per slot: bank positions passing skill/difficulty
	wantedBy [][]int // per task: slots the task is eligible for
	quota    map[int]int

	used      []bool
	assigned  []int
	remaining []int // per slot: eligible tasks not yet used
	rng       *seededrand.Source

	// per-depth scratch, reused across sibling nodes
	candBuf  [][]int
	orderBuf [][]int

	maxSteps int
	aborted  bool
	stats    Stats

	// deepest slot-level failure seen so far
	hasFailure   bool
	failSlot     int
	failAvail    int
	failureDepth int
}

func newSearch(slots []template.Slot, tasks []taskbank.Task, seed string, maxSteps int) *search {
	s := &search{
		slots:     slots,
		tasks:     tasks,
		eligible:  make([][]int, len(slots)),
		wantedBy:  make([][]int, len(tasks)),
		quota:     make(map[int]int),
		used:      make([]bool, len(tasks)),
		assigned:  make([]int, len(slots)),
		remaining: make([]int, len(slots)),
		rng:       seededrand.New(seed),
		candBuf:   make([][]int, len(slots)+1),
		orderBuf:  make([][]int, len(slots)+1),
		maxSteps:  maxSteps,
	}
	for i, slot := range slots {
		s.assigned[i] = unassigned
		s.quota[slot.SectionIndex]++
		for ti, t := range tasks {
			if slot.Accepts(t.SkillID, t.Difficulty) {
				s.eligible[i] = append(s.eligible[i], ti)
				s.wantedBy[ti] = append(s.wantedBy[ti], i)
			}
		}
		s.remaining[i] = len(s.eligible[i])
	}
	return s
}

func (s *search) take(slot, ti int) {
	s.used[ti] = true
	s.assigned[slot] = ti
	for _, i := range s.wantedBy[ti] {
		s.remaining[i]--
	}
}

func (s *search) release(slot, ti int) {
	s.used[ti] = false
	s.assigned[slot] = unassigned
	for _, i := range s.wantedBy[ti] {
		s.remaining[i]++
	}
}

// selectSlot returns the unassigned slot with the fewest remaining
// candidates, first in slot order on ties, or -1 when all are assigned.
func (s *search) selectSlot() (slot, count int) {
	slot, count = -1, 0
	for i := range s.slots {
		if s.assigned[i] != unassigned {
			continue
		}
		if n := s.remaining[i]; slot == -1 || n < count {
			slot, count = i, n
		}
	}
	return slot, count
}

// solve assigns every remaining slot or reports false. depth is the
// number of slots already assigned.
func (s *search) solve(depth int) bool {
	i, count := s.selectSlot()
	if i == -1 {
		return true
	}
	if count == 0 {
		s.recordFailure(i, 0, depth)
		return false
	}

	candidates := s.candBuf[depth][:0]
	for _, ti := range s.eligible[i] {
		if !s.used[ti] {
			candidates = append(candidates, ti)
		}
	}
	s.candBuf[depth] = candidates
	order := s.rng.PermuteInto(s.orderBuf[depth], len(candidates))
	s.orderBuf[depth] = order

	for _, k := range order {
		if s.maxSteps > 0 && s.stats.Steps >= s.maxSteps {
			s.aborted = true
			s.recordFailure(i, len(candidates), depth)
			return false
		}
		s.stats.Steps++

		ti := candidates[k]
		s.take(i, ti)
		if s.solve(depth + 1) {
			return true
		}
		s.release(i, ti)
		s.stats.Backtracks++

		if s.aborted {
			return false
		}
	}

	s.recordFailure(i, len(candidates), depth)
	return false
}

// recordFailure keeps the deepest failure seen, preferring the most recent
// one on equal depth.
func (s *search) recordFailure(i, available, depth int) {
	if s.hasFailure && depth < s.failureDepth {
		return
	}
	s.hasFailure = true
	s.failSlot = i
	s.failAvail = available
	s.failureDepth = depth
}

// failure builds the error for the recorded slot-level failure.
func (s *search) failure() *InsufficientTasksError {
	slot := s.slots[s.failSlot]
	err := &InsufficientTasksError{
		SectionLabel:    slot.SectionLabel,
		RequiredCount:   s.quota[slot.SectionIndex],
		AvailableCount:  s.failAvail,
		SkillIDs:        slot.SkillIDs,
		DifficultyRange: slot.Difficulty,
		Source:          SourceSearch,
	}
	if s.aborted {
		err.Cause = ErrSearchBudgetExceeded
	}
	return err
}
