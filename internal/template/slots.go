package template

// Slot is one unit of demand: a single task position inheriting its
// section's constraints.
type Slot struct {
	// SlotIndex is the flat position across the whole template.
	SlotIndex    int
	SectionIndex int
	SectionLabel string
	SkillIDs     []string
	Difficulty   DifficultyRange
}

// Accepts reports whether a task with the given skill and difficulty is
// eligible for the slot.
func (s Slot) Accepts(skillID string, difficulty int) bool {
	if !s.Difficulty.Contains(difficulty) {
		return false
	}
	for _, id := range s.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// ExpandSlots flattens a template into slots in section declaration order.
// Section i contributes Count consecutive slots.
func ExpandSlots(t Template) []Slot {
	slots := make([]Slot, 0, TotalQuota(t))
	for si, sec := range t.Sections {
		for k := 0; k < sec.Count; k++ {
			slots = append(slots, Slot{
				SlotIndex:    len(slots),
				SectionIndex: si,
				SectionLabel: sec.Label,
				SkillIDs:     sec.SkillIDs,
				Difficulty:   sec.Difficulty,
			})
		}
	}
	return slots
}
