// Package template defines worksheet templates, their structural
// validation and their expansion into slots.
package template

import (
	"encoding/json"
	"fmt"
)

// Difficulty bounds shared by tasks and templates.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Template is a declarative description of a worksheet: an ordered list of
// sections, each demanding an exact number of tasks.
type Template struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	TopicID string `json:"topicId"`
	Header  string `json:"header,omitempty"`

	// SchemaVersion is the template document version, e.g. "v1". Empty
	// means the current version.
	SchemaVersion string `json:"schemaVersion,omitempty"`

	Sections []Section `json:"sections"`
}

// Section is one requirement group inside a template.
type Section struct {
	Label      string          `json:"label"`
	SkillIDs   []string        `json:"skillIds"`
	Count      int             `json:"count"`
	Difficulty DifficultyRange `json:"difficultyRange"`
}

// DifficultyRange is an inclusive [Min, Max] bound on task difficulty.
// It is encoded as a two-element array.
type DifficultyRange struct {
	Min int
	Max int
}

// Contains reports whether d lies within the range.
func (r DifficultyRange) Contains(d int) bool {
	return d >= r.Min && d <= r.Max
}

func (r DifficultyRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

func (r DifficultyRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Min, r.Max})
}

func (r *DifficultyRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("difficulty range: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("difficulty range: want [min, max], got %d values", len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// HasSkill reports whether skillID is eligible for the section.
func (s Section) HasSkill(skillID string) bool {
	for _, id := range s.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// TotalQuota returns the number of tasks the template requires.
func TotalQuota(t Template) int {
	n := 0
	for _, s := range t.Sections {
		n += s.Count
	}
	return n
}
