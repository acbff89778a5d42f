package template

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// SupportedMajor is the template document major version this build reads.
const SupportedMajor = "v1"

// Validate checks the structural invariants of t independently of any task
// bank. All problems are reported together in an *InvalidTemplateError.
func Validate(t Template) error {
	var errs []FieldError
	add := func(path, format string, args ...any) {
		errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if t.SchemaVersion != "" {
		v := t.SchemaVersion
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		switch {
		case !semver.IsValid(v):
			add("schemaVersion", "%q is not a valid version", t.SchemaVersion)
		case semver.Major(v) != SupportedMajor:
			add("schemaVersion", "unsupported version %q (want %s.x)", t.SchemaVersion, SupportedMajor)
		}
	}

	if len(t.Sections) == 0 {
		add("sections", "at least one section is required")
	}

	labels := make(map[string]int, len(t.Sections))
	for i, s := range t.Sections {
		prefix := fmt.Sprintf("sections[%d]", i)

		label := strings.TrimSpace(s.Label)
		if label == "" {
			add(prefix+".label", "label must not be empty")
		} else if first, dup := labels[label]; dup {
			add(prefix+".label", "duplicate label %q (also sections[%d])", label, first)
		} else {
			labels[label] = i
		}

		if len(s.SkillIDs) == 0 {
			add(prefix+".skillIds", "at least one skill id is required")
		}
		for j, id := range s.SkillIDs {
			if strings.TrimSpace(id) == "" {
				add(fmt.Sprintf("%s.skillIds[%d]", prefix, j), "skill id must not be empty")
			}
		}

		if s.Count < 1 {
			add(prefix+".count", "count must be a positive integer, got %d", s.Count)
		}

		r := s.Difficulty
		if r.Min < MinDifficulty || r.Min > MaxDifficulty {
			add(prefix+".difficultyRange", "min must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, r.Min)
		}
		if r.Max < MinDifficulty || r.Max > MaxDifficulty {
			add(prefix+".difficultyRange", "max must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, r.Max)
		}
		if r.Min > r.Max {
			add(prefix+".difficultyRange", "min %d is greater than max %d", r.Min, r.Max)
		}
	}

	if len(errs) > 0 {
		return &InvalidTemplateError{
			Message: "template validation failed",
			Details: errs,
		}
	}
	return nil
}
