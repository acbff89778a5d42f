package template

import (
	"errors"
	"strings"
	"testing"
)

func validTemplate() Template {
	return Template{
		ID:      "tmpl-1",
		Title:   "Fractions check",
		TopicID: "fractions",
		Sections: []Section{
			{Label: "A", SkillIDs: []string{"S1"}, Count: 6, Difficulty: DifficultyRange{1, 3}},
			{Label: "B", SkillIDs: []string{"S2", "S3"}, Count: 4, Difficulty: DifficultyRange{2, 5}},
		},
	}
}

func TestValidate_ValidTemplatePasses(t *testing.T) {
	if err := Validate(validTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Template)
		wantPath string
	}{
		{"empty skill set", func(tm *Template) { tm.Sections[0].SkillIDs = nil }, "sections[0].skillIds"},
		{"blank skill id", func(tm *Template) { tm.Sections[1].SkillIDs = []string{"S2", " "} }, "sections[1].skillIds[1]"},
		{"zero count", func(tm *Template) { tm.Sections[1].Count = 0 }, "sections[1].count"},
		{"negative count", func(tm *Template) { tm.Sections[0].Count = -2 }, "sections[0].count"},
		{"min below 1", func(tm *Template) { tm.Sections[0].Difficulty = DifficultyRange{0, 3} }, "sections[0].difficultyRange"},
		{"max above 5", func(tm *Template) { tm.Sections[0].Difficulty = DifficultyRange{1, 6} }, "sections[0].difficultyRange"},
		{"inverted range", func(tm *Template) { tm.Sections[1].Difficulty = DifficultyRange{4, 2} }, "sections[1].difficultyRange"},
		{"empty label", func(tm *Template) { tm.Sections[1].Label = "" }, "sections[1].label"},
		{"duplicate label", func(tm *Template) { tm.Sections[1].Label = "A" }, "sections[1].label"},
		{"no sections", func(tm *Template) { tm.Sections = nil }, "sections"},
		{"bad version", func(tm *Template) { tm.SchemaVersion = "banana" }, "schemaVersion"},
		{"future version", func(tm *Template) { tm.SchemaVersion = "v2.0.0" }, "schemaVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := validTemplate()
			tt.mutate(&tm)
			err := Validate(tm)
			var ite *InvalidTemplateError
			if !errors.As(err, &ite) {
				t.Fatalf("expected *InvalidTemplateError, got %v", err)
			}
			if ite.Code() != CodeInvalidTemplate {
				t.Errorf("Code() = %q, want %q", ite.Code(), CodeInvalidTemplate)
			}
			found := false
			for _, d := range ite.Details {
				if d.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no detail at %q in %+v", tt.wantPath, ite.Details)
			}
		})
	}
}

func TestValidate_AcceptsVersionForms(t *testing.T) {
	for _, v := range []string{"v1", "1", "v1.2.0", "1.0"} {
		tm := validTemplate()
		tm.SchemaVersion = v
		if err := Validate(tm); err != nil {
			t.Errorf("version %q: unexpected error %v", v, err)
		}
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	tm := validTemplate()
	tm.Sections[0].Count = 0
	tm.Sections[1].SkillIDs = nil
	err := Validate(tm)
	var ite *InvalidTemplateError
	if !errors.As(err, &ite) {
		t.Fatalf("expected *InvalidTemplateError, got %v", err)
	}
	if len(ite.Details) != 2 {
		t.Errorf("details = %d, want 2: %+v", len(ite.Details), ite.Details)
	}
	if !strings.Contains(err.Error(), "sections[0].count") {
		t.Errorf("error text should name the path, got: %v", err)
	}
}

func TestTotalQuota(t *testing.T) {
	if got := TotalQuota(validTemplate()); got != 10 {
		t.Errorf("TotalQuota = %d, want 10", got)
	}
}
