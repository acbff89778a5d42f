package template

import (
	"fmt"
	"strings"
)

// CodeInvalidTemplate is the discriminant carried by InvalidTemplateError.
const CodeInvalidTemplate = "invalid_template"

// FieldError locates one structural problem in a template document.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// InvalidTemplateError reports a structurally malformed template. It is
// raised before any task bank lookup.
type InvalidTemplateError struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

// Code returns CodeInvalidTemplate.
func (e *InvalidTemplateError) Code() string { return CodeInvalidTemplate }

func (e *InvalidTemplateError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		if d.Path == "" {
			parts = append(parts, d.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", d.Path, d.Message))
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}
