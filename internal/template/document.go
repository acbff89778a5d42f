package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/worksheets/internal/docschema"
)

// Format is a template document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a Format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported template file extension %q", filepath.Ext(path))
	}
}

// Parse decodes a template document, checks it against DocumentSchema and
// then runs Validate. Schema and structural problems are both returned as
// *InvalidTemplateError.
func Parse(data []byte, format Format) (Template, error) {
	var (
		doc any
		raw = data
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = docschema.DecodeJSON(data)
	case FormatYAML:
		doc, raw, err = docschema.DecodeYAML(data)
	default:
		return Template{}, fmt.Errorf("unknown template format %q", format)
	}
	if err != nil {
		return Template{}, &InvalidTemplateError{
			Message: "template document could not be decoded",
			Details: []FieldError{{Message: err.Error()}},
		}
	}

	violations, err := docschema.Validate(DocumentSchema, doc)
	if err != nil {
		return Template{}, fmt.Errorf("template schema: %w", err)
	}
	if len(violations) > 0 {
		details := make([]FieldError, len(violations))
		for i, v := range violations {
			details[i] = FieldError{Path: v.Path, Message: v.Message}
		}
		return Template{}, &InvalidTemplateError{
			Message: "template document does not match schema",
			Details: details,
		}
	}

	var t Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return Template{}, &InvalidTemplateError{
			Message: "template document could not be decoded",
			Details: []FieldError{{Message: err.Error()}},
		}
	}
	if err := Validate(t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// LoadFile reads and parses a template file. The format follows the file
// extension.
func LoadFile(path string) (Template, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Template{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template %s: %w", path, err)
	}
	t, err := Parse(data, format)
	if err != nil {
		return Template{}, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}
