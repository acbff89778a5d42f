package template

import "github.com/abhisek/worksheets/internal/docschema"

// DocumentSchema describes the shape of a template document. Value ranges
// (count, difficulty bounds) are left to Validate so they are reported with
// the same messages regardless of input format.
var DocumentSchema = &docschema.Schema{
	Name: "worksheet-template",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"id", "title", "topicId", "sections"},
		"properties": map[string]any{
			"id":            map[string]any{"type": "string", "minLength": 1},
			"title":         map[string]any{"type": "string"},
			"topicId":       map[string]any{"type": "string"},
			"header":        map[string]any{"type": "string"},
			"schemaVersion": map[string]any{"type": "string"},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"label", "skillIds", "count", "difficultyRange"},
					"properties": map[string]any{
						"label": map[string]any{"type": "string"},
						"skillIds": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"count": map[string]any{"type": "integer"},
						"difficultyRange": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "integer"},
							"minItems": 2,
							"maxItems": 2,
						},
					},
					"additionalProperties": false,
				},
			},
		},
		"additionalProperties": false,
	},
}
