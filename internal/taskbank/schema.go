package taskbank

import "github.com/abhisek/worksheets/internal/docschema"

var taskDefinition = map[string]any{
	"type":     "object",
	"required": []any{"id", "skillId", "difficulty", "content", "answer"},
	"properties": map[string]any{
		"id":         map[string]any{"type": "string", "minLength": 1},
		"skillId":    map[string]any{"type": "string", "minLength": 1},
		"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
		"content":    map[string]any{"type": "string"},
		"answer":     map[string]any{"type": "string"},
	},
}

// DocumentSchema accepts either {"tasks": [...]} or a bare task array.
var DocumentSchema = &docschema.Schema{
	Name: "task-bank",
	Definition: map[string]any{
		"oneOf": []any{
			map[string]any{
				"type":     "object",
				"required": []any{"tasks"},
				"properties": map[string]any{
					"tasks": map[string]any{"type": "array", "items": taskDefinition},
				},
			},
			map[string]any{"type": "array", "items": taskDefinition},
		},
	},
}
