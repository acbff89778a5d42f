// Package docschema validates decoded JSON/YAML documents against JSON Schema
// definitions. Compiled schemas are cached by name.
package docschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Schema names a JSON Schema definition.
type Schema struct {
	// Name identifies the schema in the cache, e.g. "worksheet-template".
	Name string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Violation is a single schema failure at a document location.
type Violation struct {
	// Path is a dotted path such as "sections[1].count"; empty for the root.
	Path    string
	Message string
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

var printer = message.NewPrinter(language.English)

// DecodeJSON parses raw JSON into a generic value suitable for Validate.
func DecodeJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// DecodeYAML parses YAML and normalizes it to the same generic shape that
// DecodeJSON produces, returning the JSON encoding alongside it.
func DecodeYAML(raw []byte) (any, []byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, nil, fmt.Errorf("invalid YAML: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("convert YAML to JSON: %w", err)
	}
	parsed, err := DecodeJSON(b)
	if err != nil {
		return nil, nil, err
	}
	return parsed, b, nil
}

// Validate checks a decoded document against schema. It returns the leaf
// violations found, or an error if the schema itself cannot be compiled.
func Validate(schema *Schema, doc any) ([]Violation, error) {
	compiled, err := compiledSchema(schema)
	if err != nil {
		return nil, err
	}
	err = compiled.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("schema %q: %w", schema.Name, err)
	}
	var out []Violation
	collect(ve, &out)
	return out, nil
}

// collect flattens the validation error tree into its leaves.
func collect(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    FormatPath(ve.InstanceLocation),
			Message: ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}

// FormatPath renders JSON pointer tokens as "a.b[2].c".
func FormatPath(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := DecodeJSON(defBytes)
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
