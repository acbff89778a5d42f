package taskbank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abhisek/worksheets/internal/docschema"
)

// ErrSchema marks a task document that does not match DocumentSchema.
var ErrSchema = errors.New("task bank document does not match schema")

// ParseDocument decodes one JSON or YAML task document.
func ParseDocument(data []byte, yamlDoc bool) ([]Task, error) {
	var (
		doc any
		raw = data
		err error
	)
	if yamlDoc {
		doc, raw, err = docschema.DecodeYAML(data)
	} else {
		doc, err = docschema.DecodeJSON(data)
	}
	if err != nil {
		return nil, err
	}

	violations, err := docschema.Validate(DocumentSchema, doc)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = fmt.Sprintf("%s: %s", v.Path, v.Message)
		}
		return nil, fmt.Errorf("%w:\n  %s", ErrSchema, strings.Join(msgs, "\n  "))
	}

	if _, isList := doc.([]any); isList {
		var tasks []Task
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		return tasks, nil
	}
	var wrapped struct {
		Tasks []Task `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return wrapped.Tasks, nil
}

// LoadFile reads a single task document and builds a Bank from it.
func LoadFile(path string) (*Bank, error) {
	tasks, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return New(tasks)
}

// LoadDir reads every *.json, *.yaml and *.yml file in dir, in file name
// order, and builds one Bank from the concatenated tasks.
func LoadDir(dir string) (*Bank, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read task bank dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isTaskFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var all []Task
	for _, name := range names {
		tasks, err := readFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return New(all)
}

// Load dispatches to LoadDir or LoadFile depending on what path points at.
func Load(path string) (*Bank, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("task bank %s does not exist", path)
		}
		return nil, fmt.Errorf("stat task bank %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func readFile(path string) ([]Task, error) {
	if !isTaskFile(path) {
		return nil, fmt.Errorf("unsupported task file extension %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	tasks, err := ParseDocument(data, ext != ".json")
	if err != nil {
		return nil, fmt.Errorf("task file %s: %w", path, err)
	}
	return tasks, nil
}

func isTaskFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
