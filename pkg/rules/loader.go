package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptySchema is returned when a schema document has no content.
var ErrEmptySchema = errors.New("rules: schema document is empty")

// Load parses a JSON or YAML schema document and validates it.
func Load(data []byte) (Schema, error) {
	return load(data, "schema")
}

// LoadFile reads and parses the schema document at path.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return load(data, path)
}

// LoadFS reads and parses the schema document at path inside fsys.
func LoadFS(fsys fs.FS, path string) (Schema, error) {
	if fsys == nil {
		return Schema{}, errors.New("rules: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Schema{}, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return load(data, path)
}

func load(data []byte, source string) (Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Schema{}, fmt.Errorf("%w: %s", ErrEmptySchema, source)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		schema = Schema{}
		if yerr := yaml.Unmarshal(data, &schema); yerr != nil {
			return Schema{}, fmt.Errorf("rules: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	normalise(&schema)
	if err := schema.Validate(); err != nil {
		return Schema{}, fmt.Errorf("rules: %s: %w", source, err)
	}
	return schema, nil
}

func normalise(schema *Schema) {
	schema.Name = strings.TrimSpace(schema.Name)
	for i := range schema.Rules {
		rule := &schema.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		rule.VisibleWhen = strings.TrimSpace(rule.VisibleWhen)
		if rule.Type == "" {
			rule.Type = FieldTypeString
		}
		for j := range rule.Checks {
			rule.Checks[j].Kind = Kind(strings.TrimSpace(string(rule.Checks[j].Kind)))
		}
	}
}
