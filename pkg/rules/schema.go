package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/visibility/expr"
)

var (
	ErrEmptyFieldName   = errors.New("rules: field name is required")
	ErrDuplicateField   = errors.New("rules: duplicate field")
	ErrUnknownKind      = errors.New("rules: unknown check kind")
	ErrUnknownReference = errors.New("rules: reference to unknown field")
	ErrSelfReference    = errors.New("rules: field references itself")
	ErrInvalidParam     = errors.New("rules: invalid check parameter")
)

// Schema is the ordered rule table of a form. Order determines evaluation
// and display order.
type Schema struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []Rule `json:"fields" yaml:"fields"`
}

// Lookup returns the rule for name.
func (s Schema) Lookup(name string) (Rule, bool) {
	for _, rule := range s.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// Names returns field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Rules))
	for _, rule := range s.Rules {
		out = append(out, rule.Name)
	}
	return out
}

// Defaults returns the initial draft: every field present, set to its
// declared default or the empty string.
func (s Schema) Defaults() map[string]any {
	out := make(map[string]any, len(s.Rules))
	for _, rule := range s.Rules {
		out[rule.Name] = rule.Default
	}
	return out
}

// Controllers maps each controlling field to the conditional fields whose
// condition reads it.
func (s Schema) Controllers() (map[string][]string, error) {
	out := make(map[string][]string)
	for _, rule := range s.Rules {
		deps, err := expr.Dependencies(rule.Condition())
		if err != nil {
			return nil, fmt.Errorf("rules: field %q condition: %w", rule.Name, err)
		}
		for _, dep := range deps {
			out[dep] = append(out[dep], rule.Name)
		}
	}
	return out, nil
}

// Validate checks the schema is internally consistent: names are unique,
// every check kind is known, references point at other declared fields and
// every pattern and condition compiles.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s.Rules))
	for _, rule := range s.Rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return ErrEmptyFieldName
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		seen[name] = struct{}{}
	}

	for _, rule := range s.Rules {
		if err := s.validateRule(rule, seen); err != nil {
			return err
		}
	}
	return nil
}

func (s Schema) validateRule(rule Rule, fields map[string]struct{}) error {
	switch rule.Type {
	case "", FieldTypeString, FieldTypeNumber, FieldTypeInteger, FieldTypeEnum:
	default:
		return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidParam, rule.Name, rule.Type)
	}

	if cond := rule.Condition(); cond != "" {
		deps, err := expr.Dependencies(cond)
		if err != nil {
			return fmt.Errorf("%w: field %q condition: %v", ErrInvalidParam, rule.Name, err)
		}
		for _, dep := range deps {
			if err := checkReference(rule.Name, dep, fields); err != nil {
				return err
			}
		}
	}

	for idx, check := range rule.Checks {
		if !check.Kind.Known() {
			return fmt.Errorf("%w: field %q check %d: %q", ErrUnknownKind, rule.Name, idx, check.Kind)
		}
		if err := validateCheck(rule.Name, check, fields); err != nil {
			return fmt.Errorf("field %q check %d (%s): %w", rule.Name, idx, check.Kind, err)
		}
	}
	return nil
}

func validateCheck(field string, check Check, fields map[string]struct{}) error {
	switch check.Kind {
	case KindPattern:
		pattern := check.Param(ParamPattern)
		if pattern == "" {
			return fmt.Errorf("%w: pattern is required", ErrInvalidParam)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
	case KindPrefix:
		if check.Params[ParamPrefix] == "" {
			return fmt.Errorf("%w: prefix is required", ErrInvalidParam)
		}
	case KindMinDigits, KindMaxDigits:
		n, err := strconv.Atoi(check.Param(ParamValue))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: value must be a non-negative integer", ErrInvalidParam)
		}
	case KindOneOf:
		if len(check.Values) == 0 {
			return fmt.Errorf("%w: oneOf requires values", ErrInvalidParam)
		}
	case KindRequiredWhen:
		if check.Param(ParamWhen) == "" {
			return fmt.Errorf("%w: when expression is required", ErrInvalidParam)
		}
		if _, err := expr.Compile(check.Param(ParamWhen)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
	case KindEqualsField:
		return checkReference(field, check.Param(ParamField), fields)
	}
	return nil
}

func checkReference(field, target string, fields map[string]struct{}) error {
	if target == field {
		return fmt.Errorf("%w: %q", ErrSelfReference, field)
	}
	if _, ok := fields[target]; !ok {
		return fmt.Errorf("%w: %q references %q", ErrUnknownReference, field, target)
	}
	return nil
}
