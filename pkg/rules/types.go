package rules

import (
	"fmt"
	"strings"
)

// FieldType is the declared type a raw field value is coerced into once it
// passes validation.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeInteger FieldType = "integer"
	FieldTypeEnum    FieldType = "enum"
)

// Kind tags a Check. The validation engine interprets every kind; rules never
// carry closures.
type Kind string

const (
	KindRequired     Kind = "required"
	KindType         Kind = "type"
	KindEmail        Kind = "email"
	KindPattern      Kind = "pattern"
	KindPrefix       Kind = "prefix"
	KindMinDigits    Kind = "minDigits"
	KindMaxDigits    Kind = "maxDigits"
	KindPositive     Kind = "positive"
	KindInteger      Kind = "integer"
	KindOneOf        Kind = "oneOf"
	KindRequiredWhen Kind = "requiredWhen"
	KindEqualsField  Kind = "equalsField"
)

// Param keys understood by the engine. Thresholds are encoded as strings so
// YAML and JSON schema files stay stable.
const (
	ParamPattern = "pattern"
	ParamPrefix  = "prefix"
	ParamValue   = "value"
	ParamField   = "field"
	ParamWhen    = "when"
)

// Class groups failures into the error taxonomy surfaced alongside messages.
type Class string

const (
	ClassMissingValue           Class = "MissingValue"
	ClassTypeMismatch           Class = "TypeMismatch"
	ClassFormatViolation        Class = "FormatViolation"
	ClassCrossFieldMismatch     Class = "CrossFieldMismatch"
	ClassConditionalRequirement Class = "ConditionalRequirement"
)

var kindClasses = map[Kind]Class{
	KindRequired:     ClassMissingValue,
	KindType:         ClassTypeMismatch,
	KindEmail:        ClassFormatViolation,
	KindPattern:      ClassFormatViolation,
	KindPrefix:       ClassFormatViolation,
	KindMinDigits:    ClassFormatViolation,
	KindMaxDigits:    ClassFormatViolation,
	KindPositive:     ClassFormatViolation,
	KindInteger:      ClassFormatViolation,
	KindOneOf:        ClassFormatViolation,
	KindRequiredWhen: ClassConditionalRequirement,
	KindEqualsField:  ClassCrossFieldMismatch,
}

// Class reports the taxonomy bucket failures of this kind belong to.
func (k Kind) Class() Class {
	return kindClasses[k]
}

// Known reports whether the engine can interpret the kind.
func (k Kind) Known() bool {
	_, ok := kindClasses[k]
	return ok
}

// Check is a single ordered predicate attached to a field. Params holds
// scalar arguments (see the Param* keys) while Values lists enum tokens for
// KindOneOf.
type Check struct {
	Kind    Kind              `json:"kind" yaml:"kind"`
	Message string            `json:"message" yaml:"message"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Values  []string          `json:"values,omitempty" yaml:"values,omitempty"`
}

// Param returns the trimmed parameter value for key.
func (c Check) Param(key string) string {
	if len(c.Params) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Params[key])
}

// Rule is the validation contract of one field. Checks run in declaration
// order and the first failure wins.
//
// A rule holding a KindRequiredWhen check is conditional: its requirement
// and its visibility both follow the same expression (see Condition). A rule
// holding KindEqualsField compares itself with another field of the same
// record.
type Rule struct {
	Name             string    `json:"name" yaml:"name"`
	Type             FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Label            string    `json:"label,omitempty" yaml:"label,omitempty"`
	Default          string    `json:"default,omitempty" yaml:"default,omitempty"`
	Secret           bool      `json:"secret,omitempty" yaml:"secret,omitempty"`
	Sanitize         bool      `json:"sanitize,omitempty" yaml:"sanitize,omitempty"`
	KeepErrorsOnEdit bool      `json:"keepErrorsOnEdit,omitempty" yaml:"keepErrorsOnEdit,omitempty"`
	VisibleWhen      string    `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Checks           []Check   `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Condition returns the expression controlling whether the rule applies.
// An explicit VisibleWhen wins; otherwise the first requiredWhen check's
// expression is used. Empty means the rule always applies.
func (r Rule) Condition() string {
	if when := strings.TrimSpace(r.VisibleWhen); when != "" {
		return when
	}
	for _, check := range r.Checks {
		if check.Kind == KindRequiredWhen {
			return check.Param(ParamWhen)
		}
	}
	return ""
}

// Conditional reports whether the rule depends on another field's value.
func (r Rule) Conditional() bool {
	return r.Condition() != ""
}

// Required reports whether the rule carries an unconditional required check.
func (r Rule) Required() bool {
	return r.has(KindRequired)
}

// CrossField returns the name of the field this rule must equal, if any.
func (r Rule) CrossField() (string, bool) {
	for _, check := range r.Checks {
		if check.Kind == KindEqualsField {
			return check.Param(ParamField), true
		}
	}
	return "", false
}

// Options returns the enum tokens declared by the first oneOf check.
func (r Rule) Options() []string {
	for _, check := range r.Checks {
		if check.Kind == KindOneOf {
			return append([]string(nil), check.Values...)
		}
	}
	return nil
}

// DisplayLabel returns Label or falls back to the field name.
func (r Rule) DisplayLabel() string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return r.Name
}

func (r Rule) has(kind Kind) bool {
	for _, check := range r.Checks {
		if check.Kind == kind {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	return fmt.Sprintf("rule(%s, %d checks)", r.Name, len(r.Checks))
}
