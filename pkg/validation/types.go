package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// ErrValidationFailed is wrapped by every ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// Record is the raw, untyped working draft keyed by field name. Values are
// strings, numbers or enum tokens exactly as the user supplied them.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// TypedRecord is a record that passed every rule, with values coerced to
// their declared field types (string, float64 or int64).
type TypedRecord map[string]any

// String returns the string value stored for field.
func (t TypedRecord) String(field string) string {
	value, _ := t[field].(string)
	return value
}

// Float returns the numeric value stored for field.
func (t TypedRecord) Float(field string) (float64, bool) {
	switch v := t[field].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Int returns the integral value stored for field. Floats are accepted when
// they carry no fractional part and fit in an int64.
func (t TypedRecord) Int(field string) (int64, bool) {
	switch v := t[field].(type) {
	case int64:
		return v, true
	case float64:
		return toInt64(v)
	}
	return 0, false
}

// ErrorMap holds the messages currently attached to each field. A field with
// no entry, or an empty slice, is valid.
type ErrorMap map[string][]string

// Has reports whether field has at least one message.
func (m ErrorMap) Has(field string) bool {
	return len(m[field]) > 0
}

// First returns the first message for field.
func (m ErrorMap) First(field string) string {
	if msgs := m[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Empty reports whether no field carries a message.
func (m ErrorMap) Empty() bool {
	for _, msgs := range m {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Fields returns the names of fields with messages, sorted.
func (m ErrorMap) Fields() []string {
	var out []string
	for field, msgs := range m {
		if len(msgs) > 0 {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// Clone deep-copies the map.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for field, msgs := range m {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}

// Issue is one field-scoped failure with its taxonomy class.
type Issue struct {
	Field   string
	Class   rules.Class
	Message string
}

// Result is the outcome of one validation pass. Exactly one of Typed and
// Errors is non-nil.
type Result struct {
	Typed  TypedRecord
	Errors ErrorMap
	Issues []Issue
}

// Valid reports whether the pass produced a TypedRecord.
func (r Result) Valid() bool {
	return r.Errors == nil
}

// Err returns a *ValidationError describing the issues, or nil.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Issues: append([]Issue(nil), r.Issues...)}
}

// ValidationError carries the issues of a rejected pass for callers that
// prefer error values over inspecting Result.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Has reports whether an issue exists for field.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, issue := range e.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}
