package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/visibility"
	"github.com/goliatone/go-formstate/pkg/visibility/expr"
)

// Engine evaluates records against a compiled schema. It holds no mutable
// state after New returns and may be shared across passes and goroutines.
type Engine struct {
	schema      rules.Schema
	patterns    map[string]*regexp.Regexp
	controllers map[string][]string
	evaluator   visibility.Evaluator
	extras      map[string]any
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator replaces the expression evaluator used for conditional
// rules.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// WithExtras exposes host values to conditions under the `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(e *Engine) {
		e.extras = extras
	}
}

// New validates and compiles schema.
func New(schema rules.Schema, options ...Option) (*Engine, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	controllers, err := schema.Controllers()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		schema:      schema,
		patterns:    make(map[string]*regexp.Regexp),
		controllers: controllers,
		evaluator:   expr.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	for _, rule := range schema.Rules {
		for _, check := range rule.Checks {
			if check.Kind != rules.KindPattern {
				continue
			}
			pattern := check.Param(rules.ParamPattern)
			if _, ok := e.patterns[pattern]; ok {
				continue
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", rule.Name, err)
			}
			e.patterns[pattern] = re
		}
	}
	return e, nil
}

// MustNew is New for schemas known to be valid at compile time.
func MustNew(schema rules.Schema, options ...Option) *Engine {
	e, err := New(schema, options...)
	if err != nil {
		panic(err)
	}
	return e
}

// Schema returns the schema the engine was built from.
func (e *Engine) Schema() rules.Schema {
	return e.schema
}

// Dependents returns the conditional fields whose condition reads field.
func (e *Engine) Dependents(field string) []string {
	return append([]string(nil), e.controllers[field]...)
}

// Active reports whether rule applies to record. Rules without a condition
// are always active. A condition that cannot be evaluated leaves the rule
// inactive so a field the user cannot see never blocks submission.
func (e *Engine) Active(rule rules.Rule, record Record) bool {
	cond := rule.Condition()
	if cond == "" {
		return true
	}
	ok, err := e.evaluator.Eval(rule.Name, cond, e.context(record))
	return err == nil && ok
}

// Visibility returns the VisibilityFlag of every conditional field.
func (e *Engine) Visibility(record Record) map[string]bool {
	out := make(map[string]bool)
	for _, rule := range e.schema.Rules {
		if rule.Conditional() {
			out[rule.Name] = e.Active(rule, record)
		}
	}
	return out
}

// Validate runs every rule against record. Each field stops at its first
// failing check, so at most one message per field is reported.
func (e *Engine) Validate(record Record) Result {
	typed := make(TypedRecord, len(e.schema.Rules))
	var issues []Issue

	for _, rule := range e.schema.Rules {
		if !e.Active(rule, record) {
			continue
		}
		value := record[rule.Name]
		if check, failed := e.firstFailure(rule, value, record); failed {
			issues = append(issues, Issue{
				Field:   rule.Name,
				Class:   check.Kind.Class(),
				Message: check.Message,
			})
			continue
		}
		typed[rule.Name] = coerce(rule.Type, value)
	}

	if len(issues) == 0 {
		return Result{Typed: typed}
	}

	errs := make(ErrorMap, len(issues))
	for _, issue := range issues {
		errs[issue.Field] = append(errs[issue.Field], issue.Message)
	}
	return Result{Errors: errs, Issues: issues}
}

func (e *Engine) firstFailure(rule rules.Rule, value any, record Record) (rules.Check, bool) {
	for _, check := range rule.Checks {
		if !e.passes(rule, check, value, record) {
			return check, true
		}
	}
	return rules.Check{}, false
}

func (e *Engine) passes(rule rules.Rule, check rules.Check, value any, record Record) bool {
	if check.Kind == rules.KindRequired {
		return !isEmpty(value)
	}
	if check.Kind == rules.KindRequiredWhen {
		ok, err := e.evaluator.Eval(rule.Name, check.Param(rules.ParamWhen), e.context(record))
		if err != nil || !ok {
			return true
		}
		return !isEmpty(value)
	}
	if check.Kind == rules.KindEqualsField {
		return text(value) == text(record[check.Param(rules.ParamField)])
	}

	// Remaining checks are format predicates and leave absent values to
	// the required check.
	if isEmpty(value) {
		return true
	}
	raw := text(value)

	switch check.Kind {
	case rules.KindType:
		return typeMatches(rule.Type, value)
	case rules.KindEmail:
		return validEmail(raw)
	case rules.KindPattern:
		re := e.patterns[check.Param(rules.ParamPattern)]
		return re != nil && re.MatchString(raw)
	case rules.KindPrefix:
		return hasPrefix(raw, check.Params[rules.ParamPrefix])
	case rules.KindMinDigits:
		return digitCount(raw) >= intParam(check)
	case rules.KindMaxDigits:
		return digitCount(raw) <= intParam(check)
	case rules.KindPositive:
		n, ok := number(value)
		return ok && n > 0
	case rules.KindInteger:
		n, ok := number(value)
		return ok && isIntegral(n)
	case rules.KindOneOf:
		for _, option := range check.Values {
			if raw == option {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (e *Engine) context(record Record) visibility.Context {
	return visibility.Context{Values: record, Extras: e.extras}
}
