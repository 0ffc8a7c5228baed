package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// ErrUnknownField is returned when an edit targets a field the schema does
// not declare.
var ErrUnknownField = errors.New("form: unknown field")

// Phase is a state of the submission state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseAccepted   Phase = "accepted"
	PhaseRejected   Phase = "rejected"
)

// Outcome reports how a submit ended. Phase is PhaseAccepted with Typed set,
// or PhaseRejected with Errors and Issues set.
type Outcome struct {
	Phase  Phase
	Typed  validation.TypedRecord
	Errors validation.ErrorMap
	Issues []validation.Issue
}

// Accepted reports whether the submit produced a typed record.
func (o Outcome) Accepted() bool {
	return o.Phase == PhaseAccepted
}

// State owns the draft record, the displayed error map and the visibility
// flags of one form instance. It is driven from a single interaction loop
// and is not safe for concurrent use.
type State struct {
	engine  *validation.Engine
	schema  rules.Schema
	values  validation.Record
	errors  validation.ErrorMap
	visible map[string]bool
	phase   Phase
	last    validation.TypedRecord

	policy       ClearPolicy
	sanitize     Sanitizer
	onAccept     AcceptFunc
	onReject     RejectFunc
	onTransition TransitionFunc
}

// New creates a State seeded with the schema defaults.
func New(engine *validation.Engine, options ...Option) *State {
	s := &State{
		engine:   engine,
		schema:   engine.Schema(),
		phase:    PhaseIdle,
		policy:   ClearPolicyLegacy,
		sanitize: StripMarkup,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.reset()
	return s
}

// Set records a user edit. Depending on the clear policy the edit wipes
// every displayed error; it never re-runs validation. Edits to a field that
// controls a condition recompute the visibility flags. Values of fields that
// become hidden are kept, so switching back restores what the user typed.
func (s *State) Set(field string, value any) error {
	rule, ok := s.schema.Lookup(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if str, isString := value.(string); isString && rule.Sanitize && s.sanitize != nil {
		value = s.sanitize(str)
	}
	s.values[field] = value

	if s.clearsOnEdit(rule) {
		s.errors = validation.ErrorMap{}
	}
	if len(s.engine.Dependents(field)) > 0 {
		s.refreshVisibility()
	}
	return nil
}

// Submit runs a full validation pass over the current draft.
//
// Accepted: the draft resets to defaults, errors clear and the typed record
// goes to the accept callback. Rejected: the draft is kept and the error map
// replaces the previous one in full. Both return to idle before Submit
// returns.
func (s *State) Submit() Outcome {
	s.transition(PhaseValidating)
	result := s.engine.Validate(s.values.Clone())

	if result.Valid() {
		s.transition(PhaseAccepted)
		s.last = result.Typed
		s.reset()
		if s.onAccept != nil {
			s.onAccept(result.Typed)
		}
		s.transition(PhaseIdle)
		return Outcome{Phase: PhaseAccepted, Typed: result.Typed}
	}

	s.transition(PhaseRejected)
	s.errors = result.Errors.Clone()
	if s.onReject != nil {
		s.onReject(result.Errors.Clone())
	}
	s.transition(PhaseIdle)
	return Outcome{Phase: PhaseRejected, Errors: result.Errors, Issues: result.Issues}
}

// Reset restores the default draft and clears all errors.
func (s *State) Reset() {
	s.reset()
}

// Values returns a copy of the current draft.
func (s *State) Values() validation.Record {
	return s.values.Clone()
}

// Value returns the draft value of field.
func (s *State) Value(field string) any {
	return s.values[field]
}

// Errors returns a copy of the displayed error map.
func (s *State) Errors() validation.ErrorMap {
	return s.errors.Clone()
}

// ErrorsFor returns the messages displayed for field.
func (s *State) ErrorsFor(field string) []string {
	return append([]string(nil), s.errors[field]...)
}

// Visible reports whether field's controls should be rendered. Fields
// without a condition are always visible.
func (s *State) Visible(field string) bool {
	if flag, ok := s.visible[field]; ok {
		return flag
	}
	_, declared := s.schema.Lookup(field)
	return declared
}

// Visibility returns a copy of the flags of every conditional field.
func (s *State) Visibility() map[string]bool {
	out := make(map[string]bool, len(s.visible))
	for field, flag := range s.visible {
		out[field] = flag
	}
	return out
}

// VisibleRules returns the rules whose controls are currently shown, in
// schema order.
func (s *State) VisibleRules() []rules.Rule {
	out := make([]rules.Rule, 0, len(s.schema.Rules))
	for _, rule := range s.schema.Rules {
		if s.Visible(rule.Name) {
			out = append(out, rule)
		}
	}
	return out
}

// Phase returns the current submission phase. Outside Submit it is always
// PhaseIdle.
func (s *State) Phase() Phase {
	return s.phase
}

// Policy returns the active clear policy.
func (s *State) Policy() ClearPolicy {
	return s.policy
}

// LastAccepted returns the typed record of the most recent accepted submit.
func (s *State) LastAccepted() validation.TypedRecord {
	return s.last
}

// Schema returns the rule table backing the form.
func (s *State) Schema() rules.Schema {
	return s.schema
}

func (s *State) clearsOnEdit(rule rules.Rule) bool {
	if s.policy == ClearPolicyUniform {
		return true
	}
	return !rule.KeepErrorsOnEdit
}

func (s *State) reset() {
	s.values = validation.Record(s.schema.Defaults())
	s.errors = validation.ErrorMap{}
	s.refreshVisibility()
}

func (s *State) refreshVisibility() {
	s.visible = s.engine.Visibility(s.values)
}

func (s *State) transition(to Phase) {
	from := s.phase
	s.phase = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}
