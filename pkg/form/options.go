package form

import "github.com/goliatone/go-formstate/pkg/validation"

// ClearPolicy decides which edits wipe the displayed errors.
type ClearPolicy string

const (
	// ClearPolicyLegacy clears every error on any edit, except edits to
	// fields flagged KeepErrorsOnEdit (password and its confirmation in the
	// registration schema), which leave messages untouched until the next
	// submit.
	ClearPolicyLegacy ClearPolicy = "legacy"
	// ClearPolicyUniform clears every error on any edit.
	ClearPolicyUniform ClearPolicy = "uniform"
)

// AcceptFunc receives the typed record of an accepted submit.
type AcceptFunc func(validation.TypedRecord)

// RejectFunc receives the error map of a rejected submit.
type RejectFunc func(validation.ErrorMap)

// TransitionFunc observes submission state machine transitions.
type TransitionFunc func(from, to Phase)

// Sanitizer normalises free-text input before it is stored.
type Sanitizer func(string) string

// Option configures a State.
type Option func(*State)

// WithClearPolicy selects the bulk-clear policy. Empty values are ignored.
func WithClearPolicy(policy ClearPolicy) Option {
	return func(s *State) {
		if policy != "" {
			s.policy = policy
		}
	}
}

// WithOnAccept registers the boundary collaborator for accepted submits.
func WithOnAccept(fn AcceptFunc) Option {
	return func(s *State) {
		s.onAccept = fn
	}
}

// WithOnReject registers a callback for rejected submits.
func WithOnReject(fn RejectFunc) Option {
	return func(s *State) {
		s.onReject = fn
	}
}

// WithTransitionHook observes every phase change.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(s *State) {
		s.onTransition = fn
	}
}

// WithSanitizer replaces the sanitizer applied to fields flagged Sanitize.
// Passing nil disables sanitising.
func WithSanitizer(fn Sanitizer) Option {
	return func(s *State) {
		s.sanitize = fn
	}
}
