package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Session drives a form.State from the terminal. Answers are routed through
// State.Set, so the state's clearing and visibility rules apply exactly as
// they would for any other front end.
type Session struct {
	state        *form.State
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
	theme        Theme
}

// NewSession constructs a session with defaults (survey driver, JSON output).
func NewSession(state *form.State, options ...Option) (*Session, error) {
	if state == nil {
		return nil, ErrNilState
	}
	s := &Session{
		state:        state,
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// ContentType reports the serialization format used by Run.
func (s *Session) ContentType() string {
	if s.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Run prompts every visible field, submits, and on rejection prints the
// errors and re-prompts the failing fields plus any field revealed while
// answering. It returns the serialized typed record once a submission is
// accepted.
func (s *Session) Run(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		pending map[string]bool
		hints   validation.ErrorMap
	)
	for attempt := 1; ; attempt++ {
		if err := s.promptPass(ctx, pending, hints); err != nil {
			return nil, err
		}

		outcome := s.state.Submit()
		if outcome.Accepted() {
			return s.serialize(outcome.Typed)
		}
		if err := s.report(ctx, outcome.Errors); err != nil {
			return nil, err
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("%w: %d attempts", ErrTooManyAttempts, attempt)
		}

		hints = outcome.Errors
		pending = make(map[string]bool, len(hints))
		for _, field := range hints.Fields() {
			pending[field] = true
		}
	}
}

// promptPass asks for every visible field when pending is nil. Otherwise it
// asks for the pending fields and for fields that were hidden when the pass
// started but became visible during it.
func (s *Session) promptPass(ctx context.Context, pending map[string]bool, hints validation.ErrorMap) error {
	before := make(map[string]bool)
	for _, rule := range s.state.VisibleRules() {
		before[rule.Name] = true
	}
	for _, rule := range s.state.Schema().Rules {
		if !s.state.Visible(rule.Name) {
			continue
		}
		if pending != nil && !pending[rule.Name] && before[rule.Name] {
			continue
		}
		answer, err := s.ask(ctx, rule, hints.First(rule.Name))
		if err != nil {
			return err
		}
		if err := s.state.Set(rule.Name, answer); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) ask(ctx context.Context, rule rules.Rule, help string) (string, error) {
	message := s.theme.PromptPrefix + rule.DisplayLabel()
	current := currentText(s.state.Value(rule.Name))

	if options := rule.Options(); len(options) > 0 {
		for {
			idx, err := s.driver.Select(ctx, SelectConfig{
				Message:      message,
				Options:      options,
				DefaultIndex: indexOf(options, current),
				Help:         help,
			})
			if err != nil {
				return "", err
			}
			if idx >= 0 && idx < len(options) {
				return options[idx], nil
			}
			if err := s.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", s.theme.ErrorPrefix, rule.Name)); err != nil {
				return "", err
			}
		}
	}

	if rule.Secret {
		return s.driver.Password(ctx, InputConfig{Message: message, Help: help})
	}
	return s.driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help})
}

func (s *Session) report(ctx context.Context, errs validation.ErrorMap) error {
	if err := s.driver.Info(ctx, s.theme.InfoPrefix+"Please correct the following fields:"); err != nil {
		return err
	}
	for _, rule := range s.state.Schema().Rules {
		for _, msg := range errs[rule.Name] {
			line := fmt.Sprintf("%s%s: %s", s.theme.ErrorPrefix, rule.DisplayLabel(), msg)
			if err := s.driver.Info(ctx, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// serialize renders the accepted record for the terminal. Secret values are
// masked in every format; hosts needing them read form.State.LastAccepted
// or use an accept callback.
func (s *Session) serialize(typed validation.TypedRecord) ([]byte, error) {
	if s.outputFormat == OutputFormatPrettyText {
		return []byte(s.prettyPrint(typed)), nil
	}
	out := make(map[string]any, len(typed))
	for _, rule := range s.state.Schema().Rules {
		if value, ok := typed[rule.Name]; ok {
			out[rule.Name] = displayValue(rule, value)
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("tui: encode record: %w", err)
	}
	return data, nil
}

// prettyPrint lists fields in schema order.
func (s *Session) prettyPrint(typed validation.TypedRecord) string {
	var b strings.Builder
	for _, rule := range s.state.Schema().Rules {
		value, ok := typed[rule.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s=%v\n", rule.Name, displayValue(rule, value))
	}
	return b.String()
}

const secretMask = "********"

func displayValue(rule rules.Rule, value any) any {
	if rule.Secret {
		return secretMask
	}
	return value
}

func currentText(value any) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprint(value)
}
