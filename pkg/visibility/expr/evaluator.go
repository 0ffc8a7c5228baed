package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Evaluator is the default visibility evaluator for conditional fields.
//
// Supported syntax:
// - truthiness: `spouseName`, `!newsletter`
// - comparisons: `maritalStatus == "married"`, `age != 0`, `agree == true`
// - composition: `a == "x" && b != "y"`, `a || b`, parentheses
//
// Identifiers resolve against visibility.Context.Values, or against
// visibility.Context.Extras when prefixed with `extras.`.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval compiles rule and evaluates it. An empty rule is always true.
func (e *Evaluator) Eval(field, rule string, ctx visibility.Context) (bool, error) {
	expression, err := Compile(rule)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: field %q: %w", field, err)
	}
	return expression.Eval(ctx)
}

// Expression is a parsed rule ready for repeated evaluation.
type Expression struct {
	source string
	root   node
}

// Compile parses rule. Empty input yields an expression that is always true.
func Compile(rule string) (*Expression, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Expression{}, nil
	}
	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("unexpected token %q", p.peek().text)
	}
	return &Expression{source: trimmed, root: root}, nil
}

// String returns the normalised source of the expression.
func (x *Expression) String() string {
	if x == nil {
		return ""
	}
	return x.source
}

// Eval evaluates the expression against ctx.
func (x *Expression) Eval(ctx visibility.Context) (bool, error) {
	if x == nil || x.root == nil {
		return true, nil
	}
	return x.root.eval(ctx)
}

// Dependencies lists the record fields the expression reads, sorted and
// de-duplicated. Identifiers under `extras.` are not record fields and are
// omitted.
func (x *Expression) Dependencies() []string {
	if x == nil || x.root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	x.root.collect(seen)
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dependencies compiles rule and returns the record fields it reads.
func Dependencies(rule string) ([]string, error) {
	expression, err := Compile(rule)
	if err != nil {
		return nil, err
	}
	return expression.Dependencies(), nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func lex(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{tokNeq, "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{tokNot, "!"})
			i++
		case ch == '=' || ch == '&' || ch == '|':
			if i+1 >= len(input) || input[i+1] != ch {
				return nil, fmt.Errorf("unexpected %q; use %q", string(ch), string([]byte{ch, ch}))
			}
			kind := map[byte]tokenKind{'=': tokEq, '&': tokAnd, '|': tokOr}[ch]
			tokens = append(tokens, token{kind, input[i : i+2]})
			i += 2
		case ch == '"' || ch == '\'':
			end := closingQuote(input, i)
			if end < 0 {
				return nil, errors.New("unterminated string literal")
			}
			raw := input[i : end+1]
			if ch == '\'' {
				inner := strings.ReplaceAll(raw[1:len(raw)-1], `\'`, `'`)
				raw = `"` + strings.ReplaceAll(inner, `"`, `\"`) + `"`
			}
			value, err := strconv.Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid string literal: %w", err)
			}
			tokens = append(tokens, token{tokString, value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}
	return tokens, nil
}

func closingQuote(input string, open int) int {
	quote := input[open]
	for i := open + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}

func classifyWord(word string) token {
	switch strings.ToLower(word) {
	case "true", "false":
		return token{tokBool, strings.ToLower(word)}
	case "null", "nil":
		return token{tokNull, "null"}
	}
	if looksNumeric(word) {
		return token{tokNumber, word}
	}
	return token{tokIdent, word}
}

func looksNumeric(word string) bool {
	if word == "" {
		return false
	}
	switch ch := word[0]; {
	case ch >= '0' && ch <= '9', ch == '-', ch == '+', ch == '.':
		_, err := strconv.ParseFloat(word, 64)
		return err == nil
	}
	return false
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool  { return p.pos >= len(p.tokens) }
func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) accept(kind tokenKind) bool {
	if p.done() || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errors.New("missing closing ')'")
		}
		return inner, nil
	}
	if p.done() {
		return nil, errors.New("empty expression")
	}
	ident := p.peek()
	if ident.kind != tokIdent {
		return nil, fmt.Errorf("expected identifier, got %q", ident.text)
	}
	p.pos++

	negate := false
	switch {
	case p.accept(tokEq):
	case p.accept(tokNeq):
		negate = true
	default:
		return truthyNode{ident.text}, nil
	}
	if p.done() {
		return nil, errors.New("missing literal")
	}
	lit := p.peek()
	p.pos++
	switch lit.kind {
	case tokString, tokNumber, tokBool, tokNull:
	case tokIdent:
		// bare words compare as strings: `status == married`
		lit.kind = tokString
	default:
		return nil, fmt.Errorf("expected literal, got %q", lit.text)
	}
	return compareNode{ident: ident.text, negate: negate, lit: lit}, nil
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
	collect(seen map[string]struct{})
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

func (n orNode) collect(seen map[string]struct{}) {
	n.left.collect(seen)
	n.right.collect(seen)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

func (n andNode) collect(seen map[string]struct{}) {
	n.left.collect(seen)
	n.right.collect(seen)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) collect(seen map[string]struct{}) { n.inner.collect(seen) }

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.ident)
	return ok && truthy(value), nil
}

func (n truthyNode) collect(seen map[string]struct{}) { markField(seen, n.ident) }

type compareNode struct {
	ident  string
	negate bool
	lit    token
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)

	var equal bool
	switch n.lit.kind {
	case tokNull:
		equal = value == nil
	case tokBool:
		equal = truthy(value) == (n.lit.text == "true")
	case tokNumber:
		want, err := strconv.ParseFloat(n.lit.text, 64)
		if err != nil {
			return false, fmt.Errorf("invalid number literal %q", n.lit.text)
		}
		got, ok := toNumber(value)
		equal = ok && got == want
	default:
		equal = toString(value) == n.lit.text
	}
	return equal != n.negate, nil
}

func (n compareNode) collect(seen map[string]struct{}) { markField(seen, n.ident) }

const extrasPrefix = "extras."

func markField(seen map[string]struct{}, ident string) {
	if strings.HasPrefix(strings.ToLower(ident), extrasPrefix) {
		return
	}
	seen[ident] = struct{}{}
}

func lookup(ctx visibility.Context, ident string) (any, bool) {
	if strings.HasPrefix(strings.ToLower(ident), extrasPrefix) {
		value, ok := ctx.Extras[ident[len(extrasPrefix):]]
		return value, ok
	}
	value, ok := ctx.Values[ident]
	return value, ok
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return strings.TrimSpace(v) != ""
	default:
		if n, ok := toNumber(v); ok {
			return n != 0
		}
		return true
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
