package visibility

// Evaluator decides whether a conditional field is active for the current
// record. The same answer drives both rendering (VisibilityFlag) and whether
// the field's requirement applies.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context provides the inputs an Evaluator reads. Values holds the current
// draft record keyed by field name; Extras lets hosts inject values that are
// not part of the record (feature flags, roles) under the `extras.` prefix.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}
