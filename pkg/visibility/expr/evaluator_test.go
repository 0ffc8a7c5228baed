package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/visibility"
)

func TestEvaluatorStringComparison(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `maritalStatus == "married"`

	cases := []struct {
		value any
		want  bool
	}{
		{"married", true},
		{"unmarried", false},
		{"", false},
		{nil, false},
	}
	for _, tc := range cases {
		ok, err := eval.Eval("spouseName", rule, visibility.Context{
			Values: map[string]any{"maritalStatus": tc.value},
		})
		if err != nil {
			t.Fatalf("Eval returned error: %v", err)
		}
		if ok != tc.want {
			t.Fatalf("maritalStatus=%v: got %v, want %v", tc.value, ok, tc.want)
		}
	}
}

func TestEvaluatorMissingValueIsFalse(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("spouseName", `maritalStatus == "married"`, visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false when controlling field is absent")
	}
}

func TestEvaluatorComposition(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{
		Values: map[string]any{"status": "married", "age": "30", "agree": "true"},
		Extras: map[string]any{"beta": true},
	}

	cases := map[string]bool{
		`status == married && age == 30`:           true,
		`status != "married" || agree`:             true,
		`!(status == "married")`:                   false,
		`extras.beta && age != 0`:                  true,
		`agree == false`:                           false,
		`missing == null`:                          true,
		`status == 'married'`:                      true,
		`(status == "x" || age == 30) && !missing`: true,
	}
	for rule, want := range cases {
		ok, err := eval.Eval("field", rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", rule, err)
		}
		if ok != want {
			t.Fatalf("Eval(%q) = %v, want %v", rule, ok, want)
		}
	}
}

func TestEvaluatorEmptyRuleIsVisible(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("field", "   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected empty rule to evaluate true")
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{
		`status = "married"`,
		`status == "married`,
		`(status == "married"`,
		`status == "a" &`,
		`== "married"`,
		`status ==`,
		`status == "a" "b"`,
	} {
		if _, err := Compile(rule); err == nil {
			t.Fatalf("Compile(%q) expected error", rule)
		}
	}
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	deps, err := Dependencies(`maritalStatus == "married" && (age != 0 || extras.beta) && !maritalStatus`)
	if err != nil {
		t.Fatalf("Dependencies returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"age", "maritalStatus"}, deps); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}

	deps, err = Dependencies("")
	if err != nil {
		t.Fatalf("Dependencies returned error: %v", err)
	}
	if deps != nil {
		t.Fatalf("expected no dependencies for empty rule, got %v", deps)
	}
}
