package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/registration"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

func newEngine(t *testing.T) *validation.Engine {
	t.Helper()
	engine, err := validation.New(registration.Schema())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return engine
}

func validRecord() validation.Record {
	return validation.Record{
		"firstname":       "Ada",
		"lastName":        "Lovelace",
		"email":           "ada@example.com",
		"phone":           "01234567",
		"maritalStatus":   "unmarried",
		"spouseName":      "",
		"age":             "36",
		"password":        "Abc1!def",
		"confirmPassword": "Abc1!def",
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	t.Parallel()

	result := newEngine(t).Validate(validRecord())
	if !result.Valid() {
		t.Fatalf("expected valid record, got errors %v", result.Errors)
	}
	if result.Errors != nil {
		t.Fatalf("expected nil ErrorMap alongside TypedRecord")
	}

	want := validation.TypedRecord{
		"firstname":       "Ada",
		"lastName":        "Lovelace",
		"email":           "ada@example.com",
		"phone":           "01234567",
		"maritalStatus":   "unmarried",
		"age":             float64(36),
		"password":        "Abc1!def",
		"confirmPassword": "Abc1!def",
	}
	if diff := cmp.Diff(want, result.Typed); diff != "" {
		t.Fatalf("typed record mismatch (-want +got):\n%s", diff)
	}
	if result.Err() != nil {
		t.Fatalf("expected nil Err for valid result")
	}
}

func TestValidateMarriedWithSpouseIsAccepted(t *testing.T) {
	t.Parallel()

	record := validRecord()
	record["maritalStatus"] = "married"
	record["spouseName"] = "Charles"
	record["age"] = 36

	result := newEngine(t).Validate(record)
	if !result.Valid() {
		t.Fatalf("expected valid record, got errors %v", result.Errors)
	}
	if got := result.Typed.String("spouseName"); got != "Charles" {
		t.Fatalf("spouseName = %q, want Charles", got)
	}
	if age, ok := result.Typed.Int("age"); !ok || age != 36 {
		t.Fatalf("age = %v (%v), want 36", age, ok)
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	wantMessages := map[string]string{
		"firstname":       "firstname is a required field",
		"lastName":        "lastName is a required field",
		"email":           "Enter a valid email",
		"phone":           "Phone number is required",
		"maritalStatus":   "maritalStatus is a required field",
		"age":             "Please Enter Valid Number",
		"confirmPassword": "Enter a valid password",
	}

	for field, message := range wantMessages {
		record := validRecord()
		record[field] = ""

		result := engine.Validate(record)
		if result.Valid() || result.Typed != nil {
			t.Fatalf("%s: expected rejection without TypedRecord", field)
		}
		want := validation.ErrorMap{field: {message}}
		if diff := cmp.Diff(want, result.Errors); diff != "" {
			t.Fatalf("%s: error map mismatch (-want +got):\n%s", field, diff)
		}
		wantIssues := []validation.Issue{{Field: field, Class: rules.ClassMissingValue, Message: message}}
		if diff := cmp.Diff(wantIssues, result.Issues); diff != "" {
			t.Fatalf("%s: issues mismatch (-want +got):\n%s", field, diff)
		}
	}
}

func TestValidateMissingPasswordAlsoBreaksConfirmation(t *testing.T) {
	t.Parallel()

	record := validRecord()
	record["password"] = ""

	result := newEngine(t).Validate(record)
	want := validation.ErrorMap{
		"password":        {"password is a required field"},
		"confirmPassword": {"Password Should be matched"},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("error map mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	for _, record := range []validation.Record{validRecord(), {"phone": "123"}} {
		first := engine.Validate(record)
		second := engine.Validate(record)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("repeated validation differs (-first +second):\n%s", diff)
		}
	}
}

func TestValidateConditionalSpouseRequirement(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	married := validRecord()
	married["maritalStatus"] = "married"
	married["spouseName"] = ""
	result := engine.Validate(married)
	want := []validation.Issue{{
		Field:   "spouseName",
		Class:   rules.ClassConditionalRequirement,
		Message: "Spouse name is required",
	}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("married issues mismatch (-want +got):\n%s", diff)
	}

	unmarried := validRecord()
	unmarried["maritalStatus"] = "unmarried"
	unmarried["spouseName"] = ""
	result = engine.Validate(unmarried)
	if result.Errors.Has("spouseName") || !result.Valid() {
		t.Fatalf("expected no spouseName error while unmarried, got %v", result.Errors)
	}
}

func TestValidateHiddenSpouseNeverFailsOrLeaks(t *testing.T) {
	t.Parallel()

	record := validRecord()
	record["spouseName"] = "kept from an earlier selection"

	result := newEngine(t).Validate(record)
	if !result.Valid() {
		t.Fatalf("expected valid record, got %v", result.Errors)
	}
	if _, ok := result.Typed["spouseName"]; ok {
		t.Fatalf("hidden spouseName must not reach the typed record")
	}
}

func TestValidateConfirmPasswordMismatch(t *testing.T) {
	t.Parallel()

	record := validRecord()
	record["password"] = "Abcdef1!"
	record["confirmPassword"] = "Abcdef1?"

	result := newEngine(t).Validate(record)
	want := []validation.Issue{{
		Field:   "confirmPassword",
		Class:   rules.ClassCrossFieldMismatch,
		Message: "Password Should be matched",
	}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateConfirmPasswordUsesCurrentPassword(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	record := validRecord()
	if result := engine.Validate(record); !result.Valid() {
		t.Fatalf("expected initial record to be valid, got %v", result.Errors)
	}

	record["password"] = "Xyz9$abc"
	result := engine.Validate(record)
	if got := result.Errors.First("confirmPassword"); got != "Password Should be matched" {
		t.Fatalf("confirmPassword message = %q, want mismatch", got)
	}
	if result.Errors.Has("password") {
		t.Fatalf("new password is valid and must not carry an error")
	}
}

func TestValidatePhoneBoundaries(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	cases := []struct {
		phone string
		want  string
	}{
		{"012345", "Minimum 8 digit is needed"},
		{"01234567", ""},
		{"0123-456-7890", ""},
		{"012345678901", "Maximum 11 character will be allowed"},
		{"123456789", "Must start with zero"},
		{"0abc", "Minimum 8 digit is needed"},
		// the prefix is read after trimming surrounding whitespace
		{" 01234567", ""},
		{" 1234567890", "Must start with zero"},
	}
	for _, tc := range cases {
		record := validRecord()
		record["phone"] = tc.phone
		result := engine.Validate(record)
		if got := result.Errors.First("phone"); got != tc.want {
			t.Fatalf("phone %q: message %q, want %q", tc.phone, got, tc.want)
		}
		if tc.want != "" && result.Issues[0].Class != rules.ClassFormatViolation {
			t.Fatalf("phone %q: class %s, want FormatViolation", tc.phone, result.Issues[0].Class)
		}
	}
}

func TestValidatePasswordBoundaries(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	cases := []struct {
		password string
		valid    bool
	}{
		{"Abc1!def", true},
		{"Abc1!defgh", true},
		{"abcdefgh", false},
		{"Abc1!defghi", false},
		{"Abc1!de", false},
		{"ABC1!DEF", false},
		{"Abc1!de#", false},
		{"Abcdefg1", false},
	}
	for _, tc := range cases {
		record := validRecord()
		record["password"] = tc.password
		record["confirmPassword"] = tc.password

		result := engine.Validate(record)
		if result.Valid() != tc.valid {
			t.Fatalf("password %q: valid=%v, want %v (%v)", tc.password, result.Valid(), tc.valid, result.Errors)
		}
		if !tc.valid && result.Errors.First("password") != registration.PasswordMessage {
			t.Fatalf("password %q: unexpected message %q", tc.password, result.Errors.First("password"))
		}
	}
}

func TestValidateAgeChecksInOrder(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	cases := []struct {
		age   any
		want  string
		class rules.Class
	}{
		{"abc", "Age should be a number", rules.ClassTypeMismatch},
		{"-4", "age must be a positive number", rules.ClassFormatViolation},
		{0, "age must be a positive number", rules.ClassFormatViolation},
		{"2.5", "age must be an integer", rules.ClassFormatViolation},
		{nil, "Please Enter Valid Number", rules.ClassMissingValue},
	}
	for _, tc := range cases {
		record := validRecord()
		record["age"] = tc.age
		result := engine.Validate(record)
		want := []validation.Issue{{Field: "age", Class: tc.class, Message: tc.want}}
		if diff := cmp.Diff(want, result.Issues); diff != "" {
			t.Fatalf("age %v: issues mismatch (-want +got):\n%s", tc.age, diff)
		}
	}
}

func TestValidateEmailSyntax(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	for _, email := range []string{"ada", "ada@", "ada@example", "Ada <ada@example.com>", "ada@example..com"} {
		record := validRecord()
		record["email"] = email
		if got := engine.Validate(record).Errors.First("email"); got != "email must be a valid email" {
			t.Fatalf("email %q: message %q", email, got)
		}
	}
}

func TestValidateRejectsUnknownMaritalStatus(t *testing.T) {
	t.Parallel()

	record := validRecord()
	record["maritalStatus"] = "divorced"
	result := newEngine(t).Validate(record)
	if result.Issues[0].Class != rules.ClassFormatViolation || result.Issues[0].Field != "maritalStatus" {
		t.Fatalf("unexpected issues %v", result.Issues)
	}
	if result.Errors.Has("spouseName") {
		t.Fatalf("spouseName must stay optional for non-married statuses")
	}
}

func TestResultErr(t *testing.T) {
	t.Parallel()

	result := newEngine(t).Validate(validation.Record{})
	err := result.Err()
	if !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !verr.Has("email") || verr.Has("spouseName") {
		t.Fatalf("unexpected issue set: %v", verr)
	}
}

func TestVisibility(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	got := engine.Visibility(validation.Record{"maritalStatus": "married"})
	if diff := cmp.Diff(map[string]bool{"spouseName": true}, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
	got = engine.Visibility(validation.Record{"maritalStatus": "unmarried"})
	if diff := cmp.Diff(map[string]bool{"spouseName": false}, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluatorErrorsKeepFieldInactive(t *testing.T) {
	t.Parallel()

	failing := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return false, errors.New("boom")
	})
	engine, err := validation.New(registration.Schema(), validation.WithEvaluator(failing))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	record := validRecord()
	record["maritalStatus"] = "married"
	if result := engine.Validate(record); !result.Valid() {
		t.Fatalf("expected valid result when condition cannot be evaluated, got %v", result.Errors)
	}
}

func TestNewRejectsInvalidSchema(t *testing.T) {
	t.Parallel()

	schema := rules.Schema{Rules: []rules.Rule{{
		Name: "confirm",
		Checks: []rules.Check{{
			Kind:   rules.KindEqualsField,
			Params: map[string]string{rules.ParamField: "missing"},
		}},
	}}}
	if _, err := validation.New(schema); !errors.Is(err, rules.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestValidateIntegerFieldRange(t *testing.T) {
	t.Parallel()

	engine := validation.MustNew(rules.Schema{Rules: []rules.Rule{{
		Name: "count",
		Type: rules.FieldTypeInteger,
		Checks: []rules.Check{
			{Kind: rules.KindType, Message: "count must be a whole number"},
		},
	}}})

	cases := []struct {
		raw  any
		want string
	}{
		{"42", ""},
		{"-9223372036854775808", ""},
		{"1e30", "count must be a whole number"},
		{"9223372036854775808", "count must be a whole number"},
		{float64(-1e19), "count must be a whole number"},
	}
	for _, tc := range cases {
		result := engine.Validate(validation.Record{"count": tc.raw})
		if got := result.Errors.First("count"); got != tc.want {
			t.Fatalf("count %v: message %q, want %q", tc.raw, got, tc.want)
		}
	}

	result := engine.Validate(validation.Record{"count": "42"})
	if got, ok := result.Typed.Int("count"); !ok || got != 42 {
		t.Fatalf("typed count = %d (%v), want 42", got, ok)
	}
}

func TestTypedRecordIntRange(t *testing.T) {
	t.Parallel()

	typed := validation.TypedRecord{"big": float64(1e30), "half": 2.5, "ok": float64(36)}
	if _, ok := typed.Int("big"); ok {
		t.Fatalf("1e30 must not convert to int64")
	}
	if _, ok := typed.Int("half"); ok {
		t.Fatalf("2.5 must not convert to int64")
	}
	if got, ok := typed.Int("ok"); !ok || got != 36 {
		t.Fatalf("Int(ok) = %d (%v), want 36", got, ok)
	}
}
