package validation_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formstate/pkg/registration"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func TestRegistrationFixtures(t *testing.T) {
	t.Parallel()

	engine := validation.MustNew(registration.Schema())
	records := testsupport.MustLoadRecords(t, filepath.Join("testdata", "records.json"))

	got := make(map[string]validation.ErrorMap, len(records))
	for name, record := range records {
		got[name] = engine.Validate(record).Errors
	}

	golden := filepath.Join("testdata", "errors.golden.json")
	testsupport.WriteGolden(t, golden, got)

	var want map[string]validation.ErrorMap
	testsupport.MustReadGolden(t, golden, &want)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("error maps mismatch (-want +got):\n%s", diff)
	}
}
