// Package form holds the mutable side of a form: the draft record, the
// errors currently on display, the visibility flags of conditional fields and
// the submission state machine.
//
// Edits never validate. Depending on the ClearPolicy an edit wipes every
// displayed error (ClearPolicyUniform) or every error except when the edited
// field is flagged KeepErrorsOnEdit (ClearPolicyLegacy, the default). Errors
// only appear again on the next Submit, which replaces the whole map.
//
// Typical wiring:
//
//	engine, err := validation.New(registration.Schema())
//	if err != nil {
//		return err
//	}
//	state := form.New(engine, form.WithOnAccept(func(rec validation.TypedRecord) {
//		// hand rec to the host
//	}))
//	_ = state.Set("firstname", "Ada")
//	outcome := state.Submit()
package form
