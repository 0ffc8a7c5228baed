package registration

import (
	"errors"
	"fmt"
	"math"

	"github.com/goliatone/go-formstate/pkg/validation"
)

var (
	// ErrMissingAge is returned by Decode when the typed record has no
	// integral age. The engine never produces such a record from Schema.
	ErrMissingAge = errors.New("registration: typed record has no integral age")
	// ErrAgeOutOfRange is returned when the age is integral but does not
	// fit the Age field.
	ErrAgeOutOfRange = errors.New("registration: age out of range")
)

// Registration is the typed payload handed to the host after a successful
// submit.
type Registration struct {
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	MaritalStatus string `json:"maritalStatus"`
	SpouseName    string `json:"spouseName,omitempty"`
	Age           int    `json:"age"`
	Password      string `json:"password"`
}

// Married reports whether the registrant declared a spouse.
func (r Registration) Married() bool {
	return r.MaritalStatus == Married
}

// Decode maps a typed record produced from Schema into a Registration. The
// confirmation field is dropped; it only exists to be compared.
func Decode(record validation.TypedRecord) (Registration, error) {
	age, ok := record.Int(FieldAge)
	if !ok {
		if f, isNumber := record.Float(FieldAge); isNumber && f == math.Trunc(f) {
			return Registration{}, fmt.Errorf("%w: %g", ErrAgeOutOfRange, f)
		}
		return Registration{}, ErrMissingAge
	}
	if age <= 0 || int64(int(age)) != age {
		return Registration{}, fmt.Errorf("%w: %d", ErrAgeOutOfRange, age)
	}
	return Registration{
		FirstName:     record.String(FieldFirstName),
		LastName:      record.String(FieldLastName),
		Email:         record.String(FieldEmail),
		Phone:         record.String(FieldPhone),
		MaritalStatus: record.String(FieldMaritalStatus),
		SpouseName:    record.String(FieldSpouseName),
		Age:           int(age),
		Password:      record.String(FieldPassword),
	}, nil
}
