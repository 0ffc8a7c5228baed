package registration

import "github.com/goliatone/go-formstate/pkg/rules"

// Field names of the registration record.
const (
	FieldFirstName       = "firstname"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldMaritalStatus   = "maritalStatus"
	FieldSpouseName      = "spouseName"
	FieldAge             = "age"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// Marital status tokens.
const (
	Married   = "married"
	Unmarried = "unmarried"
)

// SpouseCondition is the predicate that makes spouseName visible and
// required.
const SpouseCondition = `maritalStatus == "married"`

// PasswordMessage is surfaced for every password format failure.
const PasswordMessage = "Minimum eight and maximum 10 characters, at least one uppercase letter, one lowercase letter, one number and one special character"

// Schema returns the registration rule table in display order.
func Schema() rules.Schema {
	return rules.Schema{
		Name: "registration",
		Rules: []rules.Rule{
			{
				Name:     FieldFirstName,
				Type:     rules.FieldTypeString,
				Label:    "First Name",
				Sanitize: true,
				Checks: []rules.Check{
					required("firstname is a required field"),
				},
			},
			{
				Name:     FieldLastName,
				Type:     rules.FieldTypeString,
				Label:    "Last Name",
				Sanitize: true,
				Checks: []rules.Check{
					required("lastName is a required field"),
				},
			},
			{
				Name:  FieldEmail,
				Type:  rules.FieldTypeString,
				Label: "Email",
				Checks: []rules.Check{
					required("Enter a valid email"),
					{Kind: rules.KindEmail, Message: "email must be a valid email"},
				},
			},
			{
				Name:  FieldPhone,
				Type:  rules.FieldTypeString,
				Label: "Phone",
				Checks: []rules.Check{
					required("Phone number is required"),
					{Kind: rules.KindPrefix, Message: "Must start with zero", Params: map[string]string{rules.ParamPrefix: "0"}},
					{Kind: rules.KindMinDigits, Message: "Minimum 8 digit is needed", Params: map[string]string{rules.ParamValue: "8"}},
					{Kind: rules.KindMaxDigits, Message: "Maximum 11 character will be allowed", Params: map[string]string{rules.ParamValue: "11"}},
				},
			},
			{
				Name:    FieldMaritalStatus,
				Type:    rules.FieldTypeEnum,
				Label:   "Marital Status",
				Default: Unmarried,
				Checks: []rules.Check{
					required("maritalStatus is a required field"),
					{
						Kind:    rules.KindOneOf,
						Message: "maritalStatus must be one of the following values: married, unmarried",
						Values:  []string{Married, Unmarried},
					},
				},
			},
			{
				Name:     FieldSpouseName,
				Type:     rules.FieldTypeString,
				Label:    "Spouse Name",
				Sanitize: true,
				Checks: []rules.Check{
					{
						Kind:    rules.KindRequiredWhen,
						Message: "Spouse name is required",
						Params:  map[string]string{rules.ParamWhen: SpouseCondition},
					},
				},
			},
			{
				Name:  FieldAge,
				Type:  rules.FieldTypeNumber,
				Label: "Age",
				Checks: []rules.Check{
					required("Please Enter Valid Number"),
					{Kind: rules.KindType, Message: "Age should be a number"},
					{Kind: rules.KindPositive, Message: "age must be a positive number"},
					{Kind: rules.KindInteger, Message: "age must be an integer"},
				},
			},
			{
				Name:             FieldPassword,
				Type:             rules.FieldTypeString,
				Label:            "Password",
				Secret:           true,
				KeepErrorsOnEdit: true,
				Checks: []rules.Check{
					required("password is a required field"),
					pattern(`^[A-Za-z\d@$!%*?&]{8,10}$`),
					pattern(`[a-z]`),
					pattern(`[A-Z]`),
					pattern(`\d`),
					pattern(`[@$!%*?&]`),
				},
			},
			{
				Name:             FieldConfirmPassword,
				Type:             rules.FieldTypeString,
				Label:            "Confirm Password",
				Secret:           true,
				KeepErrorsOnEdit: true,
				Checks: []rules.Check{
					required("Enter a valid password"),
					{
						Kind:    rules.KindEqualsField,
						Message: "Password Should be matched",
						Params:  map[string]string{rules.ParamField: FieldPassword},
					},
				},
			},
		},
	}
}

func required(message string) rules.Check {
	return rules.Check{Kind: rules.KindRequired, Message: message}
}

// RE2 has no lookaheads, so the character-class requirements are separate
// patterns that must all match.
func pattern(expr string) rules.Check {
	return rules.Check{
		Kind:    rules.KindPattern,
		Message: PasswordMessage,
		Params:  map[string]string{rules.ParamPattern: expr},
	}
}
