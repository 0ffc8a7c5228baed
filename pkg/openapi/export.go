package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// Extension keys emitted on property schemas.
const (
	ExtensionRequiredWhen = "x-formstate-required-when"
	ExtensionVisibleWhen  = "x-formstate-visible-when"
	ExtensionEqualsField  = "x-formstate-equals-field"
	ExtensionMinDigits    = "x-formstate-min-digits"
	ExtensionMaxDigits    = "x-formstate-max-digits"
	ExtensionMessages     = "x-formstate-messages"
)

// Export converts schema into an OpenAPI object schema. Only unconditional
// required checks land in `required`; conditional ones are extensions.
func Export(schema rules.Schema) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = schema.Name
	root.Properties = make(openapi3.Schemas, len(schema.Rules))

	var required []string
	for _, rule := range schema.Rules {
		root.Properties[rule.Name] = openapi3.NewSchemaRef("", property(rule))
		if rule.Required() && !rule.Conditional() {
			required = append(required, rule.Name)
		}
	}
	root.Required = required
	return root
}

// MarshalJSON renders the exported schema as indented JSON.
func MarshalJSON(schema rules.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(Export(schema), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal %s: %w", schema.Name, err)
	}
	return data, nil
}

func property(rule rules.Rule) *openapi3.Schema {
	prop := baseSchema(rule)
	prop.Title = rule.DisplayLabel()
	prop.WriteOnly = rule.Secret
	if rule.Default != "" {
		prop.Default = rule.Default
	}

	extensions := make(map[string]any)
	var (
		patterns []string
		messages []map[string]string
	)
	for _, check := range rule.Checks {
		messages = append(messages, map[string]string{
			"kind":    string(check.Kind),
			"message": check.Message,
		})
		switch check.Kind {
		case rules.KindEmail:
			prop.Format = "email"
		case rules.KindOneOf:
			prop.Enum = make([]any, 0, len(check.Values))
			for _, value := range check.Values {
				prop.Enum = append(prop.Enum, value)
			}
		case rules.KindPattern:
			patterns = append(patterns, check.Param(rules.ParamPattern))
		case rules.KindPrefix:
			patterns = append(patterns, "^"+regexp.QuoteMeta(check.Params[rules.ParamPrefix]))
		case rules.KindPositive:
			zero := 0.0
			prop.Min = &zero
			prop.ExclusiveMin = true
		case rules.KindMinDigits:
			extensions[ExtensionMinDigits] = digits(check)
		case rules.KindMaxDigits:
			extensions[ExtensionMaxDigits] = digits(check)
		case rules.KindRequiredWhen:
			extensions[ExtensionRequiredWhen] = check.Param(rules.ParamWhen)
		case rules.KindEqualsField:
			extensions[ExtensionEqualsField] = check.Param(rules.ParamField)
		}
	}

	switch len(patterns) {
	case 0:
	case 1:
		prop.Pattern = patterns[0]
	default:
		for _, pattern := range patterns {
			part := openapi3.NewStringSchema()
			part.Pattern = pattern
			prop.AllOf = append(prop.AllOf, openapi3.NewSchemaRef("", part))
		}
	}

	if cond := rule.Condition(); cond != "" {
		extensions[ExtensionVisibleWhen] = cond
	}
	if len(messages) > 0 {
		extensions[ExtensionMessages] = messages
	}
	if len(extensions) > 0 {
		prop.Extensions = extensions
	}
	return prop
}

func baseSchema(rule rules.Rule) *openapi3.Schema {
	switch rule.Type {
	case rules.FieldTypeInteger:
		return openapi3.NewIntegerSchema()
	case rules.FieldTypeNumber:
		for _, check := range rule.Checks {
			if check.Kind == rules.KindInteger {
				return openapi3.NewIntegerSchema()
			}
		}
		return openapi3.NewFloat64Schema()
	default:
		return openapi3.NewStringSchema()
	}
}

func digits(check rules.Check) int {
	n, _ := strconv.Atoi(check.Param(rules.ParamValue))
	return n
}
