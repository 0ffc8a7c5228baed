// Package openapi describes a form's rule table as an OpenAPI 3 schema so the
// host transport can publish the record shape it will receive on submit.
// Constraints OpenAPI cannot express (conditional requirement, field
// equality, digit counts) travel as x-formstate-* extensions.
package openapi
