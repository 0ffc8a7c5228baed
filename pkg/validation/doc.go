// Package validation evaluates a rules.Schema against a raw record. It is
// pure: the same record always yields the same Result, and a Result carries
// either a typed record or an error map, never both.
package validation
