package form

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup removes every HTML element from value and returns plain text.
// Entities escaped by the policy are decoded again so "Tom & Jerry" survives
// unchanged.
func StripMarkup(value string) string {
	if !strings.ContainsAny(value, "<>&") {
		return value
	}
	return html.UnescapeString(strictPolicy.Sanitize(value))
}
