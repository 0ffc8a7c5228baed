package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/rules"
)

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func number(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case int32:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func isIntegral(n float64) bool {
	return n == math.Trunc(n)
}

// toInt64 converts n when it is integral and inside the int64 range.
// float64(math.MaxInt64) rounds up to 2^63, hence the strict upper bound.
func toInt64(n float64) (int64, bool) {
	if !isIntegral(n) || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func typeMatches(fieldType rules.FieldType, value any) bool {
	switch fieldType {
	case rules.FieldTypeNumber:
		_, ok := number(value)
		return ok
	case rules.FieldTypeInteger:
		n, ok := number(value)
		if !ok {
			return false
		}
		_, ok = toInt64(n)
		return ok
	default:
		return true
	}
}

func coerce(fieldType rules.FieldType, value any) any {
	switch fieldType {
	case rules.FieldTypeNumber:
		if n, ok := number(value); ok {
			return n
		}
	case rules.FieldTypeInteger:
		if n, ok := number(value); ok {
			if i, ok := toInt64(n); ok {
				return i
			}
		}
	}
	if isEmpty(value) {
		return ""
	}
	return text(value)
}

func hasPrefix(value, prefix string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), prefix)
}

func digitCount(value string) int {
	count := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

func intParam(check rules.Check) int {
	n, _ := strconv.Atoi(check.Param(rules.ParamValue))
	return n
}

// validEmail accepts a bare RFC 5322 address whose domain has at least two
// non-empty labels.
func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 {
		return false
	}
	domain := addr.Address[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
