// Package validation holds the declarative per-endpoint field rules and
// the engine that evaluates them against request values. The HTTP layer
// feeds it a merged view of body, query and path parameters; failures
// come back as field-level violations for the 400 payload.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

// Violation is one field-level rule failure
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Check inspects a single value; empty string means the value passed
type Check func(v any) string

// FieldRule binds a field name to its checks. Optional fields are only
// checked when present.
type FieldRule struct {
	Field    string
	Required bool
	Checks   []Check
}

// Evaluate runs every rule against the value map and collects violations
func Evaluate(values map[string]any, rules []FieldRule) []Violation {
	var out []Violation
	for _, r := range rules {
		v, ok := values[r.Field]
		if !ok || v == nil || v == "" {
			if r.Required {
				out = append(out, Violation{Field: r.Field, Message: "is required"})
			}
			continue
		}
		for _, check := range r.Checks {
			if msg := check(v); msg != "" {
				out = append(out, Violation{Field: r.Field, Message: msg})
				break
			}
		}
	}
	return out
}

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	specialRe  = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// StringLen checks byte length bounds (max < 0 means unbounded)
func StringLen(min, max int) Check {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		if len(s) < min {
			return fmt.Sprintf("must be at least %d characters", min)
		}
		if max >= 0 && len(s) > max {
			return fmt.Sprintf("must be at most %d characters", max)
		}
		return ""
	}
}

// Matches checks a regexp with a custom failure message
func Matches(re *regexp.Regexp, msg string) Check {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		if !re.MatchString(s) {
			return msg
		}
		return ""
	}
}

// IntRange checks an integral value against inclusive bounds
func IntRange(min, max int64) Check {
	return func(v any) string {
		n, ok := asInt64(v)
		if !ok {
			return "must be an integer"
		}
		if n < min || n > max {
			return fmt.Sprintf("must be between %d and %d", min, max)
		}
		return ""
	}
}

// ValidEmail parses the address with net/mail
func ValidEmail() Check {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return "must be a valid email address"
		}
		return ""
	}
}

// StrongPassword requires upper, lower, digit and special characters
func StrongPassword() Check {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		if len(s) < 8 {
			return "must be at least 8 characters"
		}
		if !upperRe.MatchString(s) || !lowerRe.MatchString(s) || !digitRe.MatchString(s) || !specialRe.MatchString(s) {
			return "must contain upper, lower, digit and special characters"
		}
		return ""
	}
}

// NormalizeEmail lowercases and trims an address for storage
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Named rule sets, one per field class the API accepts.

func Username(field string) FieldRule {
	return FieldRule{Field: field, Required: true, Checks: []Check{
		StringLen(3, 50),
		Matches(usernameRe, "may only contain letters, digits, underscore and dash"),
	}}
}

func Email(field string) FieldRule {
	return FieldRule{Field: field, Required: true, Checks: []Check{ValidEmail()}}
}

func Password(field string) FieldRule {
	return FieldRule{Field: field, Required: true, Checks: []Check{StrongPassword()}}
}

// ID validates a positive integer identifier (path param or body field)
func ID(field string) FieldRule {
	return FieldRule{Field: field, Required: true, Checks: []Check{IntRange(1, 1<<62)}}
}

// Pagination validates the standard page/limit query parameters
func Pagination() []FieldRule {
	return []FieldRule{
		{Field: "page", Checks: []Check{IntRange(1, 1<<31)}},
		{Field: "limit", Checks: []Check{IntRange(1, 100)}},
	}
}

// XcoinsAmount validates a currency amount for grants and purchases
func XcoinsAmount(field string) FieldRule {
	return FieldRule{Field: field, Required: true, Checks: []Check{IntRange(1, 1_000_000)}}
}

// CaseRules validates the admin case create/update payload
func CaseRules() []FieldRule {
	return []FieldRule{
		{Field: "name", Required: true, Checks: []Check{StringLen(3, 100)}},
		{Field: "description", Required: true, Checks: []Check{StringLen(10, 500)}},
		{Field: "price", Required: true, Checks: []Check{IntRange(1, 100_000)}},
	}
}

// ServerRules validates community server registration payloads
func ServerRules() []FieldRule {
	return []FieldRule{
		{Field: "name", Required: true, Checks: []Check{StringLen(3, 100)}},
		{Field: "description", Checks: []Check{StringLen(0, 500)}},
		{Field: "max_players", Required: true, Checks: []Check{IntRange(2, 64)}},
	}
}
