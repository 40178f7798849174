// Package schema declares the fixed lead field set and its format rules.
// All other packages depend on it; it depends on nothing but types.
package schema

import (
	"regexp"
	"strings"

	"listplicity-intake-backend/internal/types"
)

var fieldNames = []string{
	"path",
	"state",
	"address",
	"sell_timeline",
	"buy_area",
	"buy_budget",
	"buy_preapproval",
	"name",
	"email",
	"phone",
}

// Required for submission; every other field is nice-to-have.
var requiredNames = []string{"path", "name", "email", "phone"}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var pathValues = map[string]bool{"sell": true, "buy": true, "both": true}

// Fields returns the complete declared field set, in declaration order.
func Fields() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// Required returns the subset of fields required for lead submission.
func Required() []string {
	out := make([]string, len(requiredNames))
	copy(out, requiredNames)
	return out
}

// Known reports whether field is part of the declared set.
func Known(field string) bool {
	for _, f := range fieldNames {
		if f == field {
			return true
		}
	}
	return false
}

// Validate checks value against the format rules for field and returns the
// normalized value. Unknown fields and malformed values are rejected so they
// are never stored; the assistant re-asks instead.
func Validate(field, value string) (string, bool) {
	if !Known(field) {
		return "", false
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	switch field {
	case "path":
		lower := strings.ToLower(v)
		if !pathValues[lower] {
			return "", false
		}
		return lower, true
	case "email":
		if !emailPattern.MatchString(v) {
			return "", false
		}
		return v, true
	case "phone":
		if digitCount(v) < 7 {
			return "", false
		}
		return v, true
	default:
		return v, true
	}
}

// IsComplete reports whether every field required for submission is present:
// path on the state itself, the rest as non-empty answers.
func IsComplete(state types.ConversationState) bool {
	if strings.TrimSpace(state.Path) == "" {
		return false
	}
	for _, f := range requiredNames {
		if f == "path" {
			continue
		}
		if strings.TrimSpace(state.Answers[f]) == "" {
			return false
		}
	}
	return true
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
