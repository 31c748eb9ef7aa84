package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MaxScopeLength bounds the free-text scope of a request.
const MaxScopeLength = 100

// slugPattern matches the runs of characters replaced in filenames.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ValidateScope checks that a scope is present, bounded and printable.
func ValidateScope(scope string) (bool, string) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return false, "country or region is required"
	}
	if len(scope) > MaxScopeLength {
		return false, fmt.Sprintf("country or region must be at most %d characters", MaxScopeLength)
	}
	for _, r := range scope {
		if unicode.IsControl(r) {
			return false, "country or region contains control characters"
		}
	}
	return true, ""
}

// ValidateCauseCount checks that a request carries between one and limit
// cause codes. Whether the codes are well formed is decided when they are
// parsed.
func ValidateCauseCount(causes []string, limit int) (bool, string) {
	if len(causes) == 0 {
		return false, "at least one cause is required"
	}
	if limit > 0 && len(causes) > limit {
		return false, fmt.Sprintf("at most %d causes may be selected", limit)
	}
	return true, ""
}

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into an underscore, for use in download filenames.
func Slug(s string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if slug == "" {
		return "data"
	}
	return slug
}
