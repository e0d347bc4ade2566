package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sanitizer hardening for caller-supplied input. Every string that enters the
// engine is cleaned before it is interpreted; ValidateSafe is the stricter
// variant that rejects instead of cleaning, for inputs that should never have
// contained such patterns in the first place.

const maxStringLength = 10000

var (
	// Script/style blocks are removed with their content; remaining markup
	// tags are stripped but their content kept.
	scriptBlockPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	markupTagPattern   = regexp.MustCompile(`<[^>]*>`)

	// URL schemes and inline handlers that turn text into executable content
	schemePattern       = regexp.MustCompile(`(?i)(javascript:|vbscript:|data:text/html)`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)

	// Patterns that indicate a deliberate injection attempt
	scriptTagPattern   = regexp.MustCompile(`(?i)<\s*script`)
	operatorKeyPattern = regexp.MustCompile(`(?m)(^|["'{,\s])\$(where|regex|expr|function|accumulator|gt|gte|lt|lte|ne|in|nin|or|and|nor|not)\b`)
	evalPattern        = regexp.MustCompile(`(?i)\b(eval|exec)\s*\(`)
)

// SanitizeTree recursively cleans every string in a nested map/array/scalar
// structure. Numbers, booleans and nils pass through unchanged. Map keys are
// neutralized so a caller-typed key can never be read as a store operator.
func SanitizeTree(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[sanitizeKey(k)] = SanitizeTree(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = SanitizeTree(item)
		}
		return out
	case string:
		return SanitizeString(val)
	default:
		return v
	}
}

// SanitizeString cleans a single string value: markup removed, control
// characters dropped, script-invocation patterns neutralized, length capped.
func SanitizeString(s string) string {
	s = scriptBlockPattern.ReplaceAllString(s, "")
	s = markupTagPattern.ReplaceAllString(s, "")
	s = schemePattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = stripControlChars(s)

	if len(s) > maxStringLength {
		s = s[:runeBoundaryBefore(s, maxStringLength)]
	}
	return s
}

// runeBoundaryBefore returns the largest cut <= max that does not split a
// multibyte rune
func runeBoundaryBefore(s string, max int) int {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}

// sanitizeKey re-encodes characters that are structurally significant to the
// store's query language. A leading "$" would make the key an operator and a
// "." would make it a path; both are replaced with their fullwidth
// equivalents so the key stays inert literal text.
func sanitizeKey(k string) string {
	if strings.HasPrefix(k, "$") {
		k = "＄" + k[1:]
	}
	return strings.ReplaceAll(k, ".", "．")
}

// stripControlChars removes ASCII control characters, preserving tab,
// newline and carriage return.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// ValidateSafe rejects a string outright when it carries patterns that
// indicate an injection attempt. Used where input must be refused rather
// than silently cleaned.
func ValidateSafe(s string) *Error {
	switch {
	case scriptTagPattern.MatchString(s):
		return NewMaliciousInputError("script tag")
	case operatorKeyPattern.MatchString(s):
		return NewMaliciousInputError("store operator")
	case evalPattern.MatchString(s):
		return NewMaliciousInputError("code evaluation pattern")
	}
	return nil
}
