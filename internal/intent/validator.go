package intent

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type/range validation. Shape constraints live in Schema rules; domain
// bounds (amount precision, date windows, pagination limits) are enforced by
// the validate* helpers below. All violations for one input are collected
// into a single ValidationError so callers get the complete list in one
// round trip.

// Domain bounds
const (
	maxAmount        = 1e9
	maxAmountDigits  = 2 // fractional digits
	maxDateRangeYrs  = 5
	minQueryLimit    = 1
	maxQueryLimit    = 1000
	pastDateBoundYrs = 10
)

// FieldError describes one violating field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldRule is the per-field constraint set of a Schema
type FieldRule struct {
	Type      string // string, number, integer, boolean, array, object, date
	Required  bool
	Enum      []string
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
}

// Schema maps field name to its rule
type Schema map[string]FieldRule

// ValidateSchema checks obj against schema and returns nil or a single
// ValidationError whose Details lists every violating field.
func ValidateSchema(obj map[string]interface{}, schema Schema) *Error {
	var violations []FieldError

	for field, rule := range schema {
		value, present := obj[field]
		if !present || value == nil {
			if rule.Required {
				violations = append(violations, FieldError{field, "is required"})
			}
			continue
		}
		violations = append(violations, checkRule(field, value, rule)...)
	}

	if len(violations) > 0 {
		return NewValidationError("validation failed", violations)
	}
	return nil
}

func checkRule(field string, value interface{}, rule FieldRule) []FieldError {
	var violations []FieldError

	fail := func(format string, args ...interface{}) {
		violations = append(violations, FieldError{field, fmt.Sprintf(format, args...)})
	}

	switch rule.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			fail("must be a string, got %T", value)
			return violations
		}
		if rule.MinLength != nil && len(s) < *rule.MinLength {
			fail("must be at least %d characters", *rule.MinLength)
		}
		if rule.MaxLength != nil && len(s) > *rule.MaxLength {
			fail("must be at most %d characters", *rule.MaxLength)
		}
		if len(rule.Enum) > 0 && !containsString(rule.Enum, s) {
			fail("must be one of %v", rule.Enum)
		}

	case "number", "integer":
		n, ok := asNumber(value)
		if !ok {
			fail("must be a number, got %T", value)
			return violations
		}
		if rule.Type == "integer" && n != float64(int64(n)) {
			fail("must be an integer")
		}
		if rule.Min != nil && n < *rule.Min {
			fail("must be >= %v", *rule.Min)
		}
		if rule.Max != nil && n > *rule.Max {
			fail("must be <= %v", *rule.Max)
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			fail("must be a boolean, got %T", value)
		}

	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			fail("must be an array, got %T", value)
			return violations
		}
		if rule.MinLength != nil && len(arr) < *rule.MinLength {
			fail("must have at least %d items", *rule.MinLength)
		}
		if rule.MaxLength != nil && len(arr) > *rule.MaxLength {
			fail("must have at most %d items", *rule.MaxLength)
		}

	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			fail("must be an object, got %T", value)
		}

	case "date":
		if _, err := parseDate(value); err != nil {
			fail("must be a valid date: %v", err)
		}
	}

	return violations
}

// validateAmount enforces the monetary bounds: non-negative, at most 1e9,
// no more than two fractional digits. Precision is checked through the
// decimal representation rather than float remainder math.
func validateAmount(value interface{}) *FieldError {
	n, ok := asNumber(value)
	if !ok {
		return &FieldError{"amount", fmt.Sprintf("must be a number, got %T", value)}
	}
	if n < 0 {
		return &FieldError{"amount", "must not be negative"}
	}
	if n > maxAmount {
		return &FieldError{"amount", fmt.Sprintf("must not exceed %v", float64(maxAmount))}
	}
	d := decimal.NewFromFloat(n)
	if d.Exponent() < -maxAmountDigits {
		return &FieldError{"amount", "must have at most 2 decimal places"}
	}
	return nil
}

// validateTransactionDate keeps dates within [now - 10 years, now + 1 day]
func validateTransactionDate(field string, value interface{}, now time.Time) *FieldError {
	t, err := parseDate(value)
	if err != nil {
		return &FieldError{field, fmt.Sprintf("must be a valid date: %v", err)}
	}
	if t.Before(now.AddDate(-pastDateBoundYrs, 0, 0)) {
		return &FieldError{field, fmt.Sprintf("must not be more than %d years in the past", pastDateBoundYrs)}
	}
	if t.After(now.AddDate(0, 0, 1)) {
		return &FieldError{field, "must not be more than 1 day in the future"}
	}
	return nil
}

// validateLimit enforces the page size bounds for query operations
func validateLimit(limit int64) *FieldError {
	if limit < minQueryLimit || limit > maxQueryLimit {
		return &FieldError{"limit", fmt.Sprintf("must be between %d and %d", minQueryLimit, maxQueryLimit)}
	}
	return nil
}

func validateSkip(skip int64) *FieldError {
	if skip < 0 {
		return &FieldError{"skip", "must not be negative"}
	}
	return nil
}

// validateDateRange checks that start <= end and the span is at most 5 years
func validateDateRange(start, end time.Time) *FieldError {
	if end.Before(start) {
		return &FieldError{"date_range", "start must not be after end"}
	}
	if end.After(start.AddDate(maxDateRangeYrs, 0, 0)) {
		return &FieldError{"date_range", fmt.Sprintf("must not span more than %d years", maxDateRangeYrs)}
	}
	return nil
}

func asNumber(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
