package intent

import (
	"testing"
	"time"
)

func TestValidateSchemaCollectsAllViolations(t *testing.T) {
	schema := Schema{
		"amount":   {Type: "number", Required: true},
		"category": {Type: "string", Required: true, MinLength: intPtr(1)},
		"type":     {Type: "string", Required: true, Enum: []string{"expense", "income"}},
		"tags":     {Type: "array", MaxLength: intPtr(2)},
	}

	obj := map[string]interface{}{
		"amount": "not a number",
		"type":   "transfer",
		"tags":   []interface{}{"a", "b", "c"},
	}

	err := ValidateSchema(obj, schema)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if err.Code != ErrCodeValidation {
		t.Errorf("expected code %s, got %s", ErrCodeValidation, err.Code)
	}

	violations, ok := err.Details.([]FieldError)
	if !ok {
		t.Fatalf("expected []FieldError details, got %T", err.Details)
	}
	// amount wrong type, category missing, type not in enum, tags too long
	if len(violations) != 4 {
		t.Errorf("expected 4 violations in one error, got %d: %v", len(violations), violations)
	}
}

func TestValidateSchemaAcceptsValidInput(t *testing.T) {
	err := ValidateSchema(map[string]interface{}{
		"amount":   45.5,
		"date":     "2025-06-10",
		"category": "groceries",
		"type":     "expense",
	}, insertSchema)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{"valid integer amount", 100, false},
		{"valid two decimals", 10.99, false},
		{"zero", 0.0, false},
		{"max boundary", 1e9, false},
		{"negative", -1.0, true},
		{"over max", 1e9 + 1, true},
		{"three decimals", 10.999, true},
		{"non numeric", "12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ferr := validateAmount(tt.value)
			if tt.wantErr && ferr == nil {
				t.Errorf("validateAmount(%v) = nil, want violation", tt.value)
			}
			if !tt.wantErr && ferr != nil {
				t.Errorf("validateAmount(%v) = %v, want nil", tt.value, ferr)
			}
		})
	}
}

func TestValidateTransactionDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{"today", "2025-06-15", false},
		{"tomorrow", "2025-06-16", false},
		{"two days ahead", "2025-06-17", true},
		{"nine years back", "2016-07-01", false},
		{"eleven years back", "2014-06-15", true},
		{"garbage", "not-a-date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ferr := validateTransactionDate("date", tt.value, now)
			if tt.wantErr && ferr == nil {
				t.Errorf("validateTransactionDate(%v) = nil, want violation", tt.value)
			}
			if !tt.wantErr && ferr != nil {
				t.Errorf("validateTransactionDate(%v) = %v, want nil", tt.value, ferr)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	for _, limit := range []int64{1, 100, 1000} {
		if ferr := validateLimit(limit); ferr != nil {
			t.Errorf("validateLimit(%d) = %v, want nil", limit, ferr)
		}
	}
	for _, limit := range []int64{0, -5, 1001} {
		if ferr := validateLimit(limit); ferr == nil {
			t.Errorf("validateLimit(%d) = nil, want violation", limit)
		}
	}
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if ferr := validateDateRange(start, start.AddDate(1, 0, 0)); ferr != nil {
		t.Errorf("one-year range rejected: %v", ferr)
	}
	if ferr := validateDateRange(start, start); ferr != nil {
		t.Errorf("zero-length range rejected: %v", ferr)
	}
	if ferr := validateDateRange(start, start.AddDate(0, 0, -1)); ferr == nil {
		t.Error("inverted range accepted")
	}
	if ferr := validateDateRange(start, start.AddDate(5, 0, 1)); ferr == nil {
		t.Error("range over five years accepted")
	}
}
