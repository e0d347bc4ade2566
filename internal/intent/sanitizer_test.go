package intent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "script block removed with content",
			input:    "<script>alert(1)</script>café",
			expected: "café",
		},
		{
			name:     "style block removed with content",
			input:    "before<style>body{display:none}</style>after",
			expected: "beforeafter",
		},
		{
			name:     "markup stripped but content kept",
			input:    "<b>groceries</b>",
			expected: "groceries",
		},
		{
			name:     "javascript scheme removed",
			input:    "javascript:alert(1)",
			expected: "alert(1)",
		},
		{
			name:     "event handler removed",
			input:    "x onclick=steal()",
			expected: "x steal()",
		},
		{
			name:     "control characters dropped",
			input:    "a\x00b\x1fc",
			expected: "abc",
		},
		{
			name:     "tab and newline preserved",
			input:    "line1\n\tline2",
			expected: "line1\n\tline2",
		},
		{
			name:     "plain text untouched",
			input:    "Supermercado São Paulo",
			expected: "Supermercado São Paulo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeStringCapsLength(t *testing.T) {
	long := strings.Repeat("a", maxStringLength+500)
	if got := SanitizeString(long); len(got) != maxStringLength {
		t.Errorf("expected length %d, got %d", maxStringLength, len(got))
	}
}

func TestSanitizeStringTruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes put the byte cap mid-rune (10000 % 3 != 0)
	long := strings.Repeat("日", maxStringLength/3+100)
	got := SanitizeString(long)
	if len(got) > maxStringLength {
		t.Errorf("length %d exceeds cap %d", len(got), maxStringLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
}

func TestSanitizeTreeNeutralizesKeys(t *testing.T) {
	input := map[string]interface{}{
		"$where":    "sleep(1000)",
		"a.b":       "value",
		"category":  "food",
		"nested":    map[string]interface{}{"$gt": ""},
		"items":     []interface{}{"<b>x</b>", 5, true, nil},
		"amount":    12.5,
		"confirmed": false,
	}

	out, ok := SanitizeTree(input).(map[string]interface{})
	if !ok {
		t.Fatalf("expected map output, got %T", SanitizeTree(input))
	}

	if _, present := out["$where"]; present {
		t.Error("operator key $where survived sanitization")
	}
	if _, present := out["＄where"]; !present {
		t.Error("expected re-encoded ＄where key")
	}
	if _, present := out["a．b"]; !present {
		t.Error("expected dotted key re-encoded to a．b")
	}

	nested, _ := out["nested"].(map[string]interface{})
	if _, present := nested["$gt"]; present {
		t.Error("nested operator key $gt survived sanitization")
	}

	items, _ := out["items"].([]interface{})
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if items[0] != "x" {
		t.Errorf("expected markup stripped from item, got %v", items[0])
	}
	if items[1] != 5 || items[2] != true || items[3] != nil {
		t.Error("non-string items must pass through unchanged")
	}

	if out["amount"] != 12.5 || out["confirmed"] != false {
		t.Error("scalar values must pass through unchanged")
	}
}

func TestValidateSafe(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"plain text", "monthly groceries at café", false},
		{"dollar amount prose", "spent $50 on food", false},
		{"script tag", "<script>alert(1)</script>", true},
		{"spaced script tag", "< script>x", true},
		{"where operator", `{"$where": "this.a == 1"}`, true},
		{"regex operator", `{"$regex": ".*"}`, true},
		{"eval call", "eval(payload)", true},
		{"exec call", "exec (cmd)", true},
		{"evaluate as a word", "re-evaluate the budget", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSafe(tt.input)
			if tt.wantError && err == nil {
				t.Errorf("ValidateSafe(%q) = nil, want MaliciousInput error", tt.input)
			}
			if !tt.wantError && err != nil {
				t.Errorf("ValidateSafe(%q) = %v, want nil", tt.input, err)
			}
			if err != nil && err.Code != ErrCodeMalicious {
				t.Errorf("expected code %s, got %s", ErrCodeMalicious, err.Code)
			}
		})
	}
}
