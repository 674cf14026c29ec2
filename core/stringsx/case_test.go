package stringsx

import "testing"

func TestLowerFirstChar(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Standard case conversion",
			input:    "MyField",
			expected: "myField",
		},
		{
			name:     "Already lowercase",
			input:    "myField",
			expected: "myField",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "Unicode upper to lower",
			input:    "Éclair",
			expected: "éclair",
		},
		{
			name:     "Number leading",
			input:    "1stPlace",
			expected: "1stPlace",
		},
		{
			name:     "All uppercase",
			input:    "ABC",
			expected: "aBC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := LowerFirstChar(tc.input); result != tc.expected {
				t.Errorf("Test %s failed: expected '%s', got '%s'", tc.name, tc.expected, result)
			}
		})
	}
}

func TestUpperFirstChar(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Lowercase method name",
			input:    "sum",
			expected: "Sum",
		},
		{
			name:     "Already exported",
			input:    "Sum",
			expected: "Sum",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "Unicode lower to upper",
			input:    "éclair",
			expected: "Éclair",
		},
		{
			name:     "Underscore leading",
			input:    "_hidden",
			expected: "_hidden",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := UpperFirstChar(tc.input); result != tc.expected {
				t.Errorf("Test %s failed: expected '%s', got '%s'", tc.name, tc.expected, result)
			}
		})
	}
}

func TestEqualFoldFirst(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected bool
	}{
		{"myField", "MyField", true},
		{"MyField", "MyField", true},
		{"myfield", "MyField", false},
		{"", "", true},
		{"", "A", false},
		{"x", "Y", false},
	}

	for _, tc := range testCases {
		if result := EqualFoldFirst(tc.a, tc.b); result != tc.expected {
			t.Errorf("EqualFoldFirst(%q, %q): expected %v, got %v", tc.a, tc.b, tc.expected, result)
		}
	}
}
