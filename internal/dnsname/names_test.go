package dnsname

import "testing"

func TestToFQDN(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		input    string
		expected string
	}{
		{
			name:     "@ converts to zone",
			zone:     "example.com",
			input:    "@",
			expected: "example.com",
		},
		{
			name:     "www converts to www.zone",
			zone:     "example.com",
			input:    "www",
			expected: "www.example.com",
		},
		{
			name:     "a.b converts to a.b.zone",
			zone:     "example.com",
			input:    "a.b",
			expected: "a.b.example.com",
		},
		{
			name:     "wildcard converts to *.zone",
			zone:     "example.com",
			input:    "*",
			expected: "*.example.com",
		},
		{
			name:     "empty name defaults to apex",
			zone:     "example.com",
			input:    "",
			expected: "example.com",
		},
		{
			name:     "already FQDN returns as-is",
			zone:     "example.com",
			input:    "test.example.com",
			expected: "test.example.com",
		},
		{
			name:     "zone itself returns as-is",
			zone:     "example.com",
			input:    "example.com",
			expected: "example.com",
		},
		{
			name:     "whitespace is trimmed",
			zone:     " example.com ",
			input:    " www ",
			expected: "www.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToFQDN(tt.input, tt.zone)
			if result != tt.expected {
				t.Errorf("ToFQDN(%q, %q) = %q; want %q", tt.input, tt.zone, result, tt.expected)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		input    string
		expected string
	}{
		{
			name:     "zone becomes @",
			zone:     "example.com",
			input:    "example.com",
			expected: "@",
		},
		{
			name:     "www.zone becomes www",
			zone:     "example.com",
			input:    "www.example.com",
			expected: "www",
		},
		{
			name:     "nested labels are preserved",
			zone:     "example.com",
			input:    "a.b.example.com",
			expected: "a.b",
		},
		{
			name:     "trailing dot is removed",
			zone:     "example.com",
			input:    "www.example.com.",
			expected: "www",
		},
		{
			name:     "wildcard FQDN becomes *",
			zone:     "example.com",
			input:    "*.example.com",
			expected: "*",
		},
		{
			name:     "already relative returns as-is",
			zone:     "example.com",
			input:    "abc",
			expected: "abc",
		},
		{
			name:     "empty name becomes @",
			zone:     "example.com",
			input:    "",
			expected: "@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Relative(tt.input, tt.zone)
			if result != tt.expected {
				t.Errorf("Relative(%q, %q) = %q; want %q", tt.input, tt.zone, result, tt.expected)
			}
		})
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("Example.COM", "example.com.") {
		t.Error("expected case-insensitive match with trailing dot")
	}
	if EqualFold("example.com", "example.org") {
		t.Error("expected mismatch for different zones")
	}
}
