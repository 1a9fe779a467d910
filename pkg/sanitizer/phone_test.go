package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"E.164 stays", "+918123456789", "+918123456789"},
		{"spaces", "+91 81234 56789", "+918123456789"},
		{"national number defaults to first region", "081234 56789", "+918123456789"},
		{"US with parentheses", "+1 (201) 555-0123", "+12015550123"},
		{"surrounding whitespace", "  +918123456789  ", "+918123456789"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"unparseable kept for validation", "call me", "call me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
