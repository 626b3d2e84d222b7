package htmlsanitize_test

import (
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain", "Hello, World!", "Hello, World!"},
		{"trims", "  Ada  ", "Ada"},
		{"strips tags", "<b>Bold</b> name", "Bold name"},
		{"drops script", "Hi<script>alert('x')</script>", "Hi"},
		{"keeps ampersand", "Tea & Cake", "Tea & Cake"},
		{"keeps placeholders", "Hi {first_name}, see you at {event}", "Hi {first_name}, see you at {event}"},
		{"keeps apostrophe", "Ada's choir", "Ada's choir"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tc.in); got != tc.want {
				t.Errorf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	cases := map[string]bool{
		"":            true,
		"no tags":     true,
		"a < b":       true,
		"only > here": true,
		"<p>tag</p>":  false,
		"x <b>bold":   false,
	}
	for in, want := range cases {
		if got := htmlsanitize.IsPlainText(in); got != want {
			t.Errorf("IsPlainText(%q) = %v, want %v", in, got, want)
		}
	}
}
