package provision

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain project number", "02-2026-0019", "02-2026-0019"},
		{"spaces preserved inside", "Pit 4 North", "Pit 4 North"},
		{"illegal characters replaced", `job:4*?"<>|`, "job_4______"},
		{"separators replaced", `a/b\c`, "a_b_c"},
		{"traversal collapses to segment", "../../etc", "_.._etc"},
		{"leading and trailing dots stripped", "..hidden..", "hidden"},
		{"trailing whitespace stripped", "  job 9  ", "job 9"},
		{"empty input", "", "unnamed"},
		{"only illegal characters", "..//..", "__"},
		{"only dots", "....", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTotality(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x1f",
		strings.Repeat("x", 500),
		strings.Repeat(".", 300),
		strings.Repeat("a", 199) + "...",
	}
	for _, input := range inputs {
		got := Sanitize(input)
		if got == "" {
			t.Errorf("Sanitize(%q) returned empty segment", input)
		}
		if len(got) > maxSegmentLen {
			t.Errorf("Sanitize(%q) length %d exceeds bound", input, len(got))
		}
		if strings.ContainsAny(got, `\/`) {
			t.Errorf("Sanitize(%q) = %q contains a path separator", input, got)
		}
		if strings.HasSuffix(got, ".") || strings.HasSuffix(got, " ") {
			t.Errorf("Sanitize(%q) = %q has an illegal trailing character", input, got)
		}
	}
}

func TestSanitizeDeterministic(t *testing.T) {
	input := `weird / name: *final*.  `
	first := Sanitize(input)
	for i := 0; i < 10; i++ {
		if got := Sanitize(input); got != first {
			t.Fatalf("Sanitize not deterministic: %q vs %q", got, first)
		}
	}
}
