package provision

import (
	"runtime"
	"strings"
	"testing"
)

func TestCreationPathShortPathsUntouched(t *testing.T) {
	logical := `C:\Projects\02-2026-0019`
	if got := creationPath(logical); got != logical {
		t.Errorf("creationPath(%q) = %q, want unchanged", logical, got)
	}
}

func TestCreationPathOnlyRewritesOnWindows(t *testing.T) {
	long := `C:\Projects\` + strings.Repeat("x", 300)
	got := creationPath(long)
	if runtime.GOOS != "windows" {
		if got != long {
			t.Errorf("creationPath rewrote path on %s", runtime.GOOS)
		}
		return
	}
	if !strings.HasPrefix(got, `\\?\`) {
		t.Errorf("creationPath(%q) = %q, want extended form", long, got)
	}
}

func TestExtendedForm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drive path", `C:\Projects\x`, `\\?\C:\Projects\x`},
		{"already extended", `\\?\C:\Projects\x`, `\\?\C:\Projects\x`},
		{"unc path", `\\server\share\x`, `\\?\UNC\server\share\x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extendedForm(tt.in); got != tt.want {
				t.Errorf("extendedForm(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
