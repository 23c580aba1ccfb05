package provision

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxSegmentLen leaves headroom for the report-category subdirectories
	// under platform path-length ceilings.
	maxSegmentLen = 200

	placeholder     = '_'
	fallbackSegment = "unnamed"
)

// Sanitize maps an arbitrary project identifier to a filesystem-safe folder
// name. It is total: any input, including the empty string, yields a usable
// non-empty segment, so directory creation is never blocked by an
// unsanitizable name.
func Sanitize(identifier string) string {
	var b strings.Builder
	b.Grow(len(identifier))
	for _, r := range identifier {
		if isIllegalNameRune(r) {
			b.WriteRune(placeholder)
			continue
		}
		b.WriteRune(r)
	}

	segment := strings.Trim(b.String(), ". \t")
	if len(segment) > maxSegmentLen {
		cut := maxSegmentLen
		for cut > 0 && !utf8.RuneStart(segment[cut]) {
			cut--
		}
		segment = segment[:cut]
		// Truncation can expose a trailing dot or space, illegal on Windows.
		segment = strings.TrimRight(segment, ". \t")
	}
	if segment == "" {
		return fallbackSegment
	}
	return segment
}

// isIllegalNameRune reports whether r is forbidden in a folder name on
// Windows or POSIX filesystems.
func isIllegalNameRune(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	switch r {
	case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
		return true
	}
	return false
}
