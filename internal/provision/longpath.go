package provision

import (
	"runtime"
	"strings"
)

// windowsPathCeiling is the classic MAX_PATH limit. Paths at or beyond it
// need the extended-path prefix for creation calls on Windows.
const windowsPathCeiling = 260

// creationPath returns the path form to pass to the directory creation call.
// The logical path stays authoritative for verification and reporting; only
// the creation call ever sees the extended form. Creating under one path
// representation and verifying under another is how false "success" reports
// happen, so the extended form must never leak out of this translation.
func creationPath(logical string) string {
	if runtime.GOOS != "windows" || len(logical) < windowsPathCeiling {
		return logical
	}
	return extendedForm(logical)
}

func extendedForm(path string) string {
	if strings.HasPrefix(path, `\\?\`) {
		return path
	}
	// UNC paths get the \\?\UNC\server\share form.
	if strings.HasPrefix(path, `\\`) {
		return `\\?\UNC` + path[1:]
	}
	return `\\?\` + path
}
