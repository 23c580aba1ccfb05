package provision

import (
	"fmt"
	"os"
	"strings"
)

// cloudSyncMarkers are vendor folder names that indicate a path is mirrored
// by an asynchronous sync client. Matching is a heuristic; false negatives
// are acceptable and only widen the verification retry budget when wrong.
var cloudSyncMarkers = []string{
	"dropbox",
	"onedrive",
	"google drive",
	"googledrive",
	"icloud",
	"box sync",
	"box drive",
	"nextcloud",
	"seafile",
	"syncthing",
}

// Validation is the outcome of checking a candidate base path.
type Validation struct {
	Valid    bool
	Writable bool
	Err      string
}

// ValidatePath checks a candidate directory path in order, short-circuiting
// on the first failure: non-empty, no forbidden characters, exists, is a
// directory, and accepts a probe-file write. Unexpected OS errors during the
// write probe are reported as not-writable, never propagated.
func ValidatePath(path string) Validation {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Validation{Err: "path is empty"}
	}

	if r, bad := forbiddenPathRune(trimmed); bad {
		return Validation{Err: fmt.Sprintf("path contains forbidden character %q", r)}
	}

	info, err := os.Stat(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return Validation{Err: fmt.Sprintf("path does not exist: %s", trimmed)}
		}
		return Validation{Err: fmt.Sprintf("cannot access path: %v", err)}
	}
	if !info.IsDir() {
		return Validation{Err: fmt.Sprintf("path is not a directory: %s", trimmed)}
	}

	if err := ProbeWrite(trimmed); err != nil {
		return Validation{Valid: true, Err: fmt.Sprintf("directory is not writable: %v", err)}
	}
	return Validation{Valid: true, Writable: true}
}

// ProbeWrite verifies write capability by creating and removing a
// uniquely-named zero-byte file inside dir. Permission bits alone are not
// trusted; only an actual write proves the directory is usable.
func ProbeWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".groundwork-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return err
	}
	return nil
}

// IsCloudSynced reports whether path appears to live inside a cloud-sync
// client's mirror folder. This classification feeds the verification retry
// policy; it is not part of the validation pass/fail chain.
func IsCloudSynced(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range cloudSyncMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// forbiddenPathRune scans for characters invalid in a directory path on the
// strictest supported platform. Separators are legal here (this is a whole
// path, not a single segment) and a drive-colon at index 1 is allowed.
func forbiddenPathRune(path string) (rune, bool) {
	for i, r := range path {
		if r < 0x20 || r == 0x7f {
			return r, true
		}
		switch r {
		case '*', '?', '"', '<', '>', '|':
			return r, true
		case ':':
			if i != 1 {
				return r, true
			}
		}
	}
	return 0, false
}
