package provision

// Result is the outcome of one provisioning call. It is the contract that
// replaces exceptions for expected failure modes: hard failures set Error
// and clear Success, everything recoverable lands in Warnings. Constructed
// fresh per call, immutable once returned.
type Result struct {
	Success bool `json:"success"`
	// Path is the logical project path, the human-meaningful form the
	// caller should surface. Never the platform-extended form.
	Path           string         `json:"path"`
	Error          string         `json:"error,omitempty"`
	Warnings       []string       `json:"warnings"`
	Subdirectories []SubdirResult `json:"subdirectories"`
}

// SubdirResult is the per-subdirectory outcome. A failed subdirectory does
// not invalidate the overall result.
type SubdirResult struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func newResult() Result {
	return Result{
		Warnings:       []string{},
		Subdirectories: []SubdirResult{},
	}
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
