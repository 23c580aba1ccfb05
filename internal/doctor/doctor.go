// Package doctor diagnoses a tenant's storage configuration without touching
// real project directories.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/karstlabs/groundwork/internal/provision"
	"github.com/karstlabs/groundwork/internal/settings"
)

// Step is the outcome of one diagnostic check.
type Step struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report holds the outcome of a diagnostic run. Every step is recorded even
// when an earlier one failed, so an operator sees the full picture instead
// of the first problem.
type Report struct {
	TenantID int64  `json:"tenant_id"`
	Healthy  bool   `json:"healthy"`
	Steps    []Step `json:"steps"`
}

// Doctor re-runs the resolve/validate/create/cleanup sequence against a
// disposable probe directory.
type Doctor struct {
	store    settings.Store
	resolver *provision.Resolver
}

// New creates a Doctor sharing the engine's store and resolver.
func New(store settings.Store, resolver *provision.Resolver) *Doctor {
	return &Doctor{store: store, resolver: resolver}
}

// Run executes all diagnostic steps for tenantID. Always safe to re-run.
func (d *Doctor) Run(ctx context.Context, tenantID int64) *Report {
	r := &Report{TenantID: tenantID, Healthy: true}

	d.checkSettingsStore(ctx, r)
	basePath := d.checkResolution(ctx, r, tenantID)
	d.checkValidation(r, basePath)
	d.checkProbeCycle(r, basePath)

	for _, s := range r.Steps {
		if !s.Success {
			r.Healthy = false
			break
		}
	}
	return r
}

func (d *Doctor) addStep(r *Report, s Step) {
	r.Steps = append(r.Steps, s)
}

func (d *Doctor) checkSettingsStore(ctx context.Context, r *Report) {
	s := Step{Name: "settings_store"}
	if err := d.store.Ping(ctx); err != nil {
		s.Error = err.Error()
	} else {
		s.Success = true
		s.Detail = "settings store reachable"
	}
	d.addStep(r, s)
}

func (d *Doctor) checkResolution(ctx context.Context, r *Report, tenantID int64) string {
	// Resolution degrades rather than fails, so this step succeeds whenever
	// a non-empty path comes back; the detail says which root won.
	basePath := d.resolver.ResolveBasePath(ctx, tenantID)

	s := Step{Name: "base_path_resolution"}
	if basePath == "" {
		s.Error = "resolved base path is empty"
	} else {
		s.Success = true
		s.Detail = basePath
		if provision.IsCloudSynced(basePath) {
			s.Detail += " (cloud-synced)"
		}
	}
	d.addStep(r, s)
	return basePath
}

func (d *Doctor) checkValidation(r *Report, basePath string) {
	s := Step{Name: "base_path_validation"}
	v := provision.ValidatePath(basePath)
	if !v.Valid || !v.Writable {
		s.Error = v.Err
	} else {
		s.Success = true
		s.Detail = "directory exists and is writable"
	}
	d.addStep(r, s)
}

// checkProbeCycle creates a throwaway directory under the base path, checks
// it is visible and writable, and removes it regardless of outcome.
func (d *Doctor) checkProbeCycle(r *Report, basePath string) {
	s := Step{Name: "probe_cycle"}
	defer func() { d.addStep(r, s) }()

	if strings.TrimSpace(basePath) == "" {
		s.Error = "no base path to probe"
		return
	}

	probeDir := filepath.Join(basePath, ".groundwork-probe-"+uuid.NewString())
	defer func() { _ = os.RemoveAll(probeDir) }()

	if err := os.Mkdir(probeDir, 0o755); err != nil {
		s.Error = fmt.Sprintf("create probe directory: %v", err)
		return
	}
	info, err := os.Stat(probeDir)
	if err != nil {
		s.Error = fmt.Sprintf("probe directory not visible after creation: %v", err)
		return
	}
	if !info.IsDir() {
		s.Error = "probe path exists but is not a directory"
		return
	}
	if err := provision.ProbeWrite(probeDir); err != nil {
		s.Error = fmt.Sprintf("probe directory not writable: %v", err)
		return
	}

	s.Success = true
	s.Detail = "create-verify-cleanup cycle completed"
}

// FormatHuman returns a human-readable diagnostic report.
func FormatHuman(r *Report) string {
	var b strings.Builder

	if r.Healthy {
		fmt.Fprintf(&b, "Tenant %d storage healthy.\n", r.TenantID)
	} else {
		fmt.Fprintf(&b, "Tenant %d storage has problems.\n", r.TenantID)
	}

	for _, s := range r.Steps {
		if s.Success {
			fmt.Fprintf(&b, "  OK   %-22s %s\n", s.Name, s.Detail)
		} else {
			fmt.Fprintf(&b, "  FAIL %-22s %s\n", s.Name, s.Error)
		}
	}

	return b.String()
}

// FormatJSON returns the report as indented JSON.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
