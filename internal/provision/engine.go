package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RetryPolicy bounds the visibility polling after a creation call.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Options tunes the provisioning engine.
type Options struct {
	// Subdirectories is the fixed folder set created under every project
	// root.
	Subdirectories []string
	// CloudRetry applies when the base path looks cloud-synced, LocalRetry
	// otherwise.
	CloudRetry RetryPolicy
	LocalRetry RetryPolicy
}

// Engine idempotently provisions a project's directory tree under a tenant's
// storage root and verifies it is genuinely usable.
type Engine struct {
	resolver *Resolver
	opts     Options
	logger   *slog.Logger

	stat     func(string) (os.FileInfo, error)
	mkdirAll func(string, os.FileMode) error
	sleep    func(time.Duration)
}

// NewEngine creates an Engine over resolver.
func NewEngine(resolver *Resolver, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
		sleep:    time.Sleep,
	}
}

// Provision ensures the project directory and its subdirectory set exist for
// tenantID. Calling it again for the same pair is a cheap success: existing
// directories are reported as pre-existing, never as conflicts, so
// overlapping calls converge to the same healthy end state.
//
// Success is false only for the two hard failures: an unusable base path and
// an OS error from the project root's own creation call. Everything else,
// including replication-lagged visibility, travels in Warnings.
func (e *Engine) Provision(ctx context.Context, tenantID int64, projectIdentifier string) Result {
	result := newResult()

	basePath := e.resolver.ResolveBasePath(ctx, tenantID)
	v := ValidatePath(basePath)
	if !v.Valid || !v.Writable {
		result.Error = fmt.Sprintf("storage root %q is not usable: %s", basePath, v.Err)
		e.logger.Error("provisioning aborted on unusable storage root",
			"tenant_id", tenantID, "base_path", basePath, "reason", v.Err)
		return result
	}

	segment := Sanitize(projectIdentifier)
	logical := filepath.Join(basePath, segment)
	result.Path = logical

	policy := e.opts.LocalRetry
	if IsCloudSynced(basePath) {
		policy = e.opts.CloudRetry
		e.logger.Debug("storage root classified as cloud-synced",
			"tenant_id", tenantID, "base_path", basePath)
	}

	created, err := e.ensureDir(logical)
	if err != nil {
		result.Error = fmt.Sprintf("create project directory %q: %v", logical, err)
		return result
	}

	// The creation call itself did not error, so from here on the root
	// counts as provisioned; anything further is a warning.
	result.Success = true

	if !e.verifyVisible(ctx, logical, policy) {
		result.warn("project folder may have been created but is not yet visible; check the sync client status")
	}

	if err := ProbeWrite(logical); err != nil {
		result.warn(fmt.Sprintf("project directory write check failed: %v", err))
	}

	for _, name := range e.opts.Subdirectories {
		result.Subdirectories = append(result.Subdirectories, e.provisionSubdir(ctx, &result, logical, name, policy))
	}

	e.logger.Info("project directory provisioned",
		"tenant_id", tenantID,
		"path", logical,
		"created", created,
		"warnings", len(result.Warnings))
	return result
}

// ensureDir creates path if it is not already a directory. The creation call
// uses the platform-safe path form; path itself stays authoritative for
// every check.
func (e *Engine) ensureDir(path string) (created bool, err error) {
	if info, statErr := e.stat(path); statErr == nil && info.IsDir() {
		return false, nil
	}
	if err := e.mkdirAll(creationPath(path), 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// verifyVisible polls for path to show up as a directory within the retry
// budget. Folder creation can report success while the entry is not yet
// visible through the same access path when a sync client replicates lazily.
func (e *Engine) verifyVisible(ctx context.Context, path string, policy RetryPolicy) bool {
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			if ctx.Err() != nil {
				return false
			}
			e.sleep(policy.Delay)
		}
		if info, err := e.stat(path); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func (e *Engine) provisionSubdir(ctx context.Context, result *Result, projectDir, name string, policy RetryPolicy) SubdirResult {
	sub := SubdirResult{Name: name}
	path := filepath.Join(projectDir, name)

	created, err := e.ensureDir(path)
	if err != nil {
		sub.Error = fmt.Sprintf("create subdirectory: %v", err)
		return sub
	}

	sub.Created = created
	sub.Success = true
	if created && !e.verifyVisible(ctx, path, policy) {
		result.warn(fmt.Sprintf("subdirectory %q may have been created but is not yet visible", name))
	}
	return sub
}
