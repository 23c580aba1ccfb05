package provision

import (
	"context"
	"log/slog"
	"strings"

	"github.com/karstlabs/groundwork/internal/settings"
)

// Resolver produces the effective storage root for a tenant: the configured
// tenant setting when present, otherwise the process-wide default root.
type Resolver struct {
	store       settings.Store
	defaultRoot string
	logger      *slog.Logger
}

// NewResolver creates a Resolver falling back to defaultRoot.
func NewResolver(store settings.Store, defaultRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:       store,
		defaultRoot: strings.TrimSpace(defaultRoot),
		logger:      logger,
	}
}

// ResolveBasePath returns the effective base path for tenantID. Resolution
// degrades, never aborts: a store error or an absent/blank setting both fall
// back to the default root, so the result is always non-empty. The value is
// resolved fresh on every call; tenant settings can change between
// invocations.
func (r *Resolver) ResolveBasePath(ctx context.Context, tenantID int64) string {
	value, found, err := r.store.Get(ctx, tenantID, settings.BasePathKey)
	if err != nil {
		r.logger.Warn("settings lookup failed, using default storage root",
			"tenant_id", tenantID, "error", err)
		return r.defaultRoot
	}

	configured := strings.TrimSpace(value)
	if !found || configured == "" {
		return r.defaultRoot
	}
	return configured
}
