// Package settings reads tenant-scoped configuration values from the
// settings database.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BasePathKey is the setting holding a tenant's storage root.
const BasePathKey = "storage_base_path"

// Store is the read contract the provisioning engine depends on. Absence of
// a value is a normal condition, reported via the bool, not an error.
type Store interface {
	Get(ctx context.Context, tenantID int64, key string) (string, bool, error)
	Ping(ctx context.Context) error
}

// SQLStore reads settings from SQLite. When tenantScoped is true reads go to
// the tenant-partitioned table; otherwise the legacy single-value table is
// consulted and tenantID is ignored. The two modes differ only in which
// query runs, mirroring stores that predate tenant partitioning.
type SQLStore struct {
	db           *sql.DB
	tenantScoped bool
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a settings store over db.
func NewSQLStore(db *sql.DB, tenantScoped bool) *SQLStore {
	return &SQLStore{db: db, tenantScoped: tenantScoped}
}

// Get returns the value for key, scoped by tenantID when the store is
// tenant-partitioned.
func (s *SQLStore) Get(ctx context.Context, tenantID int64, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("setting key is empty")
	}

	var value string
	var err error
	if s.tenantScoped {
		err = s.db.QueryRowContext(ctx,
			"SELECT value FROM tenant_settings WHERE tenant_id = ? AND key = ?;", tenantID, key).Scan(&value)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT value FROM app_settings WHERE key = ?;", key).Scan(&value)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, true, nil
}

// Put writes a setting value. Used by tests and operator bootstrap; the
// provisioning engine itself never writes settings.
func (s *SQLStore) Put(ctx context.Context, tenantID int64, key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key is empty")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var err error
	if s.tenantScoped {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO tenant_settings(tenant_id, key, value, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(tenant_id, key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, tenantID, key, value, now)
	} else {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO app_settings(key, value, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, key, value, now)
	}
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// Ping verifies the backing database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("settings store unreachable: %w", err)
	}
	return nil
}
