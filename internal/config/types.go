package config

import "time"

// Config represents the complete groundwork configuration.
type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	API          APIConfig          `yaml:"api,omitempty"`
	Storage      StorageConfig      `yaml:"storage"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
	LockPath string `yaml:"lock_path,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	// APIKey is the legacy single bearer token (admin/full access).
	// Prefer Tokens for scoped access.
	APIKey string     `yaml:"api_key"`
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken defines a bearer token and its scopes.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// StorageConfig defines the settings-database backing store.
type StorageConfig struct {
	Path string `yaml:"path"`
	// TenantScoped selects the tenant-partitioned settings table. When false
	// the legacy single-value table is consulted instead, preserving
	// compatibility with stores that predate tenant partitioning.
	TenantScoped bool `yaml:"tenant_scoped"`
}

// ProvisioningConfig tunes the directory provisioning engine.
type ProvisioningConfig struct {
	// DefaultRoot is the process-wide fallback storage root used when a
	// tenant has no configured base path.
	DefaultRoot string `yaml:"default_root"`
	// Subdirectories is the fixed folder set created under every project
	// root, one per report category.
	Subdirectories []string `yaml:"subdirectories,omitempty"`

	CloudRetries    int           `yaml:"cloud_retries,omitempty"`
	CloudRetryDelay time.Duration `yaml:"cloud_retry_delay,omitempty"`
	LocalRetries    int           `yaml:"local_retries,omitempty"`
	LocalRetryDelay time.Duration `yaml:"local_retry_delay,omitempty"`
}

// ChecksumManifest is the on-disk .checksums file format.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}
