package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DefaultSubdirectories is the shipped report-category folder set, one per
// field-test report type.
var DefaultSubdirectories = []string{
	"Reports",
	"Field Density",
	"Concrete",
	"Soils",
	"Proctors",
	"Correspondence",
	"Photos",
}

// Load reads and parses configuration from a file.
func Load(configPath string) (*Config, error) {
	// Resolve to absolute path for consistent relative path resolution
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		// Directory provided - look for config.yaml inside
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := envVarPattern.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "groundwork"
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = "info"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./groundwork.db"
	}
	if len(cfg.Provisioning.Subdirectories) == 0 {
		cfg.Provisioning.Subdirectories = append([]string(nil), DefaultSubdirectories...)
	}
	if cfg.Provisioning.CloudRetries <= 0 {
		cfg.Provisioning.CloudRetries = 5
	}
	if cfg.Provisioning.CloudRetryDelay <= 0 {
		cfg.Provisioning.CloudRetryDelay = time.Second
	}
	if cfg.Provisioning.LocalRetries <= 0 {
		cfg.Provisioning.LocalRetries = 2
	}
	if cfg.Provisioning.LocalRetryDelay <= 0 {
		cfg.Provisioning.LocalRetryDelay = 500 * time.Millisecond
	}
}
