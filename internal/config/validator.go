package config

import (
	"fmt"
	"strings"
)

// Validate performs structural validation after defaults are applied.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Provisioning.DefaultRoot) == "" {
		return fmt.Errorf("provisioning.default_root is required")
	}

	if cfg.API.Enabled && strings.TrimSpace(cfg.API.Listen) == "" {
		return fmt.Errorf("api.listen is required when api is enabled")
	}

	for i, name := range cfg.Provisioning.Subdirectories {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("provisioning.subdirectories[%d] is empty", i)
		}
		if strings.ContainsAny(trimmed, `\/`) {
			return fmt.Errorf("provisioning.subdirectories[%d] %q must not contain path separators", i, name)
		}
	}

	seen := make(map[string]int)
	for i, name := range cfg.Provisioning.Subdirectories {
		key := strings.ToLower(strings.TrimSpace(name))
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("provisioning.subdirectories[%d] %q duplicates entry [%d]", i, name, prev)
		}
		seen[key] = i
	}

	for i, token := range cfg.API.Auth.Tokens {
		if strings.TrimSpace(token.Token) == "" {
			return fmt.Errorf("api.auth.tokens[%d].token is empty (possibly unresolved environment variable)", i)
		}
	}

	return nil
}
