package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/karstlabs/groundwork/internal/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
provisioning:
  default_root: ` + t.TempDir() + `
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestEngineOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Provisioning.Subdirectories = []string{"Reports"}
	cfg.Provisioning.CloudRetries = 5
	cfg.Provisioning.CloudRetryDelay = time.Second
	cfg.Provisioning.LocalRetries = 2
	cfg.Provisioning.LocalRetryDelay = 500 * time.Millisecond

	opts := engineOptions(cfg)
	if opts.CloudRetry.Attempts != 5 || opts.CloudRetry.Delay != time.Second {
		t.Errorf("CloudRetry = %+v", opts.CloudRetry)
	}
	if opts.LocalRetry.Attempts != 2 || opts.LocalRetry.Delay != 500*time.Millisecond {
		t.Errorf("LocalRetry = %+v", opts.LocalRetry)
	}
	if len(opts.Subdirectories) != 1 {
		t.Errorf("Subdirectories = %v", opts.Subdirectories)
	}
}

func TestPIDLockPathDefaultsNextToDatabase(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Path = "/var/lib/groundwork/settings.db"

	got := pidLockPath(cfg)
	if got != "/var/lib/groundwork/groundworkd.lock" {
		t.Errorf("pidLockPath = %q", got)
	}

	cfg.Service.LockPath = "/run/groundworkd.lock"
	if got := pidLockPath(cfg); got != "/run/groundworkd.lock" {
		t.Errorf("pidLockPath with override = %q", got)
	}
}

func TestRunConfigCheckValid(t *testing.T) {
	path := writeTestConfig(t)

	if code := runConfigCheck([]string{"--config", path}); code != 0 {
		t.Errorf("runConfigCheck = %d, want 0", code)
	}
}

func TestRunConfigLockThenCheck(t *testing.T) {
	path := writeTestConfig(t)

	if code := runConfigLock([]string{"--config", path}); code != 0 {
		t.Fatalf("runConfigLock = %d, want 0", code)
	}
	if code := runConfigCheck([]string{"--config", path}); code != 0 {
		t.Errorf("runConfigCheck after lock = %d, want 0", code)
	}
}

func TestRunConfigCheckRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service:\n  name: x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if code := runConfigCheck([]string{"--config", path}); code != 1 {
		t.Errorf("runConfigCheck = %d, want 1 for missing default_root", code)
	}
}

func TestRunDiagnoseHealthyTenant(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  path: " + filepath.Join(dir, "settings.db") + "\nprovisioning:\n  default_root: " + root + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if code := runDiagnose([]string{"--config", path, "--tenant", "7"}); code != 0 {
		t.Errorf("runDiagnose = %d, want 0", code)
	}
}

func TestRunDiagnoseRequiresTenant(t *testing.T) {
	if code := runDiagnose([]string{}); code != 1 {
		t.Errorf("runDiagnose without --tenant = %d, want 1", code)
	}
}
