package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/karstlabs/groundwork/internal/api"
	"github.com/karstlabs/groundwork/internal/auth"
	"github.com/karstlabs/groundwork/internal/config"
	"github.com/karstlabs/groundwork/internal/doctor"
	"github.com/karstlabs/groundwork/internal/lock"
	"github.com/karstlabs/groundwork/internal/log"
	"github.com/karstlabs/groundwork/internal/provision"
	"github.com/karstlabs/groundwork/internal/settings"
	"github.com/karstlabs/groundwork/internal/storage"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "system":
		os.Exit(runSystemNoun(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "tenant":
		os.Exit(runTenantNoun(args))
	case "version":
		fmt.Printf("groundworkd version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`groundworkd - Tenant project-directory provisioning service

Usage:
  groundworkd <noun> <action> [flags]

System Commands:
  system start       Start the provisioning service in foreground

Config Commands:
  config lock        Authorize current config state (update integrity hash)
  config check       Validate syntax, policy, and integrity

Tenant Commands:
  tenant diagnose    Run the storage diagnostic for one tenant

General:
  version            Show version information
  help               Show this help message
`)
}

func runSystemNoun(args []string) int {
	if len(args) < 1 || args[0] == "help" {
		fmt.Fprintln(os.Stderr, "Usage: groundworkd system start [--config path]")
		if len(args) < 1 {
			return 1
		}
		return 0
	}
	switch args[0] {
	case "start":
		return runStart(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", args[0])
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 || args[0] == "help" {
		fmt.Fprintln(os.Stderr, "Usage: groundworkd config <lock|check> [--config path]")
		if len(args) < 1 {
			return 1
		}
		return 0
	}
	switch args[0] {
	case "lock":
		return runConfigLock(args[1:])
	case "check":
		return runConfigCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", args[0])
		return 1
	}
}

func runTenantNoun(args []string) int {
	if len(args) < 1 || args[0] == "help" {
		fmt.Fprintln(os.Stderr, "Usage: groundworkd tenant diagnose --tenant N [--config path] [--json]")
		if len(args) < 1 {
			return 1
		}
		return 0
	}
	switch args[0] {
	case "diagnose":
		return runDiagnose(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown tenant action: %s\n", args[0])
		return 1
	}
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	if warning, err := config.VerifyIntegrity(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Config integrity check failed: %v\n", err)
		return 1
	} else if warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("groundworkd starting", "version", version, "config", *configPath)

	lockPath := pidLockPath(cfg)
	pidLock, err := lock.Acquire(lockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", lockPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", lockPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenSQLite(ctx, cfg.Storage.Path)
	if err != nil {
		logger.Error("failed to open settings database", "path", cfg.Storage.Path, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("settings database opened", "path", cfg.Storage.Path, "tenant_scoped", cfg.Storage.TenantScoped)

	store := settings.NewSQLStore(db, cfg.Storage.TenantScoped)
	resolver := provision.NewResolver(store, cfg.Provisioning.DefaultRoot, log.WithComponent("resolver"))
	engine := provision.NewEngine(resolver, engineOptions(cfg), log.WithComponent("provision"))
	doc := doctor.New(store, resolver)

	if !cfg.API.Enabled {
		logger.Error("api.enabled is false; nothing to serve")
		return 1
	}

	server := api.New(api.Config{
		Listen: cfg.API.Listen,
		APIKey: cfg.API.Auth.APIKey,
		Tokens: apiTokens(cfg),
	}, engine, doc, store, log.WithComponent("api"))

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("api server failed", "error", err)
		return 1
	}

	logger.Info("groundworkd stopped")
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("config lock", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if _, err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Refusing to lock invalid config: %v\n", err)
		return 1
	}
	if err := config.Lock(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}
	fmt.Println("Config integrity hash updated.")
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if _, err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
		return 1
	}
	warning, err := config.VerifyIntegrity(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config integrity check failed: %v\n", err)
		return 1
	}
	if warning != "" {
		fmt.Printf("Config valid (1 warning)\n  WARN %s\n", warning)
		return 0
	}
	fmt.Println("Config valid.")
	return 0
}

// runDiagnose runs the tenant storage diagnostic offline, without the API.
func runDiagnose(args []string) int {
	fs := flag.NewFlagSet("tenant diagnose", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	tenantID := fs.Int64("tenant", -1, "Tenant ID to diagnose")
	asJSON := fs.Bool("json", false, "Emit the report as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *tenantID < 0 {
		fmt.Fprintln(os.Stderr, "--tenant is required")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log.Setup("ERROR") // keep diagnostic output clean

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open settings database: %v\n", err)
		return 1
	}
	defer db.Close()

	store := settings.NewSQLStore(db, cfg.Storage.TenantScoped)
	resolver := provision.NewResolver(store, cfg.Provisioning.DefaultRoot, log.WithComponent("resolver"))
	report := doctor.New(store, resolver).Run(ctx, *tenantID)

	if *asJSON {
		out, err := doctor.FormatJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(report))
	}

	if !report.Healthy {
		return 1
	}
	return 0
}

func engineOptions(cfg *config.Config) provision.Options {
	return provision.Options{
		Subdirectories: cfg.Provisioning.Subdirectories,
		CloudRetry: provision.RetryPolicy{
			Attempts: cfg.Provisioning.CloudRetries,
			Delay:    cfg.Provisioning.CloudRetryDelay,
		},
		LocalRetry: provision.RetryPolicy{
			Attempts: cfg.Provisioning.LocalRetries,
			Delay:    cfg.Provisioning.LocalRetryDelay,
		},
	}
}

func apiTokens(cfg *config.Config) []auth.TokenConfig {
	tokens := make([]auth.TokenConfig, 0, len(cfg.API.Auth.Tokens))
	for _, t := range cfg.API.Auth.Tokens {
		tokens = append(tokens, auth.TokenConfig{Token: t.Token, Scopes: t.Scopes})
	}
	return tokens
}

func pidLockPath(cfg *config.Config) string {
	if cfg.Service.LockPath != "" {
		return cfg.Service.LockPath
	}
	return filepath.Join(filepath.Dir(cfg.Storage.Path), "groundworkd.lock")
}
