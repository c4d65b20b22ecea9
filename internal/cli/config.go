package cli

import (
	"fmt"
	"path/filepath"

	"github.com/vnykmshr/namecheck/internal/config"
	"github.com/vnykmshr/namecheck/internal/domain"
)

// LoadConfiguration loads .env files, the configuration file (if provided)
// and merges CLI options on top. CLI flags override file configuration values.
func LoadConfiguration(configPath string, opts *ConfigOptions) (*domain.Config, error) {
	loader := config.NewLoader()

	dotEnvDirs := []string{"."}
	if configPath != "" {
		if dir := filepath.Dir(configPath); dir != "." {
			dotEnvDirs = append([]string{dir}, dotEnvDirs...)
		}
	}
	if err := loader.LoadDotEnv(dotEnvDirs...); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg *domain.Config

	if configPath != "" {
		// Load from file
		loadedCfg, err := loader.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loadedCfg
	} else {
		// Start with defaults
		defaultCfg := domain.DefaultConfig()
		cfg = &defaultCfg
	}

	applyOverrides(cfg, opts)
	ApplyCredentials(cfg)

	// Merge with defaults for any missing values
	cfg = loader.MergeWithDefaults(cfg)

	return cfg, nil
}

// applyOverrides copies every flag that was set onto cfg.
func applyOverrides(cfg *domain.Config, opts *ConfigOptions) {
	if opts.Environment != "" {
		cfg.Environment = opts.Environment
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Names != "" {
		cfg.Names = domain.ParseStringList(opts.Names)
	}
	if opts.Endings != "" {
		cfg.DomainAPI.Endings = domain.ParseStringList(opts.Endings)
	}
	if opts.Timeout != "" {
		cfg.Timeout = opts.Timeout
	}
	if opts.Cooldown != "" {
		cfg.DomainAPI.Cooldown = opts.Cooldown
	}
	if opts.UserAgent != "" {
		cfg.UserAgent = opts.UserAgent
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if opts.StoreBackend != "" {
		cfg.Store.Backend = opts.StoreBackend
	}
	if opts.Rate != Unset {
		cfg.Rate = opts.Rate
	}
	if opts.BatchSize != Unset {
		cfg.BatchSize = opts.BatchSize
	}
	if opts.MaxBatches != Unset {
		cfg.MaxBatches = opts.MaxBatches
	}
	if opts.Limit != Unset {
		cfg.Limit = opts.Limit
	}
	if opts.MaxRetries != Unset {
		cfg.DomainAPI.MaxRetries = opts.MaxRetries
	}

	// Boolean flags can only switch features on.
	cfg.Resume = cfg.Resume || opts.Resume
	cfg.TestMode = cfg.TestMode || opts.TestMode
	cfg.Verbose = cfg.Verbose || opts.Verbose
	cfg.AllowPrivateIPs = cfg.AllowPrivateIPs || opts.AllowPrivateIPs
	cfg.ExcludeSelfPairs = cfg.ExcludeSelfPairs || opts.ExcludeSelfPairs
}
