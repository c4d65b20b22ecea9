package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/vnykmshr/namecheck/internal/domain"
	"github.com/vnykmshr/namecheck/internal/validator"
)

// endingPattern matches domain endings such as "com" or "co.uk".
var endingPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*(?:\.[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*)*$`)

// Resolve selects the environment-specific values of cfg and validates every
// setting. All invalid values are reported together; on error the returned
// Settings must not be used.
func Resolve(cfg *domain.Config) (domain.Settings, error) {
	v := validator.New()

	env, err := domain.ParseEnvironment(cfg.Environment)
	if err != nil {
		v.OneOf("environment", cfg.Environment, string(domain.EnvDevelopment), string(domain.EnvTest), string(domain.EnvProduction))
	}

	s := domain.Settings{
		Environment:      env,
		BatchSize:        cfg.BatchSize,
		MaxBatches:       cfg.MaxBatches,
		Limit:            cfg.Limit,
		Names:            []string(cfg.Names),
		DomainAPIKey:     cfg.DomainAPI.Key,
		DomainAPISecret:  cfg.DomainAPI.Secret,
		DomainMaxRetries: cfg.DomainAPI.MaxRetries,
		DomainEndings:    []string(cfg.DomainAPI.Endings),
		UsernameAPIURL:   cfg.UsernameAPI.BaseURL,
		UsernameToken:    cfg.UsernameAPI.Token,
		Rate:             cfg.Rate,
		UserAgent:        cfg.UserAgent,
		AllowPrivateIPs:  cfg.AllowPrivateIPs,
		StoreBackend:     cfg.Store.Backend,
		DatabaseURL:      cfg.Store.DatabaseURL,
		MetricsAddr:      cfg.MetricsAddr,
		ExcludeSelfPairs: cfg.ExcludeSelfPairs,
		Resume:           cfg.Resume,
		TestMode:         cfg.TestMode,
		Verbose:          cfg.Verbose,
	}

	resultsFile := cfg.TestResultsFile
	s.DomainAPIURL = cfg.DomainAPI.DevelopmentURL
	if env == domain.EnvProduction {
		resultsFile = cfg.ResultsFile
		s.DomainAPIURL = cfg.DomainAPI.ProductionURL
	}

	v.Integer("batch_size", cfg.BatchSize, 1)
	v.Integer("max_batches", cfg.MaxBatches, 0)
	v.Integer("limit", cfg.Limit, 0)
	v.Integer("domain_api.max_retries", cfg.DomainAPI.MaxRetries, 0)
	v.Float("rate", cfg.Rate, 0)

	s.DomainCooldown = v.Duration("domain_api.cooldown", cfg.DomainAPI.Cooldown, 0)
	s.RequestTimeout = v.Duration("timeout", cfg.Timeout, time.Millisecond)

	v.Filename("seeds_file", cfg.SeedsFile)
	v.Filename("results_file", resultsFile)
	v.Required("data_dir", cfg.DataDir)
	s.SeedsPath = filepath.Join(cfg.DataDir, cfg.SeedsFile)
	s.ResultsPath = filepath.Join(cfg.DataDir, resultsFile)

	v.URL("domain_api.url", s.DomainAPIURL, cfg.AllowPrivateIPs)
	v.URL("username_api.base_url", s.UsernameAPIURL, cfg.AllowPrivateIPs)
	v.APIToken("domain_api.key", cfg.DomainAPI.Key)
	v.APIToken("domain_api.secret", cfg.DomainAPI.Secret)
	v.APIToken("username_api.token", cfg.UsernameAPI.Token)

	if len(s.DomainEndings) == 0 {
		v.Required("domain_api.endings", "")
	}
	for _, ending := range s.DomainEndings {
		v.Match("domain_api.endings", ending, endingPattern, "a domain ending such as com or co.uk")
	}

	v.OneOf("store.backend", cfg.Store.Backend, domain.StoreBackendFile, domain.StoreBackendPostgres)
	if cfg.Store.Backend == domain.StoreBackendPostgres {
		v.Required("store.database_url", cfg.Store.DatabaseURL)
	}

	if cfg.MetricsAddr != "" {
		v.Address("metrics_addr", cfg.MetricsAddr)
	}

	if err := v.Err(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}
