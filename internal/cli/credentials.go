package cli

import (
	"os"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Environment variables consulted for credentials.
const (
	EnvDomainAPIKey    = "GODADDY_API_KEY"
	EnvDomainAPISecret = "GODADDY_API_SECRET"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvDatabaseURL     = "DATABASE_URL"
)

// ApplyCredentials fills credentials missing from cfg from the environment.
// Values already present in the config file are kept.
// CLI flags for credentials are intentionally not supported to prevent exposure in process lists.
func ApplyCredentials(cfg *domain.Config) {
	if cfg.DomainAPI.Key == "" {
		cfg.DomainAPI.Key = os.Getenv(EnvDomainAPIKey)
	}
	if cfg.DomainAPI.Secret == "" {
		cfg.DomainAPI.Secret = os.Getenv(EnvDomainAPISecret)
	}
	if cfg.UsernameAPI.Token == "" {
		cfg.UsernameAPI.Token = os.Getenv(EnvGitHubToken)
	}
	if cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
}
