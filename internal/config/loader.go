// Package config handles loading configuration files and resolving them into run settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default} syntax
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// dotEnvFiles are loaded, in order, from every directory passed to LoadDotEnv.
var dotEnvFiles = []string{".env", ".env.local"}

// Loader handles loading configuration from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDotEnv loads .env and .env.local from each directory into the process
// environment. Variables that are already set are never overridden, and
// missing files are skipped.
func (l *Loader) LoadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		for _, name := range dotEnvFiles {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}
	return nil
}

// LoadFromFile loads configuration from a JSON file.
// Supports environment variable substitution using ${VAR_NAME} syntax.
// Optional default values can be specified with ${VAR_NAME:-default}.
func (l *Loader) LoadFromFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	expanded, err := substituteEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("environment variable substitution failed: %w", err)
	}

	config := domain.DefaultConfig()
	if err := json.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("invalid JSON in config file %s: %w", path, err)
	}

	return &config, nil
}

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// ${VAR_NAME:-default} falls back to default when the variable is unset.
// Returns an error listing every required variable that is not set.
func substituteEnvVars(content string) (string, error) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := strings.Contains(match, ":-")

		value, isSet := os.LookupEnv(name)
		switch {
		case isSet:
			return jsonEscape(value)
		case hasDefault:
			return jsonEscape(sub[2])
		default:
			missing = append(missing, name)
			return match
		}
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing required environment variables: %v (set them in the environment or a .env file, or use ${VAR:-default})", missing)
	}

	return result, nil
}

// jsonEscape escapes a value for use inside a JSON string literal.
func jsonEscape(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	return string(b[1 : len(b)-1])
}

// SaveToFile saves configuration to a JSON file
func (l *Loader) SaveToFile(config *domain.Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}

	return nil
}

// MergeWithDefaults fills zero values of config from DefaultConfig.
// Numeric fields are left as they are: zero is meaningful for max_batches,
// limit, rate and max_retries, and a zero batch_size is rejected by Resolve.
func (l *Loader) MergeWithDefaults(config *domain.Config) *domain.Config {
	defaults := domain.DefaultConfig()

	if config.Environment == "" {
		config.Environment = defaults.Environment
	}
	if config.DataDir == "" {
		config.DataDir = defaults.DataDir
	}
	if config.SeedsFile == "" {
		config.SeedsFile = defaults.SeedsFile
	}
	if config.ResultsFile == "" {
		config.ResultsFile = defaults.ResultsFile
	}
	if config.TestResultsFile == "" {
		config.TestResultsFile = defaults.TestResultsFile
	}
	if config.Timeout == "" {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	if config.DomainAPI.ProductionURL == "" {
		config.DomainAPI.ProductionURL = defaults.DomainAPI.ProductionURL
	}
	if config.DomainAPI.DevelopmentURL == "" {
		config.DomainAPI.DevelopmentURL = defaults.DomainAPI.DevelopmentURL
	}
	if config.DomainAPI.Cooldown == "" {
		config.DomainAPI.Cooldown = defaults.DomainAPI.Cooldown
	}
	if len(config.DomainAPI.Endings) == 0 {
		config.DomainAPI.Endings = defaults.DomainAPI.Endings
	}
	if config.UsernameAPI.BaseURL == "" {
		config.UsernameAPI.BaseURL = defaults.UsernameAPI.BaseURL
	}
	if config.Store.Backend == "" {
		config.Store.Backend = defaults.Store.Backend
	}

	return config
}
