package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the raw configuration as read from the JSON config file.
// It is resolved and validated into Settings before any component uses it.
type Config struct {
	Environment      string            `json:"environment"`
	BatchSize        int               `json:"batch_size"`
	MaxBatches       int               `json:"max_batches"`
	Limit            int               `json:"limit"`
	DataDir          string            `json:"data_dir"`
	SeedsFile        string            `json:"seeds_file"`
	ResultsFile      string            `json:"results_file"`
	TestResultsFile  string            `json:"test_results_file"`
	Timeout          string            `json:"timeout"`
	Rate             float64           `json:"rate"`
	UserAgent        string            `json:"user_agent"`
	MetricsAddr      string            `json:"metrics_addr"`
	Names            StringList        `json:"names,omitempty"`
	DomainAPI        DomainAPIConfig   `json:"domain_api"`
	UsernameAPI      UsernameAPIConfig `json:"username_api"`
	Store            StoreConfig       `json:"store"`
	AllowPrivateIPs  bool              `json:"allow_private_ips"`
	ExcludeSelfPairs bool              `json:"exclude_self_pairs"`
	Resume           bool              `json:"resume"`
	TestMode         bool              `json:"test_mode"`
	Verbose          bool              `json:"verbose"`
}

// DomainAPIConfig configures the domain availability API.
type DomainAPIConfig struct {
	ProductionURL  string     `json:"production_url"`
	DevelopmentURL string     `json:"development_url"`
	Key            string     `json:"key"`
	Secret         string     `json:"secret"`
	MaxRetries     int        `json:"max_retries"`
	Cooldown       string     `json:"cooldown"`
	Endings        StringList `json:"endings,omitempty"`
}

// UsernameAPIConfig configures the GitHub profile lookup API.
type UsernameAPIConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// StoreConfig selects where merged results are persisted.
type StoreConfig struct {
	// Backend is "file" (default) or "postgres".
	Backend     string `json:"backend"`
	DatabaseURL string `json:"database_url,omitempty"`
}

// Store backends.
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		Environment:     string(EnvDevelopment),
		BatchSize:       25,
		MaxBatches:      0,
		DataDir:         "data",
		SeedsFile:       "seeds.json",
		ResultsFile:     "results.json",
		TestResultsFile: "test_results.json",
		Timeout:         "30s",
		Rate:            0,
		UserAgent:       "namecheck/1.0",
		DomainAPI: DomainAPIConfig{
			ProductionURL:  "https://api.godaddy.com/v1/domains/available",
			DevelopmentURL: "https://api.ote-godaddy.com/v1/domains/available",
			MaxRetries:     3,
			Cooldown:       "30s",
			Endings:        StringList{"com"},
		},
		UsernameAPI: UsernameAPIConfig{
			BaseURL: "https://api.github.com/users/",
		},
		Store: StoreConfig{
			Backend: StoreBackendFile,
		},
	}
}

// Environment identifies the deployment the credentials and endpoints belong to.
type Environment string

// Supported environments.
const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

// ParseEnvironment accepts the canonical names as well as the short
// DEV/TST/PRD forms, case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return EnvDevelopment, nil
	case "test", "tst":
		return EnvTest, nil
	case "production", "prd", "prod":
		return EnvProduction, nil
	default:
		return "", fmt.Errorf("unknown environment %q (expected development, test or production)", s)
	}
}

// StringList is a list of strings that also accepts a single JSON string.
// "com" and ["com"] decode to the same value.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = ParseStringList(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = normalizeList(many)
	return nil
}

// ParseStringList splits a comma-separated flag value into a StringList.
func ParseStringList(s string) StringList {
	return normalizeList(strings.Split(s, ","))
}

func normalizeList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
