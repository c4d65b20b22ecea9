package domain

import "time"

// Settings is the resolved, validated configuration for one run.
// It is built once by config.Resolve and passed by value to every component.
type Settings struct {
	Environment Environment

	BatchSize  int
	MaxBatches int
	Limit      int
	Names      []string

	SeedsPath   string
	ResultsPath string

	DomainAPIURL     string
	DomainAPIKey     string
	DomainAPISecret  string
	DomainMaxRetries int
	DomainCooldown   time.Duration
	DomainEndings    []string

	UsernameAPIURL string
	UsernameToken  string

	RequestTimeout  time.Duration
	Rate            float64
	UserAgent       string
	AllowPrivateIPs bool

	StoreBackend string
	DatabaseURL  string

	MetricsAddr      string
	ExcludeSelfPairs bool
	Resume           bool
	TestMode         bool
	Verbose          bool
}
