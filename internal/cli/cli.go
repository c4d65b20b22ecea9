// Package cli provides command-line interface utilities for the namecheck tool.
// It holds configuration loading, credential lookup, display and validation
// helpers so the main package stays small and testable.
package cli

// Unset marks a numeric flag that was not given on the command line.
// Zero is a meaningful value for several of them.
const Unset = -1

// ConfigOptions holds command-line flag values for configuration.
// These are passed to LoadConfiguration to build the final Config.
type ConfigOptions struct {
	Environment  string
	DataDir      string
	Names        string
	Endings      string
	Timeout      string
	Cooldown     string
	UserAgent    string
	MetricsAddr  string
	StoreBackend string
	Rate         float64
	BatchSize    int
	MaxBatches   int
	Limit        int
	MaxRetries   int
	Resume       bool
	TestMode     bool
	Verbose      bool
	// AllowPrivateIPs permits API URLs on private or loopback addresses.
	AllowPrivateIPs  bool
	ExcludeSelfPairs bool
}

// NewConfigOptions returns options with every numeric override unset.
func NewConfigOptions() *ConfigOptions {
	return &ConfigOptions{
		Rate:       Unset,
		BatchSize:  Unset,
		MaxBatches: Unset,
		Limit:      Unset,
		MaxRetries: Unset,
	}
}
