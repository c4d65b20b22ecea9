package cli

import (
	"fmt"
	"io"
	"strings"
)

// PrintWarningBox prints a formatted warning box to w.
func PrintWarningBox(w io.Writer, title string, lines []string) {
	const boxWidth = 68 // Inner content width

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "╔%s╗\n", strings.Repeat("═", boxWidth+2))
	fmt.Fprintf(w, "║ %-*s ║\n", boxWidth, CenterText(title, boxWidth))
	fmt.Fprintf(w, "╠%s╣\n", strings.Repeat("═", boxWidth+2))

	for _, line := range lines {
		if line == "" {
			fmt.Fprintf(w, "║ %-*s ║\n", boxWidth, "")
		} else {
			fmt.Fprintf(w, "║  %-*s║\n", boxWidth-1, line)
		}
	}

	fmt.Fprintf(w, "╚%s╝\n", strings.Repeat("═", boxWidth+2))
	fmt.Fprintf(w, "\n")
}

// CenterText centers text within a given width.
func CenterText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
}

// ShowHelpMessage prints the help message to w.
// The version parameter should be passed from the main package's version variable.
func ShowHelpMessage(w io.Writer, version string) {
	fmt.Fprintln(w, `namecheck - Domain and GitHub username availability checker

USAGE:
    namecheck [OPTIONS]

OPTIONS:
    -config string
        Path to configuration file (JSON format)
    -env string
        Environment: development, test or production (default: development)
        Production uses the production domain API and results.json;
        every other environment uses the OTE API and test_results.json
    -data-dir string
        Directory holding the seed and result files (default: data)
    -names string
        Comma-separated names to check instead of generating from seeds
    -endings string
        Comma-separated domain endings (default: com)
    -batch-size int
        Names per batch (default: 25)
    -max-batches int
        Stop after this many batches, 0 for all
    -limit int
        Check only the first N candidates, 0 for all
    -max-retries int
        Attempts per domain when the API is rate limited (default: 3)
    -cooldown string
        Pause after a rate-limited domain response (default: 30s)
    -timeout string
        Request timeout (default: 30s)
    -rate float
        Requests per second limit shared by both APIs, 0 for none
    -user-agent string
        User agent string (default: namecheck/1.0)
    -resume
        Skip names whose stored results already cover every check
    -exclude-self-pairs
        With two seed positions, skip names whose halves are identical
    -test-mode
        Skip cooldown pauses between rate-limited retries
    -allow-private-ips
        Allow API URLs on private/localhost IPs (local API mocks)
    -store string
        Result store: file or postgres (default: file)
    -metrics-addr string
        Serve Prometheus metrics on this address (e.g. :9090)
    -summary string
        Write the run summary to this file (JSON format)
    -init-config string
        Write a default configuration file to this path and exit
    -yes
        Do not ask for confirmation before a production run
    -verbose
        Enable debug logging
    -version
        Show version information
    -help
        Show this help message

CREDENTIALS (environment or .env file):
    GODADDY_API_KEY      Domain API key
    GODADDY_API_SECRET   Domain API secret
    GITHUB_TOKEN         GitHub API token
    DATABASE_URL         Postgres connection string (with -store postgres)

EXAMPLES:
    # Check generated names against the OTE API
    namecheck -config namecheck.json

    # Check two names across several endings
    namecheck -names AnnCo,BobLab -endings com,io,dev

    # Continue an interrupted production run
    namecheck -config namecheck.json -env production -resume

CONFIGURATION FILE EXAMPLE:
    {
      "environment": "development",
      "batch_size": 25,
      "data_dir": "data",
      "seeds_file": "seeds.json",
      "rate": 1.0,
      "domain_api": {
        "key": "${GODADDY_API_KEY}",
        "secret": "${GODADDY_API_SECRET}",
        "max_retries": 3,
        "cooldown": "30s",
        "endings": ["com"]
      },
      "username_api": {
        "token": "${GITHUB_TOKEN}"
      },
      "store": {
        "backend": "file",
        "database_url": "${DATABASE_URL:-}"
      }
    }

    NOTE: Use ${VAR_NAME} syntax for environment variable substitution.
    Never store plaintext credentials in config files.

VERSION:
    namecheck v`+version)
}
