package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MinRate is the minimum allowed rate (requests per second).
	MinRate = 0.1
	// WarnRate is the rate above which the domain API is likely to throttle.
	WarnRate = 1.0
)

// ValidateRateLimit warns about unpaced or aggressive request rates and
// raises rates below MinRate to MinRate. Warnings are written to w.
func ValidateRateLimit(w io.Writer, rate *float64) {
	// Rate of 0 means no rate limiting (unlimited)
	if *rate == 0 {
		fmt.Fprintf(w, "\nWARNING: No rate limiting enabled (rate=0)\n")
		fmt.Fprintf(w, "Requests are sent back to back; throttled domain checks\n")
		fmt.Fprintf(w, "fall back to the cooldown between retries.\n\n")
		return
	}

	if *rate < MinRate {
		fmt.Fprintf(w, "\nWARNING: Rate %.2f req/s is below minimum %.2f req/s\n", *rate, MinRate)
		fmt.Fprintf(w, "Adjusting to minimum rate of %.2f req/s\n\n", MinRate)
		*rate = MinRate
		return
	}

	if *rate > WarnRate {
		fmt.Fprintf(w, "\nWARNING: High rate limit (%.2f req/s, ~%.0f requests per minute)\n", *rate, *rate*60)
		fmt.Fprintf(w, "The domain API throttles bursts; expect cooldowns.\n\n")
	}
}

// ConfirmProduction asks for confirmation before querying the production
// domain API. Non-interactive sessions continue without prompting.
func ConfirmProduction(in io.Reader, out io.Writer, interactive bool) error {
	PrintWarningBox(out, "PRODUCTION RUN", []string{
		"Domain checks go to the production domain API.",
		"Results are merged into the production results file.",
	})

	if !interactive {
		fmt.Fprintf(out, "Continuing in non-interactive mode...\n\n")
		return nil
	}

	fmt.Fprintf(out, "Do you want to continue? (y/N): ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		return fmt.Errorf("run canceled by user")
	}
	fmt.Fprintf(out, "\n")
	return nil
}

// IsInteractiveTerminal checks if the program is running in an interactive terminal.
func IsInteractiveTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// Check if stdin is a character device (terminal) rather than a pipe or file
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
