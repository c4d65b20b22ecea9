// Package reporter prints batch progress and run summaries.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Reporter writes human-readable progress to an output stream
type Reporter struct {
	out io.Writer
}

// New creates a reporter writing to out
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// availabilityLine formats "<label>: x of y available (z%)".
func availabilityLine(label string, available, total int, pct float64) string {
	return fmt.Sprintf("%s: %d of %d available (%.2f%%)", label, available, total, pct)
}

func percent(available, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100.0 * float64(available) / float64(total)
}

// PrintBatch prints the availability counts of one finished batch.
func (r *Reporter) PrintBatch(batch domain.BatchSummary, totalBatches int) {
	fmt.Fprintf(r.out, "Batch %d/%d (%d names)\n", batch.Index+1, totalBatches, batch.Names)
	fmt.Fprintf(r.out, "  %s\n", availabilityLine("Domain", batch.DomainAvailable, batch.Names, percent(batch.DomainAvailable, batch.Names)))
	fmt.Fprintf(r.out, "  %s\n", availabilityLine("GitHub", batch.UsernameAvailable, batch.Names, percent(batch.UsernameAvailable, batch.Names)))
}

// PrintSummary prints the totals of a completed run
func (r *Reporter) PrintSummary(s *domain.RunSummary) {
	fmt.Fprintf(r.out, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.out, "NAME AVAILABILITY RESULTS\n")
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.out, "Run ID:           %s\n", s.RunID)
	fmt.Fprintf(r.out, "Environment:      %s\n", s.Environment)
	fmt.Fprintf(r.out, "Duration:         %s\n", s.Duration)
	fmt.Fprintf(r.out, "Candidates:       %d\n", s.Candidates)
	if s.Skipped > 0 {
		fmt.Fprintf(r.out, "Skipped (resume): %d\n", s.Skipped)
	}
	fmt.Fprintf(r.out, "Batches:          %d of %d\n", len(s.Batches), s.TotalBatches)
	fmt.Fprintf(r.out, "Names Processed:  %d\n", s.NamesProcessed)
	fmt.Fprintf(r.out, "Results:          %s\n", s.ResultsPath)

	fmt.Fprintf(r.out, "\n%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(r.out, "TOTAL AVAILABILITY\n")
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(r.out, "%s\n", availabilityLine("Domain", s.DomainAvailable, s.NamesProcessed, s.DomainRate()))
	fmt.Fprintf(r.out, "%s\n", availabilityLine("GitHub", s.UsernameAvailable, s.NamesProcessed, s.UsernameRate()))
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", 60))
}

// GenerateJSON writes the run summary as JSON
func (r *Reporter) GenerateJSON(s *domain.RunSummary, outputPath string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(outputPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}

	return nil
}
