// Package runner drives a name availability run: it generates candidates,
// checks them batch by batch and merges the verdicts into the result store.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vnykmshr/namecheck/internal/batcher"
	"github.com/vnykmshr/namecheck/internal/domain"
	"github.com/vnykmshr/namecheck/internal/generator"
	"github.com/vnykmshr/namecheck/internal/store"
)

// BatchReporter receives a summary after every persisted batch.
type BatchReporter interface {
	PrintBatch(batch domain.BatchSummary, totalBatches int)
}

// Dependencies are the collaborators a Runner needs.
type Dependencies struct {
	Store    domain.ResultStore
	Checkers []domain.Checker
	// Reporter and Metrics are optional.
	Reporter BatchReporter
	Metrics  domain.MetricsRecorder
}

// Runner orchestrates one run
type Runner struct {
	settings domain.Settings
	deps     Dependencies
	logger   *slog.Logger
	runID    string
}

// New creates a runner. Settings must already be validated.
func New(settings domain.Settings, deps Dependencies, logger *slog.Logger) (*Runner, error) {
	if deps.Store == nil {
		return nil, errors.New("runner requires a result store")
	}
	if len(deps.Checkers) == 0 {
		return nil, errors.New("runner requires at least one checker")
	}
	if deps.Metrics == nil {
		deps.Metrics = domain.NopMetrics{}
	}

	runID := uuid.NewString()
	return &Runner{
		settings: settings,
		deps:     deps,
		logger:   logger.With("run_id", runID),
		runID:    runID,
	}, nil
}

// RunID returns the identifier attached to this run's logs and summary.
func (r *Runner) RunID() string {
	return r.runID
}

// Run checks every candidate and returns the run summary. Checker failures
// never abort the run; a store failure does. When ctx is canceled the
// verdicts of the batch in flight that completed are persisted and the run
// stops before the next batch.
// The summary is returned alongside any error.
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	startTime := time.Now()
	summary := &domain.RunSummary{
		RunID:       r.runID,
		Environment: string(r.settings.Environment),
		StartedAt:   startTime.UTC(),
		Batches:     make([]domain.BatchSummary, 0),
		ResultsPath: r.resultsLocation(),
	}
	defer func() {
		summary.Duration = time.Since(startTime).Round(time.Millisecond).String()
	}()

	candidates, err := r.candidates()
	if err != nil {
		return summary, err
	}
	summary.Candidates = len(candidates)

	if r.settings.Resume {
		remaining, err := r.pending(ctx, candidates)
		if err != nil {
			return summary, err
		}
		summary.Skipped = len(candidates) - len(remaining)
		candidates = remaining
	}

	batches, err := batcher.Make(candidates, r.settings.BatchSize, r.settings.MaxBatches)
	if err != nil {
		return summary, fmt.Errorf("building batches: %w", err)
	}
	summary.TotalBatches = len(batches)

	r.logger.Info("Starting run",
		"environment", r.settings.Environment,
		"candidates", summary.Candidates,
		"skipped", summary.Skipped,
		"batches", len(batches),
		"batch_size", r.settings.BatchSize)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Run interrupted", "completed_batches", i, "total_batches", len(batches))
			return summary, err
		}

		result, err := r.processBatch(ctx, i, batch)
		if err != nil {
			return summary, err
		}

		summary.Batches = append(summary.Batches, result)
		summary.NamesProcessed += result.Names
		summary.DomainAvailable += result.DomainAvailable
		summary.UsernameAvailable += result.UsernameAvailable

		if r.deps.Reporter != nil {
			r.deps.Reporter.PrintBatch(result, len(batches))
		}
	}

	r.logger.Info("Run complete",
		"names_processed", summary.NamesProcessed,
		"domain_available", summary.DomainAvailable,
		"username_available", summary.UsernameAvailable,
		"duration", time.Since(startTime))

	return summary, nil
}

// processBatch runs every checker over batch and merges the verdicts.
func (r *Runner) processBatch(ctx context.Context, index int, batch []string) (domain.BatchSummary, error) {
	result := domain.BatchSummary{Index: index, Names: len(batch)}

	r.logger.Debug("Processing batch", "batch", index+1, "names", len(batch))

	var verdicts []domain.Verdict
	for _, checker := range r.deps.Checkers {
		verdicts = append(verdicts, checker.Check(ctx, batch)...)
	}

	// Checkers return only completed verdicts once ctx is canceled; those
	// are still persisted, so the write itself must outlive the cancellation.
	interrupted := ctx.Err()
	persistCtx := ctx
	if interrupted != nil {
		persistCtx = context.WithoutCancel(ctx)
	}

	records := make([]domain.Record, 0, len(verdicts))
	for _, v := range verdicts {
		records = append(records, v.Record())
	}
	records = store.Merge(nil, records)
	result.Verdicts = len(verdicts)

	for _, rec := range records {
		if available, _ := rec.Bool(domain.FieldDomain); available {
			result.DomainAvailable++
		}
		if available, _ := rec.Bool(domain.FieldUsername); available {
			result.UsernameAvailable++
		}
	}

	if len(records) > 0 {
		if err := r.deps.Store.MergeAndPersist(persistCtx, records); err != nil {
			return result, fmt.Errorf("persisting batch %d: %w", index+1, err)
		}
	}
	r.deps.Metrics.RecordMerged(len(records))

	if interrupted != nil {
		r.logger.Warn("Batch interrupted, completed verdicts persisted",
			"batch", index+1,
			"names", len(batch),
			"verdicts", len(verdicts))
		return result, interrupted
	}

	r.deps.Metrics.RecordBatch(len(batch))

	r.logger.Info("Batch persisted",
		"batch", index+1,
		"names", len(batch),
		"verdicts", len(verdicts),
		"domain_available", result.DomainAvailable,
		"username_available", result.UsernameAvailable)

	return result, nil
}

// candidates returns the explicit names when configured, otherwise the
// names generated from the seed file, with the limit applied.
func (r *Runner) candidates() ([]string, error) {
	var names []string
	if len(r.settings.Names) > 0 {
		for _, n := range r.settings.Names {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	} else {
		seeds, err := generator.LoadSeeds(r.settings.SeedsPath)
		if err != nil {
			return nil, err
		}
		names = generator.FromSeeds(seeds, r.settings.ExcludeSelfPairs)
	}
	return generator.Limit(names, r.settings.Limit), nil
}

// pending drops candidates whose stored record already carries every field
// this run would write.
func (r *Runner) pending(ctx context.Context, candidates []string) ([]string, error) {
	stored, err := r.deps.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored results: %w", err)
	}

	byName := make(map[string]domain.Record, len(stored))
	for _, rec := range stored {
		byName[rec.Name] = rec
	}

	fields := r.expectedFields()
	remaining := make([]string, 0, len(candidates))
	for _, name := range candidates {
		rec, ok := byName[name]
		if ok && hasAll(rec, fields) {
			continue
		}
		remaining = append(remaining, name)
	}
	return remaining, nil
}

// expectedFields lists the result fields the configured checkers produce.
func (r *Runner) expectedFields() []string {
	var fields []string
	for _, c := range r.deps.Checkers {
		switch c.Source() {
		case domain.SourceDomain:
			endings := r.settings.DomainEndings
			if len(endings) == 0 {
				endings = []string{"com"}
			}
			for i, ending := range endings {
				fields = append(fields, domain.DomainField(i, ending))
			}
		case domain.SourceUsername:
			fields = append(fields, domain.FieldUsername)
		}
	}
	return fields
}

func hasAll(rec domain.Record, fields []string) bool {
	for _, f := range fields {
		if !rec.Has(f) {
			return false
		}
	}
	return true
}

func (r *Runner) resultsLocation() string {
	if r.settings.StoreBackend == domain.StoreBackendPostgres {
		return "postgres:name_results"
	}
	return r.settings.ResultsPath
}
