package store

import (
	"context"
	"os"
	"testing"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// postgresStore connects to NAMECHECK_TEST_DATABASE_URL or skips the test.
func postgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("NAMECHECK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("NAMECHECK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("NewPostgresStore() returned error: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `TRUNCATE name_results`); err != nil {
		t.Fatalf("Failed to truncate name_results: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestPostgresStore_MergeAndPersist(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	if err := s.MergeAndPersist(ctx, []domain.Record{
		record("AnnCo", map[string]any{"domain": true}),
		record("BobCo", map[string]any{"GitHub": false}),
	}); err != nil {
		t.Fatalf("MergeAndPersist() returned error: %v", err)
	}
	if err := s.MergeAndPersist(ctx, []domain.Record{
		record("AnnCo", map[string]any{"GitHub": true}),
	}); err != nil {
		t.Fatalf("MergeAndPersist() returned error: %v", err)
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	ann := records[0]
	if ann.Name != "AnnCo" {
		t.Fatalf("Expected AnnCo first, got %s", ann.Name)
	}
	if v, _ := ann.Bool("domain"); !v {
		t.Error("Expected domain verdict kept")
	}
	if v, _ := ann.Bool("GitHub"); !v {
		t.Error("Expected GitHub verdict added")
	}
}

func TestPostgresStore_Idempotent(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()
	batch := []domain.Record{record("AnnCo", map[string]any{"domain": false})}

	for i := 0; i < 2; i++ {
		if err := s.MergeAndPersist(ctx, batch); err != nil {
			t.Fatalf("MergeAndPersist() returned error: %v", err)
		}
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || len(records[0].Fields) != 1 {
		t.Errorf("Expected a single record with one field, got %+v", records)
	}
}
