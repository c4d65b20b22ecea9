package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vnykmshr/namecheck/internal/domain"
)

func record(name string, fields map[string]any) domain.Record {
	r := domain.NewRecord(name)
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

func TestMerge(t *testing.T) {
	existing := []domain.Record{
		record("AnnCo", map[string]any{"domain": false, "note": "keep"}),
		record("BobCo", map[string]any{"GitHub": true}),
	}
	incoming := []domain.Record{
		record("AnnCo", map[string]any{"domain": true}),
		record("CatCo", map[string]any{"domain": true}),
		record("AnnCo", map[string]any{"GitHub": false}),
	}

	merged := Merge(existing, incoming)

	if len(merged) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(merged))
	}
	names := []string{merged[0].Name, merged[1].Name, merged[2].Name}
	if strings.Join(names, ",") != "AnnCo,BobCo,CatCo" {
		t.Errorf("Unexpected record order %v", names)
	}

	ann := merged[0]
	if v, _ := ann.Bool("domain"); !v {
		t.Error("Expected incoming domain verdict to win")
	}
	if v, ok := ann.Bool("GitHub"); !ok || v {
		t.Error("Expected GitHub verdict from the second incoming AnnCo record")
	}
	if ann.Fields["note"] != "keep" {
		t.Errorf("Expected unrelated field preserved, got %v", ann.Fields["note"])
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	existing := []domain.Record{record("AnnCo", map[string]any{"domain": false})}
	Merge(existing, []domain.Record{record("AnnCo", map[string]any{"domain": true})})

	if v, _ := existing[0].Bool("domain"); v {
		t.Error("Expected existing record to be left untouched")
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "results.json"))
	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty set, got %v", records)
	}
}

func TestFileStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty set, got %v", records)
	}
}

func TestFileStore_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(`[{"name": `), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Error("Expected error for invalid results file")
	}
}

func TestFileStore_MergeAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "results.json")
	s := NewFileStore(path)
	ctx := context.Background()

	first := []domain.Record{
		record("AnnCo", map[string]any{"domain": true}),
		record("AnnCo", map[string]any{"GitHub": true}),
	}
	if err := s.MergeAndPersist(ctx, first); err != nil {
		t.Fatalf("MergeAndPersist() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected results file, got %v", err)
	}
	want := "[\n    {\n        \"name\": \"AnnCo\",\n        \"GitHub\": true,\n        \"domain\": true\n    }\n]\n"
	if string(data) != want {
		t.Errorf("Unexpected file content:\n%s\nwant:\n%s", data, want)
	}

	if err := s.MergeAndPersist(ctx, []domain.Record{record("BobCo", map[string]any{"domain": false})}); err != nil {
		t.Fatalf("MergeAndPersist() returned error: %v", err)
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if v, _ := records[0].Bool("GitHub"); !v {
		t.Error("Expected AnnCo to keep its GitHub verdict")
	}
}

func TestFileStore_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s := NewFileStore(path)
	ctx := context.Background()
	batch := []domain.Record{
		record("AnnCo", map[string]any{"domain": true, "GitHub": false}),
		record("BobCo", map[string]any{"domain": false}),
	}

	if err := s.MergeAndPersist(ctx, batch); err != nil {
		t.Fatal(err)
	}
	once, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.MergeAndPersist(ctx, batch); err != nil {
		t.Fatal(err)
	}
	twice, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(once) != string(twice) {
		t.Errorf("Expected identical files after repeated merge:\n%s\n%s", once, twice)
	}
}

func TestFileStore_PreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	existing := `[{"name": "AnnCo", "domain": false, "checked_by": "hand", "score": 3}]`
	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	ctx := context.Background()
	if err := s.MergeAndPersist(ctx, []domain.Record{record("AnnCo", map[string]any{"domain": true})}); err != nil {
		t.Fatal(err)
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r := records[0]
	if r.Fields["checked_by"] != "hand" {
		t.Errorf("Expected checked_by preserved, got %v", r.Fields["checked_by"])
	}
	if r.Fields["score"] != float64(3) {
		t.Errorf("Expected score preserved, got %v", r.Fields["score"])
	}
	if v, _ := r.Bool("domain"); !v {
		t.Error("Expected domain updated to true")
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "results.json"))
	if err := s.MergeAndPersist(context.Background(), []domain.Record{record("AnnCo", nil)}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "results.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only results.json, got %v", names)
	}
}

func TestFileStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(filepath.Join(blocker, "results.json"))
	if err := s.MergeAndPersist(context.Background(), []domain.Record{record("AnnCo", nil)}); err == nil {
		t.Error("Expected error when the results directory cannot be created")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s, closeFn, err := Open(context.Background(), domain.Settings{StoreBackend: domain.StoreBackendFile, ResultsPath: path})
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer closeFn()

	fs, ok := s.(*FileStore)
	if !ok {
		t.Fatalf("Expected *FileStore, got %T", s)
	}
	if fs.Path() != path {
		t.Errorf("Expected path %s, got %s", path, fs.Path())
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, _, err := Open(context.Background(), domain.Settings{StoreBackend: "sqlite"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
