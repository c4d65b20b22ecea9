package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// FileStore keeps all records in one pretty-printed JSON array.
// It assumes a single writer.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the results file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every stored record. A missing or empty file is an empty set.
func (s *FileStore) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading results file %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Record{}, nil
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing results file %s: %w", s.path, err)
	}
	return records, nil
}

// MergeAndPersist merges records into the stored set and rewrites the file.
func (s *FileStore) MergeAndPersist(ctx context.Context, records []domain.Record) error {
	existing, err := s.Load(ctx)
	if err != nil {
		return err
	}

	merged := Merge(existing, records)

	data, err := json.MarshalIndent(merged, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return fmt.Errorf("writing results file %s: %w", s.path, err)
	}
	return nil
}

// writeAtomic writes data to a temp file next to the target and renames it
// into place.
func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".results-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
