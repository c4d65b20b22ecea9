// Package store persists merged verdict records.
package store

import (
	"context"
	"fmt"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Open returns the result store selected by settings.
func Open(ctx context.Context, settings domain.Settings) (domain.ResultStore, func(), error) {
	switch settings.StoreBackend {
	case "", domain.StoreBackendFile:
		return NewFileStore(settings.ResultsPath), func() {}, nil
	case domain.StoreBackendPostgres:
		pg, err := NewPostgresStore(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", settings.StoreBackend)
	}
}

// Merge overlays incoming onto existing by name. Existing records keep their
// position and untouched fields; records for new names are appended in the
// order they first appear.
func Merge(existing, incoming []domain.Record) []domain.Record {
	merged := make([]domain.Record, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	add := func(r domain.Record) {
		if i, ok := index[r.Name]; ok {
			merged[i].Merge(r)
			return
		}
		copied := domain.NewRecord(r.Name)
		copied.Merge(r)
		index[r.Name] = len(merged)
		merged = append(merged, copied)
	}

	for _, r := range existing {
		add(r)
	}
	for _, r := range incoming {
		add(r)
	}
	return merged
}
