// Package batcher splits candidate names into fixed-size ordered batches.
package batcher

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when the batch size is below 1.
var ErrInvalidSize = errors.New("batch size must be at least 1")

// Make splits candidates left to right into batches of size. The last batch
// may be smaller. When limit > 0 only the first limit batches are built.
// Batches share the backing array of candidates.
func Make(candidates []string, size, limit int) ([][]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	n := Count(len(candidates), size)
	if limit > 0 && n > limit {
		n = limit
	}

	batches := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := min(start+size, len(candidates))
		batches = append(batches, candidates[start:end:end])
	}
	return batches, nil
}

// Count returns the number of batches n names split into, ceil(n/size).
func Count(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
