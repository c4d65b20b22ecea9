// Package generator builds candidate names from seed fragment lists.
package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Generate returns the cross product of the seed items, one item per
// position, concatenated in ascending position order. The result has
// k1*k2*...*kn entries; it is empty when there are no seeds or any seed
// has no items.
func Generate(seeds []domain.Seed) []string {
	if len(seeds) == 0 {
		return []string{}
	}

	ordered := make([]domain.Seed, len(seeds))
	copy(ordered, seeds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	return suffixes(ordered, 0)
}

// suffixes returns every name that can be formed from seeds[i:].
func suffixes(seeds []domain.Seed, i int) []string {
	if i == len(seeds)-1 {
		out := make([]string, len(seeds[i].Items))
		copy(out, seeds[i].Items)
		return out
	}

	rest := suffixes(seeds, i+1)
	out := make([]string, 0, len(seeds[i].Items)*len(rest))
	for _, item := range seeds[i].Items {
		for _, suffix := range rest {
			out = append(out, item+suffix)
		}
	}
	return out
}

// GeneratePairs combines every start with every end, skipping pairs where
// the start and end are the same string.
func GeneratePairs(starts, ends []string) []string {
	out := make([]string, 0, len(starts)*len(ends))
	for _, start := range starts {
		for _, end := range ends {
			if start == end {
				continue
			}
			out = append(out, start+end)
		}
	}
	return out
}

// FromSeeds generates candidates, using the pair form when excludeSelfPairs
// is set and the seed set has exactly two positions.
func FromSeeds(seeds []domain.Seed, excludeSelfPairs bool) []string {
	if excludeSelfPairs && len(seeds) == 2 {
		first, second := seeds[0], seeds[1]
		if second.Position < first.Position {
			first, second = second, first
		}
		return GeneratePairs(first.Items, second.Items)
	}
	return Generate(seeds)
}

// Limit keeps the first n names when n > 0.
func Limit(names []string, n int) []string {
	if n > 0 && len(names) > n {
		return names[:n]
	}
	return names
}

// LoadSeeds reads a seed file. Items are NFC-normalized and trimmed, empty
// items are dropped, and duplicate positions are rejected.
func LoadSeeds(path string) ([]domain.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var seeds []domain.Seed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	seen := make(map[int]bool, len(seeds))
	for i := range seeds {
		pos := seeds[i].Position
		if seen[pos] {
			return nil, fmt.Errorf("seed file %s: duplicate seedPosition %d", path, pos)
		}
		seen[pos] = true
		seeds[i].Items = normalizeItems(seeds[i].Items)
	}

	return seeds, nil
}

func normalizeItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(norm.NFC.String(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
