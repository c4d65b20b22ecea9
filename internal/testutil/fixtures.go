// Package testutil provides shared test fixtures and fake availability APIs for use across test files.
package testutil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Logger returns a logger that only prints errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))
}

// SampleSeeds returns a two-position seed set producing AnnCo, AnnLab, BobCo and BobLab.
func SampleSeeds() []domain.Seed {
	return []domain.Seed{
		{Position: 0, Items: []string{"Ann", "Bob"}},
		{Position: 1, Items: []string{"Co", "Lab"}},
	}
}

// WriteSeeds writes seeds to dir/name and returns the path.
func WriteSeeds(t *testing.T, dir, name string, seeds []domain.Seed) string {
	t.Helper()
	data, err := json.Marshal(seeds)
	if err != nil {
		t.Fatalf("Failed to encode seeds: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

// FakeAPI is a test server standing in for an availability API.
type FakeAPI struct {
	*httptest.Server
	requests atomic.Int64
}

// Requests returns how many requests the server has handled.
func (f *FakeAPI) Requests() int {
	return int(f.requests.Load())
}

// DomainAPI serves {"available": bool} for the ?domain= query. Domains in
// available are reported available; every other domain is taken.
func DomainAPI(t *testing.T, available ...string) *FakeAPI {
	t.Helper()
	free := make(map[string]bool, len(available))
	for _, d := range available {
		free[strings.ToLower(d)] = true
	}

	f := &FakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		d := r.URL.Query().Get("domain")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"available": free[strings.ToLower(d)],
			"domain":    d,
		})
	}))
	t.Cleanup(f.Close)
	return f
}

// UsernameAPI answers 200 for taken usernames and 404 for all others.
// Usernames are expected under /users/.
func UsernameAPI(t *testing.T, taken ...string) *FakeAPI {
	t.Helper()
	claimed := make(map[string]bool, len(taken))
	for _, u := range taken {
		claimed[strings.ToLower(u)] = true
	}

	f := &FakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		if !claimed[strings.ToLower(login)] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"login": login})
	}))
	t.Cleanup(f.Close)
	return f
}

// Settings returns validated-looking settings that keep all files under dir
// and point both checkers at the given API servers.
func Settings(dir, domainURL, usernameURL string) domain.Settings {
	return domain.Settings{
		Environment:      domain.EnvTest,
		BatchSize:        2,
		SeedsPath:        filepath.Join(dir, "seeds.json"),
		ResultsPath:      filepath.Join(dir, "test_results.json"),
		DomainAPIURL:     domainURL,
		DomainAPIKey:     "test-key",
		DomainAPISecret:  "test-secret",
		DomainMaxRetries: 3,
		DomainCooldown:   time.Second,
		DomainEndings:    []string{"com"},
		UsernameAPIURL:   usernameURL + "/users/",
		UsernameToken:    "test-token",
		RequestTimeout:   5 * time.Second,
		UserAgent:        "namecheck-test",
		AllowPrivateIPs:  true,
		StoreBackend:     domain.StoreBackendFile,
		TestMode:         true,
	}
}
