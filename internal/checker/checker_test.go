package checker

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// Test helper to create a quiet logger
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))
}

// countingMetrics records the calls the checkers make.
type countingMetrics struct {
	domain.NopMetrics
	mu          sync.Mutex
	rateLimited int
	exhausted   int
	errors      int
	statuses    []int
}

func (m *countingMetrics) RecordRateLimited(domain.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited++
}

func (m *countingMetrics) RecordRetriesExhausted(domain.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted++
}

func (m *countingMetrics) RecordRequestError(domain.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

func (m *countingMetrics) RecordHTTPStatus(_ domain.Source, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, code)
}

func newDomainChecker(t *testing.T, url string, retries int, metrics domain.MetricsRecorder) *DomainChecker {
	t.Helper()
	return NewDomainChecker(DomainConfig{
		URL:        url,
		Key:        "key",
		Secret:     "secret",
		UserAgent:  "namecheck-test",
		MaxRetries: retries,
		Cooldown:   time.Hour,
		TestMode:   true,
	}, NewHTTPClient(5*time.Second, true), nil, metrics, testLogger())
}

func TestDomainChecker_Available(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "sso-key key:secret" {
			t.Errorf("Expected sso-key authorization, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Expected Accept application/json, got %q", got)
		}
		if got := r.URL.Query().Get("domain"); got != "AnnCo.com" {
			t.Errorf("Expected domain=AnnCo.com, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"available": true, "domain": "AnnCo.com"}`))
	}))
	defer server.Close()

	c := newDomainChecker(t, server.URL, 3, nil)
	verdicts := c.Check(context.Background(), []string{"AnnCo"})

	if len(verdicts) != 1 {
		t.Fatalf("Expected 1 verdict, got %d", len(verdicts))
	}
	v := verdicts[0]
	if !v.Available {
		t.Error("Expected domain to be available")
	}
	if v.Identifier != "AnnCo.com" || v.Field != "domain" || v.Source != domain.SourceDomain {
		t.Errorf("Unexpected verdict %+v", v)
	}
}

func TestDomainChecker_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"available": false}`))
	}))
	defer server.Close()

	verdicts := newDomainChecker(t, server.URL, 3, nil).Check(context.Background(), []string{"Taken"})
	if verdicts[0].Available {
		t.Error("Expected domain to be unavailable")
	}
}

func TestDomainChecker_MultipleEndings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("domain") == "AnnCo.io" {
			_, _ = w.Write([]byte(`{"available": true}`))
			return
		}
		_, _ = w.Write([]byte(`{"available": false}`))
	}))
	defer server.Close()

	c := newDomainChecker(t, server.URL, 1, nil)
	c.config.Endings = []string{"com", "io"}

	verdicts := c.Check(context.Background(), []string{"AnnCo", "BobCo"})
	if len(verdicts) != 4 {
		t.Fatalf("Expected 4 verdicts, got %d", len(verdicts))
	}

	want := []struct {
		identifier string
		field      string
		available  bool
	}{
		{"AnnCo.com", "domain", false},
		{"AnnCo.io", "domain.io", true},
		{"BobCo.com", "domain", false},
		{"BobCo.io", "domain.io", false},
	}
	for i, w := range want {
		v := verdicts[i]
		if v.Identifier != w.identifier || v.Field != w.field || v.Available != w.available {
			t.Errorf("Verdict %d = %+v, want %+v", i, v, w)
		}
	}
}

func TestDomainChecker_RateLimitExhaustsBudget(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	metrics := &countingMetrics{}
	verdicts := newDomainChecker(t, server.URL, 3, metrics).Check(context.Background(), []string{"AnnCo"})

	if verdicts[0].Available {
		t.Error("Expected unavailable verdict after exhausting retries")
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", got)
	}
	if metrics.rateLimited != 3 {
		t.Errorf("Expected 3 rate-limited responses recorded, got %d", metrics.rateLimited)
	}
	if metrics.exhausted != 1 {
		t.Errorf("Expected 1 exhausted budget recorded, got %d", metrics.exhausted)
	}
}

func TestDomainChecker_RateLimitMarkerInBody(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": "TOO_MANY_REQUESTS"}`))
			return
		}
		_, _ = w.Write([]byte(`{"available": true}`))
	}))
	defer server.Close()

	verdicts := newDomainChecker(t, server.URL, 3, nil).Check(context.Background(), []string{"AnnCo"})
	if !verdicts[0].Available {
		t.Error("Expected available verdict after retry")
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
}

func TestDomainChecker_ZeroBudgetMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"available": true}`))
	}))
	defer server.Close()

	verdicts := newDomainChecker(t, server.URL, 0, nil).Check(context.Background(), []string{"AnnCo"})
	if verdicts[0].Available {
		t.Error("Expected unavailable verdict with zero budget")
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("Expected no requests, got %d", got)
	}
}

func TestDomainChecker_HardErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErrors int
	}{
		{"malformed body", http.StatusOK, `not json`, 1},
		{"missing field", http.StatusOK, `{"domain": "AnnCo.com"}`, 1},
		{"server error", http.StatusInternalServerError, `oops`, 0},
		{"unauthorized", http.StatusUnauthorized, `{"code": "UNABLE_TO_AUTHENTICATE"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			metrics := &countingMetrics{}
			verdicts := newDomainChecker(t, server.URL, 3, metrics).Check(context.Background(), []string{"AnnCo"})

			if verdicts[0].Available {
				t.Error("Expected unavailable verdict")
			}
			if got := requests.Load(); got != 1 {
				t.Errorf("Expected a single attempt without retry, got %d", got)
			}
			if metrics.errors != tt.wantErrors {
				t.Errorf("Expected %d request errors, got %d", tt.wantErrors, metrics.errors)
			}
		})
	}
}

func TestDomainChecker_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	metrics := &countingMetrics{}
	verdicts := newDomainChecker(t, url, 3, metrics).Check(context.Background(), []string{"AnnCo", "BobCo"})

	if len(verdicts) != 2 {
		t.Fatalf("Expected a verdict per name, got %d", len(verdicts))
	}
	for _, v := range verdicts {
		if v.Available {
			t.Errorf("Expected %s unavailable on transport error", v.Name)
		}
	}
	if metrics.errors != 2 {
		t.Errorf("Expected 2 request errors, got %d", metrics.errors)
	}
}

func TestDomainChecker_CooldownBetweenAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newDomainChecker(t, server.URL, 3, nil)
	c.config.TestMode = false
	c.config.Cooldown = 30 * time.Second

	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	c.Check(context.Background(), []string{"AnnCo"})

	// No cooldown after the final attempt.
	if len(sleeps) != 2 {
		t.Fatalf("Expected 2 cooldowns, got %d", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 30*time.Second {
			t.Errorf("Expected 30s cooldown, got %v", d)
		}
	}
}

func TestDomainChecker_CanceledDuringCooldown(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newDomainChecker(t, server.URL, 5, nil)
	c.config.TestMode = false
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	start := time.Now()
	verdicts := c.Check(ctx, []string{"AnnCo"})

	if len(verdicts) != 0 {
		t.Errorf("Expected no verdict for a check cut short by cancellation, got %v", verdicts)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", got)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected cooldown to be interrupted, took %v", elapsed)
	}
}

func TestUsernameChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token gh-token" {
			t.Errorf("Expected token authorization, got %q", got)
		}
		switch r.URL.Path {
		case "/users/AnnCo":
			w.WriteHeader(http.StatusNotFound)
		case "/users/octocat":
			_, _ = w.Write([]byte(`{"login": "octocat"}`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	metrics := &countingMetrics{}
	c := NewUsernameChecker(UsernameConfig{
		BaseURL: server.URL + "/users/",
		Token:   "gh-token",
	}, NewHTTPClient(5*time.Second, true), nil, metrics, testLogger())

	verdicts := c.Check(context.Background(), []string{"AnnCo", "octocat", "blocked"})
	if len(verdicts) != 3 {
		t.Fatalf("Expected 3 verdicts, got %d", len(verdicts))
	}

	want := map[string]bool{"AnnCo": true, "octocat": false, "blocked": false}
	for _, v := range verdicts {
		if v.Available != want[v.Name] {
			t.Errorf("%s: expected available=%v, got %v", v.Name, want[v.Name], v.Available)
		}
		if v.Field != domain.FieldUsername || v.Source != domain.SourceUsername || v.Identifier != v.Name {
			t.Errorf("Unexpected verdict %+v", v)
		}
	}
	if len(metrics.statuses) != 3 {
		t.Errorf("Expected 3 recorded statuses, got %v", metrics.statuses)
	}
}

func TestUsernameChecker_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL + "/users/"
	server.Close()

	c := NewUsernameChecker(UsernameConfig{BaseURL: base, Token: "t"},
		NewHTTPClient(5*time.Second, true), nil, nil, testLogger())

	verdicts := c.Check(context.Background(), []string{"AnnCo"})
	if verdicts[0].Available {
		t.Error("Expected unavailable verdict on transport error")
	}
}

func TestUsernameChecker_StopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/users/BobLab" {
			cancel()
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewUsernameChecker(UsernameConfig{BaseURL: server.URL + "/users/", Token: "t"},
		NewHTTPClient(5*time.Second, true), nil, nil, testLogger())

	verdicts := c.Check(ctx, []string{"AnnCo", "BobLab", "Zed"})
	if len(verdicts) != 1 || verdicts[0].Name != "AnnCo" || !verdicts[0].Available {
		t.Errorf("Expected only the AnnCo verdict, got %+v", verdicts)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("Expected 2 requests before stopping, got %d", got)
	}
}

func TestCheckers_UseLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	c := NewUsernameChecker(UsernameConfig{BaseURL: server.URL + "/", Token: "t"},
		NewHTTPClient(5*time.Second, true), limiter, nil, testLogger())

	c.Check(context.Background(), []string{"a", "b"})
	if got := limiter.waits.Load(); got != 2 {
		t.Errorf("Expected 2 limiter waits, got %d", got)
	}
}

type countingLimiter struct {
	waits atomic.Int32
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits.Add(1)
	return ctx.Err()
}

func TestNewLimiter(t *testing.T) {
	limiter, err := NewLimiter(0)
	if err != nil || limiter != nil {
		t.Errorf("Expected no limiter for rate 0, got %v, %v", limiter, err)
	}

	limiter, err = NewLimiter(100)
	if err != nil {
		t.Fatalf("NewLimiter() returned error: %v", err)
	}
	if limiter == nil {
		t.Fatal("Expected limiter for positive rate")
	}
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("Expected first wait to succeed, got %v", err)
	}
}

func TestNewHTTPClient_BlocksLoopback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewHTTPClient(2*time.Second, false)
	resp, err := client.Get(server.URL)
	if err == nil {
		_ = resp.Body.Close()
		t.Error("Expected loopback request to be refused")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want statusClass
	}{
		{200, statusAnswer},
		{404, statusNotFound},
		{429, statusRateLimited},
		{500, statusFailed},
		{401, statusFailed},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
