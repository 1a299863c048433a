// internal/datasource/httpds/remote_test.go
//
// These tests exercise the HTTP data source, focusing on:
//   - Default configuration and TLS settings.
//   - Retry and backoff behavior on transient failures.
//   - Handling of non-retryable statuses.
//   - Context-aware backoff waits.

package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewRemote_Defaults verifies that NewRemote applies sensible defaults
// and sets TLS behavior when no custom Transport is supplied.
func TestNewRemote_Defaults(t *testing.T) {
	t.Parallel()

	r := NewRemote("https://example.com/eva-data.json", Config{InsecureSkipVerify: true})

	if r.client.Timeout <= 0 {
		t.Fatalf("expected non-zero timeout, got %v", r.client.Timeout)
	}
	if r.initialBackoff <= 0 || r.maxBackoff <= 0 {
		t.Fatalf("expected backoff defaults, got %v/%v", r.initialBackoff, r.maxBackoff)
	}

	transport, ok := r.client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", r.client.Transport)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true when configured")
	}
}

// TestOpen_Success verifies a 200 response streams the body without retries.
func TestOpen_Success(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"eva":"1"}]`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, Config{MaxRetries: 3, Timeout: 2 * time.Second})
	rc, err := r.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != `[{"eva":"1"}]` {
		t.Fatalf("body = %q", body)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("server hits = %d; want 1", got)
	}
}

// TestOpen_RetriesTransientThenSucceeds verifies 5xx responses are retried
// until a 200 arrives.
func TestOpen_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, Config{MaxRetries: 3, Timeout: 2 * time.Second})
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	rc, err := r.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("server hits = %d; want 3", got)
	}
}

// TestOpen_NonRetryableStatus verifies a 404 fails immediately without
// consuming retries.
func TestOpen_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, Config{MaxRetries: 3, Timeout: 2 * time.Second})
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	if _, err := r.Open(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("server hits = %d; want 1", got)
	}
}

// TestOpen_ExhaustsRetries verifies the last transient error surfaces once
// attempts run out.
func TestOpen_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, Config{MaxRetries: 2, Timeout: 2 * time.Second})
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	if _, err := r.Open(context.Background()); err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("server hits = %d; want 3 (initial + 2 retries)", got)
	}
}

// TestOpen_CanceledDuringBackoff verifies cancellation during the backoff
// wait aborts the fetch.
func TestOpen_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRemote(srv.URL, Config{MaxRetries: 5, Timeout: 2 * time.Second})
	r.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want context.Canceled", err)
	}
}

// TestBackoffDuration verifies exponential growth with clamping.
func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second}, // clamped
	}
	for _, tt := range tests {
		got := backoffDuration(100*time.Millisecond, tt.attempt, time.Second)
		if got != tt.want {
			t.Errorf("backoffDuration(attempt=%d) = %v; want %v", tt.attempt, got, tt.want)
		}
	}
}
