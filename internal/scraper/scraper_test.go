package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
		wantStatus int
	}{
		{
			name:       "successful fetch",
			body:       "<html><body>ok</body></html>",
			statusCode: http.StatusOK,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "animalitos") {
					t.Errorf("User-Agent = %q, should contain 'animalitos'", userAgent)
				}
				if r.Method != http.MethodGet {
					t.Errorf("method = %s, want GET", r.Method)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			body, err := NewClient(5*time.Second).Fetch(context.Background(), server.URL)

			if tt.wantError {
				var fetchErr *FetchError
				if !errors.As(err, &fetchErr) {
					t.Fatalf("Fetch() error = %v, want *FetchError", err)
				}
				if fetchErr.StatusCode != tt.wantStatus {
					t.Errorf("FetchError.StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantStatus)
				}
				if fetchErr.URL != server.URL {
					t.Errorf("FetchError.URL = %q, want %q", fetchErr.URL, server.URL)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("Fetch() body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(time.Second).Fetch(context.Background(), url)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", fetchErr.StatusCode)
	}
	if fetchErr.Unwrap() == nil {
		t.Error("transport failure should wrap the underlying error")
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(50*time.Millisecond).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Fetch() expected timeout error, got nil")
	}
}

func TestFetch_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(time.Second).Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestFetch_PageTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.maxSize = 64
	if body, err := c.Fetch(context.Background(), server.URL); err != nil || len(body) != 64 {
		t.Fatalf("Fetch() at the limit = %d bytes, %v", len(body), err)
	}

	c.maxSize = 63
	_, err := c.Fetch(context.Background(), server.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || !strings.Contains(err.Error(), "larger than 63 bytes") {
		t.Errorf("Fetch() error = %v, want oversized page *FetchError", err)
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(0)
	if c.client == nil {
		t.Fatal("client is nil")
	}
	if c.maxSize != MaxPageSize {
		t.Errorf("maxSize = %d, want %d", c.maxSize, MaxPageSize)
	}
	if c.client.Timeout != Timeout {
		t.Errorf("default timeout = %v, want %v", c.client.Timeout, Timeout)
	}

	if got := NewClient(time.Minute).client.Timeout; got != time.Minute {
		t.Errorf("timeout = %v, want 1m", got)
	}
}
