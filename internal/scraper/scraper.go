package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "animalitos/1.0 (github.com/pfrederiksen/animalitos)"
	Timeout   = 30 * time.Second

	// MaxPageSize caps how much of a response body is read
	MaxPageSize = 8 << 20
)

// FetchError reports a transport failure or a non-200 response for one page
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches results pages
type Client struct {
	client  *http.Client
	maxSize int64
}

// NewClient creates a Client whose requests time out after timeout.
// A non-positive timeout falls back to Timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		maxSize: MaxPageSize,
	}
}

// Fetch retrieves the raw page at url. There are no retries: any failure is
// returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > c.maxSize {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("page larger than %d bytes", c.maxSize)}
	}

	return body, nil
}
