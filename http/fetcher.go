// Package http provides a net/http implementation of apiview.Fetcher for
// reading JSON from REST endpoints.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/oser-cs/apiview"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements apiview.Fetcher at compile time.
var _ apiview.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves response bodies with plain GET requests. Requests carry
// no custom headers and no credentials.
type Fetcher struct {
	client    *http.Client
	transport http.RoundTripper
	timeout   time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithTransport sets the round tripper used for requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: f.transport,
	}

	return f
}

// Fetch retrieves the body of the given URL.
// Any failure to reach the server or a status outside 2xx returns ETRANSPORT.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apiview.Errorf(apiview.ETRANSPORT, "GET %s: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apiview.Errorf(apiview.ETRANSPORT, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiview.Errorf(apiview.ETRANSPORT, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apiview.Errorf(apiview.ETRANSPORT, "read body of %s: %v", url, err)
	}

	return body, nil
}

// Close releases idle connections held by the client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
