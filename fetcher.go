package apiview

import "context"

// Fetcher retrieves raw response bodies from URLs.
type Fetcher interface {
	// Fetch issues a GET request and returns the response body.
	// Network failures and non-2xx statuses return ETRANSPORT.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body []byte, err error)

	// Close releases transport resources.
	Close() error
}
