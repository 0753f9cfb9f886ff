package mock

import (
	"context"

	"github.com/oser-cs/apiview"
)

var _ apiview.CookieSource = (*CookieSource)(nil)

// CookieSource is a mock implementation of apiview.CookieSource.
type CookieSource struct {
	CookieStringFn func(ctx context.Context) (string, error)
}

func (s *CookieSource) CookieString(ctx context.Context) (string, error) {
	return s.CookieStringFn(ctx)
}
