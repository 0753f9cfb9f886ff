package mock

import (
	"context"

	"github.com/oser-cs/apiview"
)

var _ apiview.CookieJar = (*CookieJar)(nil)

// CookieJar is a mock implementation of apiview.CookieJar.
type CookieJar struct {
	SetCookieFn    func(ctx context.Context, cookie *apiview.Cookie) error
	FindCookiesFn  func(ctx context.Context, filter apiview.CookieFilter) ([]*apiview.Cookie, error)
	DeleteCookieFn func(ctx context.Context, host, path, name string) error
}

func (j *CookieJar) SetCookie(ctx context.Context, cookie *apiview.Cookie) error {
	return j.SetCookieFn(ctx, cookie)
}

func (j *CookieJar) FindCookies(ctx context.Context, filter apiview.CookieFilter) ([]*apiview.Cookie, error) {
	return j.FindCookiesFn(ctx, filter)
}

func (j *CookieJar) DeleteCookie(ctx context.Context, host, path, name string) error {
	return j.DeleteCookieFn(ctx, host, path, name)
}
