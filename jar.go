package apiview

import (
	"context"
	"strings"
	"time"
)

// Cookie is a single entry of a persistent cookie jar.
type Cookie struct {
	ID        string    `json:"id"`
	Host      string    `json:"host"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the cookie contains invalid fields.
func (c *Cookie) Validate() error {
	if c.Host == "" {
		return Errorf(EINVALID, "cookie host required")
	}
	if c.Name == "" {
		return Errorf(EINVALID, "cookie name required")
	}
	if strings.ContainsAny(c.Name, "=; \t\r\n") {
		return Errorf(EINVALID, "cookie name %q contains a separator", c.Name)
	}
	if strings.ContainsAny(c.Value, ";\r\n") {
		return Errorf(EINVALID, "cookie %q value contains a separator", c.Name)
	}
	return nil
}

// CookieJar represents a service for managing persisted cookies.
type CookieJar interface {
	// SetCookie creates a cookie or replaces the value of the cookie with
	// the same host, path and name. A replaced cookie keeps its ID and
	// creation time.
	SetCookie(ctx context.Context, cookie *Cookie) error

	// FindCookies retrieves cookies matching the filter, ordered the way a
	// browser lists them: longer paths first, then oldest first.
	FindCookies(ctx context.Context, filter CookieFilter) ([]*Cookie, error)

	// DeleteCookie permanently removes a cookie.
	// Returns ENOTFOUND if cookie does not exist.
	DeleteCookie(ctx context.Context, host, path, name string) error
}

// CookieFilter represents a filter for FindCookies.
type CookieFilter struct {
	Host *string `json:"host"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FormatCookies joins cookies into a document.cookie style string.
func FormatCookies(cookies []*Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Ensure JarCookies implements CookieSource at compile time.
var _ CookieSource = (*JarCookies)(nil)

// JarCookies is a read-only CookieSource over the cookies a CookieJar holds
// for one host.
type JarCookies struct {
	Jar  CookieJar
	Host string
}

// CookieString lists the host's cookies in jar order.
func (c *JarCookies) CookieString(ctx context.Context) (string, error) {
	cookies, err := c.Jar.FindCookies(ctx, CookieFilter{Host: &c.Host})
	if err != nil {
		return "", err
	}
	return FormatCookies(cookies), nil
}
