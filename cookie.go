package apiview

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"
)

// CookieSource provides read-only access to an ambient cookie jar.
type CookieSource interface {
	// CookieString returns every visible cookie formatted like
	// document.cookie: "name1=value1; name2=value2".
	// An empty string means the jar holds no cookies.
	CookieString(ctx context.Context) (string, error)
}

// Ensure StaticCookies implements CookieSource at compile time.
var _ CookieSource = StaticCookies("")

// StaticCookies is a CookieSource backed by a literal cookie string.
type StaticCookies string

// CookieString returns the literal string.
func (c StaticCookies) CookieString(ctx context.Context) (string, error) {
	return string(c), nil
}

// ParseCookie returns the URL-decoded value of the first cookie called name
// in a semicolon-separated cookie string. Names are matched exactly and are
// case-sensitive. A missing cookie returns ENOTFOUND, which is distinct from
// a cookie whose value is empty.
func ParseCookie(cookies, name string) (string, error) {
	if name == "" {
		return "", Errorf(EINVALID, "cookie name required")
	}
	if cookies == "" {
		return "", Errorf(ENOTFOUND, "cookie %q not found", name)
	}

	prefix := name + "="
	for _, entry := range strings.Split(cookies, ";") {
		entry = strings.TrimSpace(entry)
		if !strings.HasPrefix(entry, prefix) {
			continue
		}

		// PathUnescape keeps '+' literal, as decodeURIComponent does.
		value, err := url.PathUnescape(entry[len(prefix):])
		if err != nil {
			return "", Errorf(EINVALID, "cookie %q has malformed encoding: %v", name, err)
		}
		if !utf8.ValidString(value) {
			return "", Errorf(EINVALID, "cookie %q does not decode to UTF-8", name)
		}
		return value, nil
	}

	return "", Errorf(ENOTFOUND, "cookie %q not found", name)
}

// ReadCookie reads the cookie string from src and returns the value of the
// cookie called name. See ParseCookie for matching rules.
func ReadCookie(ctx context.Context, src CookieSource, name string) (string, error) {
	cookies, err := src.CookieString(ctx)
	if err != nil {
		return "", err
	}
	return ParseCookie(cookies, name)
}
