package apiview

import (
	"context"
	"net"
	"net/url"
	"strings"
)

// OriginLimiter spaces out requests to the same API origin.
type OriginLimiter interface {
	// Wait blocks until a request to origin may be sent or ctx is done.
	Wait(ctx context.Context, origin string) error
}

// Origin returns the scheme and host of rawURL in the form
// "scheme://host[:port]", lowercased and without a default port.
// Returns an empty string if rawURL is not absolute.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host
}
