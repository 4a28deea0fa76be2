// Package httputil provides HTTP client utilities with standard configurations.
package httputil

import (
	"net/http"
	"time"
)

const (
	// Transport configuration constants
	maxIdleConns        = 10
	maxIdleConnsPerHost = 2
	idleConnTimeout     = 30 * time.Second

	// userAgent is sent on every request; the listing site rejects empty agents.
	userAgent = "bestmovies/1.0 (+https://github.com/amaumene/bestmovies)"
)

// NewHTTPClient creates a new HTTP client with the specified timeout.
// A zero timeout means requests are never cut short by the client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
	}
}

// NewDefaultHTTPClient creates a client without a request timeout.
func NewDefaultHTTPClient() *http.Client {
	return NewHTTPClient(0)
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(clone)
}
