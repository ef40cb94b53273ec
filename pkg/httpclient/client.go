package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// New creates a new HTTP client with the given configuration.
// The client includes:
//   - Request logging with sanitized URLs
//   - User-Agent header injection
//   - Correlation ID propagation
//   - Client-side rate limiting (when configured)
//   - TLS 1.2 minimum, TLS 1.3 preferred
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: NewTransport(cfg),
		Timeout:   cfg.Timeout,
	}, nil
}

// NewTransport builds the layered round tripper without wrapping it in a
// client, so callers can add their own outer layers (e.g. authentication).
// cfg is assumed to be valid.
func NewTransport(cfg Config) http.RoundTripper {
	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.HeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Layer 1: logging, user agent and correlation id
	var rt http.RoundTripper = newLoggingTransport(baseTransport, cfg.UserAgent, logger)

	// Layer 2: rate limiting, so waiting time is not counted as request time
	if cfg.RateLimit > 0 {
		rt = newRateLimitTransport(rt, cfg.RateLimit, cfg.RateBurst)
	}

	return rt
}
