package httpclient

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitTransport delays requests so that no more than limit requests
// per second leave the process.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func newRateLimitTransport(base http.RoundTripper, limit float64, burst int) *rateLimitTransport {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// RoundTrip implements http.RoundTripper. It returns the context error if
// the request is cancelled while waiting for a token.
func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
