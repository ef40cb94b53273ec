package httpclient

import (
	"fmt"
	"log/slog"
	"time"
)

// Config configures the HTTP client with timeout, rate limit, and observability settings.
type Config struct {
	// Timeout is the total request timeout. Zero disables the overall
	// timeout, which streaming clients need. Must be >= 0.
	Timeout time.Duration

	// HeaderTimeout bounds the wait for response headers. Default: 60s.
	HeaderTimeout time.Duration

	// RateLimit is the maximum number of requests per second (0 = unlimited).
	RateLimit float64

	// RateBurst is the token bucket size when RateLimit > 0. Default: 1.
	RateBurst int

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:       60 * time.Second,
		HeaderTimeout: 60 * time.Second,
		RateBurst:     1,
		UserAgent:     "cozeflow/1.0",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.HeaderTimeout < 0 {
		return fmt.Errorf("header_timeout must be >= 0, got %v", c.HeaderTimeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %v", c.RateLimit)
	}

	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be >= 1 when rate_limit > 0, got %d", c.RateBurst)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	return nil
}
