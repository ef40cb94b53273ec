// Package httpclient provides the HTTP client factory used for every call to
// the workflow API.
//
// The client composes transport layers on top of a pooled, TLS 1.2+ base:
//   - Request logging with sanitized URLs (sensitive params redacted)
//   - User-Agent header injection
//   - Correlation ID propagation from the active trace span
//   - Optional client-side rate limiting
//
// Each request is attempted exactly once. There is no retry layer.
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "cozeflow/1.0"
//	cfg.RateLimit = 5
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
// # Timeouts
//
// Config.Timeout bounds the whole exchange including reading the body.
// Streaming callers set it to zero and rely on ResponseHeaderTimeout plus
// their own context, since a stream body may stay open for minutes.
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests (2xx status)
//   - Warn level: failed requests (4xx/5xx status, errors)
//   - Fields: method, url (sanitized), status, duration_ms, error
//
// Authorization headers are never logged.
package httpclient
