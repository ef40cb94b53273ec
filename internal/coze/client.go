// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/davidwuwu001/coze-workflow-api/pkg/httpclient"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// DefaultBaseURL is the public Coze API endpoint.
const DefaultBaseURL = "https://api.coze.cn"

// maxErrorBody bounds how much of an error body is kept in messages.
const maxErrorBody = 512

// Client is a client for the Coze workflow API.
type Client struct {
	baseURL    string
	token      string
	httpConfig httpclient.Config
	transport  http.RoundTripper
	logger     *slog.Logger

	// httpClient serves request/response calls and applies the overall timeout.
	httpClient *http.Client
	// streamClient has no overall timeout since stream bodies stay open.
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimSpace(baseURL))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base URL %q", baseURL)
		}
		c.baseURL = strings.TrimRight(u.String(), "/")
		return nil
	}
}

// WithToken sets the Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithHTTPConfig sets the transport configuration.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(c *Client) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid http config: %w", err)
		}
		c.httpConfig = cfg
		return nil
	}
}

// WithTransport replaces the httpclient transport stack. Authentication is
// still layered on top.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.transport = rt
		return nil
	}
}

// WithLogger sets the logger for client diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// New creates a new Coze API client with the given options.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpConfig: httpclient.DefaultConfig(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	base := c.transport
	if base == nil {
		cfg := c.httpConfig
		if cfg.Logger == nil {
			cfg.Logger = c.logger
		}
		base = httpclient.NewTransport(cfg)
	}

	auth := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.token,
			TokenType:   "Bearer",
		}),
		Base: base,
	}

	c.httpClient = &http.Client{Transport: auth, Timeout: c.httpConfig.Timeout}
	c.streamClient = &http.Client{Transport: auth}

	return c, nil
}

// BaseURL returns the API base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the configured credential.
func (c *Client) Token() string {
	return c.token
}

// HasCredential reports whether a non-blank token is configured.
func (c *Client) HasCredential() bool {
	return strings.TrimSpace(c.token) != ""
}

// newRequest builds a request against the API. body, when non-nil, is
// encoded as JSON.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON sends req and returns the raw body of a successful envelope.
func (c *Client) doJSON(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &cozeerrors.TransportError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Cause:      err,
		}
	}

	if resp.StatusCode >= 400 {
		return nil, statusError(op, resp, body)
	}

	if !gjson.ValidBytes(body) {
		return nil, &cozeerrors.TransportError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    "invalid JSON response: " + truncate(string(body)),
		}
	}

	if code := gjson.GetBytes(body, "code"); code.Exists() && code.Int() != 0 {
		return nil, &cozeerrors.TransportError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Code:       int(code.Int()),
			Message:    gjson.GetBytes(body, "msg").String(),
		}
	}

	return body, nil
}

// statusError converts a response with status >= 400 into a TransportError,
// preferring the envelope's msg and code when the body is JSON.
func statusError(op string, resp *http.Response, body []byte) error {
	terr := &cozeerrors.TransportError{Operation: op, StatusCode: resp.StatusCode}

	if gjson.ValidBytes(body) {
		terr.Code = int(gjson.GetBytes(body, "code").Int())
		terr.Message = gjson.GetBytes(body, "msg").String()
	} else if text := strings.TrimSpace(string(body)); text != "" {
		terr.Message = truncate(text)
	}

	if terr.Message == "" {
		terr.Message = http.StatusText(resp.StatusCode)
	}
	return terr
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
