package httpclient

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 60*time.Second {
		t.Errorf("expected timeout 60s, got %v", cfg.Timeout)
	}

	if cfg.RateLimit != 0 {
		t.Errorf("expected no rate limit by default, got %v", cfg.RateLimit)
	}

	if cfg.UserAgent == "" {
		t.Error("expected non-empty user agent")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr bool
		errText   string
	}{
		{
			name:      "valid config",
			cfg:       Config{Timeout: 10 * time.Second, UserAgent: "test-agent/1.0"},
			expectErr: false,
		},
		{
			name:      "zero timeout allowed for streaming",
			cfg:       Config{Timeout: 0, UserAgent: "test-agent/1.0"},
			expectErr: false,
		},
		{
			name:      "negative timeout",
			cfg:       Config{Timeout: -1 * time.Second, UserAgent: "test-agent/1.0"},
			expectErr: true,
			errText:   "timeout must be >= 0",
		},
		{
			name:      "negative header timeout",
			cfg:       Config{HeaderTimeout: -1, UserAgent: "test-agent/1.0"},
			expectErr: true,
			errText:   "header_timeout must be >= 0",
		},
		{
			name:      "negative rate limit",
			cfg:       Config{RateLimit: -2, UserAgent: "test-agent/1.0"},
			expectErr: true,
			errText:   "rate_limit must be >= 0",
		},
		{
			name:      "rate limit without burst",
			cfg:       Config{RateLimit: 2, RateBurst: 0, UserAgent: "test-agent/1.0"},
			expectErr: true,
			errText:   "rate_burst must be >= 1",
		},
		{
			name:      "empty user agent",
			cfg:       Config{Timeout: 10 * time.Second},
			expectErr: true,
			errText:   "user_agent is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
