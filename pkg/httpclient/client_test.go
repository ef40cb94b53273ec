package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	client, err := New(cfg)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if client == nil {
		t.Fatal("expected non-nil client")
	}

	if client.Timeout != cfg.Timeout {
		t.Errorf("expected timeout %v, got %v", cfg.Timeout, client.Timeout)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAgent = ""

	client, err := New(cfg)

	if err == nil {
		t.Fatal("expected error for invalid config")
	}

	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestNew_SingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resp, err := client.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
}

func TestNew_SetsUserAgent(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "cozeflow-test/1.0"
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if receivedUserAgent != "cozeflow-test/1.0" {
		t.Errorf("expected User-Agent %q, got %q", "cozeflow-test/1.0", receivedUserAgent)
	}
}

func TestNewTransport_TLSConfiguration(t *testing.T) {
	rt := NewTransport(DefaultConfig())

	lt, ok := rt.(*loggingTransport)
	if !ok {
		t.Fatalf("expected *loggingTransport without rate limit, got %T", rt)
	}

	base, ok := lt.base.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport base, got %T", lt.base)
	}

	if base.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 minimum, got %x", base.TLSClientConfig.MinVersion)
	}

	if base.ResponseHeaderTimeout != 60*time.Second {
		t.Errorf("expected header timeout 60s, got %v", base.ResponseHeaderTimeout)
	}
}

func TestNewTransport_RateLimitLayer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 10
	cfg.RateBurst = 2

	rt := NewTransport(cfg)
	if _, ok := rt.(*rateLimitTransport); !ok {
		t.Fatalf("expected *rateLimitTransport as outer layer, got %T", rt)
	}
}

func TestNew_ZeroTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if client.Timeout != 0 {
		t.Errorf("expected no overall timeout, got %v", client.Timeout)
	}
}
