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

// Package config loads cozeflow configuration from config.yaml and the
// environment, and persists values remembered between runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/davidwuwu001/coze-workflow-api/internal/storage"
	"github.com/davidwuwu001/coze-workflow-api/internal/tracing"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// DefaultBaseURL is the Coze open API endpoint.
const DefaultBaseURL = "https://api.coze.cn"

// MaxHistoryLimit is the fixed cap on stored history records.
const MaxHistoryLimit = 100

// Config is the cozeflow configuration.
type Config struct {
	// API configures the remote endpoint.
	API APIConfig `yaml:"api"`

	// History configures where execution history is kept.
	History HistoryConfig `yaml:"history"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`

	// Tracing configures span export.
	Tracing tracing.Config `yaml:"tracing"`

	// Defaults holds command defaults.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Token is the API credential from COZE_API_TOKEN. Never read from or
	// written to the config file.
	Token string `yaml:"-"`
}

// APIConfig configures the Coze API client.
type APIConfig struct {
	// BaseURL is the API root. Default: https://api.coze.cn
	BaseURL string `yaml:"base_url"`

	// Timeout bounds non-streaming requests. Streaming requests have no
	// overall timeout. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64 `yaml:"rate_limit"`

	// UserAgent is the User-Agent header value.
	UserAgent string `yaml:"user_agent"`
}

// HistoryConfig configures the history store.
type HistoryConfig struct {
	// Backend is file, sqlite or memory. Default: file
	Backend string `yaml:"backend"`

	// Path is the directory (file) or database file (sqlite).
	// Default: under the XDG data directory.
	Path string `yaml:"path"`

	// Limit caps the stored records. Values above 100 are clamped.
	Limit int `yaml:"limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is trace, debug, info, warn or error. Default: warn
	Level string `yaml:"level"`

	// Format is text or json. Default: text
	Format string `yaml:"format"`
}

// DefaultsConfig holds command defaults.
type DefaultsConfig struct {
	// Mode is stream or async. Default: stream
	Mode string `yaml:"mode"`

	// PageSize is the directory page size. Default: 20
	PageSize int `yaml:"page_size"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   60 * time.Second,
			UserAgent: "cozeflow/1.0",
		},
		History: HistoryConfig{
			Backend: string(storage.BackendFile),
			Limit:   MaxHistoryLimit,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Tracing: tracing.DefaultConfig(),
		Defaults: DefaultsConfig{
			Mode:     "stream",
			PageSize: 20,
		},
	}
}

// Load reads configPath (if it exists), applies environment overrides and
// validates the result. An empty configPath selects the default location.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		if p, err := ConfigPath(); err == nil {
			configPath = p
		}
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &cozeerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &cozeerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// loadFromFile merges a YAML file over c.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaults.API.UserAgent
	}

	if c.History.Backend == "" {
		c.History.Backend = defaults.History.Backend
	}
	if c.History.Limit <= 0 || c.History.Limit > MaxHistoryLimit {
		c.History.Limit = MaxHistoryLimit
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = tracing.ExporterNone
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = defaults.Tracing.SampleRate
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
	if c.Tracing.BatchTimeout == 0 {
		c.Tracing.BatchTimeout = defaults.Tracing.BatchTimeout
	}

	if c.Defaults.Mode == "" {
		c.Defaults.Mode = defaults.Defaults.Mode
	}
	if c.Defaults.PageSize == 0 {
		c.Defaults.PageSize = defaults.Defaults.PageSize
	}
}

// loadFromEnv applies environment overrides.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("COZE_API_TOKEN"); val != "" {
		c.Token = strings.TrimSpace(val)
	}
	if val := os.Getenv("COZE_API_BASE_URL"); val != "" {
		c.API.BaseURL = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("COZEFLOW_API_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.API.Timeout = d
		}
	}
	if val := os.Getenv("COZEFLOW_RATE_LIMIT"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			c.API.RateLimit = rate
		}
	}
	if val := os.Getenv("COZEFLOW_HISTORY_BACKEND"); val != "" {
		c.History.Backend = val
	}
	if val := os.Getenv("COZEFLOW_HISTORY_PATH"); val != "" {
		c.History.Path = val
	}
	if val := os.Getenv("COZEFLOW_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" && c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = val
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("api.timeout must not be negative, got %v", c.API.Timeout))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("api.rate_limit must not be negative, got %v", c.API.RateLimit))
	}

	if _, err := storage.ParseBackend(c.History.Backend); err != nil {
		errs = append(errs, "history.backend: "+err.Error())
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, "tracing: "+err.Error())
	}

	if c.Defaults.Mode != "stream" && c.Defaults.Mode != "async" {
		errs = append(errs, fmt.Sprintf("defaults.mode must be stream or async, got %q", c.Defaults.Mode))
	}
	if c.Defaults.PageSize < 1 || c.Defaults.PageSize > 100 {
		errs = append(errs, fmt.Sprintf("defaults.page_size must be between 1 and 100, got %d", c.Defaults.PageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// HistoryPath returns the configured history location, or the default
// for the backend under the XDG data directory.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	backend, _ := storage.ParseBackend(c.History.Backend)
	if backend == storage.BackendSQLite {
		return filepath.Join(DataDir(), "history.db")
	}
	return filepath.Join(DataDir(), "history")
}
