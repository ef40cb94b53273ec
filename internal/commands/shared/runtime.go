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

package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/davidwuwu001/coze-workflow-api/internal/config"
	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	"github.com/davidwuwu001/coze-workflow-api/internal/directory"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	"github.com/davidwuwu001/coze-workflow-api/internal/history"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/metrics"
	"github.com/davidwuwu001/coze-workflow-api/internal/secrets"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage/file"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage/memory"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage/sqlite"
	"github.com/davidwuwu001/coze-workflow-api/internal/tracing"
	"github.com/davidwuwu001/coze-workflow-api/pkg/httpclient"
)

// Runtime holds the per-invocation collaborators every command needs.
// Close must be called when the command finishes.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *coze.Client
	Settings *config.SettingsStore
	History  *history.Store

	// TokenSource names where the API token came from ("" when missing).
	TokenSource string

	blobs  storage.BlobStore
	tracer *tracing.Provider
}

// NewRuntime loads configuration from --config and wires the client,
// settings, history and tracing.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: newLogger(cfg)}

	token, source := cfg.Token, "env:COZE_API_TOKEN"
	if token == "" {
		token, source, err = NewSecretResolver().Token(ctx)
		if err != nil {
			rt.Logger.Warn("token lookup failed", cozelog.Error(err))
			token, source = "", ""
		}
	}
	rt.TokenSource = source

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.API.Timeout
	httpCfg.RateLimit = cfg.API.RateLimit
	if cfg.API.UserAgent != "" {
		httpCfg.UserAgent = cfg.API.UserAgent
	}
	httpCfg.Logger = rt.Logger

	rt.Client, err = coze.New(
		coze.WithBaseURL(cfg.API.BaseURL),
		coze.WithToken(token),
		coze.WithHTTPConfig(httpCfg),
		coze.WithLogger(rt.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	settingsPath, err := config.SettingsPath()
	if err != nil {
		return nil, err
	}
	if rt.Settings, err = config.NewSettingsStore(settingsPath); err != nil {
		return nil, err
	}

	if rt.blobs, err = openBlobs(cfg); err != nil {
		return nil, err
	}
	rt.History = history.New(rt.blobs,
		history.WithLogger(rt.Logger),
		history.WithLimit(cfg.History.Limit),
	)

	version, _, _ := GetVersion()
	cfg.Tracing.ServiceVersion = version
	if rt.tracer, err = tracing.Setup(ctx, cfg.Tracing); err != nil {
		_ = rt.blobs.Close()
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	return rt, nil
}

// NewSecretResolver returns the resolver used for the API token: the
// environment first, then the system keychain when one is reachable.
func NewSecretResolver() *secrets.Resolver {
	return secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend())
}

// Engine returns an execution engine bound to the runtime's client,
// history and settings.
func (r *Runtime) Engine(progress engine.ProgressFunc) *engine.Engine {
	return engine.New(r.Client,
		engine.WithHistory(r.History),
		engine.WithSettings(r.Settings),
		engine.WithLogger(r.Logger),
		engine.WithTracer(r.tracer.Tracer("cozeflow/engine")),
		engine.WithProgress(progress),
	)
}

// Directory returns a workflow directory client.
func (r *Runtime) Directory() *directory.Directory {
	return directory.New(r.Client,
		directory.WithSettings(r.Settings),
		directory.WithLogger(r.Logger),
		directory.WithTracer(r.tracer.Tracer("cozeflow/directory")),
	)
}

// Close flushes spans, closes the history backend and writes metrics when
// --metrics-out is set.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.tracer != nil {
		if err := r.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.blobs != nil {
		if err := r.blobs.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if path := GetMetricsOut(); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openBlobs(cfg *config.Config) (storage.BlobStore, error) {
	backend, err := storage.ParseBackend(cfg.History.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case storage.BackendMemory:
		return memory.New(), nil
	case storage.BackendSQLite:
		path := cfg.HistoryPath()
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		return sqlite.New(sqlite.Config{Path: path, WAL: true})
	default:
		return file.New(cfg.HistoryPath())
	}
}

// newLogger applies config file settings unless the environment already
// chose a level or format, then the --verbose and --quiet flags.
func newLogger(cfg *config.Config) *slog.Logger {
	lc := cozelog.FromEnv()
	if os.Getenv("COZEFLOW_DEBUG") == "" && os.Getenv("COZEFLOW_LOG_LEVEL") == "" && os.Getenv("LOG_LEVEL") == "" {
		lc.Level = cfg.Log.Level
	}
	if os.Getenv("LOG_FORMAT") == "" && cfg.Log.Format != "" {
		lc.Format = cozelog.Format(cfg.Log.Format)
	}
	switch {
	case GetVerbose():
		lc.Level = "debug"
	case GetQuiet():
		lc.Level = "error"
	}
	return cozelog.New(lc)
}
