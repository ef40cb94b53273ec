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

// Package engine drives a single workflow invocation through stream or
// async mode to a terminal outcome, recording every terminal outcome in
// the execution history.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	"github.com/davidwuwu001/coze-workflow-api/internal/history"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// Settings keys written by the engine.
const (
	KeyLastWorkflowID        = "last_workflow_id"
	KeyLastExecuteID         = "last_execute_id"
	KeyLastExecuteWorkflowID = "last_execute_workflow_id"
	KeyLastExecuteInput      = "last_execute_input"
)

// Client is the subset of the Coze API used by the engine.
type Client interface {
	BaseURL() string
	Token() string
	StreamRun(ctx context.Context, req coze.RunRequest) (<-chan coze.StreamEvent, error)
	RunAsync(ctx context.Context, req coze.RunRequest) (*coze.AsyncRun, error)
	GetRunHistory(ctx context.Context, workflowID, executeID string) (*coze.RunHistory, error)
}

// History records terminal outcomes.
type History interface {
	Append(ctx context.Context, e history.Entry) history.Record
}

// Settings is the key/value store for values remembered between runs.
type Settings interface {
	Get(key string) string
	Set(key, value string) error
}

// ProgressFunc receives progress log lines as they are produced.
type ProgressFunc func(line string)

// Request describes one invocation.
type Request struct {
	WorkflowID string
	Parameters []parameter.Parameter
	Mode       Mode
}

// QueryRequest identifies an async execution. Blank fields fall back to
// the pending execution.
type QueryRequest struct {
	WorkflowID string
	ExecuteID  string
}

// Pending is an async execution awaiting a query.
type Pending struct {
	WorkflowID string
	ExecuteID  string
	// Input is the history encoding of the submitted parameters.
	Input string
}

// Outcome is the result of Execute or Query.
type Outcome struct {
	State      State
	Mode       Mode
	WorkflowID string
	ExecuteID  string

	// Result is the terminal payload on success, or informational text
	// while an async execution is pending.
	Result string

	// Err is the failure cause when State is StateFailed.
	Err error

	// Record is the history record appended for a terminal outcome.
	Record *history.Record

	// Progress is the ordered progress log of the invocation.
	Progress []string

	Duration time.Duration
	TraceID  string
}

// Terminal reports whether the invocation has ended.
func (o *Outcome) Terminal() bool {
	return o.State.Terminal()
}

// Message returns the caller-facing failure message, or "".
func (o *Outcome) Message() string {
	return cozeerrors.Message(o.Err)
}

// Engine runs workflow invocations. Invocations on one engine are
// serialized.
type Engine struct {
	client   Client
	history  History
	settings Settings
	logger   *slog.Logger
	tracer   trace.Tracer
	progress ProgressFunc

	mu      sync.Mutex
	state   atomic.Int32
	pending *Pending
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets where terminal outcomes are recorded.
func WithHistory(h History) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithSettings sets the store for remembered ids.
func WithSettings(s Settings) Option {
	return func(e *Engine) {
		if s != nil {
			e.settings = s
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for execution spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithProgress registers a callback for live progress lines.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// New creates an engine bound to client.
func New(client Client, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		settings: nopSettings{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("cozeflow/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = cozelog.WithComponent(e.logger, "engine")
	return e
}

// State returns the current state of the engine.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	prev := State(e.state.Swap(int32(s)))
	if prev != s {
		cozelog.Trace(e.logger, "state transition",
			slog.String("from", prev.String()),
			slog.String("to", s.String()))
	}
}

// Pending returns the async execution awaiting a query, if any. An
// execution submitted by an earlier process is recovered from settings.
func (e *Engine) Pending() (Pending, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadPending()
}

func (e *Engine) loadPending() (Pending, bool) {
	if e.pending != nil {
		return *e.pending, true
	}
	p := Pending{
		WorkflowID: e.settings.Get(KeyLastExecuteWorkflowID),
		ExecuteID:  e.settings.Get(KeyLastExecuteID),
		Input:      e.settings.Get(KeyLastExecuteInput),
	}
	if p.ExecuteID == "" {
		return Pending{}, false
	}
	return p, true
}

func (e *Engine) setPending(p *Pending) {
	e.pending = p
	values := map[string]string{
		KeyLastExecuteID:         "",
		KeyLastExecuteWorkflowID: "",
		KeyLastExecuteInput:      "",
	}
	if p != nil {
		values[KeyLastExecuteID] = p.ExecuteID
		values[KeyLastExecuteWorkflowID] = p.WorkflowID
		values[KeyLastExecuteInput] = p.Input
	}
	for _, key := range []string{KeyLastExecuteID, KeyLastExecuteWorkflowID, KeyLastExecuteInput} {
		e.remember(key, values[key])
	}
}

func (e *Engine) remember(key, value string) {
	if err := e.settings.Set(key, value); err != nil {
		e.logger.Warn("failed to save setting", slog.String("key", key), cozelog.Error(err))
	}
}

// invocation accumulates the outcome of one Execute or Query call.
type invocation struct {
	engine  *Engine
	outcome *Outcome
	input   string
	started time.Time
}

func (e *Engine) begin(mode Mode, workflowID, input string) *invocation {
	return &invocation{
		engine:  e,
		outcome: &Outcome{Mode: mode, WorkflowID: workflowID},
		input:   input,
		started: time.Now(),
	}
}

// log appends a line to the progress log.
func (inv *invocation) log(line string) {
	inv.outcome.Progress = append(inv.outcome.Progress, line)
	inv.engine.logger.Debug("progress", slog.String(cozelog.EventKey, line))
	if inv.engine.progress != nil {
		inv.engine.progress(line)
	}
}

// succeed ends the invocation successfully and records it.
func (inv *invocation) succeed(ctx context.Context, result string) *Outcome {
	inv.outcome.State = StateSucceeded
	inv.outcome.Result = result
	inv.finish(ctx, history.Entry{Input: inv.input, Result: result, Success: true})
	return inv.outcome
}

// fail ends the invocation with err and records it.
func (inv *invocation) fail(ctx context.Context, err error) *Outcome {
	msg := cozeerrors.Message(err)
	if strings.TrimSpace(msg) == "" {
		msg = "unknown error"
	}
	inv.outcome.State = StateFailed
	inv.outcome.Err = err
	inv.log("execution failed: " + msg)
	inv.engine.logger.Warn("workflow execution failed",
		slog.String(cozelog.WorkflowIDKey, inv.outcome.WorkflowID),
		slog.String(cozelog.ModeKey, string(inv.outcome.Mode)),
		slog.String("error_type", cozeerrors.Type(err)),
		cozelog.Error(err))
	inv.finish(ctx, history.Entry{Input: inv.input, Success: false, Error: msg})
	return inv.outcome
}

func (inv *invocation) finish(ctx context.Context, entry history.Entry) {
	inv.outcome.Duration = time.Since(inv.started)
	inv.engine.setState(inv.outcome.State)
	if inv.engine.history == nil {
		return
	}
	// History is written even when the caller has given up on the run
	record := inv.engine.history.Append(context.WithoutCancel(ctx), entry)
	inv.outcome.Record = &record
}

// credentialError returns a validation error when no token is configured.
func (e *Engine) credentialError() error {
	if strings.TrimSpace(e.client.Token()) != "" {
		return nil
	}
	return &cozeerrors.ValidationError{
		Code:       cozeerrors.CodeInvalidCredential,
		Field:      "token",
		Message:    "an API token is required",
		Suggestion: "set COZE_API_TOKEN or run 'cozeflow token set'",
	}
}

type nopSettings struct{}

func (nopSettings) Get(string) string        { return "" }
func (nopSettings) Set(string, string) error { return nil }
