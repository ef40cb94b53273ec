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

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/metrics"
	"github.com/davidwuwu001/coze-workflow-api/internal/render"
	"github.com/davidwuwu001/coze-workflow-api/internal/tracing"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
	"github.com/davidwuwu001/coze-workflow-api/pkg/httpclient"
	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// EmptyResultText is the stream result when the run produced no payload.
const EmptyResultText = "workflow completed but returned no result"

// Execute runs req to a terminal outcome (stream mode) or to the async
// pending state (async mode).
//
// Invalid input returns a *errors.ValidationError and no outcome; nothing
// is sent and nothing is recorded. Every other failure is reported through
// an Outcome in StateFailed and recorded in history.
func (e *Engine) Execute(ctx context.Context, req Request) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		e.setState(StateFailed)
		metrics.RecordExecution(string(req.Mode), metrics.OutcomeInvalid, 0)
		return nil, err
	}
	if err := e.validate(req); err != nil {
		e.setState(StateFailed)
		metrics.RecordExecution(string(mode), metrics.OutcomeInvalid, 0)
		return nil, err
	}

	workflowID := strings.TrimSpace(req.WorkflowID)
	e.remember(KeyLastWorkflowID, workflowID)
	e.setState(StateSubmitting)

	inv := e.begin(mode, workflowID, parameter.Input(req.Parameters))
	ctx, span := tracing.StartExecution(ctx, e.tracer, workflowID, string(mode))
	defer span.End()
	inv.outcome.TraceID = span.TraceID()

	params := parameter.Coerce(req.Parameters)
	e.logRequest(inv, mode, workflowID, req.Parameters, params)

	runReq := coze.RunRequest{WorkflowID: workflowID, Parameters: params}

	var out *Outcome
	if mode == ModeAsync {
		out = e.submitAsync(ctx, inv, runReq)
	} else {
		out = e.stream(ctx, inv, runReq)
	}

	outcome := metrics.OutcomeSuccess
	switch out.State {
	case StateFailed:
		outcome = metrics.OutcomeFailure
		span.RecordError(out.Err)
	case StateAsyncPending:
		outcome = metrics.OutcomePending
		span.SetAttributes(tracing.AttrExecuteID.String(out.ExecuteID))
	default:
		span.Succeed()
	}
	metrics.RecordExecution(string(mode), outcome, out.Duration)

	e.logger.Info("workflow execution finished",
		slog.String(cozelog.WorkflowIDKey, workflowID),
		slog.String(cozelog.ModeKey, string(mode)),
		slog.String("state", out.State.String()),
		slog.Int64(cozelog.DurationKey, out.Duration.Milliseconds()))
	return out, nil
}

func (e *Engine) validate(req Request) error {
	if err := parameter.Validate(req.Parameters); err != nil {
		return err
	}
	if strings.TrimSpace(req.WorkflowID) == "" {
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeMissingWorkflowID,
			Field:      "workflow_id",
			Message:    "a workflow id is required",
			Suggestion: "pass the workflow id or pick one with 'cozeflow workflows list'",
		}
	}
	return e.credentialError()
}

// logRequest writes the request summary to the progress log. The token is
// masked to its first 20 characters.
func (e *Engine) logRequest(inv *invocation, mode Mode, workflowID string, raw []parameter.Parameter, params *parameter.Map) {
	inv.log(fmt.Sprintf("calling workflow API (mode: %s)", mode))
	inv.log("base URL: " + e.client.BaseURL())
	inv.log("token: " + httpclient.MaskSecret(e.client.Token(), 20))
	inv.log("workflow id: " + workflowID)
	inv.log(fmt.Sprintf("parameter count: %d", len(raw)))
	for _, p := range raw {
		inv.log(fmt.Sprintf("%s: %s (%s)", p.Name, p.Value, p.Type))
	}
	encoded, err := json.MarshalIndent(coze.WireParameters(params), "", "  ")
	if err != nil {
		inv.log(fmt.Sprintf("parameters: <unencodable: %v>", err))
		return
	}
	inv.log("parameters: " + string(encoded))
}

// stream consumes a streamed run chunk by chunk. Data payloads accumulate
// newline-terminated; a completion payload replaces the accumulated text;
// an error chunk fails the run immediately.
func (e *Engine) stream(ctx context.Context, inv *invocation, req coze.RunRequest) *Outcome {
	// Cancelling on return releases the reader when we stop early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := e.client.StreamRun(ctx, req)
	if err != nil {
		return inv.fail(ctx, err)
	}
	e.setState(StateStreaming)

	var (
		result     strings.Builder
		hasContent bool
		chunks     int
	)

consume:
	for ev := range events {
		if ev.Err != nil {
			return inv.fail(ctx, ev.Err)
		}
		chunk := ev.Chunk
		chunks++
		inv.log("received chunk: " + chunk.String())
		metrics.RecordStreamChunk(string(chunk.Event))

		switch chunk.Kind() {
		case coze.ChunkCompletion:
			if p := chunk.Payload(); !p.IsZero() {
				result.Reset()
				result.WriteString(p.String())
				hasContent = true
			}
			inv.log("workflow run completed")
			break consume

		case coze.ChunkError:
			msg, code := chunk.ErrorDetail()
			if msg == "" {
				msg = "workflow execution failed"
			}
			return inv.fail(ctx, &cozeerrors.WorkflowExecutionError{Code: code, Message: msg})

		default:
			if p := chunk.Payload(); !p.IsZero() {
				result.WriteString(p.String())
				result.WriteString("\n")
				hasContent = true
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return inv.fail(ctx, &cozeerrors.TransportError{
			Operation: "stream_run",
			Message:   "stream interrupted: " + err.Error(),
			Cause:     err,
		})
	}

	text := EmptyResultText
	if hasContent {
		text = render.FixLinks(result.String())
	}
	inv.log(fmt.Sprintf("workflow succeeded after %d chunks", chunks))
	return inv.succeed(ctx, text)
}

// submitAsync submits an async run and leaves the engine pending on the
// returned execution id. Nothing is recorded until a query reaches a
// terminal status.
func (e *Engine) submitAsync(ctx context.Context, inv *invocation, req coze.RunRequest) *Outcome {
	run, err := e.client.RunAsync(ctx, req)
	if err != nil {
		return inv.fail(ctx, err)
	}

	if pretty, ok := render.PrettyJSON(string(run.Raw)); ok {
		inv.log("async run response: " + pretty)
	}
	inv.log("async workflow started, execute id: " + run.ExecuteID)

	e.setPending(&Pending{
		WorkflowID: req.WorkflowID,
		ExecuteID:  run.ExecuteID,
		Input:      inv.input,
	})

	out := inv.outcome
	out.State = StateAsyncPending
	out.ExecuteID = run.ExecuteID
	out.Result = fmt.Sprintf("async workflow started\nexecute id: %s\n\nQuery the execution to check its status and result.", run.ExecuteID)
	out.Duration = time.Since(inv.started)
	e.setState(StateAsyncPending)

	e.logger.Info("async workflow submitted",
		slog.String(cozelog.WorkflowIDKey, req.WorkflowID),
		slog.String(cozelog.ExecuteIDKey, run.ExecuteID))
	trace.SpanFromContext(ctx).AddEvent("submitted", trace.WithAttributes(tracing.AttrExecuteID.String(run.ExecuteID)))
	return out
}
