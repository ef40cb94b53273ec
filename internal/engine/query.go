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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/metrics"
	"github.com/davidwuwu001/coze-workflow-api/internal/render"
	"github.com/davidwuwu001/coze-workflow-api/internal/tracing"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// RunningText is the query result while the execution is still running.
const RunningText = "workflow is still running, query again later"

// Query fetches the latest run record of an async execution and maps its
// status to an outcome. Running and unrecognized statuses leave the
// execution pending so the caller may query again; only the first record
// returned is consulted.
func (e *Engine) Query(ctx context.Context, req QueryRequest) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending, hasPending := e.loadPending()
	workflowID := strings.TrimSpace(req.WorkflowID)
	executeID := strings.TrimSpace(req.ExecuteID)
	if executeID == "" && hasPending {
		executeID = pending.ExecuteID
	}
	if workflowID == "" && hasPending && pending.ExecuteID == executeID {
		workflowID = pending.WorkflowID
	}
	if err := e.validateQuery(workflowID, executeID); err != nil {
		return nil, err
	}

	input := fmt.Sprintf("async query (execute id: %s)", executeID)
	if hasPending && pending.ExecuteID == executeID && pending.Input != "" {
		input = pending.Input
	}

	e.setState(StateAsyncQuerying)
	inv := e.begin(ModeAsync, workflowID, input)
	inv.outcome.ExecuteID = executeID

	ctx, span := tracing.StartQuery(ctx, e.tracer, workflowID, executeID)
	defer span.End()
	inv.outcome.TraceID = span.TraceID()

	logger := cozelog.WithRunContext(e.logger, workflowID, executeID)
	inv.log("querying execution " + executeID)

	runs, err := e.client.GetRunHistory(ctx, workflowID, executeID)
	if err != nil {
		metrics.RecordAsyncQuery("error")
		span.RecordError(err)
		return inv.fail(ctx, err), nil
	}
	if pretty, ok := render.PrettyJSON(string(runs.Raw)); ok {
		inv.log("query response: " + pretty)
	}

	if len(runs.Records) == 0 {
		metrics.RecordAsyncQuery("empty")
		span.RecordError(cozeerrors.ErrNoResultData)
		e.setPending(nil)
		return inv.fail(ctx, cozeerrors.ErrNoResultData), nil
	}

	record := runs.Records[0]
	status := record.ExecuteStatus
	metrics.RecordAsyncQuery(status)
	span.SetAttributes(tracing.AttrStatus.String(status))
	inv.log("query succeeded, status: " + status)
	logger.Debug("run record received", slog.String("status", status))

	switch {
	case status == coze.StatusSuccess && !record.Output.IsZero():
		e.setPending(nil)
		span.Succeed()
		inv.log("workflow succeeded, final result received")
		return inv.succeed(ctx, render.Normalize(record.Output.String())), nil

	case record.Failed():
		msg := record.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		e.setPending(nil)
		err := &cozeerrors.WorkflowExecutionError{
			ExecuteID: executeID,
			Code:      int(record.ErrorCode),
			Message:   msg,
		}
		span.RecordError(err)
		return inv.fail(ctx, err), nil

	case status == coze.StatusRunning:
		inv.log("workflow is still running")
		return inv.stillPending(RunningText), nil

	default:
		inv.log("current status: " + status)
		return inv.stillPending("current execution status: " + status), nil
	}
}

func (e *Engine) validateQuery(workflowID, executeID string) error {
	if executeID == "" {
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeMissingExecuteID,
			Field:      "execute_id",
			Message:    "an execution id is required",
			Suggestion: "run a workflow in async mode first or pass the execute id",
		}
	}
	if workflowID == "" {
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeMissingWorkflowID,
			Field:      "workflow_id",
			Message:    "a workflow id is required to query an execution",
			Suggestion: "pass the workflow id that started the execution",
		}
	}
	return e.credentialError()
}

// stillPending ends a query without a terminal status.
func (inv *invocation) stillPending(text string) *Outcome {
	inv.outcome.State = StateAsyncPending
	inv.outcome.Result = text
	inv.outcome.Duration = time.Since(inv.started)
	inv.engine.setState(StateAsyncPending)
	return inv.outcome
}
