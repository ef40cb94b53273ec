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

package run

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/format"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	"github.com/davidwuwu001/coze-workflow-api/internal/jq"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
	"github.com/davidwuwu001/coze-workflow-api/internal/render"
)

// RunResponse is the JSON output of run and query.
type RunResponse struct {
	output.JSONResponse
	State      string             `json:"state"`
	Mode       string             `json:"mode"`
	WorkflowID string             `json:"workflow_id"`
	ExecuteID  string             `json:"execute_id,omitempty"`
	Result     string             `json:"result,omitempty"`
	Structured bool               `json:"structured"`
	Links      []string           `json:"links,omitempty"`
	HistoryID  string             `json:"history_id,omitempty"`
	TraceID    string             `json:"trace_id,omitempty"`
	DurationMS int64              `json:"duration_ms"`
	Progress   []string           `json:"progress,omitempty"`
	Errors     []output.JSONError `json:"errors,omitempty"`
}

// displayOptions controls how an outcome is printed.
type displayOptions struct {
	command  string
	query    string
	raw      bool
	markdown bool
	verbose  bool
}

// present writes the outcome and returns the error the command should
// exit with. Failed outcomes are reported here, so the returned error is
// marked as already reported.
func present(ctx context.Context, w io.Writer, out *engine.Outcome, opts displayOptions) error {
	result := out.Result
	if out.State == engine.StateSucceeded && opts.query != "" {
		filtered, err := jq.NewExecutor(0, 0).Apply(ctx, opts.query, result)
		if err != nil {
			return shared.NewInvalidInputError("--query failed", err)
		}
		result = filtered
	}

	doc := render.Format(result)
	if opts.raw || opts.query != "" {
		doc = render.Document{Text: result, Segments: render.Split(result)}
	}

	if shared.GetJSON() {
		resp := RunResponse{
			JSONResponse: output.NewResponse(opts.command, out.State != engine.StateFailed),
			State:        out.State.String(),
			Mode:         string(out.Mode),
			WorkflowID:   out.WorkflowID,
			ExecuteID:    out.ExecuteID,
			Result:       doc.Text,
			Structured:   doc.Structured,
			Links:        doc.Links(),
			TraceID:      out.TraceID,
			DurationMS:   out.Duration.Milliseconds(),
		}
		if out.Record != nil {
			resp.HistoryID = out.Record.ID
		}
		if opts.verbose {
			resp.Progress = out.Progress
		}
		if out.Err != nil {
			resp.Result = ""
			resp.Errors = []output.JSONError{shared.JSONErrorFor(out.Err)}
		}
		if err := output.EmitJSON(w, resp); err != nil {
			return err
		}
		if out.Err != nil {
			return shared.Reported(out.Err)
		}
		return nil
	}

	if out.Err != nil {
		return out.Err
	}

	tty := format.IsTerminal(w) && !opts.raw
	text := format.Result(doc, format.Options{TTY: tty, Markdown: opts.markdown})
	fmt.Fprint(w, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}

	if links := format.Links(doc, tty); links != "" && !opts.raw {
		fmt.Fprintln(w)
		fmt.Fprintln(w, shared.Header.Render("Links"))
		fmt.Fprint(w, links)
	}

	if out.State == engine.StateAsyncPending && !shared.GetQuiet() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, shared.Muted.Render("Run 'cozeflow query' to fetch the result."))
	}
	return nil
}
