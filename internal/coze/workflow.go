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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// Remote execution statuses reported by run-history queries.
const (
	StatusRunning = "Running"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
	// StatusFail is the spelling used by some API versions.
	StatusFail = "Fail"
)

// AsyncRun is the accepted submission of an asynchronous run.
type AsyncRun struct {
	ExecuteID string
	DebugURL  string
	// Raw is the full response envelope.
	Raw json.RawMessage
}

// RunAsync submits a run without waiting for it to finish.
func (c *Client) RunAsync(ctx context.Context, req RunRequest) (*AsyncRun, error) {
	const op = "run"

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/v1/workflow/run", nil, req.body(true))
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}

	body, err := c.doJSON(op, httpReq)
	if err != nil {
		return nil, err
	}

	// The id has been returned both at the top level and under data
	executeID := gjson.GetBytes(body, "data.execute_id").String()
	if executeID == "" {
		executeID = gjson.GetBytes(body, "execute_id").String()
	}
	if executeID == "" {
		return nil, &cozeerrors.TransportError{Operation: op, Message: "no execute id returned"}
	}

	return &AsyncRun{
		ExecuteID: executeID,
		DebugURL:  gjson.GetBytes(body, "debug_url").String(),
		Raw:       body,
	}, nil
}

// RunRecord is the remote snapshot of one execution.
type RunRecord struct {
	ExecuteID     string  `json:"execute_id"`
	ExecuteStatus string  `json:"execute_status"`
	Output        Payload `json:"output"`
	ErrorCode     flexInt `json:"error_code"`
	ErrorMessage  string  `json:"error_message"`
	DebugURL      string  `json:"debug_url,omitempty"`
	CreateTime    flexInt `json:"create_time,omitempty"`
	UpdateTime    flexInt `json:"update_time,omitempty"`
}

// Failed reports whether the status denotes a failed execution.
func (r RunRecord) Failed() bool {
	return r.ExecuteStatus == StatusFailed || r.ExecuteStatus == StatusFail
}

// RunHistory is the result of a run-history query.
type RunHistory struct {
	Records []RunRecord
	// Raw is the full response envelope.
	Raw json.RawMessage
}

// GetRunHistory fetches the run records of an async execution.
func (c *Client) GetRunHistory(ctx context.Context, workflowID, executeID string) (*RunHistory, error) {
	const op = "run_histories"

	path := fmt.Sprintf("/v1/workflows/%s/run_histories/%s", url.PathEscape(workflowID), url.PathEscape(executeID))
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}

	body, err := c.doJSON(op, httpReq)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []RunRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Message: "failed to decode run history", Cause: err}
	}

	return &RunHistory{Records: envelope.Data, Raw: body}, nil
}

// Workflow describes one invocable workflow.
type Workflow struct {
	WorkflowID    string  `json:"workflow_id"`
	WorkflowName  string  `json:"workflow_name"`
	Description   string  `json:"description"`
	IconURL       string  `json:"icon_url,omitempty"`
	AppID         string  `json:"app_id,omitempty"`
	PublishStatus string  `json:"publish_status,omitempty"`
	CreateTime    flexInt `json:"create_time,omitempty"`
	UpdateTime    flexInt `json:"update_time,omitempty"`
}

// Created returns the creation time as Unix seconds, or zero.
func (w Workflow) Created() int64 { return int64(w.CreateTime) }

// Updated returns the update time as Unix seconds, or zero.
func (w Workflow) Updated() int64 { return int64(w.UpdateTime) }

// ListWorkflowsRequest selects a directory page.
type ListWorkflowsRequest struct {
	WorkspaceID   string
	PageNum       int
	PageSize      int
	PublishStatus string
}

// WorkflowPage is one page of the workflow directory.
type WorkflowPage struct {
	Items   []Workflow `json:"items"`
	HasMore bool       `json:"has_more"`
	Total   int        `json:"total,omitempty"`
}

// ListWorkflows fetches one directory page.
func (c *Client) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*WorkflowPage, error) {
	const op = "list_workflows"

	query := url.Values{}
	query.Set("workspace_id", req.WorkspaceID)
	query.Set("page_num", strconv.Itoa(req.PageNum))
	query.Set("page_size", strconv.Itoa(req.PageSize))
	query.Set("publish_status", req.PublishStatus)

	httpReq, err := c.newRequest(ctx, http.MethodGet, "/v1/workflows", query, nil)
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}

	body, err := c.doJSON(op, httpReq)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data WorkflowPage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Message: "failed to decode workflow list", Cause: err}
	}
	if envelope.Data.Items == nil {
		envelope.Data.Items = []Workflow{}
	}

	return &envelope.Data, nil
}
