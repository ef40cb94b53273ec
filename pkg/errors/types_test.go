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

package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *cozeerrors.ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     cozeerrors.NewValidationError(cozeerrors.CodeIncompleteParameter, "parameters[1]", "name and value are required"),
			wantMsg: "validation failed on parameters[1]: name and value are required",
		},
		{
			name: "without field",
			err: &cozeerrors.ValidationError{
				Code:    cozeerrors.CodeEmptyParameterSet,
				Message: "at least one parameter is required",
			},
			wantMsg: "validation failed: at least one parameter is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *cozeerrors.TransportError
		wantMsg string
	}{
		{
			name: "http status with message and code",
			err: &cozeerrors.TransportError{
				Operation:  "stream_run",
				StatusCode: 401,
				Code:       4100,
				Message:    "authentication is invalid",
			},
			wantMsg: "stream_run request failed [HTTP 401]: authentication is invalid (code: 4100)",
		},
		{
			name: "network failure uses cause",
			err: &cozeerrors.TransportError{
				Operation: "run_histories",
				Cause:     errors.New("connection refused"),
			},
			wantMsg: "run_histories request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("TransportError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &cozeerrors.TransportError{Operation: "run", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	wrapped := fmt.Errorf("submit: %w", err)
	var transportErr *cozeerrors.TransportError
	if !errors.As(wrapped, &transportErr) {
		t.Fatal("errors.As should find TransportError through wrapping")
	}
	if transportErr.Operation != "run" {
		t.Errorf("Operation = %q, want run", transportErr.Operation)
	}
}

func TestWorkflowExecutionError_Error(t *testing.T) {
	err := &cozeerrors.WorkflowExecutionError{Message: "node timeout"}
	if got := err.Error(); got != "workflow execution failed: node timeout" {
		t.Errorf("unexpected message: %q", got)
	}

	err.ExecuteID = "7550"
	if got := err.Error(); !strings.Contains(got, "7550") {
		t.Errorf("message should contain execute id, got %q", got)
	}
}

func TestDirectoryFetchError_Error(t *testing.T) {
	err := &cozeerrors.DirectoryFetchError{StatusCode: 403, Code: 4101, Message: "no permission"}
	want := "failed to list workflows: HTTP error! status: 403 - no permission (code: 4101)"
	if got := err.Error(); got != want {
		t.Errorf("DirectoryFetchError.Error() = %q, want %q", got, want)
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &cozeerrors.PersistenceError{Operation: "append", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if got := err.Error(); got != "history append failed: disk full" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestErrorClassifier(t *testing.T) {
	tests := []struct {
		err      error
		wantType string
	}{
		{&cozeerrors.ValidationError{}, "validation"},
		{&cozeerrors.TransportError{}, "transport"},
		{&cozeerrors.WorkflowExecutionError{}, "workflow_execution"},
		{&cozeerrors.PersistenceError{}, "persistence"},
		{&cozeerrors.DirectoryFetchError{}, "directory"},
		{cozeerrors.ErrNoResultData, "no_result_data"},
		{errors.New("plain"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			if got := cozeerrors.Type(fmt.Errorf("wrapped: %w", tt.err)); got != tt.wantType {
				t.Errorf("Type() = %q, want %q", got, tt.wantType)
			}

			var classified cozeerrors.ErrorClassifier
			if errors.As(tt.err, &classified) && classified.IsRetryable() {
				t.Errorf("%s errors must not be retryable", tt.wantType)
			}
		})
	}
}
