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

package errors

import (
	"errors"
	"fmt"
)

// ValidationCode identifies which structural check rejected the input.
type ValidationCode string

const (
	// CodeEmptyParameterSet means no parameters were supplied.
	CodeEmptyParameterSet ValidationCode = "EmptyParameterSet"
	// CodeIncompleteParameter means a parameter has a blank name or value.
	CodeIncompleteParameter ValidationCode = "IncompleteParameter"
	// CodeMissingWorkflowID means the workflow identifier is blank.
	CodeMissingWorkflowID ValidationCode = "MissingWorkflowID"
	// CodeMissingExecuteID means an async query was requested without an execution id.
	CodeMissingExecuteID ValidationCode = "MissingExecuteID"
	// CodeInvalidMode means the execution mode is neither stream nor async.
	CodeInvalidMode ValidationCode = "InvalidMode"
	// CodeInvalidCredential means the API token is empty.
	CodeInvalidCredential ValidationCode = "InvalidCredential"
	// CodeInvalidWorkspaceID means the workspace id is empty, non-numeric or too short.
	CodeInvalidWorkspaceID ValidationCode = "InvalidWorkspaceId"
	// CodeInvalidPage means the page number is below 1.
	CodeInvalidPage ValidationCode = "InvalidPage"
	// CodeInvalidPageSize means the page size is outside [1, 100].
	CodeInvalidPageSize ValidationCode = "InvalidPageSize"
	// CodeInvalidPublishStatus means the publish status filter is not all, published or draft.
	CodeInvalidPublishStatus ValidationCode = "InvalidPublishStatus"
	// CodeInvalidPattern means a glob or filter expression does not parse.
	CodeInvalidPattern ValidationCode = "InvalidPattern"
)

// ErrNoResultData is returned when a run-history query yields no run record.
var ErrNoResultData = errors.New("no result data returned for execution")

// ValidationError represents bad caller input. It never reaches the network.
type ValidationError struct {
	// Code classifies the failed check.
	Code ValidationCode

	// Field identifies which input failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return "validation" }

// IsRetryable implements ErrorClassifier.
func (e *ValidationError) IsRetryable() bool { return false }

// NewValidationError builds a ValidationError for the given code.
func NewValidationError(code ValidationCode, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// TransportError represents a failed exchange with the remote API: a
// non-success HTTP status, a non-zero API code, a network failure or an
// undecodable body.
type TransportError struct {
	// Operation names the API call (e.g. "stream_run", "run_histories")
	Operation string

	// StatusCode is the HTTP status code (0 for network failures)
	StatusCode int

	// Code is the API-level error code from the response envelope
	Code int

	// Message is the remote or local error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s request failed", e.Operation)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	} else if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code: %d)", msg, e.Code)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *TransportError) ErrorType() string { return "transport" }

// IsRetryable implements ErrorClassifier. Calls are single-attempt.
func (e *TransportError) IsRetryable() bool { return false }

// WorkflowExecutionError represents a failure signalled by the remote side,
// either mid-stream or in a run record.
type WorkflowExecutionError struct {
	// ExecuteID is the async execution id, when known
	ExecuteID string

	// Code is the remote error code, when present
	Code int

	// Message is the remote error message or a generic fallback
	Message string
}

// Error implements the error interface.
func (e *WorkflowExecutionError) Error() string {
	if e.ExecuteID != "" {
		return fmt.Sprintf("workflow execution %s failed: %s", e.ExecuteID, e.Message)
	}
	return fmt.Sprintf("workflow execution failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *WorkflowExecutionError) ErrorType() string { return "workflow_execution" }

// IsRetryable implements ErrorClassifier.
func (e *WorkflowExecutionError) IsRetryable() bool { return false }

// PersistenceError represents a history read or write failure.
type PersistenceError struct {
	// Operation is the store operation (append, list, remove, clear)
	Operation string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *PersistenceError) ErrorType() string { return "persistence" }

// IsRetryable implements ErrorClassifier.
func (e *PersistenceError) IsRetryable() bool { return false }

// DirectoryFetchError represents a failed workflow directory listing.
type DirectoryFetchError struct {
	// StatusCode is the HTTP status code (0 for network failures)
	StatusCode int

	// Code is the API-level error code
	Code int

	// Message is the remote error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *DirectoryFetchError) Error() string {
	msg := "failed to list workflows"
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s: HTTP error! status: %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s - %s", msg, e.Message)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code: %d)", msg, e.Code)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DirectoryFetchError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *DirectoryFetchError) ErrorType() string { return "directory" }

// IsRetryable implements ErrorClassifier.
func (e *DirectoryFetchError) IsRetryable() bool { return false }

// ConfigError represents configuration problems.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "api.base_url")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
