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
	"errors"

	"github.com/davidwuwu001/coze-workflow-api/internal/output"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// Error codes for structured JSON output that are not validation codes.
const (
	ErrorCodeTransport         = "TransportError"
	ErrorCodeWorkflowExecution = "WorkflowExecutionError"
	ErrorCodeNoResultData      = "NoResultData"
	ErrorCodeDirectoryFetch    = "DirectoryFetchError"
	ErrorCodeConfig            = "ConfigError"
	ErrorCodeNotFound          = "NotFound"
	ErrorCodeInvalidInput      = "InvalidInput"
	ErrorCodeInternal          = "InternalError"
)

// ErrorCode returns the JSON error code for err. Validation errors use
// their validation code.
func ErrorCode(err error) string {
	var (
		validationErr *cozeerrors.ValidationError
		transportErr  *cozeerrors.TransportError
		execErr       *cozeerrors.WorkflowExecutionError
		directoryErr  *cozeerrors.DirectoryFetchError
		configErr     *cozeerrors.ConfigError
		exitErr       *ExitError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return string(validationErr.Code)
	case errors.Is(err, cozeerrors.ErrNoResultData):
		return ErrorCodeNoResultData
	case errors.As(err, &execErr):
		return ErrorCodeWorkflowExecution
	case errors.As(err, &directoryErr):
		return ErrorCodeDirectoryFetch
	case errors.As(err, &transportErr):
		return ErrorCodeTransport
	case errors.As(err, &configErr):
		return ErrorCodeConfig
	case errors.As(err, &exitErr) && exitErr.Code == ExitNotFound:
		return ErrorCodeNotFound
	case errors.As(err, &exitErr) && exitErr.Code == ExitInvalidInput:
		return ErrorCodeInvalidInput
	default:
		return ErrorCodeInternal
	}
}

// JSONErrorFor converts err into a structured JSON error.
func JSONErrorFor(err error) output.JSONError {
	je := output.JSONError{
		Code:       ErrorCode(err),
		Message:    Classify(err).Error(),
		Suggestion: suggestionFor(err),
	}

	var validationErr *cozeerrors.ValidationError
	if errors.As(err, &validationErr) {
		je.Field = validationErr.Field
	}
	var transportErr *cozeerrors.TransportError
	if errors.As(err, &transportErr) {
		je.StatusCode = transportErr.StatusCode
	}
	var directoryErr *cozeerrors.DirectoryFetchError
	if errors.As(err, &directoryErr) {
		je.StatusCode = directoryErr.StatusCode
	}
	return je
}
