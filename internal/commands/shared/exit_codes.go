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
	"fmt"
	"io"
	"os"

	"github.com/davidwuwu001/coze-workflow-api/internal/output"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// Exit codes for cozeflow commands
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitInvalidInput    = 2
	ExitTransportError  = 3
	ExitNotFound        = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error

	// Reported marks errors whose output the command already wrote.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Message, cozeerrors.Message(e.Cause))
	}
	if e.Cause != nil {
		return cozeerrors.Message(e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for workflow execution failures
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for bad flags, arguments or parameters
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewTransportError creates an error for failed API exchanges
func NewTransportError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitTransportError, Message: msg, Cause: cause}
}

// NewNotFoundError creates an error for unknown history records or ids
func NewNotFoundError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitNotFound, Message: msg, Cause: cause}
}

// Reported wraps err as an ExitError whose output has already been
// written, keeping the exit code Classify would assign.
func Reported(err error) *ExitError {
	exitErr := Classify(err)
	return &ExitError{Code: exitErr.Code, Message: exitErr.Message, Cause: exitErr.Cause, Reported: true}
}

// Classify wraps err in an ExitError whose code follows the error type.
// ExitErrors pass through unchanged.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var (
		validationErr *cozeerrors.ValidationError
		configErr     *cozeerrors.ConfigError
		transportErr  *cozeerrors.TransportError
		directoryErr  *cozeerrors.DirectoryFetchError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &configErr):
		return &ExitError{Code: ExitInvalidInput, Cause: err}
	case errors.As(err, &transportErr), errors.As(err, &directoryErr):
		return &ExitError{Code: ExitTransportError, Cause: err}
	default:
		return &ExitError{Code: ExitExecutionFailed, Cause: err}
	}
}

// HandleExitError reports err on stderr (or as a JSON envelope on stdout
// under --json) and exits with the matching code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stdout, os.Stderr, "cozeflow", err))
}

// ReportError writes err in the active output mode and returns the exit
// code for it.
func ReportError(stdout, stderr io.Writer, command string, err error) int {
	exitErr := Classify(err)
	if exitErr.Reported {
		return exitErr.Code
	}

	f := output.DefaultFormatter(GetJSON())
	if GetJSON() {
		f.SetOutput(stdout)
	} else {
		f.SetOutput(stderr)
	}
	if je := JSONErrorFor(err); je.Message != "" || GetJSON() {
		_ = f.FormatError(command, []output.JSONError{je})
	}
	return exitErr.Code
}

// suggestionFor returns the remediation hint carried by a validation error.
func suggestionFor(err error) string {
	var validationErr *cozeerrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Suggestion
	}
	var configErr *cozeerrors.ConfigError
	if errors.As(err, &configErr) {
		return "check the config file passed with --config or $XDG_CONFIG_HOME/cozeflow/config.yaml"
	}
	return ""
}
