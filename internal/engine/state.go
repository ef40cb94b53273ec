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
	"fmt"
	"strings"

	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// Mode selects how a workflow run is submitted.
type Mode string

const (
	// ModeStream consumes the run as a server-sent event stream.
	ModeStream Mode = "stream"
	// ModeAsync submits the run and returns an execution id to query later.
	ModeAsync Mode = "async"
)

// ParseMode resolves a mode name. Empty selects ModeStream.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStream:
		return ModeStream, nil
	case ModeAsync:
		return ModeAsync, nil
	default:
		return "", &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeInvalidMode,
			Field:      "mode",
			Message:    fmt.Sprintf("unknown execution mode %q", s),
			Suggestion: "use stream or async",
		}
	}
}

// State is the position of the engine in the invocation state machine.
//
//	Idle -> Submitting -> {Streaming | AsyncPending} -> {Succeeded | Failed}
//	AsyncPending -> AsyncQuerying -> {AsyncPending | Succeeded | Failed}
type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateStreaming
	StateAsyncPending
	StateAsyncQuerying
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateSubmitting:    "submitting",
	StateStreaming:     "streaming",
	StateAsyncPending:  "async_pending",
	StateAsyncQuerying: "async_querying",
	StateSucceeded:     "succeeded",
	StateFailed:        "failed",
}

// String returns the state name.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the state ends an invocation.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
