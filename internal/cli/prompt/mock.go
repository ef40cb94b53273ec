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

package prompt

import (
	"context"
	"fmt"
)

// MockPrompter implements Prompter with scripted responses for testing.
// Responses are consumed in order; each must match the prompt's kind
// (string for PromptString, PromptSelect and Password, bool for Confirm)
// or be an error to return.
type MockPrompter struct {
	responses    []interface{}
	currentIndex int
	interactive  bool
	callLog      []string
}

// NewMockPrompter creates a new mock prompter with pre-scripted responses.
func NewMockPrompter(interactive bool, responses ...interface{}) *MockPrompter {
	return &MockPrompter{
		responses:   responses,
		interactive: interactive,
	}
}

func (mp *MockPrompter) next(call string) (interface{}, bool) {
	mp.callLog = append(mp.callLog, call)
	if mp.currentIndex >= len(mp.responses) {
		return nil, false
	}
	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++
	return resp, true
}

func (mp *MockPrompter) nextString(call, def string) (string, error) {
	if !mp.interactive {
		return "", ErrNonInteractive
	}
	resp, ok := mp.next(call)
	if !ok {
		return def, nil
	}
	switch v := resp.(type) {
	case string:
		return v, nil
	case error:
		return "", v
	default:
		return "", fmt.Errorf("mock response %d is not a string", mp.currentIndex-1)
	}
}

// PromptString returns the next string response. The validator is not run;
// callers re-validate answers themselves.
func (mp *MockPrompter) PromptString(ctx context.Context, message, def string, validate func(string) error) (string, error) {
	return mp.nextString(fmt.Sprintf("PromptString(%s)", message), def)
}

// PromptSelect returns the next string response.
func (mp *MockPrompter) PromptSelect(ctx context.Context, message string, options []string, def string) (string, error) {
	return mp.nextString(fmt.Sprintf("PromptSelect(%s)", message), def)
}

// Password returns the next string response.
func (mp *MockPrompter) Password(ctx context.Context, message string) (string, error) {
	return mp.nextString(fmt.Sprintf("Password(%s)", message), "")
}

// Confirm returns the next boolean response.
func (mp *MockPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if !mp.interactive {
		return false, ErrNonInteractive
	}
	resp, ok := mp.next(fmt.Sprintf("Confirm(%s)", message))
	if !ok {
		return def, nil
	}
	switch v := resp.(type) {
	case bool:
		return v, nil
	case error:
		return false, v
	default:
		return false, fmt.Errorf("mock response %d is not a bool", mp.currentIndex-1)
	}
}

func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// CallLog returns the prompts issued so far.
func (mp *MockPrompter) CallLog() []string {
	return mp.callLog
}

// Remaining returns the number of unconsumed responses.
func (mp *MockPrompter) Remaining() int {
	return len(mp.responses) - mp.currentIndex
}
