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

// Package prompt collects workflow parameters interactively. It retries
// invalid answers and refuses to prompt in non-interactive contexts.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// Prompter asks the user questions.
// Implementations include SurveyPrompter (production) and MockPrompter (testing).
type Prompter interface {
	// PromptString asks for free text. validate may be nil.
	PromptString(ctx context.Context, message, def string, validate func(string) error) (string, error)

	// PromptSelect presents options and returns the chosen one.
	PromptSelect(ctx context.Context, message string, options []string, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, def bool) (bool, error)

	// Password asks for a secret without echoing it.
	Password(ctx context.Context, message string) (string, error)

	// IsInteractive returns true if prompts can be displayed
	IsInteractive() bool
}

// Collector runs a prompt session. Retry notices are written to out.
type Collector struct {
	prompter Prompter
	out      io.Writer
}

// NewCollector creates a collector on p.
func NewCollector(p Prompter, out io.Writer) *Collector {
	if out == nil {
		out = io.Discard
	}
	return &Collector{prompter: p, out: out}
}

// ask calls fn until it succeeds or MaxRetries attempts fail. Interrupts
// and context cancellation end the session immediately.
func (c *Collector) ask(ctx context.Context, label string, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		value, err := fn()
		if err == nil {
			return value, nil
		}
		if errors.Is(err, ErrNonInteractive) || isInterrupt(err) {
			return "", err
		}

		lastErr = err
		if attempt < MaxRetries {
			fmt.Fprintf(c.out, "Error: invalid %s: %v\n", label, err)
		}
	}
	return "", &ValidationError{
		InputName: label,
		Reason:    fmt.Sprintf("failed to collect %s after %d attempts: %v", label, MaxRetries, lastErr),
	}
}

// WorkflowID asks for the workflow id, offering def.
func (c *Collector) WorkflowID(ctx context.Context, def string) (string, error) {
	if !c.prompter.IsInteractive() {
		return "", ErrNonInteractive
	}
	id, err := c.ask(ctx, "workflow id", func() (string, error) {
		v, err := c.prompter.PromptString(ctx, "Workflow ID", def, ValidateRequired)
		if err != nil {
			return "", err
		}
		return v, ValidateRequired(v)
	})
	return strings.TrimSpace(id), err
}

// Parameters edits list interactively. Existing parameters are kept; the
// user adds new ones until answering no to "Add another parameter?".
func (c *Collector) Parameters(ctx context.Context, list *parameter.List) error {
	if !c.prompter.IsInteractive() {
		return ErrNonInteractive
	}

	types := make([]string, len(parameter.Types))
	for i, t := range parameter.Types {
		types[i] = string(t)
	}

	for n := list.Len() + 1; ; n++ {
		if list.Len() > 0 {
			more, err := c.prompter.Confirm(ctx, "Add another parameter?", false)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}

		prefix := fmt.Sprintf("[Parameter %d] ", n)

		name, err := c.ask(ctx, "name", func() (string, error) {
			v, err := c.prompter.PromptString(ctx, prefix+"Name", "", ValidateName)
			if err != nil {
				return "", err
			}
			return v, ValidateName(v)
		})
		if err != nil {
			return err
		}

		chosen, err := c.prompter.PromptSelect(ctx, prefix+"Type", types, string(parameter.TypeString))
		if err != nil {
			return err
		}
		typ, err := parameter.ParseType(chosen)
		if err != nil {
			return err
		}

		validate := func(s string) error { return ValidateValue(s, typ) }
		value, err := c.ask(ctx, strings.ToLower(string(typ))+" value", func() (string, error) {
			v, err := c.prompter.PromptString(ctx, prefix+"Value", "", validate)
			if err != nil {
				return "", err
			}
			return v, validate(v)
		})
		if err != nil {
			return err
		}

		list.Add(strings.TrimSpace(name), value, typ)
	}
}
