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
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyPrompter implements Prompter on a terminal.
type SurveyPrompter struct {
	interactive bool
	opts        []survey.AskOpt
}

// NewSurveyPrompter creates a prompter. When interactive is false every
// prompt fails with ErrNonInteractive.
func NewSurveyPrompter(interactive bool, opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{
		interactive: interactive,
		opts:        opts,
	}
}

func (sp *SurveyPrompter) PromptString(ctx context.Context, message, def string, validate func(string) error) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	var result string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}

	opts := sp.opts
	if validate != nil {
		opts = append(opts[:len(opts):len(opts)], survey.WithValidator(func(ans interface{}) error {
			if str, ok := ans.(string); ok {
				return validate(str)
			}
			return nil
		}))
	}

	err := survey.AskOne(prompt, &result, opts...)
	return result, err
}

func (sp *SurveyPrompter) PromptSelect(ctx context.Context, message string, options []string, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	if len(options) == 0 {
		return "", errors.New("no options provided")
	}

	var result string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if def != "" {
		prompt.Default = def
	}

	err := survey.AskOne(prompt, &result, sp.opts...)
	return result, err
}

func (sp *SurveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	err := survey.AskOne(prompt, &result, sp.opts...)
	return result, err
}

func (sp *SurveyPrompter) Password(ctx context.Context, message string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	var result string
	err := survey.AskOne(&survey.Password{Message: message}, &result, append(sp.opts[:len(sp.opts):len(sp.opts)], survey.WithValidator(survey.Required))...)
	return result, err
}

func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}

// isInterrupt reports whether the user pressed Ctrl-C during a prompt.
func isInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}
