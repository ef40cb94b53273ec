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

// Package token implements the token command group.
package token

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/prompt"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
	"github.com/davidwuwu001/coze-workflow-api/internal/secrets"
	"github.com/davidwuwu001/coze-workflow-api/pkg/httpclient"
)

var (
	stdin       io.Reader = os.Stdin
	newResolver           = shared.NewSecretResolver
	canPrompt             = shared.CanPrompt
	newPrompter           = func() prompt.Prompter {
		return prompt.NewSurveyPrompter(canPrompt())
	}
)

// maskKeep is how many leading token characters status reveals.
const maskKeep = 8

// Response is the JSON output of the token commands.
type Response struct {
	output.JSONResponse
	Configured bool     `json:"configured"`
	Source     string   `json:"source,omitempty"`
	Masked     string   `json:"masked,omitempty"`
	Backends   []string `json:"backends,omitempty"`
}

// NewCommand creates the token command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "token",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Short: "Manage the Coze API token",
		Long: `Commands for the personal access token used to call the Coze API.

COZE_API_TOKEN takes precedence. Otherwise the token is read from the
system keychain, where 'cozeflow token set' stores it.`,
	}

	cmd.AddCommand(newSetCommand(), newClearCommand(), newStatusCommand())
	return cmd
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API token in the system keychain",
		Example: `  # Example 1: Prompt for the token
  cozeflow token set

  # Example 2: Read the token from a file
  cozeflow token set < token.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var value string
			if canPrompt() {
				v, err := newPrompter().Password(ctx, "Coze API token")
				if err != nil {
					return err
				}
				value = v
			} else {
				line, err := bufio.NewReader(stdin).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read token from stdin: %w", err)
				}
				value = line
			}

			value = strings.TrimSpace(value)
			if value == "" {
				return shared.NewInvalidInputError("token is empty", nil)
			}
			if strings.ContainsAny(value, " \t") {
				return shared.NewInvalidInputError("token must not contain whitespace", nil)
			}

			resolver := newResolver()
			backend, err := resolver.Set(ctx, secrets.TokenKey, value)
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), Response{
					JSONResponse: output.NewResponse("token set", true),
					Configured:   true,
					Source:       backend,
					Masked:       httpclient.MaskSecret(value, maskKeep),
				})
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Token stored in "+backend))
			}
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the API token from the system keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := newResolver().Delete(cmd.Context(), secrets.TokenKey)
			if errors.Is(err, secrets.ErrSecretNotFound) {
				return shared.NewNotFoundError("no stored token", err)
			}
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), Response{
					JSONResponse: output.NewResponse("token clear", true),
				})
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Token removed"))
			}
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := newResolver()
			value, source, err := resolver.Token(cmd.Context())
			if err != nil {
				return err
			}

			resp := Response{
				JSONResponse: output.NewResponse("token status", true),
				Configured:   value != "",
				Source:       source,
				Masked:       httpclient.MaskSecret(value, maskKeep),
				Backends:     resolver.Backends(),
			}
			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), resp)
			}

			w := cmd.OutOrStdout()
			if !resp.Configured {
				fmt.Fprintln(w, shared.RenderWarn("No API token configured"))
				fmt.Fprintln(w, shared.RenderLabel("Set COZE_API_TOKEN or run 'cozeflow token set'."))
				return nil
			}
			fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Source:"), resp.Source)
			fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Token: "), resp.Masked)
			return nil
		},
	}
}
