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

// Package config implements the config command group.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/config"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// ShowResponse is the JSON output of config show.
type ShowResponse struct {
	output.JSONResponse
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config map[string]any `json:"config"`
}

// ValidateResponse is the JSON output of config validate.
type ValidateResponse struct {
	output.JSONResponse
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// SettingsResponse is the JSON output of config settings.
type SettingsResponse struct {
	output.JSONResponse
	Path     string            `json:"path"`
	Settings map[string]string `json:"settings"`
}

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "config",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Short: "View configuration and remembered settings",
		Long: `View cozeflow configuration.

Subcommands:
  show     - Display the effective configuration
  path     - Show config file location
  validate - Check the config file
  settings - Show values remembered between runs`,
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newPathCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newSettingsCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args)
	}

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after defaults and environment overrides.

The API token is never part of the configuration file and is not shown.
Use 'cozeflow token status' to see where it comes from.`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Example: `  # Validate configuration
  cozeflow config validate

  # Get validation result as JSON
  cozeflow config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			resp := ValidateResponse{Path: path, Valid: true}
			_, loadErr := config.Load(path)
			if loadErr != nil {
				resp.Valid = false
				resp.Errors = problems(loadErr)
			}
			resp.JSONResponse = output.NewResponse("config validate", resp.Valid)

			if shared.GetJSON() {
				if err := output.EmitJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if loadErr != nil {
					return shared.Reported(shared.NewInvalidInputError("invalid configuration", loadErr))
				}
				return nil
			}

			if loadErr != nil {
				return shared.NewInvalidInputError("invalid configuration", loadErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Configuration is valid: "+path))
			return nil
		},
	}
}

func newSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show values remembered between runs",
		Long: `Show the last workflow id, execution id, parameter input and
workspace id remembered from previous commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SettingsPath()
			if err != nil {
				return fmt.Errorf("failed to determine settings path: %w", err)
			}
			store, err := config.NewSettingsStore(path)
			if err != nil {
				return err
			}

			values := make(map[string]string)
			keys := store.Keys()
			for _, k := range keys {
				values[k] = store.Get(k)
			}

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), SettingsResponse{
					JSONResponse: output.NewResponse("config settings", true),
					Path:         path,
					Settings:     values,
				})
			}

			w := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(w, "No remembered settings")
				return nil
			}
			for _, k := range keys {
				fmt.Fprintf(w, "%s %s\n", shared.RenderLabel(k+":"), values[k])
			}
			return nil
		},
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if shared.GetJSON() {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return output.EmitJSON(cmd.OutOrStdout(), ShowResponse{
			JSONResponse: output.NewResponse("config show", true),
			Path:         path,
			Exists:       exists,
			Config:       tree,
		})
	}
	return writeYAML(cmd.OutOrStdout(), path, exists, cfg)
}

func writeYAML(w io.Writer, path string, exists bool, cfg *config.Config) error {
	header := "Configuration: " + path
	if !exists {
		header += " (not found, showing defaults)"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return encoder.Close()
}

func configPath() (string, error) {
	if p := shared.GetConfigPath(); p != "" {
		return p, nil
	}
	p, err := config.ConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to determine config path: %w", err)
	}
	return p, nil
}

// problems splits a configuration error into its individual findings.
func problems(err error) []string {
	var cerr *cozeerrors.ConfigError
	if errors.As(err, &cerr) && cerr.Cause != nil {
		err = cerr.Cause
	}

	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		out = append(out, line)
	}
	return out
}
