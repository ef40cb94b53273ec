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

// Package diagnostics implements the doctor command.
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/config"
	"github.com/davidwuwu001/coze-workflow-api/internal/directory"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
)

// apiTimeout bounds the connectivity probe.
const apiTimeout = 15 * time.Second

// DoctorResult contains the overall health check results
type DoctorResult struct {
	output.JSONResponse
	ConfigPath      string      `json:"config_path"`
	ConfigExists    bool        `json:"config_exists"`
	ConfigValid     bool        `json:"config_valid"`
	ConfigError     string      `json:"config_error,omitempty"`
	BaseURL         string      `json:"base_url,omitempty"`
	TokenConfigured bool        `json:"token_configured"`
	TokenSource     string      `json:"token_source,omitempty"`
	SecretBackends  []string    `json:"secret_backends"`
	History         HistoryInfo `json:"history"`
	API             APIHealth   `json:"api"`
	Recommendations []string    `json:"recommendations"`
	OverallHealthy  bool        `json:"overall_healthy"`
}

// HistoryInfo describes the history store.
type HistoryInfo struct {
	Backend string `json:"backend"`
	Path    string `json:"path,omitempty"`
	Records int    `json:"records"`
	Limit   int    `json:"limit"`
}

// APIHealth contains the result of the connectivity probe.
type APIHealth struct {
	Checked     bool   `json:"checked"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	Reachable   bool   `json:"reachable"`
	Latency     string `json:"latency,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use: "doctor",
		Annotations: map[string]string{
			"group": "diagnostics",
		},
		Short: "Check configuration, credentials and API access",
		Long: `Perform a health check of the cozeflow setup.

This command checks:
  - Config file is valid
  - An API token is available and where it comes from
  - The history store is readable
  - The Coze API accepts the token (by listing one workflow)

The API probe needs a workspace id. It defaults to the last listed
workspace and is skipped when none is known.`,
		Example: `  # Example 1: Basic health check
  cozeflow doctor

  # Example 2: Probe a specific workspace, JSON for automation
  cozeflow doctor --workspace 7350000000000000000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, workspace)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace id for the API probe (default: last listed)")

	return cmd
}

func runDoctor(cmd *cobra.Command, workspace string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	result := DoctorResult{
		Recommendations: []string{},
		OverallHealthy:  true,
	}

	// Step 1: config file
	result.ConfigPath = shared.GetConfigPath()
	if result.ConfigPath == "" {
		if p, err := config.ConfigPath(); err == nil {
			result.ConfigPath = p
		}
	}
	if _, err := os.Stat(result.ConfigPath); err == nil {
		result.ConfigExists = true
	}

	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		result.ConfigError = err.Error()
		result.OverallHealthy = false
		result.Recommendations = append(result.Recommendations,
			"Fix the configuration errors reported by 'cozeflow config validate'.")
		return emit(cmd, result)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.Logger.Warn("shutdown failed", cozelog.Error(err))
		}
	}()
	result.ConfigValid = true
	result.BaseURL = rt.Config.API.BaseURL

	// Step 2: credentials
	result.SecretBackends = shared.NewSecretResolver().Backends()
	result.TokenConfigured = rt.Client.Token() != ""
	result.TokenSource = rt.TokenSource
	if !result.TokenConfigured {
		result.OverallHealthy = false
		result.Recommendations = append(result.Recommendations,
			"No API token found. Set COZE_API_TOKEN or run 'cozeflow token set'.")
	}

	// Step 3: history
	result.History = HistoryInfo{
		Backend: rt.Config.History.Backend,
		Records: len(rt.History.List(ctx)),
		Limit:   rt.Config.History.Limit,
	}
	if result.History.Backend != "memory" {
		result.History.Path = rt.Config.HistoryPath()
	}

	// Step 4: API probe
	if workspace == "" {
		workspace = rt.Settings.Get(directory.KeyLastWorkspaceID)
	}
	switch {
	case !result.TokenConfigured:
	case workspace == "":
		result.Recommendations = append(result.Recommendations,
			"Pass --workspace to check API access.")
	default:
		result.API = probe(ctx, rt, workspace)
		if !result.API.Reachable {
			result.OverallHealthy = false
			result.Recommendations = append(result.Recommendations,
				"The Coze API rejected the request. Check the token scope, the workspace id and api.base_url.")
		}
	}

	return emit(cmd, result)
}

func probe(ctx context.Context, rt *shared.Runtime, workspace string) APIHealth {
	health := APIHealth{Checked: true, WorkspaceID: workspace}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	req := directory.NewRequest(workspace)
	req.PageSize = 1

	start := time.Now()
	_, err := rt.Directory().List(ctx, req)
	health.Latency = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.Reachable = true
	return health
}

func emit(cmd *cobra.Command, result DoctorResult) error {
	var failure error
	if !result.OverallHealthy {
		failure = shared.NewExecutionError("health check found issues", nil)
	}

	if shared.GetJSON() {
		result.JSONResponse = output.NewResponse("doctor", result.OverallHealthy)
		if err := output.EmitJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if failure != nil {
			return shared.Reported(failure)
		}
		return nil
	}

	writeText(cmd.OutOrStdout(), result)
	return failure
}

// writeText outputs results in human-readable format
func writeText(w io.Writer, result DoctorResult) {
	fmt.Fprintln(w, "cozeflow Health Check")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  Path: %s\n", result.ConfigPath)
	if result.ConfigExists {
		fmt.Fprintln(w, "  Status: Found")
	} else {
		fmt.Fprintln(w, "  Status: Not found (defaults)")
	}
	fmt.Fprintf(w, "  Valid: %s\n", checkMark(result.ConfigValid))
	if result.ConfigError != "" {
		fmt.Fprintf(w, "  Error: %s\n", result.ConfigError)
	}
	if result.BaseURL != "" {
		fmt.Fprintf(w, "  API: %s\n", result.BaseURL)
	}
	fmt.Fprintln(w)

	if result.ConfigValid {
		fmt.Fprintln(w, "Credentials:")
		fmt.Fprintf(w, "  Token: %s\n", checkMark(result.TokenConfigured))
		if result.TokenSource != "" {
			fmt.Fprintf(w, "  Source: %s\n", result.TokenSource)
		}
		fmt.Fprintf(w, "  Backends: %s\n", strings.Join(result.SecretBackends, ", "))
		fmt.Fprintln(w)

		fmt.Fprintln(w, "History:")
		fmt.Fprintf(w, "  Backend: %s\n", result.History.Backend)
		if result.History.Path != "" {
			fmt.Fprintf(w, "  Path: %s\n", result.History.Path)
		}
		fmt.Fprintf(w, "  Records: %d of %d\n", result.History.Records, result.History.Limit)
		fmt.Fprintln(w)
	}

	if result.API.Checked {
		fmt.Fprintln(w, "API Access:")
		fmt.Fprintf(w, "  Workspace: %s\n", result.API.WorkspaceID)
		fmt.Fprintf(w, "  Reachable: %s\n", checkMark(result.API.Reachable))
		fmt.Fprintf(w, "  Latency: %s\n", result.API.Latency)
		if result.API.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", result.API.Error)
		}
		fmt.Fprintln(w)
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
		fmt.Fprintln(w)
	}

	if result.OverallHealthy {
		fmt.Fprintln(w, "Overall Status: "+shared.RenderStatus(true, "Healthy"))
	} else {
		fmt.Fprintln(w, "Overall Status: "+shared.RenderStatus(false, "Issues Found"))
	}
}

func checkMark(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}
