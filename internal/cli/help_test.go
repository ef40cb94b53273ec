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

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
)

func newHelpTestRoot() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cozeflow",
		Short: "Test command",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample subcommand",
		Long:  "This is a sample subcommand for testing",
		Example: `  cozeflow sample
  cozeflow sample --flag value`,
		Annotations: map[string]string{
			"group": "testing",
		},
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	sampleCmd.Flags().String("flag", "", "A sample flag")
	sampleCmd.Flags().String("needed", "", "A required flag")
	_ = sampleCmd.MarkFlagRequired("needed")
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(&cobra.Command{Use: "another", Short: "Another", RunE: func(*cobra.Command, []string) error { return nil }})

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func runHelp(t *testing.T, args ...string) (*HelpResponse, error) {
	t.Helper()
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)

	rootCmd := newHelpTestRoot()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"help"}, args...))

	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	var resp HelpResponse
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&resp); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return &resp, nil
}

func TestHelpCommandJSON_All(t *testing.T) {
	resp, err := runHelp(t, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.Version != "1.0" || !resp.Success || resp.DocsURL == "" {
		t.Errorf("unexpected envelope: %+v", resp.JSONResponse)
	}
	if resp.Command != nil {
		t.Errorf("expected no single command, got %+v", resp.Command)
	}

	var names []string
	for _, c := range resp.Commands {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "another,help,sample" {
		t.Errorf("commands = %v, want sorted [another help sample]", names)
	}
	if len(resp.GlobalFlags) != 1 || resp.GlobalFlags[0].Name != "verbose" {
		t.Errorf("global flags = %+v", resp.GlobalFlags)
	}
}

func TestHelpCommandJSON_Single(t *testing.T) {
	resp, err := runHelp(t, "sample", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.Command == nil {
		t.Fatal("expected command metadata")
	}
	if resp.JSONResponse.Command != "help cozeflow sample" {
		t.Errorf("command = %q", resp.JSONResponse.Command)
	}
	if resp.Command.Group != "testing" || resp.Command.Examples == "" {
		t.Errorf("unexpected metadata: %+v", resp.Command)
	}

	required := map[string]bool{}
	for _, f := range resp.Command.Flags {
		required[f.Name] = f.Required
	}
	if !required["needed"] {
		t.Error("expected --needed to be reported as required")
	}
	if required["flag"] {
		t.Error("expected --flag to be optional")
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	_, err := runHelp(t, "nope", "--json")

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != shared.ExitNotFound {
		t.Errorf("expected not-found exit error, got %v", err)
	}
}

func TestHelpCommandHumanOutput(t *testing.T) {
	shared.ResetFlagsForTest()
	rootCmd := newHelpTestRoot()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected human output, got JSON")
	}
}

func TestExtractCommandMetadata(t *testing.T) {
	cmd := &cobra.Command{
		Use:     "testcmd",
		Short:   "Test command",
		Long:    "This is a longer description",
		Example: "testcmd --flag value",
		Aliases: []string{"tc", "test"},
		Annotations: map[string]string{
			"group": "testing",
		},
	}
	cmd.Flags().String("flag", "default", "A test flag")
	cmd.Flags().Bool("bool-flag", false, "A boolean flag")
	cmd.Flags().Bool("secret", false, "Hidden flag")
	_ = cmd.Flags().MarkHidden("secret")

	metadata := extractCommandMetadata(cmd)

	if metadata.Name != "testcmd" || metadata.Group != "testing" {
		t.Errorf("unexpected metadata: %+v", metadata)
	}
	if len(metadata.Aliases) != 2 {
		t.Errorf("expected 2 aliases, got %d", len(metadata.Aliases))
	}
	if len(metadata.Flags) != 2 {
		t.Errorf("expected 2 visible flags, got %d", len(metadata.Flags))
	}
}
