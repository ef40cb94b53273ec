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

package run

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/history"
	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// parseParamFlag parses "name=value" or "name:type=value". The value may
// contain '=' and ':'; only the name part is split on ':'.
func parseParamFlag(raw string) (parameter.Parameter, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return parameter.Parameter{}, fmt.Errorf("invalid parameter %q: expected name=value or name:type=value", raw)
	}

	name, typeName, _ := strings.Cut(key, ":")
	typ, err := parameter.ParseType(typeName)
	if err != nil {
		return parameter.Parameter{}, fmt.Errorf("invalid parameter %q: %w", raw, err)
	}
	return parameter.New(strings.TrimSpace(name), value, typ), nil
}

// fileParam is the list form of a parameters file entry.
type fileParam struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Type  string `yaml:"type"`
}

// loadParamsFile reads parameters from a YAML file ('-' for stdin). Two
// layouts are accepted: a mapping of name to value, whose types are
// inferred from the YAML value, or a list of {name, value, type} entries.
// Mapping order is preserved.
func loadParamsFile(path string) ([]parameter.Parameter, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = readAllStdin()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.MappingNode:
		params := make([]parameter.Parameter, 0, len(doc.Content)/2)
		for i := 0; i+1 < len(doc.Content); i += 2 {
			p, err := nodeParam(doc.Content[i].Value, doc.Content[i+1])
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		return params, nil

	case yaml.SequenceNode:
		var entries []fileParam
		if err := doc.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to parse parameters file: %w", err)
		}
		params := make([]parameter.Parameter, 0, len(entries))
		for _, e := range entries {
			typ, err := parameter.ParseType(e.Type)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", e.Name, err)
			}
			params = append(params, parameter.New(e.Name, e.Value, typ))
		}
		return params, nil

	default:
		return nil, fmt.Errorf("parameters file must be a mapping or a list")
	}
}

// nodeParam infers the parameter type from a YAML value.
func nodeParam(name string, node *yaml.Node) (parameter.Parameter, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int", "!!float":
			return parameter.New(name, node.Value, parameter.TypeNumber), nil
		case "!!bool":
			return parameter.New(name, strings.ToLower(node.Value), parameter.TypeBoolean), nil
		default:
			return parameter.New(name, node.Value, parameter.TypeString), nil
		}

	case yaml.MappingNode, yaml.SequenceNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return parameter.Parameter{}, fmt.Errorf("parameter %q: %w", name, err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return parameter.Parameter{}, fmt.Errorf("parameter %q: value is not JSON compatible: %w", name, err)
		}
		typ := parameter.TypeObject
		if node.Kind == yaml.SequenceNode {
			typ = parameter.TypeArray
		}
		return parameter.New(name, string(raw), typ), nil

	default:
		return parameter.Parameter{}, fmt.Errorf("parameter %q: unsupported YAML value", name)
	}
}

// gatherParameters builds the parameter list: history input first, then
// the parameters file, then -p flags. A later name overrides an earlier
// one when the map is coerced.
func gatherParameters(ctx context.Context, store *history.Store, fromHistory, paramsFile string, flags []string) (*parameter.List, error) {
	list := parameter.NewList()

	if fromHistory != "" {
		record, ok := store.Get(ctx, fromHistory)
		if !ok {
			return nil, shared.NewNotFoundError(fmt.Sprintf("history record %s not found", fromHistory), nil)
		}
		for _, p := range parameter.ParseInput(record.Input) {
			list.Add(p.Name, p.Value, p.Type)
		}
	}

	if paramsFile != "" {
		params, err := loadParamsFile(paramsFile)
		if err != nil {
			return nil, shared.NewInvalidInputError("invalid --params-file", err)
		}
		for _, p := range params {
			list.Add(p.Name, p.Value, p.Type)
		}
	}

	for _, raw := range flags {
		p, err := parseParamFlag(raw)
		if err != nil {
			return nil, shared.NewInvalidInputError("invalid --param", err)
		}
		list.Add(p.Name, p.Value, p.Type)
	}

	return list, nil
}
