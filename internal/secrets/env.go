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

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvBackendPriority is the priority for the environment backend.
const EnvBackendPriority = 100

// envVars maps secret keys to environment variables.
var envVars = map[string]string{
	TokenKey: "COZE_API_TOKEN",
}

// EnvBackend reads secrets from environment variables. It is read-only.
type EnvBackend struct {
	lookup func(string) (string, bool)
}

// NewEnvBackend creates a backend over the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.LookupEnv}
}

// Name returns the backend identifier.
func (e *EnvBackend) Name() string {
	return "env"
}

// Get returns the value of the variable mapped to key. Blank values count
// as absent.
func (e *EnvBackend) Get(ctx context.Context, key string) (string, error) {
	name := e.variable(key)
	value, ok := e.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return strings.TrimSpace(value), nil
}

// Set is not supported.
func (e *EnvBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

// Delete is not supported.
func (e *EnvBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

// Available always returns true.
func (e *EnvBackend) Available() bool {
	return true
}

// Priority returns the backend priority.
func (e *EnvBackend) Priority() int {
	return EnvBackendPriority
}

// variable returns the environment variable for key. Unmapped keys use
// COZEFLOW_SECRET_<KEY>.
func (e *EnvBackend) variable(key string) string {
	if name, ok := envVars[key]; ok {
		return name
	}
	normalized := strings.ToUpper(key)
	normalized = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(normalized)
	return "COZEFLOW_SECRET_" + normalized
}
