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
	"errors"
	"testing"
)

func TestEnvBackend_Get(t *testing.T) {
	backend := NewEnvBackend()
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		envVars   map[string]string
		wantValue string
		wantErr   error
	}{
		{
			name:      "token found",
			key:       TokenKey,
			envVars:   map[string]string{"COZE_API_TOKEN": "pat_test"},
			wantValue: "pat_test",
		},
		{
			name:      "token trimmed",
			key:       TokenKey,
			envVars:   map[string]string{"COZE_API_TOKEN": "  pat_test\n"},
			wantValue: "pat_test",
		},
		{
			name:    "blank token is absent",
			key:     TokenKey,
			envVars: map[string]string{"COZE_API_TOKEN": "   "},
			wantErr: ErrSecretNotFound,
		},
		{
			name:      "unmapped key uses prefix",
			key:       "workspace/default-id",
			envVars:   map[string]string{"COZEFLOW_SECRET_WORKSPACE_DEFAULT_ID": "7350000000000000000"},
			wantValue: "7350000000000000000",
		},
		{
			name:    "key not found",
			key:     "missing",
			wantErr: ErrSecretNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COZE_API_TOKEN", "")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			value, err := backend.Get(ctx, tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Get() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() unexpected error = %v", err)
			}
			if value != tt.wantValue {
				t.Errorf("Get() = %q, want %q", value, tt.wantValue)
			}
		})
	}
}

func TestEnvBackend_ReadOnly(t *testing.T) {
	backend := NewEnvBackend()
	ctx := context.Background()

	if err := backend.Set(ctx, TokenKey, "x"); !errors.Is(err, ErrReadOnlyBackend) {
		t.Errorf("Set() error = %v, want ErrReadOnlyBackend", err)
	}
	if err := backend.Delete(ctx, TokenKey); !errors.Is(err, ErrReadOnlyBackend) {
		t.Errorf("Delete() error = %v, want ErrReadOnlyBackend", err)
	}
	if backend.Priority() != EnvBackendPriority {
		t.Errorf("Priority() = %d, want %d", backend.Priority(), EnvBackendPriority)
	}
}
