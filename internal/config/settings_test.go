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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := NewSettingsStore(path)
	if err != nil {
		t.Fatalf("NewSettingsStore() error = %v", err)
	}

	if got := s.Get("last_workflow_id"); got != "" {
		t.Errorf("expected empty value before first write, got %q", got)
	}
	if err := s.Set("last_workflow_id", "7340000000000000001"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("last_workspace_id", "7350000000000000000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A fresh store reads what the first one wrote.
	reopened, err := NewSettingsStore(path)
	if err != nil {
		t.Fatalf("NewSettingsStore() error = %v", err)
	}
	if got := reopened.Get("last_workflow_id"); got != "7340000000000000001" {
		t.Errorf("expected persisted workflow id, got %q", got)
	}
	if got := reopened.Keys(); strings.Join(got, ",") != "last_workflow_id,last_workspace_id" {
		t.Errorf("unexpected keys %v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}
}

func TestSettingsStoreEmptyValueRemovesKey(t *testing.T) {
	s, err := NewSettingsStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("NewSettingsStore() error = %v", err)
	}

	if err := s.Set("last_execute_id", "exec-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("last_execute_id", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Get("last_execute_id"); got != "" {
		t.Errorf("expected key removed, got %q", got)
	}
	if keys := s.Keys(); len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}

func TestSettingsStoreConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	// Two stores on one file simulate two processes.
	s1, _ := NewSettingsStore(path)
	s2, _ := NewSettingsStore(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if err := s1.Set(fmt.Sprintf("a%d", i), "1"); err != nil {
				t.Errorf("s1.Set() error = %v", err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if err := s2.Set(fmt.Sprintf("b%d", i), "2"); err != nil {
				t.Errorf("s2.Set() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	reader, _ := NewSettingsStore(path)
	if keys := reader.Keys(); len(keys) != 20 {
		t.Errorf("expected 20 keys after concurrent writes, got %d: %v", len(keys), keys)
	}
}

func TestSettingsStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("values: [\n"), 0600); err != nil {
		t.Fatal(err)
	}

	s, _ := NewSettingsStore(path)
	if got := s.Get("anything"); got != "" {
		t.Errorf("expected empty value for corrupt file, got %q", got)
	}
	if err := s.Set("k", "v"); err == nil {
		t.Error("expected Set to fail on a corrupt file")
	}
}

func TestMemorySettings(t *testing.T) {
	m := NewMemorySettings()
	if err := m.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if got := m.Get("k"); got != "v" {
		t.Errorf("expected v, got %q", got)
	}
	if err := m.Set("k", ""); err != nil {
		t.Fatal(err)
	}
	if got := m.Get("k"); got != "" {
		t.Errorf("expected key removed, got %q", got)
	}
}
