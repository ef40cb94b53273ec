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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/davidwuwu001/coze-workflow-api/internal/storage/file"
)

// SettingsStore persists values remembered between runs in settings.yaml.
// Every write takes the file lock and rewrites the file atomically, so
// concurrent cozeflow processes never see a partial file.
type SettingsStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
	loaded bool
}

// settingsFile is the on-disk layout.
type settingsFile struct {
	Version int               `yaml:"version"`
	Values  map[string]string `yaml:"values"`
}

// SettingsPath returns the full path to the settings.yaml file.
func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// NewSettingsStore creates a store backed by path. If path is empty, the
// default settings path is used.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		var err error
		path, err = SettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
	}
	return &SettingsStore{path: path}, nil
}

// Path returns the backing file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Get returns the value for key, or "" when unset or unreadable.
func (s *SettingsStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		values, err := readSettings(s.path)
		if err != nil {
			return ""
		}
		s.values = values
		s.loaded = true
	}
	return s.values[key]
}

// Set stores value under key. An empty value removes the key.
func (s *SettingsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return file.WithLock(s.path, func() error {
		// Re-read under the lock to keep keys written by other processes.
		values, err := readSettings(s.path)
		if err != nil {
			return err
		}
		if value == "" {
			delete(values, key)
		} else {
			values[key] = value
		}

		data, err := yaml.Marshal(settingsFile{Version: 1, Values: values})
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		if err := file.WriteAtomic(s.path, data, 0600); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}

		s.values = values
		s.loaded = true
		return nil
	})
}

// Keys returns the stored keys in sorted order.
func (s *SettingsStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := readSettings(s.path)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func readSettings(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var sf settingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	if sf.Values == nil {
		sf.Values = map[string]string{}
	}
	return sf.Values, nil
}

// MemorySettings is an in-process settings store.
type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemorySettings creates an empty MemorySettings.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: map[string]string{}}
}

// Get returns the value for key.
func (m *MemorySettings) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Set stores value under key. An empty value removes the key.
func (m *MemorySettings) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}
