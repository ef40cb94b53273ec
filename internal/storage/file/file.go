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

// Package file provides a BlobStore that keeps each blob in its own JSON
// file, written atomically under an advisory lock.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/davidwuwu001/coze-workflow-api/internal/storage"
)

var _ storage.BlobStore = (*Store)(nil)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store keeps blobs as files under a directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}

// Load implements storage.BlobStore.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := s.checkKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err := WithLock(s.Path(key), func() error {
		var readErr error
		data, readErr = os.ReadFile(s.Path(key))
		return readErr
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save implements storage.BlobStore.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	return WithLock(s.Path(key), func() error {
		return WriteAtomic(s.Path(key), data, 0600)
	})
}

// Delete implements storage.BlobStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	return WithLock(s.Path(key), func() error {
		if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		return nil
	})
}

// Close implements storage.BlobStore.
func (s *Store) Close() error {
	return nil
}
