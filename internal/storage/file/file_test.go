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

package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidwuwu001/coze-workflow-api/internal/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "state")

	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Load(ctx, "history")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.Save(ctx, "history", []byte(`{"records":[]}`)))

	info, err := os.Stat(s.Path("history"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := s.Load(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, `{"records":[]}`, string(got))

	require.NoError(t, s.Save(ctx, "history", []byte(`{"records":[{"id":"a"}]}`)))
	got, err = s.Load(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, `{"records":[{"id":"a"}]}`, string(got))

	require.NoError(t, s.Delete(ctx, "history"))
	require.NoError(t, s.Delete(ctx, "history"))
	_, err = s.Load(ctx, "history")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "history", []byte("{}")))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), "../escape", []byte("{}"))
	assert.Error(t, err)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, "history", []byte(`{"records":[]}`)))
		}()
	}
	wg.Wait()

	got, err := s.Load(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, `{"records":[]}`, string(got))
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
