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

package directory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

const testWorkspace = "7350000000000000000"

type mapSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *mapSettings) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *mapSettings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func newTestDirectory(t *testing.T, token string, handler http.HandlerFunc) (*Directory, *mapSettings, *atomic.Int32) {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := coze.New(coze.WithBaseURL(server.URL), coze.WithToken(token))
	require.NoError(t, err)

	settings := &mapSettings{values: map[string]string{}}
	return New(client, WithSettings(settings)), settings, hits
}

func listing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"code":0,"msg":"","data":{"items":[
		{"workflow_id":"1","workflow_name":"video_summary","description":"Summarize a video","publish_status":"published"},
		{"workflow_id":"2","workflow_name":"image_caption","description":"Caption an image"}
	],"has_more":true,"total":2}}`)
}

func TestListSuccess(t *testing.T) {
	var query map[string]string
	d, settings, hits := newTestDirectory(t, "pat_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workflows", r.URL.Path)
		assert.Equal(t, "Bearer pat_token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		query = map[string]string{
			"workspace_id":   q.Get("workspace_id"),
			"page_num":       q.Get("page_num"),
			"page_size":      q.Get("page_size"),
			"publish_status": q.Get("publish_status"),
		}
		listing(w, r)
	})

	page, err := d.List(context.Background(), NewRequest(testWorkspace))
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, map[string]string{
		"workspace_id":   testWorkspace,
		"page_num":       "1",
		"page_size":      "20",
		"publish_status": "all",
	}, query)

	assert.True(t, page.HasMore)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "video_summary", page.Items[0].WorkflowName)
	assert.Equal(t, "published", page.Items[0].PublishStatus)
	assert.Equal(t, testWorkspace, settings.Get(KeyLastWorkspaceID))
}

func TestListFallsBackToLastWorkspace(t *testing.T) {
	d, settings, hits := newTestDirectory(t, "pat_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testWorkspace, r.URL.Query().Get("workspace_id"))
		listing(w, r)
	})
	require.NoError(t, settings.Set(KeyLastWorkspaceID, testWorkspace))

	req := NewRequest("")
	req.PublishStatus = ""
	page, err := d.List(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, testWorkspace, page.WorkspaceID)
	assert.Equal(t, int32(1), hits.Load())
}

func TestListValidation(t *testing.T) {
	tests := []struct {
		name  string
		token string
		req   Request
		code  cozeerrors.ValidationCode
	}{
		{"empty token", "", NewRequest(testWorkspace), cozeerrors.CodeInvalidCredential},
		{"blank token", "   ", NewRequest(testWorkspace), cozeerrors.CodeInvalidCredential},
		{"empty workspace", "t", NewRequest(""), cozeerrors.CodeInvalidWorkspaceID},
		{"non-numeric workspace", "t", NewRequest("73500000abc0000"), cozeerrors.CodeInvalidWorkspaceID},
		{"signed workspace", "t", NewRequest("-7350000000000"), cozeerrors.CodeInvalidWorkspaceID},
		{"short workspace", "t", NewRequest("123456789"), cozeerrors.CodeInvalidWorkspaceID},
		{"zero page", "t", Request{WorkspaceID: testWorkspace, Page: 0, PageSize: 20}, cozeerrors.CodeInvalidPage},
		{"negative page", "t", Request{WorkspaceID: testWorkspace, Page: -1, PageSize: 20}, cozeerrors.CodeInvalidPage},
		{"zero page size", "t", Request{WorkspaceID: testWorkspace, Page: 1, PageSize: 0}, cozeerrors.CodeInvalidPageSize},
		{"page size too large", "t", Request{WorkspaceID: testWorkspace, Page: 1, PageSize: 101}, cozeerrors.CodeInvalidPageSize},
		{"unknown status", "t", Request{WorkspaceID: testWorkspace, Page: 1, PageSize: 20, PublishStatus: "online"}, cozeerrors.CodeInvalidPublishStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, hits := newTestDirectory(t, tt.token, listing)

			page, err := d.List(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, page)

			var verr *cozeerrors.ValidationError
			require.True(t, errors.As(err, &verr), "got %T", err)
			assert.Equal(t, tt.code, verr.Code)
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}

func TestListBoundaryPaging(t *testing.T) {
	d, _, hits := newTestDirectory(t, "t", listing)

	for _, size := range []int{1, 100} {
		req := NewRequest("1234567890")
		req.PageSize = size
		_, err := d.List(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestListFetchError(t *testing.T) {
	d, settings, _ := newTestDirectory(t, "bad", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":4100,"msg":"authentication is invalid"}`)
	})

	_, err := d.List(context.Background(), NewRequest(testWorkspace))
	require.Error(t, err)

	var ferr *cozeerrors.DirectoryFetchError
	require.True(t, errors.As(err, &ferr), "got %T", err)
	assert.Equal(t, http.StatusUnauthorized, ferr.StatusCode)
	assert.Equal(t, 4100, ferr.Code)
	assert.Equal(t, "authentication is invalid", ferr.Message)
	assert.Equal(t,
		"failed to list workflows: HTTP error! status: 401 - authentication is invalid (code: 4100)",
		err.Error())
	assert.Empty(t, settings.Get(KeyLastWorkspaceID))
}

func TestListAPICodeError(t *testing.T) {
	d, _, _ := newTestDirectory(t, "t", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":4000,"msg":"workspace not found"}`)
	})

	_, err := d.List(context.Background(), NewRequest(testWorkspace))
	var ferr *cozeerrors.DirectoryFetchError
	require.True(t, errors.As(err, &ferr), "got %T", err)
	assert.Equal(t, 4000, ferr.Code)
	assert.Contains(t, ferr.Error(), "workspace not found")
}

func TestMatch(t *testing.T) {
	items := []coze.Workflow{
		{WorkflowID: "1", WorkflowName: "video_summary"},
		{WorkflowID: "2", WorkflowName: "image_caption"},
		{WorkflowID: "3", WorkflowName: "video_clip"},
	}

	all, err := Match(items, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	videos, err := Match(items, "video_*")
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "1", videos[0].WorkflowID)
	assert.Equal(t, "3", videos[1].WorkflowID)

	none, err := Match(items, "audio_*")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = Match(items, "video_[")
	var verr *cozeerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, cozeerrors.CodeInvalidPattern, verr.Code)
}
