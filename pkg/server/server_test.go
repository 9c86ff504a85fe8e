// Copyright 2025 The fawa Authors
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

package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/storage/memory"
	"github.com/fawa-io/filemanager/service/auth"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newClient(t *testing.T) (*client, *memory.ContentStore) {
	t.Helper()
	content := memory.NewContentStore()
	srv := httptest.NewServer(NewHandler(Deps{
		Sessions: memory.NewSessionStore(),
		Metadata: memory.NewMetadataStore(),
		Content:  content,
	}))
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}, content
}

func (c *client) call(method, path, token string, body any, setup ...func(*http.Request)) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(c.t.Context(), method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	for _, fn := range setup {
		fn(req)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c *client) object(method, path, token string, body any, wantStatus int) map[string]any {
	c.t.Helper()
	status, data := c.call(method, path, token, body)
	require.Equal(c.t, wantStatus, status, string(data))
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(data, &out))
	return out
}

func (c *client) connect(email, password string) string {
	c.t.Helper()
	status, data := c.call(http.MethodGet, "/connect", "", nil, func(r *http.Request) {
		r.SetBasicAuth(email, password)
	})
	require.Equal(c.t, http.StatusOK, status, string(data))
	var out map[string]string
	require.NoError(c.t, json.Unmarshal(data, &out))
	require.NotEmpty(c.t, out["token"])
	return out["token"]
}

func TestServer_Scenario(t *testing.T) {
	c, content := newClient(t)

	user := c.object(http.MethodPost, "/users", "", map[string]string{"email": "a@b.com", "password": "pw"}, http.StatusCreated)
	assert.Equal(t, "a@b.com", user["email"])

	dup := c.object(http.MethodPost, "/users", "", map[string]string{"email": "a@b.com", "password": "pw"}, http.StatusBadRequest)
	assert.Equal(t, "Already exist", dup["error"])

	status, _ := c.call(http.MethodGet, "/connect", "", nil, func(r *http.Request) { r.SetBasicAuth("a@b.com", "wrong") })
	assert.Equal(t, http.StatusUnauthorized, status)

	token := c.connect("a@b.com", "pw")
	me := c.object(http.MethodGet, "/users/me", token, nil, http.StatusOK)
	assert.Equal(t, user["id"], me["id"])

	folder := c.object(http.MethodPost, "/files", token, map[string]any{"name": "docs", "type": "folder"}, http.StatusCreated)
	folderID := folder["id"].(string)

	file := c.object(http.MethodPost, "/files", token, map[string]any{
		"name":     "x.txt",
		"type":     "file",
		"parentId": folderID,
		"data":     base64.StdEncoding.EncodeToString([]byte("hello")),
	}, http.StatusCreated)
	fileID := file["id"].(string)
	assert.Equal(t, folderID, file["parentId"])
	assert.Equal(t, false, file["isPublic"])
	assert.Equal(t, 1, content.Len())

	nested := c.object(http.MethodPost, "/files", token, map[string]any{"name": "y", "type": "folder", "parentId": fileID}, http.StatusBadRequest)
	assert.Equal(t, "Parent is not a folder", nested["error"])

	status, body := c.call(http.MethodGet, "/files/"+fileID+"/data", "", nil)
	assert.Equal(t, http.StatusNotFound, status, string(body))

	status, body = c.call(http.MethodGet, "/files/"+fileID+"/data", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", string(body))

	c.object(http.MethodPut, "/files/"+fileID+"/publish", token, nil, http.StatusOK)
	status, body = c.call(http.MethodGet, "/files/"+fileID+"/data", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", string(body))

	// A second user sees the public file but cannot toggle it.
	c.object(http.MethodPost, "/users", "", map[string]string{"email": "c@d.com", "password": "pw2"}, http.StatusCreated)
	other := c.connect("c@d.com", "pw2")
	c.object(http.MethodGet, "/files/"+fileID, other, nil, http.StatusOK)
	c.object(http.MethodPut, "/files/"+fileID+"/unpublish", other, nil, http.StatusNotFound)
	c.object(http.MethodGet, "/files/"+folderID, other, nil, http.StatusNotFound)

	status, _ = c.call(http.MethodGet, "/disconnect", token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = c.call(http.MethodGet, "/disconnect", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	c.object(http.MethodGet, "/files/"+fileID, token, nil, http.StatusUnauthorized)

	stats := c.object(http.MethodGet, "/stats", "", nil, http.StatusOK)
	assert.Equal(t, float64(2), stats["users"])
	assert.Equal(t, float64(2), stats["files"])

	alive := c.object(http.MethodGet, "/status", "", nil, http.StatusOK)
	assert.Equal(t, true, alive["redis"])
	assert.Equal(t, true, alive["db"])
}

func TestServer_Pagination(t *testing.T) {
	c, _ := newClient(t)
	c.object(http.MethodPost, "/users", "", map[string]string{"email": "a@b.com", "password": "pw"}, http.StatusCreated)
	token := c.connect("a@b.com", "pw")

	folder := c.object(http.MethodPost, "/files", token, map[string]any{"name": "bulk", "type": "folder", "parentId": 0}, http.StatusCreated)
	folderID := folder["id"].(string)
	for i := 0; i < 45; i++ {
		c.object(http.MethodPost, "/files", token, map[string]any{
			"name":     fmt.Sprintf("n%02d", i),
			"type":     "folder",
			"parentId": folderID,
		}, http.StatusCreated)
	}

	for page, want := range []int{20, 20, 5, 0} {
		status, data := c.call(http.MethodGet, fmt.Sprintf("/files?parentId=%s&page=%d", folderID, page), token, nil)
		require.Equal(t, http.StatusOK, status)
		var nodes []map[string]any
		require.NoError(t, json.Unmarshal(data, &nodes))
		assert.Len(t, nodes, want, "page %d", page)
		if want > 0 {
			assert.Equal(t, fmt.Sprintf("n%02d", page*20), nodes[0]["name"])
		}
	}
}

func TestServer_LogsRequests(t *testing.T) {
	buf := new(bytes.Buffer)
	fwlog.SetOutput(buf)
	fwlog.SetLevel(fwlog.LevelDebug)
	t.Cleanup(func() {
		fwlog.SetOutput(os.Stderr)
		fwlog.SetLevel(fwlog.LevelInfo)
	})

	h := NewHandler(Deps{
		Sessions: memory.NewSessionStore(),
		Metadata: memory.NewMetadataStore(),
		Content:  memory.NewContentStore(),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, strings.Contains(buf.String(), "GET /status 200"), buf.String())
}

func TestServer_CORSPreflight(t *testing.T) {
	c, _ := newClient(t)
	status, _ := c.call(http.MethodOptions, "/files", "", nil, func(r *http.Request) {
		r.Header.Set("Origin", "https://app.example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, http.StatusNoContent, status)
}

func TestServer_RegisterUploadReadLogout(t *testing.T) {
	c, _ := newClient(t)

	user := c.object(http.MethodPost, "/users", "", map[string]string{"email": "a@b.com", "password": "pw"}, http.StatusCreated)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "a@b.com", user["email"])

	token := c.connect("a@b.com", "pw")

	folder := c.object(http.MethodPost, "/files", token, map[string]any{"name": "docs", "type": "folder", "parentId": 0}, http.StatusCreated)
	assert.Equal(t, float64(0), folder["parentId"])

	file := c.object(http.MethodPost, "/files", token, map[string]any{
		"name":     "f.txt",
		"type":     "file",
		"parentId": folder["id"],
		"data":     base64.StdEncoding.EncodeToString([]byte("hi")),
	}, http.StatusCreated)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, c.srv.URL+"/files/"+file["id"].(string)+"/data", nil)
	require.NoError(t, err)
	req.Header.Set(auth.TokenHeader, token)
	resp, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hi", string(data))
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	status, _ := c.call(http.MethodGet, "/disconnect", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = c.call(http.MethodGet, "/files?parentId="+folder["id"].(string), token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
