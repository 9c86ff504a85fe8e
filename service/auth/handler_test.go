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

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *Service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return mux, svc
}

func do(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateUser(t *testing.T) {
	mux, _ := newTestMux(t)

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"created", `{"email":"a@b.com","password":"pw"}`, http.StatusCreated, ""},
		{"duplicate", `{"email":"a@b.com","password":"other"}`, http.StatusBadRequest, "Already exist"},
		{"missing email", `{"password":"pw"}`, http.StatusBadRequest, "Missing email"},
		{"missing password", `{"email":"c@d.com"}`, http.StatusBadRequest, "Missing password"},
		{"bad json", `{`, http.StatusBadRequest, "Invalid JSON body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(mux, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tc.body)))
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, body["error"])
				return
			}
			assert.Equal(t, "a@b.com", body["email"])
			assert.NotEmpty(t, body["id"])
			assert.NotContains(t, body, "password")
		})
	}
}

func TestHandler_ConnectMeDisconnect(t *testing.T) {
	mux, svc := newTestMux(t)
	_, err := svc.RegisterUser(t.Context(), "a@b.com", "pw")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	rec := do(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.SetBasicAuth("a@b.com", "wrong")
	rec = do(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.SetBasicAuth("a@b.com", "pw")
	rec = do(mux, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)

	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(TokenHeader, out.Token)
	rec = do(mux, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)

	req = httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	req.Header.Set(TokenHeader, out.Token)
	rec = do(mux, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(TokenHeader, out.Token)
	rec = do(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.RegisterUser(t.Context(), "a@b.com", "pw")
	require.NoError(t, err)
	token, err := svc.IssueSession(t.Context(), "a@b.com", "pw")
	require.NoError(t, err)

	var seen string
	next := func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	rec := httptest.NewRecorder()
	svc.RequireToken(next)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, token)
	rec = httptest.NewRecorder()
	svc.RequireToken(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, seen)

	seen = "stale"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "bogus")
	rec = httptest.NewRecorder()
	svc.OptionalToken(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen)
}
