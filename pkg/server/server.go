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

// Package server assembles the HTTP surface from the stores.
package server

import (
	"net/http"
	"time"

	"github.com/fawa-io/filemanager/pkg/cors"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/storage"
	"github.com/fawa-io/filemanager/service/app"
	"github.com/fawa-io/filemanager/service/auth"
	"github.com/fawa-io/filemanager/service/file"
)

// Deps are the store handles the services run on.
type Deps struct {
	Sessions   storage.SessionStore
	Metadata   storage.MetadataStore
	Content    storage.ContentStore
	SessionTTL time.Duration
}

// NewHandler wires every route behind request logging and CORS.
func NewHandler(d Deps) http.Handler {
	authSvc := auth.NewService(d.Metadata, d.Sessions, d.SessionTTL)
	fileSvc := file.NewService(d.Metadata, d.Content)

	mux := http.NewServeMux()
	auth.NewHandler(authSvc).Register(mux)
	file.NewHandler(fileSvc, authSvc).Register(mux)
	app.NewService(d.Sessions, d.Metadata, d.Metadata).Register(mux)

	return cors.NewCORS().Handler(logRequests(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		fwlog.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
