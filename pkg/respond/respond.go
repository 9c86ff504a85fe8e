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

// Package respond writes JSON responses for the HTTP handlers.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/fwlog"
)

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fwlog.Warnf("Failed to encode response: %v", err)
	}
}

// Error maps err onto a status code and writes {"error": "..."}.
// Internal causes are logged and replaced by a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		fwlog.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		fwlog.Debugf("%s %s rejected (%s): %v", r.Method, r.URL.Path, kind, err)
	}
	JSON(w, apperr.HTTPStatus(kind), map[string]string{"error": apperr.Message(err)})
}
