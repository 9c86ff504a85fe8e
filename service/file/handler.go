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

package file

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/model"
	"github.com/fawa-io/filemanager/pkg/respond"
	"github.com/fawa-io/filemanager/service/auth"
)

// Authenticator wraps handlers with session checks.
type Authenticator interface {
	RequireToken(next http.HandlerFunc) http.HandlerFunc
	OptionalToken(next http.HandlerFunc) http.HandlerFunc
}

// Handler exposes the file service over HTTP.
type Handler struct {
	svc  *Service
	auth Authenticator
}

func NewHandler(svc *Service, authn Authenticator) *Handler {
	return &Handler{svc: svc, auth: authn}
}

// Register mounts the file routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /files", h.auth.RequireToken(h.Upload))
	mux.HandleFunc("GET /files", h.auth.RequireToken(h.List))
	mux.HandleFunc("GET /files/{id}", h.auth.RequireToken(h.Show))
	mux.HandleFunc("PUT /files/{id}/publish", h.auth.RequireToken(h.Publish))
	mux.HandleFunc("PUT /files/{id}/unpublish", h.auth.RequireToken(h.Unpublish))
	mux.HandleFunc("GET /files/{id}/data", h.auth.OptionalToken(h.Data))
}

type uploadRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ParentID json.RawMessage `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data"`
}

// parent reads parentId leniently. Values that are not a valid reference
// are kept as a node id so the lookup reports "Parent not found".
func (u *uploadRequest) parent() model.ParentRef {
	if len(u.ParentID) == 0 {
		return model.Root
	}
	var p model.ParentRef
	if err := json.Unmarshal(u.ParentID, &p); err != nil {
		return model.ParentNode(string(u.ParentID))
	}
	return p
}

// Upload creates a folder, file or image.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.Invalid("Invalid JSON body"))
		return
	}
	node, err := h.svc.Create(r.Context(), auth.UserIDFrom(r.Context()), CreateParams{
		Name:     req.Name,
		Type:     req.Type,
		Parent:   req.parent(),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, node)
}

// Show returns a single node.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), auth.UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, node)
}

// List returns a page of the caller's nodes under ?parentId.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 0
	}
	nodes, err := h.svc.ListChildren(r.Context(), auth.UserIDFrom(r.Context()), q.Get("parentId"), page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nodes)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request, public bool) {
	node, err := h.svc.SetVisibility(r.Context(), auth.UserIDFrom(r.Context()), r.PathValue("id"), public)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, node)
}

// Data streams the node content with a Content-Type derived from its name.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.ReadContent(r.Context(), auth.UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content.Data); err != nil {
		fwlog.Warnf("Failed to write content of %s: %v", content.Node.ID, err)
	}
}
