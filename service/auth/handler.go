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

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/respond"
)

// Handler exposes the auth service over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the session and user routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /connect", h.Connect)
	mux.HandleFunc("GET /disconnect", h.Disconnect)
	mux.HandleFunc("POST /users", h.CreateUser)
	mux.HandleFunc("GET /users/me", h.Me)
}

// Connect exchanges Basic credentials for a token.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		respond.Error(w, r, apperr.Unauthorized(nil))
		return
	}
	token, err := h.svc.IssueSession(r.Context(), email, password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// Disconnect revokes the X-Token session.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RevokeSession(r.Context(), r.Header.Get(TokenHeader)); err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser registers a new account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.Invalid("Invalid JSON body"))
		return
	}
	user, err := h.svc.RegisterUser(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

// Me returns the user behind X-Token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
