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
	"context"
	"net/http"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/respond"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

type ctxKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFrom returns the user id stored by the middleware, or "" for
// anonymous requests.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// RequireToken rejects requests without a valid X-Token.
func (s *Service) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.ResolveSession(r.Context(), r.Header.Get(TokenHeader))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// OptionalToken resolves X-Token when present. An unknown token leaves the
// request anonymous; a store failure still fails the request.
func (s *Service) OptionalToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TokenHeader)
		if token == "" {
			next(w, r)
			return
		}
		userID, err := s.ResolveSession(r.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.Internal {
				respond.Error(w, r, err)
				return
			}
			next(w, r)
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}
