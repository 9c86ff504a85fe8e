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
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/model"
	"github.com/fawa-io/filemanager/pkg/storage"
	"github.com/fawa-io/filemanager/pkg/util"
)

// DefaultSessionTTL is how long an issued token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// UserStore is the part of the metadata store the auth service needs.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	InsertUser(ctx context.Context, u *model.User) (string, error)
}

// Service registers users and issues, resolves and revokes session tokens.
type Service struct {
	users    UserStore
	sessions storage.SessionStore
	ttl      time.Duration
	newToken func() string
}

// NewService wires the service to its stores. A non-positive ttl selects
// DefaultSessionTTL.
func NewService(users UserStore, sessions storage.SessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		newToken: util.NewToken,
	}
}

// HashPassword is the legacy credential digest: hex SHA-1 of the raw
// password, unsalted. Stored hashes depend on it.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// IssueSession checks the credentials and stores a new token for the user.
// Every failure, including store failures, is reported as Unauthenticated.
func (s *Service) IssueSession(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Unauthorized(errors.New("missing credentials"))
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			fwlog.Errorf("Failed to look up user %s: %v", email, err)
		}
		return "", apperr.Unauthorized(err)
	}
	if subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(user.PasswordHash)) != 1 {
		return "", apperr.Unauthorized(errors.New("password mismatch"))
	}

	token := s.newToken()
	if err := s.sessions.Set(ctx, token, user.ID, s.ttl); err != nil {
		fwlog.Errorf("Failed to store session for user %s: %v", user.ID, err)
		return "", apperr.Unauthorized(err)
	}
	fwlog.Debugf("Session issued for user %s", user.ID)
	return token, nil
}

// RevokeSession deletes the session behind token. Unknown tokens fail
// with Unauthenticated, so a second logout is rejected.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Unauthorized(errors.New("missing token"))
	}
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			fwlog.Errorf("Failed to read session: %v", err)
		}
		return apperr.Unauthorized(err)
	}
	if err := s.sessions.Del(ctx, token); err != nil {
		fwlog.Errorf("Failed to delete session of user %s: %v", userID, err)
		return apperr.Unauthorized(err)
	}
	fwlog.Debugf("Session revoked for user %s", userID)
	return nil
}

// ResolveSession returns the user id bound to token. A missing token and
// a missing or expired session are the same Unauthenticated error; only a
// store failure is Internal.
func (s *Service) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.Unauthorized(errors.New("missing token"))
	}
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.Unauthorized(err)
		}
		return "", apperr.InternalErr(err)
	}
	return userID, nil
}

// RegisterUser creates an account. The returned user carries no hash.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, apperr.Invalid("Missing email")
	}
	if password == "" {
		return nil, apperr.Invalid("Missing password")
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.ConflictErr("Already exist")
	case !errors.Is(err, storage.ErrNotFound):
		return nil, apperr.InternalErr(err)
	}

	id, err := s.users.InsertUser(ctx, &model.User{Email: email, PasswordHash: HashPassword(password)})
	if err != nil {
		// a concurrent registration can pass the lookup above
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.ConflictErr("Already exist")
		}
		return nil, apperr.InternalErr(err)
	}
	fwlog.Infof("User %s registered", id)
	return &model.User{ID: id, Email: email}, nil
}

// CurrentUser resolves token and loads its user. A session whose user no
// longer exists is treated as unauthenticated.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return nil, apperr.Unauthorized(err)
		}
		return nil, apperr.InternalErr(err)
	}
	return &model.User{ID: user.ID, Email: user.Email}, nil
}
