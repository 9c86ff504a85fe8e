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

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/fawa-io/filemanager/pkg/model"
)

var (
	// ErrNotFound is returned when a key, document, or blob does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidID is returned when an identifier is not a valid 24-char hex id.
	ErrInvalidID = errors.New("storage: invalid identifier")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("storage: duplicate key")
)

// SessionStore maps opaque tokens to user ids with an expiry.
// Set overwrites an existing entry and resets its TTL.
type SessionStore interface {
	Get(ctx context.Context, token string) (string, error)
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	Del(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

// ContentStore persists file bytes under generated references.
type ContentStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// MetadataStore is the document collection of users and file nodes.
type MetadataStore interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	InsertUser(ctx context.Context, u *model.User) (string, error)
	CountUsers(ctx context.Context) (int64, error)

	FindFile(ctx context.Context, id string) (*model.FileNode, error)
	InsertFile(ctx context.Context, n *model.FileNode) (string, error)
	// ListFiles returns the owner's nodes under parent in insertion order.
	ListFiles(ctx context.Context, ownerID string, parent model.ParentRef, skip, limit int64) ([]*model.FileNode, error)
	UpdateFileVisibility(ctx context.Context, id string, public bool) error
	CountFiles(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

var (
	_ SessionStore  = (*RedisSessionStore)(nil)
	_ ContentStore  = (*DiskContentStore)(nil)
	_ ContentStore  = (*MinioContentStore)(nil)
	_ MetadataStore = (*MongoMetadataStore)(nil)
)
