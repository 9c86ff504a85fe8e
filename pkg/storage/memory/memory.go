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

// Package memory provides in-process implementations of the storage
// interfaces. They keep the same error contract as the Redis, MongoDB and
// disk backends and are used for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fawa-io/filemanager/pkg/model"
	"github.com/fawa-io/filemanager/pkg/storage"
	"github.com/fawa-io/filemanager/pkg/util"
)

var (
	_ storage.SessionStore  = (*SessionStore)(nil)
	_ storage.ContentStore  = (*ContentStore)(nil)
	_ storage.MetadataStore = (*MetadataStore)(nil)
)

type session struct {
	userID  string
	expires time.Time
}

// SessionStore is a map of tokens with lazy expiry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]session), now: time.Now}
}

// SetClock replaces the time source used for expiry.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *SessionStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", storage.ErrNotFound
	}
	if !s.now().Before(sess.expires) {
		delete(s.sessions, token)
		return "", storage.ErrNotFound
	}
	return sess.userID, nil
}

func (s *SessionStore) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	if token == "" || userID == "" {
		return fmt.Errorf("session token and user id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Del(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) Ping(context.Context) error {
	return nil
}

// ContentStore keeps blobs in a map.
type ContentStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewContentStore() *ContentStore {
	return &ContentStore{blobs: make(map[string][]byte)}
}

func (c *ContentStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := util.NewContentID()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blobs[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (c *ContentStore) Get(_ context.Context, ref string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", ref, storage.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (c *ContentStore) Delete(_ context.Context, ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.blobs, ref)
	return nil
}

// Len returns the number of stored blobs.
func (c *ContentStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blobs)
}

// MetadataStore keeps users and nodes in insertion order. Ids are
// generated as ObjectID hex strings so id validation matches MongoDB.
type MetadataStore struct {
	mu    sync.RWMutex
	users []model.User
	files []model.FileNode
}

func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// checkID validates id and returns it in canonical lowercase hex, the
// form MongoDB reports back.
func checkID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", fmt.Errorf("%q: %w", id, storage.ErrInvalidID)
	}
	return oid.Hex(), nil
}

func canonicalParent(p model.ParentRef) (model.ParentRef, error) {
	if p.IsRoot() {
		return p, nil
	}
	id, err := checkID(p.ID())
	if err != nil {
		return model.ParentRef{}, err
	}
	return model.ParentNode(id), nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func (m *MetadataStore) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MetadataStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	id, err := checkID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MetadataStore) InsertUser(_ context.Context, u *model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == u.Email {
			return "", fmt.Errorf("user %s: %w", u.Email, storage.ErrDuplicate)
		}
	}
	rec := *u
	rec.ID = newID()
	m.users = append(m.users, rec)
	return rec.ID, nil
}

func (m *MetadataStore) CountUsers(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func (m *MetadataStore) FindFile(_ context.Context, id string) (*model.FileNode, error) {
	id, err := checkID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.files {
		if m.files[i].ID == id {
			n := m.files[i]
			return &n, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MetadataStore) InsertFile(_ context.Context, n *model.FileNode) (string, error) {
	owner, err := checkID(n.OwnerID)
	if err != nil {
		return "", err
	}
	parent, err := canonicalParent(n.Parent)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *n
	rec.ID = newID()
	rec.OwnerID = owner
	rec.Parent = parent
	m.files = append(m.files, rec)
	return rec.ID, nil
}

func (m *MetadataStore) ListFiles(_ context.Context, ownerID string, parent model.ParentRef, skip, limit int64) ([]*model.FileNode, error) {
	ownerID, err := checkID(ownerID)
	if err != nil {
		return nil, err
	}
	parent, err = canonicalParent(parent)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make([]*model.FileNode, 0)
	var seen int64
	for i := range m.files {
		f := m.files[i]
		if f.OwnerID != ownerID || f.Parent != parent {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		if limit > 0 && int64(len(nodes)) >= limit {
			break
		}
		nodes = append(nodes, &f)
	}
	return nodes, nil
}

func (m *MetadataStore) UpdateFileVisibility(_ context.Context, id string, public bool) error {
	id, err := checkID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.files {
		if m.files[i].ID == id {
			m.files[i].IsPublic = public
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *MetadataStore) CountFiles(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.files)), nil
}

func (m *MetadataStore) Ping(context.Context) error {
	return nil
}
