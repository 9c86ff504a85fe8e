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

package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fawa-io/filemanager/pkg/model"
	"github.com/fawa-io/filemanager/pkg/storage"
)

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessionStore()
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, "tok", "u1", time.Hour))
	got, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got)

	now = now.Add(time.Hour)
	_, err = s.Get(ctx, "tok")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_SetResetsTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessionStore()
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, "tok", "u1", time.Hour))
	now = now.Add(50 * time.Minute)
	require.NoError(t, s.Set(ctx, "tok", "u1", time.Hour))
	now = now.Add(50 * time.Minute)

	_, err := s.Get(ctx, "tok")
	assert.NoError(t, err)

	require.NoError(t, s.Del(ctx, "tok"))
	_, err = s.Get(ctx, "tok")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMetadataStore_ListFilesPaging(t *testing.T) {
	ctx := context.Background()
	m := NewMetadataStore()
	owner, err := m.InsertUser(ctx, &model.User{Email: "a@b.com"})
	require.NoError(t, err)
	other, err := m.InsertUser(ctx, &model.User{Email: "c@d.com"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := m.InsertFile(ctx, &model.FileNode{OwnerID: owner, Name: "n", Kind: model.KindFolder, Parent: model.Root})
		require.NoError(t, err)
	}
	_, err = m.InsertFile(ctx, &model.FileNode{OwnerID: other, Name: "x", Kind: model.KindFolder, Parent: model.Root})
	require.NoError(t, err)

	page, err := m.ListFiles(ctx, owner, model.Root, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = m.ListFiles(ctx, owner, model.Root, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = m.ListFiles(ctx, owner, model.Root, 6, 3)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMetadataStore_Errors(t *testing.T) {
	ctx := context.Background()
	m := NewMetadataStore()

	_, err := m.InsertUser(ctx, &model.User{Email: "a@b.com"})
	require.NoError(t, err)
	_, err = m.InsertUser(ctx, &model.User{Email: "a@b.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = m.FindFile(ctx, "bad")
	assert.ErrorIs(t, err, storage.ErrInvalidID)

	_, err = m.FindFile(ctx, "5f1d7f3e9b1e8a3f4c2b1a00")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = m.UpdateFileVisibility(ctx, "5f1d7f3e9b1e8a3f4c2b1a00", true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMetadataStore_IDsAreCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := NewMetadataStore()
	owner, err := m.InsertUser(ctx, &model.User{Email: "a@b.com"})
	require.NoError(t, err)

	folder, err := m.InsertFile(ctx, &model.FileNode{OwnerID: strings.ToUpper(owner), Name: "docs", Kind: model.KindFolder})
	require.NoError(t, err)
	_, err = m.InsertFile(ctx, &model.FileNode{
		OwnerID: owner,
		Name:    "a.txt",
		Kind:    model.KindFile,
		Parent:  model.ParentNode(strings.ToUpper(folder)),
	})
	require.NoError(t, err)

	u, err := m.FindUserByID(ctx, strings.ToUpper(owner))
	require.NoError(t, err)
	assert.Equal(t, owner, u.ID)

	n, err := m.FindFile(ctx, strings.ToUpper(folder))
	require.NoError(t, err)
	assert.Equal(t, owner, n.OwnerID)

	children, err := m.ListFiles(ctx, strings.ToUpper(owner), model.ParentNode(strings.ToUpper(folder)), 0, 10)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, folder, children[0].Parent.ID())

	top, err := m.ListFiles(ctx, owner, model.Root, 0, 10)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	require.NoError(t, m.UpdateFileVisibility(ctx, strings.ToUpper(folder), true))
	n, err = m.FindFile(ctx, folder)
	require.NoError(t, err)
	assert.True(t, n.IsPublic)
}

func TestContentStore(t *testing.T) {
	ctx := context.Background()
	c := NewContentStore()

	ref, err := c.Put(ctx, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	got, err := c.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)

	require.NoError(t, c.Delete(ctx, ref))
	_, err = c.Get(ctx, ref)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
