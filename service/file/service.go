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
	"context"
	"encoding/base64"
	"errors"
	"math"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/model"
	"github.com/fawa-io/filemanager/pkg/storage"
	"github.com/fawa-io/filemanager/pkg/util"
)

// PageSize is the number of nodes returned per ListChildren page.
const PageSize = 20

// NodeStore is the part of the metadata store the file service needs.
type NodeStore interface {
	FindFile(ctx context.Context, id string) (*model.FileNode, error)
	InsertFile(ctx context.Context, n *model.FileNode) (string, error)
	ListFiles(ctx context.Context, ownerID string, parent model.ParentRef, skip, limit int64) ([]*model.FileNode, error)
	UpdateFileVisibility(ctx context.Context, id string, public bool) error
}

// Service creates, lists and serves file nodes. Metadata and bytes live
// in separate stores and are written without a shared transaction.
type Service struct {
	nodes   NodeStore
	content storage.ContentStore
}

func NewService(nodes NodeStore, content storage.ContentStore) *Service {
	return &Service{nodes: nodes, content: content}
}

// CreateParams is an upload request. Data is base64 and is required for
// file and image nodes only.
type CreateParams struct {
	Name     string
	Type     string
	Parent   model.ParentRef
	IsPublic bool
	Data     string
}

// Content is a node together with its bytes.
type Content struct {
	Node     *model.FileNode
	Data     []byte
	MimeType string
}

// CreateFolder creates a folder node owned by userID.
func (s *Service) CreateFolder(ctx context.Context, userID, name string, parent model.ParentRef, isPublic bool) (*model.FileNode, error) {
	return s.Create(ctx, userID, CreateParams{
		Name:     name,
		Type:     string(model.KindFolder),
		Parent:   parent,
		IsPublic: isPublic,
	})
}

// CreateFile stores data and creates a file or image node referencing it.
func (s *Service) CreateFile(ctx context.Context, userID, name string, kind model.Kind, parent model.ParentRef, isPublic bool, data string) (*model.FileNode, error) {
	if !kind.HasContent() {
		return nil, apperr.Invalid("Missing type")
	}
	return s.Create(ctx, userID, CreateParams{
		Name:     name,
		Type:     string(kind),
		Parent:   parent,
		IsPublic: isPublic,
		Data:     data,
	})
}

// Create validates p and persists the node. All validation happens before
// the content store is touched. Content is written first; if the metadata
// insert then fails the blob is deleted on a best-effort basis, so a crash
// between the two writes can still leave an unreferenced blob behind.
func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*model.FileNode, error) {
	if p.Name == "" {
		return nil, apperr.Invalid("Missing name")
	}
	kind, ok := model.ParseKind(p.Type)
	if !ok {
		return nil, apperr.Invalid("Missing type")
	}

	var data []byte
	if kind.HasContent() {
		if p.Data == "" {
			return nil, apperr.Invalid("Missing data")
		}
		var err error
		if data, err = decodeBase64(p.Data); err != nil {
			return nil, apperr.Invalid("Invalid data")
		}
	}

	if err := s.checkParent(ctx, p.Parent); err != nil {
		return nil, err
	}

	node := &model.FileNode{
		OwnerID:  userID,
		Name:     p.Name,
		Kind:     kind,
		Parent:   p.Parent,
		IsPublic: p.IsPublic,
	}

	if kind.HasContent() {
		ref, err := s.content.Put(ctx, data)
		if err != nil {
			return nil, apperr.InternalErr(err)
		}
		node.ContentRef = ref
	}

	id, err := s.nodes.InsertFile(ctx, node)
	if err != nil {
		if node.ContentRef != "" {
			if delErr := s.content.Delete(context.WithoutCancel(ctx), node.ContentRef); delErr != nil {
				fwlog.Errorf("Orphaned content %s after failed insert: %v", node.ContentRef, delErr)
			}
		}
		return nil, apperr.InternalErr(err)
	}
	node.ID = id

	fwlog.Infof("User %s created %s %s (%s)", userID, kind, id, p.Name)
	return node, nil
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// checkParent verifies that a non-root parent exists and is a folder.
func (s *Service) checkParent(ctx context.Context, parent model.ParentRef) error {
	if parent.IsRoot() {
		return nil
	}
	node, err := s.nodes.FindFile(ctx, parent.ID())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return apperr.Invalid("Parent not found")
		}
		return apperr.InternalErr(err)
	}
	if node.Kind != model.KindFolder {
		return apperr.Invalid("Parent is not a folder")
	}
	return nil
}

// find loads a node visible to requester. Missing, malformed and
// forbidden ids all yield the same NotFound.
func (s *Service) find(ctx context.Context, requester, id string) (*model.FileNode, error) {
	node, err := s.nodes.FindFile(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return nil, apperr.NotFoundErr()
		}
		return nil, apperr.InternalErr(err)
	}
	if !node.VisibleTo(requester) {
		return nil, apperr.NotFoundErr()
	}
	return node, nil
}

// GetNode returns the node if requester owns it or it is public. An empty
// requester is anonymous.
func (s *Service) GetNode(ctx context.Context, requester, id string) (*model.FileNode, error) {
	return s.find(ctx, requester, id)
}

// ListChildren returns one page of userID's nodes under parentID. An empty
// or "0" parentID lists the top level; an id that cannot be parsed lists
// nothing, and so does a page whose offset does not fit in an int64.
func (s *Service) ListChildren(ctx context.Context, userID, parentID string, page int) ([]*model.FileNode, error) {
	if page < 0 {
		page = 0
	}
	if int64(page) > math.MaxInt64/PageSize {
		return []*model.FileNode{}, nil
	}
	nodes, err := s.nodes.ListFiles(ctx, userID, model.ParseParent(parentID), int64(page)*PageSize, PageSize)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			return []*model.FileNode{}, nil
		}
		return nil, apperr.InternalErr(err)
	}
	return nodes, nil
}

// SetVisibility publishes or unpublishes a node. Only the owner may do
// so; anyone else gets NotFound even for public nodes.
func (s *Service) SetVisibility(ctx context.Context, userID, id string, public bool) (*model.FileNode, error) {
	node, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if node.OwnerID != userID {
		return nil, apperr.NotFoundErr()
	}
	if err := s.nodes.UpdateFileVisibility(ctx, id, public); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFoundErr()
		}
		return nil, apperr.InternalErr(err)
	}
	node.IsPublic = public
	return node, nil
}

// ReadContent returns the bytes of a file or image node. A missing blob
// is reported as NotFound rather than as a server fault.
func (s *Service) ReadContent(ctx context.Context, requester, id string) (*Content, error) {
	node, err := s.find(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if node.Kind == model.KindFolder {
		return nil, apperr.Invalid("kind is folder")
	}
	if node.ContentRef == "" {
		return nil, apperr.NotFoundErr()
	}

	data, err := s.content.Get(ctx, node.ContentRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fwlog.Warnf("Content %s of node %s is missing", node.ContentRef, node.ID)
			return nil, apperr.NotFoundErr()
		}
		return nil, apperr.InternalErr(err)
	}
	return &Content{Node: node, Data: data, MimeType: util.MimeType(node.Name)}, nil
}
