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

// Package model holds the records shared by the stores and services.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Kind is the type of a FileNode.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindFolder, KindFile, KindImage:
		return k, true
	}
	return "", false
}

// HasContent reports whether nodes of this kind own a content blob.
func (k Kind) HasContent() bool {
	return k == KindFile || k == KindImage
}

// RootID is the wire and storage spelling of the top-level parent.
const RootID = "0"

// ParentRef is either Root or a reference to a folder node.
type ParentRef struct {
	id string
}

// Root is the top-level parent.
var Root = ParentRef{}

// ParentNode references the node with the given id. Hex ids are
// case-insensitive and kept in lowercase.
func ParentNode(id string) ParentRef {
	return ParentRef{id: strings.ToLower(id)}
}

// ParseParent reads a parentId as sent by clients. Empty and "0" mean Root.
func ParseParent(s string) ParentRef {
	if s == "" || s == RootID {
		return Root
	}
	return ParentNode(s)
}

func (p ParentRef) IsRoot() bool {
	return p.id == ""
}

// ID returns the referenced node id, or "" for Root.
func (p ParentRef) ID() string {
	return p.id
}

func (p ParentRef) String() string {
	if p.IsRoot() {
		return RootID
	}
	return p.id
}

// MarshalJSON renders Root as the number 0 and node parents as strings.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(p.id)
}

// UnmarshalJSON accepts 0, "0", null, or an id string.
func (p *ParentRef) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*p = Root
	case float64:
		if t != 0 {
			return fmt.Errorf("parentId: unexpected number %s", strconv.FormatFloat(t, 'f', -1, 64))
		}
		*p = Root
	case string:
		*p = ParseParent(t)
	default:
		return fmt.Errorf("parentId: unexpected %T", v)
	}
	return nil
}

// FileNode is a folder, file, or image record.
type FileNode struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"userId"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"type"`
	Parent     ParentRef `json:"parentId"`
	IsPublic   bool      `json:"isPublic"`
	ContentRef string    `json:"-"`
}

// VisibleTo reports whether userID may read the node. An empty userID is
// an anonymous requester.
func (n *FileNode) VisibleTo(userID string) bool {
	return n.IsPublic || (userID != "" && n.OwnerID == userID)
}
