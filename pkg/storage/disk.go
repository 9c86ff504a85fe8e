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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fawa-io/filemanager/pkg/util"
)

// DiskContentStore implements ContentStore on a local directory. Blobs are
// stored as one file per content id; the directory is created on first
// write.
type DiskContentStore struct {
	dir string
}

// NewDiskContentStore returns a store rooted at dir.
func NewDiskContentStore(dir string) (*DiskContentStore, error) {
	if dir == "" {
		return nil, errors.New("content dir cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	return &DiskContentStore{dir: abs}, nil
}

// Dir returns the absolute root directory.
func (d *DiskContentStore) Dir() string {
	return d.dir
}

// Put implements the ContentStore interface.
func (d *DiskContentStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := util.EnsureDir(d.dir); err != nil {
		return "", err
	}

	ref := util.NewContentID()
	path := filepath.Join(d.dir, ref)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename temp file: %w", err)
	}
	return ref, nil
}

// Get implements the ContentStore interface.
func (d *DiskContentStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// Delete implements the ContentStore interface. Deleting a missing blob
// is not an error.
func (d *DiskContentStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove content: %w", err)
	}
	return nil
}

// path rejects anything that is not a generated id, so a stored ref can
// never point outside the root.
func (d *DiskContentStore) path(ref string) (string, error) {
	if !util.IsContentID(ref) {
		return "", fmt.Errorf("content %q: %w", ref, ErrNotFound)
	}
	return filepath.Join(d.dir, ref), nil
}
