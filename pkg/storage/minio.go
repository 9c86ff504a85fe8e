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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/util"
)

// MinioOptions configures the object-store content backend.
type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// MinioContentStore implements ContentStore on a MinIO/S3 bucket.
type MinioContentStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinioContentStore creates the client and makes sure the bucket exists.
func NewMinioContentStore(ctx context.Context, opts MinioOptions) (*MinioContentStore, error) {
	if opts.Endpoint == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" || opts.Bucket == "" {
		return nil, errors.New("minio endpoint, credentials and bucket must be set")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create minio bucket %q: %w", opts.Bucket, err)
		}
		fwlog.Infof("Created MinIO bucket: %s", opts.Bucket)
	}

	return &MinioContentStore{client: client, bucketName: opts.Bucket}, nil
}

// Put implements the ContentStore interface.
func (m *MinioContentStore) Put(ctx context.Context, data []byte) (string, error) {
	ref := util.NewContentID()
	_, err := m.client.PutObject(ctx, m.bucketName, ref, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", ref, err)
	}
	return ref, nil
}

// Get implements the ContentStore interface.
func (m *MinioContentStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if !util.IsContentID(ref) {
		return nil, fmt.Errorf("content %q: %w", ref, ErrNotFound)
	}
	obj, err := m.client.GetObject(ctx, m.bucketName, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(ref, err)
	}
	defer func() {
		if closeErr := obj.Close(); closeErr != nil {
			fwlog.Warnf("Failed to close minio object %s: %v", ref, closeErr)
		}
	}()

	// GetObject is lazy; a missing key only surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinioErr(ref, err)
	}
	return data, nil
}

// Delete implements the ContentStore interface.
func (m *MinioContentStore) Delete(ctx context.Context, ref string) error {
	if !util.IsContentID(ref) {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucketName, ref, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioErr(ref, err)
	}
	return nil
}

func mapMinioErr(ref string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return fmt.Errorf("content %s: %w", ref, ErrNotFound)
	}
	return fmt.Errorf("minio %s: %w", ref, err)
}
