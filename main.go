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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fawa-io/filemanager/pkg/config"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/server"
	"github.com/fawa-io/filemanager/pkg/storage"
	"github.com/fawa-io/filemanager/pkg/util"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newContentStore(ctx context.Context, cfg config.Storage) (storage.ContentStore, error) {
	switch cfg.Backend {
	case "minio":
		store, err := storage.NewMinioContentStore(ctx, storage.MinioOptions{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			Bucket:          cfg.Minio.Bucket,
			UseSSL:          cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "disk":
		// Create the content dir up front so permission problems surface at startup.
		if err := util.EnsureDir(cfg.FolderPath); err != nil {
			return nil, err
		}
		store, err := storage.NewDiskContentStore(cfg.FolderPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func main() {
	if err := config.InitConfig(); err != nil {
		fwlog.Fatalf("Failed to initialize configuration: %v", err)
	}
	cfg := config.Get()

	lv, err := fwlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fwlog.Fatal(err)
	}
	fwlog.SetLevel(lv)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	sessions, err := storage.NewRedisSessionStore(ctx, storage.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		fwlog.Fatalf("Failed to connect to redis: %v", err)
	}

	metadata, err := storage.NewMongoMetadataStore(ctx, storage.MongoOptions{
		URI:      cfg.Mongo.URI(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		fwlog.Fatalf("Failed to connect to mongodb: %v", err)
	}

	content, err := newContentStore(ctx, cfg.Storage)
	if err != nil {
		fwlog.Fatalf("Failed to initialize %s content store: %v", cfg.Storage.Backend, err)
	}

	fmSrv := &http.Server{
		Addr: cfg.ListenAddr(),
		Handler: server.NewHandler(server.Deps{
			Sessions:   sessions,
			Metadata:   metadata,
			Content:    content,
			SessionTTL: cfg.Session.TTL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	idle := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fwlog.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := fmSrv.Shutdown(ctx); err != nil {
			fwlog.Errorf("Server shutdown error: %v", err)
		}
		if err := sessions.Close(); err != nil {
			fwlog.Errorf("Error closing redis client: %v", err)
		}
		if err := metadata.Close(ctx); err != nil {
			fwlog.Errorf("Error closing mongodb client: %v", err)
		}
		close(idle)
	}()

	fwlog.Infof("Server starting on %v", cfg.ListenAddr())

	if cfg.TLS() {
		err = fmSrv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		err = fmSrv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		fwlog.Fatalf("Failed to start server: %v", err)
	}

	<-idle
	fwlog.Info("Server shutdown complete")
}
