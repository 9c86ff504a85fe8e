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

// Package app reports backend liveness and usage counters.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/fawa-io/filemanager/pkg/apperr"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/respond"
)

// pingTimeout bounds each liveness probe.
const pingTimeout = 2 * time.Second

// Pinger is a backend that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter exposes the collection sizes reported by /stats.
type Counter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type Service struct {
	sessions Pinger
	db       Pinger
	counter  Counter
}

func NewService(sessions, db Pinger, counter Counter) *Service {
	return &Service{sessions: sessions, db: db, counter: counter}
}

func alive(ctx context.Context, name string, p Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		fwlog.Warnf("%s is not reachable: %v", name, err)
		return false
	}
	return true
}

// Status probes both backends. It never fails.
func (s *Service) Status(ctx context.Context) Status {
	return Status{
		Redis: alive(ctx, "redis", s.sessions),
		DB:    alive(ctx, "db", s.db),
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.counter.CountUsers(ctx)
	if err != nil {
		return Stats{}, apperr.InternalErr(err)
	}
	files, err := s.counter.CountFiles(ctx)
	if err != nil {
		return Stats{}, apperr.InternalErr(err)
	}
	return Stats{Users: users, Files: files}, nil
}

// Register mounts GET /status and GET /stats.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, s.Status(r.Context()))
	})
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Stats(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, stats)
	})
}
