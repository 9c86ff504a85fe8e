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

// Package apperr defines the error kinds surfaced by the auth and file
// services and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a service failure.
type Kind int

const (
	// Internal is a backing store or I/O failure. Its cause is logged and
	// never shown to callers.
	Internal Kind = iota
	InvalidInput
	Unauthenticated
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified service error. Message is safe to return to the
// caller; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against another *Error of the same kind, so callers
// can write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind-only sentinels for errors.Is.
var (
	ErrInvalidInput    = &Error{Kind: InvalidInput}
	ErrUnauthenticated = &Error{Kind: Unauthenticated}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrConflict        = &Error{Kind: Conflict}
	ErrInternal        = &Error{Kind: Internal}
)

// Invalid returns an InvalidInput error with a field-specific message.
func Invalid(msg string) error {
	return &Error{Kind: InvalidInput, Message: msg}
}

// Unauthorized returns the uniform Unauthenticated error. cause is kept for
// logging only.
func Unauthorized(cause error) error {
	return &Error{Kind: Unauthenticated, Message: "Unauthorized", Err: cause}
}

// NotFoundErr returns the uniform NotFound error.
func NotFoundErr() error {
	return &Error{Kind: NotFound, Message: "Not found"}
}

// ConflictErr returns a Conflict error with the given message.
func ConflictErr(msg string) error {
	return &Error{Kind: Conflict, Message: msg}
}

// InternalErr wraps an unexpected failure.
func InternalErr(cause error) error {
	return &Error{Kind: Internal, Message: "Internal server error", Err: cause}
}

// KindOf returns the Kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a Kind onto a response status. Conflict answers 400 to
// stay compatible with existing clients of POST /users.
func HTTPStatus(k Kind) int {
	switch k {
	case InvalidInput, Conflict:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
