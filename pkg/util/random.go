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

package util

import (
	"github.com/google/uuid"
)

// NewToken returns a random, unguessable session token.
func NewToken() string {
	return uuid.NewString()
}

// NewContentID returns a fresh identifier for a content blob.
func NewContentID() string {
	return uuid.NewString()
}

// IsContentID reports whether s was produced by NewContentID.
func IsContentID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
