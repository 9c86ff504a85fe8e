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
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMimeType is served when a name has no recognised extension.
const DefaultMimeType = "application/octet-stream"

// The builtin table of the mime package only covers web assets; anything
// else depends on the host's mime.types files.
var extraTypes = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".log":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".tsv":  "text/tab-separated-values",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".bmp":  "image/bmp",
	".ico":  "image/vnd.microsoft.icon",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

func init() {
	for ext, typ := range extraTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// MimeType infers a media type from the extension of name, without
// parameters such as charset.
func MimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return DefaultMimeType
	}
	typ := mime.TypeByExtension(ext)
	if typ == "" {
		return DefaultMimeType
	}
	mediaType, _, err := mime.ParseMediaType(typ)
	if err != nil {
		return DefaultMimeType
	}
	return mediaType
}
