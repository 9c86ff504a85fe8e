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

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fawa-io/filemanager/pkg/fwlog"
)

var validate = validator.New()

// Validate checks struct tags and the rules that span several fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if _, err := fwlog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	if cfg.Addr == "" && cfg.Port == 0 {
		return fmt.Errorf("addr: either addr or port must be set")
	}

	switch cfg.Storage.Backend {
	case "disk":
		if cfg.Storage.FolderPath == "" {
			return fmt.Errorf("storage.folderPath: required for the disk backend")
		}
	case "minio":
		m := cfg.Storage.Minio
		if m.Endpoint == "" || m.Bucket == "" {
			return fmt.Errorf("storage.minio: endpoint and bucket are required for the minio backend")
		}
		if m.AccessKeyID == "" || m.SecretAccessKey == "" {
			return fmt.Errorf("storage.minio: access credentials are required for the minio backend")
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
