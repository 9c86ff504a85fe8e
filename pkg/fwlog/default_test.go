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

package fwlog

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

// test package level functions without format
func normalOutput(t *testing.T, testLevel Level, args ...any) string {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	switch testLevel {
	case LevelDebug:
		Debug(args...)
	case LevelInfo:
		Info(args...)
	case LevelWarn:
		Warn(args...)
	case LevelError:
		Error(args...)
	case LevelFatal:
		t.Fatal("fatal method cannot be tested")
	default:
		t.Errorf("unknown level: %d", testLevel)
	}
	return buf.String()
}

// test package level functions with 'format'
func formatOutput(t *testing.T, testLevel Level, format string, args ...any) string {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	switch testLevel {
	case LevelDebug:
		Debugf(format, args...)
	case LevelInfo:
		Infof(format, args...)
	case LevelWarn:
		Warnf(format, args...)
	case LevelError:
		Errorf(format, args...)
	case LevelFatal:
		t.Fatal("fatal method cannot be tested")
	default:
		t.Errorf("unknown level: %d", testLevel)
	}
	return buf.String()
}

func decodeLine(t *testing.T, out string) logLine {
	t.Helper()
	var line logLine
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &line))
	return line
}

func TestOutput(t *testing.T) {
	defer SetLevel(LevelInfo)

	tests := []struct {
		format      string
		args        []any
		testLevel   Level
		loggerLevel Level
		wantMsg     string
		wantLevel   string
	}{
		{"%s %s", []any{"LevelInfo", "test"}, LevelInfo, LevelWarn, "", ""},
		{"%s%s", []any{"LevelDebug", "Test"}, LevelDebug, LevelDebug, "LevelDebugTest", "DEBUG"},
		{"%s", []any{"LevelInfo test"}, LevelInfo, LevelInfo, "LevelInfo test", "INFO"},
		{"%s", []any{"LevelError test"}, LevelError, LevelInfo, "LevelError test", "ERROR"},
		{"%s", []any{"LevelWarn test"}, LevelWarn, LevelWarn, "LevelWarn test", "WARN"},
		{"%s", []any{"LevelDebug test"}, LevelDebug, LevelError, "", ""},
	}

	for _, tt := range tests {
		SetLevel(tt.loggerLevel)
		for _, out := range []string{
			normalOutput(t, tt.testLevel, tt.args...),
			formatOutput(t, tt.testLevel, tt.format, tt.args...),
		} {
			if tt.wantMsg == "" {
				assert.Empty(t, out)
				continue
			}
			line := decodeLine(t, out)
			assert.Equal(t, tt.wantLevel, line.Level)
			assert.Equal(t, tt.wantMsg, line.Msg)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "level(42)", Level(42).String())
}
