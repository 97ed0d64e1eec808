// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "source", "MW2_2022")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "source=MW2_2022")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("extracted entries", "count", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "extracted entries", rec["msg"])
	assert.Equal(t, float64(3), rec["count"])
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "weapon-catalog.log")
	var buf bytes.Buffer
	logger, closer, err := New(Options{Output: &buf, File: path})
	require.NoError(t, err)

	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	assert.Error(t, err)

	_, _, err = New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewFromConfig_VerboseForcesDebug(t *testing.T) {
	logger, closer, err := NewFromConfig(types.LogConfig{Level: "error"}, true)
	require.NoError(t, err)
	defer closer.Close()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
