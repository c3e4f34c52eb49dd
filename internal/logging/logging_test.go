package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/mvref/internal/config"
)

func TestBuildLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(config.LogConfig{Level: "info"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Debug().Msg("hidden")
	log.Info().Str("path", "a.ts").Msg("rewritten")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "rewritten")
	assert.Contains(t, buf.String(), "a.ts")
}

func TestBuildDefaultLevel(t *testing.T) {
	log, err := build(config.LogConfig{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestBuildInvalidLevel(t *testing.T) {
	_, err := build(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuildFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mvref.log")
	log, err := build(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, &bytes.Buffer{})
	require.NoError(t, err)
	log.Debug().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}
