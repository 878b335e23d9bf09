package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", GetEnv("TEST_STRING", "fallback"))

	t.Setenv("TEST_STRING", "")
	assert.Equal(t, "fallback", GetEnv("TEST_STRING", "fallback"))

	assert.Equal(t, "fallback", GetEnv("TEST_STRING_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("TEST_INT", 7))

	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("TEST_INT", 7))

	t.Setenv("TEST_INT", "")
	assert.Equal(t, 7, GetEnvInt("TEST_INT", 7))
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.value)
		assert.Equal(t, tt.want, GetLogLevel(), "LOG_LEVEL=%q", tt.value)
	}
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOADENV_PROBE=from_file\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("LOADENV_PROBE", "")
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	LoadEnv(logger)

	assert.Equal(t, "from_file", os.Getenv("LOADENV_PROBE"))
}

func TestLoadEnvOverloadsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOADENV_PROBE2=file_wins\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("LOADENV_PROBE2", "process")
	LoadEnv(nil)

	assert.Equal(t, "file_wins", os.Getenv("LOADENV_PROBE2"))
}

func TestLoadEnvNoFiles(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Nothing to load and nothing to crash on.
	LoadEnv(nil)
}
