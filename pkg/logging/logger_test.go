package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerUsesJSON(t *testing.T) {
	logger := NewLogger()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("key", "value").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLoggerHonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger := NewLogger()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewLoggerWithServiceStampsEveryEntry(t *testing.T) {
	logger := NewLoggerWithService("shantyman")

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Info("first")
	logger.WithField("other", 1).Warn("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "shantyman", entry["service"])
	}
}

func TestNewTestLoggerIsSilent(t *testing.T) {
	logger := NewTestLogger()
	assert.Equal(t, logrus.InfoLevel, logger.Level)
	// Writes must not reach stderr; output goes to io.Discard.
	logger.Error("nobody hears this")
}
