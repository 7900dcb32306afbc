package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ztop/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"info":  zapcore.InfoLevel,
		"DEBUG": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestSetupLoggingBatchWritesStderr(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := setupLogging(config.LoggingConfig{Level: "debug"}, true, &stderr)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("hello", "pool", "tank")
	logger.V(1).Info("detail")
	logger.V(2).Info("hidden")
	out := stderr.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "tank")
	assert.Contains(t, out, "detail")
	assert.NotContains(t, out, "hidden")
}

func TestSetupLoggingInfoHidesVerbose(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := setupLogging(config.LoggingConfig{}, true, &stderr)
	require.NoError(t, err)
	defer closeLog()
	logger.V(1).Info("detail")
	assert.Empty(t, stderr.String())
}

func TestSetupLoggingInteractiveIsSilent(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := setupLogging(config.LoggingConfig{Level: "debug"}, false, &stderr)
	require.NoError(t, err)
	defer closeLog()
	logger.Info("hello")
	assert.Empty(t, stderr.String())
}

func TestSetupLoggingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ztop.log")
	var stderr bytes.Buffer
	logger, closeLog, err := setupLogging(config.LoggingConfig{File: path}, false, &stderr)
	require.NoError(t, err)
	logger.Info("to file")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Empty(t, stderr.String())
}

func TestSetupLoggingBadFile(t *testing.T) {
	_, _, err := setupLogging(config.LoggingConfig{File: filepath.Join(t.TempDir(), "no", "such", "dir.log")}, true, &bytes.Buffer{})
	assert.Error(t, err)
}
