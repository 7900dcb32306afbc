package main

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ztop/config"
)

// Purpose: Map a config level name to a zap level.
// Key aspects: Empty means info; logr's V(1) needs debug to show.
// Upstream: setupLogging.
// Downstream: zapcore levels.
func parseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	}
	return zapcore.InfoLevel, errors.Newf("unknown log level %q", name)
}

// Purpose: Build the process logger.
// Key aspects: The table owns the terminal, so without a log file interactive
// sessions log nowhere; batch mode logs to stderr.
// Upstream: run.
// Downstream: zap core wrapped by zapr.
func setupLogging(cfg config.LoggingConfig, batch bool, stderr io.Writer) (logr.Logger, func(), error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	var (
		w       io.Writer
		closeFn = func() {}
	)
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return logr.Discard(), func() {}, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case batch:
		w = stderr
	default:
		return logr.Discard(), closeFn, nil
	}
	return newLogger(w, level), closeFn, nil
}

func newLogger(w io.Writer, level zapcore.Level) logr.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core)).WithName("ztop")
}
