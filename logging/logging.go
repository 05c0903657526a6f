// Package logging writes the append-only audit log of a translation run.
//
// Lines look like:
//
//	2026-01-02 15:04:05,000 - INFO - Successfully loaded JSON file: data/input/example.json
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format of each line.
const TimeLayout = "2006-01-02 15:04:05,000"

// EncoderConfig returns the "time - LEVEL - message" console layout.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

// New returns an INFO-level logger writing to ws.
func New(ws zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(EncoderConfig()), ws, zapcore.InfoLevel)
	return zap.New(core)
}

// Open appends to the log file at path, creating it and its parent
// directory when missing. The returned function flushes and closes the file.
func Open(path string) (*zap.Logger, func(), error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := New(zapcore.Lock(f))
	closeFn := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, closeFn, nil
}
