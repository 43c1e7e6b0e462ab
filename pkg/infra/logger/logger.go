package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir            = "logs"
	fileBufferSize    = 32 * 1024
	consoleBufferSize = 1024
)

type Options struct {
	Component string
	Level     string
	// Console mirrors every entry to stdout.
	Console bool
	// File disables the log file when false; entries then go to stdout only.
	File bool
}

// NewLogger builds the JSON logger shared by every monitor component. The
// returned func flushes and closes the asynchronous writers.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(parseLevel(opts.Level))

	if !opts.File {
		logger.SetOutput(os.Stdout)
		return logger, func() {}, nil
	}

	component := opts.Component
	if component == "" {
		component = "trustguard"
	}
	logFile := filepath.Clean(filepath.Join(logDir, component+".log"))
	if !strings.HasPrefix(logFile, logDir+string(filepath.Separator)) {
		return nil, nil, fmt.Errorf("invalid log file path %q: must be in %s directory", logFile, logDir)
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	closers := []func(){fileWriter.Close}
	if opts.Console {
		hook := NewAsyncConsoleHook(os.Stdout, consoleBufferSize)
		logger.AddHook(hook)
		closers = append([]func(){hook.Close}, closers...)
	}

	return logger, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

// NewNopLogger discards everything. Tests use it when log output is noise.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
