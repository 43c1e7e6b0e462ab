package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/infra/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncFileWriter_FlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := logger.NewAsyncFileWriter(path, 1024)
	require.NoError(t, err)

	n, err := w.Write([]byte("first line\n"))
	require.NoError(t, err)
	assert.Equal(t, len("first line\n"), n)
	w.Close()
	w.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(data))
}

func TestAsyncConsoleHook_DrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	hook := logger.NewAsyncConsoleHook(&buf, 16)

	l := logger.NewNopLogger()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.AddHook(hook)
	l.WithField("key", "auth_token").Warn("sensitive key written")
	hook.Close()

	assert.Contains(t, buf.String(), "sensitive key written")
	assert.Contains(t, buf.String(), "auth_token")
}

func TestNewLogger_StdoutOnly(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, closeFn, err := logger.NewLogger(logger.Options{Level: tt.level})
			require.NoError(t, err)
			defer closeFn()
			assert.Equal(t, tt.expected, l.GetLevel())
		})
	}
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	l, closeFn, err := logger.NewLogger(logger.Options{Component: "monitor", File: true})
	require.NoError(t, err)
	l.Info("monitor started")
	time.Sleep(10 * time.Millisecond)
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "monitor.log"))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"monitor started"`)
	assert.Contains(t, line, `"level":"info"`)
}
