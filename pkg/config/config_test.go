package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Monitor.SessionCheckInterval)
	assert.Equal(t, []string{"auth", "token", "user"}, cfg.Monitor.SensitiveMarkers)
	assert.Equal(t, "authToken", cfg.Monitor.AuthTokenKey)
	assert.Equal(t, "token", cfg.Monitor.TokenKey)
	assert.Equal(t, "user", cfg.Monitor.UserKey)
	assert.Equal(t, "/login", cfg.Monitor.LoginPath)
	assert.Equal(t, 100, cfg.Monitor.EventLogCapacity)
	assert.Equal(t, 160, cfg.Monitor.DevtoolsThreshold)
	assert.Equal(t, 8080, cfg.Server.AdminPort)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFile_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  admin_port: 18080
monitor:
  session_check_interval: 2s
  login_path: /signin
  sensitive_markers: [session, jwt]
telemetry:
  enabled: true
  exporters:
    - name: kafka
      settings:
        host: localhost
        port: "9092"
        topic: security-events
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))
	t.Setenv("MONITOR_LOGIN_PATH", "/auth/login")

	cfg, err := config.LoadFile(dir)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.Server.AdminPort)
	assert.Equal(t, 2*time.Second, cfg.Monitor.SessionCheckInterval)
	assert.Equal(t, "/auth/login", cfg.Monitor.LoginPath)
	assert.Equal(t, []string{"session", "jwt"}, cfg.Monitor.SensitiveMarkers)
	require.Len(t, cfg.Telemetry.ExporterCfg, 1)
	assert.Equal(t, "kafka", cfg.Telemetry.ExporterCfg[0].Name)
	assert.Equal(t, "security-events", cfg.Telemetry.ExporterCfg[0].Settings["topic"])
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Document: config.DocumentConfig{Origin: "http://localhost"},
			Monitor: config.MonitorConfig{
				SessionCheckInterval: time.Second,
				EventLogCapacity:     10,
				SensitiveMarkers:     []string{"auth"},
				LoginPath:            "/login",
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		errMsg string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"zero interval", func(c *config.Config) { c.Monitor.SessionCheckInterval = 0 }, "session_check_interval"},
		{"zero capacity", func(c *config.Config) { c.Monitor.EventLogCapacity = 0 }, "event_log_capacity"},
		{"no markers", func(c *config.Config) { c.Monitor.SensitiveMarkers = nil }, "sensitive_markers"},
		{"relative login", func(c *config.Config) { c.Monitor.LoginPath = "login" }, "login_path"},
		{"no origin", func(c *config.Config) { c.Document.Origin = "" }, "document.origin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
