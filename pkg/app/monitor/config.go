package monitor

import (
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/config"
)

const (
	DefaultSessionCheckInterval = 5 * time.Second
	DefaultEventLogCapacity     = 100
	DefaultDevtoolsThreshold    = 160
	DefaultLoginPath            = "/login"

	securityViolationQuery = "?error=security_violation"
)

var DefaultSensitiveMarkers = []string{"auth", "token", "user"}

type Config struct {
	SessionCheckInterval time.Duration
	SensitiveMarkers     []string
	AuthTokenKey         string
	TokenKey             string
	UserKey              string
	LoginPath            string
	EventLogCapacity     int
	DevtoolsThreshold    int
}

func DefaultConfig() Config {
	return Config{
		SessionCheckInterval: DefaultSessionCheckInterval,
		SensitiveMarkers:     append([]string(nil), DefaultSensitiveMarkers...),
		AuthTokenKey:         "authToken",
		TokenKey:             "token",
		UserKey:              "user",
		LoginPath:            DefaultLoginPath,
		EventLogCapacity:     DefaultEventLogCapacity,
		DevtoolsThreshold:    DefaultDevtoolsThreshold,
	}
}

// NewConfig maps the monitor section of the application config, falling back
// to defaults for unset values.
func NewConfig(c config.MonitorConfig) Config {
	cfg := DefaultConfig()
	if c.SessionCheckInterval > 0 {
		cfg.SessionCheckInterval = c.SessionCheckInterval
	}
	if len(c.SensitiveMarkers) > 0 {
		cfg.SensitiveMarkers = append([]string(nil), c.SensitiveMarkers...)
	}
	if c.AuthTokenKey != "" {
		cfg.AuthTokenKey = c.AuthTokenKey
	}
	if c.TokenKey != "" {
		cfg.TokenKey = c.TokenKey
	}
	if c.UserKey != "" {
		cfg.UserKey = c.UserKey
	}
	if c.LoginPath != "" {
		cfg.LoginPath = c.LoginPath
	}
	if c.EventLogCapacity > 0 {
		cfg.EventLogCapacity = c.EventLogCapacity
	}
	if c.DevtoolsThreshold > 0 {
		cfg.DevtoolsThreshold = c.DevtoolsThreshold
	}
	return cfg
}

func (c Config) artifactKeys() []string {
	return []string{c.AuthTokenKey, c.TokenKey, c.UserKey}
}

func (c Config) loginTarget() string {
	return c.LoginPath + securityViolationQuery
}
