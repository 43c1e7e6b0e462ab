package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Document  DocumentConfig  `mapstructure:"document"`
	Outbound  OutboundConfig  `mapstructure:"outbound"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	AdminPort   int    `mapstructure:"admin_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	// SecretKey signs admin API tokens. Empty disables admin authentication.
	SecretKey string `mapstructure:"secret_key"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    bool   `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DocumentConfig describes the navigation context the monitor protects.
type DocumentConfig struct {
	Origin    string `mapstructure:"origin"`
	UserAgent string `mapstructure:"user_agent"`
	StartPath string `mapstructure:"start_path"`
}

type OutboundConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type MonitorConfig struct {
	SessionCheckInterval time.Duration `mapstructure:"session_check_interval"`
	SensitiveMarkers     []string      `mapstructure:"sensitive_markers"`
	AuthTokenKey         string        `mapstructure:"auth_token_key"`
	TokenKey             string        `mapstructure:"token_key"`
	UserKey              string        `mapstructure:"user_key"`
	LoginPath            string        `mapstructure:"login_path"`
	EventLogCapacity     int           `mapstructure:"event_log_capacity"`
	DevtoolsThreshold    int           `mapstructure:"devtools_threshold"`
}

type TelemetryConfig struct {
	Enabled     bool             `mapstructure:"enabled"`
	Workers     int              `mapstructure:"workers"`
	QueueSize   int              `mapstructure:"queue_size"`
	ExporterCfg []ExporterConfig `mapstructure:"exporters"`
}

type ExporterConfig struct {
	Name     string                 `mapstructure:"name"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

var globalConfig Config

func Load(configPath string) error {
	cfg, err := LoadFile(configPath)
	if err != nil {
		return err
	}
	globalConfig = *cfg
	return nil
}

// LoadFile reads config.yaml from configPath (or ./config, or the working
// directory) and overlays environment variables such as MONITOR_LOGIN_PATH.
// A missing file is not an error; defaults and environment apply.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaultValues(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file config.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.admin_port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.secret_key", "")
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.console", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.prefix", "trustguard:storage:")

	v.SetDefault("document.origin", "http://localhost:3000")
	v.SetDefault("document.user_agent", "TrustGuard")
	v.SetDefault("document.start_path", "/")

	v.SetDefault("outbound.timeout", 10*time.Second)
	v.SetDefault("outbound.max_failures", 5)
	v.SetDefault("outbound.open_timeout", 30*time.Second)

	v.SetDefault("monitor.session_check_interval", 5*time.Second)
	v.SetDefault("monitor.sensitive_markers", []string{"auth", "token", "user"})
	v.SetDefault("monitor.auth_token_key", "authToken")
	v.SetDefault("monitor.token_key", "token")
	v.SetDefault("monitor.user_key", "user")
	v.SetDefault("monitor.login_path", "/login")
	v.SetDefault("monitor.event_log_capacity", 100)
	v.SetDefault("monitor.devtools_threshold", 160)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.workers", 2)
	v.SetDefault("telemetry.queue_size", 1000)
}

func (c *Config) Validate() error {
	if c.Monitor.SessionCheckInterval <= 0 {
		return fmt.Errorf("monitor.session_check_interval must be positive, got %s", c.Monitor.SessionCheckInterval)
	}
	if c.Monitor.EventLogCapacity <= 0 {
		return fmt.Errorf("monitor.event_log_capacity must be positive, got %d", c.Monitor.EventLogCapacity)
	}
	if len(c.Monitor.SensitiveMarkers) == 0 {
		return errors.New("monitor.sensitive_markers must not be empty")
	}
	if !strings.HasPrefix(c.Monitor.LoginPath, "/") {
		return fmt.Errorf("monitor.login_path must start with '/', got %q", c.Monitor.LoginPath)
	}
	if c.Document.Origin == "" {
		return errors.New("document.origin is required")
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
