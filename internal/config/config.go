// Package config loads the swingdash configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tradercopilot/swingdash/internal/core"
)

// EnvPrefix prefixes environment overrides, e.g. SWINGDASH_BACKEND_BASE_URL.
const EnvPrefix = "SWINGDASH"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Mode is "debug" or "release".
	Mode string `mapstructure:"mode"`
	// PublicURL is the externally visible dashboard address, reported at
	// startup and by the CLI.
	PublicURL string        `mapstructure:"public_url"`
	MaxJobs   int           `mapstructure:"max_jobs"`
	JobTTL    time.Duration `mapstructure:"job_ttl"`
	// TemplatesDir overrides the embedded page templates when set.
	TemplatesDir string `mapstructure:"templates_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type BackendConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ProTimeout time.Duration `mapstructure:"pro_timeout"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// Store is "memory" or "redis".
	Store      string `mapstructure:"store"`
	TokenFile  string `mapstructure:"token_file"`
	CookieFile string `mapstructure:"cookie_file"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AdminConfig struct {
	OwnerEmails []string `mapstructure:"owner_emails"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	BaseURL  string `mapstructure:"base_url"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	// APIKey, when set, is required (X-API-Key or bearer) to scrape metrics.
	APIKey string `mapstructure:"api_key"`
}

// RateLimitConfig throttles login and signup submissions per client.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Load reads configuration from file. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Admin.OwnerEmails = splitList(cfg.Admin.OwnerEmails)

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.public_url", d.Server.PublicURL)
	v.SetDefault("server.max_jobs", d.Server.MaxJobs)
	v.SetDefault("server.job_ttl", d.Server.JobTTL)
	v.SetDefault("server.templates_dir", d.Server.TemplatesDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.pro_timeout", d.Backend.ProTimeout)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.store", d.Session.Store)
	v.SetDefault("session.token_file", d.Session.TokenFile)
	v.SetDefault("session.cookie_file", d.Session.CookieFile)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("admin.owner_emails", d.Admin.OwnerEmails)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.s3.bucket", d.Archive.S3.Bucket)
	v.SetDefault("archive.s3.endpoint", d.Archive.S3.Endpoint)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", d.Archive.S3.AccessKey)
	v.SetDefault("archive.s3.secret_key", d.Archive.S3.SecretKey)
	v.SetDefault("archive.s3.prefix", d.Archive.S3.Prefix)
	v.SetDefault("telegram.bot_token", d.Telegram.BotToken)
	v.SetDefault("telegram.base_url", d.Telegram.BaseURL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.api_key", d.Metrics.APIKey)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}

// splitList accepts both YAML lists and a single comma-separated value,
// as delivered by an environment override.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			Mode:    "release",
			MaxJobs: 100,
			JobTTL:  time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		Backend: BackendConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    60 * time.Second,
			ProTimeout: 90 * time.Second,
		},
		Session: SessionConfig{
			TTL:   7 * 24 * time.Hour,
			Store: "memory",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "data/archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     0.5,
			Burst:   5,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server mode must be debug or release, got %q", c.Server.Mode))
	}

	if c.Backend.Timeout <= 0 || c.Backend.ProTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backend timeouts must be positive"))
	}
	if c.Backend.ProTimeout < c.Backend.Timeout {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("pro_timeout (%s) must not be shorter than timeout (%s)", c.Backend.ProTimeout, c.Backend.Timeout))
	}

	if c.Session.TTL <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL))
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("redis addr required when session store is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session store must be memory or redis, got %q", c.Session.Store))
	}

	for _, email := range c.Admin.OwnerEmails {
		if _, err := mail.ParseAddress(email); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("invalid owner email %q", email))
		}
	}

	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required for localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required for s3"))
		}
	case "", "none":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs, s3 or none, got %q", c.Archive.Type))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rate_limit needs positive rps and burst"))
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
