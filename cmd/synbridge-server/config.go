package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	synbridge "github.com/synian-app/synbridge"
	"github.com/synian-app/synbridge/session"
)

// serverConfig is everything the process needs beyond the engine config:
// listen address, HTTP timeouts, and the Redis connection when the redis
// session driver is selected.
type serverConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`

	Core struct {
		BaseURL   string        `mapstructure:"base_url"`
		APIKey    string        `mapstructure:"api_key"`
		APISecret string        `mapstructure:"api_secret"`
		CompanyID string        `mapstructure:"company_id"`
		UserID    string        `mapstructure:"user_id"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"core"`

	Auth struct {
		MaxAttempts     int           `mapstructure:"max_attempts"`
		LockoutCooldown time.Duration `mapstructure:"lockout_cooldown"`
	} `mapstructure:"auth"`

	Session struct {
		Driver string        `mapstructure:"driver"`
		TTL    time.Duration `mapstructure:"ttl"`
		Prefix string        `mapstructure:"prefix"`
	} `mapstructure:"session"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

// loadConfig reads the SYNBRIDGE_* environment. Every key has a default
// except the Core credentials, which Validate will catch downstream.
func loadConfig() (serverConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SYNBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("read_header_timeout", 5*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("core.base_url", "https://api.synian.app")
	v.SetDefault("core.api_key", "")
	v.SetDefault("core.api_secret", "")
	v.SetDefault("core.company_id", "00000000-0000-0000-0000-000000000000")
	v.SetDefault("core.user_id", "00000000-0000-0000-0000-000000000000")
	v.SetDefault("core.timeout", 8*time.Second)

	v.SetDefault("auth.max_attempts", 3)
	v.SetDefault("auth.lockout_cooldown", 3*time.Minute)

	v.SetDefault("session.driver", string(session.DriverMemory))
	v.SetDefault("session.ttl", 5*time.Minute)
	v.SetDefault("session.prefix", "sb")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	var cfg serverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return serverConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// engineConfig projects the environment onto the library defaults,
// overriding only what the environment sets.
func (c serverConfig) engineConfig() synbridge.Config {
	cfg := synbridge.DefaultConfig()
	cfg.Core.BaseURL = c.Core.BaseURL
	cfg.Core.APIKey = c.Core.APIKey
	cfg.Core.APISecret = c.Core.APISecret
	cfg.Core.CompanyID = c.Core.CompanyID
	cfg.Core.UserID = c.Core.UserID
	cfg.Core.Timeout = c.Core.Timeout
	cfg.Auth.MaxAttempts = c.Auth.MaxAttempts
	cfg.Auth.LockoutCooldown = c.Auth.LockoutCooldown
	cfg.Session.Driver = session.Driver(c.Session.Driver)
	cfg.Session.InactivityTTL = c.Session.TTL
	cfg.Session.RedisPrefix = c.Session.Prefix
	return cfg
}
