package synbridge

import (
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Core.BaseURL = "" },
			wantErr: "BaseURL",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Core.Timeout = 0 },
			wantErr: "Timeout",
		},
		{
			name:    "company id not a uuid",
			mutate:  func(c *Config) { c.Core.CompanyID = "acme" },
			wantErr: "CompanyID",
		},
		{
			name:    "user id not a uuid",
			mutate:  func(c *Config) { c.Core.UserID = "bob" },
			wantErr: "UserID",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Auth.MaxAttempts = 0 },
			wantErr: "MaxAttempts",
		},
		{
			name:    "attempts over ceiling",
			mutate:  func(c *Config) { c.Auth.MaxAttempts = 11 },
			wantErr: "MaxAttempts",
		},
		{
			name:    "cooldown policy without cooldown",
			mutate:  func(c *Config) { c.Auth.LockoutCooldown = 0 },
			wantErr: "LockoutCooldown",
		},
		{
			name:    "zero inactivity ttl",
			mutate:  func(c *Config) { c.Session.InactivityTTL = 0 },
			wantErr: "InactivityTTL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestConfigValidate_ResetPolicyIgnoresCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.LockoutPolicy = LockoutPolicyReset
	cfg.Auth.LockoutCooldown = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("reset policy should not require a cooldown: %v", err)
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Core.BaseURL = ""
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("Build should refuse an invalid config")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithCore(&fakeCore{})
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second Build should fail")
	}
}

func TestBuilderRequiresRedisForRedisDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Driver = "redis"
	if _, err := New().WithConfig(cfg).WithCore(&fakeCore{}).Build(); err == nil {
		t.Fatal("redis driver without client should fail")
	}
}
