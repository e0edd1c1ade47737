package authdemo

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Transport.BaseURL != "http://localhost:3001/api" || cfg.Transport.Timeout != 10*time.Second {
		t.Fatalf("unexpected transport defaults: %+v", cfg.Transport)
	}
	if cfg.Mock.Latency != 500*time.Millisecond || cfg.Mock.MeLatency != 200*time.Millisecond {
		t.Fatalf("unexpected mock latencies: %+v", cfg.Mock)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown driver":        func(c *Config) { c.Storage.Driver = "sqlite" },
		"file without dir":      func(c *Config) { c.Storage.Driver = StorageFile },
		"redis without addr":    func(c *Config) { c.Storage.Driver = StorageRedis },
		"unknown verifier":      func(c *Config) { c.Password.Verifier = "bcrypt" },
		"weak argon2":           func(c *Config) { c.Password.Argon2.Memory = 1024 },
		"zero timeout":          func(c *Config) { c.Transport.Timeout = 0 },
		"negative latency":      func(c *Config) { c.Mock.Latency = -time.Second },
		"no transport":          func(c *Config) { c.Transport.BaseURL = ""; c.Transport.Fallback = false },
		"non-http base url":     func(c *Config) { c.Transport.BaseURL = "ftp://example.com" },
		"bad log format":        func(c *Config) { c.Log.Format = "xml" },
		"bad log level":         func(c *Config) { c.Log.Level = "trace" },
		"audit without buffer":  func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 },
		"latency without on":    func(c *Config) { c.Metrics.Enabled = false },
		"excess leeway":         func(c *Config) { c.Server.JWT.Leeway = time.Hour },
		"unknown jwt method":    func(c *Config) { c.Server.JWT.SigningMethod = "rs256" },
		"zero login attempts":   func(c *Config) { c.Server.Limits.MaxLoginAttempts = 0 },
		"empty listen address":  func(c *Config) { c.Server.Listen = "" },
		"zero access token ttl": func(c *Config) { c.Server.JWT.AccessTTL = 0 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestConfigValidateServer(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	cfg.Server.JWT.Secret = "0123456789abcdef0123456789abcdef"
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Server.JWT.SigningMethod = "ed25519"
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected missing ed25519 key file to fail")
	}
}
