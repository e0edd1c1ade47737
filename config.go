package authdemo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/internal/audit"
	"github.com/MalcoreHardcore698/authdemo/internal/rate"
	"github.com/MalcoreHardcore698/authdemo/jwt"
	"github.com/MalcoreHardcore698/authdemo/password"
	"github.com/MalcoreHardcore698/authdemo/server"
)

// Config is the full engine configuration. Field tags name the koanf keys
// the CLI loads them from.
type Config struct {
	Transport TransportConfig `koanf:"transport"`
	Mock      MockConfig      `koanf:"mock"`
	Storage   StorageConfig   `koanf:"storage"`
	Password  PasswordConfig  `koanf:"password"`
	Server    ServerConfig    `koanf:"server"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Audit     AuditConfig     `koanf:"audit"`
	Log       LogConfig       `koanf:"log"`
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig configures the primary HTTP stage. With Fallback set,
// any primary failure is retried against the mock backend. An empty
// BaseURL disables the primary stage entirely.
type TransportConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries uint64        `koanf:"max_retries" validate:"lte=10"`
	Backoff    time.Duration `koanf:"backoff" validate:"gte=0"`
	Fallback   bool          `koanf:"fallback"`
}

/*
====================================
MOCK CONFIG
====================================
*/

// MockConfig configures the in-process mock backend.
type MockConfig struct {
	Latency   time.Duration `koanf:"latency" validate:"gte=0"`
	MeLatency time.Duration `koanf:"me_latency" validate:"gte=0"`
	// Seed creates the demo account when the user table is empty.
	Seed bool `koanf:"seed"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// StorageConfig selects the key-value backend for the token, the user
// table and token links. RedisAddr is also used by the demo server's
// throttle and token denylist whatever the driver.
type StorageConfig struct {
	Driver      string `koanf:"driver" validate:"oneof=memory file redis"`
	Dir         string `koanf:"dir" validate:"required_if=Driver file"`
	RedisAddr   string `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisPrefix string `koanf:"redis_prefix"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

const (
	VerifierPlaintext = "plaintext"
	VerifierArgon2    = "argon2"
)

// PasswordConfig selects how the mock store keeps passwords. Stored
// plaintext passwords are upgraded to argon2 on the next successful login
// once the argon2 verifier is selected.
type PasswordConfig struct {
	Verifier string          `koanf:"verifier" validate:"oneof=plaintext argon2"`
	Argon2   password.Config `koanf:"argon2"`
}

/*
====================================
SERVER CONFIG
====================================
*/

// ServerConfig configures the demo backend.
type ServerConfig struct {
	server.Config `koanf:",squash"`
	JWT           JWTConfig   `koanf:"jwt"`
	Limits        rate.Config `koanf:"limits"`
}

// JWTConfig configures bearer tokens. Secret is the HS256 key; Ed25519
// keys are PEM files.
type JWTConfig struct {
	SigningMethod  string        `koanf:"signing_method" validate:"oneof=hs256 ed25519"`
	Secret         string        `koanf:"secret"`
	PrivateKeyFile string        `koanf:"private_key_file"`
	PublicKeyFile  string        `koanf:"public_key_file"`
	AccessTTL      time.Duration `koanf:"access_ttl" validate:"gt=0"`
	Issuer         string        `koanf:"issuer"`
	Audience       string        `koanf:"audience"`
	Leeway         time.Duration `koanf:"leeway" validate:"gte=0,lte=2m"`
	KeyID          string        `koanf:"key_id"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

type MetricsConfig struct {
	Enabled                 bool `koanf:"enabled"`
	EnableLatencyHistograms bool `koanf:"latency_histograms"`
}

// AuditConfig controls the session audit trail. Path "-" or "" writes to
// stderr.
type AuditConfig struct {
	audit.Config `koanf:",squash"`
	Path         string `koanf:"path"`
}

type LogConfig struct {
	Format string `koanf:"format" validate:"oneof=json text"`
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig mirrors the browser application's defaults: the primary
// transport points at localhost:3001 and falls back to a seeded mock
// backend with 500ms latency.
func DefaultConfig() Config {
	return Config{
		Transport: TransportConfig{
			BaseURL:  authapi.DefaultBaseURL,
			Timeout:  10 * time.Second,
			Backoff:  100 * time.Millisecond,
			Fallback: true,
		},
		Mock: MockConfig{
			Latency:   authapi.DefaultMockLatency,
			MeLatency: authapi.DefaultMockMeLatency,
			Seed:      true,
		},
		Storage: StorageConfig{
			Driver:      StorageMemory,
			RedisPrefix: "authdemo",
		},
		Password: PasswordConfig{
			Verifier: VerifierPlaintext,
			Argon2:   password.DefaultConfig(),
		},
		Server: ServerConfig{
			Config: server.DefaultConfig(),
			JWT: JWTConfig{
				SigningMethod: string(jwt.MethodHS256),
				AccessTTL:     time.Hour,
				Issuer:        "authdemo",
				Leeway:        30 * time.Second,
			},
			Limits: rate.DefaultConfig(),
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Audit: AuditConfig{
			Config: audit.Config{BufferSize: 256, DropIfFull: true},
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
	}
}

// Validate checks struct tags, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Transport.BaseURL == "" && !c.Transport.Fallback {
		return fmt.Errorf("%w: transport needs a base_url or fallback", ErrInvalidConfig)
	}
	if c.Transport.BaseURL != "" {
		u := strings.ToLower(c.Transport.BaseURL)
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%w: transport base_url must be http or https", ErrInvalidConfig)
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer_size must be > 0 when enabled", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: metrics latency_histograms requires metrics enabled", ErrInvalidConfig)
	}
	return nil
}

// ValidateServer checks what only the serve command needs.
func (c *Config) ValidateServer() error {
	jc := c.Server.JWT
	switch jwt.SigningMethod(jc.SigningMethod) {
	case jwt.MethodHS256:
		if len(jc.Secret) < 32 {
			return fmt.Errorf("%w: server jwt secret must be at least 32 bytes", ErrInvalidConfig)
		}
	case jwt.MethodEd25519:
		if jc.PrivateKeyFile == "" {
			return fmt.Errorf("%w: server jwt ed25519 requires private_key_file", ErrInvalidConfig)
		}
	}
	return nil
}
