package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	authdemo "github.com/MalcoreHardcore698/authdemo"
	"github.com/MalcoreHardcore698/authdemo/internal/logging"
)

var errNotSignedIn = errors.New("not signed in")

// NewRootCmd creates the root command. Every subcommand reads its
// configuration from defaults, then the --config file, then flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authdemo",
		Short: "Authentication demo backend and session client",
		Long: `authdemo runs the demo authentication backend and drives the session
engine from the terminal. Sessions and mock users persist in the storage
backend, so a login survives between invocations.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (yaml)")
	registerConfigFlags(cmd.PersistentFlags(), cliDefaults())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewRegisterCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewMeCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewResetPasswordCmd())

	return cmd
}

// cliDefaults differ from the library defaults in keeping state on disk
// and logging quietly to the terminal.
func cliDefaults() authdemo.Config {
	cfg := authdemo.DefaultConfig()
	cfg.Storage.Driver = authdemo.StorageFile
	cfg.Storage.Dir = defaultStateDir()
	cfg.Log.Format = "text"
	cfg.Log.Level = "warn"
	return cfg
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".authdemo"
	}
	return filepath.Join(dir, "authdemo")
}

// registerConfigFlags exposes the commonly tuned keys. Flag names are the
// koanf keys, so posflag maps them without a callback.
func registerConfigFlags(fs *pflag.FlagSet, d authdemo.Config) {
	fs.String("transport.base_url", d.Transport.BaseURL, "primary backend base URL, empty for mock only")
	fs.Duration("transport.timeout", d.Transport.Timeout, "primary request timeout")
	fs.Uint64("transport.max_retries", d.Transport.MaxRetries, "retries for temporary primary failures")
	fs.Bool("transport.fallback", d.Transport.Fallback, "fall back to the mock backend when the primary fails")

	fs.Duration("mock.latency", d.Mock.Latency, "simulated mock backend latency")
	fs.Duration("mock.me_latency", d.Mock.MeLatency, "simulated latency of the current-user lookup")
	fs.Bool("mock.seed", d.Mock.Seed, "create the demo account in an empty user table")

	fs.String("storage.driver", d.Storage.Driver, "storage backend: memory, file or redis")
	fs.String("storage.dir", d.Storage.Dir, "directory for the file backend")
	fs.String("storage.redis_addr", d.Storage.RedisAddr, "redis address")
	fs.String("storage.redis_prefix", d.Storage.RedisPrefix, "redis key prefix")

	fs.String("password.verifier", d.Password.Verifier, "password verifier: plaintext or argon2")

	fs.String("server.listen", d.Server.Listen, "serve listen address")
	fs.String("server.jwt.secret", d.Server.JWT.Secret, "HS256 secret, at least 32 bytes")
	fs.Duration("server.jwt.access_ttl", d.Server.JWT.AccessTTL, "bearer token lifetime")

	fs.Bool("audit.enabled", d.Audit.Enabled, "write the session audit trail")
	fs.String("audit.path", d.Audit.Path, "audit file path, - for stderr")

	fs.String("log.format", d.Log.Format, "log format: json or text")
	fs.String("log.level", d.Log.Level, "log level: debug, info, warn or error")
}

// loadConfig layers the --config file and the command's flags over the
// CLI defaults.
func loadConfig(fs *pflag.FlagSet) (authdemo.Config, error) {
	k := koanf.New(".")

	path, err := fs.GetString("config")
	if err != nil {
		return authdemo.Config{}, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return authdemo.Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return authdemo.Config{}, fmt.Errorf("load flags: %w", err)
	}

	cfg := cliDefaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return authdemo.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// openEngine builds an engine for one command invocation. The caller
// closes it.
func openEngine(cmd *cobra.Command, mutate func(*authdemo.Config)) (*authdemo.Engine, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	if cfg.Storage.Driver == authdemo.StorageFile {
		if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	logger := logging.Setup("authdemo", cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
	return authdemo.New().WithConfig(cfg).WithLogger(logger).Build()
}
