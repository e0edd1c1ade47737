package main

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	authdemo "github.com/MalcoreHardcore698/authdemo"
	"github.com/MalcoreHardcore698/authdemo/internal"
	"github.com/MalcoreHardcore698/authdemo/jwt"
	promexport "github.com/MalcoreHardcore698/authdemo/metrics/export/prometheus"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var embeddedRedis bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo authentication backend",
		Long: `Serve the REST endpoints the session client talks to, backed by the
mock user store. The login throttle and token denylist need redis; with
--embedded-redis an in-process redis is started for them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var mr *miniredis.Miniredis
			if embeddedRedis {
				mr = miniredis.NewMiniRedis()
				if err := mr.Start(); err != nil {
					return fmt.Errorf("start embedded redis: %w", err)
				}
				defer mr.Close()
			}

			var ephemeralSecret bool
			engine, err := openEngine(cmd, func(cfg *authdemo.Config) {
				// The backend answers from its own store.
				cfg.Transport.BaseURL = ""
				cfg.Transport.Fallback = true
				cfg.Mock.Latency = 0
				cfg.Mock.MeLatency = 0
				if mr != nil {
					cfg.Storage.RedisAddr = mr.Addr()
				}
				if cfg.Server.JWT.SigningMethod == string(jwt.MethodHS256) && cfg.Server.JWT.Secret == "" {
					if secret, err := internal.NewToken(); err == nil {
						cfg.Server.JWT.Secret = secret
						ephemeralSecret = true
					}
				}
			})
			if err != nil {
				return err
			}
			defer engine.Close()

			logger := engine.Logger()
			if ephemeralSecret {
				logger.Warn("using a generated jwt secret, tokens will not survive a restart")
			}
			if mr != nil {
				logger.Info("embedded redis started", "addr", mr.Addr())
			}

			exporter := promexport.NewPrometheusExporter(engine)
			srv, err := engine.NewServer(exporter.Registry())
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&embeddedRedis, "embedded-redis", false, "start an in-process redis for throttling and the token denylist")
	return cmd
}
