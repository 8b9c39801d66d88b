package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/soyeahso/frontdesk/internal/gateway"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the kiosk to browser displays over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// Load raw config for RPC access
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				raw = make(map[string]any)
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b := newBackends(paths, log)
			defer b.Close()

			setup, err := newKiosk(ctx, c, b)
			if err != nil {
				return err
			}
			k := setup.kiosk

			opts := []gateway.ServerOption{
				gateway.WithConfigRaw(raw),
				gateway.WithConfigFile(paths.Config),
				gateway.WithKiosk(k),
				gateway.WithHooks(setup.hooks),
			}
			if setup.chatLog != nil {
				opts = append(opts, gateway.WithChatStore(setup.chatLog))
			}
			if setup.registry != nil {
				opts = append(opts, gateway.WithGatherer(setup.registry))
			}
			srv := gateway.New(c, log, opts...)

			outcome, err := k.Start(ctx)
			if err != nil {
				return err
			}
			log.Info().Str("resume", string(outcome)).Str("kiosk", c.Dialogue.KioskName).Msg("kiosk ready")

			serveErr := srv.Start(ctx)

			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := k.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("closing kiosk")
			}
			return serveErr
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}
