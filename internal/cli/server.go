package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/adipundir/donatrade/internal/config"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/rpc"
	"github.com/spf13/cobra"
)

func newServerCmd(opts *globalOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the donatrade daemon",
		Long: `Start the donatrade daemon which provides:
- HTTP JSON-RPC on / for queries, signed submissions and decryption
- WebSocket on /ws for the same methods plus operation streams

This is the default command when no subcommand is specified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
			}
			return runServer(ctx, cfg, logger, ln)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides server.listen)")
	return cmd
}

// runServer serves the node on ln until ctx is cancelled.
func runServer(ctx context.Context, cfg *config.Config, logger log.Logger, ln net.Listener) error {
	n, err := openNode(ctx, cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if err := n.Close(); err != nil {
			logger.Error("close node", "error", err)
		}
	}()

	hub := rpc.NewHub(logger)
	n.engine.OnCommit(hub.Hook())

	services := &rpc.Services{
		Engine:       n.engine,
		Decrypter:    n.oracle,
		Logger:       logger,
		Version:      Version,
		ReplayWindow: cfg.Server.ReplayWindow,
	}
	if cfg.Faucet.Enabled {
		services.Faucet = n.tokens
	}
	if n.journal != nil {
		services.History = n.journal
		services.Applications = n.journal
	}

	server := rpc.NewServer(services, cfg.Server.Timeout)
	ws := rpc.NewWebSocketServer(server, hub)
	ws.SetSendQueueLimit(cfg.Server.SendQueueLimit)

	logger.Info("donatraded started",
		"version", Version,
		"listen", ln.Addr().String(),
		"storage", cfg.Storage.Backend,
		"oracle", cfg.Oracle.Type,
		"journal", cfg.Journal.Enabled,
		"faucet", cfg.Faucet.Enabled,
	)

	err = rpc.Serve(ctx, rpc.Handler(server, ws), ln)
	logger.Info("donatraded stopped")
	return err
}
