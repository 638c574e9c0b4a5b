// Package servecmder provides the serve command running the verde API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/api"
	"github.com/papercomputeco/verde/cmd/verde/wiring"
	"github.com/papercomputeco/verde/pkg/config"
	"github.com/papercomputeco/verde/pkg/logger"
)

type serveCommander struct {
	flags  wiring.Flags
	listen string
	debug  bool

	settings wiring.Settings
	logger   *zap.Logger
}

const serveLongDesc string = `Run the verde API server.

The server answers questions on POST /v1/ask, serves the chat widget on /,
exposes stored exchanges under /v1/exchanges and /v1/similar, speaks MCP
on /mcp and publishes Prometheus metrics on /metrics.

Examples:
  verde serve
  verde serve --listen :9000 --storage-driver memory
  verde serve --events-provider kafka --events-brokers localhost:9092`

const serveShortDesc string = "Run the verde API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, v, err := wiring.LoadSettings(cmd)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.ServeFlags, config.ServeFlags.Keys())

			cmder.settings = settings
			cmder.listen = v.GetString("api.listen")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagAPIListen, &cmder.listen)
	wiring.AddFlags(cmd, &cmder.flags)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	stack, err := wiring.NewStack(ctx, c.settings, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			c.logger.Warn("failed to close stack", zap.Error(err))
		}
	}()

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		Responder:  stack.Responder,
	}, stack.Driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
