// Package servecmder provides the serve command for running the results API
// server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/writebench/api"
	"github.com/papercomputeco/writebench/pkg/config"
	"github.com/papercomputeco/writebench/pkg/logger"
	"github.com/papercomputeco/writebench/pkg/results/sqlite"
)

type serveCommander struct {
	listen     string
	sqlitePath string
	debug      bool
	logger     *slog.Logger
}

const serveLongDesc string = `Run the results API server over a SQLite results store.

Endpoints:
  GET /healthz                  Health check
  GET /api/v1/results           List results (filter: policy, mode, track, budget)
  GET /api/v1/results/summary   Aggregate metrics per (mode, policy)

Examples:
  writebench serve
  writebench serve --listen :8081 --sqlite artifacts/results.db`

const serveShortDesc string = "Run the results API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("listen") {
				cmder.listen = cfg.API.Listen
			}
			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Results.SQLitePath
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the SQLite results database")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.New(logger.WithDebug(c.debug))

	store, err := sqlite.New(c.sqlitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	c.logger.Info("using SQLite results store", slog.String("path", c.sqlitePath))

	server := api.NewServer(api.Config{ListenAddr: c.listen}, store, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		return server.Shutdown()
	}
}
