package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/figsync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and scheduled syncs",
	Long: `Serves the HTTP API and runs a scheduled sync for every [[watch]]
entry in the config file. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued sync jobs",
	Long: `Pops worker requests off the Redis queue and renders them.
Requires dispatch.mode = "redis".`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Serve == nil {
		return errors.New("HTTP server not configured")
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = svc.ServerAddr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if svc.Scheduler != nil {
		go func() {
			if err := svc.Scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Scheduler stopped: %v", err)
			}
		}()
		defer func() { _ = svc.Scheduler.Stop() }()
	}

	return svc.Serve(ctx, addr)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Work == nil {
		return errors.New(`worker requires dispatch.mode = "redis"`)
	}

	logger.Info("Worker started")
	return svc.Work(cmd.Context())
}
