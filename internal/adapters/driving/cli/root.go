// Package cli provides the figsync command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/figsync/internal/core/ports/driving"
	"github.com/custodia-labs/figsync/internal/logger"
)

// Services is what commands run against. It is built once per invocation
// by the Loader passed to Execute.
type Services struct {
	Sync   driving.SyncService
	Assets driving.AssetService

	// Scheduler is nil when no files are watched.
	Scheduler driving.Scheduler

	// Serve runs the HTTP API on addr until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error

	// Work consumes queued jobs until ctx is cancelled. It is nil unless
	// jobs are dispatched through a queue.
	Work func(ctx context.Context) error

	// ServerAddr is the configured HTTP listen address.
	ServerAddr string

	// Close releases stores and waits for in-process jobs.
	Close func() error
}

// LoadOptions are the global flags a Loader receives.
type LoadOptions struct {
	ConfigPath string
	Verbose    bool
}

// Loader builds Services from configuration.
type Loader func(ctx context.Context, opts LoadOptions) (*Services, error)

// annotationNoServices marks commands that run without loading configuration.
const annotationNoServices = "figsync/no-services"

var (
	version = "dev"

	loader   Loader
	services *Services

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "figsync",
	Short: "Cache design file frames as images",
	Long: `figsync keeps a blob store of rendered frames in sync with a Figma file.

A sync walks the selected pages, fingerprints every frame and hands the
frames whose content changed to a background worker, which renders them
through the Figma images API and stores the PNGs under stable keys.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.figsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadServices(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if cmd.Annotations[annotationNoServices] == "true" || services != nil {
		return nil
	}
	if loader == nil {
		return errors.New("services not configured")
	}

	s, err := loader(cmd.Context(), LoadOptions{ConfigPath: configPath, Verbose: verbose})
	if err != nil {
		return err
	}
	services = s
	return nil
}

// Execute runs the root command with the given build version and loader.
func Execute(ctx context.Context, buildVersion string, load Loader) error {
	version = buildVersion
	loader = load

	err := rootCmd.ExecuteContext(ctx)

	if services != nil && services.Close != nil {
		if cerr := services.Close(); cerr != nil {
			logger.Warn("Shutdown: %v", cerr)
		}
	}
	return err
}

// requireServices returns the loaded services or an error naming what is missing.
func requireServices() (*Services, error) {
	if services == nil || services.Sync == nil || services.Assets == nil {
		return nil, errors.New("services not configured")
	}
	return services, nil
}
