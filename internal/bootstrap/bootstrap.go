// Package bootstrap constructs every figsync component from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/figsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/figsync/internal/adapters/driven/dispatch"
	"github.com/custodia-labs/figsync/internal/adapters/driven/storage"
	"github.com/custodia-labs/figsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/figsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/figsync/internal/connectors/figma"
	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/core/services"
	"github.com/custodia-labs/figsync/internal/logger"
	"github.com/custodia-labs/figsync/internal/observability"
)

// defaultDrainTimeout bounds shutdown when no job timeout is configured.
const defaultDrainTimeout = time.Minute

// App holds the constructed components of a running instance.
type App struct {
	Config    domain.Config
	Stores    *storage.Stores
	Figma     *figma.Client
	Worker    *services.BatchWorker
	Sync      *services.SyncOrchestrator
	Catalogue *services.AssetCatalogue
	HTTP      *httpapi.Server

	// Scheduler is nil when no files are watched.
	Scheduler *services.Scheduler

	inprocess    *dispatch.InProcess
	queue        *dispatch.RedisQueue
	drainTimeout time.Duration
	stopTracing  observability.ShutdownFunc
	logFile      io.Closer
}

// New builds an App from a validated configuration.
func New(ctx context.Context, cfg domain.Config) (app *App, err error) {
	app = &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	app.configureLogging(cfg.Log)

	app.stopTracing, err = observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return app, err
	}

	app.Stores, err = storage.Open(ctx, cfg)
	if err != nil {
		return app, err
	}

	app.Figma, err = figma.NewClientFromConfig(ctx, cfg.Figma)
	if err != nil {
		return app, err
	}

	jobs := services.NewJobTracker(app.Stores.Blobs)
	app.Worker = services.NewBatchWorker(app.Figma, app.Figma, app.Stores.Blobs, jobs, cfg.Figma.BatchSize)

	dispatcher, err := app.newDispatcher(cfg.Dispatch)
	if err != nil {
		return app, err
	}

	app.Sync = services.NewSyncOrchestrator(
		app.Figma,
		services.NewStalenessDetector(app.Stores.Blobs),
		jobs,
		dispatcher,
	)

	baseURL := strings.TrimSuffix(app.Stores.Blobs.PublicURL(""), "/")
	app.Catalogue = services.NewAssetCatalogue(services.NewAssetIndexer(app.Figma), app.Figma, baseURL)

	// Remote backends serve their own objects
	var localBlobs driven.BlobStore
	if !cfg.Storage.Backend.IsRemote() {
		localBlobs = app.Stores.Blobs
	}
	app.HTTP = httpapi.NewServer(app.Sync, app.Catalogue, localBlobs)

	if len(cfg.Watch) > 0 {
		app.Scheduler = services.NewScheduler(cfg.Watch, app.Stores.Scheduler, app.Sync)
	}

	return app, nil
}

func (a *App) configureLogging(cfg domain.LogConfig) {
	if cfg.Verbose {
		logger.SetVerbose(true)
	}
	if cfg.File != "" {
		logger.SetTimestamps(true)
		a.logFile = logger.TeeToFile(logger.FileOptions{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
		})
	}
}

func (a *App) newDispatcher(cfg domain.DispatchConfig) (driven.JobDispatcher, error) {
	timeout, err := domain.ParseDuration(cfg.JobTimeout)
	if err != nil {
		return nil, fmt.Errorf("dispatch.job_timeout: %w", err)
	}
	a.drainTimeout = timeout
	if a.drainTimeout == 0 {
		a.drainTimeout = defaultDrainTimeout
	}

	switch cfg.Mode {
	case domain.DispatchInProcess, "":
		a.inprocess = dispatch.NewInProcess(a.Worker, cfg.MaxConcurrent, timeout)
		return a.inprocess, nil
	case domain.DispatchRedis:
		a.queue = dispatch.NewRedisQueue(dispatch.RedisQueueConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisQueue,
		})
		return a.queue, nil
	default:
		return nil, fmt.Errorf("%w: unsupported dispatch mode: %s", domain.ErrInvalidInput, cfg.Mode)
	}
}

// Work consumes queued jobs until ctx is cancelled.
func (a *App) Work(ctx context.Context) error {
	if a.queue == nil {
		return errors.New(`worker requires dispatch.mode = "redis"`)
	}
	if err := a.queue.Ping(ctx); err != nil {
		return err
	}
	return a.queue.Consume(ctx, a.Worker)
}

// Close waits for in-process jobs, then releases every resource.
func (a *App) Close() error {
	var errs []error

	if a.inprocess != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.drainTimeout)
		if err := a.inprocess.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("draining jobs: %w", err))
		}
		cancel()
	}
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Stores != nil {
		if err := a.Stores.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.stopTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.stopTracing(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if a.logFile != nil {
		logger.SetOutput(os.Stderr)
		_ = a.logFile.Close()
	}

	return errors.Join(errs...)
}

// Services adapts the App to what the CLI runs against.
func (a *App) Services() *cli.Services {
	s := &cli.Services{
		Sync:       a.Sync,
		Assets:     a.Catalogue,
		Serve:      a.HTTP.Run,
		ServerAddr: a.Config.Server.Addr,
		Close:      a.Close,
	}
	if a.Scheduler != nil {
		s.Scheduler = a.Scheduler
	}
	if a.queue != nil {
		s.Work = a.Work
	}
	return s
}

// Load reads configuration and builds the CLI services. It is the
// cli.Loader used by the figsync binary.
func Load(ctx context.Context, opts cli.LoadOptions) (*cli.Services, error) {
	store, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", store.Path(), err)
	}
	if opts.Verbose {
		cfg.Log.Verbose = true
	}

	app, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return app.Services(), nil
}
