package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/mwantia/godepot/internal/api"
	config "github.com/mwantia/godepot/internal/config/server"
	"github.com/mwantia/godepot/pkg/blob"
	"github.com/mwantia/godepot/pkg/db/migrations"
	"github.com/mwantia/godepot/pkg/db/store"
	"github.com/mwantia/godepot/pkg/files"
	"github.com/mwantia/godepot/pkg/log"
)

// GodepotAgent owns the long-running server process: metadata store,
// blob store, file service and the HTTP API.
type GodepotAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	metadata *store.SQLiteStore
	server   *api.Server
}

func NewAgent(cfg *config.BaseServerConfig) *GodepotAgent {
	return &GodepotAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("godepot", cfg.Log),
	}
}

func (gda *GodepotAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	gda.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](gda.sc,
		container.With[log.LoggerService](),
		container.WithInstance(gda.log)))

	gda.log.Debug("Opening metadata store at '%s'...", gda.cfg.Metadata.SQLite.Path)
	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: gda.cfg.Metadata.SQLite.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}
	if err := metadata.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := migrations.NewMigrator(metadata.DB()).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	gda.metadata = metadata

	errs.Add(container.Register[store.SQLiteStore](gda.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(metadata)))

	gda.log.Debug("Preparing upload directory '%s'...", gda.cfg.Storage.UploadDirectory)
	blobs, err := blob.NewStore(gda.cfg.Storage.UploadDirectory)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	policy := files.NewValidationPolicy(
		gda.cfg.Storage.AllowedExtensions,
		gda.cfg.Storage.AllowedMimetypes)

	service := files.NewService(metadata, blobs, policy, gda.log, files.Config{
		MaxUploadSize: gda.cfg.Storage.MaxUploadSize,
		URLPrefix:     gda.cfg.Storage.URLPrefix,
	})

	errs.Add(container.Register[files.Service](gda.sc,
		container.WithInstance(service)))

	gda.server = api.NewServer(gda.cfg, service, gda.log)

	return errs.Errors()
}

func (gda *GodepotAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	gda.mutex.Lock()

	if err := gda.setupServices(ctx); err != nil {
		gda.mutex.Unlock()
		return err
	}

	gda.wait.Add(1)
	go func() {
		defer gda.wait.Done()
		if err := gda.server.Start(); err != nil {
			gda.log.Error("HTTP server failed: %v", err)
			cancel()
		}
	}()

	gda.mutex.Unlock()
	<-ctx.Done()

	timeout, err := time.ParseDuration(gda.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := gda.server.Shutdown(shutdown); err != nil {
		gda.log.Warn("HTTP server shutdown incomplete: %v", err)
	}

	if err := gda.metadata.Close(); err != nil {
		gda.log.Warn("Failed to close metadata store: %v", err)
	}

	if err := gda.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	gda.wait.Wait()
	return nil
}
