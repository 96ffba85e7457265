// Package app wires configuration, storage, payload handling and the
// services into one value the command line drives.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/speaker/internal/assets"
	"github.com/dmitrijs2005/speaker/internal/blob"
	"github.com/dmitrijs2005/speaker/internal/blob/core"
	"github.com/dmitrijs2005/speaker/internal/blob/s3"
	"github.com/dmitrijs2005/speaker/internal/config"
	"github.com/dmitrijs2005/speaker/internal/filex"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/metrics"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/services"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *prometheus.Registry
	lazy     *store.Lazy
	store    *store.Store
	blobs    core.Store

	Accounts    *services.AccountService
	Preferences *services.PreferenceService
	Voices      *services.VoiceService
	Emotions    *services.EmotionService
	Marketplace *services.MarketplaceService
}

type options struct {
	logOutput io.Writer
	provider  func(store.Options) *store.Lazy
}

type Option func(*options)

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option { return func(o *options) { o.logOutput = w } }

// WithStoreProvider chooses how the shared store handle is obtained, e.g.
// store.Default for the process-wide one.
func WithStoreProvider(p func(store.Options) *store.Lazy) Option {
	return func(o *options) { o.provider = p }
}

// New opens the store and payload storage described by cfg and builds the
// services on top of them.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{logOutput: os.Stderr, provider: store.NewLazy}
	for _, fn := range opts {
		fn(o)
	}

	policy, err := services.ParseEmotionPolicy(cfg.EmotionPolicy)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, o.logOutput)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	dbPath := cfg.DBPath()
	if err := filex.EnsureParent(dbPath); err != nil {
		return nil, fmt.Errorf("data dir init error: %w", err)
	}

	lazy := o.provider(store.Options{Path: dbPath, BusyTimeout: cfg.BusyTimeout, Logger: logger})
	st, err := lazy.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		_ = lazy.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	coord := txn.New(st, txn.WithMetrics(m), txn.WithLogger(logger))
	rm := repomanager.NewSQLiteRepositoryManager()
	am := assets.NewManager(blobs, assets.WithMetrics(m), assets.WithLogger(logger))

	return &App{
		config:      cfg,
		logger:      logger,
		registry:    registry,
		lazy:        lazy,
		store:       st,
		blobs:       blobs,
		Accounts:    services.NewAccountService(coord, rm, logger),
		Preferences: services.NewPreferenceService(coord, rm, logger),
		Voices:      services.NewVoiceService(coord, rm, am, logger, services.WithEmotionPolicy(policy)),
		Emotions:    services.NewEmotionService(coord, rm, logger),
		Marketplace: services.NewMarketplaceService(coord, rm, logger),
	}, nil
}

func openBlobs(ctx context.Context, cfg *config.Config) (core.Store, error) {
	bc := blob.Config{Driver: core.Driver(cfg.BlobDriver)}
	switch bc.Driver {
	case core.DriverFilesystem:
		root, err := filex.EnsureDir(cfg.BlobPath())
		if err != nil {
			return nil, err
		}
		bc.Root = root
	case core.DriverS3:
		bc.S3 = s3.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3BaseEndpoint,
			AccessKeyID:     cfg.S3RootUser,
			SecretAccessKey: cfg.S3RootPassword,
			PathStyle:       cfg.S3PathStyle,
		}
	}
	return blob.Open(ctx, bc)
}

func (a *App) Config() *config.Config { return a.config }

func (a *App) Logger() logging.Logger { return a.logger }

func (a *App) Store() *store.Store { return a.store }

func (a *App) Blobs() core.Store { return a.blobs }

// Gatherer exposes the collectors registered by the coordinator and the
// asset manager.
func (a *App) Gatherer() prometheus.Gatherer { return a.registry }

// SchemaVersion reports the applied catalog version.
func (a *App) SchemaVersion(ctx context.Context) (int64, error) {
	return a.store.SchemaVersion(ctx)
}

// Close releases the store handle.
func (a *App) Close() error {
	return a.lazy.Close()
}
