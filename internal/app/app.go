package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "floresya-images/internal/broker/kafka"
	"floresya-images/internal/config"
	image_h "floresya-images/internal/http-server/handler/image"
	"floresya-images/internal/http-server/router"
	minio_repo "floresya-images/internal/repository/image/cloud/minio"
	postgres_repo "floresya-images/internal/repository/image/db/postgres"
	"floresya-images/internal/usecase/gallery"
	"floresya-images/internal/usecase/pipeline"
	"floresya-images/internal/usecase/reconcile"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
	pool     *pipeline.Pool
	sweeper  *reconcile.Sweeper
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres_repo.RunMigrations(db.Master, cfg.DB.MigrationsDir); err != nil {
		return nil, err
	}

	fileRepo, err := minio_repo.NewFileRepository(context.Background(), cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	imageRepo := postgres_repo.NewImagesRepository(db, retries)

	var producer *kafka_impl.ProducerClient
	if cfg.Kafka.Enabled {
		producer = kafka_impl.NewProducerClient(cfg)
	}

	pool := pipeline.NewPool(cfg.Pipeline.ResizeWorkers)

	var pipelineUC *pipeline.Pipeline
	if producer != nil {
		pipelineUC = pipeline.NewPipeline(imageRepo, fileRepo, producer, pool, logger, retries)
	} else {
		pipelineUC = pipeline.NewPipeline(imageRepo, fileRepo, nil, pool, logger, retries)
	}

	galleryUC := gallery.NewUsecase(imageRepo, logger)

	var sweeper *reconcile.Sweeper
	if cfg.Reconcile.Enabled {
		sweeper = reconcile.NewSweeper(imageRepo, fileRepo, cfg.Reconcile.MinAge, logger)
	}

	imageHandler := image_h.NewImageHandler(pipelineUC, galleryUC, logger)

	mux := router.SetupRouter(&router.Handler{
		ImageHandler: imageHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
		pool:     pool,
		sweeper:  sweeper,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	if a.sweeper != nil {
		go a.sweeper.Run(ctx, a.cfg.Reconcile.Interval)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.pool.Close()

		if a.db != nil && a.db.Master != nil {
			a.db.Master.Close()
		}

		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
