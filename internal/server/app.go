// Package server wires the Medi Mate server together: PostgreSQL, object
// storage, the AI clients, the REST API and the gRPC health endpoint.
// It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/medimate/internal/cryptox"
	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/logging"
	"github.com/dmitrijs2005/medimate/internal/server/aiclient"
	"github.com/dmitrijs2005/medimate/internal/server/blobstore"
	"github.com/dmitrijs2005/medimate/internal/server/config"
	"github.com/dmitrijs2005/medimate/internal/server/httpapi"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medimate/internal/server/services"
	"github.com/dmitrijs2005/medimate/internal/server/summarization"
	"github.com/dmitrijs2005/medimate/internal/server/transcription"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/medimate/internal/server/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	healthInterval    = 15 * time.Second
)

// Database is the part of *sql.DB the app needs after wiring.
type Database interface {
	PingContext(ctx context.Context) error
	Close() error
}

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

var newBlobStore = func(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	s, err := blobstore.NewS3Store(ctx, blobstore.S3Options{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Bucket:       cfg.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      Database
	handler http.Handler
	health  *gs.HealthServer
}

// NewApp connects to the database, applies migrations, prepares the bucket
// and builds the HTTP handler.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	app, err := newApp(cfg, logger, db, dbx.SQLTransactor{DB: db}, rm, blobs)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, logger logging.Logger, db interface {
	dbx.DBTX
	Database
}, tx dbx.Transactor, rm repomanager.RepositoryManager, blobs blobstore.Store) (*App, error) {

	hasher, err := cryptox.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	ai := aiclient.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.AIRequestTimeout,
	}
	tOpts, sOpts := ai, ai
	tOpts.Model = cfg.TranscriptionModel
	sOpts.Model = cfg.SummaryModel

	if err := ai.EnsureAPIKey(); err != nil {
		logger.Warn(context.Background(), "uploads will fail until an OpenAI API key is configured")
	}

	audio := services.NewAudioService(db, tx, rm, blobs,
		transcription.NewClient(tOpts, blobs), summarization.NewClient(sOpts), cfg, logger)
	users := services.NewUserService(db, rm, hasher, cfg, logger)

	handler := httpapi.NewRouter(httpapi.Deps{
		Audio:          audio,
		Users:          users,
		DB:             db,
		SecretKey:      []byte(cfg.SecretKey),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: handler,
		health:  gs.NewHealthServer(cfg.EndpointAddrGRPC, logger),
	}, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	lis, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		cancelFunc()
		return fmt.Errorf("http listen: %w", err)
	}

	srv := &http.Server{Handler: app.handler, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(context.Background(), "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.health.Run(ctx); err != nil {
		cancelFunc()
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

// Run serves until ctx is done or SIGINT, SIGTERM or SIGQUIT arrives, then
// shuts both servers down and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(f func(context.Context, context.CancelFunc) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx, cancelFunc); err != nil {
				app.logger.Error(ctx, err.Error())
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	run(app.startHTTPServer)
	run(app.startGRPCServer)

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.health.WatchDB(ctx, app.db, healthInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(errs...)
}
