// Package server wires configuration, storage, messaging and the HTTP API
// together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/cache"
	"github.com/dmitrijs2005/dadkeeper/internal/server/config"
	"github.com/dmitrijs2005/dadkeeper/internal/server/events"
	"github.com/dmitrijs2005/dadkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/dadkeeper/internal/server/llm"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dadkeeper/internal/server/services"
	"github.com/dmitrijs2005/dadkeeper/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/dadkeeper/internal/server/grpc"
)

const rateLimiterCleanupInterval = 10 * time.Minute

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	limiter *httpapi.RateLimiter
	ready   func(ctx context.Context) error
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	app := &App{config: c, logger: logger}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	profileCache, cachePing := app.initCache(ctx)
	publisher := app.initPublisher(ctx)

	var presigner services.Presigner
	if c.S3Bucket != "" {
		p, err := storage.NewS3Presigner(ctx, storage.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		presigner = p
	} else {
		logger.Warn(ctx, "no S3 bucket configured, template downloads will have no URL")
	}

	rewriter := llm.NewClient(llm.Options{
		BaseURL: c.LLMBaseURL,
		APIKey:  c.LLMAPIKey,
		Model:   c.LLMModel,
		Timeout: c.LLMTimeout,
	}, logger)

	drafts := services.NewDraftService(db, rm, publisher, logger)
	svc := httpapi.Services{
		Users:     services.NewUserService(db, rm, c, profileCache, publisher, logger),
		Profiles:  services.NewProfileService(db, rm, profileCache, publisher, logger),
		Journals:  services.NewJournalService(db, rm, publisher, logger),
		Drafts:    drafts,
		Rewrite:   services.NewRewriteService(rewriter, drafts),
		Templates: services.NewTemplateService(db, rm, presigner, publisher, logger),
	}

	app.ready = func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if cachePing != nil {
			if err := cachePing(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	app.limiter = httpapi.NewRateLimiter(c.RewriteRequestsPerMinute, c.RewriteBurst, logger)

	app.handler = httpapi.NewRouter(svc, httpapi.Options{
		SecretKey:      []byte(c.SecretKey),
		CORSOrigins:    c.CORSOrigins,
		RewriteLimiter: app.limiter,
		Ready:          app.ready,
	}, logger)

	return app, nil
}

// initCache connects to Redis when configured. A failed connection is
// logged and the server runs without a cache.
func (app *App) initCache(ctx context.Context) (services.ProfileCache, func(context.Context) error) {
	if app.config.RedisURL == "" {
		return cache.NoopProfileCache{}, nil
	}
	client, err := cache.Connect(ctx, app.config.RedisURL)
	if err != nil {
		app.logger.Warn(ctx, "redis unavailable, profile cache disabled", "error", err)
		return cache.NoopProfileCache{}, nil
	}
	app.closers = append(app.closers, client)
	c := cache.NewRedisProfileCache(client, app.config.ProfileCacheTTL)
	return c, c.Ping
}

func (app *App) initPublisher(ctx context.Context) events.Publisher {
	if len(app.config.KafkaBrokers) == 0 {
		app.logger.Info(ctx, "no kafka brokers configured, events will be logged only")
		return events.NewLoggingPublisher(app.logger)
	}
	p, err := events.NewKafkaPublisher(app.config.KafkaBrokers, app.config.KafkaTopic, app.logger)
	if err != nil {
		app.logger.Warn(ctx, "kafka publisher init failed, events will be logged only", "error", err)
		return events.NewLoggingPublisher(app.logger)
	}
	app.closers = append(app.closers, p)
	return p
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := serveHTTP(ctx, srv, lis, app.config.ShutdownTimeout); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
	app.logger.Info(ctx, "HTTP server stopped")
}

// serveHTTP serves on lis until ctx is done, then shuts srv down and returns
// only once in-flight requests have drained or timeout has passed.
func serveHTTP(ctx context.Context, srv *http.Server, lis net.Listener, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(lis) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serr := <-serveErr; serr != nil && !errors.Is(serr, http.ErrServerClosed) && err == nil {
		err = serr
	}
	return err
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger, app.ready)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.limiter.StartCleanup(ctx, rateLimiterCleanupInterval)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database, cache and broker connections in reverse
// order of creation.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close error", "error", err)
		}
	}
	app.closers = nil
}
