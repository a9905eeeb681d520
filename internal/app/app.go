package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/config"
	"github.com/GlebRadaev/taskmart/internal/handlers"
	"github.com/GlebRadaev/taskmart/internal/memstore"
	"github.com/GlebRadaev/taskmart/internal/pg"
	"github.com/GlebRadaev/taskmart/internal/reconcile"
	"github.com/GlebRadaev/taskmart/internal/repo"
	"github.com/GlebRadaev/taskmart/internal/service"
	"github.com/GlebRadaev/taskmart/pkg/auth"
	"github.com/GlebRadaev/taskmart/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	river *river.Client[pgx.Tx]

	// addr is the address the http server actually listens on.
	addr string

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}
	return a.start(ctx, cfg)
}

func (a *Application) start(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	a.cfg = cfg

	if cfg.MemoryStore {
		if err := a.initMemory(); err != nil {
			return err
		}
	} else {
		if err := a.initPostgres(ctx); err != nil {
			return err
		}
	}

	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret), cfg.CORSOrigins)

	if err := a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startSweeper(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully", zap.Bool("memory_store", cfg.MemoryStore))
	return nil
}

func (a *Application) initMemory() error {
	a.repo = repo.NewInMemory(memstore.New())

	// No job queue without Postgres; the sweeper alone expires orders.
	srv, err := service.New(a.repo, a.cfg, nil)
	if err != nil {
		return fmt.Errorf("can't build services: %w", err)
	}
	a.srv = srv
	return nil
}

func (a *Application) initPostgres(ctx context.Context) error {
	pool, err := getPgxpool(ctx, a.cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}

	driver := riverpgxv5.New(pool)
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return fmt.Errorf("can't build river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		zap.L().Error("river migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run river migrations: %w", err)
	}

	workers := river.NewWorkers()
	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: a.cfg.RiverWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return fmt.Errorf("can't build river client: %w", err)
	}

	a.repo = repo.New(pg.New(pool), pg.NewTXManager(pool))
	srv, err := service.New(a.repo, a.cfg, reconcile.NewRiverScheduler(client))
	if err != nil {
		return fmt.Errorf("can't build services: %w", err)
	}
	a.srv = srv

	// The worker needs the order service, which needs the client to schedule
	// jobs, so it is registered after both exist and before the client starts.
	river.AddWorker(workers, reconcile.NewExpireOrderWorker(srv.OrderService))
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("can't start river client: %w", err)
	}
	a.river = client

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(sCtx); err != nil {
			zap.L().Error("river client stop failed", zap.Error(err))
		}
		pool.Close()
	}()
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return err
	}
	a.addr = listener.Addr().String()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server", zap.String("address", a.addr))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startSweeper(ctx context.Context) {
	sweeper := reconcile.NewSweeper(a.cfg, a.srv.OrderService)
	sweeper.Start(ctx)
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
