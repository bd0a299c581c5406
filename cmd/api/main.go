package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bookshelf/internal/auth"
	"github.com/geocoder89/bookshelf/internal/cache"
	"github.com/geocoder89/bookshelf/internal/config"
	"github.com/geocoder89/bookshelf/internal/credentials"
	"github.com/geocoder89/bookshelf/internal/db"
	httpx "github.com/geocoder89/bookshelf/internal/http"
	"github.com/geocoder89/bookshelf/internal/http/handlers"
	"github.com/geocoder89/bookshelf/internal/library"
	"github.com/geocoder89/bookshelf/internal/observability"
	"github.com/geocoder89/bookshelf/internal/repo/postgres"
	"github.com/geocoder89/bookshelf/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env, cfg.ServiceName)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracerConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// database: connect and migrate before accepting traffic
	startCtx, cancelStart := config.WithTimeout(30 * time.Second)

	pool, err := db.NewPool(startCtx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(startCtx, pool); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// book list cache: shared Redis when configured, in-process otherwise
	var lists cache.BookLists
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(startCtx).Err(); err != nil {
			log.Warn("redis unreachable, lists will be read from the database until it recovers", "addr", cfg.RedisAddr, "err", err)
		}
		lists = cache.NewRedisBookLists(rdb, cfg.BooksCacheTTL, log)
	} else {
		lists = cache.NewMemoryBookLists(cfg.BooksCacheTTL)
	}

	// wire up repositories and services
	hasher := security.NewHasher(cfg.BcryptCost, 0)
	accounts := credentials.NewStore(postgres.NewUsersRepo(pool, prom), hasher)
	books := library.NewStore(postgres.NewBooksRepo(pool, prom), lists, prom)
	tokens := auth.NewManager(cfg.JWTSecret, auth.DefaultTTL)

	created, err := db.EnsureSeedUser(startCtx, accounts, cfg)
	if err != nil {
		log.Error("seed user failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("seed user created", "email", cfg.SeedUserEmail)
	}
	cancelStart()

	health := handlers.NewHealthHandler(pool)

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Accounts: accounts,
		Books:    books,
		Tokens:   tokens,
		Prom:     prom,
		Gatherer: reg,
		Health:   health,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	health.SetShuttingDown()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
