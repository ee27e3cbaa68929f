package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/config"
	"github.com/geodex-io/geodex/internal/db"
	dbRedis "github.com/geodex-io/geodex/internal/db/redis"
	"github.com/geodex-io/geodex/internal/index/catalog"
	"github.com/geodex-io/geodex/internal/index/spatial"
	"github.com/geodex-io/geodex/internal/index/text"
	logpkg "github.com/geodex-io/geodex/internal/logger"
	"github.com/geodex-io/geodex/internal/metrics"
	listingrepo "github.com/geodex-io/geodex/internal/repository/listing"
	chiTransport "github.com/geodex-io/geodex/internal/transport/chi"
	healthuc "github.com/geodex-io/geodex/internal/usecase/health"
	indexeruc "github.com/geodex-io/geodex/internal/usecase/indexer"
	searchuc "github.com/geodex-io/geodex/internal/usecase/search"
	"github.com/geodex-io/geodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Persistent store is optional: without addrs the service runs
	// memory-only and listings do not survive a restart.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	} else {
		logger.Warn("No database configured, running memory-only")
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// In-memory indexes — composition root
	cat := catalog.New()
	sp := spatial.New()
	tx := text.New()

	var persist indexeruc.PersistStore
	if store != nil {
		persist = listingrepo.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	}

	indexerSvc := indexeruc.New(cat, sp, tx, persist, logger)

	// Replay persisted listings into the fresh indexes.
	if persist != nil {
		n, err := indexerSvc.Rebuild(ctx)
		if err != nil {
			logger.Fatal("Failed to rebuild indexes", zap.Error(err))
		}
		logger.Info("Indexes rebuilt from store", zap.Int("listings", n))
	}

	searchSvc := searchuc.New(cat, sp, tx, logger).
		WithBlendWeights(cfg.Search.BlendTextWeight, cfg.Search.BlendDistanceWeight).
		WithMaxCandidates(cfg.Search.MaxCandidates)
	if cfg.Search.CacheSize > 0 {
		searchSvc.WithCache(cfg.Search.CacheSize)
	}

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, cat, sp, tx)

	server := chiTransport.NewServer(searchSvc, indexerSvc, healthSvc, logger).
		WithSearchLimits(cfg.Search.MaxRadiusMiles, time.Duration(cfg.Search.TimeoutMs)*time.Millisecond)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	// Periodic consistency sweep keeps the indexes honest after crashes
	// or partial writes.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if interval := cfg.Search.ConsistencyCheckInterval; interval > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(interval) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					if _, err := indexerSvc.Check(sweepCtx); err != nil {
						logger.Error("Consistency check failed", zap.Error(err))
					}
				}
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
