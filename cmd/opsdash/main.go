package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"opsdash-api/internal/cache"
	"opsdash-api/internal/dashboard"
	"opsdash-api/internal/handlers"
	"opsdash-api/internal/httpserver"
	"opsdash-api/internal/metrics"
	"opsdash-api/internal/prewarm"
	"opsdash-api/internal/query"
	"opsdash-api/internal/realtime"
	"opsdash-api/pkg/logging/logging"
)

type Config struct {
	Port            string
	CacheBackend    string // "memory" or "redis"
	CachePrefix     string
	RedisAddr       string
	DuckDBPath      string
	Timezone        string
	PrewarmTenants  []string
	PrewarmInterval time.Duration
}

func LoadConfig() Config {
	interval, err := time.ParseDuration(getenv("PREWARM_INTERVAL", "2m"))
	if err != nil {
		interval = 2 * time.Minute
	}

	var tenants []string
	for _, t := range strings.Split(os.Getenv("PREWARM_TENANTS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tenants = append(tenants, t)
		}
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		CacheBackend:    getenv("CACHE_BACKEND", "memory"),
		CachePrefix:     getenv("CACHE_PREFIX", "opsdash"),
		RedisAddr:       getenv("REDIS_ADDR", "127.0.0.1:6379"),
		DuckDBPath:      getenv("DUCKDB_PATH", "opsdash.db"),
		Timezone:        getenv("TIMEZONE", "UTC"),
		PrewarmTenants:  tenants,
		PrewarmInterval: interval,
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("opsdash exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("duckdb_path", cfg.DuckDBPath),
		zap.String("timezone", cfg.Timezone),
		zap.Strings("prewarm_tenants", cfg.PrewarmTenants),
		zap.Duration("prewarm_interval", cfg.PrewarmInterval),
	)

	// ----- Timezone (periods resolve against this clock) -----
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
		return err
	}

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Cache store + orchestrator + invalidator -----
	store := cache.NewStore(cache.Config{
		Backend: cfg.CacheBackend,
		TTL:     cache.DefaultTTL,
		Prefix:  cfg.CachePrefix,
	}, redisClient)
	store = cache.NewLoggingStore(store)

	orchestrator := cache.NewOrchestrator(store)
	invalidator := cache.NewInvalidator(store)

	// ----- Aggregation store -----
	db, err := query.Open(query.Config{Path: cfg.DuckDBPath})
	if err != nil {
		logger.Error("duckdb open failed", zap.Error(err))
		return err
	}
	defer db.Close()

	// ----- Dashboards -----
	registry := dashboard.NewRegistry(db)

	// ----- Realtime publisher -----
	var publisher realtime.Publisher = realtime.NopPublisher{}
	if redisClient != nil {
		publisher = realtime.NewRedisPublisher(redisClient)
	}

	// ----- Handlers -----
	dashHandler := handlers.NewDashboardHandler(registry, orchestrator, loc)
	hookHandler := handlers.NewHookHandler(invalidator, publisher)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, dashHandler, hookHandler)

	// ----- Pre-warmer -----
	warmCtx, stopWarm := context.WithCancel(context.Background())
	defer stopWarm()
	if len(cfg.PrewarmTenants) > 0 {
		warmer := prewarm.New(cfg.PrewarmTenants, orchestrator, registry, loc, logger)
		go warmer.Start(warmCtx, cfg.PrewarmInterval)
	} else {
		logger.Info("prewarm disabled, no tenants configured")
	}

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting opsdash api",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")
	stopWarm()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
