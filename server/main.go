package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stagefront/api/routes"
	"stagefront/internal/cache"
	"stagefront/internal/events"
	"stagefront/internal/locations"
	"stagefront/internal/session"
	"stagefront/internal/shared/config"
	"stagefront/internal/upstream"
	"stagefront/internal/zones"
	"stagefront/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Session store: redis when reachable, in-memory fallback for local runs
	sessions := buildSessionStore(cfg, appLogger)

	// Transport client for the remote ticketing API
	client := upstream.NewClient(cfg.Upstream, sessions, appLogger)
	client.OnAuthFailure(func(ctx context.Context, err *upstream.APIError) {
		// The UI layer reacts (login redirect); the gateway only records it.
		appLogger.Warn("upstream rejected session credential", slog.Int("status", err.Status))
	})

	// Resource caches: one per collection, explicitly constructed and injected
	eventCache := cache.NewStore[events.Event](appLogger)
	locationCache := cache.NewStore[locations.Location](appLogger)
	defer eventCache.Dispose()
	defer locationCache.Dispose()

	locationService := locations.NewService(locationCache, client, cfg.Lookup.StuckLoadBound)
	eventService := events.NewService(eventCache, client)
	zoneManager := zones.NewManager(client)

	// Gin engine with CORS for the browser UI
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router := routes.NewRouter(cfg, appLogger, sessions, eventService, locationService, zoneManager)
	router.SetupRoutes(engine)

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Starting gateway",
			slog.String("addr", server.Addr),
			slog.String("upstream", cfg.Upstream.BaseURL),
			slog.String("version", Version),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", slog.Any("error", err))
	}
	appLogger.Info("Gateway stopped")
}

// buildSessionStore connects to redis, degrading to the in-memory store
// when redis is unreachable so local development works without it.
func buildSessionStore(cfg *config.Config, appLogger *logger.Logger) session.Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLogger.Warn("redis unreachable, using in-memory session store",
			slog.String("addr", cfg.Redis.Addr),
			slog.Any("error", err),
		)
		return session.NewMemoryStore()
	}

	appLogger.Info("Session store connected", slog.String("addr", cfg.Redis.Addr))
	return session.NewRedisStore(client, cfg.Redis.SessionTTL)
}
