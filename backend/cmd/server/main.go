package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-connect/backend/internal/api"
	"student-connect/backend/internal/auth"
	"student-connect/backend/internal/graph"
	"student-connect/backend/internal/store"
	"student-connect/backend/pkg/config"
	"student-connect/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...",
		zap.String("store", cfg.StoreBackend),
		zap.String("sessions", cfg.SessionBackend),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	srv, cleanup, err := newServer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize server", zap.Error(err))
	}
	defer cleanup()

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port), zap.String("base_path", cfg.BasePath))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newServer wires the store, sessions and router described by cfg. cleanup
// releases every connection it opened.
func newServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*http.Server, func(), error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { st.Close(context.Background()) }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		rs, err := auth.NewRedisSessionStore(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { rs.Close() })
		sessions = rs
	default:
		sessions = auth.NewDocumentSessionStore(st)
	}

	hasher, err := auth.NewHasher(cfg.PasswordScheme)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	repo := graph.NewRepository(st, cfg.SymmetricFriends)
	manager, err := auth.NewManager(sessions, repo, hasher, auth.ManagerConfig{
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	router := api.NewRouter(repo, manager, log, api.RouterConfig{
		BasePath:   cfg.BasePath,
		CORSOrigin: cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, cleanup, nil
}
