package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jnavarro/taskboard/internal/api"
	"github.com/jnavarro/taskboard/internal/config"
	"github.com/jnavarro/taskboard/internal/logger"
	"github.com/jnavarro/taskboard/internal/repository"
	"github.com/jnavarro/taskboard/internal/repository/postgres"
	"github.com/jnavarro/taskboard/internal/repository/redisstore"
	"github.com/jnavarro/taskboard/internal/service"
	"github.com/jnavarro/taskboard/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system env vars")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := postgres.NewRepositories(db)

	// Optional redis deny-list; without it tokens stay valid until expiry
	var revoker repository.TokenRevoker
	if cfg.RedisAddr != "" {
		redisClient, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		revoker = redisstore.NewRevoker(redisClient)
	}

	// Initialize task event hub
	hub := websocket.NewHub(zl)
	go hub.Run()

	// Initialize services and router
	services := service.NewServices(repos, revoker, hub, cfg, zl)
	router := api.NewRouter(services, hub, zl)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}

	hub.Stop()
	zl.Info("server stopped")
}
