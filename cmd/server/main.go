package main

// @title           Relay Service API
// @version         1.0
// @description     Real-time message relay with block-aware delivery and a REST API for accounts, posts, and block lists
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "relay-service/docs"
	"relay-service/internal/audit"
	"relay-service/internal/config"
	"relay-service/internal/database"
	"relay-service/internal/relay"
	"relay-service/internal/repository"
	"relay-service/internal/router"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	slog.Info("starting relay server")

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var storage *database.MinIOClient
	if cfg.MinIO.Endpoint != "" {
		storage, err = database.NewMinIOClient(cfg.MinIO)
		if err != nil {
			slog.Error("failed to connect to MinIO", "error", err)
			os.Exit(1)
		}
	}

	var auditor audit.Publisher = audit.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			slog.Error("failed to connect to Kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		auditor = kafkaPublisher
	}

	hub := relay.NewHub()
	filter := relay.NewDeliveryFilter(repository.NewBlockRepository(db))
	coordinator := relay.NewCoordinator(hub, filter, auditor)

	r := router.NewRouter(
		hub,
		coordinator,
		auditor,
		db,
		redisClient.GetClient(),
		storage,
		cfg.JWT.Secret,
		cfg.JWT.ExpirationTime,
	)
	r.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server stopped")
}
