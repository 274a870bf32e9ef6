package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/cache"
	"github.com/edupulse/assessment-platform/internal/config"
	"github.com/edupulse/assessment-platform/internal/events"
	"github.com/edupulse/assessment-platform/internal/handlers"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/repositories/docstore"
	"github.com/edupulse/assessment-platform/internal/services"
	"github.com/edupulse/assessment-platform/internal/store/postgres"
	"github.com/edupulse/assessment-platform/internal/validator"
	"github.com/edupulse/assessment-platform/pkg"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	docs, err := postgres.NewDocumentStore(db)
	if err != nil {
		logger.Error("failed to initialize document store", "error", err)
		os.Exit(1)
	}
	repo := docstore.New(docs)

	var cacheService cache.CacheService = cache.NoopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheService = cache.NewRedisCache(redisClient, logger)
		}
	}

	oracleClient, err := oracle.NewHTTPClient(cfg.OracleBaseURL, cfg.OracleTimeout, logger)
	if err != nil {
		logger.Error("failed to initialize oracle client", "error", err)
		os.Exit(1)
	}

	var publisher events.EventPublisher
	if cfg.Events.Enabled {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			Brokers: cfg.Events.BrokerList(),
			Topic:   cfg.Events.Topic,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialize event publisher", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	} else {
		publisher = events.NewMockEventPublisher(logger)
	}
	defer publisher.Close()

	if cfg.Casdoor.Enabled() {
		auth.Init(cfg.Casdoor)
	}

	serviceManager := services.NewServiceManager(repo, oracleClient, publisher, cacheService, logger, validator.New())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(auth.Middleware(cfg.Casdoor, logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, oracleClient, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
