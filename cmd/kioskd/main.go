package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"venue-feedback-backend/config"
	"venue-feedback-backend/internal/api"
	"venue-feedback-backend/internal/db"
	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/notification"
	"venue-feedback-backend/internal/resolution"
	"venue-feedback-backend/internal/store"
	"venue-feedback-backend/internal/syncer"
	"venue-feedback-backend/internal/viewport"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatal("VAPID keys must be configured; generate them and add them to the config file")
	}
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions, logger)
	workerPool.Start(ctx)

	cutoff := time.Duration(cfg.Sync.RecencyCutoffHours) * time.Hour
	hub := syncer.NewHub()
	for _, venueID := range cfg.Sync.VenueIDs {
		coordinator := syncer.New(appStore, venueID, cfg.Sync.PollInterval, cutoff, logger)
		coordinator.OnNewPending(func(requests []model.AssistanceRequest) {
			for _, request := range requests {
				workerPool.Dispatch(request)
			}
		})
		hub.Add(venueID, coordinator)

		listener := syncer.NewChangeListener(redisClient, cfg.Redis.ChannelPrefix, venueID, coordinator, logger)
		go coordinator.Run(ctx)
		go listener.Run(ctx)
		logger.Info("venue sync started", zap.Int64("venue_id", venueID))
	}

	service := resolution.NewService(appStore, hub, hub, logger)

	viewportCfg := viewport.Config{
		DesignWidth:    cfg.Viewport.DesignWidth,
		DesignHeight:   cfg.Viewport.DesignHeight,
		MinZoom:        cfg.Viewport.MinZoom,
		MaxZoom:        cfg.Viewport.MaxZoom,
		FitPadding:     cfg.Viewport.FitPadding,
		ZoomStep:       cfg.Viewport.ZoomStep,
		WheelLineDelta: cfg.Viewport.WheelLineDelta,
	}

	handler := api.NewHandler(appStore, hub, service, viewportCfg, &webpushOptions, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server shutdown failed", zap.Error(err))
	}
	cancel()

	logger.Info("server stopped")
}
