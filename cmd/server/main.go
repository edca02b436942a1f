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
	"github.com/redis/go-redis/v9"

	"github.com/SammyBolger/NBA-Analytics/internal/api"
	"github.com/SammyBolger/NBA-Analytics/internal/api/handlers"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/picks"
	"github.com/SammyBolger/NBA-Analytics/internal/providers"
	"github.com/SammyBolger/NBA-Analytics/internal/services"
	"github.com/SammyBolger/NBA-Analytics/internal/store"
	"github.com/SammyBolger/NBA-Analytics/pkg/config"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
	"github.com/SammyBolger/NBA-Analytics/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log.WithField("env", cfg.Env).Info("Starting NBA analytics server")

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Redis is optional; without it snapshots start cold after a restart
	var (
		snapshotCache services.SnapshotCache
		modelCache    handlers.ModelCache
	)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without snapshot cache")
			_ = redisClient.Close()
		} else {
			defer redisClient.Close()
			cacheService := services.NewCacheService(redisClient)
			snapshotCache = cacheService
			modelCache = cacheService
		}
	}

	// Initialize feed client and background jobs
	feedClient := providers.NewFeedClient(providers.FeedOptions{
		BaseURL:          cfg.FeedBaseURL,
		APIKey:           cfg.FeedAPIKey,
		Timeout:          cfg.ExternalAPITimeout,
		RequestsPerSec:   cfg.FeedRateLimit,
		BreakerThreshold: cfg.CircuitBreakerThreshold,
	}, log)

	poller := services.NewFeedPoller(feedClient, snapshotCache, log, services.PollerOptions{
		TodayInterval: cfg.TodayPollInterval,
		OddsInterval:  cfg.OddsPollInterval,
		CalendarTTL:   cfg.CalendarCacheTTL,
	})

	pickStore := store.NewPickStore(db)
	reconciler := picks.NewReconciler(pickStore, log)

	if cfg.EnableBackgroundJobs {
		if err := poller.Start(); err != nil {
			log.Errorf("Failed to start feed poller: %v", err)
		}
		defer poller.Stop()

		grader := services.NewGrader(pickStore, poller, log, cfg.GradingSchedule)
		if err := grader.Start(); err != nil {
			log.Errorf("Failed to start pick grader: %v", err)
		}
		defer grader.Stop()
	} else {
		log.Warn("Background jobs disabled; game and odds snapshots will stay empty")
	}

	router := api.NewRouter(api.Dependencies{
		DB:     db,
		Config: cfg,
		Feed:   poller,
		Client: feedClient,
		Picks:  reconciler,
		Cache:  modelCache,
		Logger: log,
	})

	if cfg.IsDevelopment() {
		for _, route := range router.Routes() {
			log.Debugf("%s %s", route.Method, route.Path)
		}
	}

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
