package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hybridRecommender/app/echo-server/router"
	"hybridRecommender/business/hybrid"
	"hybridRecommender/business/predictor"
	"hybridRecommender/business/recommendation"
	"hybridRecommender/domain"
	"hybridRecommender/internal/middleware"
	psqlRepo "hybridRecommender/internal/repository/postgres"
	redisRepo "hybridRecommender/internal/repository/redis"
	"hybridRecommender/internal/rest"
	"hybridRecommender/pkg/config"
	"hybridRecommender/pkg/database"
	redisdb "hybridRecommender/pkg/database/redis"
	"hybridRecommender/pkg/logger"
	"hybridRecommender/pkg/metrics"
	"hybridRecommender/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Hybrid Recommender", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	if err := db.AutoMigrate(&domain.RecommendationLog{}); err != nil {
		logger.Fatal("Failed to migrate recommendation logs", err)
	}

	logger.Info("Database connected successfully")

	// Init repo
	interactionRepo := psqlRepo.NewInteractionRepository(db)
	logRepo := psqlRepo.NewRecommendationLogRepository(db)

	var cache recommendation.RecommendationCache
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, recommendation cache disabled", err)
		} else {
			defer func() {
				if err := redisdb.CloseRedisClient(redisClient); err != nil {
					logger.Error("Failed to close Redis", err)
				}
			}()
			cache = redisRepo.NewRecommendationCache(redisClient)
			logger.Info("Redis connected successfully")
		}
	}

	// Init predictors
	var collaborative hybrid.CollaborativePredictor
	if cfg.Model.FactorsPath != "" {
		lf, err := predictor.LoadLatentFactor(cfg.Model.FactorsPath)
		if err != nil {
			logger.Fatal("Failed to load latent factor model", "path", cfg.Model.FactorsPath, err)
		}
		collaborative = lf
		logger.Info("Latent factor model loaded", "users", lf.Users(), "items", lf.Items())
	}

	var (
		neural  hybrid.NeuralPredictor
		purgers []recommendation.Purger
	)
	if cfg.Model.NeuralBaseURL != "" {
		remote := predictor.NewRemoteNeural(predictor.RemoteNeuralConfig{
			BaseURL:         cfg.Model.NeuralBaseURL,
			ModelName:       cfg.Model.NeuralModelName,
			BreakerFailures: uint32(cfg.Model.BreakerFailures),
			BreakerTimeout:  cfg.Model.BreakerTimeout,
		}, &http.Client{Timeout: cfg.Model.NeuralHTTPTimeout})
		neural = remote

		if cfg.Model.PredictionCacheSize > 0 {
			cached, err := predictor.NewCachedNeural(remote, cfg.Model.PredictionCacheSize)
			if err != nil {
				logger.Fatal("Failed to init prediction cache", err)
			}
			neural = cached
			purgers = append(purgers, cached)
		}
	}

	// Init service
	hybridCfg := hybrid.Config{
		CollaborativeWeight:  cfg.Recommender.CollaborativeWeight,
		NeuralWeight:         cfg.Recommender.NeuralWeight,
		NeutralScore:         cfg.Recommender.NeutralScore,
		SampleSize:           cfg.Recommender.SampleSize,
		DefaultTopN:          cfg.Recommender.DefaultTopN,
		MaxTopN:              cfg.Recommender.MaxTopN,
		PopularityHeadFactor: cfg.Recommender.PopularityHeadFactor,
		PredictionTimeout:    cfg.Recommender.PredictionTimeout,
		MaxParallel:          cfg.Recommender.MaxParallel,
		Seed:                 cfg.Recommender.Seed,
	}
	ranker := hybrid.NewRanker(collaborative, neural, hybrid.NewSampler(hybridCfg.Seed), hybridCfg)

	recoService := recommendation.NewRecommendationService(
		interactionRepo,
		logRepo,
		cache,
		ranker,
		recommendation.Config{
			Hybrid:      hybridCfg,
			SearchLimit: cfg.Recommender.SearchLimit,
			CacheTTL:    cfg.Recommender.CacheTTL,
		},
		purgers...,
	)

	if cfg.Recommender.ReloadOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if _, err := rest.ReloadAndObserve(ctx, recoService); err != nil {
			logger.Error("Initial catalog reload failed, serving fallbacks until reload", err)
		}
		cancel()
	}

	// Init handler
	recoHandler := rest.NewRecommendationHandler(recoService, 10*time.Second)
	productHandler := rest.NewProductHandler(recoService)
	adminHandler := rest.NewAdminHandler(recoService, logRepo)
	healthHandler := rest.NewHealthHandler(recoService, cfg.App.Version)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()
	selfOrAdmin := middleware.SelfOrAdmin("user_id")

	// Setup routes
	router.SetupOpsRoutes(e, healthHandler)
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recoHandler, authRequired, selfOrAdmin, adminOnly)
	router.SetupProductRoutes(api, productHandler)
	router.SetupAdminRoutes(api, adminHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	logger.Info("Server stopped")
}
