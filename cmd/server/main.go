package main

import (
	"fmt"
	"log"
	"net/http"

	"loadpulse/internal/config"
	"loadpulse/internal/handlers"
	"loadpulse/internal/middleware"
	"loadpulse/internal/repositories/mongodb"
	"loadpulse/internal/services"
	"loadpulse/pkg/cache"
	"loadpulse/pkg/database"
	"loadpulse/pkg/logger"
	"loadpulse/pkg/websocket"
	"loadpulse/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// WebSocket hub for the live heatmap
	wsHandler := websocket.NewHandler()

	// Repositories
	loadRepo := mongodb.NewLoadRepository(db.Database)
	locationRepo := mongodb.NewLocationRepository(db.Database)
	demandRepo := mongodb.NewDemandRepository(db.Database)

	// Services
	realtimeService := services.NewRealtimeService(wsHandler, redisCache, cfg.Demand.HeatmapChannel, appLogger)
	notificationService := services.NewNotificationService(redisCache, cfg.Demand.NotificationChannel, appLogger)
	demandService := services.NewDemandService(loadRepo, locationRepo, demandRepo, realtimeService, notificationService, redisCache, cfg.Demand, appLogger)
	loadService := services.NewLoadService(loadRepo, locationRepo, demandService, appLogger)
	locationService := services.NewLocationService(locationRepo)

	// Handlers
	loadHandler := handlers.NewLoadHandler(loadService)
	locationHandler := handlers.NewLocationHandler(locationService)
	demandHandler := handlers.NewDemandHandler(demandService)

	// Initialize Gin router
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupLoadRoutes(v1, loadHandler, locationHandler, cfg.Security.JWTSecret)
		routes.SetupDemandRoutes(v1, demandHandler, wsHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.Infof("Starting %s on %s", cfg.App.Name, addr)
	appLogger.Fatalf("Server stopped: %v", http.ListenAndServe(addr, router))
}
