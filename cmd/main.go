package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Service logger
	serviceLogger := logrus.New()
	serviceLogger.SetFormatter(&logrus.JSONFormatter{})
	serviceLogger.SetLevel(logrus.InfoLevel)

	// Initialize NATS events publisher
	var eventsPublisher *events.Publisher
	if cfg.NatsURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NatsURL, serviceLogger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		} else {
			log.Println("✓ NATS events publisher initialized")
		}
	}

	// Initialize repositories with Redis for caching
	categoryRepo := repository.NewCategoryRepository(db, redisClient)
	productRepo := repository.NewProductRepository(db, redisClient)
	brandRepo := repository.NewBrandRepository(db)

	// Initialize services
	resolver := services.NewHierarchyResolver(categoryRepo, brandRepo, serviceLogger)
	validator := services.NewRowValidator()
	reconciler := services.NewBulkReconciler(resolver, validator, productRepo, serviceLogger)
	analyzer := services.NewDeletionImpactAnalyzer(categoryRepo, productRepo)
	reassigner := services.NewProductReassignmentService(productRepo, serviceLogger)

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, productRepo, resolver, analyzer, reassigner, eventsPublisher, serviceLogger)
	productHandler := handlers.NewProductHandler(productRepo, categoryRepo, resolver, reassigner, eventsPublisher)
	importHandler := handlers.NewImportHandler(reconciler, eventsPublisher)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/tree", categoryHandler.GetCategoryTree)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.POST("", categoryHandler.CreateCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)

			categories.GET("/:id/deletion-info", categoryHandler.GetDeletionInfo)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)

			categories.GET("/:id/products", productHandler.ListProductsByCategory)
		}

		products := api.Group("/products")
		{
			products.GET("/:id", productHandler.GetProduct)
			products.POST("/bulk-move", productHandler.BulkMoveProducts)
		}

		catalog := api.Group("/catalog")
		{
			catalog.GET("/import/template", importHandler.GetImportTemplate)
			catalog.POST("/import/preview", importHandler.PreviewImport)
			catalog.POST("/import", importHandler.CommitImport)
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down catalog-service...")

	// Close events publisher
	if eventsPublisher != nil {
		eventsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}

	log.Println("Catalog service stopped")
}
