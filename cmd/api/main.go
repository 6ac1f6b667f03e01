package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cardwise/internal/classifier"
	"cardwise/internal/config"
	"cardwise/internal/database"
	"cardwise/internal/handlers"
	"cardwise/internal/logger"
	"cardwise/internal/middleware"
	"cardwise/internal/services"
	"cardwise/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations and seed the curated merchant table
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// External classifier is opt-in; the categorizer degrades to its
	// rule/merchant/pattern tiers without it.
	var cls classifier.Classifier
	if appConfig.ClassifierEnabled {
		gemini, clsErr := classifier.NewGeminiClassifier(context.Background(), appConfig.ClassifierModel)
		if clsErr != nil {
			log.Warnw("classifier unavailable, continuing without it", "error", clsErr.Error())
		} else {
			cls = gemini
			log.Infow("external classifier enabled", "model", appConfig.ClassifierModel)
		}
	}

	// Initialize services
	db := dbManager.DB()
	statementService := services.NewStatementService(db)
	categorizerService := services.NewCategorizerService(db, cls, appConfig.CategorizerBatchSize, appConfig.CategorizerBatchDelay)
	rewardService := services.NewRewardService()
	optimizerService := services.NewOptimizerService(rewardService)

	// Initialize handlers
	statementHandler := handlers.NewStatementHandler(statementService)
	categorizeHandler := handlers.NewCategorizeHandler(categorizerService)
	rewardsHandler := handlers.NewRewardsHandler(rewardService)
	optimizerHandler := handlers.NewOptimizerHandler(optimizerService)

	// Custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Statement routes
	statements := v1.Group("/statements")
	statements.POST("/parse", statementHandler.ParseStatement)
	statements.GET("/:id", statementHandler.GetStatement)
	statements.GET("/:id/transactions", statementHandler.GetStatementTransactions)

	// Categorization
	v1.POST("/categorize", categorizeHandler.Categorize)

	// Rewards
	v1.POST("/rewards/calculate", rewardsHandler.CalculateRewards)

	// Card optimization
	cards := v1.Group("/cards")
	cards.POST("/compare", optimizerHandler.CompareCards)
	cards.POST("/optimize", optimizerHandler.Optimize)

	log.Infow("starting server", "port", appConfig.Port, "env", appConfig.Env)
	return router.Run(":" + appConfig.Port)
}
