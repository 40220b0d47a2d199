package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"cooksmart/internal/api"
	"cooksmart/internal/config"
	"cooksmart/internal/discovery"
	"cooksmart/internal/pantry"
	"cooksmart/internal/platform/gemini"
	"cooksmart/internal/platform/mealdb"
	"cooksmart/internal/platform/openfoodfacts"
	"cooksmart/internal/platform/spoonacular"
	"cooksmart/internal/recipe"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	defer logger.Sync() //nolint:errcheck

	recipeStore, err := recipe.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		panic(fmt.Errorf("error creating recipe store: %w", err))
	}

	pantryStore, err := pantry.NewPostgresStore(recipeStore.DB())
	if err != nil {
		panic(fmt.Errorf("error creating pantry store: %w", err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cacheManager, err := discovery.NewCacheManager(ctx, discovery.NewRedisCacheStore(redisClient), logger)
	if err != nil {
		panic(fmt.Errorf("error loading recipe cache: %w", err))
	}

	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		panic(fmt.Errorf("error creating gemini client: %w", err))
	}

	sources := []discovery.Source{
		mealdb.NewClient(cfg.Sources.MealDBBaseURL),
	}
	if cfg.Sources.SpoonacularAPIKey != "" {
		sources = append(sources, spoonacular.NewClient(cfg.Sources.SpoonacularBaseURL, cfg.Sources.SpoonacularAPIKey))
	}

	discoveryService := discovery.NewService(
		recipeStore,
		sources,
		geminiClient,
		cacheManager,
		cfg.Discovery.StrictThreshold,
		cfg.Discovery.AIRecipeCount,
		logger,
	)
	pantryService := pantry.NewService(pantryStore, cacheManager, logger)
	productClient := openfoodfacts.NewClient(cfg.Sources.OpenFoodFactsURL)

	handler := api.NewHandler(discoveryService, pantryService, recipeStore, productClient, cacheManager, logger)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handler.Register(r)

	logger.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		panic(fmt.Errorf("server exited: %w", err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}
