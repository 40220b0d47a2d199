package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	LogLevel  string          `mapstructure:"log_level"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig configures Postgres.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the cache store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GeminiConfig configures the generative model provider.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SourcesConfig configures the external recipe sources.
type SourcesConfig struct {
	MealDBBaseURL      string `mapstructure:"mealdb_base_url"`
	SpoonacularBaseURL string `mapstructure:"spoonacular_base_url"`
	SpoonacularAPIKey  string `mapstructure:"spoonacular_api_key"`
	OpenFoodFactsURL   string `mapstructure:"openfoodfacts_base_url"`
}

// DiscoveryConfig tunes the discovery engine.
type DiscoveryConfig struct {
	MaxResults      int     `mapstructure:"max_results"`
	StrictThreshold float64 `mapstructure:"strict_threshold"`
	AIRecipeCount   int     `mapstructure:"ai_recipe_count"`
}

// Load reads .env (when present), applies defaults and binds COOKSMART_*
// environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COOKSMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:8081"})
	v.SetDefault("database.url", "postgres://localhost:5432/cooksmart?sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("sources.mealdb_base_url", "")
	v.SetDefault("sources.spoonacular_base_url", "")
	v.SetDefault("sources.spoonacular_api_key", "")
	v.SetDefault("sources.openfoodfacts_base_url", "")
	v.SetDefault("discovery.max_results", 20)
	v.SetDefault("discovery.strict_threshold", 0)
	v.SetDefault("discovery.ai_recipe_count", 5)
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
