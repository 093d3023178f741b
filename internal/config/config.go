package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	UserAgent           string `mapstructure:"USER_AGENT"`
	FetchTimeoutSeconds int    `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	MaxPages            int    `mapstructure:"MAX_PAGES"`
	MaxDepth            int    `mapstructure:"MAX_DEPTH"`
	CrawlParallelism    int    `mapstructure:"CRAWL_PARALLELISM"`
	CrawlRateLimit      int    `mapstructure:"CRAWL_RATE_LIMIT"` // requests per second
	RenderFallback      bool   `mapstructure:"RENDER_FALLBACK"`

	KeywordServiceURL      string `mapstructure:"KEYWORD_SERVICE_URL"`
	AIVisibilityServiceURL string `mapstructure:"AI_VISIBILITY_SERVICE_URL"`
	DeduplicationHours     int    `mapstructure:"DEDUPLICATION_HOURS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("USER_AGENT", "GeoReputeBot/1.0 (+https://georepute.ai/bot)")
	viper.SetDefault("FETCH_TIMEOUT_SECONDS", 10)
	viper.SetDefault("MAX_PAGES", 25)
	viper.SetDefault("MAX_DEPTH", 2)
	viper.SetDefault("CRAWL_PARALLELISM", 5)
	viper.SetDefault("CRAWL_RATE_LIMIT", 4)
	viper.SetDefault("RENDER_FALLBACK", false)
	viper.SetDefault("DEDUPLICATION_HOURS", 24)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
