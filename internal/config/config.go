package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries everything the engine needs from the environment.
type AppConfig struct {
	DBConnStr string
	LogLevel  string

	// Quote provider
	QuoteBaseURL     string
	QuoteTimeout     time.Duration
	QuoteRatePerSec  int
	BaseCurrency     string
	FXCacheTTL       time.Duration
	PortfolioMaxAge  time.Duration // staleness window for the synced value
	BackfillMonths   int           // trailing months seeded for brand-new users
	HistoryDays      int           // trailing closes fetched per holding
	MaxQuoteFetchers int           // concurrent quote fetches
}

// Load reads configuration from a .env file (if present) and the OS
// environment, applying defaults suitable for local development.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables and defaults")
	}

	return &AppConfig{
		DBConnStr:        dbConnStr(),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		QuoteBaseURL:     getEnv("QUOTE_API_BASE_URL", "https://query1.finance.yahoo.com"),
		QuoteTimeout:     getDuration("QUOTE_TIMEOUT", 20*time.Second),
		QuoteRatePerSec:  10,
		BaseCurrency:     getEnv("BASE_CURRENCY", "EUR"),
		FXCacheTTL:       getDuration("FX_CACHE_TTL", time.Hour),
		PortfolioMaxAge:  getDuration("PORTFOLIO_MAX_AGE", 6*time.Hour),
		BackfillMonths:   6,
		HistoryDays:      30,
		MaxQuoteFetchers: 5,
	}
}

// dbConnStr builds the Postgres connection string, preferring an explicit
// DB_CONN_STR and falling back to the individual DB_* variables
// (Docker friendly).
func dbConnStr() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "finvault"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
