package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	DB        PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Payment   HeleketConfig
	Search    SearchProviderConfig
	Telegram  TelegramConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env                  string
	Port                 string
	BaseURL              string
	LogLevel             string
	CookieSecure         bool
	SessionSweepInterval time.Duration
}

type PostgresConfig struct {
	URL string
}

// RedisConfig is optional. An empty URL keeps the rate limiter in process memory.
type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminTokenTTL   time.Duration
	AdminPassword   string
	CaptchaRequired bool
}

type HeleketConfig struct {
	APIURL     string
	MerchantID string
	APIKey     string
}

type SearchProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type TelegramConfig struct {
	BotToken string
}

type RateLimitConfig struct {
	LoginAttempts int
	LoginWindow   time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	return &Config{
		App: AppConfig{
			Env:                  getEnvWithDefault("APP_ENV", "production"),
			Port:                 getEnvWithDefault("PORT", "8080"),
			BaseURL:              strings.TrimRight(getEnvWithDefault("APP_BASE_URL", "http://localhost:8080"), "/"),
			LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
			CookieSecure:         getBool("COOKIE_SECURE", true),
			SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Hour),
		},
		DB: PostgresConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
			AdminTokenTTL:   getDuration("ADMIN_TOKEN_TTL", 24*time.Hour),
			AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
			CaptchaRequired: getBool("CAPTCHA_REQUIRED", false),
		},
		Payment: HeleketConfig{
			APIURL:     strings.TrimRight(getEnvWithDefault("HELEKET_API_URL", "https://api.heleket.com/v1"), "/"),
			MerchantID: os.Getenv("HELEKET_MERCHANT_ID"),
			APIKey:     os.Getenv("HELEKET_API_KEY"),
		},
		Search: SearchProviderConfig{
			BaseURL: strings.TrimRight(os.Getenv("SEARCH_PROVIDER_URL"), "/"),
			APIKey:  os.Getenv("SEARCH_PROVIDER_API_KEY"),
			Timeout: getDuration("SEARCH_PROVIDER_TIMEOUT", 30*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: getInt("LOGIN_RATE_LIMIT", 5),
			LoginWindow:   getDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

// getEnvWithDefault returns environment variable or default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}
