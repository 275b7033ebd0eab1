package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend constants
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Known provider names
const (
	ProviderGoogle = "google"
	ProviderYandex = "yandex"
	ProviderGitHub = "github"
	ProviderVK     = "vk"
	ProviderMail   = "mail"
)

// ProviderConfig holds the OAuth2 settings for a single identity provider.
type ProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	Scopes       []string
}

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// JWT settings
	JWTSecret              string
	AccessTokenExpiration  time.Duration // short-lived, minutes
	RefreshTokenExpiration time.Duration // long-lived, days

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	// Seeded on first start when missing
	SuperuserLogin string

	// Revocation cache
	CacheBackend  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Rate limiting
	EnableRateLimit    bool
	RateLimitStore     string // "memory" or "redis"
	RateLimitPerMinute int

	// Metrics
	MetricsEnabled bool

	// OAuth providers
	OAuthRedirectBase string // callback URL prefix, provider name is appended
	OAuthTimeout      time.Duration
	Providers         map[string]ProviderConfig
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "auth.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      baseURL,
		IsProduction: getEnvBool("PRODUCTION", false),

		JWTSecret: getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),
		AccessTokenExpiration: time.Duration(
			getEnvInt("JWT_ACCESS_TOKEN_EXPIRES", 60),
		) * time.Minute,
		RefreshTokenExpiration: time.Duration(
			getEnvInt("JWT_REFRESH_TOKEN_EXPIRES", 7),
		) * 24 * time.Hour,

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		SuperuserLogin: getEnv("SUPERUSER_LOGIN", "admin"),

		CacheBackend:  getEnv("CACHE_BACKEND", CacheBackendMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "authd:"),

		EnableRateLimit:    getEnvBool("ENABLE_RATE_LIMIT", false),
		RateLimitStore:     getEnv("RATE_LIMIT_STORE", "memory"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		OAuthRedirectBase: getEnv(
			"OAUTH_REDIRECT_BASE",
			baseURL+"/api/v1/oauth/callback/",
		),
		OAuthTimeout: getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		Providers:    loadProviders(),
	}
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.IsProduction && c.JWTSecret == "your-256-bit-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
	}
	if c.CacheBackend != CacheBackendMemory && c.CacheBackend != CacheBackendRedis {
		return fmt.Errorf("invalid CACHE_BACKEND: %s (must be: memory, redis)", c.CacheBackend)
	}
	if c.AccessTokenExpiration <= 0 || c.RefreshTokenExpiration <= 0 {
		return fmt.Errorf("token expirations must be positive")
	}
	return nil
}

// loadProviders reads per-provider settings from the environment. Each
// provider block uses its name as env prefix (GOOGLE_, YANDEX_, GITHUB_,
// VK_, MAIL_) and ships with the provider's well-known endpoints as
// defaults.
func loadProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderGoogle: loadProvider("GOOGLE", ProviderConfig{
			AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:   "https://oauth2.googleapis.com/token",
			ProfileURL: "https://openidconnect.googleapis.com/v1/userinfo",
			Scopes:     []string{"openid", "email", "profile"},
		}),
		ProviderYandex: loadProvider("YANDEX", ProviderConfig{
			AuthURL:    "https://oauth.yandex.ru/authorize",
			TokenURL:   "https://oauth.yandex.ru/token",
			ProfileURL: "https://login.yandex.ru/info",
			Scopes:     []string{"login:email"},
		}),
		ProviderGitHub: loadProvider("GITHUB", ProviderConfig{
			AuthURL:    "https://github.com/login/oauth/authorize",
			TokenURL:   "https://github.com/login/oauth/access_token",
			ProfileURL: "https://api.github.com/user",
			Scopes:     []string{"user:email"},
		}),
		ProviderVK: loadProvider("VK", ProviderConfig{
			AuthURL:    "https://oauth.vk.com/authorize",
			TokenURL:   "https://oauth.vk.com/access_token",
			ProfileURL: "https://api.vk.com/method/users.get",
			Scopes:     []string{"email"},
		}),
		ProviderMail: loadProvider("MAIL", ProviderConfig{
			AuthURL:    "https://oauth.mail.ru/login",
			TokenURL:   "https://oauth.mail.ru/token",
			ProfileURL: "https://oauth.mail.ru/userinfo",
			Scopes:     []string{"userinfo"},
		}),
	}
}

func loadProvider(prefix string, defaults ProviderConfig) ProviderConfig {
	return ProviderConfig{
		Enabled:      getEnvBool(prefix+"_OAUTH_ENABLED", false),
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
		AuthURL:      getEnv(prefix+"_AUTHORIZE_URL", defaults.AuthURL),
		TokenURL:     getEnv(prefix+"_TOKEN_URL", defaults.TokenURL),
		ProfileURL:   getEnv(prefix+"_PROFILE_URL", defaults.ProfileURL),
		Scopes:       getEnvSlice(prefix+"_SCOPES", defaults.Scopes),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var parts []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
