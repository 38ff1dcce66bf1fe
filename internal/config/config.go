package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and treated as immutable afterwards.
// There are no fallback secrets: a missing JWT secret is fatal.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	// Addr empty means no Redis: token revocation falls back to the
	// in-process deny-list.
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
	// BaseURL is the externally visible URL, used when the local object
	// store mints signed attachment URLs.
	BaseURL string
	// CookieSecure controls the Secure flag on the session cookie.
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type StorageConfig struct {
	// Backend is "gcs" or "local".
	Backend       string
	LocalDir      string
	SignedURLTTL  time.Duration
	GCSBucket     string
	GCSAccessID   string
	GCSPrivateKey string
	URLSecret     string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set; refusing to start with no signing secret")
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clinical_records"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:      secret,
			TokenExpiry: parseDuration(getEnv("TOKEN_EXPIRY", "1h"), time.Hour),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
			CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "local"),
			LocalDir:      getEnv("STORAGE_LOCAL_DIR", "./data/attachments"),
			SignedURLTTL:  parseDuration(getEnv("SIGNED_URL_TTL", "60s"), 60*time.Second),
			GCSBucket:     getEnv("GCS_BUCKET", ""),
			GCSAccessID:   getEnv("GCS_ACCESS_ID", ""),
			GCSPrivateKey: getEnv("GCS_PRIVATE_KEY", ""),
			URLSecret:     getEnv("STORAGE_URL_SECRET", secret),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Warning: invalid duration %q, using %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func splitOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
