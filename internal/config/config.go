package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	Redis     RedisConfig
	RateLimit RateLimitConfig

	UploadDir     string
	UploadBaseURL string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment variables", err)
	}

	cfg := Config{
		ServiceName: EnvDefault("SERVICE_NAME", "phone_shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "*")),

		DatabaseURL: databaseURL(),

		JWTAccessSecret:  []byte(os.Getenv("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        EnvDurationDefault("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshTTL:       EnvDurationDefault("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       EnvIntDefault("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        EnvBoolDefault("RATE_LIMIT_ENABLED", true),
			Capacity:       EnvIntDefault("RATE_LIMIT_CAPACITY", 20),
			RefillTokens:   EnvIntDefault("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: EnvDurationDefault("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
			TTL:            EnvDurationDefault("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         EnvDefault("RATE_LIMIT_PREFIX", "rl"),
		},

		UploadDir:     EnvDefault("UPLOAD_DIR", "uploads"),
		UploadBaseURL: EnvDefault("UPLOAD_BASE_URL", "/uploads"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     EnvDefault("ADMIN_NAME", "Administrator"),
	}

	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillTokens < 1 {
		cfg.RateLimit.RefillTokens = 1
	}
	if minTTL := 5 * cfg.RateLimit.RefillInterval; cfg.RateLimit.TTL < minTTL {
		cfg.RateLimit.TTL = minTTL
	}

	return cfg
}

// Validate reports the first configuration problem that makes the service unable to start.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env DATABASE_URL")
	}
	if len(c.JWTAccessSecret) == 0 {
		return fmt.Errorf("missing required env JWT_ACCESS_SECRET")
	}
	if len(c.JWTRefreshSecret) == 0 {
		return fmt.Errorf("missing required env JWT_REFRESH_SECRET")
	}
	if string(c.JWTAccessSecret) == string(c.JWTRefreshSecret) {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, EnvDefault("DB_PORT", "5432"), os.Getenv("DB_NAME"),
	)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts anything time.ParseDuration does plus a whole-day
// form such as "7d".
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func ParseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", v, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
