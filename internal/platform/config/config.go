package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RoomCacheTTL  time.Duration

	RabbitMQURL string
	EventsQueue string

	JWTSecret string

	PayPalMode         string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalCurrency     string
	PublicBaseURL      string
	PaymentTimeout     time.Duration

	CompletionInterval time.Duration
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "8080"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		DBHost:         envStr("DB_HOST", "localhost"),
		DBPort:         envStr("DB_PORT", "5432"),
		DBUser:         envStr("DB_USER", "postgres"),
		DBPassword:     envStr("DB_PASSWORD", ""),
		DBName:         envStr("DB_NAME", "hotel_booking"),
		MigrationsPath: envStr("MIGRATIONS_PATH", "internal/adapter/repository/postgres/migrations"),

		RedisHost:     envStr("REDIS_HOST", "localhost"),
		RedisPort:     envStr("REDIS_PORT", "6379"),
		RedisPassword: envStr("REDIS_PASSWORD", ""),

		RabbitMQURL: envStr("RABBITMQ_URL", ""),
		EventsQueue: envStr("EVENTS_QUEUE", "booking.events"),

		JWTSecret: envStr("JWT_SECRET", ""),

		PayPalMode:         envStr("PAYPAL_MODE", "sandbox"),
		PayPalClientID:     envStr("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: envStr("PAYPAL_CLIENT_SECRET", ""),
		PayPalCurrency:     envStr("PAYPAL_CURRENCY", "USD"),
		PublicBaseURL:      envStr("PUBLIC_BASE_URL", "http://localhost:8080"),
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RoomCacheTTL, err = envDur("ROOM_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = envDur("PAYMENT_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CompletionInterval, err = envDur("COMPLETION_INTERVAL", time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PayPalMode != "sandbox" && cfg.PayPalMode != "live" {
		return Config{}, fmt.Errorf("PAYPAL_MODE must be sandbox or live, got %q", cfg.PayPalMode)
	}

	return cfg, nil
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, v)
	}
	return n, nil
}

func envDur(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	return d, nil
}
