package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	MaxRetries int
	RetryDelay time.Duration
}

func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewPostgresDB opens the pool and waits for the server to accept pings,
// which matters when the database container starts alongside the app.
func NewPostgresDB(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 1; i <= cfg.MaxRetries; i++ {
		logger.Info("connecting to database", "attempt", i, "max_attempts", cfg.MaxRetries, "host", cfg.Host)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			logger.Info("database connected")
			return db, nil
		}

		logger.Warn("database not ready", "error", err, "retry_in", cfg.RetryDelay)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("connect database after %d attempts: %w", cfg.MaxRetries, err)
}
