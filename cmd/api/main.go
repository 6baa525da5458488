package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/hotel_booking/internal/adapter/cache"
	"github.com/srgjo27/hotel_booking/internal/adapter/handler"
	"github.com/srgjo27/hotel_booking/internal/adapter/messaging"
	"github.com/srgjo27/hotel_booking/internal/adapter/payment/paypal"
	"github.com/srgjo27/hotel_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/hotel_booking/internal/adapter/scheduler"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
	"github.com/srgjo27/hotel_booking/internal/platform/config"
	"github.com/srgjo27/hotel_booking/internal/platform/database"
	"github.com/srgjo27/hotel_booking/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	roomRepo := postgres.NewRoomRepository(db)
	var roomView ports.RoomRepository = roomRepo
	bookingRepo := postgres.NewBookingRepository(db)
	cartRepo := postgres.NewCartRepository(db)

	logger.Info("connecting to redis", "addr", cfg.RedisAddr())
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, room cache disabled", "error", err)
	} else {
		roomView = cache.NewRoomCache(roomRepo, redisClient, cfg.RoomCacheTTL, logger)
		logger.Info("redis connected")
	}
	cancel()
	defer redisClient.Close()

	events := messaging.Fanout{messaging.NewLogPublisher(logger)}
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events are logged only", "error", err)
		} else {
			defer rabbit.Close()
			events = append(events, rabbit)
		}
	}

	gateway := paypal.NewClient(paypal.Config{
		Mode:          cfg.PayPalMode,
		ClientID:      cfg.PayPalClientID,
		ClientSecret:  cfg.PayPalClientSecret,
		ReturnBaseURL: cfg.PublicBaseURL,
	}, logger)

	svc := newServices(roomRepo, roomView, bookingRepo, cartRepo, gateway, events, cfg.PayPalCurrency, cfg.PaymentTimeout)

	bookingHandler := handler.NewBookingHandler(svc.bookings, svc.payments, svc.carts, svc.inventory, svc.availability, logger)

	worker := scheduler.NewCompletionWorker(svc.bookings, cfg.CompletionInterval, logger)
	go worker.Run(ctx)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(bookingHandler, handler.RouterConfig{
			JWTSecret:      cfg.JWTSecret,
			RequestTimeout: cfg.PaymentTimeout + 10*time.Second,
		}, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PaymentTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}
