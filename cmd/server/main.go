package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/app"
	"github.com/nekogravitycat/hotel-booking-backend/internal/config"
	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}

	// Redis is optional
	rdb := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher notification.Emitter
	if cfg.RabbitMQURL != "" {
		publisher = notification.NewAMQPPublisher(cfg.RabbitMQURL, cfg.NotifyQueue)
		log.Printf("publishing booking events to queue %s", cfg.NotifyQueue)
	}

	container := app.NewContainer(app.Config{
		IsProduction:            cfg.IsProduction,
		ProdOrigins:             cfg.ProdOrigins,
		DBPool:                  pool,
		JWTSecret:               cfg.JWTSecret,
		JWTTTL:                  cfg.JWTAccessTokenTTL,
		BcryptCost:              cfg.BcryptCost,
		HotelLocation:           cfg.HotelLocation,
		BookingCodeMaxAttempts:  cfg.BookingCodeMaxAttempts,
		TxMaxRetries:            cfg.TxMaxRetries,
		Storage:                 store,
		Redis:                   rdb,
		RateLimitEnabled:        cfg.RateLimit.Enabled,
		RateLimitCapacity:       cfg.RateLimit.Capacity,
		RateLimitRefillInterval: cfg.RateLimit.RefillInterval,
		RateLimitPrefix:         cfg.RateLimit.Prefix,
		Publisher:               publisher,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("server exited gracefully")
}
