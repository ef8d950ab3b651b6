package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seatpao/cmd/consumers/jobs"
	"seatpao/internal/config"
	"seatpao/internal/consumers"
	"seatpao/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Distinguish consumer connections from the API in NATS monitoring
	cfg.NATS.ClientID = "seatpao-consumers"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerService, err := consumers.NewConsumerService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	var expirationJob *jobs.BookingExpirationJob
	if cfg.PendingBookingTTL > 0 && cfg.ExpirationEvery > 0 {
		expirationJob = jobs.NewBookingExpirationJob(consumerService.Bookings(), cfg.PendingBookingTTL, cfg.ExpirationEvery)
		expirationJob.Start(ctx)
	} else {
		log.Info("Booking expiration disabled")
	}

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	if expirationJob != nil {
		expirationJob.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
