package consumers

import (
	"context"
	"log/slog"

	"seatpao/internal/config"
	"seatpao/internal/database"
	"seatpao/internal/messaging"
	"seatpao/internal/models"
	"seatpao/internal/repository"
	"seatpao/internal/service"

	"github.com/nats-io/stan.go"
)

const queueGroup = "seatpao-consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	services *service.Services
	handlers *Handlers
}

func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)

	// Consumers never talk to the payment gateway
	services := service.NewServices(service.Repositories{
		Tickets:  repos.Tickets,
		Bookings: repos.Bookings,
		Payments: repos.Payments,
		Users:    repos.Users,
	}, nil, natsClient, nil, service.Options{Currency: cfg.Payment.Currency})

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		services: services,
		handlers: NewHandlers(services.Fraud),
	}, nil
}

// Bookings exposes the ledger to background jobs
func (cs *ConsumerService) Bookings() *service.BookingService {
	return cs.services.Bookings
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventVendorFraudMarked, cs.handlers.HandleVendorFraudMarked},
		{models.EventBookingRejected, cs.handlers.HandleBookingTransition},
		{models.EventBookingCancelled, cs.handlers.HandleBookingTransition},
		{models.EventBookingExpired, cs.handlers.HandleBookingTransition},
		{models.EventPaymentCompleted, cs.handlers.HandlePaymentCompleted},
	}

	for _, sub := range subscriptions {
		if _, err := cs.nats.SubscribeQueue(sub.subject, queueGroup, sub.handler); err != nil {
			return err
		}
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
