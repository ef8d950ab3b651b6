package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seatpao/internal/models"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 20 * time.Second

// CascadeRepairer re-applies the ticket hide for a flagged vendor
type CascadeRepairer interface {
	ReapplyCascade(ctx context.Context, vendorID string) (int64, error)
}

type Handlers struct {
	fraud CascadeRepairer
}

func NewHandlers(fraud CascadeRepairer) *Handlers {
	return &Handlers{fraud: fraud}
}

// HandleVendorFraudMarked repairs a cascade whose hide step failed after the
// flag was written. Hiding is idempotent, so redeliveries are harmless.
func (h *Handlers) HandleVendorFraudMarked(m *stan.Msg) {
	h.ackOnSuccess(m, h.vendorFraudMarked)
}

// HandleBookingTransition audits seat releases that did not happen
func (h *Handlers) HandleBookingTransition(m *stan.Msg) {
	h.ackOnSuccess(m, h.bookingTransition)
}

func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	h.ackOnSuccess(m, h.paymentCompleted)
}

// ackOnSuccess leaves failed messages unacknowledged so they are redelivered
// after the ack wait. Malformed payloads are acked and dropped.
func (h *Handlers) ackOnSuccess(m *stan.Msg, handle func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := handle(ctx, m.Data); err != nil {
		if !isMalformed(err) {
			slog.Error("Failed to process message", "subject", m.Subject, "error", err)
			return
		}
		slog.Error("Dropping malformed message", "subject", m.Subject, "error", err)
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", m.Subject, "error", err)
	}
}

func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (h *Handlers) vendorFraudMarked(ctx context.Context, data []byte) error {
	var event models.VendorFraudEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	hidden, err := h.fraud.ReapplyCascade(ctx, event.VendorID)
	if err != nil {
		return fmt.Errorf("reapply cascade for vendor %s: %w", event.VendorID, err)
	}

	slog.Info("Fraud cascade re-applied", "vendor_id", event.VendorID, "hidden_tickets", hidden)
	return nil
}

func (h *Handlers) bookingTransition(ctx context.Context, data []byte) error {
	var event models.BookingTransitionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	if event.From.HoldsSeats() && !event.To.HoldsSeats() && event.SeatsReleased == 0 {
		slog.Warn("Booking left a seat-holding state without releasing seats",
			"booking_id", event.BookingID,
			"ticket_id", event.TicketID,
			"from", event.From,
			"to", event.To)
		return nil
	}

	slog.Info("Booking transition", "booking_id", event.BookingID, "from", event.From, "to", event.To)
	return nil
}

func (h *Handlers) paymentCompleted(ctx context.Context, data []byte) error {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	slog.Info("Payment completed",
		"booking_id", event.BookingID,
		"transaction_id", event.TransactionID,
		"amount", models.FormatAmount(event.Amount))
	return nil
}
