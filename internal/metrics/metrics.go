package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	seatReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatpao_seat_reservations_total",
			Help: "Seat reservation attempts by outcome",
		},
		[]string{"result"},
	)

	seatReleaseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatpao_seat_release_failures_total",
			Help: "Seat releases that failed after a booking left a seat-holding state",
		},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatpao_booking_transitions_total",
			Help: "Booking state transitions",
		},
		[]string{"from", "to"},
	)

	paymentConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatpao_payment_confirmations_total",
			Help: "Payment confirmations by outcome",
		},
		[]string{"result"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seatpao_payment_gateway_duration_seconds",
			Help:    "Duration of payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	fraudHiddenTickets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatpao_fraud_hidden_tickets_total",
			Help: "Tickets hidden by the fraud cascade",
		},
	)
)

// Reservation outcome labels
const (
	ResultReserved     = "reserved"
	ResultInsufficient = "insufficient_seats"
	ResultUnavailable  = "unavailable"
	ResultError        = "error"
)

// Confirmation outcome labels
const (
	ResultSettled    = "settled"
	ResultDuplicate  = "duplicate"
	ResultIncomplete = "incomplete"
)

func TrackReservation(result string) {
	seatReservations.WithLabelValues(result).Inc()
}

func TrackReleaseFailure() {
	seatReleaseFailures.Inc()
}

func TrackTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

func TrackConfirmation(result string) {
	paymentConfirmations.WithLabelValues(result).Inc()
}

// TrackGatewayCall observes the time since start under operation
func TrackGatewayCall(operation string, start time.Time) {
	gatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func TrackHiddenTickets(n int64) {
	fraudHiddenTickets.Add(float64(n))
}
