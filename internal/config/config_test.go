package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAYMENT_CURRENCY", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "bdt", cfg.Payment.Currency)
	assert.Equal(t, 24*time.Hour, cfg.PendingBookingTTL)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("PENDING_BOOKING_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CLIENT_URL", "https://seatpao.example")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.PendingBookingTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://seatpao.example/payment/cancel", cfg.Payment.CancelURL)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("PAYMENT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
}
