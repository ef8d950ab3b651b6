package database

import (
	"context"
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createTicketsTable,
		createBookingsTable,
		createPaymentsTable,
		createTicketsVendorIndex,
		createBookingsPendingIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'vendor', 'admin')),
    fraud BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    vendor_id UUID NOT NULL REFERENCES users(id),
    title VARCHAR(500) NOT NULL,
    route_from VARCHAR(255) NOT NULL DEFAULT '',
    route_to VARCHAR(255) NOT NULL DEFAULT '',
    transport_type VARCHAR(50) NOT NULL DEFAULT '',
    departure_at TIMESTAMPTZ,
    price BIGINT NOT NULL CHECK (price >= 0),
    seats INTEGER NOT NULL CHECK (seats >= 0),
    status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    hidden BOOLEAN NOT NULL DEFAULT FALSE,
    advertised BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    ticket_id UUID NOT NULL,
    ticket_title VARCHAR(500) NOT NULL,
    vendor_id UUID NOT NULL,
    user_id VARCHAR(255) NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
    total_price BIGINT NOT NULL CHECK (total_price >= 0),
    departure_at TIMESTAMPTZ,
    status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'paid', 'cancelled')),
    paid BOOLEAN NOT NULL DEFAULT FALSE,
    transaction_id VARCHAR(255),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (paid = (status = 'paid'))
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id),
    user_id VARCHAR(255) NOT NULL,
    vendor_id UUID NOT NULL,
    amount BIGINT NOT NULL,
    currency VARCHAR(10) NOT NULL,
    transaction_id VARCHAR(255) NOT NULL UNIQUE,
    ticket_title VARCHAR(500) NOT NULL,
    paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketsVendorIndex = `
CREATE INDEX IF NOT EXISTS idx_tickets_vendor ON tickets(vendor_id);`

const createBookingsPendingIndex = `
CREATE INDEX IF NOT EXISTS idx_bookings_pending_created ON bookings(created_at) WHERE status = 'pending';`
