package store

import "context"

// EnsureSchema creates the bookings and users tables when they do not exist yet.
// The bookings table is rewritten wholesale on every ingest, so no migrations
// beyond this bootstrap are needed.
func EnsureSchema(ctx context.Context, db *DB) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id             BIGINT PRIMARY KEY,
			booking_date   DATE NOT NULL,
			length_of_stay INT NOT NULL,
			guest_name     TEXT NOT NULL,
			daily_rate     DOUBLE PRECISION NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)
	return err
}
