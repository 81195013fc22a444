package config

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/staylytics/backend/internal/store"
)

// CreateDefaultUser seeds the basic-auth user from AUTH_USERNAME/AUTH_PASSWORD
// so the protected endpoints are reachable on a fresh database.
func CreateDefaultUser(cfg *Config, db *store.DB) error {
	ctx := context.Background()

	var count int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", cfg.AuthUsername).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AuthPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
	`, cfg.AuthUsername, cfg.AuthUsername+"@staylytics.local", string(hashedPassword))

	if err != nil {
		return fmt.Errorf("failed to create default user: %w", err)
	}

	return nil
}
