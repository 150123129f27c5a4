package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"financeapp-server/internal/auth"
)

type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

// EnsureSeedUsers inserts the development accounts that are missing. Intended
// for non-prod environments only; existing rows are never touched.
func EnsureSeedUsers(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	hasher := auth.NewPasswordHasher()

	seeds := []SeedUser{
		{Username: "admin", Email: "admin@financeapp.local", Password: "admin123", Role: "Admin"},
		{Username: "demo", Email: "demo@financeapp.local", Password: "demo123", Role: "User"},
	}

	for _, seed := range seeds {
		exists, err := userExists(ctx, pool, timeout, seed.Username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := hasher.Hash(seed.Password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		ctxInsert, cancel := context.WithTimeout(ctx, timeout)
		_, err = pool.Exec(ctxInsert, `
			INSERT INTO users (username, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
		`, seed.Username, seed.Email, hash, seed.Role)
		cancel()
		if err != nil {
			return fmt.Errorf("insert seed user %s: %w", seed.Username, err)
		}
	}

	return nil
}

func userExists(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, username string) (bool, error) {
	ctxCheck, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	row := pool.QueryRow(ctxCheck, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
