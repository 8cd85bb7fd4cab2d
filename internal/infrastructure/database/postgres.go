package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/thalesfercaetano/Pets-API/internal/config"
)

// NewPostgresDB creates a new PostgreSQL database connection using sqlx
func NewPostgresDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := CheckConnection(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// CheckConnection runs a trivial query to prove the database answers.
func CheckConnection(ctx context.Context, db *sqlx.DB) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1+1 AS result").Scan(&result); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	return nil
}
