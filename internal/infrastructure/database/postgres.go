package database

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	maxConnectRetries = 5
	retryBaseDelay    = time.Second
	connectTimeout    = 10 * time.Second
)

// PostgresDB wraps the pgx connection pool and its lifecycle.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	config config.DatabaseConfig
}

func NewPostgresDB(cfg config.DatabaseConfig) *PostgresDB {
	return &PostgresDB{config: cfg}
}

func (db *PostgresDB) dsn() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		db.config.User,
		db.config.Password,
		db.config.Host,
		db.config.Port,
		db.config.Database,
	)
}

// Connect establishes the pool, retrying with exponential backoff so a
// database that is still starting up does not kill the process.
func (db *PostgresDB) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(db.dsn())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(db.config.MaxConns)
	poolConfig.MinConns = int32(db.config.MinConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	var lastErr error
	for attempt := 1; attempt <= maxConnectRetries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		cancel()

		if err == nil {
			if err := pool.Ping(ctx); err == nil {
				db.Pool = pool
				log.Info().Int("attempt", attempt).Msg("PostgreSQL connected")
				return nil
			} else {
				pool.Close()
				lastErr = err
			}
		} else {
			lastErr = err
		}

		log.Warn().Int("attempt", attempt).Err(lastErr).Msg("Database connection attempt failed")

		if attempt < maxConnectRetries {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to connect after %d attempts: %w", maxConnectRetries, lastErr)
}

// HealthCheck pings the pool with a short timeout.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
