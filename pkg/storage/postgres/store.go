// SPDX-License-Identifier: LGPL-3.0-or-later

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection configuration for the durable quorum
// store.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store owns the connection pool backing the durable QuorumStore. The
// gateway's other state (policy bundles, transparency log, replay cache,
// rate limiter) is either file-loaded or in-memory per spec §6; only
// dual-control quorum approvals need to survive a gateway restart.
type Store struct {
	pool   *pgxpool.Pool
	quorum *QuorumStore
}

// NewStore opens a connection pool and pings it before returning, so a
// misconfigured DSN fails fast at startup rather than on first use.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool:   pool,
		quorum: NewQuorumStore(pool),
	}, nil
}

// QuorumStore returns the durable kms.QuorumStore implementation.
func (s *Store) QuorumStore() *QuorumStore { return s.quorum }

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
